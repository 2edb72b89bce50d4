// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventlog

import "testing"

func TestDetectPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path        string
		format      Format
		compression Compression
	}{
		{"build.cbor", FormatCBOR, CompressionNone},
		{"/tmp/x/build.jsonl", FormatJSONLines, CompressionNone},
		{"build.json", FormatJSONLines, CompressionNone},
		{"build.cbor.zst", FormatCBOR, CompressionZstd},
		{"BUILD.JSONL.LZ4", FormatJSONLines, CompressionLZ4},
	}
	for _, test := range tests {
		format, compression, err := DetectPath(test.path)
		if err != nil {
			t.Errorf("DetectPath(%q): %v", test.path, err)
			continue
		}
		if format != test.format || compression != test.compression {
			t.Errorf("DetectPath(%q): got (%s, %s), want (%s, %s)",
				test.path, format, compression, test.format, test.compression)
		}
	}
}

func TestDetectPathRejectsUnknown(t *testing.T) {
	t.Parallel()
	for _, path := range []string{"build.log", "build.zst", "build", "build.cbor.gz"} {
		if _, _, err := DetectPath(path); err == nil {
			t.Errorf("DetectPath(%q): got nil error", path)
		}
	}
}

func TestParseNames(t *testing.T) {
	t.Parallel()
	for _, format := range []Format{FormatCBOR, FormatJSONLines} {
		parsed, err := ParseFormat(format.String())
		if err != nil || parsed != format {
			t.Errorf("ParseFormat(%q): got (%s, %v)", format, parsed, err)
		}
	}
	for _, compression := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		parsed, err := ParseCompression(compression.String())
		if err != nil || parsed != compression {
			t.Errorf("ParseCompression(%q): got (%s, %v)", compression, parsed, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml): got nil error")
	}
	if _, err := ParseCompression("gzip"); err == nil {
		t.Error("ParseCompression(gzip): got nil error")
	}
}
