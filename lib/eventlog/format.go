// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventlog

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the record encoding of a log.
type Format uint8

const (
	// FormatCBOR is a CBOR sequence: each record is one CBOR item,
	// concatenated without delimiters.
	FormatCBOR Format = iota

	// FormatJSONLines is one JSON object per line. Blank lines are
	// skipped on read.
	FormatJSONLines
)

func (format Format) String() string {
	switch format {
	case FormatCBOR:
		return "cbor"
	case FormatJSONLines:
		return "jsonl"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(format))
	}
}

// ParseFormat parses a format name as printed by String. "json" is
// accepted for JSON lines.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "cbor":
		return FormatCBOR, nil
	case "jsonl", "json":
		return FormatJSONLines, nil
	default:
		return 0, fmt.Errorf("unknown event log format %q (expected cbor or jsonl)", name)
	}
}

// Compression is the stream compression applied to a whole log.
type Compression uint8

const (
	CompressionNone Compression = iota
	// CompressionZstd is a zstd stream at the default level.
	CompressionZstd
	// CompressionLZ4 is an lz4 frame stream.
	CompressionLZ4
)

func (compression Compression) String() string {
	switch compression {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(compression))
	}
}

// ParseCompression parses a compression name as printed by String.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none", "":
		return CompressionNone, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (expected none, zstd, or lz4)", name)
	}
}

// DetectPath derives the format and compression of a log from its file
// name: an optional compression extension (.zst, .lz4) following a
// format extension (.cbor, .jsonl, .json).
func DetectPath(path string) (Format, Compression, error) {
	name := strings.ToLower(filepath.Base(path))

	compression := CompressionNone
	switch filepath.Ext(name) {
	case ".zst":
		compression = CompressionZstd
		name = strings.TrimSuffix(name, ".zst")
	case ".lz4":
		compression = CompressionLZ4
		name = strings.TrimSuffix(name, ".lz4")
	}

	switch filepath.Ext(name) {
	case ".cbor":
		return FormatCBOR, compression, nil
	case ".jsonl", ".json":
		return FormatJSONLines, compression, nil
	default:
		return 0, 0, fmt.Errorf("cannot determine event log format of %q: expected a .cbor, .jsonl, or .json extension", path)
	}
}
