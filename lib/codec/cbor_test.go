// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// samplePayload stands in for an event payload: json tags only, shared
// by both encodings.
type samplePayload struct {
	Target string `json:"target"`
	Count  int    `json:"count"`
}

// samplePayloadV2 is the same payload after a producer added a field.
type samplePayloadV2 struct {
	Target string `json:"target"`
	Count  int    `json:"count"`
	Shard  string `json:"shard"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := samplePayload{Target: "root//:step_0", Count: 3}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded samplePayload
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	first, err := Marshal(map[string]int{"zeta": 1, "alpha": 2, "mid": 3})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for range 10 {
		again, err := Marshal(map[string]int{"mid": 3, "alpha": 2, "zeta": 1})
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("non-deterministic encoding: %x vs %x", first, again)
		}
	}
}

func TestUnknownFieldsIgnored(t *testing.T) {
	data, err := Marshal(samplePayloadV2{Target: "root//:lib", Count: 1, Shard: "b"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded samplePayload
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal of newer payload: %v", err)
	}
	if decoded.Target != "root//:lib" || decoded.Count != 1 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestUnmarshalFirstSequence(t *testing.T) {
	var rest []byte
	for index := range 3 {
		item, err := Marshal(samplePayload{Target: "t", Count: index})
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		rest = append(rest, item...)
	}

	for index := range 3 {
		var decoded samplePayload
		var err error
		rest, err = UnmarshalFirst(rest, &decoded)
		if err != nil {
			t.Fatalf("UnmarshalFirst #%d: %v", index, err)
		}
		if decoded.Count != index {
			t.Errorf("item %d: Count = %d", index, decoded.Count)
		}
	}
	if len(rest) != 0 {
		t.Errorf("%d trailing bytes", len(rest))
	}
}

func TestUnmarshalFirstPartialItem(t *testing.T) {
	data, err := Marshal(samplePayload{Target: "root//:partial", Count: 9})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded samplePayload
	_, err = UnmarshalFirst(data[:len(data)-3], &decoded)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("UnmarshalFirst on truncated item: got %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestStreamDecoder(t *testing.T) {
	var buffer bytes.Buffer
	for _, payload := range []samplePayload{{Target: "a", Count: 1}, {Target: "b", Count: 2}} {
		item, err := Marshal(payload)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		buffer.Write(item)
	}

	decoder := NewDecoder(&buffer)
	var targets []string
	for {
		var decoded samplePayload
		if err := decoder.Decode(&decoded); err != nil {
			if err == io.EOF {
				break
			}
			t.Fatalf("Decode: %v", err)
		}
		targets = append(targets, decoded.Target)
	}
	if strings.Join(targets, ",") != "a,b" {
		t.Errorf("targets = %v", targets)
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(samplePayload{Target: "x", Count: 2})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation := Diagnose(data)
	if !strings.Contains(notation, `"target"`) {
		t.Errorf("Diagnose = %q, want the field name", notation)
	}
	if got := Diagnose([]byte{0xff}); !strings.HasPrefix(got, "<undiagnosable") {
		t.Errorf("Diagnose(garbage) = %q", got)
	}
}
