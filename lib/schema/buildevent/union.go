// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package buildevent

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/buildwatch/lib/codec"
)

// Variant is implemented by every member of every tagged union in this
// package. VariantTag is the member's name on the wire.
type Variant interface {
	VariantTag() string
}

// unknownVariant marks the Unknown member of each union.
type unknownVariant interface {
	Variant
	unknown()
}

// IsUnknown reports whether v is the Unknown member of its union.
func IsUnknown(v Variant) bool {
	_, ok := v.(unknownVariant)
	return ok
}

// wireFormat abstracts the two encodings so that each union is decoded
// by one code path. The union holder types call into it from their
// UnmarshalCBOR and UnmarshalJSON methods.
type wireFormat struct {
	name      string
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
	// members splits an encoded object into its raw member values.
	members func([]byte) (map[string][]byte, error)
	isNull  func([]byte) bool
}

var cborFormat = wireFormat{
	name:      "cbor",
	marshal:   codec.Marshal,
	unmarshal: codec.Unmarshal,
	members: func(data []byte) (map[string][]byte, error) {
		var object map[string]codec.RawMessage
		if err := codec.Unmarshal(data, &object); err != nil {
			return nil, err
		}
		return rawMembers(object), nil
	},
	isNull: func(data []byte) bool {
		// 0xf6 is CBOR null, 0xf7 undefined.
		return len(data) == 1 && (data[0] == 0xf6 || data[0] == 0xf7)
	},
}

var jsonFormat = wireFormat{
	name:      "json",
	marshal:   json.Marshal,
	unmarshal: json.Unmarshal,
	members: func(data []byte) (map[string][]byte, error) {
		var object map[string]json.RawMessage
		if err := json.Unmarshal(data, &object); err != nil {
			return nil, err
		}
		return rawMembers(object), nil
	},
	isNull: func(data []byte) bool {
		return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
	},
}

func rawMembers[R ~[]byte](object map[string]R) map[string][]byte {
	members := make(map[string][]byte, len(object))
	for key, value := range object {
		members[key] = []byte(value)
	}
	return members
}

// unionDef describes one union: its known variants by tag and how to
// represent a tag it does not know.
type unionDef[T Variant] struct {
	name     string
	variants map[string]func() T
	unknown  func(tag string) T
}

// decode decodes the externally tagged value in data. Absent or null
// data yields the zero T (a nil interface).
func (def unionDef[T]) decode(format wireFormat, data []byte) (T, error) {
	var zero T
	if len(data) == 0 || format.isNull(data) {
		return zero, nil
	}
	members, err := format.members(data)
	if err != nil {
		return zero, fmt.Errorf("decoding %s data (%s): %w", def.name, format.name, err)
	}
	if len(members) > 1 {
		return zero, fmt.Errorf("%s data has %d variants set, want one", def.name, len(members))
	}
	for tag, payload := range members {
		construct, known := def.variants[tag]
		if !known {
			return def.unknown(tag), nil
		}
		value := construct()
		if !format.isNull(payload) {
			if err := format.unmarshal(payload, value); err != nil {
				return zero, fmt.Errorf("decoding %s/%s: %w", def.name, tag, err)
			}
		}
		return value, nil
	}
	return zero, nil
}

// encodeUnion returns the externally tagged form of value, or nil when
// value is nil so that the caller omits the member.
func encodeUnion[T Variant](value T) any {
	if any(value) == nil {
		return nil
	}
	return map[string]any{value.VariantTag(): value}
}

// decodeMember unmarshals members[key] into target when present and
// not null.
func decodeMember(format wireFormat, members map[string][]byte, key string, target any) error {
	raw, ok := members[key]
	if !ok || format.isNull(raw) {
		return nil
	}
	if err := format.unmarshal(raw, target); err != nil {
		return fmt.Errorf("decoding %q: %w", key, err)
	}
	return nil
}

// tagOf returns the variant tag, or "<missing>" for a nil payload.
func tagOf[T Variant](value T) string {
	if any(value) == nil {
		return "<missing>"
	}
	return value.VariantTag()
}
