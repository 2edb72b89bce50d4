// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package buildevent

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// TraceID identifies one daemon invocation (one run). Every event of a
// run carries the same TraceID, and the observer is created for
// exactly one.
//
// Encoding: the canonical 36-character UUID text in both JSON and CBOR
// (via encoding.TextMarshaler).
type TraceID uuid.UUID

// NewTraceID returns a random (version 4) TraceID.
func NewTraceID() TraceID { return TraceID(uuid.New()) }

// ParseTraceID parses the textual UUID form.
func ParseTraceID(text string) (TraceID, error) {
	parsed, err := uuid.Parse(text)
	if err != nil {
		return TraceID{}, fmt.Errorf("invalid trace id %q: %w", text, err)
	}
	return TraceID(parsed), nil
}

// MarshalText implements encoding.TextMarshaler.
func (id TraceID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty text decodes
// to the zero TraceID.
func (id *TraceID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*id = TraceID{}
		return nil
	}
	parsed, err := ParseTraceID(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// IsZero reports whether this is the zero TraceID.
func (id TraceID) IsZero() bool { return id == TraceID{} }

func (id TraceID) String() string { return uuid.UUID(id).String() }

// SpanID identifies a span within a run. Zero means "no span": an
// event with ParentID zero has no enclosing span.
type SpanID uint64

// IsZero reports whether the id is unset.
func (id SpanID) IsZero() bool { return id == 0 }

func (id SpanID) String() string { return strconv.FormatUint(uint64(id), 10) }
