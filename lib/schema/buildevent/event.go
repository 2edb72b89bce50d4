// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package buildevent

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bureau-foundation/buildwatch/lib/codec"
)

// Event is one unit of the ordered build-lifecycle stream.
type Event struct {
	// Timestamp is the producer's logical timestamp. It is not
	// guaranteed to be monotonic across the stream; consumers order
	// by arrival, not by Timestamp.
	Timestamp time.Time

	// TraceID identifies the run that produced the event.
	TraceID TraceID

	// SpanID is the span this event opens or closes. Zero for
	// instant events.
	SpanID SpanID

	// ParentID is the enclosing span, zero at the root.
	ParentID SpanID

	// Data is the top-level payload. Nil when the producer omitted it.
	Data EventData
}

// EventData is the top-level union: SpanStart, SpanEnd, Instant, or
// UnknownEventData.
type EventData interface {
	Variant
	isEventData()
}

// UnknownEventData is a top-level kind this package does not know.
type UnknownEventData struct {
	Tag string `json:"-"`
}

func (u *UnknownEventData) VariantTag() string { return u.Tag }
func (*UnknownEventData) isEventData()         {}
func (*UnknownEventData) unknown()             {}

var eventDataUnion = unionDef[EventData]{
	name: "Event",
	variants: map[string]func() EventData{
		"SpanStart": func() EventData { return new(SpanStart) },
		"SpanEnd":   func() EventData { return new(SpanEnd) },
		"Instant":   func() EventData { return new(Instant) },
	},
	unknown: func(tag string) EventData { return &UnknownEventData{Tag: tag} },
}

func (event Event) wire() map[string]any {
	object := map[string]any{
		"trace_id": event.TraceID,
		"span_id":  uint64(event.SpanID),
	}
	if !event.Timestamp.IsZero() {
		object["timestamp"] = event.Timestamp.UnixNano()
	}
	if event.ParentID != 0 {
		object["parent_id"] = uint64(event.ParentID)
	}
	if data := encodeUnion(event.Data); data != nil {
		object["data"] = data
	}
	return object
}

func (event *Event) decode(format wireFormat, data []byte) error {
	members, err := format.members(data)
	if err != nil {
		return fmt.Errorf("decoding event (%s): %w", format.name, err)
	}

	var timestamp int64
	var spanID, parentID uint64
	decoded := Event{}
	if err := decodeMember(format, members, "timestamp", &timestamp); err != nil {
		return err
	}
	if err := decodeMember(format, members, "trace_id", &decoded.TraceID); err != nil {
		return err
	}
	if err := decodeMember(format, members, "span_id", &spanID); err != nil {
		return err
	}
	if err := decodeMember(format, members, "parent_id", &parentID); err != nil {
		return err
	}
	if _, ok := members["timestamp"]; ok {
		decoded.Timestamp = time.Unix(0, timestamp).UTC()
	}
	decoded.SpanID = SpanID(spanID)
	decoded.ParentID = SpanID(parentID)
	decoded.Data, err = eventDataUnion.decode(format, members["data"])
	if err != nil {
		return err
	}
	*event = decoded
	return nil
}

// MarshalCBOR implements cbor.Marshaler.
func (event Event) MarshalCBOR() ([]byte, error) { return codec.Marshal(event.wire()) }

// UnmarshalCBOR implements cbor.Unmarshaler.
func (event *Event) UnmarshalCBOR(data []byte) error { return event.decode(cborFormat, data) }

// MarshalJSON implements json.Marshaler.
func (event Event) MarshalJSON() ([]byte, error) { return json.Marshal(event.wire()) }

// UnmarshalJSON implements json.Unmarshaler.
func (event *Event) UnmarshalJSON(data []byte) error { return event.decode(jsonFormat, data) }

// SpanStart opens the span identified by the enclosing Event's SpanID.
type SpanStart struct {
	Data SpanStartData
}

func (*SpanStart) VariantTag() string { return "SpanStart" }
func (*SpanStart) isEventData()       {}

func (start SpanStart) wire() map[string]any {
	object := map[string]any{}
	if data := encodeUnion(start.Data); data != nil {
		object["data"] = data
	}
	return object
}

func (start *SpanStart) decode(format wireFormat, data []byte) error {
	members, err := format.members(data)
	if err != nil {
		return fmt.Errorf("decoding SpanStart (%s): %w", format.name, err)
	}
	start.Data, err = spanStartDataUnion.decode(format, members["data"])
	return err
}

func (start SpanStart) MarshalCBOR() ([]byte, error)    { return codec.Marshal(start.wire()) }
func (start *SpanStart) UnmarshalCBOR(data []byte) error { return start.decode(cborFormat, data) }
func (start SpanStart) MarshalJSON() ([]byte, error)    { return json.Marshal(start.wire()) }
func (start *SpanStart) UnmarshalJSON(data []byte) error { return start.decode(jsonFormat, data) }

// SpanEnd closes the span identified by the enclosing Event's SpanID.
type SpanEnd struct {
	// Duration is the producer-measured span duration.
	Duration time.Duration

	Data SpanEndData
}

func (*SpanEnd) VariantTag() string { return "SpanEnd" }
func (*SpanEnd) isEventData()       {}

func (end SpanEnd) wire() map[string]any {
	object := map[string]any{"duration_ns": int64(end.Duration)}
	if data := encodeUnion(end.Data); data != nil {
		object["data"] = data
	}
	return object
}

func (end *SpanEnd) decode(format wireFormat, data []byte) error {
	members, err := format.members(data)
	if err != nil {
		return fmt.Errorf("decoding SpanEnd (%s): %w", format.name, err)
	}
	var nanos int64
	if err := decodeMember(format, members, "duration_ns", &nanos); err != nil {
		return err
	}
	end.Duration = time.Duration(nanos)
	end.Data, err = spanEndDataUnion.decode(format, members["data"])
	return err
}

func (end SpanEnd) MarshalCBOR() ([]byte, error)    { return codec.Marshal(end.wire()) }
func (end *SpanEnd) UnmarshalCBOR(data []byte) error { return end.decode(cborFormat, data) }
func (end SpanEnd) MarshalJSON() ([]byte, error)    { return json.Marshal(end.wire()) }
func (end *SpanEnd) UnmarshalJSON(data []byte) error { return end.decode(jsonFormat, data) }

// Instant is a durationless fact.
type Instant struct {
	Data InstantData
}

func (*Instant) VariantTag() string { return "Instant" }
func (*Instant) isEventData()       {}

func (instant Instant) wire() map[string]any {
	object := map[string]any{}
	if data := encodeUnion(instant.Data); data != nil {
		object["data"] = data
	}
	return object
}

func (instant *Instant) decode(format wireFormat, data []byte) error {
	members, err := format.members(data)
	if err != nil {
		return fmt.Errorf("decoding Instant (%s): %w", format.name, err)
	}
	instant.Data, err = instantDataUnion.decode(format, members["data"])
	return err
}

func (instant Instant) MarshalCBOR() ([]byte, error)    { return codec.Marshal(instant.wire()) }
func (instant *Instant) UnmarshalCBOR(data []byte) error { return instant.decode(cborFormat, data) }
func (instant Instant) MarshalJSON() ([]byte, error)    { return json.Marshal(instant.wire()) }
func (instant *Instant) UnmarshalJSON(data []byte) error { return instant.decode(jsonFormat, data) }
