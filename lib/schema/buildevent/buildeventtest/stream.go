// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package buildeventtest builds event sequences for tests. A Stream
// assigns span ids and advances the logical timestamp by a fixed step
// per event, so tests state only what matters to them.
package buildeventtest

import (
	"time"

	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
)

// Epoch is the logical timestamp of the first event of a new Stream.
var Epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// TraceID is the fixed run identity used by NewStream.
var TraceID = buildevent.TraceID{
	0x6b, 0xa7, 0xb8, 0x10, 0x9d, 0xad, 0x11, 0xd1,
	0x80, 0xb4, 0x00, 0xc0, 0x4f, 0xd4, 0x30, 0xc8,
}

// Stream produces events for one run.
type Stream struct {
	TraceID   buildevent.TraceID
	Timestamp time.Time
	Step      time.Duration

	lastSpan buildevent.SpanID
}

// NewStream returns a Stream starting at Epoch with a one second step.
func NewStream() *Stream {
	return &Stream{TraceID: TraceID, Timestamp: Epoch, Step: time.Second}
}

// Event wraps arbitrary top-level data, including nil, in an event.
func (stream *Stream) Event(spanID, parentID buildevent.SpanID, data buildevent.EventData) *buildevent.Event {
	event := &buildevent.Event{
		Timestamp: stream.Timestamp,
		TraceID:   stream.TraceID,
		SpanID:    spanID,
		ParentID:  parentID,
		Data:      data,
	}
	stream.Timestamp = stream.Timestamp.Add(stream.Step)
	return event
}

// StartSpan opens a new span under parent (zero for a root) and returns
// the event and the span's id.
func (stream *Stream) StartSpan(parent buildevent.SpanID, data buildevent.SpanStartData) (*buildevent.Event, buildevent.SpanID) {
	stream.lastSpan++
	id := stream.lastSpan
	return stream.Event(id, parent, &buildevent.SpanStart{Data: data}), id
}

// EndSpan closes span id.
func (stream *Stream) EndSpan(id, parent buildevent.SpanID, duration time.Duration, data buildevent.SpanEndData) *buildevent.Event {
	return stream.Event(id, parent, &buildevent.SpanEnd{Duration: duration, Data: data})
}

// Instant returns an instant event carrying data, which may be nil.
func (stream *Stream) Instant(data buildevent.InstantData) *buildevent.Event {
	return stream.Event(0, 0, &buildevent.Instant{Data: data})
}

// Action returns a start/end pair for one action owned by owner.
func (stream *Stream) Action(parent buildevent.SpanID, owner string, kind buildevent.ActionExecutionKind, wallTime time.Duration) (start, end *buildevent.Event) {
	key := buildevent.ActionKey{Owner: owner, Category: "write"}
	start, id := stream.StartSpan(parent, &buildevent.ActionExecutionStart{Key: key})
	end = stream.EndSpan(id, parent, wallTime, &buildevent.ActionExecutionEnd{
		Key:      key,
		Kind:     kind,
		WallTime: wallTime,
	})
	return start, end
}

// Tests returns a discovery event naming the given tests.
func (stream *Stream) Tests(suite string, names ...string) *buildevent.Event {
	return stream.Instant(&buildevent.TestDiscovery{Data: &buildevent.TestSuite{SuiteName: suite, TestNames: names}})
}

// Snapshot returns a resource snapshot event.
func (stream *Stream) Snapshot(snapshot buildevent.Snapshot) *buildevent.Event {
	return stream.Instant(&snapshot)
}
