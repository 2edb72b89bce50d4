// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventobserver

import (
	"maps"
	"time"

	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
)

// DefaultRecentEvents is how many recent events a DebugExtra retains
// unless told otherwise.
const DefaultRecentEvents = 256

// RecordedEvent is one event as seen by the debug recorder.
type RecordedEvent struct {
	// Offset is the event's position in the run, starting at zero.
	Offset uint64

	// Received is when the event arrived.
	Received time.Time

	// Kind is the event's tag path, see buildevent.Describe.
	Kind string

	// Delay is Received minus the event's logical timestamp. Negative
	// when the producer's clock runs ahead.
	Delay time.Duration

	Event *buildevent.Event
}

// DebugEventsState records every event for debugging: counts per kind
// and a bounded window of recent events. It never fails.
type DebugEventsState struct {
	recent        *ring[RecordedEvent]
	total         uint64
	unknown       uint64
	counts        map[string]uint64
	maxDelay      time.Duration
	firstReceived time.Time
	lastReceived  time.Time
}

// NewDebugEventsState returns a recorder retaining at most capacity
// recent events. Capacities below one are raised to one.
func NewDebugEventsState(capacity int) *DebugEventsState {
	return &DebugEventsState{
		recent: newRing[RecordedEvent](capacity),
		counts: make(map[string]uint64),
	}
}

// HandleEvent records event.
func (state *DebugEventsState) HandleEvent(receiveTime time.Time, event *buildevent.Event) {
	kind := buildevent.Describe(event)
	var delay time.Duration
	if event != nil && !event.Timestamp.IsZero() {
		delay = receiveTime.Sub(event.Timestamp)
	}

	state.recent.push(RecordedEvent{
		Offset:   state.total,
		Received: receiveTime,
		Kind:     kind,
		Delay:    delay,
		Event:    event,
	})
	if state.total == 0 {
		state.firstReceived = receiveTime
	}
	state.total++
	state.counts[kind]++
	if buildevent.HasUnknownVariant(event) {
		state.unknown++
	}
	if delay > state.maxDelay {
		state.maxDelay = delay
	}
	state.lastReceived = receiveTime
}

// Total returns the number of events recorded.
func (state *DebugEventsState) Total() uint64 { return state.total }

// Unknown returns the number of events carrying a variant this build
// does not know at any level.
func (state *DebugEventsState) Unknown() uint64 { return state.unknown }

// Count returns the number of events of one kind.
func (state *DebugEventsState) Count(kind string) uint64 { return state.counts[kind] }

// Counts returns a copy of the per-kind counts.
func (state *DebugEventsState) Counts() map[string]uint64 {
	return maps.Clone(state.counts)
}

// MaxDelay returns the largest receive delay seen.
func (state *DebugEventsState) MaxDelay() time.Duration { return state.maxDelay }

// Received returns the receive times of the first and last events.
// Both are zero before the first event.
func (state *DebugEventsState) Received() (first, last time.Time) {
	return state.firstReceived, state.lastReceived
}

// ReadFrom returns retained events with Offset at or after offset,
// oldest first, and whether any events between offset and the first
// returned one were evicted.
func (state *DebugEventsState) ReadFrom(offset uint64) (events []RecordedEvent, missed bool) {
	events, from := state.recent.readFrom(offset)
	return events, from > offset
}

// CurrentOffset returns the offset the next recorded event will get.
func (state *DebugEventsState) CurrentOffset() uint64 { return state.recent.currentOffset() }
