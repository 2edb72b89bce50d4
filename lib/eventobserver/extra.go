// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventobserver

import (
	"time"

	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
)

// Extra is the strategy for projections that not every consumer needs.
// EventObserver calls Observe after its own projections have accepted
// the event; the contract is the same as EventObserver.Observe.
type Extra interface {
	Observe(receiveTime time.Time, event *buildevent.Event) error
}

// DebugExtra maintains incremental engine state and records every
// event for debugging. Used when a rich display is attached.
type DebugExtra struct {
	diceState   DiceState
	debugEvents *DebugEventsState
}

// NewDebugExtra returns a DebugExtra retaining DefaultRecentEvents
// recent events.
func NewDebugExtra() *DebugExtra {
	return NewDebugExtraWithCapacity(DefaultRecentEvents)
}

// NewDebugExtraWithCapacity returns a DebugExtra retaining at most
// capacity recent events.
func NewDebugExtraWithCapacity(capacity int) *DebugExtra {
	return &DebugExtra{debugEvents: NewDebugEventsState(capacity)}
}

// Observe records the event, whatever its kind, and applies
// incremental engine snapshots.
func (extra *DebugExtra) Observe(receiveTime time.Time, event *buildevent.Event) error {
	extra.debugEvents.HandleEvent(receiveTime, event)

	instant, ok := event.Data.(*buildevent.Instant)
	if !ok {
		return nil
	}
	switch data := instant.Data.(type) {
	case nil:
		return &MissingDataError{Variant: "Instant"}
	case *buildevent.DiceStateSnapshot:
		extra.diceState.Update(data)
	}
	return nil
}

// DiceState returns the incremental engine projection.
func (extra *DebugExtra) DiceState() *DiceState { return &extra.diceState }

// DebugEvents returns the debug-event recorder.
func (extra *DebugExtra) DebugEvents() *DebugEventsState { return extra.debugEvents }

// NoopExtra maintains nothing.
type NoopExtra struct{}

// Observe does nothing.
func (NoopExtra) Observe(time.Time, *buildevent.Event) error { return nil }
