// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventobserver

import (
	"slices"
	"time"

	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
)

// EventObserver owns all derived state for one run. See the package
// documentation for the ordering and error contract of Observe.
type EventObserver[E Extra] struct {
	spanTracker   *SpanTracker
	actionStats   ActionStats
	reState       ReState
	twoSnapshots  TwoSnapshots
	sessionInfo   SessionInfo
	testState     TestState
	debuggerState DebuggerState
	extra         E
}

// New creates an observer for the run identified by traceID. extra is
// the strategy for optional projections, normally NewDebugExtra() or
// NoopExtra{}.
func New[E Extra](traceID buildevent.TraceID, extra E) *EventObserver[E] {
	return &EventObserver[E]{
		spanTracker: NewSpanTracker(),
		sessionInfo: SessionInfo{TraceID: traceID},
		extra:       extra,
	}
}

// NewDebug creates an observer that also maintains incremental engine
// state and the debug-event recorder.
func NewDebug(traceID buildevent.TraceID) *EventObserver[*DebugExtra] {
	return New(traceID, NewDebugExtra())
}

// NewPlain creates an observer with no optional projections.
func NewPlain(traceID buildevent.TraceID) *EventObserver[NoopExtra] {
	return New(traceID, NoopExtra{})
}

// Observe applies one event. receiveTime is when the event arrived,
// which may disagree with the event's logical timestamp.
func (o *EventObserver[E]) Observe(receiveTime time.Time, event *buildevent.Event) error {
	if err := o.spanTracker.HandleEvent(receiveTime, event); err != nil {
		return err
	}

	switch data := event.Data.(type) {
	case *buildevent.SpanEnd:
		if err := o.observeSpanEnd(data); err != nil {
			return err
		}
	case *buildevent.Instant:
		if err := o.observeInstant(event.Timestamp, data); err != nil {
			return err
		}
	}

	return o.extra.Observe(receiveTime, event)
}

func (o *EventObserver[E]) observeSpanEnd(end *buildevent.SpanEnd) error {
	switch data := end.Data.(type) {
	case nil:
		return &MissingDataError{Variant: "SpanEnd"}
	case *buildevent.ActionExecutionEnd:
		o.actionStats.Update(data)
	}
	return nil
}

func (o *EventObserver[E]) observeInstant(timestamp time.Time, instant *buildevent.Instant) error {
	switch data := instant.Data.(type) {
	case nil:
		return &MissingDataError{Variant: "Instant"}
	case *buildevent.ReSession:
		o.reState.AddReSession(data)
	case *buildevent.Snapshot:
		o.reState.Update(data)
		o.twoSnapshots.Update(timestamp, data)
	case *buildevent.TestDiscovery:
		switch discovery := data.Data.(type) {
		case nil:
			return &MissingDataError{Variant: "TestDiscovery"}
		case *buildevent.TestSessionInfo:
			session := *discovery
			o.sessionInfo.TestSession = &session
		case *buildevent.TestSuite:
			o.testState.Discovered += uint64(len(discovery.TestNames))
		}
	case *buildevent.TestResult:
		return o.testState.Update(data)
	case *buildevent.DebugAdapterSnapshot:
		return o.debuggerState.Update(timestamp, data)
	case *buildevent.TagEvent:
		if slices.Contains(data.Tags, modernDiceTag) {
			o.sessionInfo.ModernDice = true
		}
	}
	return nil
}

// Spans returns the span tracker.
func (o *EventObserver[E]) Spans() *SpanTracker { return o.spanTracker }

// ActionStats returns per-kind action counts.
func (o *EventObserver[E]) ActionStats() *ActionStats { return &o.actionStats }

// ReState returns remote execution state.
func (o *EventObserver[E]) ReState() *ReState { return &o.reState }

// TwoSnapshots returns the two most recent resource snapshots.
func (o *EventObserver[E]) TwoSnapshots() *TwoSnapshots { return &o.twoSnapshots }

// SessionInfo returns the run identity and session facts.
func (o *EventObserver[E]) SessionInfo() *SessionInfo { return &o.sessionInfo }

// DebuggerState returns the Starlark debugger projection.
func (o *EventObserver[E]) DebuggerState() *DebuggerState { return &o.debuggerState }

// TestState returns test counters.
func (o *EventObserver[E]) TestState() *TestState { return &o.testState }

// Extra returns the optional-projection strategy.
func (o *EventObserver[E]) Extra() E { return o.extra }
