// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventobserver

import (
	"slices"
	"time"

	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
)

// OpenSpan is a span that has started and not yet ended.
type OpenSpan struct {
	ID       buildevent.SpanID
	ParentID buildevent.SpanID

	// Start is the SpanStart event's payload. Its Data may be nil or
	// unknown; the tracker does not interpret it.
	Start *buildevent.SpanStart

	// Started is the receive time of the start event.
	Started time.Time

	sequence uint64
	children map[buildevent.SpanID]struct{}
}

// Elapsed returns how long the span has been open as of now.
func (span *OpenSpan) Elapsed(now time.Time) time.Duration {
	return now.Sub(span.Started)
}

// IsAction reports whether the span is an action execution.
func (span *OpenSpan) IsAction() bool {
	_, ok := span.Start.Data.(*buildevent.ActionExecutionStart)
	return ok
}

// SpanTracker follows the span tree of a run. It is updated by every
// event before anything else looks at the payload.
type SpanTracker struct {
	open      map[buildevent.SpanID]*OpenSpan
	roots     map[buildevent.SpanID]struct{}
	sequence  uint64
	completed uint64
	// completedByKind counts ended spans by start tag.
	completedByKind map[string]uint64
}

// NewSpanTracker returns an empty tracker.
func NewSpanTracker() *SpanTracker {
	return &SpanTracker{
		open:            make(map[buildevent.SpanID]*OpenSpan),
		roots:           make(map[buildevent.SpanID]struct{}),
		completedByKind: make(map[string]uint64),
	}
}

// HandleEvent applies span starts and ends. Other events are ignored.
func (tracker *SpanTracker) HandleEvent(receiveTime time.Time, event *buildevent.Event) error {
	switch data := event.Data.(type) {
	case *buildevent.SpanStart:
		return tracker.start(receiveTime, event, data)
	case *buildevent.SpanEnd:
		return tracker.end(event)
	}
	return nil
}

func (tracker *SpanTracker) start(receiveTime time.Time, event *buildevent.Event, start *buildevent.SpanStart) error {
	if event.SpanID.IsZero() {
		return &SpanError{SpanID: event.SpanID, Reason: "start without a span id"}
	}
	if _, exists := tracker.open[event.SpanID]; exists {
		return &SpanError{SpanID: event.SpanID, Reason: "started while already open"}
	}
	if event.ParentID == event.SpanID {
		return &SpanError{SpanID: event.SpanID, Reason: "span is its own parent"}
	}

	tracker.sequence++
	span := &OpenSpan{
		ID:       event.SpanID,
		ParentID: event.ParentID,
		Start:    start,
		Started:  receiveTime,
		sequence: tracker.sequence,
		children: make(map[buildevent.SpanID]struct{}),
	}
	tracker.open[span.ID] = span

	if parent, ok := tracker.open[event.ParentID]; ok && !event.ParentID.IsZero() {
		parent.children[span.ID] = struct{}{}
	} else {
		tracker.roots[span.ID] = struct{}{}
	}
	return nil
}

func (tracker *SpanTracker) end(event *buildevent.Event) error {
	span, ok := tracker.open[event.SpanID]
	if !ok {
		return &SpanError{SpanID: event.SpanID, Reason: "ended but not open"}
	}
	delete(tracker.open, span.ID)
	delete(tracker.roots, span.ID)
	if parent, ok := tracker.open[span.ParentID]; ok {
		delete(parent.children, span.ID)
	}
	// Children that outlive their parent become roots.
	for child := range span.children {
		if child == span.ID {
			continue
		}
		tracker.roots[child] = struct{}{}
	}

	tracker.completed++
	tracker.completedByKind[startTag(span.Start)]++
	return nil
}

func startTag(start *buildevent.SpanStart) string {
	if start == nil || start.Data == nil {
		return "<missing>"
	}
	return start.Data.VariantTag()
}

// Span returns the open span with the given id.
func (tracker *SpanTracker) Span(id buildevent.SpanID) (*OpenSpan, bool) {
	span, ok := tracker.open[id]
	return span, ok
}

// OpenCount returns the number of open spans.
func (tracker *SpanTracker) OpenCount() int { return len(tracker.open) }

// Completed returns the number of spans that have ended.
func (tracker *SpanTracker) Completed() uint64 { return tracker.completed }

// CompletedByKind returns the number of ended spans whose start carried
// the given tag, e.g. "ActionExecution".
func (tracker *SpanTracker) CompletedByKind(tag string) uint64 {
	return tracker.completedByKind[tag]
}

// Roots returns open spans without an open parent, oldest first.
func (tracker *SpanTracker) Roots() []*OpenSpan {
	return tracker.sorted(tracker.roots)
}

// Children returns the open children of span id, oldest first.
func (tracker *SpanTracker) Children(id buildevent.SpanID) []*OpenSpan {
	span, ok := tracker.open[id]
	if !ok {
		return nil
	}
	return tracker.sorted(span.children)
}

// ActiveActions returns open action execution spans, oldest first.
func (tracker *SpanTracker) ActiveActions() []*OpenSpan {
	var actions []*OpenSpan
	for _, span := range tracker.open {
		if span.IsAction() {
			actions = append(actions, span)
		}
	}
	sortBySequence(actions)
	return actions
}

func (tracker *SpanTracker) sorted(ids map[buildevent.SpanID]struct{}) []*OpenSpan {
	spans := make([]*OpenSpan, 0, len(ids))
	for id := range ids {
		spans = append(spans, tracker.open[id])
	}
	sortBySequence(spans)
	return spans
}

func sortBySequence(spans []*OpenSpan) {
	slices.SortFunc(spans, func(a, b *OpenSpan) int {
		switch {
		case a.sequence < b.sequence:
			return -1
		case a.sequence > b.sequence:
			return 1
		}
		return 0
	})
}
