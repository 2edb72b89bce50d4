// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"time"

	"github.com/bureau-foundation/buildwatch/lib/clock"
	"github.com/bureau-foundation/buildwatch/lib/eventobserver"
	"github.com/bureau-foundation/buildwatch/lib/eventwatch"
	"github.com/bureau-foundation/buildwatch/lib/progress"
	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
)

// peekedSource returns an event read ahead of time before delegating.
type peekedSource struct {
	source eventwatch.Source
	first  *buildevent.Event
	err    error
	used   bool
}

// peek reads the first event of source to learn the run's trace id.
// A read error is held and returned by the first Next.
func peek(ctx context.Context, source eventwatch.Source) (*peekedSource, buildevent.TraceID) {
	first, err := source.Next(ctx)
	peeked := &peekedSource{source: source, first: first, err: err}
	if err != nil || first == nil {
		return peeked, buildevent.TraceID{}
	}
	return peeked, first.TraceID
}

func (peeked *peekedSource) Next(ctx context.Context) (*buildevent.Event, error) {
	if !peeked.used {
		peeked.used = true
		return peeked.first, peeked.err
	}
	return peeked.source.Next(ctx)
}

// replayClock reads as the timestamp of the last replayed event, so a
// replay derives the same receive times, delays, and elapsed times as
// the original run. Only the replaying goroutine touches it.
type replayClock struct {
	now time.Time
}

func (replay *replayClock) Now() time.Time { return replay.now }

func (replay *replayClock) NewTicker(interval time.Duration) *clock.Ticker {
	return clock.Real().NewTicker(interval)
}

// stampingSource advances a replayClock to each event's timestamp.
type stampingSource struct {
	source eventwatch.Source
	clock  *replayClock
}

func (stamping stampingSource) Next(ctx context.Context) (*buildevent.Event, error) {
	event, err := stamping.source.Next(ctx)
	if err == nil && event != nil && !event.Timestamp.IsZero() {
		stamping.clock.now = event.Timestamp
	}
	return event, err
}

// report is the result of a replay.
type report struct {
	Log      logInfo          `json:"log"`
	Rich     bool             `json:"rich"`
	Observed uint64           `json:"observed"`
	Rejected uint64           `json:"rejected"`
	Summary  progress.Summary `json:"summary"`
}

// logInfo identifies the replayed log.
type logInfo struct {
	Path   string `json:"path"`
	Events uint64 `json:"events"`
	Digest string `json:"digest"`
}

// replay feeds every event of source through a new observer and
// summarizes the result.
func replay(ctx context.Context, session *session, source eventwatch.Source, rich bool) (report, error) {
	peeked, traceID := peek(ctx, source)
	if rich {
		extra := eventobserver.NewDebugExtraWithCapacity(session.cfg.DebugEventCapacity)
		return replayWith(ctx, session, peeked, eventobserver.New(traceID, extra))
	}
	return replayWith(ctx, session, peeked, eventobserver.NewPlain(traceID))
}

func replayWith[E eventobserver.Extra](ctx context.Context, session *session, source eventwatch.Source, observer *eventobserver.EventObserver[E]) (report, error) {
	replayClock := &replayClock{}
	watcher := eventwatch.New(observer, eventwatch.Config{
		Clock:       replayClock,
		Logger:      session.logger,
		ErrorPolicy: session.policy,
	})
	defer watcher.Close()

	if err := watcher.Run(ctx, stampingSource{source: source, clock: replayClock}); err != nil {
		return report{}, err
	}

	stats := watcher.Stats()
	result := report{
		Rich:     isRich(observer),
		Observed: stats.Observed,
		Rejected: stats.Rejected,
	}
	watcher.View(func(observer *eventobserver.EventObserver[E]) {
		result.Summary = progress.Summarize(observer, replayClock.Now())
	})
	session.logger.Debug("replay finished",
		"observed", stats.Observed,
		"rejected", stats.Rejected,
	)
	return result, nil
}

func isRich[E eventobserver.Extra](observer *eventobserver.EventObserver[E]) bool {
	_, ok := any(observer.Extra()).(*eventobserver.DebugExtra)
	return ok
}
