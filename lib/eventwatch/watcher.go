// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventwatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/buildwatch/lib/clock"
	"github.com/bureau-foundation/buildwatch/lib/eventobserver"
	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
)

// DefaultSubscriberBuffer is the channel capacity of a subscription.
const DefaultSubscriberBuffer = 64

// Source yields events in arrival order. Next returns io.EOF when the
// stream ends. eventlog.Reader and eventlog.Follower implement it.
type Source interface {
	Next(ctx context.Context) (*buildevent.Event, error)
}

// Config configures a Watcher. Zero fields take defaults: the real
// clock, slog.Default(), PolicySkip, and DefaultSubscriberBuffer.
type Config struct {
	Clock            clock.Clock
	Logger           *slog.Logger
	ErrorPolicy      ErrorPolicy
	SubscriberBuffer int
}

// Update notifies subscribers that an event was handled.
type Update struct {
	// Sequence is the number of events handled so far, including this
	// one and any that were rejected.
	Sequence uint64

	// Kind is the event's tag path, see buildevent.Describe.
	Kind string

	// Received is the receive time stamped on the event.
	Received time.Time

	// Err is the observer's error when the event was rejected and
	// skipped, nil otherwise.
	Err error
}

// Stats counts what a Watcher has handled.
type Stats struct {
	// Observed is the number of events the observer accepted.
	Observed uint64

	// Rejected is the number of events the observer returned an error
	// for, under either policy.
	Rejected uint64

	// LastError is the most recent rejection, nil if none.
	LastError error

	// LastReceived is the receive time of the most recent event.
	LastReceived time.Time

	// Finished is set once Run has returned.
	Finished bool
}

// Watcher owns one EventObserver and serializes access to it: Observe
// holds the write lock, View holds the read lock.
type Watcher[E eventobserver.Extra] struct {
	mutex    sync.RWMutex
	observer *eventobserver.EventObserver[E]
	stats    Stats

	clock  clock.Clock
	logger *slog.Logger
	policy ErrorPolicy

	subscriberBuffer int
	subscribers      map[chan Update]struct{}
	closed           bool
	done             chan struct{}
}

// New wraps observer. The Watcher takes ownership: callers must not
// use observer directly afterwards.
func New[E eventobserver.Extra](observer *eventobserver.EventObserver[E], config Config) *Watcher[E] {
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.SubscriberBuffer <= 0 {
		config.SubscriberBuffer = DefaultSubscriberBuffer
	}
	return &Watcher[E]{
		observer:         observer,
		clock:            config.Clock,
		logger:           config.Logger,
		policy:           config.ErrorPolicy,
		subscriberBuffer: config.SubscriberBuffer,
		subscribers:      make(map[chan Update]struct{}),
		done:             make(chan struct{}),
	}
}

// Observe stamps event with the current time and applies it. Under
// PolicySkip a rejected event is logged and Observe returns nil; under
// PolicyAbort the observer's error is returned.
func (watcher *Watcher[E]) Observe(event *buildevent.Event) error {
	received := watcher.clock.Now()
	kind := buildevent.Describe(event)

	watcher.mutex.Lock()
	err := watcher.observer.Observe(received, event)
	if err != nil {
		watcher.stats.Rejected++
		watcher.stats.LastError = err
	} else {
		watcher.stats.Observed++
	}
	watcher.stats.LastReceived = received
	update := Update{
		Sequence: watcher.stats.Observed + watcher.stats.Rejected,
		Kind:     kind,
		Received: received,
		Err:      err,
	}
	watcher.publishLocked(update)
	watcher.mutex.Unlock()

	if err == nil {
		return nil
	}
	if watcher.policy == PolicyAbort {
		return fmt.Errorf("event %d (%s): %w", update.Sequence, kind, err)
	}
	watcher.logger.Warn("skipping rejected event",
		"sequence", update.Sequence,
		"kind", kind,
		"span_id", event.SpanID,
		"error", err,
	)
	return nil
}

// Run feeds events from source until it returns io.EOF, the context is
// done, the source fails, or an event is rejected under PolicyAbort.
// Reaching the end of the source is not an error.
func (watcher *Watcher[E]) Run(ctx context.Context, source Source) error {
	defer func() {
		watcher.mutex.Lock()
		watcher.stats.Finished = true
		watcher.mutex.Unlock()
	}()

	for {
		event, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			watcher.logger.Debug("event source drained", "events", watcher.Stats().Observed)
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading events: %w", err)
		}
		if err := watcher.Observe(event); err != nil {
			return err
		}
	}
}

// View calls read with the observer under the read lock. read must not
// retain the observer or any value borrowed from it after returning.
func (watcher *Watcher[E]) View(read func(*eventobserver.EventObserver[E])) {
	watcher.mutex.RLock()
	defer watcher.mutex.RUnlock()
	read(watcher.observer)
}

// Stats returns a copy of the counters.
func (watcher *Watcher[E]) Stats() Stats {
	watcher.mutex.RLock()
	defer watcher.mutex.RUnlock()
	return watcher.stats
}

// Subscribe returns a channel of Updates. The channel is closed when
// ctx is done or the Watcher is closed. Updates are dropped, not
// queued, when the channel is full.
func (watcher *Watcher[E]) Subscribe(ctx context.Context) <-chan Update {
	watcher.mutex.Lock()
	defer watcher.mutex.Unlock()

	channel := make(chan Update, watcher.subscriberBuffer)
	if watcher.closed {
		close(channel)
		return channel
	}
	watcher.subscribers[channel] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-watcher.done:
			return
		}
		watcher.mutex.Lock()
		defer watcher.mutex.Unlock()
		if _, ok := watcher.subscribers[channel]; ok {
			delete(watcher.subscribers, channel)
			close(channel)
		}
	}()
	return channel
}

// publishLocked delivers update to every subscriber without blocking.
// The caller holds the write lock.
func (watcher *Watcher[E]) publishLocked(update Update) {
	for channel := range watcher.subscribers {
		select {
		case channel <- update:
		default:
		}
	}
}

// Close closes every subscription and stops their context watchers.
// Observe keeps working afterwards; Subscribe returns closed channels.
func (watcher *Watcher[E]) Close() {
	watcher.mutex.Lock()
	defer watcher.mutex.Unlock()
	if watcher.closed {
		return
	}
	watcher.closed = true
	close(watcher.done)
	for channel := range watcher.subscribers {
		close(channel)
	}
	clear(watcher.subscribers)
}

// SubscriberCount returns the number of open subscriptions.
func (watcher *Watcher[E]) SubscriberCount() int {
	watcher.mutex.RLock()
	defer watcher.mutex.RUnlock()
	return len(watcher.subscribers)
}
