// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventobserver turns an ordered stream of build events into
// live, queryable state.
//
// [EventObserver] is created once per run. Each call to Observe feeds
// one event, in arrival order, to the span tracker and then to the
// projections its payload affects: action statistics, remote execution
// state, the two most recent resource snapshots, session facts, test
// state, and debugger state. The observer's type parameter selects an
// [Extra] strategy: [DebugExtra] additionally maintains incremental
// engine state and a debug-event recorder, [NoopExtra] does nothing and
// compiles away.
//
// # Errors
//
// A payload missing where its declared variant requires one is a
// [*MissingDataError]. Span nesting violations are [*SpanError].
// Errors from test and debugger state are returned unchanged. Observe
// returns at the first error and does not roll back work already done
// for that event: the span tracker runs before any payload is
// inspected, so span liveness never depends on a malformed payload.
//
// Unknown variants at any level are accepted and ignored.
//
// # Concurrency
//
// An EventObserver performs no locking. Exactly one goroutine calls
// Observe; readers use the accessors only while no Observe call is in
// progress. lib/eventwatch provides the read-write lock that enforces
// this for live consumers.
package eventobserver
