// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventwatch runs an [eventobserver.EventObserver] for live
// consumers.
//
// An EventObserver does no locking and leaves the handling of a
// rejected event to its caller. A [Watcher] supplies both: a read-write
// lock so one goroutine can feed events while any number of renderers
// read projections, and an [ErrorPolicy] that decides whether a
// rejected event is logged and skipped or stops the run. Receive times
// come from an injected [clock.Clock].
//
// Renderers that redraw on change call [Watcher.Subscribe]. Delivery
// never blocks the writer: a subscriber that falls behind loses
// notifications and catches up by reading current state on the next
// one.
package eventwatch
