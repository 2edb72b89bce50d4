// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The event watcher stamps every event with a receive time and the
// log follower polls on a ticker. Both take a Clock instead of calling
// the time package directly, so tests can control receive times
// exactly:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	watcher := eventwatch.New(observer, eventwatch.Config{Clock: fake})
//	fake.Advance(250 * time.Millisecond)
package clock
