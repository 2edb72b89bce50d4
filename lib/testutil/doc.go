// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for buildwatch
// packages.
//
// [RequireReceive], [RequireClosed], and [RequireQuiet] wrap the
// select-with-timeout pattern used when a test waits on a channel fed
// by another goroutine (watcher notifications, follower output). They
// are the only place in the test suite that uses real wall-clock
// timeouts; everything else runs on lib/clock's fake clock.
//
// All helpers call t.Fatalf on failure rather than returning errors.
//
// This package has no buildwatch-internal dependencies.
package testutil
