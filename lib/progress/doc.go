// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package progress turns observer state into something a person can
// read.
//
// [Summarize] copies everything an [eventobserver.EventObserver]
// exposes into a [Summary], a plain value that can be rendered after
// the observer's lock is released or encoded as JSON. Rich sections
// (incremental engine state, debug-event statistics) are present only
// when the observer was built with [eventobserver.DebugExtra].
//
// [Renderer] draws a Summary as styled text with lipgloss. [Model] is a
// bubbletea program that polls a snapshot function on a tick and
// redraws; [LogHandler] routes slog records into its status line so
// logging does not tear the display.
package progress
