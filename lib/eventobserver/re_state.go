// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventobserver

import (
	"slices"

	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
)

// ReState tracks remote execution sessions and the latest remote
// execution counters.
type ReState struct {
	sessions []string
	// last is a copy of the most recent snapshot, nil before the first.
	last *buildevent.Snapshot
}

// AddReSession records a session id. Repeated announcements of the same
// session are ignored.
func (state *ReState) AddReSession(session *buildevent.ReSession) {
	if slices.Contains(state.sessions, session.SessionID) {
		return
	}
	state.sessions = append(state.sessions, session.SessionID)
}

// Update replaces the current counters with those of snapshot.
func (state *ReState) Update(snapshot *buildevent.Snapshot) {
	copied := *snapshot
	state.last = &copied
}

// Sessions returns session ids in announcement order.
func (state *ReState) Sessions() []string { return slices.Clone(state.sessions) }

// FirstSession returns the first announced session id, if any.
func (state *ReState) FirstSession() (string, bool) {
	if len(state.sessions) == 0 {
		return "", false
	}
	return state.sessions[0], true
}

// ActionsInFlight returns remote actions executing as of the last
// snapshot.
func (state *ReState) ActionsInFlight() uint64 {
	if state.last == nil {
		return 0
	}
	return state.last.ReActionsInFlight
}

// ActionsQueued returns remote actions waiting as of the last snapshot.
func (state *ReState) ActionsQueued() uint64 {
	if state.last == nil {
		return 0
	}
	return state.last.ReActionsQueued
}

// Transferred returns cumulative upload and download bytes as of the
// last snapshot.
func (state *ReState) Transferred() (upload, download uint64) {
	if state.last == nil {
		return 0, 0
	}
	return state.last.ReUploadBytes, state.last.ReDownloadBytes
}
