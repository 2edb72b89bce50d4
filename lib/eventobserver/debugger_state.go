// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventobserver

import (
	"fmt"
	"slices"
	"time"

	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
)

// DebuggerState holds the latest Starlark debugger snapshot.
type DebuggerState struct {
	updated  time.Time
	sessions []buildevent.DebuggerSession
	updates  uint64
}

// Update replaces the held snapshot. A snapshot with an empty or
// repeated session id is rejected and the previous one is kept.
func (state *DebuggerState) Update(timestamp time.Time, snapshot *buildevent.DebugAdapterSnapshot) error {
	seen := make(map[string]struct{}, len(snapshot.Sessions))
	for _, session := range snapshot.Sessions {
		if session.ID == "" {
			return fmt.Errorf("debugger snapshot: session without an id")
		}
		if _, duplicate := seen[session.ID]; duplicate {
			return fmt.Errorf("debugger snapshot: session %q listed twice", session.ID)
		}
		seen[session.ID] = struct{}{}
	}
	state.updated = timestamp
	state.sessions = slices.Clone(snapshot.Sessions)
	state.updates++
	return nil
}

// Attached reports whether any debugger session was attached as of the
// last snapshot.
func (state *DebuggerState) Attached() bool { return len(state.sessions) > 0 }

// Sessions returns the sessions of the last snapshot.
func (state *DebuggerState) Sessions() []buildevent.DebuggerSession {
	return slices.Clone(state.sessions)
}

// PausedThreads returns the total paused threads across sessions.
func (state *DebuggerState) PausedThreads() uint32 {
	var paused uint32
	for _, session := range state.sessions {
		paused += session.PausedThreads
	}
	return paused
}

// Updated returns the logical timestamp of the last accepted snapshot
// and how many have been accepted.
func (state *DebuggerState) Updated() (time.Time, uint64) { return state.updated, state.updates }
