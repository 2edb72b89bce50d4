// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventobserver

import "github.com/bureau-foundation/buildwatch/lib/schema/buildevent"

// modernDiceTag marks a run that uses the modern incremental engine.
const modernDiceTag = "which-dice:Modern"

// SessionInfo is the run identity plus facts learned during the run.
type SessionInfo struct {
	// TraceID is fixed when the observer is created.
	TraceID buildevent.TraceID

	// TestSession is the most recent test session descriptor, nil until
	// one is observed. Later descriptors replace earlier ones.
	TestSession *buildevent.TestSessionInfo

	// ModernDice becomes true when the run reports the modern
	// incremental engine and stays true.
	ModernDice bool
}
