// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventobserver

import (
	"time"

	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
)

// ActionStats accumulates counts over finished actions.
type ActionStats struct {
	LocalActions               uint64
	LocalWorkerActions         uint64
	RemoteActions              uint64
	CachedActions              uint64
	RemoteDepFileCachedActions uint64
	LocalDepFileActions        uint64
	// OtherActions covers actions without a command (simple,
	// deferred) and unset kinds.
	OtherActions uint64

	FailedActions uint64

	// FallbackActions counts actions whose final command ran locally
	// after an earlier remote attempt failed or was cancelled.
	FallbackActions uint64

	// WallTime is the sum of reported action wall times.
	WallTime time.Duration
}

// Update folds one finished action into the counts.
func (stats *ActionStats) Update(action *buildevent.ActionExecutionEnd) {
	switch action.Kind {
	case buildevent.ActionExecutionLocal:
		stats.LocalActions++
	case buildevent.ActionExecutionLocalWorker:
		stats.LocalWorkerActions++
	case buildevent.ActionExecutionRemote:
		stats.RemoteActions++
	case buildevent.ActionExecutionActionCache:
		stats.CachedActions++
	case buildevent.ActionExecutionRemoteDepFileCache:
		stats.RemoteDepFileCachedActions++
	case buildevent.ActionExecutionLocalDepFile:
		stats.LocalDepFileActions++
	default:
		stats.OtherActions++
	}
	if action.Failed {
		stats.FailedActions++
	}
	if wasFallback(action.Commands) {
		stats.FallbackActions++
	}
	stats.WallTime += action.WallTime
}

func wasFallback(commands []buildevent.CommandExecution) bool {
	if len(commands) < 2 {
		return false
	}
	final := commands[len(commands)-1]
	if final.Executor != buildevent.ExecutorLocal && final.Executor != buildevent.ExecutorWorker {
		return false
	}
	for _, attempt := range commands[:len(commands)-1] {
		if attempt.Executor != buildevent.ExecutorRemote {
			continue
		}
		switch attempt.Status {
		case buildevent.CommandStatusFailure, buildevent.CommandStatusCancelled, buildevent.CommandStatusTimeout:
			return true
		}
	}
	return false
}

// Completed returns the number of finished actions of any kind.
func (stats *ActionStats) Completed() uint64 {
	return stats.LocalActions + stats.LocalWorkerActions + stats.RemoteActions +
		stats.CachedActions + stats.RemoteDepFileCachedActions +
		stats.LocalDepFileActions + stats.OtherActions
}

// Executed returns the number of actions that ran a command.
func (stats *ActionStats) Executed() uint64 {
	return stats.LocalActions + stats.LocalWorkerActions + stats.RemoteActions
}

// CacheHitPercent returns the share of command-bearing actions served
// from a cache, rounded down. Zero when nothing ran.
func (stats *ActionStats) CacheHitPercent() uint64 {
	hits := stats.CachedActions + stats.RemoteDepFileCachedActions
	total := hits + stats.Executed()
	if total == 0 {
		return 0
	}
	return hits * 100 / total
}
