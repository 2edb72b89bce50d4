// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"time"

	"github.com/bureau-foundation/buildwatch/lib/eventobserver"
	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
)

// Summary is a point-in-time copy of observer state.
type Summary struct {
	TraceID     string `json:"trace_id"`
	ModernDice  bool   `json:"modern_dice"`
	TestSession string `json:"test_session,omitempty"`

	Spans           SpanSummary            `json:"spans"`
	Actions         ActionSummary          `json:"actions"`
	RemoteExecution RemoteExecutionSummary `json:"remote_execution"`
	Resources       ResourceSummary        `json:"resources"`
	Tests           TestSummary            `json:"tests"`
	Debugger        DebuggerSummary        `json:"debugger"`

	// Dice and Debug are nil unless the observer is rich.
	Dice  *DiceSummary  `json:"dice,omitempty"`
	Debug *DebugSummary `json:"debug,omitempty"`
}

// SpanSummary describes the span tree.
type SpanSummary struct {
	Open      int            `json:"open"`
	Completed uint64         `json:"completed"`
	Active    []ActiveAction `json:"active,omitempty"`
}

// ActiveAction is one action still running, oldest first.
type ActiveAction struct {
	Action  string        `json:"action"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// ActionSummary counts finished actions.
type ActionSummary struct {
	Completed       uint64        `json:"completed"`
	Local           uint64        `json:"local"`
	LocalWorker     uint64        `json:"local_worker"`
	Remote          uint64        `json:"remote"`
	Cached          uint64        `json:"cached"`
	RemoteDepFile   uint64        `json:"remote_dep_file_cached"`
	LocalDepFile    uint64        `json:"local_dep_file"`
	Other           uint64        `json:"other"`
	Failed          uint64        `json:"failed"`
	Fallback        uint64        `json:"fallback"`
	CacheHitPercent uint64        `json:"cache_hit_percent"`
	WallTime        time.Duration `json:"wall_time_ns"`
}

// RemoteExecutionSummary describes remote execution. Rates are nil
// until two snapshots allow computing them.
type RemoteExecutionSummary struct {
	Sessions      []string `json:"sessions,omitempty"`
	InFlight      uint64   `json:"in_flight"`
	Queued        uint64   `json:"queued"`
	UploadBytes   uint64   `json:"upload_bytes"`
	DownloadBytes uint64   `json:"download_bytes"`
	UploadRate    *float64 `json:"upload_bytes_per_second,omitempty"`
	DownloadRate  *float64 `json:"download_bytes_per_second,omitempty"`
}

// ResourceSummary describes daemon resource use from the last
// snapshot.
type ResourceSummary struct {
	Snapshots  int      `json:"snapshots"`
	RSSBytes   uint64   `json:"rss_bytes"`
	CPUPercent *float64 `json:"cpu_percent,omitempty"`
}

// TestSummary counts tests.
type TestSummary struct {
	Discovered     uint64 `json:"discovered"`
	Pass           uint64 `json:"pass"`
	Fail           uint64 `json:"fail"`
	Skipped        uint64 `json:"skipped"`
	Omitted        uint64 `json:"omitted"`
	Fatal          uint64 `json:"fatal"`
	Timeout        uint64 `json:"timeout"`
	ListingSuccess uint64 `json:"listing_success"`
	ListingFailed  uint64 `json:"listing_failed"`
	Rerun          uint64 `json:"rerun"`
}

// DebuggerSummary describes attached Starlark debuggers.
type DebuggerSummary struct {
	Attached      bool   `json:"attached"`
	Sessions      int    `json:"sessions"`
	PausedThreads uint32 `json:"paused_threads"`
}

// DiceSummary describes the incremental engine.
type DiceSummary struct {
	Updates  uint64             `json:"updates"`
	InFlight uint64             `json:"in_flight"`
	KeyTypes []DiceKeyTypeCount `json:"key_types,omitempty"`
}

// DiceKeyTypeCount is the in-flight count for one key type.
type DiceKeyTypeCount struct {
	KeyType  string `json:"key_type"`
	InFlight uint64 `json:"in_flight"`
	Finished uint64 `json:"finished"`
}

// DebugSummary describes the debug-event recorder. Window is the time
// between the first and last receive.
type DebugSummary struct {
	Events   uint64            `json:"events"`
	Unknown  uint64            `json:"unknown"`
	MaxDelay time.Duration     `json:"max_delay_ns"`
	Window   time.Duration     `json:"window_ns"`
	Kinds    map[string]uint64 `json:"kinds"`
	Recent   []string          `json:"recent,omitempty"`
}

// maxActiveActions bounds the active action list of a Summary.
const maxActiveActions = 8

// Summarize copies observer state. now is used for the elapsed time of
// running actions. Call it while holding whatever lock guards observer.
func Summarize[E eventobserver.Extra](observer *eventobserver.EventObserver[E], now time.Time) Summary {
	session := observer.SessionInfo()
	summary := Summary{
		TraceID:    session.TraceID.String(),
		ModernDice: session.ModernDice,
	}
	if session.TestSession != nil {
		summary.TestSession = session.TestSession.Info
	}

	spans := observer.Spans()
	summary.Spans = SpanSummary{Open: spans.OpenCount(), Completed: spans.Completed()}
	for _, span := range spans.ActiveActions() {
		if len(summary.Spans.Active) == maxActiveActions {
			break
		}
		summary.Spans.Active = append(summary.Spans.Active, ActiveAction{
			Action:  actionName(span),
			Elapsed: span.Elapsed(now),
		})
	}

	stats := observer.ActionStats()
	summary.Actions = ActionSummary{
		Completed:       stats.Completed(),
		Local:           stats.LocalActions,
		LocalWorker:     stats.LocalWorkerActions,
		Remote:          stats.RemoteActions,
		Cached:          stats.CachedActions,
		RemoteDepFile:   stats.RemoteDepFileCachedActions,
		LocalDepFile:    stats.LocalDepFileActions,
		Other:           stats.OtherActions,
		Failed:          stats.FailedActions,
		Fallback:        stats.FallbackActions,
		CacheHitPercent: stats.CacheHitPercent(),
		WallTime:        stats.WallTime,
	}

	reState := observer.ReState()
	upload, download := reState.Transferred()
	summary.RemoteExecution = RemoteExecutionSummary{
		Sessions:      reState.Sessions(),
		InFlight:      reState.ActionsInFlight(),
		Queued:        reState.ActionsQueued(),
		UploadBytes:   upload,
		DownloadBytes: download,
	}
	snapshots := observer.TwoSnapshots()
	summary.RemoteExecution.UploadRate = optional(snapshots.UploadRate())
	summary.RemoteExecution.DownloadRate = optional(snapshots.DownloadRate())
	summary.Resources.Snapshots = snapshots.Len()
	if last, ok := snapshots.Last(); ok {
		summary.Resources.RSSBytes = last.Snapshot.RSSBytes
	}
	summary.Resources.CPUPercent = optional(snapshots.CPUPercent())

	tests := observer.TestState()
	summary.Tests = TestSummary{
		Discovered:     tests.Discovered,
		Pass:           tests.Pass,
		Fail:           tests.Fail,
		Skipped:        tests.Skipped,
		Omitted:        tests.Omitted,
		Fatal:          tests.Fatal,
		Timeout:        tests.Timeout,
		ListingSuccess: tests.ListingSuccess,
		ListingFailed:  tests.ListingFailed,
		Rerun:          tests.Rerun,
	}

	debugger := observer.DebuggerState()
	summary.Debugger = DebuggerSummary{
		Attached:      debugger.Attached(),
		Sessions:      len(debugger.Sessions()),
		PausedThreads: debugger.PausedThreads(),
	}

	if rich, ok := any(observer.Extra()).(*eventobserver.DebugExtra); ok {
		summary.Dice = summarizeDice(rich.DiceState())
		summary.Debug = summarizeDebug(rich.DebugEvents())
	}
	return summary
}

func actionName(span *eventobserver.OpenSpan) string {
	if span.Start == nil || span.Start.Data == nil {
		return "<unknown action>"
	}
	start, ok := span.Start.Data.(*buildevent.ActionExecutionStart)
	if !ok {
		return span.Start.Data.VariantTag()
	}
	if start.Name != "" {
		return start.Key.Owner + " " + start.Name
	}
	return start.Key.String()
}

func optional(value float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &value
}

func summarizeDice(state *eventobserver.DiceState) *DiceSummary {
	summary := &DiceSummary{Updates: state.Updates(), InFlight: state.InFlight()}
	for _, keyType := range state.KeyTypes() {
		keyState, _ := state.KeyState(keyType)
		summary.KeyTypes = append(summary.KeyTypes, DiceKeyTypeCount{
			KeyType:  keyType,
			InFlight: keyState.InFlight(),
			Finished: keyState.Finished,
		})
	}
	return summary
}

// recentKinds is how many recent event kinds a DebugSummary lists.
const recentKinds = 5

func summarizeDebug(state *eventobserver.DebugEventsState) *DebugSummary {
	summary := &DebugSummary{
		Events:   state.Total(),
		Unknown:  state.Unknown(),
		MaxDelay: state.MaxDelay(),
		Kinds:    state.Counts(),
	}
	if first, last := state.Received(); !first.IsZero() {
		summary.Window = last.Sub(first)
	}
	offset := state.CurrentOffset()
	if offset > recentKinds {
		offset -= recentKinds
	} else {
		offset = 0
	}
	recent, _ := state.ReadFrom(offset)
	for _, event := range recent {
		summary.Recent = append(summary.Recent, event.Kind)
	}
	return summary
}
