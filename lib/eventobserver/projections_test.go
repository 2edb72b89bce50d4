// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventobserver

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent/buildeventtest"
)

func TestReStateSessions(t *testing.T) {
	t.Parallel()
	var state ReState

	if _, ok := state.FirstSession(); ok {
		t.Error("FirstSession on empty state: got ok")
	}
	for _, id := range []string{"re-1", "re-2", "re-1"} {
		state.AddReSession(&buildevent.ReSession{SessionID: id})
	}
	if got := state.Sessions(); !slices.Equal(got, []string{"re-1", "re-2"}) {
		t.Errorf("Sessions: got %v, want [re-1 re-2]", got)
	}
	if first, _ := state.FirstSession(); first != "re-1" {
		t.Errorf("FirstSession: got %q, want re-1", first)
	}
}

func TestReStateCounters(t *testing.T) {
	t.Parallel()
	var state ReState

	if state.ActionsInFlight() != 0 || state.ActionsQueued() != 0 {
		t.Error("counters on empty state: want zero")
	}
	snapshot := &buildevent.Snapshot{ReActionsInFlight: 4, ReActionsQueued: 9, ReUploadBytes: 10, ReDownloadBytes: 20}
	state.Update(snapshot)
	// Later mutation of the event must not leak into the projection.
	snapshot.ReActionsInFlight = 100

	if state.ActionsInFlight() != 4 {
		t.Errorf("ActionsInFlight: got %d, want 4", state.ActionsInFlight())
	}
	if state.ActionsQueued() != 9 {
		t.Errorf("ActionsQueued: got %d, want 9", state.ActionsQueued())
	}
	if upload, download := state.Transferred(); upload != 10 || download != 20 {
		t.Errorf("Transferred: got (%d, %d), want (10, 20)", upload, download)
	}
}

func TestTwoSnapshotsKeepsLatestTwo(t *testing.T) {
	t.Parallel()
	var snapshots TwoSnapshots
	base := buildeventtest.Epoch

	if snapshots.Len() != 0 {
		t.Errorf("Len on empty: got %d, want 0", snapshots.Len())
	}
	for index := range 3 {
		snapshots.Update(base.Add(time.Duration(index)*time.Second), &buildevent.Snapshot{RSSBytes: uint64(index + 1)})
	}

	last, ok := snapshots.Last()
	if !ok || last.Snapshot.RSSBytes != 3 {
		t.Errorf("Last: got %+v, want RSSBytes 3", last)
	}
	previous, ok := snapshots.Previous()
	if !ok || previous.Snapshot.RSSBytes != 2 {
		t.Errorf("Previous: got %+v, want RSSBytes 2", previous)
	}
	if snapshots.Len() != 2 {
		t.Errorf("Len: got %d, want 2", snapshots.Len())
	}
}

func TestTwoSnapshotsRates(t *testing.T) {
	t.Parallel()
	base := buildeventtest.Epoch

	tests := []struct {
		name     string
		elapsed  time.Duration
		first    buildevent.Snapshot
		second   buildevent.Snapshot
		upload   float64
		download float64
		ok       bool
	}{
		{
			name:     "steady",
			elapsed:  2 * time.Second,
			first:    buildevent.Snapshot{ReUploadBytes: 100, ReDownloadBytes: 1000},
			second:   buildevent.Snapshot{ReUploadBytes: 300, ReDownloadBytes: 5000},
			upload:   100,
			download: 2000,
			ok:       true,
		},
		{
			name:    "same timestamp",
			elapsed: 0,
			first:   buildevent.Snapshot{ReUploadBytes: 1},
			second:  buildevent.Snapshot{ReUploadBytes: 2},
		},
		{
			name:    "timestamps going backwards",
			elapsed: -time.Second,
			first:   buildevent.Snapshot{ReUploadBytes: 1},
			second:  buildevent.Snapshot{ReUploadBytes: 2},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			var snapshots TwoSnapshots
			snapshots.Update(base, &test.first)
			snapshots.Update(base.Add(test.elapsed), &test.second)

			upload, uploadOK := snapshots.UploadRate()
			download, downloadOK := snapshots.DownloadRate()
			if uploadOK != test.ok || downloadOK != test.ok {
				t.Fatalf("rates ok: got (%v, %v), want %v", uploadOK, downloadOK, test.ok)
			}
			if upload != test.upload || download != test.download {
				t.Errorf("rates: got (%v, %v), want (%v, %v)", upload, download, test.upload, test.download)
			}
		})
	}
}

func TestTwoSnapshotsCounterReset(t *testing.T) {
	t.Parallel()
	var snapshots TwoSnapshots
	snapshots.Update(buildeventtest.Epoch, &buildevent.Snapshot{ReDownloadBytes: 500})
	snapshots.Update(buildeventtest.Epoch.Add(time.Second), &buildevent.Snapshot{ReDownloadBytes: 10})

	if rate, ok := snapshots.DownloadRate(); ok {
		t.Errorf("DownloadRate after reset: got %v, want none", rate)
	}
}

func TestTwoSnapshotsCPUPercent(t *testing.T) {
	t.Parallel()
	var snapshots TwoSnapshots
	if _, ok := snapshots.CPUPercent(); ok {
		t.Error("CPUPercent with no snapshots: got ok")
	}
	snapshots.Update(buildeventtest.Epoch, &buildevent.Snapshot{UserCPUMicros: 0})
	snapshots.Update(buildeventtest.Epoch.Add(time.Second), &buildevent.Snapshot{UserCPUMicros: 1_000_000, SystemCPUMicros: 500_000})

	percent, ok := snapshots.CPUPercent()
	if !ok || math.Abs(percent-150) > 1e-9 {
		t.Errorf("CPUPercent: got (%v, %v), want (150, true)", percent, ok)
	}
}

func TestTestStateUpdate(t *testing.T) {
	t.Parallel()
	var state TestState

	statuses := []buildevent.TestStatus{
		buildevent.TestStatusPass,
		buildevent.TestStatusPass,
		buildevent.TestStatusFail,
		buildevent.TestStatusSkip,
		buildevent.TestStatusOmitted,
		buildevent.TestStatusFatal,
		buildevent.TestStatusTimeout,
		buildevent.TestStatusListingSuccess,
		buildevent.TestStatusListingFailed,
		buildevent.TestStatusRerun,
	}
	for _, status := range statuses {
		if err := state.Update(&buildevent.TestResult{Name: "t", Status: status}); err != nil {
			t.Fatalf("Update(%s): %v", status, err)
		}
	}

	want := TestState{
		Pass: 2, Fail: 1, Skipped: 1, Omitted: 1, Fatal: 1, Timeout: 1,
		ListingSuccess: 1, ListingFailed: 1, Rerun: 1,
	}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Errorf("TestState mismatch (-want +got):\n%s", diff)
	}
	if state.Finished() != 7 {
		t.Errorf("Finished: got %d, want 7", state.Finished())
	}
	if state.Failed() != 4 {
		t.Errorf("Failed: got %d, want 4", state.Failed())
	}
}

func TestTestStateRejectsInvalidStatus(t *testing.T) {
	t.Parallel()
	for _, status := range []buildevent.TestStatus{buildevent.TestStatusNotSet, buildevent.TestStatus(200)} {
		var state TestState
		if err := state.Update(&buildevent.TestResult{Name: "t", Status: status}); err == nil {
			t.Errorf("Update(%s): got nil error", status)
		}
		if diff := cmp.Diff(TestState{}, state); diff != "" {
			t.Errorf("state changed after rejected %s (-want +got):\n%s", status, diff)
		}
	}
}

func TestDebuggerStateUpdate(t *testing.T) {
	t.Parallel()
	var state DebuggerState
	timestamp := buildeventtest.Epoch

	if state.Attached() {
		t.Error("Attached on empty state: got true")
	}
	err := state.Update(timestamp, &buildevent.DebugAdapterSnapshot{Sessions: []buildevent.DebuggerSession{
		{ID: "a", PausedThreads: 2},
		{ID: "b", PausedThreads: 1, Breakpoints: 3},
	}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !state.Attached() {
		t.Error("Attached: got false")
	}
	if state.PausedThreads() != 3 {
		t.Errorf("PausedThreads: got %d, want 3", state.PausedThreads())
	}
	if updated, count := state.Updated(); !updated.Equal(timestamp) || count != 1 {
		t.Errorf("Updated: got (%v, %d), want (%v, 1)", updated, count, timestamp)
	}

	// Detach.
	if err := state.Update(timestamp.Add(time.Second), &buildevent.DebugAdapterSnapshot{}); err != nil {
		t.Fatalf("Update(empty): %v", err)
	}
	if state.Attached() {
		t.Error("Attached after detach: got true")
	}
}

func TestDebuggerStateRejectsBadSessions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sessions []buildevent.DebuggerSession
	}{
		{"empty id", []buildevent.DebuggerSession{{ID: ""}}},
		{"duplicate id", []buildevent.DebuggerSession{{ID: "a"}, {ID: "a"}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			var state DebuggerState
			if err := state.Update(buildeventtest.Epoch, &buildevent.DebugAdapterSnapshot{
				Sessions: []buildevent.DebuggerSession{{ID: "kept"}},
			}); err != nil {
				t.Fatalf("Update(valid): %v", err)
			}
			if err := state.Update(buildeventtest.Epoch, &buildevent.DebugAdapterSnapshot{Sessions: test.sessions}); err == nil {
				t.Fatal("Update: got nil error")
			}
			sessions := state.Sessions()
			if len(sessions) != 1 || sessions[0].ID != "kept" {
				t.Errorf("Sessions after rejection: got %+v, want the previous snapshot", sessions)
			}
		})
	}
}

func TestDiceState(t *testing.T) {
	t.Parallel()
	var state DiceState

	snapshot := &buildevent.DiceStateSnapshot{KeyStates: map[string]buildevent.DiceKeyState{
		"TargetKey":  {Started: 10, Finished: 7},
		"ActionKey":  {Started: 5, Finished: 5},
		"PackageKey": {Started: 1, Finished: 2},
	}}
	state.Update(snapshot)
	delete(snapshot.KeyStates, "TargetKey")

	if got := state.KeyTypes(); !slices.Equal(got, []string{"ActionKey", "PackageKey", "TargetKey"}) {
		t.Errorf("KeyTypes: got %v", got)
	}
	if got := state.InFlight(); got != 3 {
		t.Errorf("InFlight: got %d, want 3", got)
	}
	if keyState, ok := state.KeyState("TargetKey"); !ok || keyState.Started != 10 {
		t.Errorf("KeyState(TargetKey): got (%+v, %v)", keyState, ok)
	}
	if state.Updates() != 1 {
		t.Errorf("Updates: got %d, want 1", state.Updates())
	}
}

func TestDebugEventsState(t *testing.T) {
	t.Parallel()
	stream := buildeventtest.NewStream()
	state := NewDebugEventsState(2)

	events := []*buildevent.Event{
		stream.Snapshot(buildevent.Snapshot{}),
		stream.Instant(&buildevent.UnknownInstantData{Tag: "Future"}),
		stream.Tests("suite", "a"),
	}
	for index, event := range events {
		// Received index*3 seconds after its logical timestamp.
		state.HandleEvent(event.Timestamp.Add(time.Duration(index*3)*time.Second), event)
	}

	if state.Total() != 3 {
		t.Errorf("Total: got %d, want 3", state.Total())
	}
	if state.Unknown() != 1 {
		t.Errorf("Unknown: got %d, want 1", state.Unknown())
	}
	if got := state.Count("Instant/TestDiscovery/Tests"); got != 1 {
		t.Errorf("Count(Instant/TestDiscovery/Tests): got %d, want 1", got)
	}
	if state.MaxDelay() != 6*time.Second {
		t.Errorf("MaxDelay: got %v, want 6s", state.MaxDelay())
	}

	recent, missed := state.ReadFrom(0)
	if len(recent) != 2 || recent[0].Offset != 1 || recent[1].Kind != "Instant/TestDiscovery/Tests" {
		t.Errorf("ReadFrom(0): got %+v", recent)
	}
	if !missed {
		t.Error("ReadFrom(0): want missed after eviction")
	}
	if events, missed := state.ReadFrom(2); missed || len(events) != 1 {
		t.Errorf("ReadFrom(2): got %d events, missed %v", len(events), missed)
	}
	if offset := state.CurrentOffset(); offset != 3 {
		t.Errorf("CurrentOffset: got %d, want 3", offset)
	}
	if events, _ := state.ReadFrom(state.CurrentOffset()); events != nil {
		t.Errorf("ReadFrom(CurrentOffset): got %+v, want nil", events)
	}

	first, last := state.Received()
	if !first.Equal(events[0].Timestamp) || !last.Equal(events[2].Timestamp.Add(6*time.Second)) {
		t.Errorf("Received: got (%v, %v)", first, last)
	}
}
