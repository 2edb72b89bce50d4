// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// countingSnapshot returns a SnapshotFunc whose Observed count grows by
// one per call.
func countingSnapshot() (SnapshotFunc, *int) {
	calls := 0
	return func() Status {
		calls++
		return Status{Observed: uint64(calls)}
	}, &calls
}

func newTestModel(t *testing.T) (Model, *int) {
	t.Helper()
	snapshot, calls := countingSnapshot()
	return NewModel(snapshot, plainRenderer(), 0), calls
}

func update(t *testing.T, model Model, message tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := model.Update(message)
	updated, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return updated, cmd
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModelSnapshotsOnCreate(t *testing.T) {
	t.Parallel()
	model, calls := newTestModel(t)
	if *calls != 1 || model.Status().Observed != 1 {
		t.Errorf("after NewModel: %d call(s), Observed %d, want 1 and 1", *calls, model.Status().Observed)
	}
	if model.refresh != DefaultRefreshInterval {
		t.Errorf("refresh: got %v, want %v", model.refresh, DefaultRefreshInterval)
	}
}

func TestModelRefresh(t *testing.T) {
	t.Parallel()
	model, calls := newTestModel(t)

	model, cmd := update(t, model, refreshMsg{})
	if *calls != 2 || model.Status().Observed != 2 {
		t.Errorf("after refresh: %d call(s), Observed %d", *calls, model.Status().Observed)
	}
	if cmd == nil {
		t.Error("refresh did not schedule the next refresh")
	}
	if !strings.Contains(model.View(), "2 event(s)") {
		t.Errorf("View missing event count:\n%s", model.View())
	}
}

func TestModelChanged(t *testing.T) {
	t.Parallel()
	model, calls := newTestModel(t)

	model, cmd := update(t, model, ChangedMsg{})
	if *calls != 2 || model.Status().Observed != 2 {
		t.Errorf("after change: %d call(s), Observed %d", *calls, model.Status().Observed)
	}
	if cmd != nil {
		t.Error("change scheduled a second refresh tick")
	}

	model, _ = update(t, model, FinishedMsg{})
	finishedCalls := *calls
	update(t, model, ChangedMsg{})
	if *calls != finishedCalls {
		t.Errorf("change after finish polled the snapshot: %d call(s), want %d", *calls, finishedCalls)
	}
}

func TestModelQuitKeys(t *testing.T) {
	t.Parallel()
	model, _ := newTestModel(t)
	for _, message := range []tea.KeyMsg{runeKey('q'), {Type: tea.KeyCtrlC}} {
		if _, cmd := update(t, model, message); !isQuit(cmd) {
			t.Errorf("%q did not quit", message.String())
		}
	}
	if _, cmd := update(t, model, runeKey('x')); isQuit(cmd) {
		t.Error("unbound key quit")
	}
}

func TestModelToggleDebug(t *testing.T) {
	t.Parallel()
	model, _ := newTestModel(t)
	if model.showDebug {
		t.Fatal("debug shown by default")
	}
	model, _ = update(t, model, runeKey('d'))
	if !model.showDebug {
		t.Error("d did not show debug")
	}
	model, _ = update(t, model, runeKey('d'))
	if model.showDebug {
		t.Error("second d did not hide debug")
	}
}

func TestModelFinished(t *testing.T) {
	t.Parallel()
	model, calls := newTestModel(t)

	model, cmd := update(t, model, FinishedMsg{})
	if !isQuit(cmd) {
		t.Error("FinishedMsg did not quit")
	}
	if *calls != 2 {
		t.Errorf("FinishedMsg did not take a final snapshot: %d call(s)", *calls)
	}
	if !strings.Contains(model.View(), "done, 2 event(s)") {
		t.Errorf("View after finish:\n%s", model.View())
	}

	// A refresh already in flight is ignored.
	if _, cmd := update(t, model, refreshMsg{}); cmd != nil || *calls != 2 {
		t.Errorf("refresh after finish: cmd %v, %d call(s)", cmd, *calls)
	}
}

func TestModelFinishedWithError(t *testing.T) {
	t.Parallel()
	model, _ := newTestModel(t)
	model, _ = update(t, model, FinishedMsg{Err: errors.New("event 3 (Instant): missing `data` in Instant")})

	if model.Err() == nil {
		t.Fatal("Err: got nil")
	}
	if !strings.Contains(model.View(), "stopped: event 3") {
		t.Errorf("View after failed finish:\n%s", model.View())
	}
}

func TestModelRejectedCount(t *testing.T) {
	t.Parallel()
	model := NewModel(func() Status {
		return Status{Observed: 10, Rejected: 2, LastError: "boom"}
	}, plainRenderer(), 0)

	if view := model.View(); !strings.Contains(view, "2 rejected (last: boom)") {
		t.Errorf("View missing rejected count:\n%s", view)
	}
}

func TestModelLogRecordFades(t *testing.T) {
	t.Parallel()
	model, _ := newTestModel(t)

	model, cmd := update(t, model, logRecordMsg{Summary: "first", Level: slog.LevelWarn})
	if cmd == nil {
		t.Fatal("log record did not schedule a fade")
	}
	if !strings.Contains(model.View(), "first") {
		t.Errorf("View missing log record:\n%s", model.View())
	}
	firstGeneration := model.logGeneration

	model, _ = update(t, model, logRecordMsg{Summary: "second", Level: slog.LevelError})

	// The fade for the first record does not clear the second.
	model, _ = update(t, model, logRecordFadeMsg{Generation: firstGeneration})
	if !strings.Contains(model.View(), "second") {
		t.Errorf("stale fade cleared a newer record:\n%s", model.View())
	}

	model, _ = update(t, model, logRecordFadeMsg{Generation: model.logGeneration})
	if strings.Contains(model.View(), "second") {
		t.Errorf("fade did not clear the record:\n%s", model.View())
	}
}

func TestModelWindowWidth(t *testing.T) {
	t.Parallel()
	model, _ := newTestModel(t)
	model, _ = update(t, model, tea.WindowSizeMsg{Width: 20, Height: 10})

	for _, line := range strings.Split(strings.TrimSuffix(model.View(), "\n"), "\n") {
		if got := ansi.StringWidth(line); got > 20 {
			t.Errorf("line %q is %d cells wide, limit 20", line, got)
		}
	}
}
