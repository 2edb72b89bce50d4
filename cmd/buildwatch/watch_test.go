// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/buildwatch/lib/eventwatch"
	"github.com/bureau-foundation/buildwatch/lib/progress"
)

type messageRecorder struct {
	messages []tea.Msg
}

func (recorder *messageRecorder) Send(message tea.Msg) {
	recorder.messages = append(recorder.messages, message)
}

func TestForwardChangesCoalescesBursts(t *testing.T) {
	t.Parallel()
	updates := make(chan eventwatch.Update, 3)
	for sequence := range uint64(3) {
		updates <- eventwatch.Update{Sequence: sequence + 1}
	}
	close(updates)

	var recorder messageRecorder
	forwardChanges(updates, &recorder)
	if len(recorder.messages) != 1 {
		t.Fatalf("sent %d message(s), want 1 for one burst", len(recorder.messages))
	}
	if _, ok := recorder.messages[0].(progress.ChangedMsg); !ok {
		t.Errorf("sent %T, want progress.ChangedMsg", recorder.messages[0])
	}
}

func TestForwardChangesStopsOnClose(t *testing.T) {
	t.Parallel()
	updates := make(chan eventwatch.Update)
	close(updates)

	var recorder messageRecorder
	forwardChanges(updates, &recorder)
	if len(recorder.messages) != 0 {
		t.Errorf("sent %d message(s) for a closed subscription", len(recorder.messages))
	}
}
