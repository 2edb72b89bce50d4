// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg delivers a slog record to the model's status line.
type logRecordMsg struct {
	Summary string
	Level   slog.Level
}

// logRecordFadeMsg clears the status line. Generation identifies the
// record it was scheduled for so a newer record is not cleared early.
type logRecordFadeMsg struct {
	Generation uint64
}

// logRecordFadeDelay is how long a log record stays in the status
// line.
const logRecordFadeDelay = 5 * time.Second

// Sender accepts messages for a running program. *tea.Program
// implements it.
type Sender interface {
	Send(tea.Msg)
}

type senderBox struct{ Sender }

// LogHandler is a slog.Handler that routes records into a bubbletea
// program's status line. Records arriving before SetSender are
// dropped.
//
// Handlers derived via WithAttrs and WithGroup share the sender, so one
// SetSender call reaches all of them.
type LogHandler struct {
	level  slog.Leveler
	sender *atomic.Pointer[senderBox]
	attrs  []slog.Attr
	groups []string
}

// NewLogHandler returns a handler delivering records at or above level.
func NewLogHandler(level slog.Leveler) *LogHandler {
	return &LogHandler{
		level:  level,
		sender: &atomic.Pointer[senderBox]{},
	}
}

// SetSender sets the destination of log records. Safe to call from any
// goroutine.
func (handler *LogHandler) SetSender(sender Sender) {
	if sender == nil {
		handler.sender.Store(nil)
		return
	}
	handler.sender.Store(&senderBox{sender})
}

// Enabled implements slog.Handler.
func (handler *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level.Level()
}

// Handle implements slog.Handler. The record becomes one line:
// "message (key=value, ...)".
func (handler *LogHandler) Handle(_ context.Context, record slog.Record) error {
	box := handler.sender.Load()
	if box == nil {
		return nil
	}

	prefix := ""
	if len(handler.groups) > 0 {
		prefix = strings.Join(handler.groups, ".") + "."
	}
	var attrParts []string
	for _, attr := range handler.attrs {
		attrParts = append(attrParts, fmt.Sprintf("%s=%s", attr.Key, attr.Value))
	}
	record.Attrs(func(attr slog.Attr) bool {
		attrParts = append(attrParts, fmt.Sprintf("%s%s=%s", prefix, attr.Key, attr.Value))
		return true
	})

	summary := record.Message
	if len(attrParts) > 0 {
		summary += " (" + strings.Join(attrParts, ", ") + ")"
	}
	box.Send(logRecordMsg{Summary: summary, Level: record.Level})
	return nil
}

// WithAttrs implements slog.Handler.
func (handler *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := handler.derive()
	derived.attrs = append(derived.attrs, attrs...)
	return derived
}

// WithGroup implements slog.Handler.
func (handler *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return handler
	}
	derived := handler.derive()
	derived.groups = append(derived.groups, name)
	return derived
}

func (handler *LogHandler) derive() *LogHandler {
	return &LogHandler{
		level:  handler.level,
		sender: handler.sender,
		attrs:  slices.Clone(handler.attrs),
		groups: slices.Clone(handler.groups),
	}
}
