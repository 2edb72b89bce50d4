// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/bureau-foundation/buildwatch/lib/config"
)

// LoggerOptions configures NewLogger.
type LoggerOptions struct {
	Level  slog.Leveler
	Format config.LogFormat

	// File, when set, receives logs instead of Stderr. It is opened for
	// append and created if missing.
	File string

	Stderr io.Writer
}

// NewLogger builds the command logger. With LogFormatAuto, a terminal
// stderr gets slog.TextHandler and anything else (CI, pipes, log files)
// gets slog.JSONHandler. The returned close function releases the log
// file, if any.
func NewLogger(options LoggerOptions) (*slog.Logger, func() error, error) {
	output := options.Stderr
	if output == nil {
		output = os.Stderr
	}
	closeFunc := func() error { return nil }

	if options.File != "" {
		file, err := os.OpenFile(options.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		output = file
		closeFunc = file.Close
	}

	handlerOptions := &slog.HandlerOptions{Level: options.Level}
	var handler slog.Handler
	if useText(options.Format, output) {
		handler = slog.NewTextHandler(output, handlerOptions)
	} else {
		handler = slog.NewJSONHandler(output, handlerOptions)
	}
	return slog.New(handler), closeFunc, nil
}

func useText(format config.LogFormat, output io.Writer) bool {
	switch format {
	case config.LogFormatText:
		return true
	case config.LogFormatJSON:
		return false
	default:
		return IsTerminal(output)
	}
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
