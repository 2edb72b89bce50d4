// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework of the buildwatch binary: a
// tree of [Command] values dispatched by name, with pflag flag sets,
// typo suggestions for commands and flags, and structured help output.
//
// [NewLogger] builds the slog logger commands share, choosing text or
// JSON output from the configured format and whether stderr is a
// terminal.
package cli
