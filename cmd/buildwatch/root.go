// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import "github.com/bureau-foundation/buildwatch/cmd/buildwatch/cli"

func rootCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name: "buildwatch",
		Description: `Replay and watch build event logs.

Events are fed through the event observer, which maintains the span
tree, action statistics, remote execution and test counters, and (in
rich mode) incremental engine state and debug-event statistics.`,
		Output: env.stderr,
		Subcommands: []*cli.Command{
			showCommand(env),
			watchCommand(env),
			convertCommand(env),
			versionCommand(env),
		},
	}
}
