// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command buildwatch replays and watches build event logs through the
// event observer and prints what it derives.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], &environment{
		stdout: os.Stdout,
		stderr: os.Stderr,
		getenv: os.Getenv,
	})
	stop()
	if err != nil {
		// Commands that already reported their outcome return an
		// ExitError carrying only the code.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, env *environment) error {
	env.ctx = ctx
	return rootCommand(env).Execute(args)
}
