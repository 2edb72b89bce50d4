// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/bureau-foundation/buildwatch/cmd/buildwatch/cli"
	"github.com/bureau-foundation/buildwatch/lib/version"
)

func versionCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("version takes no arguments")
			}
			_, err := fmt.Fprintf(env.stdout, "buildwatch %s\n", version.Full())
			return err
		},
	}
}
