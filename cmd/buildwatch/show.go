// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/buildwatch/cmd/buildwatch/cli"
	"github.com/bureau-foundation/buildwatch/lib/eventlog"
	"github.com/bureau-foundation/buildwatch/lib/progress"
)

// exitRejected is the exit code of show when the log replayed but some
// events were rejected under the skip policy.
const exitRejected = 2

func showCommand(env *environment) *cli.Command {
	var (
		common  commonFlags
		display displayFlags
		asJSON  bool
	)
	return &cli.Command{
		Name:    "show",
		Summary: "Replay an event log and print what the observer derived",
		Description: `Replay an event log and print what the observer derived.

The log format and compression come from the file name: .cbor, .jsonl,
or .json, optionally followed by .zst or .lz4. Receive times are taken
from event timestamps, so the output does not depend on when the log is
replayed.

Exits 2 if events were rejected and skipped.`,
		Usage: "buildwatch show [flags] <log>",
		Examples: []cli.Example{
			{Description: "Summarize a log with debug statistics", Command: "buildwatch show --rich run.cbor.zst"},
			{Description: "Emit the summary as JSON", Command: "buildwatch show --json run.jsonl"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("show", pflag.ContinueOnError)
			common.register(flagSet)
			display.register(flagSet)
			flagSet.BoolVar(&asJSON, "json", false, "print the summary as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			path, err := requireOneLog("show", args)
			if err != nil {
				return err
			}
			session, err := common.open(env, false)
			if err != nil {
				return err
			}
			defer session.close()
			rich, err := display.resolve(session.cfg.Display, false)
			if err != nil {
				return err
			}

			reader, err := eventlog.Open(path)
			if err != nil {
				return err
			}
			defer reader.Close()

			result, err := replay(env.ctx, session, reader, rich)
			if err != nil {
				return fmt.Errorf("replaying %s: %w", path, err)
			}
			result.Log = logInfo{Path: path, Events: reader.Count(), Digest: reader.Digest().String()}

			if asJSON {
				err = writeJSON(env.stdout, result)
			} else {
				err = writeText(env.stdout, result)
			}
			if err != nil {
				return err
			}
			if result.Rejected > 0 {
				return &cli.ExitError{Code: exitRejected}
			}
			return nil
		},
	}
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	return nil
}

// writeText renders result for a person, in color when w is a terminal
// that supports it.
func writeText(w io.Writer, result report) error {
	renderer := progress.NewRenderer(w, termenv.NewOutput(w).EnvColorProfile(), progress.DefaultTheme)
	text := renderer.Render(result.Summary, progress.Options{Debug: result.Rich})
	footer := fmt.Sprintf("%d event(s), %d rejected", result.Observed+result.Rejected, result.Rejected)
	if result.Log.Digest != "" {
		footer += ", digest " + result.Log.Digest
	}
	if _, err := fmt.Fprintf(w, "%s\n%s\n", text, footer); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}
