// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/buildwatch/cmd/buildwatch/cli"
	"github.com/bureau-foundation/buildwatch/lib/eventlog"
)

func convertCommand(env *environment) *cli.Command {
	var (
		common      commonFlags
		format      string
		compression string
	)
	return &cli.Command{
		Name:    "convert",
		Summary: "Re-encode an event log in another format or compression",
		Description: `Re-encode an event log in another format or compression.

Both formats and compressions are taken from the file names unless
--format or --compression is given. Events are copied unchanged,
including variants this version does not know.`,
		Usage: "buildwatch convert [flags] <input> <output>",
		Examples: []cli.Example{
			{Description: "Compress a JSON lines log as CBOR", Command: "buildwatch convert run.jsonl run.cbor.zst"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("convert", pflag.ContinueOnError)
			common.register(flagSet)
			flagSet.StringVar(&format, "format", "", "output format: cbor or jsonl")
			flagSet.StringVar(&compression, "compression", "", "output compression: none, zstd, or lz4")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("convert takes an input and an output path, got %d argument(s)", len(args))
			}
			session, err := common.open(env, false)
			if err != nil {
				return err
			}
			defer session.close()
			return convertLog(env, session, args[0], args[1], format, compression)
		},
	}
}

func convertLog(env *environment, session *session, inputPath, outputPath, formatName, compressionName string) (err error) {
	outputFormat, outputCompression, detectErr := eventlog.DetectPath(outputPath)
	if formatName != "" {
		if outputFormat, err = eventlog.ParseFormat(formatName); err != nil {
			return err
		}
	} else if detectErr != nil {
		return detectErr
	}
	if compressionName != "" {
		if outputCompression, err = eventlog.ParseCompression(compressionName); err != nil {
			return err
		}
	}

	reader, err := eventlog.Open(inputPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outputPath, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", outputPath, closeErr)
		}
	}()
	writer, err := eventlog.NewWriter(file, outputFormat, outputCompression)
	if err != nil {
		return err
	}

	for {
		event, err := reader.Next(env.ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			writer.Close()
			return fmt.Errorf("reading %s: %w", inputPath, err)
		}
		if err := writer.Write(event); err != nil {
			writer.Close()
			return fmt.Errorf("writing %s: %w", outputPath, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}

	session.logger.Debug("converted event log",
		"input", inputPath,
		"output", outputPath,
		"format", outputFormat,
		"compression", outputCompression,
		"events", writer.Count(),
	)
	_, err = fmt.Fprintf(env.stdout, "converted %d event(s) to %s (%s, %s)\n  input digest  %s\n  output digest %s\n",
		writer.Count(), outputPath, outputFormat, outputCompression, reader.Digest(), writer.Digest())
	return err
}
