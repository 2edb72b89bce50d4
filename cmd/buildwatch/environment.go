// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/buildwatch/cmd/buildwatch/cli"
	"github.com/bureau-foundation/buildwatch/lib/config"
	"github.com/bureau-foundation/buildwatch/lib/eventwatch"
	"github.com/bureau-foundation/buildwatch/lib/progress"
)

// environment is what commands get from the process. Tests substitute
// buffers and a fake getenv.
type environment struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

// commonFlags are the flags every command that reads events accepts.
type commonFlags struct {
	configPath  string
	errorPolicy string
	logLevel    string
}

func (common *commonFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&common.configPath, "config", "", "config file (default $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&common.errorPolicy, "error-policy", "", "skip or abort when an event is rejected (overrides config)")
	flagSet.StringVar(&common.logLevel, "log-level", "", "debug, info, warn, or error (overrides config)")
}

// loadConfig reads the config named by --config or the environment, or
// the defaults when neither is set, then applies flag overrides.
func (common *commonFlags) loadConfig(env *environment) (*config.Config, error) {
	path := common.configPath
	if path == "" {
		path = env.getenv(config.EnvironmentVariable)
	}
	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if common.errorPolicy != "" {
		cfg.ErrorPolicy = common.errorPolicy
	}
	if common.logLevel != "" {
		cfg.LogLevel = common.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session is the configuration and logging shared by one command run.
type session struct {
	cfg    *config.Config
	policy eventwatch.ErrorPolicy
	logger *slog.Logger

	// logHandler is set when logs go to the live view's status line.
	logHandler *progress.LogHandler
	closeLog   func() error
}

// open loads the config and builds the logger. A live session without
// a log file logs into the live view instead of stderr, which the view
// owns.
func (common *commonFlags) open(env *environment, live bool) (*session, error) {
	cfg, err := common.loadConfig(env)
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	if live && cfg.LogFile == "" {
		handler := progress.NewLogHandler(level)
		return &session{
			cfg:        cfg,
			policy:     policy,
			logger:     slog.New(handler),
			logHandler: handler,
			closeLog:   func() error { return nil },
		}, nil
	}

	logger, closeLog, err := cli.NewLogger(cli.LoggerOptions{
		Level:  level,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Stderr: env.stderr,
	})
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, policy: policy, logger: logger, closeLog: closeLog}, nil
}

func (session *session) close() {
	if err := session.closeLog(); err != nil {
		session.logger.Warn("closing log file", "error", err)
	}
}

// displayFlags select the observer variant.
type displayFlags struct {
	rich  bool
	plain bool
}

func (display *displayFlags) register(flagSet *pflag.FlagSet) {
	flagSet.BoolVar(&display.rich, "rich", false, "keep incremental engine state and debug-event statistics")
	flagSet.BoolVar(&display.plain, "plain", false, "keep only the core projections")
}

// resolve reports whether to build a rich observer. Flags win over
// the config; auto falls back to the command's default.
func (display *displayFlags) resolve(configured config.Display, richByDefault bool) (bool, error) {
	switch {
	case display.rich && display.plain:
		return false, errors.New("--rich and --plain are mutually exclusive")
	case display.rich:
		return true, nil
	case display.plain:
		return false, nil
	}
	switch configured {
	case config.DisplayRich:
		return true, nil
	case config.DisplayPlain:
		return false, nil
	default:
		return richByDefault, nil
	}
}

func requireOneLog(command string, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s takes exactly one event log path, got %d argument(s)", command, len(args))
	}
	return args[0], nil
}
