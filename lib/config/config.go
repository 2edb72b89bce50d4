// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/buildwatch/lib/eventobserver"
	"github.com/bureau-foundation/buildwatch/lib/eventwatch"
)

// EnvironmentVariable names the config file used by Load.
const EnvironmentVariable = "BUILDWATCH_CONFIG"

// Display selects how much state is maintained and shown.
type Display string

const (
	// DisplayAuto picks rich on a terminal and plain otherwise.
	DisplayAuto Display = "auto"
	// DisplayRich maintains and shows incremental engine state and the
	// debug-event recorder.
	DisplayRich Display = "rich"
	// DisplayPlain maintains only the core projections.
	DisplayPlain Display = "plain"
)

// LogFormat selects the slog handler.
type LogFormat string

const (
	// LogFormatAuto is text on a terminal and JSON otherwise.
	LogFormatAuto LogFormat = "auto"
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Config is the buildwatch configuration.
type Config struct {
	// Display selects rich or plain observation.
	// Default: auto
	Display Display `yaml:"display"`

	// ErrorPolicy is what to do with an event the observer rejects:
	// "skip" logs and continues, "abort" stops the run.
	// Default: skip
	ErrorPolicy string `yaml:"error_policy"`

	// DebugEventCapacity is how many recent events the rich display
	// retains.
	// Default: 256
	DebugEventCapacity int `yaml:"debug_event_capacity"`

	// RefreshInterval is how often the live view redraws.
	// Default: 100ms
	RefreshInterval string `yaml:"refresh_interval"`

	// FollowPollInterval is how often a followed log is reread when no
	// filesystem notification arrives.
	// Default: 1s
	FollowPollInterval string `yaml:"follow_poll_interval"`

	// LogLevel is the minimum slog level: debug, info, warn, or error.
	// Default: info
	LogLevel string `yaml:"log_level"`

	// LogFormat selects text or JSON log output.
	// Default: auto
	LogFormat LogFormat `yaml:"log_format"`

	// LogFile receives logs instead of stderr when set. The live view
	// always diverts logs into its status line.
	LogFile string `yaml:"log_file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Display:            DisplayAuto,
		ErrorPolicy:        eventwatch.PolicySkip.String(),
		DebugEventCapacity: eventobserver.DefaultRecentEvents,
		RefreshInterval:    "100ms",
		FollowPollInterval: "1s",
		LogLevel:           "info",
		LogFormat:          LogFormatAuto,
	}
}

// Load loads configuration from the BUILDWATCH_CONFIG environment
// variable. It fails if the variable is not set; callers that can run
// without a file check the variable first.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your buildwatch.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path over the
// defaults, expands variables, and validates the result.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// loadFile merges one file into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// Stripped JSON is valid YAML, so one decoder serves both.
		data = jsonc.ToJSON(data)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	c.LogFile = expandVars(c.LogFile, map[string]string{"HOME": os.Getenv("HOME")})
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	switch c.Display {
	case DisplayAuto, DisplayRich, DisplayPlain:
	default:
		errs = append(errs, fmt.Errorf("invalid display %q (expected auto, rich, or plain)", c.Display))
	}
	if _, err := c.Policy(); err != nil {
		errs = append(errs, err)
	}
	if c.DebugEventCapacity < 1 {
		errs = append(errs, fmt.Errorf("debug_event_capacity must be at least 1, got %d", c.DebugEventCapacity))
	}
	if _, err := c.Refresh(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.FollowPoll(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case LogFormatAuto, LogFormatText, LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("invalid log_format %q (expected auto, text, or json)", c.LogFormat))
	}

	return errors.Join(errs...)
}

// Policy returns the parsed error policy.
func (c *Config) Policy() (eventwatch.ErrorPolicy, error) {
	policy, err := eventwatch.ParseErrorPolicy(c.ErrorPolicy)
	if err != nil {
		return 0, fmt.Errorf("error_policy: %w", err)
	}
	return policy, nil
}

// Refresh returns the parsed refresh interval.
func (c *Config) Refresh() (time.Duration, error) {
	return positiveDuration("refresh_interval", c.RefreshInterval)
}

// FollowPoll returns the parsed follow poll interval.
func (c *Config) FollowPoll() (time.Duration, error) {
	return positiveDuration("follow_poll_interval", c.FollowPollInterval)
}

func positiveDuration(field, value string) (time.Duration, error) {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", field, value)
	}
	return duration, nil
}

// Level returns the parsed log level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}
