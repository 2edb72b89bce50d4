// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/buildwatch/lib/eventwatch"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate(): %v", err)
	}
	if cfg.Display != DisplayAuto {
		t.Errorf("expected display=auto, got %s", cfg.Display)
	}
	if policy, _ := cfg.Policy(); policy != eventwatch.PolicySkip {
		t.Errorf("expected error_policy=skip, got %s", policy)
	}
	if refresh, _ := cfg.Refresh(); refresh != 100*time.Millisecond {
		t.Errorf("expected refresh_interval=100ms, got %s", refresh)
	}
	if cfg.DebugEventCapacity != 256 {
		t.Errorf("expected debug_event_capacity=256, got %d", cfg.DebugEventCapacity)
	}
}

func TestLoad_RequiresEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when BUILDWATCH_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "BUILDWATCH_CONFIG environment variable not set") {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestLoad_WithEnvironmentVariable(t *testing.T) {
	path := writeConfig(t, "buildwatch.yaml", `
display: plain
error_policy: abort
log_level: debug
log_format: json
`)
	t.Setenv(EnvironmentVariable, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Display != DisplayPlain {
		t.Errorf("expected display=plain, got %s", cfg.Display)
	}
	if policy, _ := cfg.Policy(); policy != eventwatch.PolicyAbort {
		t.Errorf("expected error_policy=abort, got %s", policy)
	}
	if level, _ := cfg.Level(); level != slog.LevelDebug {
		t.Errorf("expected log_level=debug, got %s", level)
	}
	// Unset fields keep their defaults.
	if cfg.RefreshInterval != "100ms" {
		t.Errorf("expected default refresh_interval, got %s", cfg.RefreshInterval)
	}
}

func TestLoadFile_JSONWithComments(t *testing.T) {
	path := writeConfig(t, "buildwatch.jsonc", `{
	// Keep more history for debugging sessions.
	"display": "rich",
	"debug_event_capacity": 1024,
	"refresh_interval": "250ms", // slower terminals
}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Display != DisplayRich || cfg.DebugEventCapacity != 1024 {
		t.Errorf("got display=%s capacity=%d, want rich 1024", cfg.Display, cfg.DebugEventCapacity)
	}
	if refresh, _ := cfg.Refresh(); refresh != 250*time.Millisecond {
		t.Errorf("expected refresh_interval=250ms, got %s", refresh)
	}
}

func TestLoadFile_RejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "buildwatch.yaml", "dispaly: rich\n")
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for unknown key, got nil")
	}
}

func TestLoadFile_Empty(t *testing.T) {
	path := writeConfig(t, "buildwatch.yaml", "")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile(empty): %v", err)
	}
	if cfg.Display != DisplayAuto {
		t.Errorf("expected default display, got %s", cfg.Display)
	}
}

func TestLoadFile_ExpandsLogFile(t *testing.T) {
	t.Setenv("HOME", "/home/builder")
	t.Setenv("BUILDWATCH_TEST_LOGS", "")

	tests := []struct {
		value string
		want  string
	}{
		{"${HOME}/watch.log", "/home/builder/watch.log"},
		{"${BUILDWATCH_TEST_LOGS:-/var/log}/watch.log", "/var/log/watch.log"},
		{"/tmp/watch.log", "/tmp/watch.log"},
	}
	for _, test := range tests {
		path := writeConfig(t, "buildwatch.yaml", "log_file: \""+test.value+"\"\n")
		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile(%s): %v", test.value, err)
		}
		if cfg.LogFile != test.want {
			t.Errorf("log_file %q: got %q, want %q", test.value, cfg.LogFile, test.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"display", func(c *Config) { c.Display = "fancy" }, "invalid display"},
		{"policy", func(c *Config) { c.ErrorPolicy = "retry" }, "error_policy"},
		{"capacity", func(c *Config) { c.DebugEventCapacity = 0 }, "debug_event_capacity"},
		{"refresh", func(c *Config) { c.RefreshInterval = "-1s" }, "refresh_interval must be positive"},
		{"poll", func(c *Config) { c.FollowPollInterval = "soon" }, "follow_poll_interval"},
		{"level", func(c *Config) { c.LogLevel = "chatty" }, "log_level"},
		{"format", func(c *Config) { c.LogFormat = "xml" }, "invalid log_format"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.modify(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("Validate: got %v, want an error containing %q", err, test.want)
			}
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Display = "fancy"
	cfg.LogFormat = "xml"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "display") || !strings.Contains(err.Error(), "log_format") {
		t.Errorf("expected both problems reported, got %q", err.Error())
	}
}
