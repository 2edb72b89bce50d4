// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build version information for buildwatch.
//
// Release builds set the variables with -ldflags, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/buildwatch/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Other builds fall back to the VCS stamp the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty is "true" when the tree had uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version, set manually for releases.
	Version = "0.1.0-dev"
)

// buildInfo is the subset of the embedded build stamp Info uses.
type buildInfo struct {
	commit string
	dirty  bool
	time   string
}

func stamp() buildInfo {
	info := buildInfo{commit: GitCommit, dirty: GitDirty == "true", time: BuildTime}
	if info.commit != "unknown" {
		return info
	}
	embedded, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	return fromSettings(info, embedded.Settings)
}

func fromSettings(info buildInfo, settings []debug.BuildSetting) buildInfo {
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			info.commit = setting.Value
			if len(info.commit) > 12 {
				info.commit = info.commit[:12]
			}
		case "vcs.modified":
			info.dirty = setting.Value == "true"
		case "vcs.time":
			info.time = setting.Value
		}
	}
	return info
}

// Info returns a one-line version string, e.g. "0.1.0 (abc123, 2026-03-01T12:00:00Z)".
func Info() string {
	return format(stamp())
}

func format(info buildInfo) string {
	dirty := ""
	if info.dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, info.commit, dirty, info.time)
}

// Full returns Info plus the Go version and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
