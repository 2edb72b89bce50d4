// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromSettings(t *testing.T) {
	t.Parallel()
	info := fromSettings(buildInfo{commit: "unknown", time: "unknown"}, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "vcs.time", Value: "2026-03-01T12:00:00Z"},
		{Key: "GOOS", Value: "linux"},
	})
	want := buildInfo{commit: "0123456789ab", dirty: true, time: "2026-03-01T12:00:00Z"}
	if info != want {
		t.Errorf("fromSettings: got %+v, want %+v", info, want)
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		info buildInfo
		want string
	}{
		{buildInfo{commit: "abc", time: "t"}, Version + " (abc, t)"},
		{buildInfo{commit: "abc", dirty: true, time: "t"}, Version + " (abc-dirty, t)"},
	}
	for _, test := range tests {
		if got := format(test.info); got != test.want {
			t.Errorf("format(%+v): got %q, want %q", test.info, got, test.want)
		}
	}
}

func TestFull(t *testing.T) {
	t.Parallel()
	full := Full()
	if !strings.HasPrefix(full, Version+" (") || !strings.Contains(full, "\n  Go: ") {
		t.Errorf("Full: got %q", full)
	}
}
