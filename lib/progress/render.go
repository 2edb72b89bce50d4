// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
)

// Renderer draws Summaries as styled text.
type Renderer struct {

	header  lipgloss.Style
	label   lipgloss.Style
	normal  lipgloss.Style
	faint   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	border  lipgloss.Style
	help    lipgloss.Style
}

// NewRenderer returns a Renderer writing for output with the given
// color profile. Use termenv.Ascii for plain text.
func NewRenderer(output io.Writer, profile termenv.Profile, theme Theme) *Renderer {
	base := lipgloss.NewRenderer(output, termenv.WithProfile(profile))
	return &Renderer{
		header:  base.NewStyle().Foreground(theme.HeaderForeground).Bold(true),
		label:   base.NewStyle().Foreground(theme.FaintText),
		normal:  base.NewStyle().Foreground(theme.NormalText),
		faint:   base.NewStyle().Foreground(theme.FaintText),
		success: base.NewStyle().Foreground(theme.Success),
		warning: base.NewStyle().Foreground(theme.Warning),
		failure: base.NewStyle().Foreground(theme.Failure),
		border:  base.NewStyle().Foreground(theme.BorderColor),
		help:    base.NewStyle().Foreground(theme.HelpText),
	}
}

// Options selects optional sections of a rendering.
type Options struct {
	// Width truncates every line to this many cells. Zero disables
	// truncation.
	Width int

	// Debug includes the rich sections when the summary has them.
	Debug bool
}

// Render draws summary as newline-separated lines without a trailing
// newline.
func (renderer *Renderer) Render(summary Summary, options Options) string {
	var lines []string
	add := func(line string) { lines = append(lines, line) }

	add(renderer.header.Render("build "+summary.TraceID) + renderer.sessionTags(summary))

	add(renderer.row("spans", fmt.Sprintf("%d open, %s completed",
		summary.Spans.Open, humanize.Comma(int64(summary.Spans.Completed)))))

	add(renderer.row("actions", renderer.actions(summary.Actions)))
	for _, active := range summary.Spans.Active {
		add("  " + renderer.faint.Render(formatElapsed(active.Elapsed)) + " " + renderer.normal.Render(active.Action))
	}

	if line, ok := renderer.remoteExecution(summary.RemoteExecution); ok {
		add(renderer.row("remote", line))
	}
	if summary.Resources.Snapshots > 0 {
		line := "rss " + humanize.IBytes(summary.Resources.RSSBytes)
		if cpu := summary.Resources.CPUPercent; cpu != nil {
			line += fmt.Sprintf(", cpu %.0f%%", *cpu)
		}
		add(renderer.row("daemon", line))
	}
	if line, ok := renderer.tests(summary.Tests); ok {
		add(renderer.row("tests", line))
	}
	if summary.Debugger.Attached {
		add(renderer.row("debugger", fmt.Sprintf("%d session(s), %d paused thread(s)",
			summary.Debugger.Sessions, summary.Debugger.PausedThreads)))
	}

	if options.Debug {
		if summary.Dice != nil {
			lines = append(lines, renderer.dice(*summary.Dice)...)
		}
		if summary.Debug != nil {
			lines = append(lines, renderer.debug(*summary.Debug)...)
		}
	}

	if options.Width > 0 {
		for index, line := range lines {
			lines[index] = ansi.Truncate(line, options.Width, "…")
		}
	}
	return strings.Join(lines, "\n")
}

// Separator returns a horizontal rule width cells wide.
func (renderer *Renderer) Separator(width int) string {
	if width <= 0 {
		return ""
	}
	return renderer.border.Render(strings.Repeat("─", width))
}

func (renderer *Renderer) row(label, value string) string {
	return renderer.label.Render(fmt.Sprintf("%-9s", label)) + " " + value
}

func (renderer *Renderer) sessionTags(summary Summary) string {
	var tags []string
	if summary.ModernDice {
		tags = append(tags, "modern dice")
	}
	if summary.TestSession != "" {
		tags = append(tags, "test session "+summary.TestSession)
	}
	if len(tags) == 0 {
		return ""
	}
	return renderer.faint.Render(" (" + strings.Join(tags, ", ") + ")")
}

func (renderer *Renderer) actions(actions ActionSummary) string {
	var parts []string
	parts = append(parts, renderer.normal.Render(humanize.Comma(int64(actions.Completed))+" done"))
	counts := []struct {
		name  string
		count uint64
	}{
		{"local", actions.Local},
		{"worker", actions.LocalWorker},
		{"remote", actions.Remote},
		{"cached", actions.Cached},
		{"dep-file cached", actions.RemoteDepFile},
		{"local dep-file", actions.LocalDepFile},
		{"other", actions.Other},
	}
	for _, entry := range counts {
		if entry.count > 0 {
			parts = append(parts, fmt.Sprintf("%s %s", humanize.Comma(int64(entry.count)), entry.name))
		}
	}
	if actions.Cached+actions.RemoteDepFile > 0 {
		parts = append(parts, renderer.success.Render(fmt.Sprintf("%d%% cache hits", actions.CacheHitPercent)))
	}
	if actions.Fallback > 0 {
		parts = append(parts, renderer.warning.Render(fmt.Sprintf("%d fallback", actions.Fallback)))
	}
	if actions.Failed > 0 {
		parts = append(parts, renderer.failure.Render(fmt.Sprintf("%d failed", actions.Failed)))
	}
	return strings.Join(parts, ", ")
}

func (renderer *Renderer) remoteExecution(remote RemoteExecutionSummary) (string, bool) {
	if len(remote.Sessions) == 0 && remote.UploadBytes == 0 && remote.DownloadBytes == 0 &&
		remote.InFlight == 0 && remote.Queued == 0 {
		return "", false
	}
	parts := []string{fmt.Sprintf("%d in flight, %d queued", remote.InFlight, remote.Queued)}
	parts = append(parts, "up "+transfer(remote.UploadBytes, remote.UploadRate))
	parts = append(parts, "down "+transfer(remote.DownloadBytes, remote.DownloadRate))
	if len(remote.Sessions) > 0 {
		parts = append(parts, renderer.faint.Render("session "+remote.Sessions[0]))
	}
	return strings.Join(parts, ", "), true
}

func transfer(total uint64, rate *float64) string {
	text := humanize.IBytes(total)
	if rate != nil {
		text += " (" + humanize.IBytes(uint64(*rate)) + "/s)"
	}
	return text
}

func (renderer *Renderer) tests(tests TestSummary) (string, bool) {
	finished := tests.Pass + tests.Fail + tests.Skipped + tests.Omitted + tests.Fatal + tests.Timeout
	if tests.Discovered == 0 && finished == 0 && tests.ListingSuccess+tests.ListingFailed == 0 {
		return "", false
	}
	parts := []string{fmt.Sprintf("%d/%d finished", finished, tests.Discovered)}
	if tests.Pass > 0 {
		parts = append(parts, renderer.success.Render(fmt.Sprintf("%d pass", tests.Pass)))
	}
	failed := tests.Fail + tests.Fatal + tests.Timeout + tests.ListingFailed
	if failed > 0 {
		parts = append(parts, renderer.failure.Render(fmt.Sprintf("%d fail", failed)))
	}
	if skipped := tests.Skipped + tests.Omitted; skipped > 0 {
		parts = append(parts, renderer.faint.Render(fmt.Sprintf("%d skip", skipped)))
	}
	if tests.Rerun > 0 {
		parts = append(parts, renderer.warning.Render(fmt.Sprintf("%d rerun", tests.Rerun)))
	}
	return strings.Join(parts, ", "), true
}

func (renderer *Renderer) dice(dice DiceSummary) []string {
	lines := []string{renderer.row("dice", fmt.Sprintf("%d in flight, %d update(s)", dice.InFlight, dice.Updates))}
	for _, keyType := range dice.KeyTypes {
		if keyType.InFlight == 0 {
			continue
		}
		lines = append(lines, "  "+renderer.faint.Render(fmt.Sprintf("%6d", keyType.InFlight))+" "+keyType.KeyType)
	}
	return lines
}

func (renderer *Renderer) debug(debug DebugSummary) []string {
	line := fmt.Sprintf("%s events over %s, max delay %s",
		humanize.Comma(int64(debug.Events)), formatElapsed(debug.Window), formatElapsed(debug.MaxDelay))
	if debug.Unknown > 0 {
		line += ", " + renderer.warning.Render(fmt.Sprintf("%d unknown", debug.Unknown))
	}
	lines := []string{renderer.row("events", line)}
	kinds := slices.Sorted(maps.Keys(debug.Kinds))
	for _, kind := range kinds {
		lines = append(lines, "  "+renderer.faint.Render(fmt.Sprintf("%6d", debug.Kinds[kind]))+" "+kind)
	}
	if len(debug.Recent) > 0 {
		lines = append(lines, renderer.row("recent", renderer.faint.Render(strings.Join(debug.Recent, " "))))
	}
	return lines
}

// formatElapsed renders a duration at a precision suited to a progress
// display.
func formatElapsed(elapsed time.Duration) string {
	switch {
	case elapsed < time.Second:
		return elapsed.Round(time.Millisecond).String()
	case elapsed < time.Minute:
		return elapsed.Round(100 * time.Millisecond).String()
	default:
		return elapsed.Round(time.Second).String()
	}
}
