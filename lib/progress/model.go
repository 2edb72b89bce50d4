// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// Status is what the live view shows on each refresh.
type Status struct {
	Summary  Summary
	Observed uint64
	Rejected uint64

	// LastError is the most recent rejected event's error, or empty.
	LastError string
}

// SnapshotFunc returns the current Status. It is called from the
// bubbletea event loop and must do its own locking.
type SnapshotFunc func() Status

// DefaultRefreshInterval is how often Model polls its SnapshotFunc.
const DefaultRefreshInterval = 100 * time.Millisecond

// refreshMsg asks the model to poll its snapshot function.
type refreshMsg struct{}

// ChangedMsg tells the model new events were observed. The model
// polls its snapshot function immediately; the refresh tick keeps
// running for elapsed times.
type ChangedMsg struct{}

// FinishedMsg tells the model the event source is exhausted. Err is the
// reason the watch ended, nil for a clean end of stream. The model
// takes a final snapshot and quits.
type FinishedMsg struct {
	Err error
}

// Model is the bubbletea model of the live progress view.
type Model struct {
	snapshot SnapshotFunc
	refresh  time.Duration
	renderer *Renderer
	keys     KeyMap
	spinner  spinner.Model

	status    Status
	width     int
	showDebug bool
	finished  bool
	err       error

	logMessage    string
	logLevel      slog.Level
	logGeneration uint64
}

// NewModel returns a Model polling snapshot every refresh interval
// (DefaultRefreshInterval when refresh is not positive).
func NewModel(snapshot SnapshotFunc, renderer *Renderer, refresh time.Duration) Model {
	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}
	return Model{
		snapshot: snapshot,
		refresh:  refresh,
		renderer: renderer,
		keys:     DefaultKeyMap,
		spinner:  spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		status:   snapshot(),
	}
}

// ShowDebug sets whether the rich sections are shown initially.
func (model *Model) ShowDebug(show bool) {
	model.showDebug = show
}

// Err returns the error carried by FinishedMsg, if any.
func (model Model) Err() error {
	return model.err
}

// Status returns the last polled Status.
func (model Model) Status() Status {
	return model.status
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return tea.Batch(model.spinner.Tick, model.scheduleRefresh())
}

func (model Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(model.refresh, func(time.Time) tea.Msg { return refreshMsg{} })
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(message, model.keys.Quit):
			return model, tea.Quit
		case key.Matches(message, model.keys.ToggleDebug):
			model.showDebug = !model.showDebug
		}

	case tea.WindowSizeMsg:
		model.width = message.Width

	case refreshMsg:
		if model.finished {
			return model, nil
		}
		model.status = model.snapshot()
		return model, model.scheduleRefresh()

	case ChangedMsg:
		if !model.finished {
			model.status = model.snapshot()
		}

	case FinishedMsg:
		model.finished = true
		model.err = message.Err
		model.status = model.snapshot()
		return model, tea.Quit

	case logRecordMsg:
		model.logGeneration++
		model.logMessage = message.Summary
		model.logLevel = message.Level
		generation := model.logGeneration
		return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{Generation: generation}
		})

	case logRecordFadeMsg:
		if message.Generation == model.logGeneration {
			model.logMessage = ""
		}

	case spinner.TickMsg:
		if model.finished {
			return model, nil
		}
		var cmd tea.Cmd
		model.spinner, cmd = model.spinner.Update(message)
		return model, cmd
	}
	return model, nil
}

// View implements tea.Model.
func (model Model) View() string {
	var sections []string
	sections = append(sections, model.renderer.Render(model.status.Summary, Options{
		Width: model.width,
		Debug: model.showDebug,
	}))
	sections = append(sections, model.renderer.Separator(model.width))
	sections = append(sections, model.statusLine())
	return strings.Join(sections, "\n") + "\n"
}

func (model Model) statusLine() string {
	var line string
	switch {
	case model.logMessage != "":
		style := model.renderer.warning
		if model.logLevel >= slog.LevelError {
			style = model.renderer.failure
		} else if model.logLevel < slog.LevelWarn {
			style = model.renderer.faint
		}
		line = style.Render(model.logMessage)
	case model.finished && model.err != nil:
		line = model.renderer.failure.Render("stopped: " + model.err.Error())
	case model.finished:
		line = model.renderer.success.Render(fmt.Sprintf("done, %d event(s)", model.status.Observed)) + model.rejectedSuffix()
	default:
		line = model.spinner.View() + " " +
			model.renderer.normal.Render(fmt.Sprintf("%d event(s)", model.status.Observed)) +
			model.rejectedSuffix() + "  " + model.help()
	}
	if model.width > 0 {
		line = ansi.Truncate(line, model.width, "…")
	}
	return line
}

func (model Model) rejectedSuffix() string {
	if model.status.Rejected == 0 {
		return ""
	}
	text := fmt.Sprintf(", %d rejected", model.status.Rejected)
	if model.status.LastError != "" {
		text += " (last: " + model.status.LastError + ")"
	}
	return model.renderer.warning.Render(text)
}

func (model Model) help() string {
	var parts []string
	for _, binding := range []key.Binding{model.keys.ToggleDebug, model.keys.Quit} {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return model.renderer.help.Render(strings.Join(parts, "  "))
}
