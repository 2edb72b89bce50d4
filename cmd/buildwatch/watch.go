// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/buildwatch/cmd/buildwatch/cli"
	"github.com/bureau-foundation/buildwatch/lib/clock"
	"github.com/bureau-foundation/buildwatch/lib/eventlog"
	"github.com/bureau-foundation/buildwatch/lib/eventobserver"
	"github.com/bureau-foundation/buildwatch/lib/eventwatch"
	"github.com/bureau-foundation/buildwatch/lib/progress"
)

// logSource is an event log being read or followed.
type logSource interface {
	eventwatch.Source
	Count() uint64
	Digest() eventlog.Digest
	Close() error
}

func watchCommand(env *environment) *cli.Command {
	var (
		common  commonFlags
		display displayFlags
		follow  bool
	)
	return &cli.Command{
		Name:    "watch",
		Summary: "Show live progress while reading an event log",
		Description: `Show live progress while reading an event log.

With --follow the log is tailed as the build appends to it, until the
file is removed or renamed or the view is quit. Only uncompressed logs
can be followed.

When stdout is not a terminal, watch reads the log to the end and
prints the same summary as show.`,
		Usage: "buildwatch watch [flags] <log>",
		Examples: []cli.Example{
			{Description: "Follow the log of a running build", Command: "buildwatch watch --follow buck-out/log/events.jsonl"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("watch", pflag.ContinueOnError)
			common.register(flagSet)
			display.register(flagSet)
			flagSet.BoolVarP(&follow, "follow", "f", false, "keep reading as the log grows")
			return flagSet
		},
		Run: func(args []string) error {
			path, err := requireOneLog("watch", args)
			if err != nil {
				return err
			}
			live := cli.IsTerminal(env.stdout)
			session, err := common.open(env, live)
			if err != nil {
				return err
			}
			defer session.close()
			rich, err := display.resolve(session.cfg.Display, true)
			if err != nil {
				return err
			}

			source, err := openLog(session, path, follow)
			if err != nil {
				return err
			}
			defer source.Close()

			if !live {
				result, err := replayLive(env.ctx, session, source, rich)
				if err != nil {
					return fmt.Errorf("watching %s: %w", path, err)
				}
				result.Log = logInfo{Path: path, Events: source.Count(), Digest: source.Digest().String()}
				return writeText(env.stdout, result)
			}
			if err := runLive(env, session, source, rich); err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}
			return nil
		},
	}
}

func openLog(session *session, path string, follow bool) (logSource, error) {
	if !follow {
		return eventlog.Open(path)
	}
	poll, err := session.cfg.FollowPoll()
	if err != nil {
		return nil, err
	}
	return eventlog.Follow(path, eventlog.FollowOptions{
		PollInterval: poll,
		Logger:       session.logger,
	})
}

// replayLive drains source like show, with receive times from the
// wall clock since the events may be arriving now.
func replayLive(ctx context.Context, session *session, source eventwatch.Source, rich bool) (report, error) {
	peeked, traceID := peek(ctx, source)
	if rich {
		extra := eventobserver.NewDebugExtraWithCapacity(session.cfg.DebugEventCapacity)
		return drainWith(ctx, session, peeked, eventobserver.New(traceID, extra))
	}
	return drainWith(ctx, session, peeked, eventobserver.NewPlain(traceID))
}

func drainWith[E eventobserver.Extra](ctx context.Context, session *session, source eventwatch.Source, observer *eventobserver.EventObserver[E]) (report, error) {
	wallClock := clock.Real()
	watcher := eventwatch.New(observer, eventwatch.Config{
		Clock:       wallClock,
		Logger:      session.logger,
		ErrorPolicy: session.policy,
	})
	defer watcher.Close()
	if err := watcher.Run(ctx, source); err != nil {
		return report{}, err
	}
	stats := watcher.Stats()
	result := report{Rich: isRich(observer), Observed: stats.Observed, Rejected: stats.Rejected}
	watcher.View(func(observer *eventobserver.EventObserver[E]) {
		result.Summary = progress.Summarize(observer, wallClock.Now())
	})
	return result, nil
}

func runLive(env *environment, session *session, source eventwatch.Source, rich bool) error {
	peeked, traceID := peek(env.ctx, source)
	if rich {
		extra := eventobserver.NewDebugExtraWithCapacity(session.cfg.DebugEventCapacity)
		return liveWith(env, session, peeked, eventobserver.New(traceID, extra))
	}
	return liveWith(env, session, peeked, eventobserver.NewPlain(traceID))
}

// liveWith runs the watcher in the background and the progress view in
// the foreground until either finishes.
func liveWith[E eventobserver.Extra](env *environment, session *session, source eventwatch.Source, observer *eventobserver.EventObserver[E]) error {
	refresh, err := session.cfg.Refresh()
	if err != nil {
		return err
	}
	wallClock := clock.Real()
	watcher := eventwatch.New(observer, eventwatch.Config{
		Clock:       wallClock,
		Logger:      session.logger,
		ErrorPolicy: session.policy,
	})
	defer watcher.Close()

	snapshot := func() progress.Status {
		var status progress.Status
		watcher.View(func(observer *eventobserver.EventObserver[E]) {
			status.Summary = progress.Summarize(observer, wallClock.Now())
		})
		stats := watcher.Stats()
		status.Observed = stats.Observed
		status.Rejected = stats.Rejected
		if stats.LastError != nil {
			status.LastError = stats.LastError.Error()
		}
		return status
	}

	renderer := progress.NewRenderer(env.stdout, termenv.NewOutput(env.stdout).EnvColorProfile(), progress.DefaultTheme)
	model := progress.NewModel(snapshot, renderer, refresh)

	ctx, cancel := context.WithCancel(env.ctx)
	defer cancel()
	program := tea.NewProgram(model, tea.WithOutput(env.stdout), tea.WithContext(ctx))
	if session.logHandler != nil {
		session.logHandler.SetSender(program)
		defer session.logHandler.SetSender(nil)
	}

	go forwardChanges(watcher.Subscribe(ctx), program)

	done := make(chan error, 1)
	go func() {
		err := watcher.Run(ctx, source)
		program.Send(progress.FinishedMsg{Err: err})
		done <- err
	}()

	_, programErr := program.Run()
	cancel()
	runErr := <-done

	if programErr != nil && !errors.Is(programErr, tea.ErrProgramKilled) {
		return fmt.Errorf("running progress view: %w", programErr)
	}
	// Quitting the view or an interrupt cancels the watcher; that is
	// not a failure.
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// forwardChanges sends one progress.ChangedMsg per burst of updates
// until updates is closed.
func forwardChanges(updates <-chan eventwatch.Update, sender progress.Sender) {
	for range updates {
	drain:
		for {
			select {
			case _, ok := <-updates:
				if !ok {
					sender.Send(progress.ChangedMsg{})
					return
				}
			default:
				break drain
			}
		}
		sender.Send(progress.ChangedMsg{})
	}
}
