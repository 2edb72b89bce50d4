// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/buildwatch/lib/clock"
	"github.com/bureau-foundation/buildwatch/lib/codec"
	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
)

// DefaultPollInterval is how often a Follower rereads the log when no
// filesystem notification arrives. Notifications are the normal wake
// source; the poll covers filesystems that do not deliver them.
const DefaultPollInterval = time.Second

// FollowOptions configures a Follower. The zero value uses the real
// clock, DefaultPollInterval, and slog.Default().
type FollowOptions struct {
	Clock        clock.Clock
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Follower tails an uncompressed log that another process is still
// writing. Next blocks until a complete record is available, the log
// file is removed or renamed, or the context is done.
type Follower struct {
	path    string
	format  Format
	file    *os.File
	watcher *fsnotify.Watcher
	ticker  *clock.Ticker
	logger  *slog.Logger
	hasher  *blake3.Hasher

	// pending holds bytes read from the file but not yet decoded. A
	// record is consumed only once it is complete.
	pending []byte
	readBuf []byte
	count   uint64
	removed bool
}

// Follow opens the log at path for tailing. Compressed logs cannot be
// followed: their frames are not decodable until the writer flushes.
func Follow(path string, options FollowOptions) (*Follower, error) {
	format, compression, err := DetectPath(path)
	if err != nil {
		return nil, err
	}
	if compression != CompressionNone {
		return nil, fmt.Errorf("cannot follow %s: %s-compressed logs can only be replayed", path, compression)
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.PollInterval <= 0 {
		options.PollInterval = DefaultPollInterval
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	absolute, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	file, err := os.Open(absolute)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	// Watch the directory, not the file, so removal and replacement
	// are reported too.
	directory := filepath.Dir(absolute)
	if err := watcher.Add(directory); err != nil {
		watcher.Close()
		file.Close()
		return nil, fmt.Errorf("watching directory %s: %w", directory, err)
	}

	return &Follower{
		path:    absolute,
		format:  format,
		file:    file,
		watcher: watcher,
		ticker:  options.Clock.NewTicker(options.PollInterval),
		logger:  options.Logger,
		hasher:  newDigester(),
		readBuf: make([]byte, 64*1024),
	}, nil
}

// Next returns the next event. It returns io.EOF once the log file has
// been removed or renamed and every complete record has been returned,
// and io.ErrUnexpectedEOF if a partial record was left behind.
func (follower *Follower) Next(ctx context.Context) (*buildevent.Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		event, err := follower.decodePending()
		if err != nil || event != nil {
			return event, err
		}

		read, err := follower.fill()
		if err != nil {
			return nil, err
		}
		if read > 0 {
			continue
		}
		if follower.removed {
			if len(follower.pending) > 0 {
				return nil, fmt.Errorf("event %d: log ended mid-record: %w", follower.count, io.ErrUnexpectedEOF)
			}
			return nil, io.EOF
		}
		if err := follower.wait(ctx); err != nil {
			return nil, err
		}
	}
}

// decodePending decodes one complete record from pending. It returns
// (nil, nil) when pending does not yet hold a complete record.
func (follower *Follower) decodePending() (*buildevent.Event, error) {
	for len(follower.pending) > 0 {
		var event buildevent.Event
		if follower.format == FormatCBOR {
			rest, err := codec.UnmarshalFirst(follower.pending, &event)
			if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
				return nil, nil
			}
			if err != nil {
				return nil, fmt.Errorf("event %d: %w", follower.count, err)
			}
			follower.consume(len(follower.pending) - len(rest))
		} else {
			newline := bytes.IndexByte(follower.pending, '\n')
			if newline < 0 {
				return nil, nil
			}
			line := bytes.TrimSpace(follower.pending[:newline])
			if len(line) == 0 {
				follower.consume(newline + 1)
				continue
			}
			err := json.Unmarshal(line, &event)
			follower.consume(newline + 1)
			if err != nil {
				return nil, fmt.Errorf("event %d: %w", follower.count, err)
			}
		}
		follower.count++
		return &event, nil
	}
	return nil, nil
}

func (follower *Follower) consume(length int) {
	follower.hasher.Write(follower.pending[:length])
	follower.pending = append(follower.pending[:0], follower.pending[length:]...)
}

// fill reads everything currently available from the file.
func (follower *Follower) fill() (int, error) {
	total := 0
	for {
		read, err := follower.file.Read(follower.readBuf)
		follower.pending = append(follower.pending, follower.readBuf[:read]...)
		total += read
		if errors.Is(err, io.EOF) || (err == nil && read == 0) {
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("reading %s: %w", follower.path, err)
		}
	}
}

// wait blocks until the file may have changed.
func (follower *Follower) wait(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-follower.ticker.C:
			return nil
		case event, ok := <-follower.watcher.Events:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			if event.Name != follower.path {
				continue
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				follower.removed = true
			}
			return nil
		case err, ok := <-follower.watcher.Errors:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			follower.logger.Warn("event log watch error", "path", follower.path, "error", err)
		}
	}
}

// Count returns the number of events returned so far.
func (follower *Follower) Count() uint64 { return follower.count }

// Digest returns the digest of the records consumed so far.
func (follower *Follower) Digest() Digest { return sum(follower.hasher) }

// Close stops watching and closes the file.
func (follower *Follower) Close() error {
	follower.ticker.Stop()
	return errors.Join(follower.watcher.Close(), follower.file.Close())
}
