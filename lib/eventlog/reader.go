// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventlog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/buildwatch/lib/codec"
	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
)

// Reader replays the events of a complete log in order.
type Reader struct {
	format Format
	hasher *blake3.Hasher

	// Exactly one of cborDecoder and lines is set, by format.
	cborDecoder *codec.Decoder
	lines       *bufio.Reader

	// closers run in order on Close: decompressor first, then the file.
	closers []func() error
	count   uint64
	line    uint64
}

// Open opens the log at path, deriving its format and compression from
// the file name.
func Open(path string) (*Reader, error) {
	format, compression, err := DetectPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	reader, err := NewReader(file, format, compression)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("opening event log %s: %w", path, err)
	}
	reader.closers = append(reader.closers, file.Close)
	return reader, nil
}

// NewReader reads a log from source. Close releases the decompressor
// but does not close source.
func NewReader(source io.Reader, format Format, compression Compression) (*Reader, error) {
	reader := &Reader{format: format, hasher: newDigester()}

	decompressed, err := reader.decompress(source, compression)
	if err != nil {
		return nil, err
	}
	// Every decompressed byte passes through the hasher on its way to
	// the decoder.
	decompressed = io.TeeReader(decompressed, reader.hasher)

	switch format {
	case FormatCBOR:
		reader.cborDecoder = codec.NewDecoder(decompressed)
	case FormatJSONLines:
		reader.lines = bufio.NewReader(decompressed)
	default:
		reader.Close()
		return nil, fmt.Errorf("unsupported event log format %s", format)
	}
	return reader, nil
}

func (reader *Reader) decompress(source io.Reader, compression Compression) (io.Reader, error) {
	switch compression {
	case CompressionNone:
		return source, nil
	case CompressionZstd:
		decoder, err := zstd.NewReader(source)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		reader.closers = append(reader.closers, func() error { decoder.Close(); return nil })
		return decoder, nil
	case CompressionLZ4:
		return lz4.NewReader(source), nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", compression)
	}
}

// Next returns the next event, or io.EOF after the last one. A record
// cut off at the end of the log is io.ErrUnexpectedEOF.
func (reader *Reader) Next(ctx context.Context) (*buildevent.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var event buildevent.Event
	switch reader.format {
	case FormatCBOR:
		var record codec.RawMessage
		if err := reader.cborDecoder.Decode(&record); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("event %d: %w", reader.count, err)
		}
		if err := codec.Unmarshal(record, &event); err != nil {
			return nil, fmt.Errorf("event %d: %w (record %s)", reader.count, err, codec.Diagnose(record))
		}
	default:
		line, err := reader.nextLine()
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("line %d: %w", reader.line, err)
		}
	}
	reader.count++
	return &event, nil
}

// nextLine returns the next non-blank line without its terminator. A
// final line without a newline is returned as is.
func (reader *Reader) nextLine() ([]byte, error) {
	for {
		line, err := reader.lines.ReadBytes('\n')
		if len(line) > 0 {
			reader.line++
		}
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			return trimmed, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("reading line %d: %w", reader.line+1, err)
		}
	}
}

// Count returns the number of events returned so far.
func (reader *Reader) Count() uint64 { return reader.count }

// Digest returns the digest of the uncompressed bytes consumed so far.
// After Next has returned io.EOF this is the digest of the whole log.
func (reader *Reader) Digest() Digest { return sum(reader.hasher) }

// Close releases the reader's resources.
func (reader *Reader) Close() error {
	var errs []error
	for _, closer := range reader.closers {
		if err := closer(); err != nil {
			errs = append(errs, err)
		}
	}
	reader.closers = nil
	return errors.Join(errs...)
}
