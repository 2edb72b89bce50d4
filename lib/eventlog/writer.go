// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventlog

import (
	"bufio"
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

// Writer appends events to a log.
type Writer struct {
	format Format
	hasher *blake3.Hasher

	// records receives the uncompressed stream; it writes through the
	// compressor (if any) into the buffered destination.
	records    io.Writer
	compressor io.WriteCloser
	buffered   *bufio.Writer
	file       *os.File

	count  uint64
	closed bool
}

// Create creates (or truncates) the log at path, deriving its format
// and compression from the file name.
func Create(path string) (*Writer, error) {
	format, compression, err := DetectPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating event log: %w", err)
	}
	writer, err := NewWriter(file, format, compression)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("creating event log %s: %w", path, err)
	}
	writer.file = file
	return writer, nil
}

// NewWriter writes a log to destination. Close flushes the writer but
// does not close destination.
func NewWriter(destination io.Writer, format Format, compression Compression) (*Writer, error) {
	if format != FormatCBOR && format != FormatJSONLines {
		return nil, fmt.Errorf("unsupported event log format %s", format)
	}
	writer := &Writer{
		format:   format,
		hasher:   newDigester(),
		buffered: bufio.NewWriter(destination),
	}

	switch compression {
	case CompressionNone:
		writer.records = writer.buffered
	case CompressionZstd:
		encoder, err := zstd.NewWriter(writer.buffered, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		writer.compressor = encoder
		writer.records = encoder
	case CompressionLZ4:
		compressor := lz4.NewWriter(writer.buffered)
		writer.compressor = compressor
		writer.records = compressor
	default:
		return nil, fmt.Errorf("unsupported compression %s", compression)
	}
	return writer, nil
}

// Write appends one event.
func (writer *Writer) Write(event *buildevent.Event) error {
	if writer.closed {
		return errors.New("eventlog: write to closed writer")
	}
	record, err := encodeRecord(writer.format, event)
	if err != nil {
		return fmt.Errorf("encoding event %d: %w", writer.count, err)
	}
	if _, err := writer.records.Write(record); err != nil {
		return fmt.Errorf("writing event %d: %w", writer.count, err)
	}
	writer.hasher.Write(record)
	writer.count++
	return nil
}

func encodeRecord(format Format, event *buildevent.Event) ([]byte, error) {
	if format == FormatCBOR {
		return codec.Marshal(event)
	}
	record, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return append(record, '\n'), nil
}

// Count returns the number of events written.
func (writer *Writer) Count() uint64 { return writer.count }

// Digest returns the digest of the uncompressed bytes written so far.
// It equals the Digest a Reader reports after reading the same log to
// the end.
func (writer *Writer) Digest() Digest { return sum(writer.hasher) }

// Flush pushes buffered records to the destination. Compressed logs
// are only complete after Close.
func (writer *Writer) Flush() error {
	if writer.compressor == nil {
		return writer.buffered.Flush()
	}
	if flusher, ok := writer.compressor.(interface{ Flush() error }); ok {
		if err := flusher.Flush(); err != nil {
			return err
		}
	}
	return writer.buffered.Flush()
}

// Close finishes the compressed stream, flushes, and closes the file
// when the writer was made by Create. Close is idempotent.
func (writer *Writer) Close() error {
	if writer.closed {
		return nil
	}
	writer.closed = true

	var errs []error
	if writer.compressor != nil {
		if err := writer.compressor.Close(); err != nil {
			errs = append(errs, fmt.Errorf("finishing compressed stream: %w", err))
		}
	}
	if err := writer.buffered.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("flushing event log: %w", err))
	}
	if writer.file != nil {
		if err := writer.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing event log: %w", err))
		}
	}
	return errors.Join(errs...)
}
