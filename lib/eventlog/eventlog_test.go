// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventlog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bureau-foundation/buildwatch/lib/codec"
	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent/buildeventtest"
)

func sampleLog() []*buildevent.Event {
	stream := buildeventtest.NewStream()
	start, end := stream.Action(0, "root//:step_0", buildevent.ActionExecutionRemote, 2*time.Second)
	return []*buildevent.Event{
		start,
		end,
		stream.Snapshot(buildevent.Snapshot{ReUploadBytes: 1024, RSSBytes: 1 << 30}),
		stream.Tests("suite", "test_a", "test_b"),
		stream.Instant(&buildevent.UnknownInstantData{Tag: "FutureKind"}),
		stream.Instant(&buildevent.TagEvent{Tags: []string{"which-dice:Modern"}}),
	}
}

func writeLog(t *testing.T, path string, events []*buildevent.Event) Digest {
	t.Helper()
	writer, err := Create(path)
	if err != nil {
		t.Fatalf("Create(%s): %v", path, err)
	}
	for _, event := range events {
		if err := writer.Write(event); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if writer.Count() != uint64(len(events)) {
		t.Errorf("Writer.Count: got %d, want %d", writer.Count(), len(events))
	}
	return writer.Digest()
}

func readLog(t *testing.T, path string) ([]*buildevent.Event, Digest) {
	t.Helper()
	reader, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	defer reader.Close()

	var events []*buildevent.Event
	for {
		event, err := reader.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		events = append(events, event)
	}
	if reader.Count() != uint64(len(events)) {
		t.Errorf("Reader.Count: got %d, want %d", reader.Count(), len(events))
	}
	return events, reader.Digest()
}

func TestRoundTripAllFormats(t *testing.T) {
	t.Parallel()
	events := sampleLog()

	for _, name := range []string{"log.cbor", "log.cbor.zst", "log.cbor.lz4", "log.jsonl", "log.jsonl.zst", "log.jsonl.lz4"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), name)
			written := writeLog(t, path, events)
			got, read := readLog(t, path)

			if diff := cmp.Diff(events, got); diff != "" {
				t.Errorf("events mismatch (-want +got):\n%s", diff)
			}
			if written != read {
				t.Errorf("Digest: writer %s, reader %s", written, read)
			}
		})
	}
}

func TestDigestIgnoresCompression(t *testing.T) {
	t.Parallel()
	events := sampleLog()
	directory := t.TempDir()

	plain := writeLog(t, filepath.Join(directory, "a.cbor"), events)
	compressed := writeLog(t, filepath.Join(directory, "b.cbor.zst"), events)
	jsonLines := writeLog(t, filepath.Join(directory, "c.jsonl"), events)

	if plain != compressed {
		t.Errorf("Digest: plain %s, zstd %s", plain, compressed)
	}
	if plain == jsonLines {
		t.Error("Digest: CBOR and JSON lines logs have the same digest")
	}

	raw, err := os.ReadFile(filepath.Join(directory, "a.cbor"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if DigestBytes(raw) != plain {
		t.Errorf("DigestBytes: got %s, want %s", DigestBytes(raw), plain)
	}
}

func TestReaderTruncatedCBOR(t *testing.T) {
	t.Parallel()
	var buffer bytes.Buffer
	writer, err := NewWriter(&buffer, FormatCBOR, CompressionNone)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for _, event := range sampleLog()[:2] {
		if err := writer.Write(event); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	truncated := buffer.Bytes()[:buffer.Len()-3]

	reader, err := NewReader(bytes.NewReader(truncated), FormatCBOR, CompressionNone)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, err := reader.Next(context.Background()); err != nil {
		t.Fatalf("Next(first): %v", err)
	}
	if _, err := reader.Next(context.Background()); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Next(truncated): got %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReaderDiagnosesBadCBORRecord(t *testing.T) {
	t.Parallel()
	record, err := codec.Marshal(map[string]any{
		"data": map[string]any{
			"Instant": map[string]any{},
			"SpanEnd": map[string]any{},
		},
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	reader, err := NewReader(bytes.NewReader(record), FormatCBOR, CompressionNone)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	_, err = reader.Next(context.Background())
	if err == nil {
		t.Fatal("Next: accepted an event with two variants")
	}
	for _, want := range []string{"event 0", "2 variants", `"SpanEnd"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Next error %q missing %q", err, want)
		}
	}
}

func TestReaderJSONLinesSkipsBlankLines(t *testing.T) {
	t.Parallel()
	input := "\n" +
		`{"trace_id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","span_id":0,"data":{"Instant":{"data":{"ConsoleMessage":{"message":"hi"}}}}}` +
		"\n   \n" +
		`{"trace_id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","span_id":0,"data":{"Instant":{"data":{"TagEvent":{"tags":["a"]}}}}}`

	reader, err := NewReader(strings.NewReader(input), FormatJSONLines, CompressionNone)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	var kinds []string
	for {
		event, err := reader.Next(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		kinds = append(kinds, buildevent.Describe(event))
	}
	want := []string{"Instant/ConsoleMessage", "Instant/TagEvent"}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderReportsLineOfBadRecord(t *testing.T) {
	t.Parallel()
	reader, err := NewReader(strings.NewReader("\n{not json}\n"), FormatJSONLines, CompressionNone)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	_, err = reader.Next(context.Background())
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Next: got %v, want an error naming line 2", err)
	}
}

func TestReaderHonorsContext(t *testing.T) {
	t.Parallel()
	reader, err := NewReader(strings.NewReader(""), FormatCBOR, CompressionNone)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := reader.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Next(cancelled): got %v, want context.Canceled", err)
	}
}

func TestWriterRejectsWriteAfterClose(t *testing.T) {
	t.Parallel()
	writer, err := NewWriter(io.Discard, FormatJSONLines, CompressionLZ4)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := writer.Write(sampleLog()[0]); err == nil {
		t.Error("Write after Close: got nil error")
	}
}
