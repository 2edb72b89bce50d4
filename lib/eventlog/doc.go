// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package eventlog reads and writes recorded build event streams.
//
// A log is a sequence of [buildevent.Event] records in one of two
// encodings: a CBOR sequence (RFC 8742, concatenated items with no
// framing) or JSON lines. Either may be compressed with zstd or an lz4
// frame. The encoding and compression are named by the file extension:
//
//	build.cbor        CBOR sequence
//	build.jsonl       JSON lines (.json is accepted as a synonym)
//	build.cbor.zst    zstd-compressed CBOR sequence
//	build.jsonl.lz4   lz4-compressed JSON lines
//
// [Reader] replays a complete log. [Follower] tails an uncompressed log
// that is still being written, waiting on filesystem notifications for
// more records. Both compute a [Digest] of the uncompressed bytes so two
// logs with different compression can be compared.
package eventlog
