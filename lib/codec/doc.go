// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding configuration shared by every
// buildwatch package that reads or writes build events.
//
// Build events travel in two encodings. CBOR is the native form: event
// logs written by the daemon are CBOR sequences (one self-delimiting
// item per event, optionally compressed), and the union types in
// lib/schema/buildevent implement cbor.Marshaler and cbor.Unmarshaler
// in terms of this package. JSON is the human-facing form used by
// `buildwatch show --json` and by JSON-lines event logs.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. A
// re-encoded log is therefore byte-identical to the original whenever
// the events are, which keeps log digests stable across `convert`.
//
// The decoder ignores unknown struct fields. Producers add fields to
// existing payloads over time and an older reader must keep working.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(event)
//	err = codec.Unmarshal(data, &event)
//	rest, err := codec.UnmarshalFirst(buffer, &event)
//
// For reading log files, NewDecoder yields one item at a time. A log
// is written by appending Marshal output, since CBOR items are
// self-delimiting. Diagnose renders a record that failed to decode.
//
// # Struct Tag Rules
//
// Types that appear in both encodings use `json` tags only.
// fxamacker/cbor reads `json` tags when `cbor` tags are absent, so one
// tag controls field naming for both formats. Never put both tags on
// the same field.
package codec
