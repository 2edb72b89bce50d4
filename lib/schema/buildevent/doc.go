// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package buildevent defines the build-lifecycle event stream consumed
// by the event observer: span boundaries (action executions, analysis,
// package loads, commands) and instant facts (remote execution
// sessions, resource snapshots, test discovery and results, debugger
// and incremental-engine snapshots, tag sets).
//
// # Tagged unions
//
// Each protocol level is a sealed interface with one concrete type per
// known variant plus an Unknown variant that carries only the tag:
//
//	Event.Data           EventData          SpanStart | SpanEnd | Instant
//	SpanStart.Data       SpanStartData      ActionExecutionStart | AnalysisStart | ...
//	SpanEnd.Data         SpanEndData        ActionExecutionEnd | AnalysisEnd | ...
//	Instant.Data         InstantData        ReSession | Snapshot | TestDiscovery | ...
//	TestDiscovery.Data   TestDiscoveryData  TestSessionInfo | TestSuite
//
// On the wire a union is externally tagged, {"data": {"Snapshot": {...}}},
// in both CBOR and JSON. Decoding distinguishes three cases that the
// observer treats differently:
//
//   - no "data" member (or null): the Data field is nil. The producer
//     omitted a payload its declared variant requires.
//   - a tag this package does not know: the Data field holds the
//     Unknown variant. Newer producers add variants; readers ignore
//     them.
//   - more than one tag: a decode error, since no producer emits that.
//
// Events are shared as *Event between the observer, the log reader,
// and diagnostics. Nothing mutates an Event after it is decoded.
package buildevent
