// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventobserver

import (
	"fmt"

	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
)

// MissingDataError reports an event whose payload is absent at a level
// where the declared variant requires one.
type MissingDataError struct {
	// Variant is the union holder whose data was missing: "SpanEnd",
	// "Instant", or "TestDiscovery".
	Variant string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("missing `data` in %s", e.Variant)
}

// SpanError reports a violation of span nesting: a start without an
// id, a start for a span that is already open, or an end for a span
// that is not open.
type SpanError struct {
	SpanID buildevent.SpanID
	Reason string
}

func (e *SpanError) Error() string {
	return fmt.Sprintf("span %s: %s", e.SpanID, e.Reason)
}
