// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package buildevent

// Describe returns the tag path of an event, e.g. "SpanEnd/ActionExecution"
// or "Instant/TestDiscovery/Tests". A missing payload at any level
// appears as "<missing>".
func Describe(event *Event) string {
	if event == nil {
		return "<nil>"
	}
	switch data := event.Data.(type) {
	case nil:
		return "<missing>"
	case *SpanStart:
		return "SpanStart/" + tagOf(data.Data)
	case *SpanEnd:
		return "SpanEnd/" + tagOf(data.Data)
	case *Instant:
		if discovery, ok := data.Data.(*TestDiscovery); ok {
			return "Instant/TestDiscovery/" + tagOf(discovery.Data)
		}
		return "Instant/" + tagOf(data.Data)
	default:
		return data.VariantTag()
	}
}

// HasUnknownVariant reports whether any level of the event's payload
// is a variant this package does not know.
func HasUnknownVariant(event *Event) bool {
	if event == nil || event.Data == nil {
		return false
	}
	if IsUnknown(event.Data) {
		return true
	}
	var nested Variant
	switch data := event.Data.(type) {
	case *SpanStart:
		nested = data.Data
	case *SpanEnd:
		nested = data.Data
	case *Instant:
		if discovery, ok := data.Data.(*TestDiscovery); ok && discovery.Data != nil {
			return IsUnknown(discovery.Data)
		}
		nested = data.Data
	}
	return nested != nil && IsUnknown(nested)
}
