// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventwatch

import "fmt"

// ErrorPolicy decides what a Watcher does with an event the observer
// rejects.
type ErrorPolicy uint8

const (
	// PolicySkip logs the error, counts the event as rejected, and
	// keeps going. State the rejected event already committed stays.
	PolicySkip ErrorPolicy = iota

	// PolicyAbort returns the error from Observe and Run.
	PolicyAbort
)

func (policy ErrorPolicy) String() string {
	switch policy {
	case PolicySkip:
		return "skip"
	case PolicyAbort:
		return "abort"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(policy))
	}
}

// ParseErrorPolicy parses "skip" or "abort".
func ParseErrorPolicy(name string) (ErrorPolicy, error) {
	switch name {
	case "skip":
		return PolicySkip, nil
	case "abort":
		return PolicyAbort, nil
	default:
		return 0, fmt.Errorf("unknown error policy %q (expected skip or abort)", name)
	}
}
