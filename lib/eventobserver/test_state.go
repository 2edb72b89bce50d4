// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventobserver

import (
	"fmt"

	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
)

// TestState counts discovered tests and results by status.
type TestState struct {
	// Discovered is the number of test names announced by discovery.
	// It only grows.
	Discovered uint64

	Pass           uint64
	Fail           uint64
	Skipped        uint64
	Omitted        uint64
	Fatal          uint64
	Timeout        uint64
	ListingSuccess uint64
	ListingFailed  uint64
	Rerun          uint64
}

// Update counts one test result. A status outside the known set is
// rejected and leaves the counts unchanged.
func (state *TestState) Update(result *buildevent.TestResult) error {
	switch result.Status {
	case buildevent.TestStatusPass:
		state.Pass++
	case buildevent.TestStatusFail:
		state.Fail++
	case buildevent.TestStatusSkip:
		state.Skipped++
	case buildevent.TestStatusOmitted:
		state.Omitted++
	case buildevent.TestStatusFatal:
		state.Fatal++
	case buildevent.TestStatusTimeout:
		state.Timeout++
	case buildevent.TestStatusListingSuccess:
		state.ListingSuccess++
	case buildevent.TestStatusListingFailed:
		state.ListingFailed++
	case buildevent.TestStatusRerun:
		state.Rerun++
	default:
		return fmt.Errorf("test %q: invalid status %s", result.Name, result.Status)
	}
	return nil
}

// Finished returns the number of results that ended a test.
func (state *TestState) Finished() uint64 {
	return state.Pass + state.Fail + state.Skipped + state.Omitted + state.Fatal + state.Timeout
}

// Failed returns results that count as failures.
func (state *TestState) Failed() uint64 {
	return state.Fail + state.Fatal + state.Timeout + state.ListingFailed
}
