// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package buildevent

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bureau-foundation/buildwatch/lib/codec"
)

// InstantData is the payload union of Instant.
type InstantData interface {
	Variant
	isInstantData()
}

// UnknownInstantData is an instant kind this package does not know.
type UnknownInstantData struct {
	Tag string `json:"-"`
}

func (u *UnknownInstantData) VariantTag() string { return u.Tag }
func (*UnknownInstantData) isInstantData()       {}
func (*UnknownInstantData) unknown()             {}

var instantDataUnion = unionDef[InstantData]{
	name: "Instant",
	variants: map[string]func() InstantData{
		"ReSession":            func() InstantData { return new(ReSession) },
		"Snapshot":             func() InstantData { return new(Snapshot) },
		"TestDiscovery":        func() InstantData { return new(TestDiscovery) },
		"TestResult":           func() InstantData { return new(TestResult) },
		"DebugAdapterSnapshot": func() InstantData { return new(DebugAdapterSnapshot) },
		"DiceStateSnapshot":    func() InstantData { return new(DiceStateSnapshot) },
		"TagEvent":             func() InstantData { return new(TagEvent) },
		"ConsoleMessage":       func() InstantData { return new(ConsoleMessage) },
	},
	unknown: func(tag string) InstantData { return &UnknownInstantData{Tag: tag} },
}

// ReSession announces a remote execution session opened by the run.
type ReSession struct {
	SessionID string `json:"session_id"`
}

func (*ReSession) VariantTag() string { return "ReSession" }
func (*ReSession) isInstantData()     {}

// Snapshot is a periodic sample of daemon resource usage and remote
// execution counters. Counters are cumulative since the daemon started.
type Snapshot struct {
	ReUploadBytes     uint64 `json:"re_upload_bytes"`
	ReDownloadBytes   uint64 `json:"re_download_bytes"`
	ReUploadsStarted  uint64 `json:"re_uploads_started"`
	ReDownloadsDone   uint64 `json:"re_downloads_finished"`
	ReActionsInFlight uint64 `json:"re_actions_in_flight"`
	ReActionsQueued   uint64 `json:"re_actions_queued"`
	UserCPUMicros     uint64 `json:"user_cpu_us"`
	SystemCPUMicros   uint64 `json:"system_cpu_us"`
	RSSBytes          uint64 `json:"rss_bytes"`
}

func (*Snapshot) VariantTag() string { return "Snapshot" }
func (*Snapshot) isInstantData()     {}

// TestDiscovery announces either the test session or a batch of
// discovered tests. It is itself a union.
type TestDiscovery struct {
	Data TestDiscoveryData
}

func (*TestDiscovery) VariantTag() string { return "TestDiscovery" }
func (*TestDiscovery) isInstantData()     {}

// TestDiscoveryData is the payload union of TestDiscovery.
type TestDiscoveryData interface {
	Variant
	isTestDiscoveryData()
}

// UnknownTestDiscoveryData is a discovery kind this package does not know.
type UnknownTestDiscoveryData struct {
	Tag string `json:"-"`
}

func (u *UnknownTestDiscoveryData) VariantTag() string { return u.Tag }
func (*UnknownTestDiscoveryData) isTestDiscoveryData() {}
func (*UnknownTestDiscoveryData) unknown()             {}

var testDiscoveryDataUnion = unionDef[TestDiscoveryData]{
	name: "TestDiscovery",
	variants: map[string]func() TestDiscoveryData{
		"Session": func() TestDiscoveryData { return new(TestSessionInfo) },
		"Tests":   func() TestDiscoveryData { return new(TestSuite) },
	},
	unknown: func(tag string) TestDiscoveryData { return &UnknownTestDiscoveryData{Tag: tag} },
}

func (discovery TestDiscovery) wire() map[string]any {
	object := map[string]any{}
	if data := encodeUnion(discovery.Data); data != nil {
		object["data"] = data
	}
	return object
}

func (discovery *TestDiscovery) decode(format wireFormat, data []byte) error {
	members, err := format.members(data)
	if err != nil {
		return fmt.Errorf("decoding TestDiscovery (%s): %w", format.name, err)
	}
	discovery.Data, err = testDiscoveryDataUnion.decode(format, members["data"])
	return err
}

func (discovery TestDiscovery) MarshalCBOR() ([]byte, error) { return codec.Marshal(discovery.wire()) }
func (discovery *TestDiscovery) UnmarshalCBOR(data []byte) error {
	return discovery.decode(cborFormat, data)
}
func (discovery TestDiscovery) MarshalJSON() ([]byte, error) { return json.Marshal(discovery.wire()) }
func (discovery *TestDiscovery) UnmarshalJSON(data []byte) error {
	return discovery.decode(jsonFormat, data)
}

// TestSessionInfo describes the test session of the run.
type TestSessionInfo struct {
	Info string `json:"info"`
}

func (*TestSessionInfo) VariantTag() string   { return "Session" }
func (*TestSessionInfo) isTestDiscoveryData() {}

// TestSuite is a batch of tests discovered in one suite.
type TestSuite struct {
	SuiteName string   `json:"suite_name"`
	TestNames []string `json:"test_names"`
	Target    string   `json:"target,omitempty"`
}

func (*TestSuite) VariantTag() string   { return "Tests" }
func (*TestSuite) isTestDiscoveryData() {}

// TestStatus is the outcome of one test. The zero value is not a valid
// status.
type TestStatus uint8

const (
	TestStatusNotSet TestStatus = iota
	TestStatusPass
	TestStatusFail
	TestStatusSkip
	TestStatusOmitted
	TestStatusFatal
	TestStatusTimeout
	TestStatusListingSuccess
	TestStatusListingFailed
	TestStatusRerun
)

func (status TestStatus) String() string {
	switch status {
	case TestStatusNotSet:
		return "not_set"
	case TestStatusPass:
		return "pass"
	case TestStatusFail:
		return "fail"
	case TestStatusSkip:
		return "skip"
	case TestStatusOmitted:
		return "omitted"
	case TestStatusFatal:
		return "fatal"
	case TestStatusTimeout:
		return "timeout"
	case TestStatusListingSuccess:
		return "listing_success"
	case TestStatusListingFailed:
		return "listing_failed"
	case TestStatusRerun:
		return "rerun"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(status))
	}
}

// TestResult reports the outcome of one test.
type TestResult struct {
	Name     string        `json:"name"`
	Target   string        `json:"target,omitempty"`
	Status   TestStatus    `json:"status"`
	Duration time.Duration `json:"duration_ns,omitempty"`
	Details  string        `json:"details,omitempty"`
}

func (*TestResult) VariantTag() string { return "TestResult" }
func (*TestResult) isInstantData()     {}

// DebugAdapterSnapshot is the state of attached Starlark debugger
// sessions at one point in time.
type DebugAdapterSnapshot struct {
	Sessions []DebuggerSession `json:"sessions"`
}

func (*DebugAdapterSnapshot) VariantTag() string { return "DebugAdapterSnapshot" }
func (*DebugAdapterSnapshot) isInstantData()     {}

// DebuggerSession is one attached debugger client.
type DebuggerSession struct {
	ID            string `json:"id"`
	PausedThreads uint32 `json:"paused_threads"`
	Breakpoints   uint32 `json:"breakpoints"`
}

// DiceStateSnapshot samples the incremental computation engine: per
// key type, how many keys are at each stage.
type DiceStateSnapshot struct {
	KeyStates map[string]DiceKeyState `json:"key_states"`
}

func (*DiceStateSnapshot) VariantTag() string { return "DiceStateSnapshot" }
func (*DiceStateSnapshot) isInstantData()     {}

// DiceKeyState counts keys of one type by stage. Counts are cumulative.
type DiceKeyState struct {
	Started           uint64 `json:"started"`
	Finished          uint64 `json:"finished"`
	CheckDepsStarted  uint64 `json:"check_deps_started"`
	CheckDepsFinished uint64 `json:"check_deps_finished"`
	ComputeStarted    uint64 `json:"compute_started"`
	ComputeFinished   uint64 `json:"compute_finished"`
}

// InFlight is the number of keys started but not finished.
func (state DiceKeyState) InFlight() uint64 {
	if state.Finished >= state.Started {
		return 0
	}
	return state.Started - state.Finished
}

// TagEvent is a free-form set of tags attached to the run.
type TagEvent struct {
	Tags []string `json:"tags"`
}

func (*TagEvent) VariantTag() string { return "TagEvent" }
func (*TagEvent) isInstantData()     {}

// ConsoleMessage is text the daemon wants shown to the user.
type ConsoleMessage struct {
	Message string `json:"message"`
}

func (*ConsoleMessage) VariantTag() string { return "ConsoleMessage" }
func (*ConsoleMessage) isInstantData()     {}
