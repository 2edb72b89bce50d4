// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package buildevent

import (
	"fmt"
	"time"
)

// SpanStartData is the payload union of SpanStart.
type SpanStartData interface {
	Variant
	isSpanStartData()
}

// SpanEndData is the payload union of SpanEnd.
type SpanEndData interface {
	Variant
	isSpanEndData()
}

// UnknownSpanStartData is a span start kind this package does not know.
type UnknownSpanStartData struct {
	Tag string `json:"-"`
}

func (u *UnknownSpanStartData) VariantTag() string { return u.Tag }
func (*UnknownSpanStartData) isSpanStartData()     {}
func (*UnknownSpanStartData) unknown()             {}

// UnknownSpanEndData is a span end kind this package does not know.
type UnknownSpanEndData struct {
	Tag string `json:"-"`
}

func (u *UnknownSpanEndData) VariantTag() string { return u.Tag }
func (*UnknownSpanEndData) isSpanEndData()       {}
func (*UnknownSpanEndData) unknown()             {}

var spanStartDataUnion = unionDef[SpanStartData]{
	name: "SpanStart",
	variants: map[string]func() SpanStartData{
		"ActionExecution": func() SpanStartData { return new(ActionExecutionStart) },
		"Analysis":        func() SpanStartData { return new(AnalysisStart) },
		"Load":            func() SpanStartData { return new(LoadStart) },
		"Command":         func() SpanStartData { return new(CommandStart) },
	},
	unknown: func(tag string) SpanStartData { return &UnknownSpanStartData{Tag: tag} },
}

var spanEndDataUnion = unionDef[SpanEndData]{
	name: "SpanEnd",
	variants: map[string]func() SpanEndData{
		"ActionExecution": func() SpanEndData { return new(ActionExecutionEnd) },
		"Analysis":        func() SpanEndData { return new(AnalysisEnd) },
		"Load":            func() SpanEndData { return new(LoadEnd) },
		"Command":         func() SpanEndData { return new(CommandEnd) },
	},
	unknown: func(tag string) SpanEndData { return &UnknownSpanEndData{Tag: tag} },
}

// ActionKey identifies an action by the target that owns it plus a
// category and an identifier unique within that category.
type ActionKey struct {
	// Owner is the configured target label, e.g. "root//:step_0".
	Owner string `json:"owner"`

	// Category groups actions of one kind, e.g. "write" or "cxx_compile".
	Category string `json:"category"`

	// Identifier disambiguates actions sharing Owner and Category.
	Identifier string `json:"identifier,omitempty"`
}

func (key ActionKey) String() string {
	if key.Identifier == "" {
		return fmt.Sprintf("%s %s", key.Owner, key.Category)
	}
	return fmt.Sprintf("%s %s %s", key.Owner, key.Category, key.Identifier)
}

// ActionExecutionKind records how an action's result was obtained.
type ActionExecutionKind uint8

const (
	ActionExecutionNotSet ActionExecutionKind = iota
	// ActionExecutionLocal ran the action's command on this host.
	ActionExecutionLocal
	// ActionExecutionRemote ran the command on remote execution.
	ActionExecutionRemote
	// ActionExecutionActionCache served the result from the remote
	// action cache without running anything.
	ActionExecutionActionCache
	// ActionExecutionSimple is an action with no command (a write or
	// symlink performed by the daemon itself).
	ActionExecutionSimple
	// ActionExecutionDeferred is an action whose execution was
	// delegated to another action.
	ActionExecutionDeferred
	// ActionExecutionLocalDepFile was skipped because the local
	// dep-file matched.
	ActionExecutionLocalDepFile
	// ActionExecutionLocalWorker ran in a persistent local worker.
	ActionExecutionLocalWorker
	// ActionExecutionRemoteDepFileCache was served by the remote
	// dep-file cache.
	ActionExecutionRemoteDepFileCache
)

func (kind ActionExecutionKind) String() string {
	switch kind {
	case ActionExecutionNotSet:
		return "not_set"
	case ActionExecutionLocal:
		return "local"
	case ActionExecutionRemote:
		return "remote"
	case ActionExecutionActionCache:
		return "action_cache"
	case ActionExecutionSimple:
		return "simple"
	case ActionExecutionDeferred:
		return "deferred"
	case ActionExecutionLocalDepFile:
		return "local_dep_file"
	case ActionExecutionLocalWorker:
		return "local_worker"
	case ActionExecutionRemoteDepFileCache:
		return "remote_dep_file_cache"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(kind))
	}
}

// ExecutorKind is where one command attempt ran.
type ExecutorKind uint8

const (
	ExecutorUnknown ExecutorKind = iota
	ExecutorLocal
	ExecutorRemote
	ExecutorWorker
)

// CommandStatus is the outcome of one command attempt.
type CommandStatus uint8

const (
	CommandStatusUnknown CommandStatus = iota
	CommandStatusSuccess
	CommandStatusFailure
	CommandStatusCancelled
	CommandStatusTimeout
)

// CommandExecution is one attempt at running an action's command. An
// action that fell back from remote to local execution carries more
// than one.
type CommandExecution struct {
	Executor ExecutorKind  `json:"executor"`
	Status   CommandStatus `json:"status"`
	WallTime time.Duration `json:"wall_time_ns"`
}

// ActionExecutionStart opens an action execution span.
type ActionExecutionStart struct {
	Key  ActionKey `json:"key"`
	Name string    `json:"name,omitempty"`
}

func (*ActionExecutionStart) VariantTag() string { return "ActionExecution" }
func (*ActionExecutionStart) isSpanStartData()   {}

// ActionExecutionEnd closes an action execution span and carries the
// action's outcome.
type ActionExecutionEnd struct {
	Key        ActionKey           `json:"key"`
	Name       string              `json:"name,omitempty"`
	Kind       ActionExecutionKind `json:"execution_kind"`
	Failed     bool                `json:"failed,omitempty"`
	WallTime   time.Duration       `json:"wall_time_ns"`
	OutputSize uint64              `json:"output_size,omitempty"`
	Commands   []CommandExecution  `json:"commands,omitempty"`
}

func (*ActionExecutionEnd) VariantTag() string { return "ActionExecution" }
func (*ActionExecutionEnd) isSpanEndData()     {}

// AnalysisStart opens the analysis of one configured target.
type AnalysisStart struct {
	Target string `json:"target"`
	Rule   string `json:"rule,omitempty"`
}

func (*AnalysisStart) VariantTag() string { return "Analysis" }
func (*AnalysisStart) isSpanStartData()   {}

// AnalysisEnd closes an analysis span.
type AnalysisEnd struct {
	Target string `json:"target"`
	Rule   string `json:"rule,omitempty"`
}

func (*AnalysisEnd) VariantTag() string { return "Analysis" }
func (*AnalysisEnd) isSpanEndData()     {}

// LoadStart opens the evaluation of one package's build file.
type LoadStart struct {
	Package string `json:"package"`
}

func (*LoadStart) VariantTag() string { return "Load" }
func (*LoadStart) isSpanStartData()   {}

// LoadEnd closes a package load span.
type LoadEnd struct {
	Package string `json:"package"`
}

func (*LoadEnd) VariantTag() string { return "Load" }
func (*LoadEnd) isSpanEndData()     {}

// CommandStart opens the span of a whole client command (build, test,
// query, ...). It is normally the root of the span tree.
type CommandStart struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

func (*CommandStart) VariantTag() string { return "Command" }
func (*CommandStart) isSpanStartData()   {}

// CommandEnd closes the command span.
type CommandEnd struct {
	Command string `json:"command"`
	Success bool   `json:"success"`
}

func (*CommandEnd) VariantTag() string { return "Command" }
func (*CommandEnd) isSpanEndData()     {}
