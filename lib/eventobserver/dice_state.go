// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventobserver

import (
	"maps"
	"slices"

	"github.com/bureau-foundation/buildwatch/lib/schema/buildevent"
)

// DiceState holds the latest incremental engine snapshot.
type DiceState struct {
	keyStates map[string]buildevent.DiceKeyState
	updates   uint64
}

// Update replaces the held key states with those of snapshot.
func (state *DiceState) Update(snapshot *buildevent.DiceStateSnapshot) {
	state.keyStates = maps.Clone(snapshot.KeyStates)
	state.updates++
}

// KeyTypes returns the key type names of the last snapshot, sorted.
func (state *DiceState) KeyTypes() []string {
	return slices.Sorted(maps.Keys(state.keyStates))
}

// KeyState returns the counts for one key type.
func (state *DiceState) KeyState(keyType string) (buildevent.DiceKeyState, bool) {
	keyState, ok := state.keyStates[keyType]
	return keyState, ok
}

// InFlight returns keys started but not finished, summed over types.
func (state *DiceState) InFlight() uint64 {
	var total uint64
	for _, keyState := range state.keyStates {
		total += keyState.InFlight()
	}
	return total
}

// Updates returns how many snapshots have been applied.
func (state *DiceState) Updates() uint64 { return state.updates }
