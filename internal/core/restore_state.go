package core

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rewin/internal/types"
)

var restoreTransitions = map[types.RestoreState][]types.RestoreState{
	types.RestoreStateIdle:                 {types.RestoreStateInstallingWinget},
	types.RestoreStateInstallingWinget:     {types.RestoreStateInstallingChocolatey},
	types.RestoreStateInstallingChocolatey: {types.RestoreStateRestoringConfig},
	types.RestoreStateRestoringConfig:      {types.RestoreStateCompleted},
}

// restoreMachine tracks the state of one restore run. Every non-terminal
// state may also move to failed.
type restoreMachine struct {
	state   types.RestoreState
	onState func(types.RestoreState)
}

func newRestoreMachine(onState func(types.RestoreState)) *restoreMachine {
	return &restoreMachine{state: types.RestoreStateIdle, onState: onState}
}

func (m *restoreMachine) State() types.RestoreState {
	return m.state
}

func (m *restoreMachine) Advance(next types.RestoreState) error {
	if !canTransition(m.state, next) {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("invalid restore transition %s -> %s", m.state, next))
	}
	m.state = next
	if m.onState != nil {
		m.onState(next)
	}
	return nil
}

func (m *restoreMachine) Fail() {
	if m.state.Terminal() {
		return
	}
	_ = m.Advance(types.RestoreStateFailed)
}

func canTransition(from types.RestoreState, to types.RestoreState) bool {
	if from.Terminal() {
		return false
	}
	if to == types.RestoreStateFailed {
		return true
	}
	for _, allowed := range restoreTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func backendState(backend types.Backend) types.RestoreState {
	switch backend {
	case types.BackendWinget:
		return types.RestoreStateInstallingWinget
	case types.BackendChocolatey:
		return types.RestoreStateInstallingChocolatey
	default:
		return types.RestoreStateFailed
	}
}

func backendPhase(backend types.Backend) types.Phase {
	switch backend {
	case types.BackendWinget:
		return types.PhaseWinget
	default:
		return types.PhaseChocolatey
	}
}
