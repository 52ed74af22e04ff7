// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package executor

import "github.com/samber/oops"

// State is the lifecycle position of a run.
type State int

// Run states. Completed and Failed are terminal.
const (
	Idle State = iota
	Preparing
	Running
	Completed
	Failed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Preparing:
		return "preparing"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Completed || s == Failed
}

var transitions = map[State][]State{
	Idle:      {Preparing},
	Preparing: {Running, Failed},
	Running:   {Completed, Failed},
}

// canTransition reports whether from -> to is a legal step.
func canTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// machine tracks one run's state.
type machine struct {
	state State
}

func (m *machine) advance(to State) error {
	if !canTransition(m.state, to) {
		return oops.Code(CodeInvalidTransition).
			In("executor").
			With("from", m.state.String()).
			With("to", to.String()).
			Errorf("invalid run state transition %s -> %s", m.state, to)
	}
	m.state = to
	return nil
}
