package game

import "fmt"

// Phase is one stage of a run's scripted animation.
type Phase uint8

const (
	PhaseConverging Phase = iota
	PhaseRotating
	PhaseShrinking
	PhaseExploding
	PhaseFading
	PhaseDone
)

var phaseNames = [...]string{
	PhaseConverging: "converging",
	PhaseRotating:   "rotating",
	PhaseShrinking:  "shrinking",
	PhaseExploding:  "exploding",
	PhaseFading:     "fading",
	PhaseDone:       "done",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// transitions lists the only legal successor of each phase.
var transitions = map[Phase]Phase{
	PhaseConverging: PhaseRotating,
	PhaseRotating:   PhaseShrinking,
	PhaseShrinking:  PhaseExploding,
	PhaseExploding:  PhaseFading,
	PhaseFading:     PhaseDone,
}

// Next returns the phase that follows p. Done has no successor.
func (p Phase) Next() (Phase, bool) {
	next, ok := transitions[p]
	return next, ok
}

// CanTransition reports whether a run may move directly from p to to.
func (p Phase) CanTransition(to Phase) bool {
	next, ok := transitions[p]
	return ok && next == to
}

// Terminal reports whether the phase ends the run.
func (p Phase) Terminal() bool { return p == PhaseDone }
