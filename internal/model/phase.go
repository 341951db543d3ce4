package model

import "time"

// Phase is one state of the job state machine. A job moves strictly
// scatter -> barrier -> merge -> done; failed and cancelled are terminal and
// reachable from any non-terminal phase.
type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseScatter   Phase = "scatter"
	PhaseBarrier   Phase = "barrier"
	PhaseMerge     Phase = "merge"
	PhaseDone      Phase = "done"
	PhaseFailed    Phase = "failed"
	PhaseCancelled Phase = "cancelled"
)

// Terminal reports whether no further transition is allowed from p.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed || p == PhaseCancelled
}

// phaseOrder drives CanTransition for the forward path.
var phaseOrder = map[Phase]Phase{
	PhasePending: PhaseScatter,
	PhaseScatter: PhaseBarrier,
	PhaseBarrier: PhaseMerge,
	PhaseMerge:   PhaseDone,
}

// CanTransition reports whether a job in phase p may move to next. Failed and
// cancelled are always reachable until a terminal phase is hit; there is no
// path back from any terminal phase.
func (p Phase) CanTransition(next Phase) bool {
	if p.Terminal() {
		return false
	}
	if next == PhaseFailed || next == PhaseCancelled {
		return true
	}
	return phaseOrder[p] == next
}

// PhaseEvent records one observed phase transition for a job
type PhaseEvent struct {
	JobID string    `json:"job_id"`
	Phase Phase     `json:"phase"`
	Note  string    `json:"note,omitempty"`
	At    time.Time `json:"at"`
}
