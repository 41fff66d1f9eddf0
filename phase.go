// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package undo

import "fmt"

// Phase is the coordinator's state. Exactly one is active at a time.
type Phase uint8

const (
	// Idle is the initial state and the state every tick ends in.
	// Only Idle evaluates incoming signals.
	Idle Phase = iota
	// RequestingUndo dispatches the entry stamped with the cursor.
	RequestingUndo
	// CommittingReservations folds the reservation counter into the cursor.
	CommittingReservations

	numPhases
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case RequestingUndo:
		return "requesting-undo"
	case CommittingReservations:
		return "committing-reservations"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// stage is a sub-step of a tick. Stages run in order; within a stage the
// handlers registered for the current phase run in registration order.
type stage uint8

const (
	stagePre stage = iota
	stageUpdate
	stagePost

	numStages
)

// phaseHandler is a system gated on one phase.
type phaseHandler func(c *Coordinator) error

// phaseTable maps (phase, stage) to the systems that run there.
// Gating is structural: a handler is reachable only through its phase row.
var phaseTable = [numPhases][numStages][]phaseHandler{
	Idle: {
		stagePre: {evaluateSignals, convertWait},
	},
	RequestingUndo: {
		stageUpdate: {dispatchUndo},
		stagePost:   {finalizeUndo},
	},
	CommittingReservations: {
		stagePost: {finalizeCommit},
	},
}

// runStage runs the handlers of the current phase for s. The phase is read
// once: a transition requested by a handler takes effect at the next apply.
func (c *Coordinator) runStage(s stage) error {
	var first error
	for _, h := range phaseTable[c.phase][s] {
		if err := h(c); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// evaluateSignals drains the inbox and picks the next phase.
// Commits take priority: an undo request pending alongside a commit is
// deferred through the wait queue instead of dropped.
func evaluateSignals(c *Coordinator) error {
	n := c.inbox.drain()
	switch {
	case n.commits() > 0:
		c.next = CommittingReservations
		if n[SignalRequestUndo] > 0 {
			c.frame.Deferred = true
			return c.wait.raise(SignalWait)
		}
	case n[SignalRequestUndo] > 0:
		c.posted = false
		c.next = RequestingUndo
	}
	return nil
}

// convertWait turns a pending wait signal into a fresh undo request,
// evaluated at the next tick once reservations are folded.
func convertWait(c *Coordinator) error {
	n := c.wait.drain()
	if n[SignalWait] == 0 {
		return nil
	}
	c.posted = false
	if err := c.inbox.raise(SignalRequestUndo); err != nil {
		return fmt.Errorf("undo: re-issue deferred request: %w", err)
	}
	return nil
}

// dispatchUndo hands the tick to the dispatcher.
func dispatchUndo(c *Coordinator) error {
	c.dispatcher.Dispatch(&c.ctx)
	return nil
}

// finalizeUndo consumes Posted and returns to Idle whether or not an entry
// was replayed.
func finalizeUndo(c *Coordinator) error {
	posted := c.posted
	c.posted = false
	c.next = Idle
	if !posted {
		return nil
	}
	if err := c.cursor.Decrement(); err != nil {
		return fmt.Errorf("undo: finalize tick %d: %w", c.seq, err)
	}
	return nil
}

// finalizeCommit folds reservations into the cursor and returns to Idle.
// A fold that would overflow the cursor leaves both counters unchanged.
func finalizeCommit(c *Coordinator) error {
	c.next = Idle
	if err := c.cursor.Add(&c.reservations); err != nil {
		return fmt.Errorf("undo: finalize tick %d: %w", c.seq, err)
	}
	c.reservations.Reset()
	return nil
}
