// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package undo

import (
	"code.hybscloud.com/lfq"
)

// DefaultSignalCapacity is the inbox capacity used when Config leaves it zero.
// Signals coalesce per tick, so the inbox only needs to absorb one frame's
// worth of raises.
const DefaultSignalCapacity = 8

// MinSignalCapacity is the smallest inbox capacity. Smaller positive
// values in Config are raised to it.
const MinSignalCapacity = 2

// waitCapacity bounds the wait queue. At most one deferred request is in
// flight, so the smallest ring lfq accepts is enough.
const waitCapacity = 2

// Signal is a payload-free message carried between ticks.
type Signal uint8

const (
	// SignalRequestUndo asks for one undo.
	SignalRequestUndo Signal = iota
	// SignalCommitFromScheduler asks for a reservation commit on behalf of a scheduler.
	SignalCommitFromScheduler
	// SignalCommit asks for a reservation commit directly.
	SignalCommit
	// SignalWait carries an undo request deferred behind a commit. Internal only.
	SignalWait

	numSignals
)

var signalNames = [numSignals]string{
	SignalRequestUndo:         "request-undo",
	SignalCommitFromScheduler: "request-commit-reservations(scheduler)",
	SignalCommit:              "request-commit-reservations",
	SignalWait:                "undo-wait",
}

func (s Signal) String() string {
	if s < numSignals {
		return signalNames[s]
	}
	return "signal(?)"
}

// signalValues are addressable signal values for Enqueue, avoiding a
// per-raise heap escape.
var signalValues = [numSignals]Signal{
	SignalRequestUndo,
	SignalCommitFromScheduler,
	SignalCommit,
	SignalWait,
}

// signalCounts is the result of draining a queue: pending count per kind.
type signalCounts [numSignals]int

func (n *signalCounts) commits() int {
	return n[SignalCommit] + n[SignalCommitFromScheduler]
}

// signalQueue is a bounded single-producer single-consumer signal queue.
// The producer is application code on the host goroutine, the consumer is Tick.
type signalQueue struct {
	q lfq.SPSC[Signal]
}

func (sq *signalQueue) init(capacity int) {
	sq.q.Init(capacity)
}

// raise enqueues s. Non-blocking: returns iox.ErrWouldBlock when full.
func (sq *signalQueue) raise(s Signal) error {
	return sq.q.Enqueue(&signalValues[s])
}

// drain dequeues every pending signal and counts them by kind.
func (sq *signalQueue) drain() signalCounts {
	var n signalCounts
	for {
		s, err := sq.q.Dequeue()
		if err != nil {
			return n
		}
		if s < numSignals {
			n[s]++
		}
	}
}
