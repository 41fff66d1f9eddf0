// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package undo

import "errors"

// Config configures a Coordinator. The zero value is usable.
type Config struct {
	// SignalCapacity bounds the inbox. Zero selects DefaultSignalCapacity,
	// and positive values below MinSignalCapacity are raised to it.
	SignalCapacity int

	// Dispatcher services RequestingUndo ticks. Nil selects Replay.
	Dispatcher Dispatcher
}

// Frame reports what one tick did.
type Frame struct {
	// Seq numbers ticks from 1.
	Seq uint64
	// Phase is the phase that was active during the update stage.
	Phase Phase
	// Posted reports that the dispatcher replayed an entry.
	Posted bool
	// Deferred reports that an undo request lost to a reservation commit
	// and was re-queued for the next tick.
	Deferred bool
}

// Coordinator owns the undo state of one runtime: both counters, the
// stack, the phase and the Posted flag. It is driven by a single host
// goroutine; Tick and all mutating methods must not be called concurrently.
type Coordinator struct {
	cursor       Counter
	reservations Counter
	stack        Stack

	phase  Phase
	next   Phase
	posted bool

	inbox signalQueue
	wait  signalQueue

	dispatcher Dispatcher
	ctx        Context

	seq   uint64
	frame Frame
}

// New creates a Coordinator in Idle with both counters at zero.
func New(cfg Config) *Coordinator {
	capacity := cfg.SignalCapacity
	if capacity <= 0 {
		capacity = DefaultSignalCapacity
	}
	capacity = max(capacity, MinSignalCapacity)
	d := cfg.Dispatcher
	if d == nil {
		d = Replay
	}
	c := &Coordinator{dispatcher: d}
	c.ctx.c = c
	c.inbox.init(capacity)
	c.wait.init(waitCapacity)
	return c
}

// Cursor returns the cursor counter.
func (c *Coordinator) Cursor() *Counter {
	return &c.cursor
}

// Reservations returns the reservation counter. Contributors add the
// magnitude they want folded, then raise a commit signal.
func (c *Coordinator) Reservations() *Counter {
	return &c.reservations
}

// Stack returns the undo stack.
func (c *Coordinator) Stack() *Stack {
	return &c.stack
}

// Phase returns the active phase. Between ticks it is always Idle.
func (c *Coordinator) Phase() Phase {
	return c.phase
}

// Posted reports whether an entry has been replayed in the current
// RequestingUndo cycle. It is cleared when that cycle finalizes.
func (c *Coordinator) Posted() bool {
	return c.posted
}

// RequestUndo raises a request-undo signal, evaluated at the next tick.
// Requests raised in the same tick coalesce into one undo. This holds
// when a commit defers them too: however many requests were pending
// behind the commit, exactly one is re-issued. Callers wanting several
// undos raise one request per tick.
// Returns iox.ErrWouldBlock if the inbox is full.
func (c *Coordinator) RequestUndo() error {
	return c.inbox.raise(SignalRequestUndo)
}

// RequestCommit raises a direct reservation commit signal.
// Returns iox.ErrWouldBlock if the inbox is full.
func (c *Coordinator) RequestCommit() error {
	return c.inbox.raise(SignalCommit)
}

// RequestCommitFromScheduler raises a scheduler-origin reservation commit
// signal. Returns iox.ErrWouldBlock if the inbox is full.
func (c *Coordinator) RequestCommitFromScheduler() error {
	return c.inbox.raise(SignalCommitFromScheduler)
}

// Push stamps e with the cursor's current value and appends it.
func (c *Coordinator) Push(e Event) uint32 {
	v := c.cursor.Value()
	c.stack.Push(Entry{Version: v, Event: e})
	return v
}

// Register records an undoable operation that already happened: the
// cursor advances and e is stamped with the new value, so e is the next
// entry an undo dispatches.
func (c *Coordinator) Register(e Event) uint32 {
	c.cursor.Increment()
	return c.Push(e)
}

// Reserve records an operation whose undo must not be dispatched until
// the reservation is committed. e is stamped past the cursor by the
// number of reservations pending, and becomes reachable once a commit
// folds them in.
func (c *Coordinator) Reserve(e Event) uint32 {
	c.reservations.Increment()
	v := c.cursor.Value() + c.reservations.Value()
	c.stack.Push(Entry{Version: v, Event: e})
	return v
}

// ReserveCommit asks for the pending reservations to be committed on
// behalf of a scheduler.
func (c *Coordinator) ReserveCommit() error {
	return c.RequestCommitFromScheduler()
}

// Tick runs one frame: evaluate signals (Idle only), apply the requested
// phase, dispatch (RequestingUndo only), finalize, and return to Idle.
//
// Every stage runs even if an earlier one fails, so the coordinator is
// Idle when Tick returns. Errors are contract violations, such as a
// dispatcher posting with the cursor at zero.
func (c *Coordinator) Tick() (Frame, error) {
	c.seq++
	c.frame = Frame{Seq: c.seq}

	errPre := c.runStage(stagePre)
	c.apply()
	c.frame.Phase = c.phase

	errUpdate := c.runStage(stageUpdate)
	c.frame.Posted = c.posted

	errPost := c.runStage(stagePost)
	c.apply()

	return c.frame, errors.Join(errPre, errUpdate, errPost)
}

func (c *Coordinator) apply() {
	c.phase = c.next
}
