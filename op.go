// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package undo

import (
	"code.hybscloud.com/kont"
)

// recorder is the structural interface for undo effects.
// DispatchRecord is non-blocking: signal-raising operations return
// iox.ErrWouldBlock when the inbox is full.
type recorder interface {
	DispatchRecord(c *Coordinator) (kont.Resumed, error)
}

// Register is the effect operation for recording a completed operation.
// Perform(Register{Event: e}) resumes with the version e was stamped with.
type Register struct {
	kont.Phantom[uint32]
	Event Event
}

// DispatchRecord advances the cursor and pushes the event. Never blocks.
func (o Register) DispatchRecord(c *Coordinator) (kont.Resumed, error) {
	return c.Register(o.Event), nil
}

// Reserve is the effect operation for recording an operation whose undo
// waits for a reservation commit.
// Perform(Reserve{Event: e}) resumes with the version e was stamped with.
type Reserve struct {
	kont.Phantom[uint32]
	Event Event
}

// DispatchRecord bumps the reservation counter and pushes the event. Never blocks.
func (o Reserve) DispatchRecord(c *Coordinator) (kont.Resumed, error) {
	return c.Reserve(o.Event), nil
}

// Commit is the effect operation for a direct reservation commit request.
type Commit struct {
	kont.Phantom[struct{}]
}

// DispatchRecord raises SignalCommit.
// Non-blocking: returns iox.ErrWouldBlock if the inbox is full.
func (Commit) DispatchRecord(c *Coordinator) (kont.Resumed, error) {
	if err := c.RequestCommit(); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

// CommitFromScheduler is the effect operation for a scheduler-origin
// reservation commit request.
type CommitFromScheduler struct {
	kont.Phantom[struct{}]
}

// DispatchRecord raises SignalCommitFromScheduler.
// Non-blocking: returns iox.ErrWouldBlock if the inbox is full.
func (CommitFromScheduler) DispatchRecord(c *Coordinator) (kont.Resumed, error) {
	if err := c.RequestCommitFromScheduler(); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

// RequestUndo is the effect operation for an undo request.
type RequestUndo struct {
	kont.Phantom[struct{}]
}

// DispatchRecord raises SignalRequestUndo.
// Non-blocking: returns iox.ErrWouldBlock if the inbox is full.
func (RequestUndo) DispatchRecord(c *Coordinator) (kont.Resumed, error) {
	if err := c.RequestUndo(); err != nil {
		return nil, err
	}
	return struct{}{}, nil
}

// Cursor is the effect operation for reading the cursor.
// Perform(Cursor{}) resumes with the cursor value.
type Cursor struct {
	kont.Phantom[uint32]
}

// DispatchRecord loads the cursor. Never blocks.
func (Cursor) DispatchRecord(c *Coordinator) (kont.Resumed, error) {
	return c.cursor.Value(), nil
}
