// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package undo coordinates undo dispatch and reservation commits for
// frame-based runtimes.
//
// A [Coordinator] owns a cursor [Counter], a reservation [Counter], a
// versioned [Stack] of undo payloads and a three-valued [Phase]. The host
// loop calls [Coordinator.Tick] once per frame; each tick is a strict
// two-phase protocol: pending reservations are folded into the cursor
// first, and only then is an undo dispatched by cursor value.
//
// # Architecture
//
//   - Signals: Lock-free bounded SPSC queues via [code.hybscloud.com/lfq]. Raise methods return
//     [code.hybscloud.com/iox.ErrWouldBlock] when the inbox is full.
//   - Counters: [code.hybscloud.com/atomix] cells, so observers on other goroutines read without tearing.
//   - Phases: A dispatch table keyed by (phase, stage). A handler runs only while its phase is active.
//   - Recording: Undo bookkeeping as algebraic effects on [code.hybscloud.com/kont].
//
// # Tick Stages
//
//   - Pre (Idle only): drain the inbox, decide the next phase, convert a pending wait signal
//     into a fresh undo request for the next tick.
//   - Update (RequestingUndo only): call the [Dispatcher], which pops the entry stamped with the
//     current cursor and replays it.
//   - Post: decrement the cursor if an entry was replayed, or fold reservations into the cursor.
//     Every tick ends in [Idle].
//
// Reservation commits always win over undo requests raised in the same tick.
// The losing request is not dropped: it is deferred through a wait signal and
// serviced on the following tick, once reservations are folded.
//
// # Recording Protocols
//
//   - Operations: [Register], [Reserve], [Commit], [CommitFromScheduler], [RequestUndo], [Cursor].
//   - Cont-world: [RegisterThen], [RegisterBind], [ReserveThen], [CommitThen], [RequestUndoThen], [CursorBind].
//   - Stepping: [Step] and [Advance] evaluate one effect at a time for host loops.
//   - Blocking: [Exec] and [ExecExpr] run to completion, ticking the coordinator on backpressure.
//
// # Example
//
//	c := undo.New(undo.Config{})
//	c.Register(undo.Func(func() { fmt.Println("undo insert") }))
//	_ = c.RequestUndo()
//	frame, err := c.Tick() // prints "undo insert"; frame.Posted == true
package undo
