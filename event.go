// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package undo

// Event is an undo payload. Replay applies the inverse of the operation
// the payload was recorded for. It is called at most once, on the host
// goroutine, during a RequestingUndo tick.
type Event interface {
	Replay()
}

// Func adapts a plain function to Event.
type Func func()

// Replay calls f.
func (f Func) Replay() {
	f()
}
