// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package undo

import "errors"

// ErrCursorUnderflow reports a decrement of a counter already at zero.
// It is a contract violation by whoever posted an undo: a replayed entry
// implies the cursor was positive when it was popped.
var ErrCursorUnderflow = errors.New("undo: counter decremented below zero")

// ErrCounterOverflow reports an addition that would carry a counter past
// math.MaxUint32. The counter is left unchanged.
var ErrCounterOverflow = errors.New("undo: counter incremented past max uint32")
