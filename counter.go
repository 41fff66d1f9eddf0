// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package undo

import (
	"math"
	"strconv"

	"code.hybscloud.com/atomix"
)

// Counter is a non-negative integer cell.
//
// A Coordinator holds two: the cursor, which counts undo-eligible
// operations and keys stack lookups, and the reservation accumulator,
// which is folded into the cursor when a commit finalizes.
// Mutation is single-writer (the host goroutine); Value may be read
// from any goroutine.
type Counter struct {
	v atomix.Uint32
}

// Value returns the current count.
func (c *Counter) Value() uint32 {
	return c.v.Load()
}

// Increment adds one. The cursor space is 2^32 versions; one increment
// per registered operation does not reach it, so Increment is unchecked.
func (c *Counter) Increment() {
	c.v.Add(1)
}

// AddN adds n.
// If the sum would exceed math.MaxUint32 it returns ErrCounterOverflow
// and leaves the value unchanged.
func (c *Counter) AddN(n uint32) error {
	if c.v.Load() > math.MaxUint32-n {
		return ErrCounterOverflow
	}
	c.v.Add(n)
	return nil
}

// Add folds other into c. other is left unchanged.
// Overflow is reported as for AddN.
func (c *Counter) Add(other *Counter) error {
	return c.AddN(other.Value())
}

// Decrement subtracts one.
// At zero it returns ErrCursorUnderflow and leaves the value unchanged:
// clamping would desynchronize the cursor from the stack.
func (c *Counter) Decrement() error {
	if c.v.Load() == 0 {
		return ErrCursorUnderflow
	}
	c.v.Add(^uint32(0))
	return nil
}

// Reset sets the count to zero.
func (c *Counter) Reset() {
	c.v.Store(0)
}

func (c *Counter) String() string {
	return strconv.FormatUint(uint64(c.Value()), 10)
}
