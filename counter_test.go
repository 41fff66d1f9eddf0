// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package undo_test

import (
	"errors"
	"math"
	"testing"

	"code.hybscloud.com/undo"
)

func TestCounterIncrementDecrement(t *testing.T) {
	var c undo.Counter
	c.Increment()
	c.Increment()
	if got := c.Value(); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
	if err := c.Decrement(); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if got := c.Value(); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}

func TestCounterDecrementAtZero(t *testing.T) {
	var c undo.Counter
	err := c.Decrement()
	if !errors.Is(err, undo.ErrCursorUnderflow) {
		t.Fatalf("got %v, want ErrCursorUnderflow", err)
	}
	if got := c.Value(); got != 0 {
		t.Fatalf("value changed to %d after failed decrement", got)
	}
}

func TestCounterAddAndReset(t *testing.T) {
	var cursor, reservations undo.Counter
	cursor.AddN(4)
	reservations.Increment()
	reservations.AddN(2)

	cursor.Add(&reservations)
	if got := cursor.Value(); got != 7 {
		t.Fatalf("cursor got %d, want 7", got)
	}
	if got := reservations.Value(); got != 3 {
		t.Fatalf("Add must not modify its operand, got %d", got)
	}

	reservations.Reset()
	if got := reservations.Value(); got != 0 {
		t.Fatalf("reset got %d, want 0", got)
	}
	if got := cursor.String(); got != "7" {
		t.Fatalf("String got %q, want %q", got, "7")
	}
}

func TestCounterAddOverflow(t *testing.T) {
	var c, other undo.Counter
	if err := c.AddN(math.MaxUint32 - 1); err != nil {
		t.Fatalf("AddN: %v", err)
	}
	if err := c.AddN(2); !errors.Is(err, undo.ErrCounterOverflow) {
		t.Fatalf("got %v, want ErrCounterOverflow", err)
	}
	other.AddN(2)
	if err := c.Add(&other); !errors.Is(err, undo.ErrCounterOverflow) {
		t.Fatalf("got %v, want ErrCounterOverflow", err)
	}
	if got := c.Value(); got != math.MaxUint32-1 {
		t.Fatalf("value changed to %d after failed add", got)
	}
	if err := c.AddN(1); err != nil {
		t.Fatalf("AddN up to the limit: %v", err)
	}
	if got := c.Value(); got != math.MaxUint32 {
		t.Fatalf("got %d, want MaxUint32", got)
	}
}
