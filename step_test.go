// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package undo_test

import (
	"slices"
	"testing"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
	"code.hybscloud.com/undo"
)

// foreign is an effect no undo dispatcher understands.
type foreign struct {
	kont.Phantom[int]
}

// fillInbox raises commits until the inbox reports backpressure.
func fillInbox(t *testing.T, c *undo.Coordinator) {
	t.Helper()
	for range 64 {
		if err := c.RequestCommit(); err != nil {
			if !iox.IsWouldBlock(err) {
				t.Fatalf("unexpected raise error: %v", err)
			}
			return
		}
	}
	t.Fatal("inbox never filled")
}

func TestExecRegisterThenUndo(t *testing.T) {
	var j journal
	c := undo.New(undo.Config{})

	protocol := undo.RegisterThen(j.event("insert"),
		undo.RegisterBind(j.event("delete"), func(v uint32) kont.Eff[uint32] {
			return undo.RequestUndoThen(kont.Pure(v))
		}),
	)
	v, err := undo.Exec(c, protocol)
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if v != 2 {
		t.Fatalf("stamped %d, want 2", v)
	}

	mustTick(t, c)
	if !slices.Equal(j.replayed, []string{"delete"}) {
		t.Fatalf("replayed %v, want [delete]", j.replayed)
	}
}

func TestExecReserveCommitThenCursor(t *testing.T) {
	c := undo.New(undo.Config{})
	protocol := undo.ReserveThen(label("a"),
		undo.ReserveThen(label("b"),
			undo.CommitThen(
				undo.CursorBind(func(cur uint32) kont.Eff[uint32] {
					return kont.Pure(cur)
				}),
			),
		),
	)
	cur, err := undo.Exec(c, protocol)
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if cur != 0 {
		t.Fatalf("cursor read %d before commit tick, want 0", cur)
	}
	if got := c.Reservations().Value(); got != 2 {
		t.Fatalf("reservations %d, want 2", got)
	}

	mustTick(t, c)
	if got := c.Cursor().Value(); got != 2 {
		t.Fatalf("cursor %d after commit tick, want 2", got)
	}
}

func TestStepInspectOperations(t *testing.T) {
	c := undo.New(undo.Config{})
	protocol := kont.Reify(undo.RegisterThen(label("x"), undo.CursorBind(func(cur uint32) kont.Eff[uint32] {
		return kont.Pure(cur)
	})))

	_, susp := undo.Step[uint32](protocol)
	if susp == nil {
		t.Fatal("expected suspension for Register")
	}
	reg, ok := susp.Op().(undo.Register)
	if !ok {
		t.Fatalf("expected Register, got %T", susp.Op())
	}
	if reg.Event != label("x") {
		t.Fatalf("Register event %v, want x", reg.Event)
	}

	_, susp, err := undo.Advance(c, susp)
	if err != nil {
		t.Fatalf("Advance Register: %v", err)
	}
	if _, ok := susp.Op().(undo.Cursor); !ok {
		t.Fatalf("expected Cursor, got %T", susp.Op())
	}

	cur, susp, err := undo.Advance(c, susp)
	if err != nil {
		t.Fatalf("Advance Cursor: %v", err)
	}
	if susp != nil {
		t.Fatal("expected completion after Cursor")
	}
	if cur != 1 {
		t.Fatalf("cursor %d, want 1", cur)
	}
}

func TestAdvanceWouldBlockRetainsSuspension(t *testing.T) {
	c := undo.New(undo.Config{SignalCapacity: 2})
	fillInbox(t, c)

	_, susp := undo.Step[int](kont.Reify(undo.RequestUndoThen(kont.Pure(7))))
	_, retry, err := undo.Advance(c, susp)
	if !iox.IsWouldBlock(err) {
		t.Fatalf("expected ErrWouldBlock, got %v", err)
	}
	if retry != susp {
		t.Fatal("suspension must be returned unconsumed")
	}

	mustTick(t, c)
	v, next, err := undo.Advance(c, retry)
	if err != nil {
		t.Fatalf("Advance after tick: %v", err)
	}
	if next != nil || v != 7 {
		t.Fatalf("got (%d, %v), want (7, nil)", v, next)
	}
}

func TestExecTicksOnBackpressure(t *testing.T) {
	var j journal
	c := undo.New(undo.Config{SignalCapacity: 2})
	c.Register(j.event("one"))
	fillInbox(t, c)

	v, err := undo.Exec(c, undo.RequestUndoThen(kont.Pure("queued")))
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if v != "queued" {
		t.Fatalf("got %q", v)
	}
	// Exec drained the commits with one tick; the undo is pending.
	if f := mustTick(t, c); f.Phase != undo.RequestingUndo || !f.Posted {
		t.Fatalf("frame %+v", f)
	}
	if !slices.Equal(j.replayed, []string{"one"}) {
		t.Fatalf("replayed %v", j.replayed)
	}
}

func TestAdvanceUnhandledEffectPanics(t *testing.T) {
	c := undo.New(undo.Config{})
	_, susp := undo.Step[int](kont.Reify(kont.Perform(foreign{})))
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on foreign effect")
		}
	}()
	undo.Advance(c, susp)
}

func TestExecExprPure(t *testing.T) {
	c := undo.New(undo.Config{})
	v, err := undo.ExecExpr(c, kont.Reify(kont.Pure(11)))
	if err != nil || v != 11 {
		t.Fatalf("got (%d, %v), want (11, nil)", v, err)
	}
}
