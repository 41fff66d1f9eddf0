// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package undo_test

import (
	"slices"
	"testing"

	"code.hybscloud.com/kont"
	"code.hybscloud.com/undo"
)

func TestExprRegisterRequestUndo(t *testing.T) {
	var j journal
	c := undo.New(undo.Config{})

	protocol := undo.ExprRegisterThen(j.event("a"),
		undo.ExprRegisterThen(j.event("b"),
			undo.ExprRequestUndoThen(
				undo.ExprCursorBind(func(cur uint32) kont.Expr[uint32] {
					return kont.ExprReturn(cur)
				}),
			),
		),
	)
	cur, err := undo.ExecExpr(c, protocol)
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if cur != 2 {
		t.Fatalf("cursor %d, want 2", cur)
	}

	mustTick(t, c)
	if !slices.Equal(j.replayed, []string{"b"}) {
		t.Fatalf("replayed %v, want [b]", j.replayed)
	}
}

func TestExprReserveCommit(t *testing.T) {
	c := undo.New(undo.Config{})
	protocol := undo.ExprReserveThen(label("r"),
		undo.ExprCommitThen(kont.ExprReturn("committed")),
	)

	_, susp := undo.Step[string](protocol)
	if _, ok := susp.Op().(undo.Reserve); !ok {
		t.Fatalf("expected Reserve, got %T", susp.Op())
	}
	_, susp, err := undo.Advance(c, susp)
	if err != nil {
		t.Fatalf("Advance Reserve: %v", err)
	}
	if _, ok := susp.Op().(undo.Commit); !ok {
		t.Fatalf("expected Commit, got %T", susp.Op())
	}
	v, susp, err := undo.Advance(c, susp)
	if err != nil || susp != nil || v != "committed" {
		t.Fatalf("got (%q, %v, %v)", v, susp, err)
	}

	f := mustTick(t, c)
	if f.Phase != undo.CommittingReservations {
		t.Fatalf("phase %v, want committing", f.Phase)
	}
	if got := c.Cursor().Value(); got != 1 {
		t.Fatalf("cursor %d, want 1", got)
	}
}

func TestExprMatchesContWorld(t *testing.T) {
	run := func(protocol kont.Expr[uint32]) []uint32 {
		c := undo.New(undo.Config{})
		if _, err := undo.ExecExpr(c, protocol); err != nil {
			t.Fatalf("exec: %v", err)
		}
		return c.Stack().Versions()
	}

	cont := kont.Reify(undo.RegisterThen(label("x"),
		undo.ReserveThen(label("y"), kont.Pure(uint32(0)))))
	expr := undo.ExprRegisterThen(label("x"),
		undo.ExprReserveThen(label("y"), kont.ExprReturn(uint32(0))))

	if a, b := run(cont), run(expr); !slices.Equal(a, b) {
		t.Fatalf("cont %v, expr %v", a, b)
	}
}
