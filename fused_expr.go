// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package undo

import (
	"code.hybscloud.com/kont"
)

// Pre-allocated erased operations and frames to eliminate heap escapes
// when boxing empty structs into any/kont.Frame during Expr-world execution.
var (
	exprReturnFrame kont.Frame  = kont.ReturnFrame{}
	exprCommit      kont.Erased = Commit{}
	exprRequestUndo kont.Erased = RequestUndo{}
	exprCursor      kont.Erased = Cursor{}
)

// identityResume is the identity resume function for EffectFrame construction.
func identityResume(v kont.Erased) kont.Erased { return v }

// exprThen suspends on op, discards its result and continues with next.
func exprThen[B any](op kont.Erased, next kont.Expr[B]) kont.Expr[B] {
	tf := kont.AcquireThenFrame()
	tf.Second = kont.Expr[kont.Erased]{Value: kont.Erased(next.Value), Frame: next.Frame}
	tf.Next = exprReturnFrame
	ef := kont.AcquireEffectFrame()
	ef.Operation = op
	ef.Resume = identityResume
	ef.Next = tf
	return kont.ExprSuspend[B](ef)
}

// ExprRegisterThen registers e and then continues with next.
// Fuses ExprPerform(Register{Event: e}) + ExprThen.
func ExprRegisterThen[B any](e Event, next kont.Expr[B]) kont.Expr[B] {
	return exprThen(Register{Event: e}, next)
}

// ExprReserveThen reserves e and then continues with next.
// Fuses ExprPerform(Reserve{Event: e}) + ExprThen.
func ExprReserveThen[B any](e Event, next kont.Expr[B]) kont.Expr[B] {
	return exprThen(Reserve{Event: e}, next)
}

// ExprCommitThen requests a reservation commit and then continues with next.
// Fuses ExprPerform(Commit{}) + ExprThen.
func ExprCommitThen[B any](next kont.Expr[B]) kont.Expr[B] {
	return exprThen(exprCommit, next)
}

// ExprRequestUndoThen requests an undo and then continues with next.
// Fuses ExprPerform(RequestUndo{}) + ExprThen.
func ExprRequestUndoThen[B any](next kont.Expr[B]) kont.Expr[B] {
	return exprThen(exprRequestUndo, next)
}

func cursorBindUnwind[B any](data, _, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	f := data.(func(uint32) kont.Expr[B])
	result := f(current.(uint32))
	return kont.Erased(result.Value), result.Frame
}

// ExprCursorBind reads the cursor and passes it to f.
// Fuses ExprPerform(Cursor{}) + ExprBind.
func ExprCursorBind[B any](f func(uint32) kont.Expr[B]) kont.Expr[B] {
	bf := kont.AcquireUnwindFrame()
	bf.Data1 = f
	bf.Unwind = cursorBindUnwind[B]
	ef := kont.AcquireEffectFrame()
	ef.Operation = exprCursor
	ef.Resume = identityResume
	ef.Next = bf
	return kont.ExprSuspend[B](ef)
}
