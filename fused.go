// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package undo

import (
	"code.hybscloud.com/kont"
)

// RegisterThen registers e and then continues with next.
// Fuses Perform(Register{Event: e}) + Then.
func RegisterThen[B any](e Event, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Register{Event: e}), next)
}

// RegisterBind registers e and passes its stamped version to f.
// Fuses Perform(Register{Event: e}) + Bind.
func RegisterBind[B any](e Event, f func(uint32) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Register{Event: e}), f)
}

// ReserveThen reserves e and then continues with next.
// Fuses Perform(Reserve{Event: e}) + Then.
func ReserveThen[B any](e Event, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Reserve{Event: e}), next)
}

// CommitThen requests a reservation commit and then continues with next.
// Fuses Perform(Commit{}) + Then.
func CommitThen[B any](next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Commit{}), next)
}

// RequestUndoThen requests an undo and then continues with next.
// Fuses Perform(RequestUndo{}) + Then.
func RequestUndoThen[B any](next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(RequestUndo{}), next)
}

// CursorBind reads the cursor and passes it to f.
// Fuses Perform(Cursor{}) + Bind.
func CursorBind[B any](f func(uint32) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Cursor{}), f)
}
