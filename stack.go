// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package undo

import "slices"

// Entry is an undo payload stamped with the cursor value it was pushed at.
type Entry struct {
	Version uint32
	Event   Event
}

// Stack holds entries in arrival order.
// Lookup is by version equality against the cursor, not by position.
// At most one live entry per version is the pusher's contract.
type Stack struct {
	entries []Entry
}

// Push appends e.
func (s *Stack) Push(e Entry) {
	s.entries = append(s.entries, e)
}

// PopIfHasLatest removes and returns the first entry stamped with the
// cursor's current value. The remaining entries keep their relative order.
// A miss returns (nil, false) and leaves the stack untouched.
func (s *Stack) PopIfHasLatest(cursor *Counter) (Event, bool) {
	v := cursor.Value()
	i := slices.IndexFunc(s.entries, func(e Entry) bool { return e.Version == v })
	if i < 0 {
		return nil, false
	}
	e := s.entries[i].Event
	s.entries = slices.Delete(s.entries, i, i+1)
	return e, true
}

// Len returns the number of live entries.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Versions returns the stamped versions in arrival order.
func (s *Stack) Versions() []uint32 {
	vs := make([]uint32, len(s.entries))
	for i, e := range s.entries {
		vs[i] = e.Version
	}
	return vs
}
