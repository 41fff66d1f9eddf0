// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package undo

// Dispatcher services a RequestingUndo tick.
//
// A dispatcher looks up the entry stamped with the cursor, replays it and
// calls ctx.Post if it did. Finding nothing is normal: the tick completes
// without touching the cursor.
type Dispatcher interface {
	Dispatch(ctx *Context)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx *Context)

// Dispatch calls f(ctx).
func (f DispatcherFunc) Dispatch(ctx *Context) {
	f(ctx)
}

// Replay is the default dispatcher: pop the latest entry and call its
// Replay method.
var Replay Dispatcher = DispatcherFunc(replay)

func replay(ctx *Context) {
	e, ok := ctx.PopLatest()
	if !ok {
		return
	}
	e.Replay()
	ctx.Post()
}

// Dispatchers runs ds in order within the same tick. Each sees the same
// cursor; Posted is shared, so any of them posting decrements the cursor once.
func Dispatchers(ds ...Dispatcher) Dispatcher {
	return DispatcherFunc(func(ctx *Context) {
		for _, d := range ds {
			d.Dispatch(ctx)
		}
	})
}

// Context is the dispatcher's view of the coordinator during a
// RequestingUndo tick. It is only valid inside Dispatch.
type Context struct {
	c *Coordinator
}

// Cursor returns the cursor value entries are matched against.
func (ctx *Context) Cursor() uint32 {
	return ctx.c.cursor.Value()
}

// PopLatest removes and returns the entry stamped with the cursor.
func (ctx *Context) PopLatest() (Event, bool) {
	return ctx.c.stack.PopIfHasLatest(&ctx.c.cursor)
}

// Post records that an entry was replayed this tick.
// The cursor is decremented once when the tick finalizes.
func (ctx *Context) Post() {
	ctx.c.posted = true
}

// Posted reports whether Post was called this tick.
func (ctx *Context) Posted() bool {
	return ctx.c.posted
}
