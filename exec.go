// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package undo

import (
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// Exec runs a Cont-world recording protocol on c to completion.
// When a signal cannot be raised because the inbox is full, Exec ticks c
// to drain it and retries. Does not spawn goroutines.
func Exec[R any](c *Coordinator, protocol kont.Eff[R]) (R, error) {
	return ExecExpr(c, kont.Reify(protocol))
}

// ExecExpr runs an Expr-world recording protocol on c to completion.
// Behaves like Exec on backpressure.
func ExecExpr[R any](c *Coordinator, protocol kont.Expr[R]) (R, error) {
	result, susp := Step[R](protocol)
	for susp != nil {
		var err error
		result, susp, err = Advance(c, susp)
		if err == nil {
			continue
		}
		if iox.IsWouldBlock(err) {
			_, err = c.Tick()
		}
		if err != nil {
			susp.Discard()
			var zero R
			return zero, err
		}
	}
	return result, nil
}
