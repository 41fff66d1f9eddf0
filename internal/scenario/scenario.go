// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package scenario plays scripted tick schedules against an undo coordinator.
//
// A scenario is a Lua script that builds a Scenario value and returns it:
//
//	local s = Scenario.new("reservation priority")
//	s:register("insert")
//	s:request_undo()
//	s:tick()
//	s:expect({cursor = 0, replayed = {"insert"}})
//	return s
//
// Loading records steps; Run executes them in order against a fresh
// coordinator, acting as the host tick loop.
package scenario

// Kind names a scenario step.
type Kind string

const (
	KindRegister            Kind = "register"
	KindReserve             Kind = "reserve"
	KindReserveAmount       Kind = "reserve_amount"
	KindCommit              Kind = "commit"
	KindCommitFromScheduler Kind = "commit_from_scheduler"
	KindRequestUndo         Kind = "request_undo"
	KindTick                Kind = "tick"
	KindExpect              Kind = "expect"
)

// Scenario is an ordered list of steps.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one recorded action with its script arguments.
type Step struct {
	Kind Kind
	Args map[string]any
}

func (s *Scenario) append(kind Kind, args map[string]any) {
	if args == nil {
		args = map[string]any{}
	}
	s.Steps = append(s.Steps, Step{Kind: kind, Args: args})
}
