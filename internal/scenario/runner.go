// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"code.hybscloud.com/undo"
)

const tracerName = "code.hybscloud.com/undo/internal/scenario"

// AssertionMode selects how expect steps report mismatches.
type AssertionMode int

const (
	// AssertionStrict fails the run at the first mismatch.
	AssertionStrict AssertionMode = iota
	// AssertionLogOnly logs mismatches and keeps going.
	AssertionLogOnly
)

// ErrExpectation is wrapped by every strict-mode mismatch.
var ErrExpectation = errors.New("scenario expectation failed")

// Options configures Run. The zero value runs strict, silent and untraced
// (global no-op tracer).
type Options struct {
	SignalCapacity int
	Assertions     AssertionMode
	Verbose        bool
	Logger         *log.Logger
	Tracer         trace.Tracer
}

// Report summarises a finished run.
type Report struct {
	Name       string
	Ticks      int
	Cursor     uint32
	Replayed   []string
	Mismatches int
}

// runner is the host loop for one scenario.
type runner struct {
	opts     Options
	logger   *log.Logger
	tracer   trace.Tracer
	c        *undo.Coordinator
	last     undo.Frame
	report   Report
	replayed []string
}

// Run plays sc against a fresh coordinator.
func Run(ctx context.Context, sc *Scenario, opts Options) (Report, error) {
	if sc == nil {
		return Report{}, errors.New("scenario is required")
	}
	r := &runner{
		opts:   opts,
		logger: opts.Logger,
		tracer: opts.Tracer,
		c:      undo.New(undo.Config{SignalCapacity: opts.SignalCapacity}),
		report: Report{Name: sc.Name},
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard, "", 0)
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}

	ctx, span := r.tracer.Start(ctx, "undo.scenario", trace.WithAttributes(
		attribute.String("scenario.name", sc.Name),
		attribute.Int("scenario.steps", len(sc.Steps)),
	))
	defer span.End()

	err := r.run(ctx, sc)
	r.report.Cursor = r.c.Cursor().Value()
	r.report.Replayed = r.replayed
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return r.report, err
}

func (r *runner) run(ctx context.Context, sc *Scenario) error {
	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.step(ctx, step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Kind, err)
		}
	}
	return nil
}

func (r *runner) step(ctx context.Context, step Step) error {
	switch step.Kind {
	case KindRegister:
		v := r.c.Register(r.event(stringArg(step.Args, "label")))
		r.verbosef("register %q stamped %d", step.Args["label"], v)
	case KindReserve:
		v := r.c.Reserve(r.event(stringArg(step.Args, "label")))
		r.verbosef("reserve %q stamped %d", step.Args["label"], v)
	case KindReserveAmount:
		return r.c.Reservations().AddN(uint32(intArg(step.Args, "amount", 0)))
	case KindCommit:
		return r.c.RequestCommit()
	case KindCommitFromScheduler:
		return r.c.RequestCommitFromScheduler()
	case KindRequestUndo:
		return r.c.RequestUndo()
	case KindTick:
		for range intArg(step.Args, "count", 1) {
			if err := r.tick(ctx); err != nil {
				return err
			}
		}
	case KindExpect:
		return r.expect(step.Args)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
	return nil
}

// event returns a payload that appends label to the replay journal.
func (r *runner) event(label string) undo.Event {
	return undo.Func(func() {
		r.replayed = append(r.replayed, label)
	})
}

func (r *runner) tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, span := r.tracer.Start(ctx, "undo.tick")
	defer span.End()

	f, err := r.c.Tick()
	r.last = f
	r.report.Ticks++
	span.SetAttributes(
		attribute.Int64("undo.tick", int64(f.Seq)),
		attribute.String("undo.phase", f.Phase.String()),
		attribute.Bool("undo.posted", f.Posted),
		attribute.Bool("undo.deferred", f.Deferred),
		attribute.Int64("undo.cursor", int64(r.c.Cursor().Value())),
		attribute.Int("undo.stack", r.c.Stack().Len()),
	)
	r.verbosef("tick %d phase=%s posted=%t deferred=%t cursor=%d", f.Seq, f.Phase, f.Posted, f.Deferred, r.c.Cursor().Value())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *runner) expect(want map[string]any) error {
	var mismatches []string
	check := func(key string, got, want any) {
		if got != want {
			mismatches = append(mismatches, fmt.Sprintf("%s = %v, want %v", key, got, want))
		}
	}
	for _, key := range sortedKeys(want) {
		switch key {
		case "cursor":
			check(key, int(r.c.Cursor().Value()), want[key])
		case "reservations":
			check(key, int(r.c.Reservations().Value()), want[key])
		case "stack":
			check(key, r.c.Stack().Len(), want[key])
		case "phase":
			check(key, r.last.Phase.String(), want[key])
		case "posted":
			check(key, r.last.Posted, want[key])
		case "deferred":
			check(key, r.last.Deferred, want[key])
		case "replayed":
			wantList := stringList(want[key])
			if !slices.Equal(r.replayed, wantList) {
				mismatches = append(mismatches, fmt.Sprintf("replayed = %v, want %v", r.replayed, wantList))
			}
		default:
			return fmt.Errorf("unknown expectation %q", key)
		}
	}
	if len(mismatches) == 0 {
		return nil
	}

	r.report.Mismatches += len(mismatches)
	msg := strings.Join(mismatches, "; ")
	if r.opts.Assertions == AssertionLogOnly {
		r.logger.Printf("%s: tick %d: %s", r.report.Name, r.last.Seq, msg)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrExpectation, msg)
}

func (r *runner) verbosef(format string, args ...any) {
	if r.opts.Verbose {
		r.logger.Printf("%s: %s", r.report.Name, fmt.Sprintf(format, args...))
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func intArg(args map[string]any, key string, def int) int {
	if n, ok := args[key].(int); ok {
		return n
	}
	return def
}

func stringList(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprint(item))
	}
	return out
}
