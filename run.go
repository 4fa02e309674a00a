package taskflow

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/google/uuid"

	"taskflow/internal/telemetry"
	"taskflow/internal/trace"
)

// BuildFunc is a builder script: it receives the registration handle,
// registers tasks and wires them via Chain/Bundle, and returns the
// "results expression" — a Task, a Group, or an arbitrary nested
// structure of slices/maps with Task leaves.
type BuildFunc func(b *Builder) any

type runConfig struct {
	log   io.Writer
	ctx   context.Context
	stats *RunStats
}

// RunStats is the deterministic summary of one RunGraph invocation,
// populated when the caller passes WithStats.
type RunStats struct {
	RunID     string
	TaskCount int
	Trace     trace.ExecutionTrace
}

// WithStats directs RunGraph to populate out with the run's id, final
// task count, and canonical execution trace once the call returns
// (including on error, to the extent tasks were dispatched before the
// failure).
func WithStats(out *RunStats) Option {
	return func(c *runConfig) { c.stats = out }
}

// Option configures a RunGraph invocation.
type Option func(*runConfig)

// WithLog directs the run's log stream to w. Defaults to io.Discard.
func WithLog(w io.Writer) Option {
	return func(c *runConfig) { c.log = w }
}

// WithContext threads ctx through to every CreateCmd body's subprocess
// invocation. Defaults to context.Background(); the engine itself never
// cancels it.
func WithContext(ctx context.Context) Option {
	return func(c *runConfig) { c.ctx = ctx }
}

// RunGraph evaluates build, analyzes the resulting graph, executes it to
// quiescence or first failure, and returns the builder's return
// expression with every Task leaf substituted by its final result.
func RunGraph(build BuildFunc, opts ...Option) (any, error) {
	cfg := runConfig{log: io.Discard, ctx: context.Background()}
	for _, apply := range opts {
		apply(&cfg)
	}

	sink := telemetry.NewSink(cfg.log)
	metrics := telemetry.NewMetrics()
	runID := uuid.NewString()

	g := newGraph(sink, metrics, runID)
	b := &Builder{g: g, ctx: cfg.ctx}

	ret := build(b)

	if cfg.stats != nil {
		*cfg.stats = RunStats{RunID: runID}
	}

	// A builder that registers no tasks returns without error and
	// without the "execute graph" log line.
	if len(g.tasks) == 0 {
		sink.Line("DR: No task in the graph", telemetry.String("run_id", runID))
		return finalize(ret), nil
	}

	if err := analyze(g); err != nil {
		return nil, err
	}

	sink.Line(fmt.Sprintf("DR: execute graph with %d tasks", len(g.tasks)), telemetry.String("run_id", runID))

	ctx, span := telemetry.StartRun(cfg.ctx, runID, len(g.tasks))

	runErr := g.runLoop(ctx)

	if cfg.stats != nil {
		cfg.stats.TaskCount = len(g.tasks)
		cfg.stats.Trace = g.Trace()
	}

	if runErr != nil {
		telemetry.EndErr(span, runErr)
		return nil, runErr
	}
	telemetry.EndOK(span)

	return finalize(ret), nil
}

// substitute walks an arbitrary builder return expression, replacing
// every *Task leaf with its final result. Slices, arrays, and maps are
// walked recursively via reflect so a builder can return any nested
// combination of them; anything else is returned unchanged.
func substitute(v any) any {
	switch val := v.(type) {
	case *Task:
		result, _ := val.Result()
		return result
	case *Group:
		out := make([]any, len(val.items))
		for i, t := range val.items {
			out[i] = substitute(t)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return v
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = substitute(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[any]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().Interface()] = substitute(iter.Value().Interface())
		}
		return out
	default:
		return v
	}
}

// finalize applies substitute and then the top-level unwrap rule: a
// single Task's result is returned directly (substitute already does
// this), and a length-1 sequence is unwrapped to its sole element.
func finalize(v any) any {
	out := substitute(v)
	if seq, ok := out.([]any); ok && len(seq) == 1 {
		return seq[0]
	}
	return out
}
