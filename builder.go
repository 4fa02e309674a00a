package taskflow

import (
	"context"

	"taskflow/internal/exec"
)

// Builder is the handle a BuildFunc receives: the two registration
// primitives, CreateTask and CreateCmd. Chain and Bundle are free
// functions (they don't touch the registry), so they aren't methods
// here.
type Builder struct {
	g   *Graph
	ctx context.Context
}

// TaskOption configures optional CreateTask/CreateCmd parameters.
type TaskOption func(*taskOpts)

type taskOpts struct {
	name string
	ckpt string
}

// WithName sets the task's display label. Defaults to the stringified id.
func WithName(name string) TaskOption {
	return func(o *taskOpts) { o.name = name }
}

// WithCheckpoint sets the task's checkpoint path: if the file exists when
// the graph is analyzed, the task is skipped and its result loaded from
// it; otherwise, on success, its result is written there.
func WithCheckpoint(path string) TaskOption {
	return func(o *taskOpts) { o.ckpt = path }
}

func resolveOpts(opts []TaskOption) taskOpts {
	var o taskOpts
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// CreateTask registers a new task running body, thread-safe against a
// scheduler already running (nested creation from a running task's body).
func (b *Builder) CreateTask(body Body, opts ...TaskOption) *Task {
	o := resolveOpts(opts)
	b.g.mu.Lock()
	defer b.g.mu.Unlock()
	return b.g.register(o.name, o.ckpt, body)
}

// CreateCmd registers a convenience task whose body shells out to argv
// via internal/exec: it accepts 0 or 1 inputs (UsageError on more),
// stringifies the input as the subprocess's stdin, and returns captured
// stdout on exit code 0, or ExecError otherwise.
func (b *Builder) CreateCmd(argv []string, opts ...TaskOption) *Task {
	ctx := b.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	body := func(inputs ...any) (any, error) {
		if len(inputs) > 1 {
			return nil, usageErr("cmd task %v accepts at most 1 input, got %d", argv, len(inputs))
		}

		var in any
		if len(inputs) == 1 {
			in = inputs[0]
		}

		out, err := exec.Run(ctx, argv, in)
		if err != nil {
			return nil, execErr(err)
		}
		return out, nil
	}

	return b.CreateTask(body, opts...)
}
