package taskflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"taskflow/internal/checkpoint"
	"taskflow/internal/telemetry"
	"taskflow/internal/trace"
)

// Graph is one builder evaluation's worth of state: the task registry, a
// thread (worker) registry, and the single mutex/condition-variable pair
// that coordinates the run loop with its workers.
//
// Every nested RunGraph invocation gets its own Graph, with its own
// mutex/cond/registry — there is no sharing of coordination state across
// a parent and a graph it spawns from within a task body.
type Graph struct {
	mu   sync.Mutex
	cond *sync.Cond

	nextID int
	tasks  map[int]*Task // registry: id -> Task

	nextThreadID int
	threads      map[int]struct{} // worker id -> presence

	firstErr error

	sink    telemetry.Sink
	metrics *telemetry.Metrics
	runID   string
	rec     *trace.Recorder
}

func newGraph(sink telemetry.Sink, metrics *telemetry.Metrics, runID string) *Graph {
	g := &Graph{
		tasks:   make(map[int]*Task),
		threads: make(map[int]struct{}),
		sink:    sink,
		metrics: metrics,
		runID:   runID,
		rec:     trace.NewRecorder(),
	}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// register inserts a freshly constructed Pending task into the registry
// under the next id and signals cond, so a scheduler already running
// (nested creation from within a running task's body) reconsiders the
// registry on its next iteration. Must be called with g.mu held.
func (g *Graph) register(name string, ckpt string, body Body) *Task {
	id := g.nextID
	g.nextID++

	t := &Task{
		id:    id,
		name:  name,
		body:  body,
		ckpt:  ckpt,
		g:     g,
		state: Pending,
	}
	if t.name == "" {
		t.name = fmt.Sprintf("%d", id)
	}
	t.defHash = computeDefinitionHash(t.name, t.ckpt, t.id)

	g.tasks[id] = t
	g.cond.Broadcast()
	return t
}

// Trace returns the canonical execution trace recorded so far.
func (g *Graph) Trace() trace.ExecutionTrace {
	return g.rec.Trace(g.runID)
}

func (g *Graph) sortedIDs() []int {
	ids := make([]int, 0, len(g.tasks))
	for id := range g.tasks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func allInputsSettled(t *Task) bool {
	for _, in := range t.inputs {
		if in.state != Done && in.state != Skipped {
			return false
		}
	}
	return true
}

// runLoop is the scheduler: dispatch every Pending task whose inputs are
// all settled, wait on the condition variable between dispatch passes,
// and on first failure drain outstanding workers before returning it.
func (g *Graph) runLoop(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for {
		for _, id := range g.sortedIDs() {
			t := g.tasks[id]
			if t.state != Pending || !allInputsSettled(t) {
				continue
			}

			mustTransition(t, Running)
			g.sink.Line(fmt.Sprintf("DR: start %s", t.name),
				telemetry.String("task", t.name),
				telemetry.String("definition_hash", t.defHash))
			g.metrics.Dispatched.Inc()
			g.rec.Record(trace.TraceEvent{Kind: trace.EventTaskDispatched, TaskID: t.name})

			threadID := g.nextThreadID
			g.nextThreadID++
			g.threads[threadID] = struct{}{}

			args := snapshotInputs(t)
			go g.runWorker(ctx, threadID, t, args)
		}

		if g.firstErr != nil {
			for len(g.threads) > 0 {
				g.cond.Wait()
			}
			return g.firstErr
		}

		if len(g.threads) == 0 {
			return nil
		}

		g.cond.Wait()
	}
}

// snapshotInputs reads each input's result while the mutex is held, safe
// because every input is Done/Skipped (its result field is no longer
// mutated) by the time its dependent is dispatched. Must be called with
// g.mu held.
func snapshotInputs(t *Task) []any {
	args := make([]any, len(t.inputs))
	for i, in := range t.inputs {
		args[i] = in.result
	}
	return args
}

// runWorker is the worker contract: run the body with the mutex
// released, then re-acquire it to publish the result (success) or the
// graph's first failure (failure), and deregister.
func (g *Graph) runWorker(ctx context.Context, threadID int, t *Task, args []any) {
	ctx, span := telemetry.StartTask(ctx, t.name, t.id, t.defHash)

	result, err := t.body(args...)

	g.mu.Lock()
	defer g.mu.Unlock()

	if err != nil {
		telemetry.EndErr(span, err)
		g.metrics.Failed.Inc()
		g.rec.Record(trace.TraceEvent{Kind: trace.EventTaskFailed, TaskID: t.name})
		if g.firstErr == nil {
			// Propagate an already-typed EngineError (e.g. ErrUsage/ErrExec
			// from a CreateCmd body) verbatim; only wrap genuinely untyped
			// user-body errors as ErrBody.
			var ee *EngineError
			if errors.As(err, &ee) {
				g.firstErr = ee
			} else {
				g.firstErr = bodyErr(t.name, err)
			}
		}
		delete(g.threads, threadID)
		g.cond.Broadcast()
		return
	}

	telemetry.EndOK(span)
	g.metrics.Completed.Inc()
	g.rec.Record(trace.TraceEvent{Kind: trace.EventTaskCompleted, TaskID: t.name})

	t.result = result
	mustTransition(t, Done)

	if t.ckpt != "" {
		if cerr := checkpoint.Store(t.ckpt, result); cerr != nil {
			if g.firstErr == nil {
				g.firstErr = checkpointErr(t.ckpt, cerr)
			}
		}
	}

	delete(g.threads, threadID)
	g.cond.Broadcast()
	_ = ctx // threaded through for future cancellation hooks; unused today.
}
