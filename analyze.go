package taskflow

import (
	"fmt"

	"taskflow/internal/checkpoint"
	"taskflow/internal/telemetry"
	"taskflow/internal/trace"
)

// dfsColor implements the classical three-color DFS for cycle detection.
type dfsColor uint8

const (
	white dfsColor = iota
	gray
	black
)

// analyze identifies goals (tasks with no outputs), detects cycles via
// DFS through inputs, and prunes any subgraph whose terminal task
// already has a loadable checkpoint. It mutates g.tasks in place to the
// survivor set and reports counts via g.sink.
func analyze(g *Graph) error {
	goals := make([]*Task, 0)
	for _, id := range g.sortedIDs() {
		t := g.tasks[id]
		if len(t.outputs) == 0 {
			goals = append(goals, t)
		}
	}
	if len(g.tasks) > 0 && len(goals) == 0 {
		return cycleErr(nil)
	}

	colors := make(map[int]dfsColor, len(g.tasks))
	survivors := make(map[int]*Task, len(g.tasks))
	var stack []*Task
	skipped := 0

	var visit func(t *Task) error
	visit = func(t *Task) error {
		switch colors[t.id] {
		case gray:
			return cycleErr(cyclePath(stack, t))
		case black:
			return nil
		}

		if t.ckpt != "" && checkpoint.Exists(t.ckpt) {
			val, err := checkpoint.Load(t.ckpt)
			if err != nil {
				return checkpointErr(t.ckpt, err)
			}
			t.result = val
			mustTransition(t, Skipped)
			g.sink.Line(fmt.Sprintf("DR: there is a ckpt %s for %s", t.ckpt, t.name),
				telemetry.String("definition_hash", t.defHash))
			g.metrics.Skipped.Inc()
			g.rec.Record(trace.TraceEvent{Kind: trace.EventTaskSkipped, TaskID: t.name, Reason: "checkpoint"})
			skipped++

			colors[t.id] = black
			survivors[t.id] = t
			// Pruning: do not recurse into this task's inputs; its
			// upstream subgraph is unneeded unless reachable from
			// another, non-pruned goal.
			return nil
		}

		colors[t.id] = gray
		survivors[t.id] = t
		stack = append(stack, t)

		for _, in := range t.inputs {
			if err := visit(in); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		colors[t.id] = black
		return nil
	}

	for _, goal := range goals {
		if err := visit(goal); err != nil {
			return err
		}
	}

	g.tasks = survivors
	if skipped > 0 {
		g.sink.Line(fmt.Sprintf("DR: %d tasks were skipped thanks to ckpts", skipped))
	}
	return nil
}

// cyclePath reconstructs a human-readable a -> b -> ... -> a witness from
// the current DFS stack and the gray node just re-encountered.
func cyclePath(stack []*Task, target *Task) []string {
	idx := -1
	for i, s := range stack {
		if s.id == target.id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return []string{target.name}
	}
	names := make([]string, 0, len(stack)-idx+1)
	for _, s := range stack[idx:] {
		names = append(names, s.name)
	}
	names = append(names, target.name)
	return names
}
