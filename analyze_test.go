package taskflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/checkpoint"
	"taskflow/internal/telemetry"
)

func TestAnalyze_DetectsDirectCycle(t *testing.T) {
	g := newGraph(telemetry.Discard, telemetry.NewMetrics(), "run")
	a := newTestTask(g, "a")
	b := newTestTask(g, "b")
	Chain(a, b)
	Chain(b, a)

	err := analyze(g)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestAnalyze_EmptyRegistryIsNotACycle(t *testing.T) {
	g := newGraph(telemetry.Discard, telemetry.NewMetrics(), "run")
	require.NoError(t, analyze(g))
}

func TestAnalyze_PrunesUpstreamOfCheckpointedGoal(t *testing.T) {
	dir := t.TempDir()
	ckpt := filepath.Join(dir, "d.ckpt")
	require.NoError(t, checkpoint.Store(ckpt, "cached-result"))

	g := newGraph(telemetry.Discard, telemetry.NewMetrics(), "run")
	a := newTestTask(g, "a")
	b := newTestTask(g, "b")
	g.mu.Lock()
	d := g.register("d", ckpt, func(inputs ...any) (any, error) { return nil, nil })
	g.mu.Unlock()
	Chain(a, b)
	Chain(b, d)

	require.NoError(t, analyze(g))

	// d survives (it's the sole goal) as Skipped; a and b are pruned
	// away entirely since they're unreachable except through d.
	assert.Len(t, g.tasks, 1)
	assert.Equal(t, Skipped, d.state)
	result, ok := d.Result()
	assert.True(t, ok)
	assert.Equal(t, "cached-result", result)
}

func TestAnalyze_NonGoalRegistryIsACycle(t *testing.T) {
	// Every task has a downstream (a->b->a, plus c->a), so there is no
	// goal at all even though some edges don't close a literal cycle
	// through every node.
	g := newGraph(telemetry.Discard, telemetry.NewMetrics(), "run")
	a := newTestTask(g, "a")
	b := newTestTask(g, "b")
	c := newTestTask(g, "c")
	Chain(a, b)
	Chain(b, a)
	Chain(c, a)

	err := analyze(g)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestAnalyze_UndecodableCheckpointIsFatal(t *testing.T) {
	dir := t.TempDir()
	ckpt := filepath.Join(dir, "bad.ckpt")
	require.NoError(t, os.WriteFile(ckpt, []byte("not: [valid yaml"), 0o644))

	g := newGraph(telemetry.Discard, telemetry.NewMetrics(), "run")
	g.mu.Lock()
	g.register("goal", ckpt, func(inputs ...any) (any, error) { return nil, nil })
	g.mu.Unlock()

	err := analyze(g)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCheckpoint)
}
