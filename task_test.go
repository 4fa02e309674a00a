package taskflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/telemetry"
)

func newTestTask(g *Graph, name string) *Task {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.register(name, "", func(inputs ...any) (any, error) { return nil, nil })
}

func TestChain_WiresCompleteBipartiteEdges(t *testing.T) {
	g := newGraph(telemetry.Discard, nil, "run")
	a := newTestTask(g, "a")
	b := newTestTask(g, "b")

	ret := Chain(a, b)

	assert.Same(t, b, ret)
	require.Len(t, b.inputs, 1)
	assert.Same(t, a, b.inputs[0])
	require.Len(t, a.outputs, 1)
	assert.Same(t, b, a.outputs[0])
}

func TestBundle_UnionsMembersWithoutEditingEdges(t *testing.T) {
	g := newGraph(telemetry.Discard, nil, "run")
	a := newTestTask(g, "a")
	b := newTestTask(g, "b")

	grp := Bundle(a, b)

	assert.Equal(t, []*Task{a, b}, grp.members())
	assert.Empty(t, a.inputs)
	assert.Empty(t, a.outputs)
	assert.Empty(t, b.inputs)
	assert.Empty(t, b.outputs)
}

func TestChain_DiamondWiresFanOutAndFanIn(t *testing.T) {
	g := newGraph(telemetry.Discard, nil, "run")
	a := newTestTask(g, "a")
	left := newTestTask(g, "left")
	right := newTestTask(g, "right")
	d := newTestTask(g, "d")

	grp := Bundle(left, right)
	Chain(a, grp)
	Chain(grp, d)

	require.Len(t, left.inputs, 1)
	require.Len(t, right.inputs, 1)
	assert.Same(t, a, left.inputs[0])
	assert.Same(t, a, right.inputs[0])

	require.Len(t, a.outputs, 2)
	require.Len(t, d.inputs, 2)
	assert.Same(t, left, d.inputs[0])
	assert.Same(t, right, d.inputs[1])
}

func TestDefinitionHash_StampedAtRegistrationAndStable(t *testing.T) {
	g := newGraph(telemetry.Discard, nil, "run")
	a := newTestTask(g, "a")

	require.NotEmpty(t, a.DefinitionHash())
	assert.Equal(t, computeDefinitionHash(a.Name(), "", a.ID()), a.DefinitionHash())
}

func TestDefinitionHash_DiffersByCreationOrderEvenWithSameNameAndCkpt(t *testing.T) {
	g := newGraph(telemetry.Discard, nil, "run")
	first := newTestTask(g, "dup")
	second := newTestTask(g, "dup")

	assert.NotEqual(t, first.DefinitionHash(), second.DefinitionHash())
}

func TestMustTransition_AllowsDocumentedPath(t *testing.T) {
	g := newGraph(telemetry.Discard, nil, "run")
	a := newTestTask(g, "a")

	assert.NotPanics(t, func() { mustTransition(a, Running) })
	assert.Equal(t, Running, a.state)
	assert.NotPanics(t, func() { mustTransition(a, Done) })
	assert.Equal(t, Done, a.state)
}

func TestMustTransition_PanicsOnIllegalTransition(t *testing.T) {
	g := newGraph(telemetry.Discard, nil, "run")
	a := newTestTask(g, "a")

	assert.Panics(t, func() { mustTransition(a, Done) })
}
