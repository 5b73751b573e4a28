package graph_test

import (
	"testing"

	"github.com/gocrud/inject/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderDependencyFirst(t *testing.T) {
	b := graph.NewBuilder()
	p := graph.Service[*pair](b, "Pair", graph.Closure(newPair), graph.Args(graph.Name("Counter"), graph.Name("BASE")))
	c := graph.Service[*counter](b, "Counter", graph.Default())
	base := graph.Const(b, "BASE", 10)

	g, err := b.Build()
	require.NoError(t, err)

	order, err := g.Order()
	require.NoError(t, err)
	require.Len(t, order, 3)

	pos := make(map[graph.NodeID]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	assert.Less(t, pos[c.ID()], pos[p.ID()])
	assert.Less(t, pos[base.ID()], pos[p.ID()])
}

func TestOrderReportsCycle(t *testing.T) {
	type a struct{}
	type bb struct{}
	type c struct{}

	b := graph.NewBuilder()
	graph.Service[*a](b, "A", graph.Closure(func(*bb) *a { return nil }), graph.Args(graph.Name("B")))
	graph.Service[*bb](b, "B", graph.Closure(func(*c) *bb { return nil }), graph.Args(graph.Name("C")))
	graph.Service[*c](b, "C", graph.Closure(func(*a) *c { return nil }), graph.Args(graph.Name("A")))

	// 环不是构建错误
	g, err := b.Build()
	require.NoError(t, err)

	_, err = g.Order()
	var cycle *graph.CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"A", "B", "C", "A"}, cycle.Path)
	assert.Contains(t, err.Error(), "A -> B -> C -> A")
}

func TestOrderSelfCycle(t *testing.T) {
	type loop struct{}

	b := graph.NewBuilder()
	graph.Const(b, "X", 1)
	graph.Service[*loop](b, "Self", graph.Closure(func(*loop) *loop { return nil }), graph.Args(graph.Name("Self")))

	g, err := b.Build()
	require.NoError(t, err)

	_, err = g.Order()
	var cycle *graph.CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"Self", "Self"}, cycle.Path)
}
