package dfs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/fxgraph/dfs"
)

// position returns index of v in slice or -1 if not found
func position(order []string, v string) int {
	return dfs.IndexOf(order, v)
}

// TestTopo_NilGraph verifies that passing a nil graph returns ErrGraphNil.
func TestTopo_NilGraph(t *testing.T) {
	order, err := dfs.TopologicalSort(nil)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, dfs.ErrGraphNil)
}

// TestTopo_EmptyGraph covers a graph with no vertices.
func TestTopo_EmptyGraph(t *testing.T) {
	order, err := dfs.TopologicalSort(dfs.Adjacency{})
	assert.NoError(t, err)
	assert.Empty(t, order)
}

// TestTopo_NoEdges checks that isolated vertices are all returned.
func TestTopo_NoEdges(t *testing.T) {
	g := dfs.Adjacency{}
	g.AddVertex("A")
	g.AddVertex("B")
	g.AddVertex("C")

	order, err := dfs.TopologicalSort(g)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, order)
}

// TestTopo_SimpleChain verifies linear chain A→B→C yields [A,B,C].
func TestTopo_SimpleChain(t *testing.T) {
	g := dfs.Adjacency{}
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")

	order, err := dfs.TopologicalSort(g)
	assert.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

// TestTopo_BranchingDAG checks a DAG with A→B and A→C: A must come first.
func TestTopo_BranchingDAG(t *testing.T) {
	g := dfs.Adjacency{}
	g.AddEdge("A", "B")
	g.AddEdge("A", "C")

	order, err := dfs.TopologicalSort(g)
	assert.NoError(t, err)
	assert.Equal(t, "A", order[0])
	assert.ElementsMatch(t, []string{"B", "C"}, order[1:])
}

// TestTopo_Deterministic runs the same sort twice and expects identical output.
func TestTopo_Deterministic(t *testing.T) {
	g := dfs.Adjacency{}
	g.AddEdge("X", "Y")
	g.AddEdge("A", "B")
	g.AddEdge("A", "Y")

	first, err := dfs.TopologicalSort(g)
	require.NoError(t, err)
	second, err := dfs.TopologicalSort(g)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// TestTopo_ComplexDAG builds a DAG of 10 vertices with cross-links and ensures validity.
func TestTopo_ComplexDAG(t *testing.T) {
	g := dfs.Adjacency{}
	edges := [][2]string{
		{"V1", "V3"}, {"V1", "V2"}, {"V2", "V5"}, {"V3", "V5"},
		{"V2", "V4"}, {"V4", "V6"}, {"V5", "V7"}, {"V6", "V8"},
		{"V7", "V9"}, {"V8", "V10"},
	}
	for _, e := range edges {
		g.AddEdge(e[0], e[1])
	}
	order, err := dfs.TopologicalSort(g)
	assert.NoError(t, err)
	assert.Len(t, order, 10)
	for _, e := range edges {
		assert.Less(t,
			position(order, e[0]), position(order, e[1]),
			"edge %s→%s should be respected", e[0], e[1],
		)
	}
}

// TestTopo_Cycle ensures that a cycle returns ErrCycleDetected naming the closing edge.
func TestTopo_Cycle(t *testing.T) {
	g := dfs.Adjacency{}
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	g.AddEdge("C", "A")

	order, err := dfs.TopologicalSort(g)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, dfs.ErrCycleDetected)
	assert.Contains(t, err.Error(), "C -> A")
}
