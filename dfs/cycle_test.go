package dfs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/fxgraph/dfs"
)

// TestDetectCycles_NilGraph verifies DetectCycles handles nil input without error.
func TestDetectCycles_NilGraph(t *testing.T) {
	has, cycles, err := dfs.DetectCycles(nil)
	assert.NoError(t, err)
	assert.False(t, has)
	assert.Nil(t, cycles)
}

// TestDetectCycles_NoCycle ensures no cycles in a small DAG.
func TestDetectCycles_NoCycle(t *testing.T) {
	g := dfs.Adjacency{}
	// A -> B -> C -> G
	//      |
	//      D -> E -> F
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	g.AddEdge("B", "D")
	g.AddEdge("C", "G")
	g.AddEdge("D", "E")
	g.AddEdge("E", "F")

	has, cycles, err := dfs.DetectCycles(g)
	assert.NoError(t, err)
	assert.False(t, has)
	assert.Empty(t, cycles)
}

func TestDetectCycles_SelfLoop(t *testing.T) {
	g := dfs.Adjacency{}
	g.AddEdge("A", "A")

	has, cycles, err := dfs.DetectCycles(g)
	assert.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, [][]string{{"A", "A"}}, cycles)
}

// TestDetectCycles_Canonical covers rotation normalization of cycles of several lengths.
func TestDetectCycles_Canonical(t *testing.T) {
	cases := []struct {
		name  string
		edges [][2]string
		want  [][]string
	}{
		{"two", [][2]string{{"A", "B"}, {"B", "A"}}, [][]string{{"A", "B", "A"}}},
		{"three", [][2]string{{"B", "C"}, {"C", "A"}, {"A", "B"}}, [][]string{{"A", "B", "C", "A"}}},
		{"tail", [][2]string{{"V", "W"}, {"W", "X"}, {"X", "Y"}, {"Y", "Z"}, {"Z", "W"}}, [][]string{{"W", "X", "Y", "Z", "W"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := dfs.Adjacency{}
			for _, e := range tc.edges {
				g.AddEdge(e[0], e[1])
			}
			has, cycles, err := dfs.DetectCycles(g)
			assert.NoError(t, err)
			assert.True(t, has)
			assert.Equal(t, tc.want, cycles)
		})
	}
}

// TestDetectCycles_Disjoint covers two distinct cycles in the same graph.
func TestDetectCycles_Disjoint(t *testing.T) {
	g := dfs.Adjacency{}
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	g.AddEdge("C", "A")
	g.AddEdge("W", "X")
	g.AddEdge("X", "W")

	has, cycles, err := dfs.DetectCycles(g)
	assert.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, [][]string{{"A", "B", "C", "A"}, {"W", "X", "W"}}, cycles)
}

func TestMinimalRotation(t *testing.T) {
	in := []string{"c", "a", "b"}
	assert.Equal(t, []string{"a", "b", "c"}, dfs.MinimalRotation(in))
	assert.Equal(t, []string{"c", "a", "b"}, in, "input must not be modified")
	assert.Empty(t, dfs.MinimalRotation(nil))
}
