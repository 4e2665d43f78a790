package dfs_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/fxgraph/dfs"
)

// buildChain creates a directed chain graph of length n: 0→1→2→…→n-1
func buildChain(n int) dfs.Adjacency {
	g := dfs.Adjacency{}
	g.AddVertex("N0")
	for i := 0; i < n-1; i++ {
		g.AddEdge("N"+strconv.Itoa(i), "N"+strconv.Itoa(i+1))
	}

	return g
}

func TestDFS_NilGraph(t *testing.T) {
	res, err := dfs.DFS(nil, "A")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, dfs.ErrGraphNil)
}

func TestDFS_StartNotFound(t *testing.T) {
	res, err := dfs.DFS(dfs.Adjacency{}, "X")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, dfs.ErrStartVertexNotFound)
}

func TestDFS_SelfLoop(t *testing.T) {
	g := dfs.Adjacency{}
	g.AddEdge("A", "A")

	res, err := dfs.DFS(g, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, res.Order)
	assert.True(t, res.Visited["A"])
}

func TestDFS_ChainAndDepthParent(t *testing.T) {
	g := dfs.Adjacency{}
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")

	res, err := dfs.DFS(g, "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, res.Order)
	assert.Equal(t, "B", res.Parent["C"])
	assert.Equal(t, 2, res.Depth["C"])
	_, hasParent := res.Parent["A"]
	assert.False(t, hasParent, "start vertex should have no parent")
}

func TestDFS_FilterEdge(t *testing.T) {
	g := dfs.Adjacency{}
	g.AddEdge("A", "B")
	g.AddEdge("A", "C")

	res, err := dfs.DFS(g, "A", dfs.WithFilterEdge(func(_, to string) bool { return to != "B" }))
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, res.Order)
	assert.Equal(t, 1, res.SkippedEdges)
}

func TestDFS_HookErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := dfs.DFS(buildChain(3), "N0", dfs.WithOnVisit(func(id string) error {
		if id == "N1" {
			return boom
		}

		return nil
	}))
	assert.ErrorIs(t, err, boom)
}

func TestReachable(t *testing.T) {
	g := dfs.Adjacency{}
	g.AddEdge("P", "Q")
	g.AddEdge("P", "R")
	g.AddEdge("R", "Q")

	ok, err := dfs.Reachable(g, "P", "Q", nil)
	require.NoError(t, err)
	assert.True(t, ok)

	// ignoring the direct edge, Q is still reachable through R
	ok, err = dfs.Reachable(g, "P", "Q", func(from, to string) bool { return !(from == "P" && to == "Q") })
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = dfs.Reachable(g, "Q", "P", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
