// Package dfs provides core algorithms on directed graphs, including
// topological sort.
//
// TopologicalSort computes a linear ordering of vertices such that for
// every directed edge u→v, u appears before v in the ordering.
// If the graph contains a cycle, ErrCycleDetected is returned.
// If successor iteration fails, ErrNeighborFetch is returned.
//
// Complexity:
//
//   - Time:   O(V + E) (each vertex and edge visited once)
//   - Memory: O(V)     (recursion stack and state map)
package dfs

import (
	"github.com/pkg/errors"
)

// topoSorter encapsulates state for a topological sort traversal.
type topoSorter struct {
	graph Digraph        // the graph being sorted
	state map[string]int // visitation state: 0=White,1=Gray,2=Black
	order []string       // recorded post-order sequence
}

// TopologicalSort computes a topological ordering of all vertices in g.
// Among valid orders it returns the one obtained by reversing the DFS post-order
// with roots taken in Vertices() order, so the result is deterministic.
// If g is nil, returns ErrGraphNil.
// If a cycle is detected, returns ErrCycleDetected naming the closing edge.
// If successor lookup fails, returns ErrNeighborFetch.
func TopologicalSort(g Digraph) ([]string, error) {
	// 1. Validate graph
	if g == nil {
		return nil, ErrGraphNil
	}
	// 2. Initialize sorter state
	verts := g.Vertices()
	sorter := &topoSorter{
		graph: g,
		state: make(map[string]int, len(verts)), // all vertices start as White (0)
		order: make([]string, 0, len(verts)),    // capacity hint for post-order
	}
	// 3. Drive DFS from every unvisited vertex
	for _, v := range verts {
		if sorter.state[v] == White {
			if err := sorter.visit(v); err != nil {
				return nil, err
			}
		}
	}
	// 4. Reverse post-order to produce topological order
	for i, j := 0, len(sorter.order)-1; i < j; i, j = i+1, j-1 {
		sorter.order[i], sorter.order[j] = sorter.order[j], sorter.order[i]
	}

	return sorter.order, nil
}

// visit performs a DFS from id, marking states and detecting cycles.
func (t *topoSorter) visit(id string) error {
	// 1. Mark as in-progress (Gray)
	t.state[id] = Gray
	// 2. Retrieve successors
	succ, err := t.graph.Successors(id)
	if err != nil {
		return errors.Wrapf(ErrNeighborFetch, "%q: %v", id, err)
	}
	// 3. Explore each outgoing edge
	for _, nb := range succ {
		switch t.state[nb] {
		case Gray:
			return errors.Wrapf(ErrCycleDetected, "edge %s -> %s", id, nb)
		case White:
			if err = t.visit(nb); err != nil {
				return err
			}
		}
	}
	// 4. Mark as fully explored (Black) and record in post-order
	t.state[id] = Black
	t.order = append(t.order, id)

	return nil
}
