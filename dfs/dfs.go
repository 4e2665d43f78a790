// Package dfs implements single-source depth-first search on a Digraph with a
// pre-order hook, edge filtering and diagnostics.
//
// Complexity:
//
//   - Time:   O(V + E) for traversal, plus overhead of hooks and filters.
//   - Memory: O(V) for recursion stack and metadata maps.
//
// Errors:
//
//   - ErrGraphNil               if g is nil.
//   - ErrStartVertexNotFound    if startID is missing.
//   - any error returned by OnVisit.
package dfs

import (
	"github.com/pkg/errors"
)

// dfsWalker encapsulates state during DFS.
type dfsWalker struct {
	graph Digraph    // underlying graph
	opts  DFSOptions // traversal options
	res   *DFSResult // result collector
}

// DFS performs depth-first search on graph g from startID.
// Returns DFSResult or the error a hook aborted with.
func DFS(g Digraph, startID string, opts ...Option) (*DFSResult, error) {
	// 1. Validate input graph
	if g == nil {
		return nil, ErrGraphNil
	}
	// 2. Apply options
	var dopts DFSOptions
	for _, fn := range opts {
		fn(&dopts)
	}
	// 3. Verify startID
	if !hasVertex(g, startID) {
		return nil, errors.Wrapf(ErrStartVertexNotFound, "%q", startID)
	}
	// 4. Initialize result with capacity hint
	n := len(g.Vertices())
	res := &DFSResult{
		Order:   make([]string, 0, n),
		Depth:   make(map[string]int, n),
		Parent:  make(map[string]string, n),
		Visited: make(map[string]bool, n),
	}
	walker := &dfsWalker{graph: g, opts: dopts, res: res}
	// 5. Traverse
	if err := walker.traverse(startID, 0); err != nil {
		return nil, err
	}

	return res, nil
}

// traverse visits id at the given depth and recurses into admitted successors.
func (w *dfsWalker) traverse(id string, depth int) error {
	// 1. Discover
	w.res.Visited[id] = true
	w.res.Depth[id] = depth
	if w.opts.OnVisit != nil {
		if err := w.opts.OnVisit(id); err != nil {
			return err
		}
	}
	// 2. Recurse
	succ, err := w.graph.Successors(id)
	if err != nil {
		return errors.Wrapf(ErrNeighborFetch, "%q: %v", id, err)
	}
	for _, nb := range succ {
		if w.opts.FilterEdge != nil && !w.opts.FilterEdge(id, nb) {
			w.res.SkippedEdges++
			continue
		}
		if w.res.Visited[nb] {
			continue
		}
		w.res.Parent[nb] = id
		if err = w.traverse(nb, depth+1); err != nil {
			return err
		}
	}
	// 3. Finish
	w.res.Order = append(w.res.Order, id)

	return nil
}

// Reachable reports whether to can be reached from from following edges
// accepted by filter (nil accepts all). A vertex reaches itself.
func Reachable(g Digraph, from, to string, filter func(from, to string) bool) (bool, error) {
	if g == nil {
		return false, ErrGraphNil
	}
	found := errors.New("found")
	opts := []Option{WithOnVisit(func(id string) error {
		if id == to {
			return found
		}

		return nil
	})}
	if filter != nil {
		opts = append(opts, WithFilterEdge(filter))
	}
	_, err := DFS(g, from, opts...)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, found):
		return true, nil
	default:
		return false, err
	}
}
