// Package dfs defines types and options for depth-first search traversal:
// the Digraph view, a pre-order hook, edge filtering and basic diagnostics.
package dfs

import (
	"sort"

	"github.com/pkg/errors"
)

// VertexState represents the DFS visitation state of a vertex.
const (
	White = iota // White: the vertex has not been visited yet.
	Gray         // Gray: the vertex is in the recursion stack (visiting).
	Black        // Black: the vertex and all its descendants have been fully explored.
)

var (
	// ErrGraphNil is returned when a nil Digraph is passed to DFS,
	// TopologicalSort, or DetectCycles.
	ErrGraphNil = errors.New("dfs: graph is nil")

	// ErrStartVertexNotFound indicates that the specified start vertex ID
	// does not exist in the graph.
	ErrStartVertexNotFound = errors.New("dfs: start vertex not found")

	// ErrCycleDetected indicates that a cycle was encountered during
	// TopologicalSort.
	ErrCycleDetected = errors.New("dfs: cycle detected")

	// ErrNeighborFetch indicates a failure to retrieve successors from the graph.
	ErrNeighborFetch = errors.New("dfs: failed to fetch neighbors")
)

// Digraph is the read-only view of a directed graph the algorithms need.
// Vertices must be returned in a deterministic order; the algorithms visit
// roots and successors in the order given.
type Digraph interface {
	// Vertices lists every vertex ID.
	Vertices() []string

	// Successors lists the heads of the edges leaving id.
	Successors(id string) ([]string, error)
}

// Adjacency is a map-backed Digraph. Vertices are reported sorted; a vertex that
// only appears as a successor is still a vertex.
type Adjacency map[string][]string

// AddEdge appends the edge from→to, creating both vertices if needed.
func (a Adjacency) AddEdge(from, to string) {
	a[from] = append(a[from], to)
	if _, ok := a[to]; !ok {
		a[to] = nil
	}
}

// AddVertex registers id without edges. It is a no-op if id exists.
func (a Adjacency) AddVertex(id string) {
	if _, ok := a[id]; !ok {
		a[id] = nil
	}
}

// Vertices implements Digraph.
func (a Adjacency) Vertices() []string {
	seen := make(map[string]struct{}, len(a))
	for v, succ := range a {
		seen[v] = struct{}{}
		for _, s := range succ {
			seen[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)

	return out
}

// Successors implements Digraph. Unknown vertices have no successors.
func (a Adjacency) Successors(id string) ([]string, error) {
	return a[id], nil
}

// hasVertex reports whether id is a vertex of g.
func hasVertex(g Digraph, id string) bool {
	for _, v := range g.Vertices() {
		if v == id {
			return true
		}
	}

	return false
}

// Option configures optional behavior of DFS traversal.
// Use with DFS(g, startID, opts...).
type Option func(*DFSOptions)

// DFSOptions holds configurable parameters for DFS traversal.
// Complexity remains O(V+E) when filters and hooks are O(1).
type DFSOptions struct {
	// OnVisit, if non-nil, is invoked immediately upon discovering a vertex (pre-order).
	// Returning an error aborts traversal with that error.
	OnVisit func(id string) error

	// FilterEdge, if non-nil, is called for each edge before recursing.
	// Return true to traverse it, false to skip it.
	FilterEdge func(from, to string) bool
}

// WithOnVisit returns an Option that installs fn as a pre-order hook.
func WithOnVisit(fn func(id string) error) Option {
	return func(o *DFSOptions) {
		o.OnVisit = fn
	}
}

// WithFilterEdge returns an Option that filters edges.
// If fn(from, to) == false, that edge is skipped and counted in SkippedEdges.
func WithFilterEdge(fn func(from, to string) bool) Option {
	return func(o *DFSOptions) {
		o.FilterEdge = fn
	}
}

// DFSResult captures the outcome of a depth-first traversal.
type DFSResult struct {
	// Order records vertices in the sequence they finished (post-order).
	Order []string

	// Depth maps each vertex ID to its distance (#edges) from its tree root.
	Depth map[string]int

	// Parent maps each vertex ID to the vertex it was first discovered from.
	// Tree roots do not appear.
	Parent map[string]string

	// Visited flags which vertices were reached during the traversal.
	Visited map[string]bool

	// SkippedEdges reports how many edges FilterEdge rejected.
	SkippedEdges int
}
