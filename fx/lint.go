// SPDX-License-Identifier: MIT

package fx

import (
	"github.com/pkg/errors"

	"github.com/katalvlaran/fxgraph/dfs"
)

// Lint verifies the IR invariants of g:
//   - every node sits at its recorded program-order index,
//   - every node argument belongs to g and precedes its user,
//   - users is exactly the transpose of args,
//   - the use graph has no cycles.
//
// The first violation is returned wrapped in ErrLint.
func (g *Graph) Lint() error {
	for i, n := range g.nodes {
		// 1. Position and ownership
		if n.index != i || n.graph != g {
			return errors.Wrapf(ErrLint, "node %s: index %d at position %d", n.name, n.index, i)
		}
		for _, a := range n.args {
			if err := g.checkArg(a, i); err != nil {
				return errors.Wrapf(ErrLint, "node %s: %v", n.name, err)
			}
		}
		// 2. args → users
		for _, in := range InputNodes(n) {
			if !containsNode(in.users, n) {
				return errors.Wrapf(ErrLint, "%s uses %s but is not among its users", n.name, in.name)
			}
		}
		// 3. users → args
		for _, u := range n.users {
			if !containsNode(InputNodes(u), n) {
				return errors.Wrapf(ErrLint, "%s lists user %s which does not use it", n.name, u.name)
			}
		}
	}
	// 4. Acyclicity of the use graph
	if _, err := dfs.TopologicalSort(useGraph{g}); err != nil {
		return errors.Wrapf(ErrLint, "%v", err)
	}

	return nil
}

// useGraph exposes g as a dfs.Digraph with edges from each node to its users.
type useGraph struct{ g *Graph }

func (u useGraph) Vertices() []string {
	out := make([]string, len(u.g.nodes))
	for i, n := range u.g.nodes {
		out[i] = n.name
	}

	return out
}

func (u useGraph) Successors(id string) ([]string, error) {
	n, ok := u.g.names[id]
	if !ok {
		return nil, errors.Errorf("fx: no node %q", id)
	}
	out := make([]string, len(n.users))
	for i, user := range n.users {
		out[i] = user.name
	}

	return out, nil
}

func containsNode(list []*Node, n *Node) bool {
	for _, x := range list {
		if x == n {
			return true
		}
	}

	return false
}
