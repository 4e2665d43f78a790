// SPDX-License-Identifier: MIT
//
// File: graph.go
// Role: Node arena with args↔users bookkeeping.
// Determinism:
//   - Nodes() is program order; Users() is first-use order.
// Invariants:
//   - B ∈ users(A) ⇔ A appears in args(B). Both ends change in one method call.
//   - Every node argument precedes its user in program order.

package fx

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Graph is an append-only arena of nodes in program order.
type Graph struct {
	nodes []*Node
	names map[string]*Node
}

// NodeOption customizes a node at creation time.
type NodeOption func(*nodeConfig)

type nodeConfig struct {
	name string
}

// WithNodeName requests a specific base name; it is made unique if taken.
func WithNodeName(name string) NodeOption {
	return func(c *nodeConfig) { c.name = name }
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{names: make(map[string]*Node)}
}

// Placeholder appends a graph input named name.
func (g *Graph) Placeholder(name string, opts ...NodeOption) (*Node, error) {
	return g.create(OpPlaceholder, name, nil, name, nil, opts)
}

// GetAttr appends a node fetching the owner attribute at path.
func (g *Graph) GetAttr(path string, opts ...NodeOption) (*Node, error) {
	return g.create(OpGetAttr, path, nil, path, nil, opts)
}

// CallFunction appends a call of fn with args.
func (g *Graph) CallFunction(fn *Function, args []any, opts ...NodeOption) (*Node, error) {
	if fn == nil {
		return nil, errors.Wrap(ErrUnknownTarget, "CallFunction: nil function")
	}

	return g.create(OpCallFunction, fn.Name, fn, fn.Name, args, opts)
}

// CallModule appends a call of the owner submodule at path with args.
func (g *Graph) CallModule(path string, args []any, opts ...NodeOption) (*Node, error) {
	return g.create(OpCallModule, path, nil, path, args, opts)
}

// Output appends the output node returning result (a node, literal or list).
func (g *Graph) Output(result any, opts ...NodeOption) (*Node, error) {
	return g.create(OpOutput, "output", nil, "output", []any{result}, opts)
}

// create is the single entry point that allocates a node and links users.
func (g *Graph) create(op Op, base string, fn *Function, target string, args []any, opts []NodeOption) (*Node, error) {
	cfg := nodeConfig{name: base}
	for _, opt := range opts {
		opt(&cfg)
	}
	// 1. Validate arguments before touching the arena
	for _, a := range args {
		if err := g.checkArg(a, len(g.nodes)); err != nil {
			return nil, err
		}
	}
	// 2. Allocate
	n := &Node{
		graph:  g,
		index:  len(g.nodes),
		name:   g.uniqueName(cfg.name),
		op:     op,
		fn:     fn,
		target: target,
		args:   copyArgs(args),
	}
	g.nodes = append(g.nodes, n)
	g.names[n.name] = n
	// 3. Register n as a user of each distinct input
	for _, in := range InputNodes(n) {
		in.users = append(in.users, n)
	}

	return n, nil
}

// SetArgs replaces the argument list of n, updating users on both ends.
func (g *Graph) SetArgs(n *Node, args ...any) error {
	if n == nil || n.graph != g {
		return errors.Wrap(ErrForeignNode, "SetArgs")
	}
	for _, a := range args {
		if err := g.checkArg(a, n.index); err != nil {
			return err
		}
	}
	// drop n from the users of its current inputs
	for _, in := range InputNodes(n) {
		in.users = removeUser(in.users, n)
	}
	n.args = copyArgs(args)
	for _, in := range InputNodes(n) {
		in.users = append(in.users, n)
	}

	return nil
}

// checkArg verifies every node inside a belongs to g and precedes position limit.
func (g *Graph) checkArg(a any, limit int) error {
	var err error
	forEachNode(a, func(in *Node) {
		if err != nil {
			return
		}
		if in == nil || in.graph != g {
			err = errors.Wrapf(ErrForeignNode, "argument %v", in)
			return
		}
		if in.index >= limit {
			err = errors.Wrapf(ErrLint, "argument %s does not precede its user", in.name)
		}
	})

	return err
}

func removeUser(users []*Node, n *Node) []*Node {
	out := users[:0]
	for _, u := range users {
		if u != n {
			out = append(out, u)
		}
	}

	return out
}

// uniqueName sanitizes base and appends _1, _2, ... until it is free.
func (g *Graph) uniqueName(base string) string {
	base = strings.ReplaceAll(base, ".", "_")
	if base == "" {
		base = "node"
	}
	if _, taken := g.names[base]; !taken {
		return base
	}
	for i := 1; ; i++ {
		cand := base + "_" + strconv.Itoa(i)
		if _, taken := g.names[cand]; !taken {
			return cand
		}
	}
}

// Nodes returns all nodes in program order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)

	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Node looks a node up by name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.names[name]

	return n, ok
}

// Placeholders returns the input nodes in program order.
func (g *Graph) Placeholders() []*Node { return g.filter(OpPlaceholder) }

// OutputNodes returns the output nodes in program order.
func (g *Graph) OutputNodes() []*Node { return g.filter(OpOutput) }

func (g *Graph) filter(op Op) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.op == op {
			out = append(out, n)
		}
	}

	return out
}
