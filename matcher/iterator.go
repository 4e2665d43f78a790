// SPDX-License-Identifier: MIT
//
// File: iterator.go
// Role: backwards walk yielding matchable subgraphs of one graph.
// Invariants:
//   - Every node reachable from an output is visited at most once.
//   - Non-matchable start nodes are skipped but their arguments are still walked.
//   - Node arguments nested in lists (a tuple output) are walked like direct ones.

package matcher

import (
	"github.com/emirpasic/gods/v2/sets/hashset"
	"github.com/emirpasic/gods/v2/stacks/arraystack"

	"github.com/katalvlaran/fxgraph/fx"
)

// Subgraph is a straight chain of nodes identified by its first and last node.
// Single-node subgraphs have Start == End.
type Subgraph struct {
	Start, End *fx.Node
}

// SubgraphIterator yields the matchable subgraphs of a graph, back to front.
// It is not safe for concurrent use.
type SubgraphIterator struct {
	owner fx.Owner
	cfg   Config

	nonMatchable *hashset.Set[fx.TargetType]
	stack        *arraystack.Stack[*fx.Node]
	seen         *hashset.Set[*fx.Node]
}

// NewSubgraphIterator starts a walk from the output node(s) of g. owner resolves
// call_module targets.
func NewSubgraphIterator(g *fx.Graph, owner fx.Owner, cfg Config) *SubgraphIterator {
	it := &SubgraphIterator{
		owner:        owner,
		cfg:          cfg,
		nonMatchable: hashset.New[fx.TargetType](),
		stack:        arraystack.New[*fx.Node](),
		seen:         hashset.New[*fx.Node](),
	}
	for _, fn := range cfg.NonMatchableFunctions {
		it.nonMatchable.Add(fn.Type())
	}
	for _, out := range g.OutputNodes() {
		it.stack.Push(out)
	}

	return it
}

// Next returns the next matchable subgraph, or false once the walk is exhausted.
func (it *SubgraphIterator) Next() (Subgraph, bool) {
	for {
		end, ok := it.stack.Pop()
		if !ok {
			return Subgraph{}, false
		}
		if it.seen.Contains(end) {
			continue
		}
		// 1. Absorb a fusion chain ending here; the first matching pattern wins
		start := end
		for _, pattern := range it.cfg.ReverseFusions {
			if !it.endsFusion(end, pattern) {
				continue
			}
			for range len(pattern) - 1 {
				it.seen.Add(start)
				start = start.Arg(0).(*fx.Node)
			}
			break
		}
		// 2. Visit the start node and queue its inputs
		it.seen.Add(start)
		for _, in := range fx.InputNodes(start) {
			it.stack.Push(in)
		}
		// 3. Skip instrumentation
		if !it.matchable(start) {
			continue
		}

		return Subgraph{Start: start, End: end}, true
	}
}

// endsFusion reports whether the chain ending at end follows pattern (listed end
// first), each step reaching the previous node through its first argument.
func (it *SubgraphIterator) endsFusion(end *fx.Node, pattern []fx.TargetType) bool {
	if len(pattern) == 0 {
		return false
	}
	cur := end
	for _, want := range pattern {
		t, ok := fx.TargetTypeOf(cur, it.owner)
		if !ok || t != want {
			return false
		}
		prev, isNode := cur.Arg(0).(*fx.Node)
		if !isNode {
			return false
		}
		cur = prev
	}

	return true
}

// matchable reports whether n may form a subgraph: calls are, except the
// configured instrumentation; placeholders, get_attr and output never are.
func (it *SubgraphIterator) matchable(n *fx.Node) bool {
	switch n.Op() {
	case fx.OpCallFunction:
		return n.Fn() == nil || !it.nonMatchable.Contains(n.Fn().Type())
	case fx.OpCallModule:
		m, ok := it.owner.Submodule(n.Target())
		if !ok {
			return true
		}
		for _, t := range it.cfg.NonMatchableModules {
			if fx.InstanceOf(m, t) {
				return false
			}
		}

		return true
	default:
		return false
	}
}
