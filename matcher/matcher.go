// SPDX-License-Identifier: MIT

package matcher

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/katalvlaran/fxgraph/fx"
)

// GraphView is a graph together with the owner resolving its call_module and
// get_attr targets; *fx.GraphModule satisfies it.
type GraphView interface {
	fx.Owner
	Graph() *fx.Graph
}

// SubgraphPair holds corresponding subgraphs of graph A and graph B.
type SubgraphPair struct {
	A, B Subgraph
}

// Matches maps a name (taken from graph B) to its subgraph pair, in discovery order.
type Matches struct {
	m *orderedmap.OrderedMap[string, SubgraphPair]
}

// Len returns the number of pairs.
func (ms *Matches) Len() int { return ms.m.Len() }

// Get returns the pair recorded under name.
func (ms *Matches) Get(name string) (SubgraphPair, bool) { return ms.m.Get(name) }

// Keys returns the names in discovery order (back to front through the graphs).
func (ms *Matches) Keys() []string {
	out := make([]string, 0, ms.m.Len())
	for p := ms.m.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}

	return out
}

// Each calls fn for every pair in discovery order.
func (ms *Matches) Each(fn func(name string, pair SubgraphPair)) {
	for p := ms.m.Oldest(); p != nil; p = p.Next() {
		fn(p.Key, p.Value)
	}
}

// GetMatchingSubgraphPairs pairs the matchable subgraphs of a and b.
//
// Both graphs are walked back to front in lockstep. Each step must yield a subgraph
// from both sides, and the two start nodes must be related (see Config.RelatedGroups);
// the pair is recorded under B's end node: its module path for call_module, its node
// name otherwise. Matching succeeds when both walks end together.
//
// On failure a *GraphMatchingError is returned and no partial result.
func GetMatchingSubgraphPairs(a, b GraphView, cfg Config) (*Matches, error) {
	itA := NewSubgraphIterator(a.Graph(), a, cfg)
	itB := NewSubgraphIterator(b.Graph(), b, cfg)
	rel := newRelation(cfg.RelatedGroups)
	out := &Matches{m: orderedmap.New[string, SubgraphPair]()}

	for {
		sa, okA := itA.Next()
		sb, okB := itB.Next()
		switch {
		case okA && okB:
			if !rel.related(sa.Start, sb.Start, a, b) {
				return nil, &GraphMatchingError{
					Kind:  NotRelated,
					NodeA: sa.Start, NodeB: sb.Start,
					TypeA: targetType(sa.End, a), TypeB: targetType(sb.End, b),
				}
			}
			out.m.Set(pairName(sb), SubgraphPair{A: sa, B: sb})
		case !okA && !okB:
			return out, nil
		default:
			return nil, &GraphMatchingError{
				Kind:  CountMismatch,
				NodeA: sa.End, NodeB: sb.End,
				TypeA: targetType(sa.End, a), TypeB: targetType(sb.End, b),
			}
		}
	}
}

func pairName(sb Subgraph) string {
	if sb.End.Op() == fx.OpCallModule {
		return sb.End.Target()
	}

	return sb.End.Name()
}
