// SPDX-License-Identifier: MIT

package partition

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/katalvlaran/fxgraph/dfs"
	"github.com/katalvlaran/fxgraph/fx"
)

// LinkPartitions recomputes parent/child links: Q is a child of P iff a member
// of Q takes a member of P as input. It fails with ErrPartitionCycle, naming the
// partitions on one cycle, if the resulting partition graph is not a DAG. A node
// that belongs to two partitions is an error as well.
func LinkPartitions(ps []*Partition) error {
	owner := make(map[*fx.Node]*Partition)
	for _, p := range ps {
		p.parents = make(map[*Partition]struct{})
		p.children = make(map[*Partition]struct{})
		for _, m := range p.members {
			if q, dup := owner[m]; dup {
				return errors.Errorf("partition: node %s in %v and %v", m.Name(), q, p)
			}
			owner[m] = p
		}
	}
	for _, p := range ps {
		for _, m := range p.members {
			for _, in := range fx.InputNodes(m) {
				q, ok := owner[in]
				if !ok || q == p {
					continue
				}
				q.children[p] = struct{}{}
				p.parents[q] = struct{}{}
			}
		}
	}
	has, cycles, err := dfs.DetectCycles(newPartitionGraph(ps))
	if err != nil {
		return err
	}
	if has {
		return errors.Wrapf(ErrPartitionCycle, "partitions %s", strings.Join(cycles[0], " -> "))
	}

	return nil
}

// partitionGraph exposes partitions as a dfs.Digraph keyed by decimal ID.
type partitionGraph struct {
	ps    []*Partition
	byKey map[string]*Partition
}

func newPartitionGraph(ps []*Partition) partitionGraph {
	pg := partitionGraph{ps: ps, byKey: make(map[string]*Partition, len(ps))}
	for _, p := range ps {
		pg.byKey[key(p)] = p
	}

	return pg
}

func key(p *Partition) string { return strconv.Itoa(p.id) }

// Vertices implements dfs.Digraph in slice order.
func (pg partitionGraph) Vertices() []string {
	out := make([]string, len(pg.ps))
	for i, p := range pg.ps {
		out[i] = key(p)
	}

	return out
}

// Successors implements dfs.Digraph in child ID order.
func (pg partitionGraph) Successors(id string) ([]string, error) {
	p, ok := pg.byKey[id]
	if !ok {
		return nil, errors.Errorf("partition: unknown partition %s", id)
	}
	children := p.Children()
	out := make([]string, len(children))
	for i, c := range children {
		out[i] = key(c)
	}

	return out, nil
}

// TopologicalOrder returns ps ordered so that every parent precedes its children.
// Links must be current (see LinkPartitions).
func TopologicalOrder(ps []*Partition) ([]*Partition, error) {
	pg := newPartitionGraph(ps)
	keys, err := dfs.TopologicalSort(pg)
	if err != nil {
		return nil, errors.Wrapf(ErrPartitionCycle, "%v", err)
	}
	out := make([]*Partition, len(keys))
	for i, k := range keys {
		out[i] = pg.byKey[k]
	}

	return out, nil
}
