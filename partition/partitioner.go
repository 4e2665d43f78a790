// SPDX-License-Identifier: MIT
//
// File: partitioner.go
// Role: PartitionGraph entry point and the per-call partitioner state.
// Determinism:
//   - Nodes are walked in program order, devices in Config order.
//   - Final partition IDs follow the program order of each partition's first member.

package partition

import (
	"log/slog"
	"sort"

	"github.com/pkg/errors"

	"github.com/katalvlaran/fxgraph/fx"
)

// partitioner owns the scratch state of one PartitionGraph call.
type partitioner struct {
	g      *fx.Graph
	root   fx.Owner
	cfg    Config
	log    *slog.Logger
	maxCap int64

	partitions []*Partition
	nextID     int
}

// PartitionGraph splits the call nodes of g into device-assigned partitions and
// builds a module that runs them as submodules.
//
// Stages:
//  1. Validate the graph, root and configuration; every non-output node must carry SizeBytes.
//  2. Assign nodes: size-based walk, or sparse-NN walk when cfg.IsSparseNN.
//  3. Optionally merge connected partitions (cfg.CombineSmallPartitions).
//  4. Link the partition DAG and verify it is acyclic.
//  5. Place partitions on devices.
//  6. Materialize one submodule per partition and the top-level graph.
//
// The input graph is not modified.
func PartitionGraph(g *fx.Graph, root fx.Owner, cfg Config) (*Result, error) {
	// 1. Validate
	if g == nil || root == nil {
		return nil, ErrGraphNil
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	pr := newPartitioner(g, root, cfg)
	nodes, err := pr.callNodes()
	if err != nil {
		return nil, err
	}
	// 2. Assign
	if cfg.IsSparseNN {
		err = pr.sparseNN(nodes)
	} else {
		err = pr.sizeBased(nodes)
	}
	if err != nil {
		return nil, err
	}
	// 3. Combine
	if cfg.CombineSmallPartitions {
		if err = pr.combineSmallPartitions(); err != nil {
			return nil, err
		}
	}
	pr.renumber()
	// 4. DAG
	if err = LinkPartitions(pr.partitions); err != nil {
		return nil, err
	}
	// 5. Devices
	if err = pr.placePartitions(); err != nil {
		return nil, err
	}
	// 6. Materialize
	gm, dag, err := pr.split()
	if err != nil {
		return nil, err
	}
	pr.log.Debug("partitioning done", "partitions", len(pr.partitions), "devices", len(cfg.Devices))

	return &Result{ModuleWithSubmodules: gm, DAG: dag, Partitions: pr.partitions}, nil
}

func newPartitioner(g *fx.Graph, root fx.Owner, cfg Config) *partitioner {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.IsEmbedding == nil {
		cfg.IsEmbedding = DefaultEmbeddingPredicate
	}
	pr := &partitioner{g: g, root: root, cfg: cfg, log: cfg.Logger}
	for _, d := range cfg.Devices {
		if d.AvailableMemBytes > pr.maxCap {
			pr.maxCap = d.AvailableMemBytes
		}
	}

	return pr
}

// callNodes returns the call nodes in program order after checking that every
// node the accounting reads has a size annotation.
func (pr *partitioner) callNodes() ([]*fx.Node, error) {
	var out []*fx.Node
	for _, n := range pr.g.Nodes() {
		if n.Op() == fx.OpOutput {
			continue
		}
		if n.SizeBytes() == nil {
			return nil, errors.Wrapf(ErrMissingSize, "node %s", n.Name())
		}
		if n.Op().IsCall() {
			out = append(out, n)
		}
	}

	return out, nil
}

func (pr *partitioner) newPartition() *Partition {
	p := newPartition(pr.nextID)
	pr.nextID++
	pr.partitions = append(pr.partitions, p)

	return p
}

// capacityError reports a node no device can hold.
func (pr *partitioner) capacityError(n *fx.Node, size int64) error {
	caps := make([]int64, len(pr.cfg.Devices))
	for i, d := range pr.cfg.Devices {
		caps[i] = d.AvailableMemBytes
	}

	return errors.Wrapf(ErrCapacity, "node %s needs %d bytes, device capacities %v", n.Name(), size, caps)
}

// renumber assigns dense IDs in program order of each partition's first member.
func (pr *partitioner) renumber() {
	pr.partitions = byFirstMember(pr.partitions)
	for i, p := range pr.partitions {
		p.id = i
	}
	pr.nextID = len(pr.partitions)
}

// byFirstMember returns ps sorted by the program order of each first member.
func byFirstMember(ps []*Partition) []*Partition {
	out := append([]*Partition(nil), ps...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].members[0].Index() < out[j].members[0].Index() })

	return out
}
