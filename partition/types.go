// SPDX-License-Identifier: MIT
//
// File: types.go
// Role: Partition (membership + memory accounting), DAG and Result.
// Memory model:
//   - used = Σ TotalSize(members) + Σ TotalSize(resident inputs) + Σ OutputSize(external inputs)
//   - resident inputs are placeholder/get_attr nodes read by members; each counts once
//   - external inputs are values produced by other partitions; each counts once

package partition

import (
	"sort"
	"strconv"

	"github.com/katalvlaran/fxgraph/fx"
)

// Partition is a set of call nodes assigned to one device.
type Partition struct {
	id      int
	members []*fx.Node            // program order
	set     map[*fx.Node]struct{} // members and resident inputs
	ext     map[*fx.Node]struct{} // inputs produced outside
	used    int64

	parents  map[*Partition]struct{}
	children map[*Partition]struct{}

	embedding bool
	preferred int // device index claimed during the walk, -1 if none
	devices   []int
}

func newPartition(id int) *Partition {
	return &Partition{
		id:        id,
		set:       make(map[*fx.Node]struct{}),
		ext:       make(map[*fx.Node]struct{}),
		parents:   make(map[*Partition]struct{}),
		children:  make(map[*Partition]struct{}),
		preferred: -1,
	}
}

// NewPartition builds a standalone partition over nodes (any order). Nodes
// without a size annotation count as zero bytes. Parents and children are
// empty until LinkPartitions runs.
func NewPartition(id int, nodes ...*fx.Node) *Partition {
	p := newPartition(id)
	p.members = append(p.members, nodes...)
	p.recalc()

	return p
}

// ID returns the partition identifier (dense, in program order of first member).
func (p *Partition) ID() int { return p.id }

// Nodes returns the member nodes in program order.
func (p *Partition) Nodes() []*fx.Node { return append([]*fx.Node(nil), p.members...) }

// Contains reports whether n is a member. Resident inputs are not members.
func (p *Partition) Contains(n *fx.Node) bool {
	if _, ok := p.set[n]; !ok {
		return false
	}

	return !isResident(n)
}

// Parents returns the partitions this one consumes values from, in ID order.
func (p *Partition) Parents() []*Partition { return sortedByID(p.parents) }

// Children returns the partitions consuming values of this one, in ID order.
func (p *Partition) Children() []*Partition { return sortedByID(p.children) }

// LogicalDeviceIDs returns the logical ids of the devices hosting p.
func (p *Partition) LogicalDeviceIDs() []int { return append([]int(nil), p.devices...) }

// UsedMemBytes returns the memory the partition needs on its device, inputs included.
func (p *Partition) UsedMemBytes() int64 { return p.used }

// SizeBytes returns the sum of the members' total sizes.
func (p *Partition) SizeBytes() int64 {
	var n int64
	for _, m := range p.members {
		n += sizeOf(m).TotalSize
	}

	return n
}

// IsEmbedding reports whether p holds an embedding lookup (sparse mode only).
func (p *Partition) IsEmbedding() bool { return p.embedding }

// String returns "partition <id>".
func (p *Partition) String() string { return "partition " + strconv.Itoa(p.id) }

func sortedByID(set map[*Partition]struct{}) []*Partition {
	out := make([]*Partition, 0, len(set))
	for q := range set {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })

	return out
}

// DAGNode describes one partition of the result.
type DAGNode struct {
	// Partition is the partition this node stands for.
	Partition *Partition

	// SubmoduleNode is the call_module node of the top-level graph.
	SubmoduleNode *fx.Node

	// InputNodes are the original nodes whose values are passed to the submodule.
	InputNodes []*fx.Node

	// OutputNodes are the original member nodes whose values leave the submodule.
	OutputNodes []*fx.Node

	LogicalDeviceIDs []int
	SizeBytes        int64

	// Parents and Children index DAG.Nodes.
	Parents  []int
	Children []int
}

// DAG is the partition graph; Nodes[i] describes the partition with ID i.
type DAG struct {
	Nodes []*DAGNode
}

// Result is the outcome of PartitionGraph.
type Result struct {
	// ModuleWithSubmodules runs the same computation as the original graph through
	// one submodule per partition ("submod_<id>").
	ModuleWithSubmodules *fx.GraphModule

	DAG        *DAG
	Partitions []*Partition
}
