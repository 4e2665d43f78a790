// SPDX-License-Identifier: MIT

package latency_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/fxgraph/fx"
	"github.com/katalvlaran/fxgraph/latency"
	"github.com/katalvlaran/fxgraph/ops"
	"github.com/katalvlaran/fxgraph/partition"
)

func TestLatencyOfPartitionedGraph_TwoPartitions(t *testing.T) {
	nodes := chain(t, 2)
	nodes[0].SetSizeBytes(fx.SizeBytes{TotalSize: 32, OutputSize: 32})
	parent := partition.NewPartition(0, nodes[0])
	child := partition.NewPartition(1, nodes[1])
	ps := []*partition.Partition{parent, child}
	require.NoError(t, partition.LinkPartitions(ps))
	lat := map[*partition.Partition]latency.PartitionLatency{
		parent: {MemLatencySec: 128, ComputerLatencySec: 80, OverallLatencySec: 160},
		child:  {MemLatencySec: 16, ComputerLatencySec: 32, OverallLatencySec: 32},
	}

	assert.Equal(t, 16.0, latency.CommLatencyBetween(parent, child, 0.5))
	got, err := latency.LatencyOfPartitionedGraph(ps, lat, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 208.0, got)
}

func TestCommLatencyBetween_DistinctInputs(t *testing.T) {
	g := fx.NewGraph()
	x, _ := g.Placeholder("x")
	a, _ := g.CallFunction(ops.Relu, []any{x})
	b, _ := g.CallFunction(ops.Relu, []any{a})
	c, _ := g.CallFunction(ops.Add, []any{a, b})
	d, _ := g.CallFunction(ops.Mul, []any{a, 2.0})
	_, _ = g.Output([]any{c, d})
	a.SetSizeBytes(fx.SizeBytes{TotalSize: 100, OutputSize: 40})

	// a feeds b, c and d but is moved once; b has no size
	parent := partition.NewPartition(0, a, b)
	child := partition.NewPartition(1, c, d)
	assert.Equal(t, 80.0, latency.CommLatencyBetween(parent, child, 2))
	assert.Zero(t, latency.CommLatencyBetween(child, parent, 2))
}

func TestLatencyOfPartitionedGraph_Diamond(t *testing.T) {
	g := fx.NewGraph()
	x, _ := g.Placeholder("x")
	a, _ := g.CallFunction(ops.Relu, []any{x})
	b, _ := g.CallFunction(ops.Relu, []any{a})
	c, _ := g.CallFunction(ops.Relu, []any{a})
	d, _ := g.CallFunction(ops.Add, []any{b, c})
	_, _ = g.Output(d)
	for _, n := range []*fx.Node{a, b, c} {
		n.SetSizeBytes(fx.SizeBytes{TotalSize: 8, OutputSize: 8})
	}
	pa, pb, pc, pd := partition.NewPartition(0, a), partition.NewPartition(1, b),
		partition.NewPartition(2, c), partition.NewPartition(3, d)
	ps := []*partition.Partition{pa, pb, pc, pd}
	require.NoError(t, partition.LinkPartitions(ps))
	lat := map[*partition.Partition]latency.PartitionLatency{
		pa: {OverallLatencySec: 1},
		pb: {OverallLatencySec: 5},
		pc: {OverallLatencySec: 2},
		pd: {OverallLatencySec: 1},
	}

	// a → b → d: 1 + 8 + 5 + 8 + 1
	got, err := latency.LatencyOfPartitionedGraph(ps, lat, 1)
	require.NoError(t, err)
	assert.Equal(t, 23.0, got)

	got, err = latency.LatencyOfPartitionedGraph(ps, lat, 0)
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)

	delete(lat, pc)
	_, err = latency.LatencyOfPartitionedGraph(ps, lat, 1)
	assert.ErrorIs(t, err, latency.ErrMissingLatency)
}

func TestLatencyOfPartitionedGraph_Cycle(t *testing.T) {
	nodes := chain(t, 3)
	ps := []*partition.Partition{
		partition.NewPartition(0, nodes[0], nodes[2]),
		partition.NewPartition(1, nodes[1]),
	}
	// LinkPartitions records the links before reporting the cycle
	require.ErrorIs(t, partition.LinkPartitions(ps), partition.ErrPartitionCycle)

	_, err := latency.LatencyOfPartitionedGraph(ps, nil, 1)
	assert.ErrorIs(t, err, partition.ErrPartitionCycle)
}

func TestLatencyOfPartitionedGraph_Empty(t *testing.T) {
	got, err := latency.LatencyOfPartitionedGraph(nil, nil, 1)
	require.NoError(t, err)
	assert.Zero(t, got)
}
