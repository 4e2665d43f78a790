// SPDX-License-Identifier: MIT
//
// File: partition.go
// Role: critical path inside a single partition.
// Determinism:
//   - Users are scanned in graph order and top nodes in program order; strict `>`
//     keeps the first of equally long paths.

package latency

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/fxgraph/fx"
	"github.com/katalvlaran/fxgraph/partition"
)

// LatencyOfOnePartition returns the longest path through p, starting at any top
// node (a member with no input produced inside p) and following in-partition users.
//
// Members are processed in reverse program order, so the path from every user is
// known before its producers are: each node's result is computed once.
// An empty partition has zero latency.
func LatencyOfOnePartition(p *partition.Partition, lat NodeLatencies) (PartitionLatency, error) {
	members := p.Nodes()
	best := make(map[*fx.Node]PartitionLatency, len(members))

	// 1. Longest path from each member to the end of the partition
	for i := len(members) - 1; i >= 0; i-- {
		n := members[i]
		own, ok := lat[n]
		if !ok {
			return PartitionLatency{}, errors.Wrapf(ErrMissingLatency, "node %s", n.Name())
		}
		var tail PartitionLatency
		found := false
		for _, u := range n.Users() {
			if !p.Contains(u) {
				continue
			}
			if l := best[u]; !found || l.OverallLatencySec > tail.OverallLatencySec {
				tail, found = l, true
			}
		}
		best[n] = PartitionLatency{
			MemLatencySec:      own.MemLatencySec + tail.MemLatencySec,
			ComputerLatencySec: own.ComputerLatencySec + tail.ComputerLatencySec,
			OverallLatencySec:  own.overall() + tail.OverallLatencySec,
		}
	}
	// 2. Pick the worst top node
	var out PartitionLatency
	found := false
	for _, n := range members {
		if !isTop(p, n) {
			continue
		}
		if l := best[n]; !found || l.OverallLatencySec > out.OverallLatencySec {
			out, found = l, true
		}
	}

	return out, nil
}

// isTop reports whether no input of n is computed inside p. Placeholders and
// get_attr nodes are never members, so they do not count.
func isTop(p *partition.Partition, n *fx.Node) bool {
	for _, in := range fx.InputNodes(n) {
		if p.Contains(in) {
			return false
		}
	}

	return true
}

// PartitionToLatencyMapping applies LatencyOfOnePartition to every partition.
// Partitions are evaluated concurrently; lat is only read. The first error wins.
func PartitionToLatencyMapping(ps []*partition.Partition, lat NodeLatencies) (map[*partition.Partition]PartitionLatency, error) {
	results := make([]PartitionLatency, len(ps))
	var g errgroup.Group
	for i, p := range ps {
		g.Go(func() error {
			l, err := LatencyOfOnePartition(p, lat)
			if err != nil {
				return errors.Wrapf(err, "%v", p)
			}
			results[i] = l

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[*partition.Partition]PartitionLatency, len(ps))
	for i, p := range ps {
		out[p] = results[i]
	}

	return out, nil
}
