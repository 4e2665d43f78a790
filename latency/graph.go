// SPDX-License-Identifier: MIT

package latency

import (
	"github.com/pkg/errors"

	"github.com/katalvlaran/fxgraph/fx"
	"github.com/katalvlaran/fxgraph/partition"
)

// CommLatencyBetween is the cost of moving child's inputs out of parent: the
// output size of every distinct parent member read by a child member, times rate.
// Nodes without a size annotation contribute nothing.
func CommLatencyBetween(parent, child *partition.Partition, rate float64) float64 {
	seen := make(map[*fx.Node]struct{})
	var bytes int64
	for _, n := range child.Nodes() {
		for _, in := range fx.InputNodes(n) {
			if _, dup := seen[in]; dup || !parent.Contains(in) {
				continue
			}
			seen[in] = struct{}{}
			if s := in.SizeBytes(); s != nil {
				bytes += s.OutputSize
			}
		}
	}

	return float64(bytes) * rate
}

// LatencyOfPartitionedGraph returns the latency of the longest root-to-sink path
// of the partition DAG. A path costs the overall latency of every partition on it
// plus the comm latency of every link it crosses. Partition links must be current
// (see partition.LinkPartitions).
func LatencyOfPartitionedGraph(ps []*partition.Partition, lat map[*partition.Partition]PartitionLatency, rate float64) (float64, error) {
	order, err := partition.TopologicalOrder(ps)
	if err != nil {
		return 0, err
	}
	// children first: best[p] is the longest path starting at p
	best := make(map[*partition.Partition]float64, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		p := order[i]
		l, ok := lat[p]
		if !ok {
			return 0, errors.Wrapf(ErrMissingLatency, "%v", p)
		}
		tail := 0.0
		for _, c := range p.Children() {
			if v := CommLatencyBetween(p, c, rate) + best[c]; v > tail {
				tail = v
			}
		}
		best[p] = l.OverallLatencySec + tail
	}

	total := 0.0
	for _, p := range order {
		if len(p.Parents()) == 0 && best[p] > total {
			total = best[p]
		}
	}

	return total, nil
}
