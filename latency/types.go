// SPDX-License-Identifier: MIT

package latency

import (
	"github.com/pkg/errors"

	"github.com/katalvlaran/fxgraph/fx"
)

// ErrMissingLatency indicates a node or partition without a latency entry.
var ErrMissingLatency = errors.New("latency: missing latency")

// NodeLatency is the estimated cost of executing one node.
type NodeLatency struct {
	MemLatencySec      float64 // time to move the node's data
	ComputerLatencySec float64 // time to compute the node
}

// overall is the node's contribution to a critical path: memory transfer and
// compute overlap, so the larger one dominates.
func (l NodeLatency) overall() float64 {
	if l.ComputerLatencySec > l.MemLatencySec {
		return l.ComputerLatencySec
	}

	return l.MemLatencySec
}

// PartitionLatency describes the critical path of one partition.
type PartitionLatency struct {
	MemLatencySec      float64 // Σ memory latency along the path
	ComputerLatencySec float64 // Σ compute latency along the path
	OverallLatencySec  float64 // Σ max(compute, memory) along the path
}

// NodeLatencies maps each node to its estimated cost.
type NodeLatencies map[*fx.Node]NodeLatency
