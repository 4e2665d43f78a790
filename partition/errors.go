// SPDX-License-Identifier: MIT
//
// errors.go: sentinel errors for the partition package.
//
// Error policy:
//   • Only sentinel variables are exposed; callers branch with errors.Is.
//   • Context (node names, sizes, capacities) is attached by wrapping.
//   • None of these are retried internally; every failure is a deterministic
//     function of the graph and the configuration.

package partition

import "github.com/pkg/errors"

var (
	// ErrGraphNil indicates a nil graph or root module.
	ErrGraphNil = errors.New("partition: graph or root module is nil")

	// ErrConfiguration indicates an unusable device list (empty, non-positive
	// capacity, duplicate name or logical id).
	ErrConfiguration = errors.New("partition: invalid configuration")

	// ErrCapacity indicates a node or a partition that no device can hold, or more
	// embedding partitions than devices in sparse mode.
	ErrCapacity = errors.New("partition: insufficient device capacity")

	// ErrPartitionCycle indicates a partition graph that is not a DAG.
	ErrPartitionCycle = errors.New("partition: partition graph has a cycle")

	// ErrMissingSize indicates a node without a SizeBytes annotation.
	ErrMissingSize = errors.New("partition: node has no size annotation")
)
