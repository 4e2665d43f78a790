// SPDX-License-Identifier: MIT

// Package partition splits a size-annotated fx graph into partitions assigned to
// logical devices and materializes a module that runs them as submodules.
//
// What:
//
//   - PartitionGraph(g, root, cfg): assign call nodes to partitions, link the
//     partition DAG, place partitions on devices and build ModuleWithSubmodules.
//   - Size-based mode: walk nodes in program order, growing a partition while its
//     device can absorb the node's extra size (own TotalSize plus inputs not yet
//     held). When devices run out, remaining nodes become single-node partitions.
//   - Sparse-NN mode: one partition per embedding lookup (each on a distinct
//     device), dense runs between them packed by size.
//   - CombineSmallPartitions: merge parent/child pairs while the result fits a
//     device; merges that would close a cycle are rejected.
//   - Placement: keep devices claimed during the walk, best-fit the rest.
//
// Guarantee:
//
//	Running Result.ModuleWithSubmodules on any input yields exactly what the
//	original graph yields: it is the same dataflow re-expressed through
//	submodules, called in a topological order of the partition DAG.
//
// Errors:
//
//   - ErrGraphNil        nil graph or root module
//   - ErrConfiguration   no devices, non-positive capacity, duplicate name or logical id
//   - ErrCapacity        a node fits no device; too many embedding partitions; placement failed
//   - ErrPartitionCycle  the partition graph is not a DAG
//   - ErrMissingSize     a node lacks SizeBytes (run fx.AnnotateSizes first)
//
// Concurrency:
//
//	PartitionGraph owns all scratch state; concurrent calls on the same graph are
//	safe as long as nobody mutates the graph meanwhile.
package partition
