// SPDX-License-Identifier: MIT

// Package fx is the computation-graph IR consumed by the partitioner, the
// latency estimator and the graph matcher.
//
// What:
//
//   - Node: one operation or value placeholder. Every node carries a closed
//     op tag (Placeholder, GetAttr, CallFunction, CallModule, Output), an
//     ordered argument list and the set of nodes that use it.
//   - Graph: an append-only arena of nodes kept in program order. Adding a node
//     registers it as a user of each node argument in the same step, so the
//     "uses" and "used-by" relations are always the transpose of each other.
//   - Module / Owner / GraphModule: executable units and the containers that
//     resolve call_module and get_attr targets.
//   - Interpreter: runs a graph node by node with optional per-node hooks.
//   - AnnotateSizes: the size pass that attaches SizeBytes to every node.
//
// Why:
//
//   - Partitioning needs a read-only, size-annotated view of a traced program.
//   - Semantic equivalence of a partitioned module is checked by running both
//     graphs through the same Interpreter.
//
// Errors:
//
//   - ErrForeignNode     argument node belongs to another graph
//   - ErrArity           wrong number of inputs for a graph or function
//   - ErrUnknownTarget   call_module / get_attr target cannot be resolved
//   - ErrNoOutput        graph has no output node
//   - ErrLint            graph violates an IR invariant
//
// Concurrency:
//
//	A Graph is not safe for concurrent mutation. Once built it may be read and
//	interpreted from many goroutines.
package fx
