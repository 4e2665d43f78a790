// Package dfs implements depth-first search traversal, cycle detection,
// and topological sort on any directed graph exposed through the Digraph
// interface (vertex IDs plus successor lists).
//
// What:
//
//   - DFS (Depth-First Search): explores as far as possible along each
//     branch before backtracking, with a pre-order hook and edge filtering.
//   - Reachable: single-pair reachability on top of DFS, optionally ignoring
//     edges rejected by a filter.
//   - DetectCycles: enumerates directed cycles using vertex coloring
//     (White, Gray, Black) with back-edge recording and canonical signature
//     deduplication.
//   - TopologicalSort: computes a linear ordering of vertices in a directed
//     acyclic graph (DAG), returning ErrCycleDetected if cycles exist.
//
// Why:
//   - Check that a computation graph or a DAG of partitions is acyclic
//   - Determine safe execution orders (submodule call order, latency evaluation order)
//   - Decide whether merging two partitions would close a cycle
//   - Name the partitions on a cycle when a partition graph is rejected
//
// Key Types & Constants:
//
//   - Digraph: Vertices() + Successors(id), the only view the algorithms need
//   - Adjacency: map-backed Digraph for ad-hoc graphs and tests
//   - VertexState: White, Gray, Black (visitation markers)
//   - Option / DFSOptions / DFSResult: traversal configuration and output
//
// Complexity:
//
//   - DFS:             Time O(V+E), Memory O(V)
//   - DetectCycles:    Time O(V+E + C*L), Memory O(V+L_max)
//   - TopologicalSort: Time O(V+E), Memory O(V)
//
// Errors:
//
//   - ErrGraphNil             graph is nil
//   - ErrStartVertexNotFound  start vertex ID not in graph
//   - ErrCycleDetected        cycle discovered in DAG operations
//   - ErrNeighborFetch        Successors returned an error
//   - hook errors             propagated from OnVisit
package dfs
