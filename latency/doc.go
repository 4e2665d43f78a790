// Package latency estimates the execution time of a partitioned computation graph.
//
// What:
//
//   - LatencyOfOnePartition: critical path inside one partition. Each node costs
//     max(compute, memory) on the overall path, modeling overlap of compute and
//     memory transfer; the raw memory and compute sums along the chosen path are
//     reported alongside.
//   - PartitionToLatencyMapping: the above for every partition, concurrently.
//   - CommLatencyBetween: bytes a child partition reads from its parent, times a
//     transfer rate.
//   - LatencyOfPartitionedGraph: longest root-to-sink path over the partition DAG,
//     charging each partition's overall latency and each edge's comm latency.
//
// Complexity:
//
//   - LatencyOfOnePartition:     O(N + E) per partition, memoized per node
//   - LatencyOfPartitionedGraph: O(P + D) after one topological sort (P partitions, D links)
//
// Errors:
//
//   - ErrMissingLatency             a node or partition has no latency entry
//   - partition.ErrPartitionCycle   partition links do not form a DAG
package latency
