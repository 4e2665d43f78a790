// Package fxgraph splits computation graphs across memory-limited devices,
// estimates their pipelined latency, and pairs corresponding subgraphs of two
// versions of one model.
//
// What is in the box?
//
//	• Graph IR: placeholder / get_attr / call_function / call_module / output nodes
//	  with args↔users kept consistent, an interpreter and a size annotation pass
//	• Partitioning: size-based and sparse-NN (one embedding lookup per device)
//	  strategies, partition merging, best-fit device placement and a runnable
//	  module with one submodule per partition
//	• Latency: critical path per partition and over the partition DAG
//	• Matching: lockstep subgraph pairing tolerant to fusion, quantization
//	  scaffolding and instrumentation
//
// Layout:
//
//	fx/        : graph IR, GraphModule, interpreter, size pass, lint
//	ops/       : tensors (gonum), float and quantized functions, modules
//	dfs/       : DFS, topological sort and cycle detection over any Digraph
//	partition/ : PartitionGraph, partition DAG, placement, submodule split
//	latency/   : partition and whole-graph latency estimation
//	matcher/   : subgraph iterator and GetMatchingSubgraphPairs
//	cmd/fxpart/: CLI over YAML model descriptions
//
// Quick ASCII example (two devices of 80 bytes):
//
//	x ──► fc1 ──► relu ──► fc2 ──► out
//	      └── submod_0 ──┘ └submod_1┘
//	         device 0       device 1
//
//	go get github.com/katalvlaran/fxgraph
package fxgraph
