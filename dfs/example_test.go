package dfs_test

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/fxgraph/dfs"
)

// ExampleTopologicalSort orders a small pipeline of partitions.
//
//	p0 → p1 → p3
//	 \        ↗
//	  → p2 ──
func ExampleTopologicalSort() {
	g := dfs.Adjacency{}
	g.AddEdge("p0", "p1")
	g.AddEdge("p0", "p2")
	g.AddEdge("p1", "p3")
	g.AddEdge("p2", "p3")

	order, err := dfs.TopologicalSort(g)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(strings.Join(order, " "))
	// Output: p0 p2 p1 p3
}

// ExampleDetectCycles reports a cycle in canonical rotation.
func ExampleDetectCycles() {
	g := dfs.Adjacency{}
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")
	g.AddEdge("a", "b")

	has, cycles, _ := dfs.DetectCycles(g)
	fmt.Println(has, cycles)
	// Output: true [[a b c a]]
}
