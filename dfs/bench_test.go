package dfs_test

import (
	"testing"

	"github.com/katalvlaran/fxgraph/dfs"
)

// BenchmarkTopologicalSort_Chain10000 measures TopologicalSort on a chain N0 → … → N9999.
func BenchmarkTopologicalSort_Chain10000(b *testing.B) {
	g := buildChain(10000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = dfs.TopologicalSort(g)
	}
}
