// SPDX-License-Identifier: MIT

package fx_test

import (
	"fmt"

	"github.com/katalvlaran/fxgraph/fx"
	"github.com/katalvlaran/fxgraph/ops"
)

// ExampleGraph builds a two-node program, runs it and annotates its sizes.
func ExampleGraph() {
	// 1) Trace-like construction: each call registers itself as a user of its inputs
	g := fx.NewGraph()
	x, _ := g.Placeholder("x")
	r, _ := g.CallFunction(ops.Relu, []any{x})
	s, _ := g.CallFunction(ops.Add, []any{r, 1.0})
	_, _ = g.Output(s)

	// 2) Execute through a GraphModule
	gm := fx.NewGraphModule(g)
	out, _ := gm.Forward(ops.NewTensor(-2, 3))
	fmt.Println("out:", out)

	// 3) Attach SizeBytes to every node
	_ = fx.AnnotateSizes(gm, ops.NewTensor(-2, 3))
	for _, n := range g.Nodes() {
		fmt.Println(n.Name(), n.Op(), n.SizeBytes().OutputSize, n.Users())
	}

	// Output:
	// out: [1 4]
	// x placeholder 16 [relu]
	// relu call_function 16 [add]
	// add call_function 16 [output]
	// output output 16 []
}
