// SPDX-License-Identifier: MIT

package partition_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/fxgraph/fx"
	"github.com/katalvlaran/fxgraph/ops"
)

// seq returns 1, 2, …, n scaled by s.
func seq(n int, s float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i+1) * s
	}

	return out
}

func linear(t *testing.T, rows, cols int, scale float64) *ops.LinearModule {
	t.Helper()
	w, err := ops.NewMatrix(rows, cols, seq(rows*cols, scale))
	require.NoError(t, err)

	return ops.NewLinear(w, ops.NewTensor(seq(rows, -scale)...))
}

// residual builds
//
//	x → fc1 → relu → fc2 → add(fc2, relu) → relu_1 → output [relu_1, fc1]
//
// with 4x4 linears (160 parameter bytes each) and annotates sizes for a
// 4-element input, so every activation is 32 bytes and fc1/fc2 total 192.
func residual(t *testing.T) (*fx.GraphModule, *ops.Tensor) {
	t.Helper()
	g := fx.NewGraph()
	x, _ := g.Placeholder("x")
	fc1, _ := g.CallModule("fc1", []any{x})
	r1, _ := g.CallFunction(ops.Relu, []any{fc1})
	fc2, _ := g.CallModule("fc2", []any{r1})
	s, _ := g.CallFunction(ops.Add, []any{fc2, r1})
	r2, _ := g.CallFunction(ops.Relu, []any{s})
	_, err := g.Output([]any{r2, fc1})
	require.NoError(t, err)

	gm := fx.NewGraphModule(g)
	gm.AddSubmodule("fc1", linear(t, 4, 4, 0.25))
	gm.AddSubmodule("fc2", linear(t, 4, 4, -0.125))
	in := ops.NewTensor(1, -2, 3, -4)
	require.NoError(t, fx.AnnotateSizes(gm, in))

	return gm, in
}

// assertSameOutput runs both modules on in and requires bit-identical results.
func assertSameOutput(t *testing.T, want, got fx.Module, in ...fx.Value) {
	t.Helper()
	w, err := want.Forward(in...)
	require.NoError(t, err)
	g, err := got.Forward(in...)
	require.NoError(t, err)
	requireEqualValues(t, w, g)
}

func requireEqualValues(t *testing.T, want, got fx.Value) {
	t.Helper()
	switch w := want.(type) {
	case []fx.Value:
		gl, ok := got.([]fx.Value)
		require.True(t, ok, "want tuple, got %T", got)
		require.Len(t, gl, len(w))
		for i := range w {
			requireEqualValues(t, w[i], gl[i])
		}
	case *ops.Tensor:
		gt, ok := got.(*ops.Tensor)
		require.True(t, ok, "want tensor, got %T", got)
		require.True(t, w.Equal(gt), "want %v, got %v", w, gt)
	default:
		require.Equal(t, want, got)
	}
}
