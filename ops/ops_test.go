// SPDX-License-Identifier: MIT

package ops_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/fxgraph/fx"
	"github.com/katalvlaran/fxgraph/ops"
)

func mustMatrix(t *testing.T, rows, cols int, data ...float64) *ops.Matrix {
	t.Helper()
	m, err := ops.NewMatrix(rows, cols, data)
	require.NoError(t, err)

	return m
}

func TestFunctions_Elementwise(t *testing.T) {
	a := ops.NewTensor(1, -2, 3)
	b := ops.NewTensor(10, 20, 30)

	got, err := ops.Add.Impl(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 18, 33}, got.(*ops.Tensor).Data())

	got, err = ops.Mul.Impl(a, 2.0)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, -4, 6}, got.(*ops.Tensor).Data())

	got, err = ops.Relu.Impl(a)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 3}, got.(*ops.Tensor).Data())

	_, err = ops.Add.Impl(a, ops.NewTensor(1))
	assert.ErrorIs(t, err, ops.ErrShape)

	_, err = ops.Relu.Impl(a, b)
	assert.ErrorIs(t, err, fx.ErrArity)

	_, err = ops.Relu.Impl("x")
	assert.ErrorIs(t, err, ops.ErrType)
}

func TestFunctions_LinearAndCat(t *testing.T) {
	w := mustMatrix(t, 2, 3, 1, 0, 1, 0, 1, 0)
	x := ops.NewTensor(1, 2, 3)

	got, err := ops.Linear.Impl(x, w, ops.NewTensor(0.5, -0.5))
	require.NoError(t, err)
	assert.Equal(t, []float64{4.5, 1.5}, got.(*ops.Tensor).Data())

	_, err = ops.Linear.Impl(ops.NewTensor(1, 2), w)
	assert.ErrorIs(t, err, ops.ErrShape)

	got, err = ops.Cat.Impl([]fx.Value{ops.NewTensor(1), ops.NewTensor(2, 3)})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, got.(*ops.Tensor).Data())
}

func TestQuantizeRoundTrip(t *testing.T) {
	x := ops.NewTensor(0, 0.5, 1, -10, 1000)

	q, err := ops.QuantizePerTensor.Impl(x, 0.5, 10)
	require.NoError(t, err)
	qt := q.(*ops.QTensor)
	assert.Equal(t, []uint8{10, 11, 12, 0, 255}, qt.Values)
	assert.Equal(t, int64(5), qt.SizeBytes())

	d, err := ops.Dequantize.Impl(qt)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1, -5, 122.5}, d.(*ops.Tensor).Data())

	_, err = ops.QuantizePerTensor.Impl(x, 0.0, 0)
	assert.Error(t, err)
}

func TestQuantizedFunctions(t *testing.T) {
	w := mustMatrix(t, 1, 2, 1, -1)
	q, err := ops.QLinearReLU.Impl(ops.NewTensor(1, 3), w, nil, 1.0, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0}, q.(*ops.QTensor).Values)

	q, err = ops.QAdd.Impl(ops.NewTensor(1), ops.NewTensor(2), 1.0, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint8{3}, q.(*ops.QTensor).Values)

	_, err = ops.QCat.Impl([]fx.Value{ops.NewTensor(1)})
	assert.ErrorIs(t, err, fx.ErrArity)
}

func TestModules(t *testing.T) {
	w := mustMatrix(t, 2, 2, 1, 2, 3, 4)
	b := ops.NewTensor(-100, 0)
	x := ops.NewTensor(1, 1)

	float, err := ops.NewLinear(w, b).Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{-97, 7}, float.(*ops.Tensor).Data())

	fused, err := ops.NewLinearReLU(w, b).Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 7}, fused.(*ops.Tensor).Data())

	quant, err := ops.NewQuantizedLinearReLU(w, b, 1.0, 0).Forward(x)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 7}, quant.(*ops.QTensor).Values)

	assert.Equal(t, int64(48), ops.NewLinear(w, b).ParameterBytes())
	assert.Equal(t, int64(6), ops.NewQuantizedLinear(w, b, 1, 0).ParameterBytes())

	conv, err := ops.NewConv(2, 1).Forward(ops.NewTensor(1, 2))
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 5}, conv.(*ops.Tensor).Data())
	assert.Equal(t, ops.TypeConvBn2d, ops.NewConvBn(1, 0).Type())
}

func TestEmbeddingBag(t *testing.T) {
	table := mustMatrix(t, 3, 2, 1, 2, 10, 20, 100, 200)
	e := ops.NewEmbeddingBag(table)

	got, err := e.Forward(ops.NewTensor(0, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, []float64{201, 402}, got.(*ops.Tensor).Data())
	assert.Equal(t, int64(48), e.ParameterBytes())

	_, err = e.Forward(ops.NewTensor(3))
	assert.ErrorIs(t, err, ops.ErrShape)
	_, err = e.Forward(ops.NewTensor(0.5))
	assert.ErrorIs(t, err, ops.ErrShape)
}

func TestInstrumentation(t *testing.T) {
	obs := ops.NewMinMaxObserver()
	assert.True(t, fx.InstanceOf(obs, ops.TypeObserverBase))
	assert.False(t, fx.InstanceOf(obs, ops.TypeFakeQuantizeBase))

	in := ops.NewTensor(3, -1, 2)
	out, err := obs.Forward(in)
	require.NoError(t, err)
	assert.Same(t, in, out)
	lo, hi, ok := obs.Range()
	assert.True(t, ok)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 3.0, hi)

	fq := ops.NewFakeQuantize(0.5, 0)
	assert.True(t, fx.InstanceOf(fq, ops.TypeFakeQuantizeBase))
	got, err := fq.Forward(ops.NewTensor(0.74, 1.3))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1.5}, got.(*ops.Tensor).Data())
}

func TestSizes(t *testing.T) {
	assert.Equal(t, int64(24), fx.ValueBytes(ops.NewTensor(1, 2, 3)))
	assert.Equal(t, int64(32), fx.ValueBytes(mustMatrix(t, 2, 2, 1, 2, 3, 4)))
	assert.Equal(t, int64(16+8), fx.ValueBytes([]fx.Value{ops.Full(2, 1), 7}))
	assert.Equal(t, 6.0, ops.Sum(ops.NewTensor(1, 2, 3)))
	assert.True(t, ops.NewTensor(1, 2).Equal(ops.NewTensor(1, 2)))
	assert.False(t, ops.NewTensor(1, 2).Equal(ops.NewTensor(1, 3)))
}
