// SPDX-License-Identifier: MIT
//
// File: tensor.go
// Role: value types flowing along graph edges and their conversions.

package ops

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/fxgraph/fx"
)

var (
	// ErrShape indicates operands whose lengths or dimensions disagree.
	ErrShape = errors.New("ops: shape mismatch")

	// ErrType indicates an argument of an unexpected runtime type.
	ErrType = errors.New("ops: unexpected argument type")
)

// ElementBytes is the storage size of one float64 element.
const ElementBytes int64 = 8

// Tensor is a dense float64 vector. The zero-length tensor has a nil backing vector.
type Tensor struct {
	vec *mat.VecDense
}

// NewTensor copies data into a new tensor.
func NewTensor(data ...float64) *Tensor {
	if len(data) == 0 {
		return &Tensor{}
	}

	return &Tensor{vec: mat.NewVecDense(len(data), append([]float64(nil), data...))}
}

// Full returns a tensor of n copies of v.
func Full(n int, v float64) *Tensor {
	data := make([]float64, n)
	for i := range data {
		data[i] = v
	}

	return NewTensor(data...)
}

func fromVec(v *mat.VecDense) *Tensor { return &Tensor{vec: v} }

// Len returns the number of elements.
func (t *Tensor) Len() int {
	if t.vec == nil {
		return 0
	}

	return t.vec.Len()
}

// At returns element i.
func (t *Tensor) At(i int) float64 { return t.vec.AtVec(i) }

// Data returns a copy of the elements.
func (t *Tensor) Data() []float64 {
	out := make([]float64, t.Len())
	for i := range out {
		out[i] = t.vec.AtVec(i)
	}

	return out
}

// SizeBytes implements fx.Sizer.
func (t *Tensor) SizeBytes() int64 { return ElementBytes * int64(t.Len()) }

// Equal reports bit-for-bit equality of two tensors.
func (t *Tensor) Equal(o *Tensor) bool {
	if t.Len() != o.Len() {
		return false
	}
	for i := 0; i < t.Len(); i++ {
		if math.Float64bits(t.At(i)) != math.Float64bits(o.At(i)) {
			return false
		}
	}

	return true
}

// String renders the elements.
func (t *Tensor) String() string { return fmt.Sprint(t.Data()) }

// Matrix is a dense row-major float64 matrix, typically a weight.
type Matrix struct {
	m *mat.Dense
}

// NewMatrix builds a rows×cols matrix from row-major data (copied).
func NewMatrix(rows, cols int, data []float64) (*Matrix, error) {
	if rows <= 0 || cols <= 0 || len(data) != rows*cols {
		return nil, errors.Wrapf(ErrShape, "matrix %dx%d from %d values", rows, cols, len(data))
	}

	return &Matrix{m: mat.NewDense(rows, cols, append([]float64(nil), data...))}, nil
}

// Dims returns the matrix dimensions.
func (m *Matrix) Dims() (rows, cols int) { return m.m.Dims() }

// SizeBytes implements fx.Sizer.
func (m *Matrix) SizeBytes() int64 {
	r, c := m.m.Dims()

	return ElementBytes * int64(r*c)
}

// QTensor is a per-tensor affine quantized vector: real = (q - ZeroPoint) * Scale,
// with q clamped to [0, 255].
type QTensor struct {
	Values    []uint8
	Scale     float64
	ZeroPoint int
}

// SizeBytes implements fx.Sizer; one byte per element.
func (q *QTensor) SizeBytes() int64 { return int64(len(q.Values)) }

// Dequantize converts q back to a float tensor.
func (q *QTensor) Dequantize() *Tensor {
	data := make([]float64, len(q.Values))
	for i, v := range q.Values {
		data[i] = float64(int(v)-q.ZeroPoint) * q.Scale
	}

	return NewTensor(data...)
}

// Quantize maps t onto the affine grid (scale, zeroPoint).
func Quantize(t *Tensor, scale float64, zeroPoint int) *QTensor {
	q := &QTensor{Values: make([]uint8, t.Len()), Scale: scale, ZeroPoint: zeroPoint}
	for i := range q.Values {
		v := math.Round(t.At(i)/scale) + float64(zeroPoint)
		q.Values[i] = uint8(math.Max(0, math.Min(255, v)))
	}

	return q
}

// asTensor accepts a *Tensor or a *QTensor (dequantized on the fly).
func asTensor(v fx.Value) (*Tensor, error) {
	switch x := v.(type) {
	case *Tensor:
		return x, nil
	case *QTensor:
		return x.Dequantize(), nil
	default:
		return nil, errors.Wrapf(ErrType, "want tensor, got %T", v)
	}
}

func asMatrix(v fx.Value) (*Matrix, error) {
	m, ok := v.(*Matrix)
	if !ok {
		return nil, errors.Wrapf(ErrType, "want matrix, got %T", v)
	}

	return m, nil
}

// asFloat accepts float64 and int scalars.
func asFloat(v fx.Value) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	default:
		return 0, errors.Wrapf(ErrType, "want scalar, got %T", v)
	}
}

func asInt(v fx.Value) (int, error) {
	x, ok := v.(int)
	if !ok {
		return 0, errors.Wrapf(ErrType, "want int, got %T", v)
	}

	return x, nil
}

// affine computes w·x + b for a weight matrix and optional bias.
func affine(x *Tensor, w *Matrix, b *Tensor) (*Tensor, error) {
	rows, cols := w.Dims()
	if x.Len() != cols {
		return nil, errors.Wrapf(ErrShape, "linear: input %d, weight %dx%d", x.Len(), rows, cols)
	}
	var y mat.VecDense
	y.MulVec(w.m, x.vec)
	if b != nil {
		if b.Len() != rows {
			return nil, errors.Wrapf(ErrShape, "linear: bias %d, output %d", b.Len(), rows)
		}
		y.AddVec(&y, b.vec)
	}

	return fromVec(&y), nil
}

func relu(t *Tensor) *Tensor {
	data := t.Data()
	for i, v := range data {
		if v < 0 {
			data[i] = 0
		}
	}

	return NewTensor(data...)
}
