// SPDX-License-Identifier: MIT
//
// File: modules.go
// Role: Module implementations usable as call_module targets.

package ops

import (
	"math"
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/fxgraph/fx"
)

// Module types of the catalog.
const (
	TypeLinear              fx.ModuleType = "nn.Linear"
	TypeReLU                fx.ModuleType = "nn.ReLU"
	TypeConv2d              fx.ModuleType = "nn.Conv2d"
	TypeEmbeddingBag        fx.ModuleType = "nn.EmbeddingBag"
	TypeQuantizedLinear     fx.ModuleType = "nnq.Linear"
	TypeQATLinear           fx.ModuleType = "nnqat.Linear"
	TypeLinearReLU          fx.ModuleType = "nni.LinearReLU"
	TypeQuantizedLinearReLU fx.ModuleType = "nniq.LinearReLU"
	TypeQuantizedConv2d     fx.ModuleType = "nnq.Conv2d"
	TypeQATConv2d           fx.ModuleType = "nnqat.Conv2d"
	TypeConvBn2d            fx.ModuleType = "nni.ConvBn2d"
	TypeObserverBase        fx.ModuleType = "quantization.ObserverBase"
	TypeMinMaxObserver      fx.ModuleType = "quantization.MinMaxObserver"
	TypeFakeQuantizeBase    fx.ModuleType = "quantization.FakeQuantizeBase"
	TypeFakeQuantize        fx.ModuleType = "quantization.FakeQuantize"
)

// quantSpec is the output grid of quantized modules; a nil spec means float output.
type quantSpec struct {
	scale     float64
	zeroPoint int
}

func (q *quantSpec) apply(t *Tensor) fx.Value {
	if q == nil {
		return t
	}

	return Quantize(t, q.scale, q.zeroPoint)
}

func singleTensor(name string, args []fx.Value) (*Tensor, error) {
	if err := checkArity(name, args, 1); err != nil {
		return nil, err
	}
	x, err := asTensor(args[0])
	if err != nil {
		return nil, errors.Wrap(err, name)
	}

	return x, nil
}

// LinearModule computes w·x + b, optionally followed by relu and requantization.
// The same struct backs float, QAT, fused and quantized linear module types.
type LinearModule struct {
	Weight *Matrix
	Bias   *Tensor // may be nil

	kind  fx.ModuleType
	relu  bool
	quant *quantSpec
}

// NewLinear returns an nn.Linear.
func NewLinear(w *Matrix, b *Tensor) *LinearModule {
	return &LinearModule{Weight: w, Bias: b, kind: TypeLinear}
}

// NewQATLinear returns an nnqat.Linear; numerically identical to NewLinear.
func NewQATLinear(w *Matrix, b *Tensor) *LinearModule {
	return &LinearModule{Weight: w, Bias: b, kind: TypeQATLinear}
}

// NewLinearReLU returns the fused nni.LinearReLU.
func NewLinearReLU(w *Matrix, b *Tensor) *LinearModule {
	return &LinearModule{Weight: w, Bias: b, kind: TypeLinearReLU, relu: true}
}

// NewQuantizedLinear returns an nnq.Linear producing a QTensor on (scale, zeroPoint).
func NewQuantizedLinear(w *Matrix, b *Tensor, scale float64, zeroPoint int) *LinearModule {
	return &LinearModule{Weight: w, Bias: b, kind: TypeQuantizedLinear, quant: &quantSpec{scale, zeroPoint}}
}

// NewQuantizedLinearReLU returns an nniq.LinearReLU producing a QTensor.
func NewQuantizedLinearReLU(w *Matrix, b *Tensor, scale float64, zeroPoint int) *LinearModule {
	return &LinearModule{Weight: w, Bias: b, kind: TypeQuantizedLinearReLU, relu: true, quant: &quantSpec{scale, zeroPoint}}
}

// Type implements fx.Module.
func (l *LinearModule) Type() fx.ModuleType { return l.kind }

// Forward implements fx.Module.
func (l *LinearModule) Forward(args ...fx.Value) (fx.Value, error) {
	x, err := singleTensor(string(l.kind), args)
	if err != nil {
		return nil, err
	}
	y, err := affine(x, l.Weight, l.Bias)
	if err != nil {
		return nil, err
	}
	if l.relu {
		y = relu(y)
	}

	return l.quant.apply(y), nil
}

// ParameterBytes implements fx.Parameterized. Quantized weights cost one byte per element.
func (l *LinearModule) ParameterBytes() int64 {
	n := l.Weight.SizeBytes()
	if l.Bias != nil {
		n += l.Bias.SizeBytes()
	}
	if l.quant != nil {
		n /= ElementBytes
	}

	return n
}

// ReLU is the module form of Relu.
type ReLU struct{}

// Type implements fx.Module.
func (ReLU) Type() fx.ModuleType { return TypeReLU }

// Forward implements fx.Module.
func (ReLU) Forward(args ...fx.Value) (fx.Value, error) {
	x, err := singleTensor("relu", args)
	if err != nil {
		return nil, err
	}

	return relu(x), nil
}

// ConvModule is a single-channel 1x1 convolution: y = Weight*x + Bias elementwise.
// The same struct backs float, QAT, conv-bn fused and quantized conv types.
type ConvModule struct {
	Weight float64
	Bias   float64

	kind  fx.ModuleType
	quant *quantSpec
}

// NewConv returns an nn.Conv2d.
func NewConv(weight, bias float64) *ConvModule {
	return &ConvModule{Weight: weight, Bias: bias, kind: TypeConv2d}
}

// NewQATConv returns an nnqat.Conv2d.
func NewQATConv(weight, bias float64) *ConvModule {
	return &ConvModule{Weight: weight, Bias: bias, kind: TypeQATConv2d}
}

// NewConvBn returns the fused nni.ConvBn2d with batch-norm folded into weight and bias.
func NewConvBn(weight, bias float64) *ConvModule {
	return &ConvModule{Weight: weight, Bias: bias, kind: TypeConvBn2d}
}

// NewQuantizedConv returns an nnq.Conv2d producing a QTensor.
func NewQuantizedConv(weight, bias, scale float64, zeroPoint int) *ConvModule {
	return &ConvModule{Weight: weight, Bias: bias, kind: TypeQuantizedConv2d, quant: &quantSpec{scale, zeroPoint}}
}

// Type implements fx.Module.
func (c *ConvModule) Type() fx.ModuleType { return c.kind }

// Forward implements fx.Module.
func (c *ConvModule) Forward(args ...fx.Value) (fx.Value, error) {
	x, err := singleTensor(string(c.kind), args)
	if err != nil {
		return nil, err
	}
	if x.Len() == 0 {
		return c.quant.apply(x), nil
	}
	var y mat.VecDense
	y.ScaleVec(c.Weight, x.vec)
	data := y.RawVector().Data
	for i := range data {
		data[i] += c.Bias
	}

	return c.quant.apply(fromVec(&y)), nil
}

// ParameterBytes implements fx.Parameterized.
func (c *ConvModule) ParameterBytes() int64 { return 2 * ElementBytes }

// EmbeddingBag looks up rows of Table by index and sums them.
type EmbeddingBag struct {
	Table *Matrix
}

// NewEmbeddingBag returns an nn.EmbeddingBag in sum mode.
func NewEmbeddingBag(table *Matrix) *EmbeddingBag { return &EmbeddingBag{Table: table} }

// Type implements fx.Module.
func (e *EmbeddingBag) Type() fx.ModuleType { return TypeEmbeddingBag }

// Forward implements fx.Module. The single argument is a tensor of row indices.
func (e *EmbeddingBag) Forward(args ...fx.Value) (fx.Value, error) {
	idx, err := singleTensor("embedding_bag", args)
	if err != nil {
		return nil, err
	}
	rows, cols := e.Table.Dims()
	out := mat.NewVecDense(cols, nil)
	for _, f := range idx.Data() {
		i := int(f)
		if float64(i) != f || i < 0 || i >= rows {
			return nil, errors.Wrapf(ErrShape, "embedding_bag: index %v out of %d rows", f, rows)
		}
		out.AddVec(out, e.Table.m.RowView(i))
	}

	return fromVec(out), nil
}

// ParameterBytes implements fx.Parameterized.
func (e *EmbeddingBag) ParameterBytes() int64 { return e.Table.SizeBytes() }

// MinMaxObserver records the running range of the values it sees and passes them through.
type MinMaxObserver struct {
	mu       sync.Mutex
	min, max float64
	seen     bool
}

// NewMinMaxObserver returns an observer with an empty range.
func NewMinMaxObserver() *MinMaxObserver { return &MinMaxObserver{} }

// Type implements fx.Module.
func (o *MinMaxObserver) Type() fx.ModuleType { return TypeMinMaxObserver }

// BaseTypes implements fx.Based.
func (o *MinMaxObserver) BaseTypes() []fx.ModuleType { return []fx.ModuleType{TypeObserverBase} }

// Forward implements fx.Module; the input is returned unchanged.
func (o *MinMaxObserver) Forward(args ...fx.Value) (fx.Value, error) {
	x, err := singleTensor("observer", args)
	if err != nil {
		return nil, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, v := range x.Data() {
		if !o.seen {
			o.min, o.max, o.seen = v, v, true
			continue
		}
		o.min = math.Min(o.min, v)
		o.max = math.Max(o.max, v)
	}

	return args[0], nil
}

// Range returns the observed minimum and maximum; ok is false before any value was seen.
func (o *MinMaxObserver) Range() (lo, hi float64, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.min, o.max, o.seen
}

// FakeQuantize rounds values onto a quantization grid but keeps them as floats.
type FakeQuantize struct {
	Scale     float64
	ZeroPoint int
}

// NewFakeQuantize returns a FakeQuantize on (scale, zeroPoint).
func NewFakeQuantize(scale float64, zeroPoint int) *FakeQuantize {
	return &FakeQuantize{Scale: scale, ZeroPoint: zeroPoint}
}

// Type implements fx.Module.
func (f *FakeQuantize) Type() fx.ModuleType { return TypeFakeQuantize }

// BaseTypes implements fx.Based.
func (f *FakeQuantize) BaseTypes() []fx.ModuleType { return []fx.ModuleType{TypeFakeQuantizeBase} }

// Forward implements fx.Module.
func (f *FakeQuantize) Forward(args ...fx.Value) (fx.Value, error) {
	x, err := singleTensor("fake_quantize", args)
	if err != nil {
		return nil, err
	}

	return Quantize(x, f.Scale, f.ZeroPoint).Dequantize(), nil
}
