// SPDX-License-Identifier: MIT
//
// File: functions.go
// Role: free functions usable as call_function targets.
// Identity: each Function value is its own target; the matcher compares names.

package ops

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/fxgraph/fx"
)

// Float functions.
var (
	// Add is elementwise a + b; b may be a tensor of equal length or a scalar.
	Add = &fx.Function{Name: "add", Impl: addImpl}

	// OperatorAdd is the Python-operator spelling of Add; same semantics, different identity.
	OperatorAdd = &fx.Function{Name: "operator.add", Impl: addImpl}

	// Mul is elementwise a * b; b may be a tensor of equal length or a scalar.
	Mul = &fx.Function{Name: "mul", Impl: mulImpl}

	// Relu clamps negatives to zero.
	Relu = &fx.Function{Name: "relu", Impl: reluImpl}

	// Linear is the functional form w·x + b (bias optional).
	Linear = &fx.Function{Name: "linear", Impl: linearImpl}

	// Cat concatenates a list of tensors.
	Cat = &fx.Function{Name: "cat", Impl: catImpl}
)

// Quantization functions.
var (
	// QuantizePerTensor converts (x, scale, zeroPoint) into a QTensor.
	QuantizePerTensor = &fx.Function{Name: "quantize_per_tensor", Impl: quantizeImpl}

	// Dequantize converts a QTensor back to a Tensor.
	Dequantize = &fx.Function{Name: "dequantize", Impl: dequantizeImpl}

	// QAdd adds (a, b, scale, zeroPoint) and requantizes.
	QAdd = &fx.Function{Name: "quantized.add", Impl: requantized(2, addImpl)}

	// QCat concatenates (list, scale, zeroPoint) and requantizes.
	QCat = &fx.Function{Name: "quantized.cat", Impl: requantized(1, catImpl)}

	// QLinear is Linear on (x, w, b, scale, zeroPoint) with a quantized result.
	QLinear = &fx.Function{Name: "quantized.linear", Impl: requantized(3, linearImpl)}

	// QLinearReLU fuses QLinear and Relu.
	QLinearReLU = &fx.Function{Name: "quantized.linear_relu", Impl: requantized(3, func(args ...fx.Value) (fx.Value, error) {
		y, err := linearImpl(args...)
		if err != nil {
			return nil, err
		}

		return relu(y.(*Tensor)), nil
	})}
)

func checkArity(name string, args []fx.Value, want int) error {
	if len(args) != want {
		return errors.Wrapf(fx.ErrArity, "%s: want %d arguments, got %d", name, want, len(args))
	}

	return nil
}

// elementwise applies op to a tensor and a tensor-or-scalar operand.
func elementwise(name string, args []fx.Value, op func(a, b float64) float64) (fx.Value, error) {
	if err := checkArity(name, args, 2); err != nil {
		return nil, err
	}
	a, err := asTensor(args[0])
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	out := a.Data()
	if s, serr := asFloat(args[1]); serr == nil {
		for i := range out {
			out[i] = op(out[i], s)
		}

		return NewTensor(out...), nil
	}
	b, err := asTensor(args[1])
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	if b.Len() != a.Len() {
		return nil, errors.Wrapf(ErrShape, "%s: %d vs %d", name, a.Len(), b.Len())
	}
	for i := range out {
		out[i] = op(out[i], b.At(i))
	}

	return NewTensor(out...), nil
}

func addImpl(args ...fx.Value) (fx.Value, error) {
	return elementwise("add", args, func(a, b float64) float64 { return a + b })
}

func mulImpl(args ...fx.Value) (fx.Value, error) {
	return elementwise("mul", args, func(a, b float64) float64 { return a * b })
}

func reluImpl(args ...fx.Value) (fx.Value, error) {
	if err := checkArity("relu", args, 1); err != nil {
		return nil, err
	}
	x, err := asTensor(args[0])
	if err != nil {
		return nil, errors.Wrap(err, "relu")
	}

	return relu(x), nil
}

func linearImpl(args ...fx.Value) (fx.Value, error) {
	if len(args) != 2 && len(args) != 3 {
		return nil, errors.Wrapf(fx.ErrArity, "linear: want 2 or 3 arguments, got %d", len(args))
	}
	x, err := asTensor(args[0])
	if err != nil {
		return nil, errors.Wrap(err, "linear")
	}
	w, err := asMatrix(args[1])
	if err != nil {
		return nil, errors.Wrap(err, "linear")
	}
	var b *Tensor
	if len(args) == 3 && args[2] != nil {
		if b, err = asTensor(args[2]); err != nil {
			return nil, errors.Wrap(err, "linear")
		}
	}

	return affine(x, w, b)
}

func catImpl(args ...fx.Value) (fx.Value, error) {
	if err := checkArity("cat", args, 1); err != nil {
		return nil, err
	}
	list, ok := args[0].([]fx.Value)
	if !ok {
		return nil, errors.Wrapf(ErrType, "cat: want list, got %T", args[0])
	}
	var out []float64
	for _, v := range list {
		t, err := asTensor(v)
		if err != nil {
			return nil, errors.Wrap(err, "cat")
		}
		out = append(out, t.Data()...)
	}

	return NewTensor(out...), nil
}

func quantizeImpl(args ...fx.Value) (fx.Value, error) {
	if err := checkArity("quantize_per_tensor", args, 3); err != nil {
		return nil, err
	}
	x, err := asTensor(args[0])
	if err != nil {
		return nil, errors.Wrap(err, "quantize_per_tensor")
	}
	scale, zp, err := quantParams(args[1], args[2])
	if err != nil {
		return nil, errors.Wrap(err, "quantize_per_tensor")
	}

	return Quantize(x, scale, zp), nil
}

func dequantizeImpl(args ...fx.Value) (fx.Value, error) {
	if err := checkArity("dequantize", args, 1); err != nil {
		return nil, err
	}
	q, ok := args[0].(*QTensor)
	if !ok {
		return nil, errors.Wrapf(ErrType, "dequantize: want quantized tensor, got %T", args[0])
	}

	return q.Dequantize(), nil
}

func quantParams(scaleArg, zpArg fx.Value) (float64, int, error) {
	scale, err := asFloat(scaleArg)
	if err != nil {
		return 0, 0, err
	}
	if scale <= 0 {
		return 0, 0, errors.Errorf("ops: scale must be positive, got %v", scale)
	}
	zp, err := asInt(zpArg)
	if err != nil {
		return 0, 0, err
	}

	return scale, zp, nil
}

// requantized wraps a float implementation taking n operands so that it accepts
// two trailing (scale, zeroPoint) arguments and returns a QTensor.
func requantized(n int, impl func(args ...fx.Value) (fx.Value, error)) func(args ...fx.Value) (fx.Value, error) {
	return func(args ...fx.Value) (fx.Value, error) {
		if len(args) != n+2 {
			return nil, errors.Wrapf(fx.ErrArity, "quantized op: want %d arguments, got %d", n+2, len(args))
		}
		scale, zp, err := quantParams(args[n], args[n+1])
		if err != nil {
			return nil, err
		}
		y, err := impl(args[:n]...)
		if err != nil {
			return nil, err
		}

		return Quantize(y.(*Tensor), scale, zp), nil
	}
}

// Sum reduces t to its element sum. It is a helper for tests and examples.
func Sum(t *Tensor) float64 {
	if t.Len() == 0 {
		return 0
	}

	return mat.Sum(t.vec)
}
