// SPDX-License-Identifier: MIT

// Package ops is a small reference operator catalog for fx graphs.
//
// What:
//
//   - Values: Tensor (dense float64 vector over gonum mat.VecDense), Matrix
//     (gonum mat.Dense) and QTensor (per-tensor affine quantized, one byte per element).
//   - Functions: Add, Mul, Relu, Linear, Cat, QuantizePerTensor, Dequantize and
//     their quantized counterparts (QAdd, QCat, QLinear, QLinearReLU).
//   - Modules: Linear, ReLU, Conv (per-channel affine stand-in for a 1x1 convolution),
//     EmbeddingBag (sum mode), quantized / QAT / fused variants, MinMaxObserver
//     and FakeQuantize.
//
// Why:
//
//	The partitioner must prove that a partitioned module computes exactly what
//	the original graph computes, and the matcher needs realistic operator
//	identities (float, quantized, fused, instrumentation) to pair up. The catalog
//	gives both with deterministic float64 arithmetic.
//
// Sizes:
//
//	Tensor and Matrix cost ElementBytes per element, QTensor one byte per element.
//	Modules report their parameter storage through ParameterBytes.
//
// Errors:
//
//   - ErrShape   operand lengths or matrix dimensions disagree
//   - ErrType    an argument has the wrong runtime type
package ops
