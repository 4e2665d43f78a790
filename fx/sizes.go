// SPDX-License-Identifier: MIT
//
// File: sizes.go
// Role: size-in-bytes pass. Runs the interpreter once and attaches SizeBytes to every node.

package fx

import "github.com/pkg/errors"

// ScalarBytes is the size charged to a scalar value (int, float, bool).
const ScalarBytes int64 = 8

// Sizer is implemented by values that know their storage size.
type Sizer interface {
	SizeBytes() int64
}

// ValueBytes returns the storage size of v. Tuples sum their elements; nil is 0;
// values that are neither Sizer nor tuple are charged ScalarBytes.
func ValueBytes(v Value) int64 {
	switch x := v.(type) {
	case nil:
		return 0
	case Sizer:
		return x.SizeBytes()
	case []Value:
		var total int64
		for _, e := range x {
			total += ValueBytes(e)
		}

		return total
	default:
		return ScalarBytes
	}
}

// AnnotateSizes executes gm on inputs and attaches a SizeBytes descriptor to every
// node of its graph. OutputSize is the size of the produced value; TotalSize adds
// the parameter bytes of the module a call_module node targets. The output node
// gets the size of the graph result.
func AnnotateSizes(gm *GraphModule, inputs ...Value) error {
	hook := func(n *Node, v Value) error {
		out := ValueBytes(v)
		total := out
		if n.op == OpCallModule {
			if m, ok := gm.Submodule(n.target); ok {
				if p, ok := m.(Parameterized); ok {
					total += p.ParameterBytes()
				}
			}
		}
		n.SetSizeBytes(SizeBytes{TotalSize: total, OutputSize: out})

		return nil
	}
	if _, err := NewInterpreter(gm, WithOnNode(hook)).Run(inputs...); err != nil {
		return errors.Wrap(err, "fx: size pass")
	}

	return nil
}
