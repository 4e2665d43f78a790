// SPDX-License-Identifier: MIT

package fx

import (
	"github.com/pkg/errors"
)

// Interpreter executes a GraphModule node by node in program order.
type Interpreter struct {
	gm     *GraphModule
	onNode func(n *Node, v Value) error
}

// InterpreterOption configures an Interpreter.
type InterpreterOption func(*Interpreter)

// WithOnNode installs a hook invoked after every node produces its value.
// Returning an error aborts the run with that error.
func WithOnNode(fn func(n *Node, v Value) error) InterpreterOption {
	return func(it *Interpreter) { it.onNode = fn }
}

// NewInterpreter returns an interpreter bound to gm.
func NewInterpreter(gm *GraphModule, opts ...InterpreterOption) *Interpreter {
	it := &Interpreter{gm: gm}
	for _, opt := range opts {
		opt(it)
	}

	return it
}

// Run feeds inputs to the placeholders (in order) and returns the value of the
// first output node.
func (it *Interpreter) Run(inputs ...Value) (Value, error) {
	g := it.gm.graph
	placeholders := g.Placeholders()
	if len(inputs) != len(placeholders) {
		return nil, errors.Wrapf(ErrArity, "graph takes %d inputs, got %d", len(placeholders), len(inputs))
	}

	env := make(map[*Node]Value, g.Len())
	next := 0
	for _, n := range g.nodes {
		var (
			v   Value
			err error
		)
		switch n.op {
		case OpPlaceholder:
			v = inputs[next]
			next++
		case OpGetAttr:
			var ok bool
			if v, ok = it.gm.Attr(n.target); !ok {
				return nil, errors.Wrapf(ErrUnknownTarget, "get_attr %q", n.target)
			}
		case OpCallFunction:
			v, err = n.fn.Impl(load(n.args, env)...)
			if err != nil {
				return nil, errors.Wrapf(err, "node %s", n.name)
			}
		case OpCallModule:
			m, ok := it.gm.Submodule(n.target)
			if !ok {
				return nil, errors.Wrapf(ErrUnknownTarget, "call_module %q", n.target)
			}
			v, err = m.Forward(load(n.args, env)...)
			if err != nil {
				return nil, errors.Wrapf(err, "node %s", n.name)
			}
		case OpOutput:
			out := load(n.args, env)[0]
			if it.onNode != nil {
				if err = it.onNode(n, out); err != nil {
					return nil, err
				}
			}

			return out, nil
		}
		env[n] = v
		if it.onNode != nil {
			if err = it.onNode(n, v); err != nil {
				return nil, err
			}
		}
	}

	return nil, ErrNoOutput
}

// load materializes arguments: nodes become their values, lists become []Value.
func load(args []any, env map[*Node]Value) []Value {
	out := make([]Value, len(args))
	for i, a := range args {
		out[i] = MapArg(a, func(n *Node) any { return env[n] })
	}

	return out
}
