// SPDX-License-Identifier: MIT
//
// File: split.go
// Role: materialize partitions as submodules and build the top-level graph.
// Invariants:
//   - Original nodes are never touched; every node of the result is new.
//   - Submodules are called in a topological order of the partition DAG.
//   - A submodule returns one value directly and several as a tuple unpacked with fx.GetItem.

package partition

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/katalvlaran/fxgraph/fx"
)

// submodule is the materialized form of one partition.
type submodule struct {
	gm      *fx.GraphModule
	inputs  []*fx.Node // original nodes passed in, in placeholder order
	outputs []*fx.Node // original members returned, in program order
}

// split builds the module with submodules and the DAG description.
func (pr *partitioner) split() (*fx.GraphModule, *DAG, error) {
	top := fx.NewGraph()
	gm := fx.NewGraphModule(top)
	env := make(map[*fx.Node]*fx.Node) // original node → top-level node

	// 1. Graph inputs
	for _, ph := range pr.g.Placeholders() {
		n, err := top.Placeholder(ph.Target(), fx.WithNodeName(ph.Name()))
		if err != nil {
			return nil, nil, err
		}
		env[ph] = n
	}
	// 2. One call per partition, parents first
	order, err := TopologicalOrder(pr.partitions)
	if err != nil {
		return nil, nil, err
	}
	dag := &DAG{Nodes: make([]*DAGNode, len(pr.partitions))}
	for _, p := range order {
		sub, err := pr.buildSubmodule(p)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "%v", p)
		}
		path := fmt.Sprintf("submod_%d", p.id)
		gm.AddSubmodule(path, sub.gm)
		args := make([]any, len(sub.inputs))
		for i, in := range sub.inputs {
			args[i] = env[in]
		}
		call, err := top.CallModule(path, args, fx.WithNodeName(path))
		if err != nil {
			return nil, nil, err
		}
		if err = unpack(top, call, sub.outputs, env); err != nil {
			return nil, nil, err
		}
		dag.Nodes[p.id] = &DAGNode{
			Partition:        p,
			SubmoduleNode:    call,
			InputNodes:       sub.inputs,
			OutputNodes:      sub.outputs,
			LogicalDeviceIDs: p.LogicalDeviceIDs(),
			SizeBytes:        p.SizeBytes(),
			Parents:          ids(p.Parents()),
			Children:         ids(p.Children()),
		}
	}
	// 3. Reproduce the output node
	outs := pr.g.OutputNodes()
	if len(outs) == 0 {
		return nil, nil, fx.ErrNoOutput
	}
	var ferr error
	result := fx.MapArg(outs[0].Arg(0), func(n *fx.Node) any {
		if m, ok := env[n]; ok {
			return m
		}
		if n.Op() != fx.OpGetAttr {
			ferr = errors.Errorf("partition: output references unmapped node %s", n.Name())
			return nil
		}
		// constants returned as-is are fetched at top level
		v, ok := pr.root.Attr(n.Target())
		if !ok {
			ferr = errors.Wrapf(fx.ErrUnknownTarget, "get_attr %q", n.Target())
			return nil
		}
		gm.SetAttr(n.Target(), v)
		a, err := top.GetAttr(n.Target(), fx.WithNodeName(n.Name()))
		if err != nil {
			ferr = err
			return nil
		}
		env[n] = a

		return a
	})
	if ferr != nil {
		return nil, nil, ferr
	}
	if _, err = top.Output(result); err != nil {
		return nil, nil, err
	}

	return gm, dag, nil
}

// buildSubmodule copies the induced subgraph of p into a fresh GraphModule.
func (pr *partitioner) buildSubmodule(p *Partition) (*submodule, error) {
	sg := fx.NewGraph()
	sub := &submodule{gm: fx.NewGraphModule(sg)}
	local := make(map[*fx.Node]*fx.Node)

	// 1. Inputs in first-encountered order; get_attr values are copied in
	for _, m := range p.members {
		for _, in := range fx.InputNodes(m) {
			if _, seen := local[in]; seen || p.Contains(in) {
				continue
			}
			var (
				ln  *fx.Node
				err error
			)
			if in.Op() == fx.OpGetAttr {
				v, ok := pr.root.Attr(in.Target())
				if !ok {
					return nil, errors.Wrapf(fx.ErrUnknownTarget, "get_attr %q", in.Target())
				}
				sub.gm.SetAttr(in.Target(), v)
				ln, err = sg.GetAttr(in.Target(), fx.WithNodeName(in.Name()))
			} else {
				ln, err = sg.Placeholder(in.Name())
				sub.inputs = append(sub.inputs, in)
			}
			if err != nil {
				return nil, err
			}
			local[in] = ln
		}
	}
	// 2. Members
	for _, m := range p.members {
		args := m.Args()
		for i, a := range args {
			args[i] = fx.MapArg(a, func(n *fx.Node) any { return local[n] })
		}
		var (
			ln  *fx.Node
			err error
		)
		switch m.Op() {
		case fx.OpCallFunction:
			ln, err = sg.CallFunction(m.Fn(), args, fx.WithNodeName(m.Name()))
		case fx.OpCallModule:
			mod, ok := pr.root.Submodule(m.Target())
			if !ok {
				return nil, errors.Wrapf(fx.ErrUnknownTarget, "call_module %q", m.Target())
			}
			sub.gm.AddSubmodule(m.Target(), mod)
			ln, err = sg.CallModule(m.Target(), args, fx.WithNodeName(m.Name()))
		default:
			err = errors.Errorf("partition: %s node %s cannot be a member", m.Op(), m.Name())
		}
		if err != nil {
			return nil, err
		}
		local[m] = ln
	}
	// 3. Outputs: members read outside the partition
	for _, m := range p.members {
		for _, u := range m.Users() {
			if !p.Contains(u) {
				sub.outputs = append(sub.outputs, m)
				break
			}
		}
	}
	var result any
	switch len(sub.outputs) {
	case 0:
	case 1:
		result = local[sub.outputs[0]]
	default:
		tuple := make([]any, len(sub.outputs))
		for i, o := range sub.outputs {
			tuple[i] = local[o]
		}
		result = tuple
	}
	if _, err := sg.Output(result); err != nil {
		return nil, err
	}

	return sub, nil
}

// unpack binds the values returned by a submodule call in env.
func unpack(top *fx.Graph, call *fx.Node, outputs []*fx.Node, env map[*fx.Node]*fx.Node) error {
	if len(outputs) == 1 {
		env[outputs[0]] = call

		return nil
	}
	for i, o := range outputs {
		gi, err := top.CallFunction(fx.GetItem, []any{call, i}, fx.WithNodeName(o.Name()))
		if err != nil {
			return err
		}
		env[o] = gi
	}

	return nil
}

func ids(ps []*Partition) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.id
	}

	return out
}
