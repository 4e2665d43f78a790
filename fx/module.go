// SPDX-License-Identifier: MIT

package fx

import (
	"sort"

	"github.com/pkg/errors"
)

// Module is an executable unit a call_module node may target.
type Module interface {
	// Type returns the concrete module type.
	Type() ModuleType

	// Forward computes the module output.
	Forward(args ...Value) (Value, error)
}

// Based is implemented by modules that are instances of more general types
// (for example a MinMax observer is also an observer base).
type Based interface {
	BaseTypes() []ModuleType
}

// Parameterized is implemented by modules that own parameter memory.
type Parameterized interface {
	ParameterBytes() int64
}

// InstanceOf reports whether m is of type t or has t among its base types.
func InstanceOf(m Module, t ModuleType) bool {
	if m == nil {
		return false
	}
	if m.Type() == t {
		return true
	}
	if b, ok := m.(Based); ok {
		for _, bt := range b.BaseTypes() {
			if bt == t {
				return true
			}
		}
	}

	return false
}

// Owner resolves call_module and get_attr targets of a graph.
type Owner interface {
	Submodule(path string) (Module, bool)
	Attr(path string) (Value, bool)
}

// GraphModule couples a graph with the submodules and attributes it references.
// Paths are flat dotted names ("layers.0"); there is no nested lookup.
type GraphModule struct {
	graph   *Graph
	modules map[string]Module
	attrs   map[string]Value
}

// ModuleTypeGraph is the Type of every GraphModule.
const ModuleTypeGraph ModuleType = "fx.GraphModule"

// NewGraphModule wraps g; submodules and attributes are added with AddSubmodule / SetAttr.
func NewGraphModule(g *Graph) *GraphModule {
	return &GraphModule{
		graph:   g,
		modules: make(map[string]Module),
		attrs:   make(map[string]Value),
	}
}

// Graph returns the wrapped graph.
func (gm *GraphModule) Graph() *Graph { return gm.graph }

// AddSubmodule registers m at path, replacing any previous module.
func (gm *GraphModule) AddSubmodule(path string, m Module) { gm.modules[path] = m }

// SetAttr registers an attribute value at path.
func (gm *GraphModule) SetAttr(path string, v Value) { gm.attrs[path] = v }

// Submodule implements Owner.
func (gm *GraphModule) Submodule(path string) (Module, bool) {
	m, ok := gm.modules[path]

	return m, ok
}

// Attr implements Owner.
func (gm *GraphModule) Attr(path string) (Value, bool) {
	v, ok := gm.attrs[path]

	return v, ok
}

// SubmodulePaths returns the registered submodule paths, sorted.
func (gm *GraphModule) SubmodulePaths() []string {
	out := make([]string, 0, len(gm.modules))
	for p := range gm.modules {
		out = append(out, p)
	}
	sort.Strings(out)

	return out
}

// Type implements Module.
func (gm *GraphModule) Type() ModuleType { return ModuleTypeGraph }

// Forward implements Module by interpreting the graph.
func (gm *GraphModule) Forward(args ...Value) (Value, error) {
	return NewInterpreter(gm).Run(args...)
}

// ParameterBytes sums the parameter bytes of submodules and the size of attributes.
func (gm *GraphModule) ParameterBytes() int64 {
	var total int64
	for _, m := range gm.modules {
		if p, ok := m.(Parameterized); ok {
			total += p.ParameterBytes()
		}
	}
	for _, v := range gm.attrs {
		total += ValueBytes(v)
	}

	return total
}

// TargetTypeOf resolves the identity of a call node against owner.
// It returns false for non-call nodes and unresolvable module paths.
func TargetTypeOf(n *Node, owner Owner) (TargetType, bool) {
	switch n.op {
	case OpCallFunction:
		if n.fn == nil {
			return TargetType{}, false
		}

		return n.fn.Type(), true
	case OpCallModule:
		if owner == nil {
			return TargetType{}, false
		}
		m, ok := owner.Submodule(n.target)
		if !ok {
			return TargetType{}, false
		}

		return m.Type().Type(), true
	default:
		return TargetType{}, false
	}
}

// GetItem selects element i of a tuple value; the partitioner uses it to unpack
// multi-output submodules.
var GetItem = &Function{
	Name: "getitem",
	Impl: func(args ...Value) (Value, error) {
		if len(args) != 2 {
			return nil, errors.Wrapf(ErrArity, "getitem: got %d arguments", len(args))
		}
		tuple, ok := args[0].([]Value)
		if !ok {
			return nil, errors.Errorf("fx: getitem on %T", args[0])
		}
		i, ok := args[1].(int)
		if !ok || i < 0 || i >= len(tuple) {
			return nil, errors.Errorf("fx: getitem index %v out of range", args[1])
		}

		return tuple[i], nil
	},
}
