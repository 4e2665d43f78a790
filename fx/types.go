// SPDX-License-Identifier: MIT
//
// File: types.go
// Role: Op tag, Node, Function, module identities, size metadata and sentinel errors.
// Policy:
//   - Node fields that encode graph topology are private; they change only through Graph.
//   - Identities used by the matcher (TargetType) are plain comparable values.

package fx

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors for IR construction and execution.
var (
	// ErrForeignNode indicates an argument references a node of another graph.
	ErrForeignNode = errors.New("fx: argument node belongs to another graph")

	// ErrArity indicates a wrong number of inputs for a graph or function.
	ErrArity = errors.New("fx: wrong number of arguments")

	// ErrUnknownTarget indicates a call_module or get_attr target that the owner cannot resolve.
	ErrUnknownTarget = errors.New("fx: unknown target")

	// ErrNoOutput indicates a graph without an output node.
	ErrNoOutput = errors.New("fx: graph has no output node")

	// ErrLint indicates a violated IR invariant.
	ErrLint = errors.New("fx: lint failed")
)

// Op is the closed set of node kinds.
type Op int

const (
	OpPlaceholder  Op = iota // graph input
	OpGetAttr                // constant or parameter fetched from the owner
	OpCallFunction           // call of a free Function
	OpCallModule             // call of a Module registered on the owner
	OpOutput                 // graph result
)

// String returns the canonical op name.
func (o Op) String() string {
	switch o {
	case OpPlaceholder:
		return "placeholder"
	case OpGetAttr:
		return "get_attr"
	case OpCallFunction:
		return "call_function"
	case OpCallModule:
		return "call_module"
	case OpOutput:
		return "output"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// IsCall reports whether the op performs computation (call_function or call_module).
func (o Op) IsCall() bool { return o == OpCallFunction || o == OpCallModule }

// Value is any runtime value flowing along graph edges.
type Value = any

// Function is a free function a call_function node may target.
// Two functions are the same target iff they are the same pointer.
type Function struct {
	// Name identifies the function in diagnostics and in TargetType. The matcher
	// compares functions by TargetType only, so two Functions sharing a Name are
	// the same target to it.
	Name string

	// Impl computes the result; list arguments arrive as []Value.
	Impl func(args ...Value) (Value, error)
}

// Type returns the matcher identity of f.
func (f *Function) Type() TargetType { return TargetType{Op: OpCallFunction, Name: f.Name} }

// String returns f.Name.
func (f *Function) String() string { return f.Name }

// ModuleType names the concrete type of a Module (for example "nn.Linear").
type ModuleType string

// Type returns the matcher identity of modules of type t.
func (t ModuleType) Type() TargetType { return TargetType{Op: OpCallModule, Name: string(t)} }

// TargetType is the opaque identity of what a call node computes:
// a function name for call_function, a module type for call_module.
type TargetType struct {
	Op   Op
	Name string
}

// String renders the identity as "<op>:<name>".
func (t TargetType) String() string { return t.Op.String() + ":" + t.Name }

// SizeBytes is the memory descriptor attached by the size pass.
type SizeBytes struct {
	// TotalSize is the output size plus any parameters the node owns.
	TotalSize int64

	// OutputSize is the size of the value the node produces.
	OutputSize int64
}

// Node is a single operation or value placeholder.
type Node struct {
	graph *Graph
	index int // program order within graph

	name   string
	op     Op
	fn     *Function // call_function only
	target string    // module path, attribute path or placeholder name
	args   []any     // *Node, literal, or []any

	users []*Node // ordered by first use
	size  *SizeBytes
}

// Name returns the unique node name.
func (n *Node) Name() string { return n.name }

// Op returns the node kind.
func (n *Node) Op() Op { return n.op }

// Fn returns the function of a call_function node, nil otherwise.
func (n *Node) Fn() *Function { return n.fn }

// Target returns the module path, attribute path or placeholder name.
// For call_function nodes it is the function name.
func (n *Node) Target() string {
	if n.op == OpCallFunction && n.fn != nil {
		return n.fn.Name
	}

	return n.target
}

// Args returns a deep copy of the argument list; nested lists are copied too.
func (n *Node) Args() []any { return copyArgs(n.args) }

// Arg returns a copy of argument i, or nil when out of range.
func (n *Node) Arg(i int) any {
	if i < 0 || i >= len(n.args) {
		return nil
	}

	return MapArg(n.args[i], func(in *Node) any { return in })
}

// Users returns a copy of the nodes consuming n, in first-use order.
func (n *Node) Users() []*Node {
	out := make([]*Node, len(n.users))
	copy(out, n.users)

	return out
}

// Index returns the program-order position of n in its graph.
func (n *Node) Index() int { return n.index }

// Graph returns the owning graph.
func (n *Node) Graph() *Graph { return n.graph }

// SizeBytes returns the attached size descriptor, or nil if the size pass has not run.
func (n *Node) SizeBytes() *SizeBytes { return n.size }

// SetSizeBytes attaches a size descriptor. It does not touch topology.
func (n *Node) SetSizeBytes(s SizeBytes) { n.size = &s }

// String returns the node name.
func (n *Node) String() string { return n.name }
