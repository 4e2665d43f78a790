// SPDX-License-Identifier: MIT

package fx

// MapArg rebuilds arg, replacing every *Node (at any list depth) with fn(node).
// Literals are returned unchanged; lists are copied.
func MapArg(arg any, fn func(*Node) any) any {
	switch a := arg.(type) {
	case *Node:
		return fn(a)
	case []any:
		out := make([]any, len(a))
		for i := range a {
			out[i] = MapArg(a[i], fn)
		}

		return out
	default:
		return arg
	}
}

// copyArgs deep-copies an argument list so no nested list is shared with the caller.
func copyArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = MapArg(a, func(n *Node) any { return n })
	}

	return out
}

// forEachNode calls fn for every *Node reachable in arg, in order, duplicates included.
func forEachNode(arg any, fn func(*Node)) {
	switch a := arg.(type) {
	case *Node:
		fn(a)
	case []any:
		for i := range a {
			forEachNode(a[i], fn)
		}
	}
}

// InputNodes returns the distinct node arguments of n in first-seen order.
// Complexity: O(len(args)).
func InputNodes(n *Node) []*Node {
	seen := make(map[*Node]struct{}, len(n.args))
	out := make([]*Node, 0, len(n.args))
	for _, a := range n.args {
		forEachNode(a, func(in *Node) {
			if _, ok := seen[in]; ok {
				return
			}
			seen[in] = struct{}{}
			out = append(out, in)
		})
	}

	return out
}
