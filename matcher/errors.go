// SPDX-License-Identifier: MIT

package matcher

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/katalvlaran/fxgraph/fx"
)

// ErrGraphMatching is wrapped by every matching failure.
var ErrGraphMatching = errors.New("matcher: graphs cannot be matched")

// MismatchKind classifies a matching failure.
type MismatchKind int

const (
	// CountMismatch means one graph ran out of matchable subgraphs before the other.
	CountMismatch MismatchKind = iota
	// NotRelated means two paired start nodes compute unrelated operations.
	NotRelated
)

func (k MismatchKind) String() string {
	if k == NotRelated {
		return "not related"
	}

	return "count mismatch"
}

// GraphMatchingError pinpoints where two graphs diverge. For NotRelated, NodeA and
// NodeB are the start nodes; for CountMismatch, the end node of the side that still
// had a subgraph is set and the other is nil. TypeA/TypeB are the target types of
// the end nodes, nil when unknown.
type GraphMatchingError struct {
	Kind         MismatchKind
	NodeA, NodeB *fx.Node
	TypeA, TypeB *fx.TargetType
}

func (e *GraphMatchingError) Error() string {
	switch e.Kind {
	case NotRelated:
		return fmt.Sprintf("%v: (%s, %s) and (%s, %s) are not related",
			ErrGraphMatching, nodeName(e.NodeA), typeName(e.TypeA), nodeName(e.NodeB), typeName(e.TypeB))
	default:
		return fmt.Sprintf("%v: matchable nodes count mismatch: (%s, %s) and (%s, %s)",
			ErrGraphMatching, nodeName(e.NodeA), typeName(e.TypeA), nodeName(e.NodeB), typeName(e.TypeB))
	}
}

// Unwrap returns ErrGraphMatching.
func (e *GraphMatchingError) Unwrap() error { return ErrGraphMatching }

func nodeName(n *fx.Node) string {
	if n == nil {
		return "<none>"
	}

	return n.Name()
}

func typeName(t *fx.TargetType) string {
	if t == nil {
		return "<none>"
	}

	return t.String()
}

// targetType resolves the type of n against owner for diagnostics.
func targetType(n *fx.Node, owner fx.Owner) *fx.TargetType {
	if n == nil {
		return nil
	}
	t, ok := fx.TargetTypeOf(n, owner)
	if !ok {
		return nil
	}

	return &t
}
