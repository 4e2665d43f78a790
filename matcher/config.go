// SPDX-License-Identifier: MIT

package matcher

import (
	"github.com/emirpasic/gods/v2/sets/hashset"

	"github.com/katalvlaran/fxgraph/fx"
	"github.com/katalvlaran/fxgraph/ops"
)

// Config holds the tables that drive matching.
type Config struct {
	// NonMatchableFunctions are call_function targets never yielded as subgraphs
	// (compared by TargetType, so by function name).
	NonMatchableFunctions []*fx.Function

	// NonMatchableModules are module types (matched with fx.InstanceOf, so base
	// types cover their subtypes) never yielded as subgraphs.
	NonMatchableModules []fx.ModuleType

	// ReverseFusions are chains of single-input calls absorbed into one subgraph,
	// listed end first: {relu, linear} matches linear → relu.
	ReverseFusions [][]fx.TargetType

	// RelatedGroups are sets of mutually interchangeable target types.
	RelatedGroups [][]fx.TargetType
}

func fnType(f *fx.Function) fx.TargetType   { return f.Type() }
func modType(t fx.ModuleType) fx.TargetType { return t.Type() }

// DefaultConfig returns the standard tables. Each call builds new slices.
func DefaultConfig() Config {
	return Config{
		NonMatchableFunctions: []*fx.Function{ops.QuantizePerTensor, ops.Dequantize},
		NonMatchableModules:   []fx.ModuleType{ops.TypeObserverBase, ops.TypeFakeQuantizeBase},
		ReverseFusions: [][]fx.TargetType{
			{fnType(ops.Relu), fnType(ops.Linear)},
			{modType(ops.TypeReLU), modType(ops.TypeLinear)},
		},
		RelatedGroups: [][]fx.TargetType{
			// conv modules
			{modType(ops.TypeConv2d), modType(ops.TypeQuantizedConv2d), modType(ops.TypeQATConv2d), modType(ops.TypeConvBn2d)},
			// linear modules
			{
				modType(ops.TypeLinear), modType(ops.TypeQuantizedLinear), modType(ops.TypeQATLinear),
				modType(ops.TypeLinearReLU), modType(ops.TypeQuantizedLinearReLU),
			},
			// linear functionals
			{fnType(ops.Linear), fnType(ops.QLinear), fnType(ops.QLinearReLU)},
			// add
			{fnType(ops.Add), fnType(ops.QAdd), fnType(ops.OperatorAdd)},
			// cat
			{fnType(ops.Cat), fnType(ops.QCat)},
		},
	}
}

// typePair is an ordered pair of related target types.
type typePair struct{ a, b fx.TargetType }

// relation is the symmetric closure of RelatedGroups.
type relation struct {
	pairs *hashset.Set[typePair]
}

func newRelation(groups [][]fx.TargetType) relation {
	r := relation{pairs: hashset.New[typePair]()}
	for _, g := range groups {
		for i := 0; i < len(g); i++ {
			for j := i + 1; j < len(g); j++ {
				r.pairs.Add(typePair{g[i], g[j]}, typePair{g[j], g[i]})
			}
		}
	}

	return r
}

// related reports whether a (in graph A) and b (in graph B) compute the same
// operation: same op kind, and the same target type or a related pair.
func (r relation) related(a, b *fx.Node, ownerA, ownerB fx.Owner) bool {
	if a.Op() != b.Op() {
		return false
	}
	ta, okA := fx.TargetTypeOf(a, ownerA)
	tb, okB := fx.TargetTypeOf(b, ownerB)
	if !okA || !okB {
		return false
	}

	return ta == tb || r.pairs.Contains(typePair{ta, tb})
}
