// SPDX-License-Identifier: MIT

package fx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var identity = &Function{Name: "identity", Impl: func(args ...Value) (Value, error) { return args[0], nil }}

func chain(t *testing.T) (*Graph, *Node, *Node, *Node) {
	t.Helper()
	g := NewGraph()
	x, err := g.Placeholder("x")
	require.NoError(t, err)
	a, err := g.CallFunction(identity, []any{x})
	require.NoError(t, err)
	b, err := g.CallFunction(identity, []any{a})
	require.NoError(t, err)
	require.NoError(t, g.Lint())

	return g, x, a, b
}

func TestLint_MissingUser(t *testing.T) {
	g, _, a, _ := chain(t)
	a.users = nil

	assert.ErrorIs(t, g.Lint(), ErrLint)
}

func TestLint_StaleUser(t *testing.T) {
	g, x, _, b := chain(t)
	x.users = append(x.users, b)

	err := g.Lint()
	assert.ErrorIs(t, err, ErrLint)
	assert.Contains(t, err.Error(), "does not use it")
}

func TestLint_Cycle(t *testing.T) {
	g, _, a, b := chain(t)
	// forge a back edge b → a on both ends, bypassing SetArgs
	a.args = append(a.args, b)
	b.users = append(b.users, a)

	assert.ErrorIs(t, g.Lint(), ErrLint)
}

func TestLint_Index(t *testing.T) {
	g, _, a, _ := chain(t)
	a.index = 7

	assert.ErrorIs(t, g.Lint(), ErrLint)
}
