package vm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvDeclareShadows(t *testing.T) {
	root := NewEnv(nil)
	root.Declare("x", IntValue(1))

	child := root.Child()
	child.Declare("x", IntValue(2))

	require.Equal(t, IntValue(2), child.Get("x"))
	require.Equal(t, IntValue(1), root.Get("x"))
}

func TestEnvUnsetReadsNil(t *testing.T) {
	e := NewEnv(nil)
	require.Equal(t, Nil, e.Get("missing"))
}

func TestEnvAssignFallsBackToGlobal(t *testing.T) {
	root := NewEnv(nil)
	inner := root.Child().Child()
	inner.Assign("g", StringValue("v"))

	require.Equal(t, StringValue("v"), root.Get("g"))
	_, ok := inner.vars["g"]
	require.False(t, ok)
}

func TestCellsAreSharedNotCopied(t *testing.T) {
	root := NewEnv(nil)
	cell := root.Declare("n", IntValue(0))

	// Two scopes resolving the same name see the same cell.
	a, b := root.Child(), root.Child()
	ca, ok := a.Resolve("n")
	require.True(t, ok)
	cb, ok := b.Resolve("n")
	require.True(t, ok)
	require.Same(t, cell, ca)
	require.Same(t, cell, cb)

	ca.V = IntValue(9)
	require.Equal(t, IntValue(9), cb.V)
}

func TestEnvVarargs(t *testing.T) {
	frame := NewEnv(nil)
	frame.SetVarargs([]Value{IntValue(1), IntValue(2)})

	block := frame.Child().Child()
	va, ok := block.Varargs()
	require.True(t, ok)
	require.Len(t, va, 2)

	_, ok = NewEnv(nil).Varargs()
	require.False(t, ok)

	// A non-variadic frame blocks the enclosing frame's varargs.
	inner := frame.Child()
	inner.SetVarargs(nil)
	_, ok = inner.Child().Varargs()
	require.False(t, ok)
}
