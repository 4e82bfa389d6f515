package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Golto/Lua-interpreter/vm"
)

func TestCaptureRestoreScalars(t *testing.T) {
	in := map[string]vm.Value{
		"n":    vm.IntValue(42),
		"x":    vm.FloatValue(1.5),
		"s":    vm.StringValue("hello"),
		"flag": vm.True,
		"none": vm.Nil,
	}
	s, err := Capture(in)
	require.NoError(t, err)

	out, err := Restore(s)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestCaptureRestoreTableGraph(t *testing.T) {
	inner := vm.NewTable()
	require.NoError(t, inner.Set(vm.StringValue("k"), vm.IntValue(1)))

	a := vm.NewTable()
	require.NoError(t, a.Set(vm.StringValue("shared"), inner))
	b := vm.NewTable()
	require.NoError(t, b.Set(vm.StringValue("shared"), inner))

	s, err := Capture(map[string]vm.Value{"a": a, "b": b})
	require.NoError(t, err)

	out, err := Restore(s)
	require.NoError(t, err)

	ra := out["a"].(*vm.Table)
	rb := out["b"].(*vm.Table)
	sharedA := ra.Get(vm.StringValue("shared")).(*vm.Table)
	sharedB := rb.Get(vm.StringValue("shared")).(*vm.Table)
	require.Same(t, sharedA, sharedB, "shared table must restore as one instance")
	require.Equal(t, vm.IntValue(1), sharedA.Get(vm.StringValue("k")))
}

func TestCaptureRestoreSelfReference(t *testing.T) {
	cyclic := vm.NewTable()
	require.NoError(t, cyclic.Set(vm.StringValue("self"), cyclic))

	s, err := Capture(map[string]vm.Value{"t": cyclic})
	require.NoError(t, err)

	out, err := Restore(s)
	require.NoError(t, err)
	rt := out["t"].(*vm.Table)
	require.Same(t, rt, rt.Get(vm.StringValue("self")).(*vm.Table))
}

func TestCaptureRestoreMetatable(t *testing.T) {
	mt := vm.NewTable()
	require.NoError(t, mt.Set(vm.StringValue("__index"), vm.StringValue("fallback")))
	tbl := vm.NewTable()
	tbl.SetMeta(mt)

	s, err := Capture(map[string]vm.Value{"t": tbl})
	require.NoError(t, err)

	out, err := Restore(s)
	require.NoError(t, err)
	restored := out["t"].(*vm.Table)
	require.NotNil(t, restored.Meta())
	require.Equal(t, vm.StringValue("fallback"), restored.Meta().Get(vm.StringValue("__index")))
}

func TestCaptureSkipsHostBoundValues(t *testing.T) {
	fn := vm.NewNative("noop", func(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
		return nil, nil
	})
	s, err := Capture(map[string]vm.Value{
		"fn": fn,
		"n":  vm.IntValue(7),
	})
	require.NoError(t, err)

	out, err := Restore(s)
	require.NoError(t, err)
	require.NotContains(t, out, "fn")
	require.Equal(t, vm.IntValue(7), out["n"])
}

func TestDigestIsDeterministic(t *testing.T) {
	build := func() map[string]vm.Value {
		t1 := vm.NewTable()
		t1.Set(vm.StringValue("a"), vm.IntValue(1))
		t1.Set(vm.StringValue("b"), vm.IntValue(2))
		return map[string]vm.Value{"x": t1, "y": vm.StringValue("s")}
	}
	s1, err := Capture(build())
	require.NoError(t, err)
	s2, err := Capture(build())
	require.NoError(t, err)
	require.Equal(t, s1.Digest, s2.Digest)
}

func TestDigestChangesWithState(t *testing.T) {
	s1, err := Capture(map[string]vm.Value{"n": vm.IntValue(1)})
	require.NoError(t, err)
	s2, err := Capture(map[string]vm.Value{"n": vm.IntValue(2)})
	require.NoError(t, err)
	require.NotEqual(t, s1.Digest, s2.Digest)
}
