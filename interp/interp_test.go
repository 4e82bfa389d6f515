package interp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Golto/Lua-interpreter/vm"
)

// bare builds an interpreter with no libraries, to exercise the core
// evaluator in isolation.
func bare(t *testing.T) *Interpreter {
	t.Helper()
	return New(map[string]vm.NativeFunc{}, nil)
}

func TestExecReturnsLastCallValue(t *testing.T) {
	in := New(map[string]vm.NativeFunc{
		"double": func(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
			n, _ := vm.ToInt(args[0])
			return []vm.Value{vm.IntValue(n * 2)}, nil
		},
	}, nil)

	res, ok := in.Exec(`double(21)`)
	require.True(t, ok)
	require.Equal(t, []vm.Value{vm.IntValue(42)}, res)
}

func TestExecTopLevelReturn(t *testing.T) {
	res, ok := bare(t).Exec(`return 1, "two"`)
	require.True(t, ok)
	require.Equal(t, []vm.Value{vm.IntValue(1), vm.StringValue("two")}, res)
}

func TestExecSyntaxFaultDoesNotRaise(t *testing.T) {
	res, ok := bare(t).Exec(`local = 3`)
	require.False(t, ok)
	require.Len(t, res, 1)
	require.IsType(t, vm.StringValue(""), res[0])
}

func TestExecFaultPayloadReachesHost(t *testing.T) {
	in := bare(t)
	res, ok := in.Exec(`local x = nil; return x.field`)
	require.False(t, ok)
	require.Contains(t, vm.ToString(res[0]), "attempt to index a nil value")
}

func TestGlobalsPersistAcrossExec(t *testing.T) {
	in := bare(t)
	_, ok := in.Exec(`counter = 1`)
	require.True(t, ok)
	res, ok := in.Exec(`counter = counter + 1 return counter`)
	require.True(t, ok)
	require.Equal(t, []vm.Value{vm.IntValue(2)}, res)
}

func TestEnvironmentSnapshot(t *testing.T) {
	in := bare(t)
	_, ok := in.Exec(`answer = 42`)
	require.True(t, ok)

	env := in.Environment()
	require.Equal(t, vm.IntValue(42), env["answer"])

	// The snapshot map is detached from the interpreter.
	delete(env, "answer")
	require.Equal(t, vm.IntValue(42), in.Environment()["answer"])
}

func TestResetEnvironmentReinstallsFreshTables(t *testing.T) {
	lib := vm.Library{
		Name:       "cfg",
		Attributes: map[string]vm.Value{"limit": vm.IntValue(5)},
	}
	in := New(map[string]vm.NativeFunc{}, []vm.Library{lib})

	_, ok := in.Exec(`stash = cfg; cfg.limit = 99; junk = 1`)
	require.True(t, ok)
	before := in.Environment()["cfg"].(*vm.Table)

	in.ResetEnvironment()
	env := in.Environment()
	require.NotContains(t, env, "junk")
	require.NotContains(t, env, "stash")

	after, ok := env["cfg"].(*vm.Table)
	require.True(t, ok)
	require.NotSame(t, before, after, "reset must build a new table generation")
	require.Equal(t, vm.IntValue(5), after.Get(vm.StringValue("limit")), "script mutation must not survive the reset")
}

func TestStackOverflowIsCatchable(t *testing.T) {
	in := bare(t)
	res, ok := in.Exec(`
local function recurse()
    return recurse()
end
return recurse()
`)
	require.False(t, ok)
	require.Contains(t, vm.ToString(res[0]), "stack overflow")
}

func TestProtectedCallRecoversRuntimeFault(t *testing.T) {
	in := bare(t)
	res, err := in.m.ProtectedCall(vm.NewNative("boom", func(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
		return nil, vm.RuntimeFault("exploded")
	}), nil)
	require.NoError(t, err)
	require.Equal(t, vm.False, res[0])
	require.Equal(t, vm.StringValue("exploded"), res[1])
}

func TestProtectedCallWrapsHostError(t *testing.T) {
	in := bare(t)
	hostErr := vm.NewNative("host", func(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
		return nil, errPlain{}
	})
	res, err := in.m.ProtectedCall(hostErr, nil)
	require.NoError(t, err)
	require.Equal(t, vm.False, res[0])
	require.Equal(t, vm.StringValue("plain host failure"), res[1])
}

type errPlain struct{}

func (errPlain) Error() string { return "plain host failure" }

func TestModuleFaultKind(t *testing.T) {
	in := bare(t)
	_, err := in.m.Require("nowhere")
	require.Error(t, err)
	f := vm.AsFault(err)
	require.Equal(t, vm.FaultModuleNotFound, f.Kind)
}

func TestResumeDeadCoroutineFaultKind(t *testing.T) {
	in := bare(t)
	co := vm.NewCoroutine("test", &vm.Closure{Env: in.m.globals})
	co.Stat = vm.StatusDead
	_, err := in.m.Resume(co, nil)
	require.Error(t, err)
	require.Equal(t, vm.FaultCannotResume, vm.AsFault(err).Kind)
}

func TestNativeReceivesArgsVerbatim(t *testing.T) {
	var seen []vm.Value
	in := New(map[string]vm.NativeFunc{
		"spy": func(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
			seen = args
			return nil, nil
		},
	}, nil)
	_, ok := in.Exec(`spy(1, "a", nil, true)`)
	require.True(t, ok)
	require.Equal(t, []vm.Value{vm.IntValue(1), vm.StringValue("a"), vm.Nil, vm.True}, seen)
}
