package stdlib

import (
	"github.com/google/uuid"

	"github.com/Golto/Lua-interpreter/vm"
)

func CoroutineLib() vm.Library {
	return vm.Library{
		Name: "coroutine",
		Methods: map[string]vm.NativeFunc{
			"create":      coroutineCreate,
			"resume":      coroutineResume,
			"yield":       coroutineYield,
			"status":      coroutineStatus,
			"wrap":        coroutineWrap,
			"running":     coroutineRunning,
			"isyieldable": coroutineIsYieldable,
		},
	}
}

func wantCoroutine(args []vm.Value, i int, fn string) (*vm.Coroutine, error) {
	v := arg(args, i)
	co, ok := v.(*vm.Coroutine)
	if !ok {
		return nil, badArg(i+1, fn, "coroutine", v)
	}
	return co, nil
}

func coroutineCreate(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	body, ok := arg(args, 0).(*vm.Closure)
	if !ok {
		return nil, badArg(1, "create", "function", arg(args, 0))
	}
	return []vm.Value{vm.NewCoroutine(uuid.NewString(), body)}, nil
}

// coroutineResume reports failure as (false, message) rather than a
// fault, so a dead coroutine or an error inside the body never unwinds
// the resumer.
func coroutineResume(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	co, err := wantCoroutine(args, 0, "resume")
	if err != nil {
		return nil, err
	}
	res, err := rt.Resume(co, args[1:])
	if err != nil {
		f := vm.AsFault(err)
		return []vm.Value{vm.False, f.Value}, nil
	}
	return append([]vm.Value{vm.True}, res...), nil
}

func coroutineYield(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	return rt.Yield(args)
}

func coroutineStatus(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	co, err := wantCoroutine(args, 0, "status")
	if err != nil {
		return nil, err
	}
	return []vm.Value{vm.StringValue(co.Stat.String())}, nil
}

// coroutineWrap returns a function that resumes the coroutine and, unlike
// resume, re-raises any fault into the caller.
func coroutineWrap(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	body, ok := arg(args, 0).(*vm.Closure)
	if !ok {
		return nil, badArg(1, "wrap", "function", arg(args, 0))
	}
	co := vm.NewCoroutine(uuid.NewString(), body)
	wrapped := func(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
		return rt.Resume(co, args)
	}
	return []vm.Value{vm.NewNative("coroutine.wrapped", wrapped)}, nil
}

func coroutineRunning(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	co, ok := rt.Running()
	if !ok {
		return []vm.Value{vm.Nil, vm.True}, nil
	}
	return []vm.Value{co, vm.False}, nil
}

func coroutineIsYieldable(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	_, ok := rt.Running()
	return []vm.Value{vm.BoolValue(ok)}, nil
}
