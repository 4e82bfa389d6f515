// Package stdlib provides the script-visible standard functions and
// libraries: the loose base functions (print, pcall, pairs, ...) and the
// string, table, math, os, coroutine and package libraries. Everything is
// expressed as native-function descriptors over the vm types; the
// interpreter installs them at construction and on every reset.
package stdlib

import (
	"strconv"
	"strings"

	"github.com/Golto/Lua-interpreter/vm"
)

// arg returns the i-th argument or Nil.
func arg(args []vm.Value, i int) vm.Value {
	if i < len(args) {
		return args[i]
	}
	return vm.Nil
}

// badArg builds the conventional bad-argument fault.
func badArg(i int, fn, want string, got vm.Value) error {
	return vm.RuntimeFault("bad argument #%d to '%s' (%s expected, got %s)", i, fn, want, got.TypeName())
}

func wantTable(args []vm.Value, i int, fn string) (*vm.Table, error) {
	v := arg(args, i)
	t, ok := v.(*vm.Table)
	if !ok {
		return nil, badArg(i+1, fn, "table", v)
	}
	return t, nil
}

func wantString(args []vm.Value, i int, fn string) (string, error) {
	switch v := arg(args, i).(type) {
	case vm.StringValue:
		return string(v), nil
	case vm.IntValue, vm.FloatValue:
		// Numbers coerce to strings wherever a string is expected.
		return vm.ToString(v), nil
	default:
		return "", badArg(i+1, fn, "string", v)
	}
}

func wantInt(args []vm.Value, i int, fn string) (int64, error) {
	v := arg(args, i)
	n, ok := vm.ToInt(v)
	if !ok {
		return 0, badArg(i+1, fn, "number", v)
	}
	return n, nil
}

func wantFloat(args []vm.Value, i int, fn string) (float64, error) {
	v := arg(args, i)
	f, ok := vm.ToFloat(v)
	if !ok {
		return 0, badArg(i+1, fn, "number", v)
	}
	return f, nil
}

func optInt(args []vm.Value, i int, fn string, def int64) (int64, error) {
	if _, missing := arg(args, i).(vm.NilValue); missing {
		return def, nil
	}
	return wantInt(args, i, fn)
}

// Base returns the loose functions bound directly into the globals.
func Base() map[string]vm.NativeFunc {
	return map[string]vm.NativeFunc{
		"print":        basePrint,
		"type":         baseType,
		"tostring":     baseToString,
		"tonumber":     baseToNumber,
		"assert":       baseAssert,
		"error":        baseError,
		"next":         baseNext,
		"select":       baseSelect,
		"rawget":       baseRawGet,
		"rawset":       baseRawSet,
		"rawequal":     baseRawEqual,
		"rawlen":       baseRawLen,
		"setmetatable": baseSetMetatable,
		"getmetatable": baseGetMetatable,
		"pairs":        basePairs,
		"ipairs":       baseIPairs,
		"pcall":        basePCall,
		"xpcall":       baseXPCall,
		"unpack":       baseUnpack,
		"require":      baseRequire,
	}
}

func basePrint(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	parts := make([]string, len(args))
	for i, v := range args {
		s, err := rt.Display(v)
		if err != nil {
			return nil, err
		}
		parts[i] = s
	}
	rt.Print(strings.Join(parts, " "))
	return nil, nil
}

func baseType(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	return []vm.Value{vm.StringValue(arg(args, 0).TypeName())}, nil
}

func baseToString(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	s, err := rt.Display(arg(args, 0))
	if err != nil {
		return nil, err
	}
	return []vm.Value{vm.StringValue(s)}, nil
}

func baseToNumber(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	v := arg(args, 0)
	if len(args) >= 2 {
		if _, isNil := args[1].(vm.NilValue); !isNil {
			base, err := wantInt(args, 1, "tonumber")
			if err != nil {
				return nil, err
			}
			s, err := wantString(args, 0, "tonumber")
			if err != nil {
				return nil, err
			}
			n, perr := strconv.ParseInt(strings.TrimSpace(s), int(base), 64)
			if perr != nil {
				return []vm.Value{vm.Nil}, nil
			}
			return []vm.Value{vm.IntValue(n)}, nil
		}
	}
	if n, ok := vm.ToNumber(v); ok {
		return []vm.Value{n}, nil
	}
	return []vm.Value{vm.Nil}, nil
}

func baseAssert(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	v := arg(args, 0)
	if vm.Truthy(v) {
		return args, nil
	}
	if len(args) >= 2 {
		return nil, vm.UserFault(args[1])
	}
	return nil, vm.RuntimeFault("assertion failed!")
}

// baseError raises a payload-preserving user fault. String payloads get a
// positional prefix unless level is 0.
func baseError(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	payload := arg(args, 0)
	level, err := optInt(args, 1, "error", 1)
	if err != nil {
		return nil, err
	}
	if s, isStr := payload.(vm.StringValue); isStr && level > 0 {
		payload = vm.StringValue(rt.Where() + string(s))
	}
	return nil, vm.UserFault(payload)
}

func baseNext(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	t, err := wantTable(args, 0, "next")
	if err != nil {
		return nil, err
	}
	k, v, err := t.Next(arg(args, 1))
	if err != nil {
		return nil, err
	}
	if _, done := k.(vm.NilValue); done {
		return []vm.Value{vm.Nil}, nil
	}
	return []vm.Value{k, v}, nil
}

func baseSelect(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	sel := arg(args, 0)
	rest := args[1:]
	if s, ok := sel.(vm.StringValue); ok && string(s) == "#" {
		return []vm.Value{vm.IntValue(int64(len(rest)))}, nil
	}
	n, ok := vm.ToInt(sel)
	if !ok || n == 0 {
		return nil, badArg(1, "select", "index out of range", sel)
	}
	if n < 0 {
		n += int64(len(rest))
		if n < 0 {
			return nil, badArg(1, "select", "index out of range", sel)
		}
		return rest[n:], nil
	}
	if n > int64(len(rest)) {
		return []vm.Value{}, nil
	}
	return rest[n-1:], nil
}

func baseRawGet(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	t, err := wantTable(args, 0, "rawget")
	if err != nil {
		return nil, err
	}
	return []vm.Value{t.Get(arg(args, 1))}, nil
}

func baseRawSet(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	t, err := wantTable(args, 0, "rawset")
	if err != nil {
		return nil, err
	}
	if err := t.Set(arg(args, 1), arg(args, 2)); err != nil {
		return nil, err
	}
	return []vm.Value{t}, nil
}

func baseRawEqual(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	return []vm.Value{vm.BoolValue(vm.Equal(arg(args, 0), arg(args, 1)))}, nil
}

func baseRawLen(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	switch v := arg(args, 0).(type) {
	case *vm.Table:
		return []vm.Value{vm.IntValue(int64(v.Len()))}, nil
	case vm.StringValue:
		return []vm.Value{vm.IntValue(int64(len(v)))}, nil
	default:
		return nil, badArg(1, "rawlen", "table or string", v)
	}
}

func baseSetMetatable(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	t, err := wantTable(args, 0, "setmetatable")
	if err != nil {
		return nil, err
	}
	if cur := t.Meta(); cur != nil {
		if _, guarded := cur.Get(vm.StringValue("__metatable")).(vm.NilValue); !guarded {
			return nil, vm.RuntimeFault("cannot change a protected metatable")
		}
	}
	switch mt := arg(args, 1).(type) {
	case vm.NilValue:
		t.SetMeta(nil)
	case *vm.Table:
		t.SetMeta(mt)
	default:
		return nil, badArg(2, "setmetatable", "nil or table", mt)
	}
	return []vm.Value{t}, nil
}

func baseGetMetatable(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	t, ok := arg(args, 0).(*vm.Table)
	if !ok {
		return []vm.Value{vm.Nil}, nil
	}
	mt := t.Meta()
	if mt == nil {
		return []vm.Value{vm.Nil}, nil
	}
	if guard := mt.Get(vm.StringValue("__metatable")); vm.Truthy(guard) {
		return []vm.Value{guard}, nil
	}
	return []vm.Value{mt}, nil
}

func basePairs(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	t, err := wantTable(args, 0, "pairs")
	if err != nil {
		return nil, err
	}
	if mt := t.Meta(); mt != nil {
		if h := mt.Get(vm.StringValue("__pairs")); vm.Truthy(h) {
			return rt.Call(h, []vm.Value{t})
		}
	}
	return []vm.Value{vm.NewNative("next", baseNext), t, vm.Nil}, nil
}

func baseIPairs(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	t := arg(args, 0)
	iter := vm.NewNative("ipairs.iterator", func(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
		i, err := wantInt(args, 1, "ipairs")
		if err != nil {
			return nil, err
		}
		i++
		v, err := rt.Index(arg(args, 0), vm.IntValue(i))
		if err != nil {
			return nil, err
		}
		if _, done := v.(vm.NilValue); done {
			return []vm.Value{vm.Nil}, nil
		}
		return []vm.Value{vm.IntValue(i), v}, nil
	})
	return []vm.Value{iter, t, vm.IntValue(0)}, nil
}

func basePCall(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	if len(args) == 0 {
		return nil, badArg(1, "pcall", "value", vm.Nil)
	}
	return rt.ProtectedCall(args[0], args[1:])
}

func baseXPCall(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	if len(args) < 2 {
		return nil, badArg(2, "xpcall", "value", arg(args, 1))
	}
	return rt.ProtectedCallHandled(args[0], args[1], args[2:])
}

func baseUnpack(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	t, err := wantTable(args, 0, "unpack")
	if err != nil {
		return nil, err
	}
	from, err := optInt(args, 1, "unpack", 1)
	if err != nil {
		return nil, err
	}
	to, err := optInt(args, 2, "unpack", int64(t.Len()))
	if err != nil {
		return nil, err
	}
	var out []vm.Value
	for i := from; i <= to; i++ {
		out = append(out, t.Get(vm.IntValue(i)))
	}
	return out, nil
}

func baseRequire(rt vm.Runtime, args []vm.Value) ([]vm.Value, error) {
	name, err := wantString(args, 0, "require")
	if err != nil {
		return nil, err
	}
	mod, err := rt.Require(name)
	if err != nil {
		return nil, err
	}
	return []vm.Value{mod}, nil
}
