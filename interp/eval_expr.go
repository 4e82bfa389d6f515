package interp

import (
	"github.com/milochristiansen/lua/ast"
	"github.com/rs/zerolog/log"

	"github.com/Golto/Lua-interpreter/vm"
)

// eval reduces an expression to a single value, truncating multi-value
// results to their first element.
func (m *machine) eval(e ast.Expr, env *vm.Env) (vm.Value, error) {
	switch n := e.(type) {
	case *ast.ConstNil:
		return vm.Nil, nil
	case *ast.ConstBool:
		return vm.BoolValue(n.Value), nil
	case *ast.ConstInt:
		v, ok := vm.ParseNumber(n.Value)
		if !ok {
			return nil, m.faultf("malformed number near '%s'", n.Value)
		}
		return v, nil
	case *ast.ConstFloat:
		v, ok := vm.ParseNumber(n.Value)
		if !ok {
			return nil, m.faultf("malformed number near '%s'", n.Value)
		}
		return v, nil
	case *ast.ConstString:
		return vm.StringValue(n.Value), nil
	case *ast.ConstIdent:
		return env.Get(n.Value), nil
	case *ast.ConstVariadic:
		va, ok := env.Varargs()
		if !ok {
			return nil, m.faultf("cannot use '...' outside a vararg function")
		}
		return first(va), nil
	case *ast.Parens:
		return m.eval(n.Inner, env)
	case *ast.Operator:
		return m.evalOperator(n, env)
	case *ast.FuncCall:
		res, err := m.evalCall(n, env)
		if err != nil {
			return nil, err
		}
		return first(res), nil
	case *ast.FuncDecl:
		return &vm.Closure{
			Params:   n.Params,
			Variadic: n.IsVariadic,
			Body:     n.Block,
			Env:      env,
		}, nil
	case *ast.TableConstructor:
		return m.evalTableConstructor(n, env)
	case *ast.TableAccessor:
		obj, err := m.eval(n.Obj, env)
		if err != nil {
			return nil, err
		}
		key, err := m.eval(n.Key, env)
		if err != nil {
			return nil, err
		}
		return m.Index(obj, key)
	default:
		return nil, m.faultf("unsupported expression node %T", e)
	}
}

// evalMulti evaluates an expression in multiple-value context. Only calls
// and '...' produce more (or fewer) than one value.
func (m *machine) evalMulti(e ast.Expr, env *vm.Env) ([]vm.Value, error) {
	switch n := e.(type) {
	case *ast.FuncCall:
		return m.evalCall(n, env)
	case *ast.ConstVariadic:
		va, ok := env.Varargs()
		if !ok {
			return nil, m.faultf("cannot use '...' outside a vararg function")
		}
		return va, nil
	default:
		v, err := m.eval(e, env)
		if err != nil {
			return nil, err
		}
		return []vm.Value{v}, nil
	}
}

// evalExprList evaluates an expression list with Lua's adjustment rule:
// every expression but the last is truncated to one value, the last
// expands in place, and the result is padded or cut to want entries
// (want < 0 keeps the natural length).
func (m *machine) evalExprList(exprs []ast.Expr, env *vm.Env, want int) ([]vm.Value, error) {
	var vals []vm.Value
	for i, e := range exprs {
		if i == len(exprs)-1 {
			tail, err := m.evalMulti(e, env)
			if err != nil {
				return nil, err
			}
			vals = append(vals, tail...)
			break
		}
		v, err := m.eval(e, env)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return adjust(vals, want), nil
}

// evalCall evaluates callee and arguments (left to right) and dispatches.
// Method-call sugar a:b(args) evaluates the receiver once and prepends it.
func (m *machine) evalCall(n *ast.FuncCall, env *vm.Env) ([]vm.Value, error) {
	var callee vm.Value
	var args []vm.Value

	if n.Receiver != nil {
		recv, err := m.eval(n.Receiver, env)
		if err != nil {
			return nil, err
		}
		name, err := m.eval(n.Function, env)
		if err != nil {
			return nil, err
		}
		callee, err = m.Index(recv, name)
		if err != nil {
			return nil, err
		}
		args = append(args, recv)
	} else {
		var err error
		callee, err = m.eval(n.Function, env)
		if err != nil {
			return nil, err
		}
	}

	rest, err := m.evalExprList(n.Args, env, -1)
	if err != nil {
		return nil, err
	}
	args = append(args, rest...)

	return m.Call(callee, args)
}

// Call implements vm.Runtime. It is the single entry point for every
// invocation: script calls, metamethods, natives and coroutine bodies.
func (m *machine) Call(fn vm.Value, args []vm.Value) ([]vm.Value, error) {
	if m.depth >= maxCallDepth {
		return nil, m.faultf("stack overflow")
	}
	m.depth++
	defer func() { m.depth-- }()

	switch f := fn.(type) {
	case *vm.Closure:
		frame := f.Env.Child()
		for i, p := range f.Params {
			if i < len(args) {
				frame.Declare(p, args[i])
			} else {
				frame.Declare(p, vm.Nil)
			}
		}
		if f.Variadic {
			extra := []vm.Value{}
			if len(args) > len(f.Params) {
				extra = args[len(f.Params):]
			}
			frame.SetVarargs(extra)
		} else {
			frame.SetVarargs(nil)
		}

		savedLine := m.line
		comp, vals, err := m.execBlock(f.Body, frame)
		m.line = savedLine
		if err != nil {
			return nil, err
		}
		if comp == compBreak {
			return nil, m.faultf("break outside a loop")
		}
		return vals, nil

	case *vm.Native:
		res, err := f.Fn(m, args)
		if err != nil {
			// Host-side errors never leak across the boundary as
			// host types; anything that is not already a fault
			// becomes a runtime fault.
			fault := vm.AsFault(err)
			log.Trace().Str("native", f.Name).Str("kind", fault.Kind.String()).Msg("native call faulted")
			return nil, fault
		}
		if res == nil {
			res = []vm.Value{}
		}
		return res, nil

	default:
		if h := m.metaField(fn, "__call"); h != nil {
			return m.Call(h, append([]vm.Value{fn}, args...))
		}
		return nil, m.faultf("attempt to call a %s value", fn.TypeName())
	}
}

func (m *machine) evalTableConstructor(n *ast.TableConstructor, env *vm.Env) (vm.Value, error) {
	t := vm.NewTableSize(len(n.Vals), 0)
	arrayIdx := int64(0)

	for i := range n.Vals {
		if n.Keys[i] == nil {
			// Positional entry. The final one expands multi-value
			// results into consecutive slots.
			if i == len(n.Vals)-1 {
				tail, err := m.evalMulti(n.Vals[i], env)
				if err != nil {
					return nil, err
				}
				for _, v := range tail {
					arrayIdx++
					if err := t.Set(vm.IntValue(arrayIdx), v); err != nil {
						return nil, err
					}
				}
				break
			}
			v, err := m.eval(n.Vals[i], env)
			if err != nil {
				return nil, err
			}
			arrayIdx++
			if err := t.Set(vm.IntValue(arrayIdx), v); err != nil {
				return nil, err
			}
			continue
		}

		key, err := m.eval(n.Keys[i], env)
		if err != nil {
			return nil, err
		}
		v, err := m.eval(n.Vals[i], env)
		if err != nil {
			return nil, err
		}
		if err := t.Set(key, v); err != nil {
			return nil, err
		}
	}
	return t, nil
}
