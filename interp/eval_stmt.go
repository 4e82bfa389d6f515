package interp

import (
	"github.com/milochristiansen/lua/ast"

	"github.com/Golto/Lua-interpreter/vm"
)

// completion is the non-local control signal a statement produces. Break
// and return unwind as explicit data, not as Go panics, so protected-call
// boundaries are ordinary inspection points.
type completion int

const (
	compNormal completion = iota
	compBreak
	compReturn
)

// execBlock runs a statement list in the given scope. The caller decides
// whether env is a fresh child scope; loops open one per iteration so
// closures capture distinct cells.
func (m *machine) execBlock(block []ast.Stmt, env *vm.Env) (completion, []vm.Value, error) {
	for _, stmt := range block {
		comp, vals, err := m.execStmt(stmt, env)
		if err != nil {
			return compNormal, nil, err
		}
		if comp != compNormal {
			return comp, vals, nil
		}
	}
	return compNormal, nil, nil
}

func (m *machine) execStmt(stmt ast.Stmt, env *vm.Env) (completion, []vm.Value, error) {
	if ln := stmt.Line(); ln > 0 {
		m.line = ln
	}

	switch n := stmt.(type) {
	case *ast.Assign:
		return compNormal, nil, m.execAssign(n, env)

	case *ast.FuncCall:
		_, err := m.evalCall(n, env)
		return compNormal, nil, err

	case *ast.DoBlock:
		return m.execBlock(n.Block, env.Child())

	case *ast.If:
		cond, err := m.eval(n.Cond, env)
		if err != nil {
			return compNormal, nil, err
		}
		if vm.Truthy(cond) {
			return m.execBlock(n.Then, env.Child())
		}
		return m.execBlock(n.Else, env.Child())

	case *ast.WhileLoop:
		for {
			cond, err := m.eval(n.Cond, env)
			if err != nil {
				return compNormal, nil, err
			}
			if !vm.Truthy(cond) {
				return compNormal, nil, nil
			}
			comp, vals, err := m.execBlock(n.Block, env.Child())
			if err != nil {
				return compNormal, nil, err
			}
			if comp == compBreak {
				return compNormal, nil, nil
			}
			if comp == compReturn {
				return compReturn, vals, nil
			}
		}

	case *ast.RepeatUntilLoop:
		for {
			// The until condition sees the loop body's locals, so it is
			// evaluated in the iteration scope.
			scope := env.Child()
			comp, vals, err := m.execBlock(n.Block, scope)
			if err != nil {
				return compNormal, nil, err
			}
			if comp == compBreak {
				return compNormal, nil, nil
			}
			if comp == compReturn {
				return compReturn, vals, nil
			}
			cond, err := m.eval(n.Cond, scope)
			if err != nil {
				return compNormal, nil, err
			}
			if vm.Truthy(cond) {
				return compNormal, nil, nil
			}
		}

	case *ast.ForLoopNumeric:
		return m.execNumericFor(n, env)

	case *ast.ForLoopGeneric:
		return m.execGenericFor(n, env)

	case *ast.Goto:
		if n.IsBreak {
			return compBreak, nil, nil
		}
		return compNormal, nil, m.faultf("goto '%s' is not supported", n.Label)

	case *ast.Label:
		return compNormal, nil, nil

	case *ast.Return:
		vals, err := m.evalExprList(n.Items, env, -1)
		if err != nil {
			return compNormal, nil, err
		}
		return compReturn, vals, nil

	default:
		return compNormal, nil, m.faultf("unsupported statement node %T", stmt)
	}
}

func (m *machine) execAssign(n *ast.Assign, env *vm.Env) error {
	// local function f: the name must be bound before the body is
	// evaluated so the closure can capture its own cell for recursion.
	if n.LocalFunc {
		name := n.Targets[0].(*ast.ConstIdent).Value
		cell := env.Declare(name, vm.Nil)
		v, err := m.eval(n.Values[0], env)
		if err != nil {
			return err
		}
		if cl, ok := v.(*vm.Closure); ok {
			cl.Name = name
		}
		cell.V = v
		return nil
	}

	// The parser recovers from "local = expr" by emitting an assignment
	// with no targets. Treat it as the malformed statement it is.
	if len(n.Targets) == 0 {
		return m.faultf("malformed assignment near '='")
	}

	vals, err := m.evalExprList(n.Values, env, len(n.Targets))
	if err != nil {
		return err
	}

	for i, target := range n.Targets {
		v := vals[i]
		switch tv := target.(type) {
		case *ast.ConstIdent:
			if cl, ok := v.(*vm.Closure); ok && cl.Name == "" {
				cl.Name = tv.Value
			}
			if n.LocalDecl {
				env.Declare(tv.Value, v)
			} else {
				env.Assign(tv.Value, v)
			}
		case *ast.TableAccessor:
			if n.LocalDecl {
				return m.faultf("cannot declare a table field as local")
			}
			obj, err := m.eval(tv.Obj, env)
			if err != nil {
				return err
			}
			key, err := m.eval(tv.Key, env)
			if err != nil {
				return err
			}
			if err := m.SetIndex(obj, key, v); err != nil {
				return err
			}
		default:
			return m.faultf("cannot assign to %T", target)
		}
	}
	return nil
}

func (m *machine) execNumericFor(n *ast.ForLoopNumeric, env *vm.Env) (completion, []vm.Value, error) {
	toNum := func(e ast.Expr, what string) (vm.Value, error) {
		raw, err := m.eval(e, env)
		if err != nil {
			return nil, err
		}
		num, ok := vm.ToNumber(raw)
		if !ok {
			return nil, m.faultf("'for' %s must be a number", what)
		}
		return num, nil
	}

	init, err := toNum(n.Init, "initial value")
	if err != nil {
		return compNormal, nil, err
	}
	limit, err := toNum(n.Limit, "limit")
	if err != nil {
		return compNormal, nil, err
	}
	step := vm.Value(vm.IntValue(1))
	if n.Step != nil {
		step, err = toNum(n.Step, "step")
		if err != nil {
			return compNormal, nil, err
		}
	}

	// Integer loop when every control value is an integer, float loop
	// otherwise, as in Lua 5.3.
	iInit, ok1 := init.(vm.IntValue)
	iLimit, ok2 := limit.(vm.IntValue)
	iStep, ok3 := step.(vm.IntValue)
	if ok1 && ok2 && ok3 {
		if iStep == 0 {
			return compNormal, nil, m.faultf("'for' step is zero")
		}
		for i := int64(iInit); (iStep > 0 && i <= int64(iLimit)) || (iStep < 0 && i >= int64(iLimit)); i += int64(iStep) {
			scope := env.Child()
			scope.Declare(n.Counter, vm.IntValue(i))
			comp, vals, err := m.execBlock(n.Block, scope)
			if err != nil {
				return compNormal, nil, err
			}
			if comp == compBreak {
				return compNormal, nil, nil
			}
			if comp == compReturn {
				return compReturn, vals, nil
			}
		}
		return compNormal, nil, nil
	}

	fInit, _ := vm.ToFloat(init)
	fLimit, _ := vm.ToFloat(limit)
	fStep, _ := vm.ToFloat(step)
	if fStep == 0 {
		return compNormal, nil, m.faultf("'for' step is zero")
	}
	for f := fInit; (fStep > 0 && f <= fLimit) || (fStep < 0 && f >= fLimit); f += fStep {
		scope := env.Child()
		scope.Declare(n.Counter, vm.FloatValue(f))
		comp, vals, err := m.execBlock(n.Block, scope)
		if err != nil {
			return compNormal, nil, err
		}
		if comp == compBreak {
			return compNormal, nil, nil
		}
		if comp == compReturn {
			return compReturn, vals, nil
		}
	}
	return compNormal, nil, nil
}

func (m *machine) execGenericFor(n *ast.ForLoopGeneric, env *vm.Env) (completion, []vm.Value, error) {
	ctrl, err := m.evalExprList(n.Init, env, 3)
	if err != nil {
		return compNormal, nil, err
	}
	iter, state, control := ctrl[0], ctrl[1], ctrl[2]

	for {
		res, err := m.Call(iter, []vm.Value{state, control})
		if err != nil {
			return compNormal, nil, err
		}
		res = adjust(res, len(n.Locals))
		if _, done := res[0].(vm.NilValue); done {
			return compNormal, nil, nil
		}
		control = res[0]

		scope := env.Child()
		for i, name := range n.Locals {
			scope.Declare(name, res[i])
		}
		comp, vals, err := m.execBlock(n.Block, scope)
		if err != nil {
			return compNormal, nil, err
		}
		if comp == compBreak {
			return compNormal, nil, nil
		}
		if comp == compReturn {
			return compReturn, vals, nil
		}
	}
}
