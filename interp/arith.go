package interp

import (
	"math"
	"strings"

	"github.com/milochristiansen/lua/ast"

	"github.com/Golto/Lua-interpreter/vm"
)

// The parser's operator type is unexported, so operators travel through
// this package as plain ints converted at the evaluation boundary.
var (
	opAdd       = int(ast.OpAdd)
	opSub       = int(ast.OpSub)
	opMul       = int(ast.OpMul)
	opMod       = int(ast.OpMod)
	opPow       = int(ast.OpPow)
	opDiv       = int(ast.OpDiv)
	opIDiv      = int(ast.OpIDiv)
	opBinAND    = int(ast.OpBinAND)
	opBinOR     = int(ast.OpBinOR)
	opBinXOR    = int(ast.OpBinXOR)
	opBinShiftL = int(ast.OpBinShiftL)
	opBinShiftR = int(ast.OpBinShiftR)
	opUMinus    = int(ast.OpUMinus)
	opBinNot    = int(ast.OpBinNot)
	opNot       = int(ast.OpNot)
	opLength    = int(ast.OpLength)
	opConcat    = int(ast.OpConcat)
	opEqual     = int(ast.OpEqual)
	opNotEqual  = int(ast.OpNotEqual)
	opLess      = int(ast.OpLessThan)
	opGreater   = int(ast.OpGreaterThan)
	opLessEq    = int(ast.OpLessOrEqual)
	opGreaterEq = int(ast.OpGreaterOrEqual)
)

// Metamethod event names for the overridable operators.
var arithEvents = map[int]string{}

func init() {
	arithEvents[opAdd] = "__add"
	arithEvents[opSub] = "__sub"
	arithEvents[opMul] = "__mul"
	arithEvents[opDiv] = "__div"
	arithEvents[opMod] = "__mod"
	arithEvents[opPow] = "__pow"
	arithEvents[opIDiv] = "__idiv"
	arithEvents[opBinAND] = "__band"
	arithEvents[opBinOR] = "__bor"
	arithEvents[opBinXOR] = "__bxor"
	arithEvents[opBinShiftL] = "__shl"
	arithEvents[opBinShiftR] = "__shr"
}

func (m *machine) evalOperator(n *ast.Operator, env *vm.Env) (vm.Value, error) {
	// Short-circuit operators control evaluation of their right side and
	// never consult metatables.
	if n.Op == ast.OpAnd {
		left, err := m.eval(n.Left, env)
		if err != nil {
			return nil, err
		}
		if !vm.Truthy(left) {
			return left, nil
		}
		return m.eval(n.Right, env)
	}
	if n.Op == ast.OpOr {
		left, err := m.eval(n.Left, env)
		if err != nil {
			return nil, err
		}
		if vm.Truthy(left) {
			return left, nil
		}
		return m.eval(n.Right, env)
	}

	// Unary operators carry their operand on the right.
	if n.Left == nil {
		operand, err := m.eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		return m.unaryOp(int(n.Op), operand)
	}

	left, err := m.eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := m.eval(n.Right, env)
	if err != nil {
		return nil, err
	}
	return m.binaryOp(int(n.Op), left, right)
}

func (m *machine) binaryOp(op int, left, right vm.Value) (vm.Value, error) {
	switch op {
	case opAdd, opSub, opMul, opMod, opIDiv:
		return m.arith(op, left, right)
	case opDiv, opPow:
		return m.floatArith(op, left, right)
	case opBinAND, opBinOR, opBinXOR, opBinShiftL, opBinShiftR:
		return m.bitwise(op, left, right)
	case opConcat:
		return m.concat(left, right)
	case opEqual:
		eq, err := m.valuesEqual(left, right)
		return vm.BoolValue(eq), err
	case opNotEqual:
		eq, err := m.valuesEqual(left, right)
		return vm.BoolValue(!eq), err
	case opLess:
		return m.order(left, right, false, false)
	case opLessEq:
		return m.order(left, right, true, false)
	case opGreater:
		return m.order(right, left, false, true)
	case opGreaterEq:
		return m.order(right, left, true, true)
	default:
		return nil, m.faultf("unsupported binary operator %d", op)
	}
}

// arith handles +, -, *, %, // with the integer-preserving rule: integer
// operands give an integer result, everything else goes through floats.
func (m *machine) arith(op int, left, right vm.Value) (vm.Value, error) {
	ln, lok := vm.ToNumber(left)
	rn, rok := vm.ToNumber(right)
	if !lok || !rok {
		return m.arithMeta(op, left, right, lok)
	}

	li, lInt := ln.(vm.IntValue)
	ri, rInt := rn.(vm.IntValue)
	if lInt && rInt {
		a, b := int64(li), int64(ri)
		switch op {
		case opAdd:
			return vm.IntValue(a + b), nil
		case opSub:
			return vm.IntValue(a - b), nil
		case opMul:
			return vm.IntValue(a * b), nil
		case opMod:
			if b == 0 {
				return nil, m.faultf("attempt to perform 'n%%0'")
			}
			r := a % b
			if r != 0 && (r < 0) != (b < 0) {
				r += b
			}
			return vm.IntValue(r), nil
		case opIDiv:
			if b == 0 {
				return nil, m.faultf("attempt to perform 'n//0'")
			}
			q := a / b
			if (a%b != 0) && ((a < 0) != (b < 0)) {
				q--
			}
			return vm.IntValue(q), nil
		}
	}

	a, _ := vm.ToFloat(ln)
	b, _ := vm.ToFloat(rn)
	switch op {
	case opAdd:
		return vm.FloatValue(a + b), nil
	case opSub:
		return vm.FloatValue(a - b), nil
	case opMul:
		return vm.FloatValue(a * b), nil
	case opMod:
		r := math.Mod(a, b)
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return vm.FloatValue(r), nil
	case opIDiv:
		return vm.FloatValue(math.Floor(a / b)), nil
	}
	return nil, m.faultf("unsupported arithmetic operator %d", op)
}

// floatArith handles / and ^, which always produce floats.
func (m *machine) floatArith(op int, left, right vm.Value) (vm.Value, error) {
	a, lok := vm.ToFloat(left)
	b, rok := vm.ToFloat(right)
	if !lok || !rok {
		return m.arithMeta(op, left, right, lok)
	}
	if op == opDiv {
		return vm.FloatValue(a / b), nil
	}
	return vm.FloatValue(math.Pow(a, b)), nil
}

func (m *machine) bitwise(op int, left, right vm.Value) (vm.Value, error) {
	a, lok := vm.ToInt(left)
	b, rok := vm.ToInt(right)
	if !lok || !rok {
		return m.arithMeta(op, left, right, lok)
	}
	switch op {
	case opBinAND:
		return vm.IntValue(a & b), nil
	case opBinOR:
		return vm.IntValue(a | b), nil
	case opBinXOR:
		return vm.IntValue(a ^ b), nil
	case opBinShiftL:
		return vm.IntValue(shiftLeft(a, b)), nil
	case opBinShiftR:
		return vm.IntValue(shiftLeft(a, -b)), nil
	}
	return nil, m.faultf("unsupported bitwise operator %d", op)
}

// shiftLeft implements Lua's logical shift: negative amounts shift the
// other way, and shifts of 64 or more produce zero.
func shiftLeft(a, by int64) int64 {
	if by < 0 {
		if by <= -64 {
			return 0
		}
		return int64(uint64(a) >> uint(-by))
	}
	if by >= 64 {
		return 0
	}
	return int64(uint64(a) << uint(by))
}

// arithMeta falls back to the operator's metamethod once the builtin is
// inapplicable. The leftOK hint picks the operand to blame in messages.
func (m *machine) arithMeta(op int, left, right vm.Value, leftOK bool) (vm.Value, error) {
	event, ok := arithEvents[op]
	if !ok {
		return nil, m.faultf("unsupported operator %d", op)
	}
	res, handled, err := m.binMeta(event, left, right)
	if err != nil {
		return nil, err
	}
	if handled {
		return first(res), nil
	}
	bad := left
	if leftOK {
		bad = right
	}
	return nil, m.faultf("attempt to perform arithmetic on a %s value", bad.TypeName())
}

func (m *machine) concat(left, right vm.Value) (vm.Value, error) {
	ls, lok := concatString(left)
	rs, rok := concatString(right)
	if lok && rok {
		return vm.StringValue(ls + rs), nil
	}
	res, handled, err := m.binMeta("__concat", left, right)
	if err != nil {
		return nil, err
	}
	if handled {
		return first(res), nil
	}
	bad := left
	if lok {
		bad = right
	}
	return nil, m.faultf("attempt to concatenate a %s value", bad.TypeName())
}

// concatString admits exactly strings and numbers, per the language's
// concatenation coercion.
func concatString(v vm.Value) (string, bool) {
	switch v.(type) {
	case vm.StringValue, vm.IntValue, vm.FloatValue:
		return vm.ToString(v), true
	default:
		return "", false
	}
}

// valuesEqual applies raw equality first; __eq only runs when both
// operands are tables (or both userdata) and raw equality failed.
func (m *machine) valuesEqual(left, right vm.Value) (bool, error) {
	if vm.Equal(left, right) {
		return true, nil
	}
	_, lt := left.(*vm.Table)
	_, rt := right.(*vm.Table)
	_, lu := left.(*vm.UserData)
	_, ru := right.(*vm.UserData)
	if (lt && rt) || (lu && ru) {
		res, handled, err := m.binMeta("__eq", left, right)
		if err != nil {
			return false, err
		}
		if handled {
			return vm.Truthy(first(res)), nil
		}
	}
	return false, nil
}

// order implements < and <=; > and >= arrive with swapped operands. The
// swapped flag only fixes the operand named in error messages.
func (m *machine) order(left, right vm.Value, orEqual, swapped bool) (vm.Value, error) {
	// Integer pairs compare in integer arithmetic; going through float64
	// would lose precision past 2^53.
	if li, ok := left.(vm.IntValue); ok {
		if ri, ok := right.(vm.IntValue); ok {
			if orEqual {
				return vm.BoolValue(li <= ri), nil
			}
			return vm.BoolValue(li < ri), nil
		}
	}
	if isNumber(left) && isNumber(right) {
		a, _ := vm.ToFloat(left)
		b, _ := vm.ToFloat(right)
		if orEqual {
			return vm.BoolValue(a <= b), nil
		}
		return vm.BoolValue(a < b), nil
	}
	if ls, ok := left.(vm.StringValue); ok {
		if rs, ok := right.(vm.StringValue); ok {
			c := strings.Compare(string(ls), string(rs))
			if orEqual {
				return vm.BoolValue(c <= 0), nil
			}
			return vm.BoolValue(c < 0), nil
		}
	}

	event := "__lt"
	if orEqual {
		event = "__le"
	}
	res, handled, err := m.binMeta(event, left, right)
	if err != nil {
		return nil, err
	}
	if handled {
		return vm.BoolValue(vm.Truthy(first(res))), nil
	}
	a, b := left, right
	if swapped {
		a, b = b, a
	}
	return nil, m.faultf("attempt to compare %s with %s", a.TypeName(), b.TypeName())
}

func isNumber(v vm.Value) bool {
	switch v.(type) {
	case vm.IntValue, vm.FloatValue:
		return true
	default:
		return false
	}
}

func (m *machine) unaryOp(op int, operand vm.Value) (vm.Value, error) {
	switch op {
	case opNot:
		return vm.BoolValue(!vm.Truthy(operand)), nil

	case opUMinus:
		switch v := operand.(type) {
		case vm.IntValue:
			return vm.IntValue(-v), nil
		case vm.FloatValue:
			return vm.FloatValue(-v), nil
		}
		if n, ok := vm.ToNumber(operand); ok {
			return m.unaryOp(opUMinus, n)
		}
		if h := m.metaField(operand, "__unm"); h != nil {
			res, err := m.Call(h, []vm.Value{operand, operand})
			if err != nil {
				return nil, err
			}
			return first(res), nil
		}
		return nil, m.faultf("attempt to perform arithmetic on a %s value", operand.TypeName())

	case opLength:
		switch v := operand.(type) {
		case vm.StringValue:
			return vm.IntValue(int64(len(v))), nil
		case *vm.Table:
			if h := m.metaField(v, "__len"); h != nil {
				res, err := m.Call(h, []vm.Value{v})
				if err != nil {
					return nil, err
				}
				return first(res), nil
			}
			return vm.IntValue(int64(v.Len())), nil
		}
		return nil, m.faultf("attempt to get length of a %s value", operand.TypeName())

	case opBinNot:
		if i, ok := vm.ToInt(operand); ok {
			return vm.IntValue(^i), nil
		}
		if h := m.metaField(operand, "__bnot"); h != nil {
			res, err := m.Call(h, []vm.Value{operand, operand})
			if err != nil {
				return nil, err
			}
			return first(res), nil
		}
		return nil, m.faultf("attempt to perform bitwise operation on a %s value", operand.TypeName())

	default:
		return nil, m.faultf("unsupported unary operator %d", op)
	}
}
