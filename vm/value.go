package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is the runtime representation of every Lua value. The set of
// implementations is closed: every operation in the evaluator switches
// exhaustively over these types.
type Value interface {
	isValue()
	TypeName() string
}

type NilValue struct{}

func (NilValue) isValue()         {}
func (NilValue) TypeName() string { return "nil" }

var Nil = NilValue{}

type BoolValue bool

func (BoolValue) isValue()         {}
func (BoolValue) TypeName() string { return "boolean" }

var (
	True  = BoolValue(true)
	False = BoolValue(false)
)

// IntValue and FloatValue are the two halves of the Lua 5.3 numeric tower.
// They compare equal by mathematical value.
type IntValue int64

func (IntValue) isValue()         {}
func (IntValue) TypeName() string { return "number" }

type FloatValue float64

func (FloatValue) isValue()         {}
func (FloatValue) TypeName() string { return "number" }

type StringValue string

func (StringValue) isValue()         {}
func (StringValue) TypeName() string { return "string" }

// UserData carries an opaque host payload through the value graph. The
// interpreter never looks inside it.
type UserData struct {
	Payload any
	Meta    *Table
}

func (*UserData) isValue()         {}
func (*UserData) TypeName() string { return "userdata" }

// Truthy reports Lua truthiness: only nil and false are falsy.
func Truthy(v Value) bool {
	switch b := v.(type) {
	case NilValue:
		return false
	case BoolValue:
		return bool(b)
	default:
		return true
	}
}

// Equal implements raw (metamethod-free) equality. Tables, functions,
// coroutines and userdata compare by identity; numbers compare across the
// integer/float divide by mathematical value.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case NilValue:
		_, ok := b.(NilValue)
		return ok
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av == bv
	case IntValue:
		switch bv := b.(type) {
		case IntValue:
			return av == bv
		case FloatValue:
			return float64(av) == float64(bv)
		}
		return false
	case FloatValue:
		switch bv := b.(type) {
		case IntValue:
			return float64(av) == float64(bv)
		case FloatValue:
			return av == bv
		}
		return false
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av == bv
	default:
		// Identity for the reference types.
		return a == b
	}
}

// ToString renders a value without consulting metamethods. Floats use the
// Lua convention of %.14g with a trailing ".0" added when the result would
// otherwise read as an integer.
func ToString(v Value) string {
	switch val := v.(type) {
	case NilValue:
		return "nil"
	case BoolValue:
		if val {
			return "true"
		}
		return "false"
	case IntValue:
		return strconv.FormatInt(int64(val), 10)
	case FloatValue:
		return formatFloat(float64(val))
	case StringValue:
		return string(val)
	case *Table:
		return fmt.Sprintf("table: %p", val)
	case *Closure:
		return fmt.Sprintf("function: %p", val)
	case *Native:
		return fmt.Sprintf("function: builtin: %s", val.Name)
	case *Coroutine:
		return fmt.Sprintf("thread: %p", val)
	case *UserData:
		return fmt.Sprintf("userdata: %p", val)
	default:
		return fmt.Sprintf("<%T>", v)
	}
}

func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', 14, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// ToNumber applies Lua's number coercion: numbers pass through, strings are
// parsed as integer or float literals (hex included). Anything else fails.
func ToNumber(v Value) (Value, bool) {
	switch val := v.(type) {
	case IntValue, FloatValue:
		return val, true
	case StringValue:
		return ParseNumber(strings.TrimSpace(string(val)))
	default:
		return Nil, false
	}
}

// ParseNumber converts a numeric literal to an IntValue or FloatValue. It
// accepts the forms the external lexer produces: decimal and hex integers,
// and decimal floats with optional exponent.
func ParseNumber(s string) (Value, bool) {
	if s == "" {
		return Nil, false
	}
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return IntValue(i), true
	}
	// Hex literals beyond the int64 range wrap around, as in Lua.
	if u, err := strconv.ParseUint(s, 0, 64); err == nil {
		return IntValue(int64(u)), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return FloatValue(f), true
	}
	return Nil, false
}

// ToInt converts a value to an integer if it can be represented exactly.
func ToInt(v Value) (int64, bool) {
	switch val := v.(type) {
	case IntValue:
		return int64(val), true
	case FloatValue:
		if i := int64(val); FloatValue(i) == val {
			return i, true
		}
		return 0, false
	case StringValue:
		n, ok := ToNumber(val)
		if !ok {
			return 0, false
		}
		return ToInt(n)
	default:
		return 0, false
	}
}

// ToFloat converts a number or numeric string to a float.
func ToFloat(v Value) (float64, bool) {
	switch val := v.(type) {
	case IntValue:
		return float64(val), true
	case FloatValue:
		return float64(val), true
	case StringValue:
		n, ok := ToNumber(val)
		if !ok {
			return 0, false
		}
		return ToFloat(n)
	default:
		return 0, false
	}
}
