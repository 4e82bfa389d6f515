package test

import (
	"testing"

	lua "github.com/Golto/Lua-interpreter"
	"github.com/Golto/Lua-interpreter/vm"
)

// TestArithmeticOperators checks the numeric tower: integer operands
// keep integer results except for / and ^, and mod/floor-division follow
// the sign of the divisor
func TestArithmeticOperators(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected vm.Value
	}{
		{"integer add", `result = 2 + 3`, vm.IntValue(5)},
		{"integer multiply", `result = 6 * 7`, vm.IntValue(42)},
		{"mixed add is float", `result = 2 + 0.5`, vm.FloatValue(2.5)},
		{"division is float", `result = 7 / 2`, vm.FloatValue(3.5)},
		{"even division is float", `result = 8 / 2`, vm.FloatValue(4.0)},
		{"floor division", `result = 7 // 2`, vm.IntValue(3)},
		{"negative floor division", `result = -7 // 2`, vm.IntValue(-4)},
		{"float floor division", `result = 7.0 // 2`, vm.FloatValue(3.0)},
		{"power is float", `result = 2 ^ 10`, vm.FloatValue(1024.0)},
		{"positive modulo", `result = 10 % 3`, vm.IntValue(1)},
		{"negative modulo follows divisor", `result = -7 % 3`, vm.IntValue(2)},
		{"modulo negative divisor", `result = 7 % -3`, vm.IntValue(-2)},
		{"unary minus", `result = -(3 + 4)`, vm.IntValue(-7)},
		{"string coercion in arithmetic", `result = "10" + 5`, vm.IntValue(15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := run(t, tt.code)
			if got := global(t, in, "result"); got != tt.expected {
				t.Errorf("Expected %v, got %v", vm.ToString(tt.expected), vm.ToString(got))
			}
		})
	}
}

func TestBitwiseOperators(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected vm.Value
	}{
		{"and", `result = 12 & 10`, vm.IntValue(8)},
		{"or", `result = 12 | 10`, vm.IntValue(14)},
		{"xor", `result = 12 ~ 10`, vm.IntValue(6)},
		{"not", `result = ~0`, vm.IntValue(-1)},
		{"shift left", `result = 1 << 4`, vm.IntValue(16)},
		{"shift right", `result = 16 >> 4`, vm.IntValue(1)},
		{"shift right is logical", `result = -1 >> 63`, vm.IntValue(1)},
		{"overlong shift is zero", `result = 1 << 64`, vm.IntValue(0)},
		{"negative shift reverses", `result = 16 << -4`, vm.IntValue(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := run(t, tt.code)
			if got := global(t, in, "result"); got != tt.expected {
				t.Errorf("Expected %v, got %v", vm.ToString(tt.expected), vm.ToString(got))
			}
		})
	}
}

func TestComparisonOperators(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected vm.Value
	}{
		{"cross-subtype equality", `result = 1 == 1.0`, vm.True},
		{"integer less", `result = 2 < 10`, vm.True},
		{"float greater or equal", `result = 2.5 >= 2.5`, vm.True},
		{"string order is lexicographic", `result = "abc" < "abd"`, vm.True},
		{"huge integers order exactly", `result = 9007199254740993 < 9007199254740992`, vm.False},
		{"huge integers order exactly reversed", `result = 9007199254740992 < 9007199254740993`, vm.True},
		{"number never equals string", `result = 1 == "1"`, vm.False},
		{"not equal", `result = 1 ~= 2`, vm.True},
		{"tables compare by identity", `local a = {}; local b = {}; result = a == b`, vm.False},
		{"same table is equal", `local a = {}; local b = a; result = a == b`, vm.True},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := run(t, tt.code)
			if got := global(t, in, "result"); got != tt.expected {
				t.Errorf("Expected %v, got %v", vm.ToString(tt.expected), vm.ToString(got))
			}
		})
	}
}

func TestLogicalOperators(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected vm.Value
	}{
		{"and returns second when truthy", `result = 1 and 2`, vm.IntValue(2)},
		{"and short-circuits on nil", `result = nil and error("unreached")`, vm.Nil},
		{"or returns first truthy", `result = false or "fallback"`, vm.StringValue("fallback")},
		{"or short-circuits", `result = 1 or error("unreached")`, vm.IntValue(1)},
		{"zero is truthy", `result = 0 and "yes"`, vm.StringValue("yes")},
		{"not", `result = not nil`, vm.True},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := run(t, tt.code)
			if got := global(t, in, "result"); got != tt.expected {
				t.Errorf("Expected %v, got %v", vm.ToString(tt.expected), vm.ToString(got))
			}
		})
	}
}

func TestConcatAndLength(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected vm.Value
	}{
		{"string concat", `result = "a" .. "b"`, vm.StringValue("ab")},
		{"number concat", `result = "n=" .. 4`, vm.StringValue("n=4")},
		{"string length", `result = #"hello"`, vm.IntValue(5)},
		{"array length", `result = #{10, 20, 30}`, vm.IntValue(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := run(t, tt.code)
			if got := global(t, in, "result"); got != tt.expected {
				t.Errorf("Expected %v, got %v", vm.ToString(tt.expected), vm.ToString(got))
			}
		})
	}
}

// TestOperatorMetamethods covers arithmetic, comparison, concat, length,
// call and tostring overloads
func TestOperatorMetamethods(t *testing.T) {
	in := run(t, `
local mt = {
    __add = function(a, b) return a.n + b.n end,
    __eq = function(a, b) return a.n == b.n end,
    __lt = function(a, b) return a.n < b.n end,
    __len = function(a) return a.n end,
    __call = function(self, x) return self.n * x end,
    __concat = function(a, b) return "boxed" end,
    __unm = function(a) return -a.n end,
}
local function box(n)
    return setmetatable({ n = n }, mt)
end
sum = box(2) + box(3)
eq = box(2) == box(2)
lt = box(1) < box(9)
len = #box(7)
called = box(6)(7)
cat = box(1) .. "x"
neg = -box(5)
`)
	checks := []struct {
		name     string
		expected vm.Value
	}{
		{"sum", vm.IntValue(5)},
		{"eq", vm.True},
		{"lt", vm.True},
		{"len", vm.IntValue(7)},
		{"called", vm.IntValue(42)},
		{"cat", vm.StringValue("boxed")},
		{"neg", vm.IntValue(-5)},
	}
	for _, c := range checks {
		if got := global(t, in, c.name); got != c.expected {
			t.Errorf("%s: expected %v, got %v", c.name, vm.ToString(c.expected), vm.ToString(got))
		}
	}
}

func TestNewindexMetamethod(t *testing.T) {
	in := run(t, `
local store = {}
local proxy = setmetatable({}, {
    __newindex = function(t, k, v) store[k] = v end,
    __index = function(t, k) return store[k] end,
})
proxy.x = 10
direct = rawget(proxy, "x")
routed = proxy.x
`)
	if _, isNil := global(t, in, "direct").(vm.NilValue); !isNil {
		t.Errorf("Expected __newindex to divert the write away from the proxy")
	}
	if got := global(t, in, "routed"); got != vm.IntValue(10) {
		t.Errorf("Expected routed read of 10, got %v", vm.ToString(got))
	}
}

func TestArithmeticFaults(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"add table without metamethod", `result = {} + 1`},
		{"compare mixed types", `result = 1 < "2"`},
		{"concat table", `result = {} .. "x"`},
		{"integer division by zero", `result = 1 // 0`},
		{"integer modulo by zero", `result = 1 % 0`},
		{"call a number", `local n = 5; n()`},
		{"index a number", `local n = 5; result = n.field`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := lua.New()
			if _, ok := in.Exec(tt.code); ok {
				t.Errorf("Expected a fault")
			}
		})
	}
}
