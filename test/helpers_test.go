package test

import (
	"testing"

	lua "github.com/Golto/Lua-interpreter"
	"github.com/Golto/Lua-interpreter/interp"
	"github.com/Golto/Lua-interpreter/vm"
)

// run executes code on a fresh interpreter and fails the test on any
// script fault.
func run(t *testing.T, code string) *interp.Interpreter {
	t.Helper()
	in := lua.New()
	res, ok := in.Exec(code)
	if !ok {
		t.Fatalf("Execution failed: %v", vm.ToString(res[0]))
	}
	return in
}

// global fetches a top-level binding set by the script.
func global(t *testing.T, in *interp.Interpreter, name string) vm.Value {
	t.Helper()
	v, ok := in.Environment()[name]
	if !ok {
		t.Fatalf("Variable '%s' not found", name)
	}
	return v
}
