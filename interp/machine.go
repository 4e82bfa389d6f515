// Package interp walks the AST produced by the external Lua parser and
// executes it against the runtime value model in package vm. The machine
// is the single thread of control: coroutine bodies run on their own
// goroutines but control is handed off, never shared.
package interp

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Golto/Lua-interpreter/vm"
)

// Calls deeper than this raise a runtime fault. The limit exists to turn
// runaway recursion into a catchable script error instead of a Go stack
// overflow.
const maxCallDepth = 220

type machine struct {
	globals *vm.Env
	modules *vm.Table // the package.loaded equivalent, keyed by name
	logs    []string

	// stringLib backs indexing of string values, so s:upper() resolves
	// through the string library the way Lua's string metatable does.
	stringLib *vm.Table

	current *vm.Coroutine // innermost running coroutine, nil on the main flow
	depth   int
	line    int // line of the statement being executed, for fault positions
}

func newMachine() *machine {
	return &machine{
		globals: vm.NewEnv(nil),
		modules: vm.NewTable(),
	}
}

// faultf raises a positioned runtime fault.
func (m *machine) faultf(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if m.line > 0 {
		return vm.RuntimeFault("input:%d: %s", m.line, msg)
	}
	return vm.RuntimeFault("%s", msg)
}

// Where implements vm.Runtime. It reports the current source position the
// way error() prefixes string payloads.
func (m *machine) Where() string {
	if m.line > 0 {
		return fmt.Sprintf("input:%d: ", m.line)
	}
	return ""
}

// Print implements vm.Runtime by appending to the output log.
func (m *machine) Print(line string) {
	m.logs = append(m.logs, line)
}

// Require implements vm.Runtime: module cache hit or ModuleNotFound.
func (m *machine) Require(name string) (vm.Value, error) {
	v := m.modules.Get(vm.StringValue(name))
	if _, missing := v.(vm.NilValue); missing {
		log.Trace().Str("module", name).Msg("require miss")
		return nil, vm.ModuleFault(name)
	}
	return v, nil
}

// Display implements vm.Runtime: tostring with __tostring honored.
func (m *machine) Display(v vm.Value) (string, error) {
	if h := m.metaField(v, "__tostring"); h != nil {
		res, err := m.Call(h, []vm.Value{v})
		if err != nil {
			return "", err
		}
		if len(res) == 0 {
			return "", m.faultf("'__tostring' must return a value")
		}
		if s, ok := res[0].(vm.StringValue); ok {
			return string(s), nil
		}
		return "", m.faultf("'__tostring' must return a string")
	}
	return vm.ToString(v), nil
}

// installLibrary materializes a library descriptor as a fresh table, binds
// it as a global and records it in the module cache.
func (m *machine) installLibrary(lib vm.Library) *vm.Table {
	t := lib.Build()
	m.globals.Declare(lib.Name, t)
	m.modules.Set(vm.StringValue(lib.Name), t)
	if lib.Name == "string" {
		m.stringLib = t
	}
	if lib.Name == "package" {
		// package.loaded is the live module cache, not a copy.
		t.Set(vm.StringValue("loaded"), m.modules)
	}
	log.Trace().Str("library", lib.Name).Msg("library installed")
	return t
}

// installBase binds loose native functions directly into the globals.
func (m *machine) installBase(fns map[string]vm.NativeFunc) {
	for name, fn := range fns {
		m.globals.Declare(name, vm.NewNative(name, fn))
	}
}

// adjust pads or truncates a value sequence to exactly n entries.
func adjust(vals []vm.Value, n int) []vm.Value {
	if n < 0 {
		return vals
	}
	for len(vals) < n {
		vals = append(vals, vm.Nil)
	}
	return vals[:n]
}

func first(vals []vm.Value) vm.Value {
	if len(vals) == 0 {
		return vm.Nil
	}
	return vals[0]
}
