package interp

import (
	"github.com/google/uuid"
	"github.com/milochristiansen/lua/ast"
	"github.com/rs/zerolog/log"

	"github.com/Golto/Lua-interpreter/vm"
)

// Interpreter owns one global environment, one output log and one module
// cache. The configured function and library set is fixed at construction;
// resets reinstall it from the same descriptors, producing fresh table
// instances every time.
type Interpreter struct {
	ID string

	m    *machine
	base map[string]vm.NativeFunc
	libs []vm.Library
}

// New builds an interpreter from loose base functions, bound directly
// into the globals, plus library descriptors installed as named tables.
func New(base map[string]vm.NativeFunc, libs []vm.Library) *Interpreter {
	in := &Interpreter{
		ID:   uuid.NewString(),
		m:    newMachine(),
		base: base,
		libs: libs,
	}
	in.install()
	log.Trace().Str("interpreter", in.ID).Int("libraries", len(libs)).Msg("interpreter created")
	return in
}

func (in *Interpreter) install() {
	in.m.installBase(in.base)
	for _, lib := range in.libs {
		in.m.installLibrary(lib)
	}
}

// Exec parses and runs source against the global environment. On success
// ok is true and results holds the last call statement's value, or the
// values of a top-level return. On failure ok is false and results holds
// the fault payload as its only element; a fault never escapes to the
// host as an error.
func (in *Interpreter) Exec(source string) (results []vm.Value, ok bool) {
	stmts, err := ast.Parse(source, 1)
	if err != nil {
		f := vm.SyntaxFault(err)
		log.Trace().Str("interpreter", in.ID).Str("kind", f.Kind.String()).Msg("parse failed")
		return []vm.Value{f.Value}, false
	}
	return in.ExecBlock(stmts)
}

// ExecBlock runs an already-parsed statement list the way Exec would.
func (in *Interpreter) ExecBlock(stmts []ast.Stmt) ([]vm.Value, bool) {
	m := in.m
	last := []vm.Value{}
	for _, s := range stmts {
		// A top-level call statement contributes its first result as the
		// execution's value; any later statement supersedes it.
		if call, isCall := s.(*ast.FuncCall); isCall {
			if ln := s.Line(); ln > 0 {
				m.line = ln
			}
			res, err := m.evalCall(call, m.globals)
			if err != nil {
				return in.failure(err)
			}
			if len(res) > 0 {
				last = []vm.Value{res[0]}
			}
			continue
		}

		comp, vals, err := m.execStmt(s, m.globals)
		if err != nil {
			return in.failure(err)
		}
		switch comp {
		case compReturn:
			return vals, true
		case compBreak:
			return in.failure(m.faultf("break outside a loop"))
		}
	}
	return last, true
}

func (in *Interpreter) failure(err error) ([]vm.Value, bool) {
	f := vm.AsFault(err)
	log.Trace().Str("interpreter", in.ID).Str("kind", f.Kind.String()).Str("fault", f.Error()).Msg("exec faulted")
	return []vm.Value{f.Value}, false
}

// Logs returns a copy of the output log accumulated by print.
func (in *Interpreter) Logs() []string {
	return append([]string(nil), in.m.logs...)
}

// ClearLogs empties the output log without touching environment state.
func (in *Interpreter) ClearLogs() {
	in.m.logs = nil
}

// Environment snapshots the global bindings by name. Mutating the map
// does not affect the interpreter; the values themselves are live.
func (in *Interpreter) Environment() map[string]vm.Value {
	return in.m.globals.Bindings()
}

// ResetEnvironment discards every script-defined global and reinstalls
// the configured set as fresh table instances. The log survives.
func (in *Interpreter) ResetEnvironment() {
	logs := in.m.logs
	in.m = newMachine()
	in.m.logs = logs
	in.install()
	log.Trace().Str("interpreter", in.ID).Msg("environment reset")
}

// Reset restores the post-construction baseline: fresh environment and
// an empty log.
func (in *Interpreter) Reset() {
	in.m = newMachine()
	in.install()
	log.Trace().Str("interpreter", in.ID).Msg("interpreter reset")
}
