package vm

// Cell is a single mutable variable slot. Closures capture cells, not
// values and not whole scopes: a captured cell is shared, so a mutation
// through one closure is visible to every other holder.
type Cell struct {
	V Value
}

// Env is one scope in a lexical chain. The parent reference is non-owning;
// a child keeps its parent alive only through ordinary GC reachability.
type Env struct {
	vars    map[string]*Cell
	parent  *Env
	varargs []Value
	hasVA   bool
}

func NewEnv(parent *Env) *Env {
	return &Env{vars: make(map[string]*Cell), parent: parent}
}

// Child opens a nested scope.
func (e *Env) Child() *Env {
	return NewEnv(e)
}

// Declare creates a fresh cell in this scope, shadowing any outer binding
// of the same name.
func (e *Env) Declare(name string, v Value) *Cell {
	c := &Cell{V: v}
	e.vars[name] = c
	return c
}

// Resolve walks the chain outward and returns the innermost cell bound to
// name. A miss is not a fault: unset identifiers read as globals, and
// unset globals read as nil.
func (e *Env) Resolve(name string) (*Cell, bool) {
	for s := e; s != nil; s = s.parent {
		if c, ok := s.vars[name]; ok {
			return c, true
		}
	}
	return nil, false
}

// Get returns the value bound to name, or Nil when unbound.
func (e *Env) Get(name string) Value {
	if c, ok := e.Resolve(name); ok {
		return c.V
	}
	return Nil
}

// Assign mutates the innermost cell bound to name. When no binding exists
// anywhere in the chain the assignment creates a global, matching the
// language's implicit-global fallback.
func (e *Env) Assign(name string, v Value) {
	if c, ok := e.Resolve(name); ok {
		c.V = v
		return
	}
	e.Root().Declare(name, v)
}

// Root returns the global scope at the end of the chain.
func (e *Env) Root() *Env {
	s := e
	for s.parent != nil {
		s = s.parent
	}
	return s
}

// SetVarargs marks this scope as a function frame. A nil slice marks a
// non-variadic frame, which blocks access to any enclosing frame's
// varargs; variadic frames pass a non-nil (possibly empty) slice.
func (e *Env) SetVarargs(vals []Value) {
	e.varargs = vals
	e.hasVA = true
}

// Varargs returns the varargs of the nearest enclosing function frame.
// The second result is false outside any variadic frame.
func (e *Env) Varargs() ([]Value, bool) {
	for s := e; s != nil; s = s.parent {
		if s.hasVA {
			return s.varargs, s.varargs != nil
		}
	}
	return nil, false
}

// Bindings copies this scope's own name to value mapping (parents
// excluded). Used for the interpreter's environment view.
func (e *Env) Bindings() map[string]Value {
	out := make(map[string]Value, len(e.vars))
	for name, c := range e.vars {
		out[name] = c.V
	}
	return out
}
