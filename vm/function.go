package vm

import "github.com/milochristiansen/lua/ast"

// Closure is a script function: the body from the external AST plus the
// environment chain that was active at its definition site. The captured
// environment is shared, never copied, so every closure built in the same
// lexical block observes the same cells.
type Closure struct {
	Params   []string
	Variadic bool
	Body     []ast.Stmt
	Env      *Env
	Name     string // best-effort, for messages and traces
}

func (*Closure) isValue()         {}
func (*Closure) TypeName() string { return "function" }

// NativeFunc is the host-side callback signature. Arguments arrive exactly
// as the script passed them; the result sequence may be empty, which means
// "no return values", not nil.
type NativeFunc func(rt Runtime, args []Value) ([]Value, error)

// Native is a host function visible to scripts.
type Native struct {
	Name string
	Fn   NativeFunc
}

func (*Native) isValue()         {}
func (*Native) TypeName() string { return "function" }

// NewNative wraps a callback for installation into an environment or table.
func NewNative(name string, fn NativeFunc) *Native {
	return &Native{Name: name, Fn: fn}
}

// Library describes a named bundle of attributes and native functions. The
// descriptor itself is immutable configuration; installation materializes
// it as a fresh Table each time, so resets produce new table instances
// from the same descriptor.
type Library struct {
	Name       string
	Attributes map[string]Value
	Methods    map[string]NativeFunc
}

// Build materializes the descriptor as a table.
func (l Library) Build() *Table {
	t := NewTableSize(0, len(l.Attributes)+len(l.Methods))
	for name, v := range l.Attributes {
		t.Set(StringValue(name), v)
	}
	for name, fn := range l.Methods {
		t.Set(StringValue(name), NewNative(l.Name+"."+name, fn))
	}
	return t
}
