package vm

// Runtime is the evaluator surface native functions may call back into.
// It is deliberately narrow: natives marshal plain Value sequences and
// must not reach into evaluator internals.
type Runtime interface {
	// Call invokes a callable value (closure, native, or __call table)
	// with args and returns its results.
	Call(fn Value, args []Value) ([]Value, error)

	// Index and SetIndex perform full indexing, including metamethod
	// routing, on behalf of a native.
	Index(v, key Value) (Value, error)
	SetIndex(v, key, val Value) error

	// Display renders a value the way tostring does, honoring a
	// __tostring metamethod.
	Display(v Value) (string, error)

	// Print appends one formatted line to the interpreter's output log.
	Print(line string)

	// Require resolves a module from the module cache.
	Require(name string) (Value, error)

	// Resume transfers control into a coroutine; Yield suspends the
	// currently running one. Yield fails outside any coroutine.
	Resume(co *Coroutine, args []Value) ([]Value, error)
	Yield(args []Value) ([]Value, error)

	// Running reports the currently executing coroutine, if any.
	Running() (*Coroutine, bool)

	// ProtectedCall converts a fault raised by fn into a (false, payload)
	// result sequence instead of an error; success prepends true.
	// ProtectedCallHandled additionally routes the payload through a
	// message handler before the protected frame unwinds.
	ProtectedCall(fn Value, args []Value) ([]Value, error)
	ProtectedCallHandled(fn, handler Value, args []Value) ([]Value, error)

	// Where reports the current source position, for error prefixes.
	Where() string
}
