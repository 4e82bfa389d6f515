package vm

import "fmt"

// FaultKind classifies script-level errors.
type FaultKind int

const (
	// FaultSyntax marks a malformed source or AST. It is never
	// recoverable from within the failing script.
	FaultSyntax FaultKind = iota
	// FaultRuntime covers type mismatches, unsupported operations,
	// indexing errors and bad arguments.
	FaultRuntime
	// FaultUserRaised is an explicit error(value) call. The payload is
	// preserved by identity through pcall boundaries.
	FaultUserRaised
	// FaultModuleNotFound is a failed require.
	FaultModuleNotFound
	// FaultCannotResume is an invalid coroutine transition.
	FaultCannotResume
)

func (k FaultKind) String() string {
	switch k {
	case FaultSyntax:
		return "SyntaxFault"
	case FaultRuntime:
		return "RuntimeFault"
	case FaultUserRaised:
		return "UserRaised"
	case FaultModuleNotFound:
		return "ModuleNotFound"
	case FaultCannotResume:
		return "CannotResume"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Fault is a raised script error carried as an ordinary Go error value.
// Propagation is explicit data flow, so protected calls inspect faults
// instead of recovering panics, and the host never sees an exception.
type Fault struct {
	Kind  FaultKind
	Value Value // the script-visible payload
}

func (f *Fault) Error() string {
	return ToString(f.Value)
}

// RuntimeFault builds a runtime fault with a plain string payload.
func RuntimeFault(format string, args ...any) *Fault {
	return &Fault{Kind: FaultRuntime, Value: StringValue(fmt.Sprintf(format, args...))}
}

// SyntaxFault wraps a parser error.
func SyntaxFault(err error) *Fault {
	return &Fault{Kind: FaultSyntax, Value: StringValue(err.Error())}
}

// UserFault carries an arbitrary payload raised by error(value).
func UserFault(payload Value) *Fault {
	return &Fault{Kind: FaultUserRaised, Value: payload}
}

// ModuleFault reports a failed require.
func ModuleFault(name string) *Fault {
	return &Fault{Kind: FaultModuleNotFound, Value: StringValue(fmt.Sprintf("module '%s' not found", name))}
}

// ResumeFault reports an invalid coroutine transition.
func ResumeFault(status Status) *Fault {
	return &Fault{Kind: FaultCannotResume, Value: StringValue(fmt.Sprintf("cannot resume %s coroutine", status))}
}

// AsFault unwraps err as a *Fault. Host-side errors escaping a native
// function are wrapped as runtime faults so host fault types never cross
// into script code.
func AsFault(err error) *Fault {
	if f, ok := err.(*Fault); ok {
		return f
	}
	return &Fault{Kind: FaultRuntime, Value: StringValue(err.Error())}
}
