package interp

import (
	"github.com/Golto/Lua-interpreter/vm"
)

// ProtectedCall runs fn and converts any fault into a (false, payload)
// result, preserving the raised value itself: a table raised through
// error() comes back as the same table. Success yields true followed by
// the call's results.
func (m *machine) ProtectedCall(fn vm.Value, args []vm.Value) ([]vm.Value, error) {
	savedLine := m.line
	res, err := m.Call(fn, args)
	if err != nil {
		m.line = savedLine
		f := vm.AsFault(err)
		return []vm.Value{vm.False, f.Value}, nil
	}
	return append([]vm.Value{vm.True}, res...), nil
}

// ProtectedCallHandled is ProtectedCall with a message handler, invoked
// on the fault payload before the protected frame unwinds.
func (m *machine) ProtectedCallHandled(fn, handler vm.Value, args []vm.Value) ([]vm.Value, error) {
	savedLine := m.line
	res, err := m.Call(fn, args)
	if err != nil {
		m.line = savedLine
		f := vm.AsFault(err)
		hres, herr := m.Call(handler, []vm.Value{f.Value})
		if herr != nil {
			hf := vm.AsFault(herr)
			return []vm.Value{vm.False, hf.Value}, nil
		}
		return append([]vm.Value{vm.False}, hres...), nil
	}
	return append([]vm.Value{vm.True}, res...), nil
}
