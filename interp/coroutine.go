package interp

import (
	"github.com/rs/zerolog/log"

	"github.com/Golto/Lua-interpreter/vm"
)

// Resume implements vm.Runtime. Each coroutine body runs on its own
// goroutine, but the unbuffered In/Out channels hand control off rather
// than share it: the resumer blocks until the body yields, returns, or
// faults, so exactly one side is ever executing.
func (m *machine) Resume(co *vm.Coroutine, args []vm.Value) ([]vm.Value, error) {
	if co.Stat != vm.StatusSuspended {
		return nil, vm.ResumeFault(co.Stat)
	}

	prev := m.current
	if prev != nil {
		prev.Stat = vm.StatusNormal
	}
	m.current = co
	co.Stat = vm.StatusRunning

	// The coroutine runs on its own logical stack: park the resumer's
	// call depth and install the coroutine's own.
	savedDepth := m.depth
	m.depth = co.Depth

	if !co.Started {
		co.Started = true
		log.Trace().Str("coroutine", co.ID).Msg("coroutine started")
		go func() {
			in := <-co.In
			res, err := m.Call(co.Body, in.Values)
			co.Out <- vm.Transfer{Values: res, Err: err, Done: true}
		}()
	}

	co.In <- vm.Transfer{Values: args}
	out := <-co.Out

	co.Depth = m.depth
	m.depth = savedDepth
	m.current = prev
	if prev != nil {
		prev.Stat = vm.StatusRunning
	}
	if out.Done {
		co.Stat = vm.StatusDead
	} else {
		co.Stat = vm.StatusSuspended
	}

	if out.Err != nil {
		return nil, out.Err
	}
	return out.Values, nil
}

// Yield implements vm.Runtime. It parks the innermost running coroutine
// by publishing its values and blocking until the next resume.
func (m *machine) Yield(args []vm.Value) ([]vm.Value, error) {
	co := m.current
	if co == nil {
		return nil, m.faultf("attempt to yield from outside a coroutine")
	}
	co.Out <- vm.Transfer{Values: args}
	in := <-co.In
	return in.Values, nil
}

// Running implements vm.Runtime.
func (m *machine) Running() (*vm.Coroutine, bool) {
	return m.current, m.current != nil
}
