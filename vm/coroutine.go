package vm

// Status is a coroutine's scheduling state.
type Status int

const (
	StatusSuspended Status = iota
	StatusRunning
	// StatusNormal is the transient state of a coroutine that is itself
	// resuming another coroutine.
	StatusNormal
	StatusDead
)

func (s Status) String() string {
	switch s {
	case StatusSuspended:
		return "suspended"
	case StatusRunning:
		return "running"
	case StatusNormal:
		return "normal"
	case StatusDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Transfer is one handoff across a coroutine boundary: either values
// moving in (resume) or out (yield/return), or a fault terminating the
// coroutine.
type Transfer struct {
	Values []Value
	Err    error
	Done   bool // body returned, coroutine is dead
}

// Coroutine wraps a closure plus its suspended execution state. The
// continuation lives on a dedicated goroutine; In and Out are unbuffered
// so control is handed off, never shared, and exactly one side runs at a
// time. The scheduler in the interp package owns all transitions.
type Coroutine struct {
	ID      string // for trace logging
	Body    *Closure
	Stat    Status
	Started bool
	// Depth is the call nesting of the parked continuation. The scheduler
	// swaps it with the machine's counter on every handoff so each logical
	// stack spends its own budget.
	Depth int

	In  chan Transfer // resume args flowing into the body
	Out chan Transfer // yielded or returned values flowing out
}

func NewCoroutine(id string, body *Closure) *Coroutine {
	return &Coroutine{
		ID:   id,
		Body: body,
		Stat: StatusSuspended,
		In:   make(chan Transfer),
		Out:  make(chan Transfer),
	}
}

func (*Coroutine) isValue()         {}
func (*Coroutine) TypeName() string { return "thread" }
