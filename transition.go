package pushdown

// Kind identifies the shape of a transition.
type Kind int

const (
	// KindStay keeps the active frame unchanged.
	KindStay Kind = iota
	// KindGoto replaces the active frame with a sibling at the same depth.
	KindGoto
	// KindPush nests a sub-state on top of the stack; the caller's frame
	// is preserved for later resumption.
	KindPush
	// KindPop destroys the active frame and resumes its parent.
	KindPop
	// KindFinish routes to the machine's configured final state.
	KindFinish
)

func (k Kind) String() string {
	switch k {
	case KindStay:
		return "stay"
	case KindGoto:
		return "goto"
	case KindPush:
		return "push"
	case KindPop:
		return "pop"
	case KindFinish:
		return "finish"
	default:
		return "unknown"
	}
}

// Cause identifies why a transition was applied.
type Cause int

const (
	// CauseNormal is a transition returned by the state's own handler.
	CauseNormal Cause = iota
	// CauseTimeout is a transition forced by an expired state timeout.
	CauseTimeout
	// CauseRetryExceeded is a transition forced by the retry limit.
	CauseRetryExceeded
	// CauseException is a transition routed from a handler fault.
	CauseException
)

func (c Cause) String() string {
	switch c {
	case CauseNormal:
		return "normal"
	case CauseTimeout:
		return "timeout"
	case CauseRetryExceeded:
		return "retry_exceeded"
	case CauseException:
		return "exception"
	default:
		return "unknown"
	}
}

// Outcome is the value an OnState handler returns to direct the machine.
// The zero value is Stay.
type Outcome struct {
	kind   Kind
	target string
}

// Stay keeps the active frame. The retry policy counts consecutive stays.
func Stay() Outcome {
	return Outcome{kind: KindStay}
}

// Goto replaces the active frame with the named sibling state. A goto to
// the state's own name destroys and recreates the frame, re-running
// OnEnter with fresh timeout and retry accounting.
func Goto(target string) Outcome {
	return Outcome{kind: KindGoto, target: target}
}

// Push nests the named sub-state on top of the stack without disturbing
// the caller's frame.
func Push(target string) Outcome {
	return Outcome{kind: KindPush, target: target}
}

// Pop destroys the active frame and resumes the parent frame from its own
// state, without re-entering it.
func Pop() Outcome {
	return Outcome{kind: KindPop}
}

// Finish transitions to the machine's configured final state, terminating
// the machine at the end of the tick.
func Finish() Outcome {
	return Outcome{kind: KindFinish}
}

// Transition is the structured record of one applied transition, handed
// to the machine's Logger. Fault is non-nil only for CauseException.
type Transition struct {
	Machine string
	From    string
	To      string
	Kind    Kind
	Cause   Cause
	Fault   error
	Depth   int
	Tick    int64
}
