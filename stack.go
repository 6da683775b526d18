package pushdown

import "time"

// frame is one live activation of a state descriptor. It carries the
// activation's timing and retry bookkeeping plus an opaque locals bag for
// the state's own handler logic. Frames are created on push and destroyed
// on pop or goto; the engine owns them exclusively.
type frame struct {
	desc *Descriptor

	// enteredAt is set exactly once, at push time. Retries never touch it.
	enteredAt time.Time
	// armedAt is the timeout reference point: push time, re-set when the
	// frame is resumed by a pop so a long-suspended parent does not expire
	// instantly.
	armedAt time.Time

	retryCount int
	entered    bool

	locals map[string]any
}

func newFrame(desc *Descriptor, now time.Time) *frame {
	return &frame{
		desc:      desc,
		enteredAt: now,
		armedAt:   now,
	}
}

// timedOut reports whether the frame has overrun its timeout budget.
func (f *frame) timedOut(now time.Time) bool {
	if f.desc.timeout <= 0 {
		return false
	}

	return now.Sub(f.armedAt) >= f.desc.timeout
}

// Locals returns the frame's mutable local data bag, creating it lazily.
func (f *frame) Locals() map[string]any {
	if f.locals == nil {
		f.locals = make(map[string]any)
	}

	return f.locals
}

// stack is the pushdown stack of active frames, outer to inner. The
// innermost frame receives events. It is never empty while the machine is
// running; the initial state is pushed at construction.
type stack struct {
	frames []*frame
}

func (s *stack) push(f *frame) {
	s.frames = append(s.frames, f)
}

// pop removes and returns the top frame. Popping the last frame is a
// programming error (pop from the root) and fails with ErrEmptyStack.
func (s *stack) pop() (*frame, error) {
	if len(s.frames) <= 1 {
		return nil, ErrEmptyStack
	}

	top := s.frames[len(s.frames)-1]
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]

	return top, nil
}

// replace swaps the top frame for a sibling, returning the outgoing frame.
func (s *stack) replace(f *frame) *frame {
	top := s.frames[len(s.frames)-1]
	s.frames[len(s.frames)-1] = f

	return top
}

func (s *stack) current() *frame {
	return s.frames[len(s.frames)-1]
}

func (s *stack) depth() int {
	return len(s.frames)
}
