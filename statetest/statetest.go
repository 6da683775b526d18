// Package statetest provides deterministic test doubles for driving a
// pushdown machine: a manually advanced clock, a slice-backed event
// queue, a transition recorder and scripted state handlers.
package statetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amp-labs/pushdown"
)

// Clock is a manually advanced clock. Inject it with pushdown.WithClock
// to make timeout behavior fully deterministic.
type Clock struct {
	now time.Time
}

// NewClock creates a clock frozen at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// Queue is a slice-backed event source: each Next pops the front event.
type Queue struct {
	events []pushdown.Event
}

// NewQueue creates a queue preloaded with events, delivered in order.
func NewQueue(events ...pushdown.Event) *Queue {
	return &Queue{events: events}
}

// Push appends an event to the queue.
func (q *Queue) Push(ev pushdown.Event) {
	q.events = append(q.events, ev)
}

func (q *Queue) Next() (pushdown.Event, bool) {
	if len(q.events) == 0 {
		return pushdown.Idle, false
	}

	ev := q.events[0]
	q.events = q.events[1:]

	return ev, true
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	return len(q.events)
}

// Recorder implements pushdown.Logger and captures every observation for
// later assertions.
type Recorder struct {
	Entered     []string
	Exited      []string
	Transitions []pushdown.Transition
}

func (r *Recorder) StateEntered(_ context.Context, state string, _ int) {
	r.Entered = append(r.Entered, state)
}

func (r *Recorder) StateExited(_ context.Context, state string, _ time.Duration, _ error) {
	r.Exited = append(r.Exited, state)
}

func (r *Recorder) TransitionApplied(_ context.Context, tr pushdown.Transition) {
	r.Transitions = append(r.Transitions, tr)
}

// Path returns the visited state sequence reconstructed from recorded
// transitions, starting at the first transition's source.
func (r *Recorder) Path() []string {
	if len(r.Transitions) == 0 {
		return nil
	}

	path := make([]string, 0, len(r.Transitions)+1)
	path = append(path, r.Transitions[0].From)

	for _, tr := range r.Transitions {
		path = append(path, tr.To)
	}

	return path
}

// Causes returns the cause of each recorded transition, in order.
func (r *Recorder) Causes() []pushdown.Cause {
	causes := make([]pushdown.Cause, 0, len(r.Transitions))
	for _, tr := range r.Transitions {
		causes = append(causes, tr.Cause)
	}

	return causes
}

// Returns builds a handler that always returns the given outcome.
func Returns(out pushdown.Outcome) pushdown.StateFunc {
	return func(_ context.Context, _ *pushdown.Context) (pushdown.Outcome, error) {
		return out, nil
	}
}

// Fails builds a handler that always raises the given fault.
func Fails(fault error) pushdown.StateFunc {
	return func(_ context.Context, _ *pushdown.Context) (pushdown.Outcome, error) {
		return pushdown.Stay(), fault
	}
}

// Script builds a handler that returns the given outcomes in order; the
// last outcome repeats once the script is exhausted.
func Script(outs ...pushdown.Outcome) pushdown.StateFunc {
	next := 0

	return func(_ context.Context, _ *pushdown.Context) (pushdown.Outcome, error) {
		out := outs[next]
		if next < len(outs)-1 {
			next++
		}

		return out, nil
	}
}

// Run ticks the machine n times, failing the test on any tick error.
func Run(t *testing.T, m *pushdown.Machine, n int) {
	t.Helper()

	for range n {
		require.NoError(t, m.Tick(t.Context()))
	}
}
