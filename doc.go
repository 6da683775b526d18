// Package pushdown implements a synchronous, tick-driven pushdown
// state-machine engine for event-based control software.
//
// Each call to Machine.Tick consumes at most one pending event from the
// injected event source and advances exactly one active state. The active
// state is the top of a pushdown stack, so a reusable sub-state can be
// pushed from many call sites and later pop back to whichever frame
// invoked it, with the caller's local data intact.
//
// Every tick resolves exactly one transition, chosen by a fixed
// precedence: a fault raised by a handler dominates an expired timeout,
// an expired timeout dominates the handler's returned transition, and an
// implicit stay is checked against the state's retry limit before it is
// finalized. A runaway handler therefore cannot override its timeout, and
// a fault always routes deterministically through the state's exception
// map.
//
// Timeouts are polled at tick boundaries, not via preemptive interrupts.
// Effective timeout resolution is bounded below by tick frequency: a
// state with a 5s budget ticked once per second is forced out on the
// first tick observed at or after the budget has elapsed.
//
// The engine is single-threaded and tick-at-a-time. Calling Tick while a
// prior Tick is in progress (including from inside a handler) fails with
// ErrReentrantTick. Ticking a terminated machine fails with
// ErrMachineTerminated; the fail-loudly choice keeps misuse auditable.
package pushdown
