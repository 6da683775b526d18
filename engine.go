package pushdown

import (
	"context"
	"fmt"
	"time"

	"facette.io/natsort"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// Status describes the engine's own lifecycle, distinct from user states.
type Status int32

const (
	// StatusRunning means the machine accepts ticks.
	StatusRunning Status = iota
	// StatusTerminated means the machine reached its final state; further
	// ticks fail with ErrMachineTerminated.
	StatusTerminated
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// FilterFunc pre-screens non-idle events before the active state sees
// them. Returning true consumes the event and ends the tick; an error is
// treated as a fault of the active state.
type FilterFunc func(ctx context.Context, smCtx *Context) (bool, error)

// TrapFunc receives events that the active state left unconsumed on a
// stay tick.
type TrapFunc func(ctx context.Context, smCtx *Context)

// Option configures optional machine collaborators.
type Option func(*Machine)

// WithEventSource injects the queue-like event source the machine pulls
// from. Without a source every tick is idle.
func WithEventSource(source EventSource) Option {
	return func(m *Machine) {
		m.source = source
	}
}

// WithClock injects the clock used for timeout accounting.
func WithClock(clock Clock) Option {
	return func(m *Machine) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithLogger injects the transition observer. Absence means transitions
// are silent.
func WithLogger(logger Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithFilter installs an event pre-screening hook.
func WithFilter(fn FilterFunc) Option {
	return func(m *Machine) {
		m.filter = fn
	}
}

// WithTrap installs a hook for events no state consumed.
func WithTrap(fn TrapFunc) Option {
	return func(m *Machine) {
		m.trap = fn
	}
}

// Machine orchestrates the pushdown state machine: one Tick pulls at most
// one event, runs the active frame's handlers, resolves the single
// effective transition and applies it to the stack. Exactly one goroutine
// may tick a machine; the registry, clock and stack are owned by one
// machine instance and must not be shared.
type Machine struct {
	id   string
	name string

	registry *Registry
	initial  string
	final    string
	errState string

	source EventSource
	clock  Clock
	logger Logger
	filter FilterFunc
	trap   TrapFunc

	stack  stack
	shared map[string]any

	status  atomic.Int32
	ticking atomic.Bool
	ticks   atomic.Int64

	history     map[historyKey]*HistoryEntry
	lastTransAt time.Time
}

// New validates the configuration against the registry, overlays the
// config's per-state policies, seals the registry and returns a machine
// with the initial state pushed as the sole frame. Wiring bugs (unknown
// targets, missing sentinels) surface here, eagerly.
func New(reg *Registry, cfg *Config, opts ...Option) (*Machine, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if reg == nil || reg.Len() == 0 {
		return nil, ErrNoStates
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.apply(reg); err != nil {
		return nil, err
	}

	for _, sentinel := range []string{cfg.InitialState, cfg.FinalState, cfg.DefaultErrorState} {
		if _, ok := reg.Lookup(sentinel); !ok {
			return nil, WrapStateError(sentinel, ErrStateNotFound)
		}
	}

	if err := reg.validate(); err != nil {
		return nil, err
	}

	reg.seal()

	m := &Machine{
		id:       uuid.NewString(),
		name:     cfg.Name,
		registry: reg,
		initial:  cfg.InitialState,
		final:    cfg.FinalState,
		errState: cfg.DefaultErrorState,
		clock:    systemClock{},
		shared:   make(map[string]any),
		history:  make(map[historyKey]*HistoryEntry),
	}

	for _, opt := range opts {
		opt(m)
	}

	now := m.clock.Now()
	initial, _ := reg.Lookup(cfg.InitialState)
	m.stack.push(newFrame(initial, now))
	m.lastTransAt = now

	stackDepth.WithLabelValues(sanitizeMachine(m.name)).Set(1)

	return m, nil
}

// ID returns the machine's unique instance id.
func (m *Machine) ID() string {
	return m.id
}

// Name returns the machine's configured name.
func (m *Machine) Name() string {
	return m.name
}

// Status returns the engine status.
func (m *Machine) Status() Status {
	return Status(m.status.Load())
}

// Terminated reports whether the machine reached its final state.
func (m *Machine) Terminated() bool {
	return m.Status() == StatusTerminated
}

// CurrentState returns the active state's name.
func (m *Machine) CurrentState() string {
	return m.stack.current().desc.name
}

// Depth returns the current stack depth.
func (m *Machine) Depth() int {
	return m.stack.depth()
}

// Ticks returns the number of ticks performed so far.
func (m *Machine) Ticks() int64 {
	return m.ticks.Load()
}

// InitialState returns the configured initial state name.
func (m *Machine) InitialState() string {
	return m.initial
}

// FinalState returns the configured final state name.
func (m *Machine) FinalState() string {
	return m.final
}

// DefaultErrorState returns the configured fallback error state name.
func (m *Machine) DefaultErrorState() string {
	return m.errState
}

// Shared returns the machine-level data bag shared by all states.
func (m *Machine) Shared() map[string]any {
	return m.shared
}

// Tick consumes at most one pending event and advances the active state
// by exactly one transition. Handler faults never escape Tick; they are
// routed through the faulting state's exception map. Only usage errors
// (reentrant tick, tick after termination, pop from the root) and
// configuration errors detected at first use are returned.
func (m *Machine) Tick(ctx context.Context) (err error) {
	if m.Status() == StatusTerminated {
		return ErrMachineTerminated
	}

	if !m.ticking.CompareAndSwap(false, true) {
		return ErrReentrantTick
	}
	defer m.ticking.Store(false)

	tick := m.ticks.Inc()
	start := time.Now()

	ctx, span := startTickSpan(ctx, m, tick)

	defer func() {
		finishSpan(span, err)

		outcome := outcomeSuccess
		if err != nil {
			outcome = outcomeError
		}

		ticksTotal.WithLabelValues(sanitizeMachine(m.name), outcome).Inc()
		tickDuration.WithLabelValues(sanitizeMachine(m.name), outcome).Observe(time.Since(start).Seconds())
	}()

	ev := Idle
	if m.source != nil {
		if pulled, ok := m.source.Next(); ok {
			ev = pulled
		}
	}

	fr := m.stack.current()
	smCtx := &Context{machine: m, frame: fr, event: ev}

	var (
		out   = Stay()
		fault error
	)

	// The filter pre-screens events that matter to the process rather
	// than to the active state.
	if m.filter != nil && !ev.IsIdle() {
		consumed, ferr := m.filter(ctx, smCtx)

		switch {
		case ferr != nil:
			fault = ferr
		case consumed:
			return nil
		}
	}

	if fault == nil {
		fault = m.runEnter(ctx, fr, smCtx)
	}

	if fault == nil {
		out, fault = m.runState(ctx, fr, smCtx)
	}

	// The clock is read after the handlers so a handler that overruns its
	// budget during the tick cannot outrun its own timeout; the handler's
	// return value is discarded by the resolver in that case.
	now := m.clock.Now()

	res := resolve(fr, out, fault, fr.timedOut(now), m.errState, m.final)

	if res.kind == KindStay {
		fr.retryCount++

		if m.trap != nil && !ev.IsIdle() && !smCtx.handled {
			m.trap(ctx, smCtx)
		}

		return nil
	}

	return m.apply(ctx, smCtx, res, now, tick)
}

// apply performs the stack mutation for a resolved transition, invoking
// leave hooks on destroyed frames and terminating the machine when the
// incoming state is the configured final state.
func (m *Machine) apply(ctx context.Context, smCtx *Context, res resolution, now time.Time, tick int64) error {
	outgoing := m.stack.current()
	kind, target := res.kind, res.target

	// Runtime-returned targets are the only references registration-time
	// validation cannot see; an unknown one is a wiring bug and is fatal.
	if kind == KindGoto || kind == KindPush {
		if _, ok := m.registry.Lookup(target); !ok {
			return WrapTransitionError(outgoing.desc.name, target, ErrStateNotFound)
		}
	}

	if kind == KindPop && m.stack.depth() <= 1 {
		return WrapStateError(outgoing.desc.name, ErrEmptyStack)
	}

	// Leave hooks run only when the active frame is destroyed; a push
	// suspends the caller without leaving it. A fault raised in OnLeave
	// re-routes through the outgoing frame's exception map and demotes
	// the transition to a sibling goto.
	if kind == KindGoto || kind == KindPop {
		if lerr := m.runLeave(ctx, outgoing, smCtx); lerr != nil {
			kind = KindGoto
			target = outgoing.desc.routeFault(lerr, m.errState)
			res.cause = CauseException
			res.fault = lerr
		}
	}

	var incoming *frame

	switch kind {
	case KindGoto:
		desc, ok := m.registry.Lookup(target)
		if !ok {
			return WrapTransitionError(outgoing.desc.name, target, ErrStateNotFound)
		}

		incoming = newFrame(desc, now)
		m.stack.replace(incoming)

	case KindPush:
		desc, _ := m.registry.Lookup(target)
		incoming = newFrame(desc, now)
		m.stack.push(incoming)

	case KindPop:
		if _, err := m.stack.pop(); err != nil {
			return WrapStateError(outgoing.desc.name, err)
		}

		// Resume the parent from its own state: no re-enter, fresh retry
		// accounting, timeout re-armed.
		incoming = m.stack.current()
		incoming.retryCount = 0
		incoming.armedAt = now

	case KindStay, KindFinish:
		// Unreachable: resolve never emits these here.
		return nil
	}

	m.observe(ctx, Transition{
		Machine: m.name,
		From:    outgoing.desc.name,
		To:      incoming.desc.name,
		Kind:    kind,
		Cause:   res.cause,
		Fault:   res.fault,
		Depth:   m.stack.depth(),
		Tick:    tick,
	}, now)

	if incoming.desc.name == m.final {
		return m.terminate(ctx, incoming, now, tick)
	}

	return nil
}

// terminate completes this tick's hooks on the final frame and stops the
// machine. A fault raised while entering the final state routes like any
// other handler fault and the machine keeps running in the routed state.
func (m *Machine) terminate(ctx context.Context, final *frame, now time.Time, tick int64) error {
	smCtx := &Context{machine: m, frame: final, event: Idle}

	if ferr := m.runEnter(ctx, final, smCtx); ferr != nil {
		target := final.desc.routeFault(ferr, m.errState)

		desc, ok := m.registry.Lookup(target)
		if !ok {
			return WrapTransitionError(final.desc.name, target, ErrStateNotFound)
		}

		incoming := newFrame(desc, now)
		m.stack.replace(incoming)

		m.observe(ctx, Transition{
			Machine: m.name,
			From:    final.desc.name,
			To:      target,
			Kind:    KindGoto,
			Cause:   CauseException,
			Fault:   ferr,
			Depth:   m.stack.depth(),
			Tick:    tick,
		}, now)

		if target != m.final {
			return nil
		}
	}

	m.status.Store(int32(StatusTerminated))

	return nil
}

// observe records the applied transition in history, metrics and the
// logger.
func (m *Machine) observe(ctx context.Context, tr Transition, now time.Time) {
	m.recordHistory(tr, now)

	transitionsTotal.WithLabelValues(
		sanitizeMachine(m.name),
		tr.From,
		tr.To,
		tr.Cause.String(),
	).Inc()
	stackDepth.WithLabelValues(sanitizeMachine(m.name)).Set(float64(m.stack.depth()))

	if m.logger != nil {
		m.logger.TransitionApplied(ctx, tr)
	}
}

// runEnter invokes OnEnter on a frame's first activation.
func (m *Machine) runEnter(ctx context.Context, fr *frame, smCtx *Context) error {
	if fr.entered {
		return nil
	}

	if fr.desc.onEnter != nil {
		hctx, span := startHandlerSpan(ctx, fr.desc.name, phaseEnter)
		err := fr.desc.onEnter(hctx, smCtx)
		finishSpan(span, err)

		if err != nil {
			handlerFaultsTotal.WithLabelValues(sanitizeMachine(m.name), fr.desc.name, phaseEnter).Inc()

			return err
		}
	}

	fr.entered = true

	if m.logger != nil {
		m.logger.StateEntered(ctx, fr.desc.name, m.stack.depth())
	}

	return nil
}

// runState invokes the per-tick handler; absent handlers stay put.
func (m *Machine) runState(ctx context.Context, fr *frame, smCtx *Context) (Outcome, error) {
	if fr.desc.onState == nil {
		return Stay(), nil
	}

	hctx, span := startHandlerSpan(ctx, fr.desc.name, phaseState)
	out, err := fr.desc.onState(hctx, smCtx)
	finishSpan(span, err)

	if err != nil {
		handlerFaultsTotal.WithLabelValues(sanitizeMachine(m.name), fr.desc.name, phaseState).Inc()

		return Stay(), err
	}

	return out, nil
}

// runLeave invokes OnLeave best-effort on a frame being destroyed and
// logs the exit either way.
func (m *Machine) runLeave(ctx context.Context, fr *frame, smCtx *Context) error {
	var err error

	if fr.desc.onLeave != nil {
		hctx, span := startHandlerSpan(ctx, fr.desc.name, phaseLeave)
		err = fr.desc.onLeave(hctx, smCtx)
		finishSpan(span, err)

		if err != nil {
			handlerFaultsTotal.WithLabelValues(sanitizeMachine(m.name), fr.desc.name, phaseLeave).Inc()
		}
	}

	if m.logger != nil {
		m.logger.StateExited(ctx, fr.desc.name, m.clock.Now().Sub(fr.enteredAt), err)
	}

	return err
}

// historyKey identifies one observed transition edge.
type historyKey struct {
	from  string
	to    string
	cause Cause
}

// HistoryEntry is one observed transition edge with its occurrence count
// and the latency between the previous transition and the last occurrence
// of this one.
type HistoryEntry struct {
	From        string
	To          string
	Cause       Cause
	Count       int64
	LastLatency time.Duration
}

func (m *Machine) recordHistory(tr Transition, now time.Time) {
	key := historyKey{from: tr.From, to: tr.To, cause: tr.Cause}

	entry, ok := m.history[key]
	if !ok {
		entry = &HistoryEntry{From: tr.From, To: tr.To, Cause: tr.Cause}
		m.history[key] = entry
	}

	entry.Count++
	entry.LastLatency = now.Sub(m.lastTransAt)
	m.lastTransAt = now
}

// History returns a copy of the observed transition set in natural sort
// order. Like the rest of the machine it is owned by the ticking
// goroutine; call it between ticks.
func (m *Machine) History() []HistoryEntry {
	keys := make([]string, 0, len(m.history))
	byKey := make(map[string]HistoryEntry, len(m.history))

	for _, entry := range m.history {
		key := fmt.Sprintf("%s -> %s (%s)", entry.From, entry.To, entry.Cause)
		keys = append(keys, key)
		byKey[key] = *entry
	}

	natsort.Sort(keys)

	entries := make([]HistoryEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, byKey[key])
	}

	return entries
}
