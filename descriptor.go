package pushdown

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Handler signatures. Any of the three may be absent on a descriptor;
// absent handlers default to no-ops and absent OnState defaults to Stay.
type (
	// EnterFunc runs once on a frame's first activation.
	EnterFunc func(ctx context.Context, smCtx *Context) error
	// StateFunc runs every tick the frame is active and returns the
	// handler's transition outcome.
	StateFunc func(ctx context.Context, smCtx *Context) (Outcome, error)
	// LeaveFunc runs when the frame is destroyed (goto or pop), not when
	// it is suspended by a push.
	LeaveFunc func(ctx context.Context, smCtx *Context) error
)

// faultRoute maps a fault class to a transition target. Classes are
// matched in registration order with errors.Is.
type faultRoute struct {
	class  error
	target string
}

// Descriptor is the static, declarative metadata for one state: its
// handlers, timeout and retry policy, exception map, and declared
// ordinary targets. Descriptors are registered once and are immutable
// after machine construction; identity is by name, because the same
// descriptor may be active in several stack frames at once.
type Descriptor struct {
	registry *Registry
	name     string

	onEnter EnterFunc
	onState StateFunc
	onLeave LeaveFunc

	timeout       time.Duration
	timeoutTarget string

	retryLimit  int
	hasRetry    bool
	retryTarget string

	faultRoutes []faultRoute
	wildcard    string
	hasWildcard bool

	targets []string
}

// Name returns the descriptor's unique state name.
func (d *Descriptor) Name() string {
	return d.name
}

// OnEnter sets the enter handler.
func (d *Descriptor) OnEnter(fn EnterFunc) *Descriptor {
	d.mutable()
	d.onEnter = fn

	return d
}

// OnState sets the per-tick handler.
func (d *Descriptor) OnState(fn StateFunc) *Descriptor {
	d.mutable()
	d.onState = fn

	return d
}

// OnLeave sets the leave handler.
func (d *Descriptor) OnLeave(fn LeaveFunc) *Descriptor {
	d.mutable()
	d.onLeave = fn

	return d
}

// Timeout sets the elapsed-time budget and the state to route to when it
// expires. An empty target falls back to the machine's default error
// state. The budget is re-armed when the frame is pushed and when it is
// resumed by a pop, never on a stay.
func (d *Descriptor) Timeout(budget time.Duration, target string) *Descriptor {
	d.mutable()
	d.timeout = budget
	d.timeoutTarget = target

	return d
}

// Retries sets the maximum consecutive stays before the machine is forced
// to the target state. An empty target falls back to the machine's
// default error state.
func (d *Descriptor) Retries(limit int, target string) *Descriptor {
	d.mutable()
	d.retryLimit = limit
	d.hasRetry = true
	d.retryTarget = target

	return d
}

// RouteFault maps a fault class to a transition target. Faults raised by
// this state's handlers are matched against registered classes in order
// with errors.Is; the first match wins.
func (d *Descriptor) RouteFault(class error, target string) *Descriptor {
	d.mutable()
	d.faultRoutes = append(d.faultRoutes, faultRoute{class: class, target: target})

	return d
}

// RouteAnyFault sets the wildcard fallback for unmatched fault classes.
// Without a wildcard, unmatched faults route to the machine's default
// error state.
func (d *Descriptor) RouteAnyFault(target string) *Descriptor {
	d.mutable()
	d.wildcard = target
	d.hasWildcard = true

	return d
}

// Targets declares this state's ordinary transition targets. The
// declaration is static metadata only: it feeds graph export and
// registration-time validation, it does not constrain handlers.
func (d *Descriptor) Targets(names ...string) *Descriptor {
	d.mutable()
	d.targets = append(d.targets, names...)

	return d
}

// routeFault resolves a fault to its routed target: mapped class first,
// then wildcard, then the machine-level fallback.
func (d *Descriptor) routeFault(fault error, fallback string) string {
	for _, route := range d.faultRoutes {
		if errors.Is(fault, route.class) {
			return route.target
		}
	}

	if d.hasWildcard {
		return d.wildcard
	}

	return fallback
}

func (d *Descriptor) mutable() {
	if d.registry.sealed {
		panic(fmt.Errorf("%w: %s", ErrRegistrySealed, d.name))
	}
}

// validate checks the descriptor's own policy wiring. Target existence is
// checked by the registry.
func (d *Descriptor) validate() error {
	if d.timeoutTarget != "" && d.timeout <= 0 {
		return WrapStateError(d.name, ErrTimeoutTargetWithoutDuration)
	}

	if d.retryTarget != "" && !d.hasRetry {
		return WrapStateError(d.name, ErrRetryTargetWithoutLimit)
	}

	if d.hasRetry && d.retryLimit < 0 {
		return WrapStateError(d.name, ErrNegativeRetryLimit)
	}

	for _, route := range d.faultRoutes {
		if route.class == nil {
			return WrapStateError(d.name, ErrNilFaultClass)
		}
	}

	return nil
}

// referencedTargets enumerates every state name this descriptor's static
// configuration points at.
func (d *Descriptor) referencedTargets() []string {
	refs := make([]string, 0, len(d.targets)+len(d.faultRoutes)+3)
	refs = append(refs, d.targets...)

	if d.timeoutTarget != "" {
		refs = append(refs, d.timeoutTarget)
	}

	if d.retryTarget != "" {
		refs = append(refs, d.retryTarget)
	}

	for _, route := range d.faultRoutes {
		refs = append(refs, route.target)
	}

	if d.hasWildcard {
		refs = append(refs, d.wildcard)
	}

	return refs
}

// Registry holds the declarative state descriptors for one machine.
// Build it up front, hand it to New, and treat it as read-only afterward.
type Registry struct {
	order  []string
	states map[string]*Descriptor
	sealed bool
}

// NewRegistry creates an empty descriptor registry.
func NewRegistry() *Registry {
	return &Registry{
		states: make(map[string]*Descriptor),
	}
}

// State registers a descriptor under the given name and returns it for
// fluent configuration. Calling State again with the same name returns
// the existing descriptor, so a state may be configured in stages.
func (r *Registry) State(name string) *Descriptor {
	if d, ok := r.states[name]; ok {
		return d
	}

	if r.sealed {
		panic(fmt.Errorf("%w: %s", ErrRegistrySealed, name))
	}

	d := &Descriptor{
		registry: r,
		name:     name,
	}
	r.states[name] = d
	r.order = append(r.order, name)

	return d
}

// Terminal registers a state with no handlers attached: unless the
// caller configures some before construction, it stays put on every
// tick. Convenient for final and dead-end error states; an alias of
// State, kept for declarative readability.
func (r *Registry) Terminal(name string) *Descriptor {
	return r.State(name)
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.states[name]

	return d, ok
}

// Len returns the number of registered states.
func (r *Registry) Len() int {
	return len(r.order)
}

// validate checks every descriptor's policy wiring and that every
// statically referenced target is registered. Unknown references are
// wiring bugs and surface eagerly, at construction time.
func (r *Registry) validate() error {
	if len(r.order) == 0 {
		return ErrNoStates
	}

	for _, name := range r.order {
		d := r.states[name]

		if err := d.validate(); err != nil {
			return err
		}

		for _, target := range d.referencedTargets() {
			if _, ok := r.states[target]; !ok {
				return WrapTransitionError(name, target, ErrStateNotFound)
			}
		}
	}

	return nil
}

func (r *Registry) seal() {
	r.sealed = true
}
