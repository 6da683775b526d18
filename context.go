package pushdown

// Context gives a state's handlers access to the current event, the
// machine-level shared data, and this activation's local data. A Context
// is valid only for the duration of the tick that created it.
type Context struct {
	machine *Machine
	frame   *frame
	event   Event
	handled bool
}

// Event returns the event delivered this tick, or Idle.
func (c *Context) Event() Event {
	return c.event
}

// Consume marks the current event as handled. An unconsumed non-idle
// event on a stay tick is passed to the machine's trap hook, if any.
func (c *Context) Consume() {
	c.handled = true
}

// Locals returns the active frame's local data bag. Locals survive a
// push/pop round trip: a parent suspended by Push finds its locals
// intact when the child pops.
func (c *Context) Locals() map[string]any {
	return c.frame.Locals()
}

// Shared returns the machine-level data bag, visible to every state.
func (c *Context) Shared() map[string]any {
	return c.machine.shared
}

// State returns the active state's name.
func (c *Context) State() string {
	return c.frame.desc.name
}

// Depth returns the current stack depth.
func (c *Context) Depth() int {
	return c.machine.stack.depth()
}

// RetryCount returns the active frame's consecutive-stay count.
func (c *Context) RetryCount() int {
	return c.frame.retryCount
}

// MachineID returns the owning machine's unique instance id.
func (c *Context) MachineID() string {
	return c.machine.id
}
