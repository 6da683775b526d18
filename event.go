package pushdown

// Event carries one opaque message into the active state. Idle is the
// distinguished "tick with no pending message" marker; pure
// polling/periodic states run on idle ticks alone. A nil Payload on its
// own is an ordinary message, so producers may deliver nil.
type Event struct {
	Payload any
}

// idleMarker tags the Idle event so idleness is structural rather than
// inferred from the payload.
type idleMarker struct{}

// Idle is the distinguished no-message event.
var Idle = Event{Payload: idleMarker{}}

// IsIdle reports whether this is the distinguished idle marker.
func (e Event) IsIdle() bool {
	_, ok := e.Payload.(idleMarker)

	return ok
}

// EventSource supplies at most one pending event per tick. Next must not
// block: it returns the next event and true, or false when nothing is
// pending. Producers may feed the source from other goroutines; the
// engine's only contract with it is pull-zero-or-one.
type EventSource interface {
	Next() (Event, bool)
}

// ChannelSource adapts a channel to the EventSource contract with a
// non-blocking receive. A closed channel behaves like an empty one.
type ChannelSource struct {
	ch <-chan Event
}

// NewChannelSource creates an event source backed by ch.
func NewChannelSource(ch <-chan Event) *ChannelSource {
	return &ChannelSource{ch: ch}
}

func (s *ChannelSource) Next() (Event, bool) {
	if s.ch == nil {
		return Idle, false
	}

	select {
	case ev, ok := <-s.ch:
		if !ok {
			return Idle, false
		}

		return ev, true
	default:
		return Idle, false
	}
}
