package pushdown

import "time"

// Clock supplies monotonic time readings for timeout accounting. The
// engine reads it once per tick; injecting a fake clock makes timeout
// behavior fully deterministic in tests.
type Clock interface {
	Now() time.Time
}

// systemClock is the default wall clock.
type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
