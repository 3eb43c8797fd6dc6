package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// Until returns how long remains before deadline according to c.
// Zero or negative means the deadline has passed.
func Until(c Clock, deadline time.Time) time.Duration {
	return deadline.Sub(c.Now())
}
