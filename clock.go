package sweepcache

import "time"

// Clock is an interface for getting the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc is a function type that implements the Clock interface.
type ClockFunc func() time.Time

// Now calls the function.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock is the default clock that uses time.Now.
var SystemClock Clock = ClockFunc(time.Now)

// OffsetClock is a clock shifted by a fixed duration.
// A positive offset moves the clock into the future, which makes entries
// expire earlier than their TTL would suggest. It is mostly useful for
// exercising expiration behavior deterministically.
type OffsetClock struct {
	// Clock is the clock that provides the current time.
	Clock Clock

	// Offset is the duration added to the current time.
	Offset time.Duration
}

// Now returns the current time plus the offset.
func (c *OffsetClock) Now() time.Time {
	return c.Clock.Now().Add(c.Offset)
}
