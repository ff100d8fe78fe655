package expiration

import (
	"math/rand/v2"
	"time"
)

// Policy is the interface for the expiration time checker.
// Implementations determine when cached values should be considered expired.
type Policy interface {
	// IsExpired returns true if the value is expired.
	// The now parameter represents the current time, and deadline is the
	// instant the value's TTL elapses.
	IsExpired(now, deadline time.Time) bool
}

// DeadlinePolicy is a policy that expires a value strictly after its deadline.
// A value is still valid at the exact instant its TTL elapses; it becomes
// expired only once the current time has passed the deadline.
type DeadlinePolicy struct{}

var _ Policy = DeadlinePolicy{}

// IsExpired returns true if the current time is after the deadline.
func (DeadlinePolicy) IsExpired(now, deadline time.Time) bool {
	return now.After(deadline)
}

// NeverPolicy is a policy that never expires a value.
// This is useful for keeping TTL-tracked entries alive, e.g. while debugging
// vacuum behavior.
type NeverPolicy struct{}

var _ Policy = NeverPolicy{}

// IsExpired always returns false, indicating that values never expire.
func (NeverPolicy) IsExpired(now, deadline time.Time) bool {
	return false
}

// EarlyPolicy is a policy that can expire a value before its actual deadline.
// Introducing randomness in the expiration process causes different cache
// clients to refresh their values at different times, which helps to prevent
// cache stampedes.
type EarlyPolicy struct {
	// Duration is how much earlier the value can expire.
	// For example, if set to 30 seconds, the value might expire up to 30
	// seconds before its actual deadline, depending on the Percentage.
	Duration time.Duration

	// Percentage is the chance (between 0 and 1) that the value will expire early.
	// A value of 0 means never expire early, while 1 means always expire early.
	Percentage float64

	// Random is the random number generator to decide early expiration.
	// If not set, the default system random generator is used.
	// This can be set to a specific random generator for deterministic behavior in tests.
	Random *rand.Rand
}

var _ Policy = (*EarlyPolicy)(nil)

// IsExpired checks if the value is expired.
// With probability Percentage the deadline is checked as if the current time
// were Duration later; otherwise the strict deadline check applies.
func (p *EarlyPolicy) IsExpired(now, deadline time.Time) bool {
	if p.randFloat64() > p.Percentage {
		return now.After(deadline)
	}
	return now.Add(p.Duration).After(deadline)
}

func (p *EarlyPolicy) randFloat64() float64 {
	if p.Random == nil {
		return rand.Float64()
	}
	return p.Random.Float64()
}
