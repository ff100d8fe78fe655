package sweepcache

import "time"

// KeyConstraint is an interface for key constraints.
type KeyConstraint interface {
	comparable
}

// ValueConstraint is an interface for value constraints.
type ValueConstraint interface {
	any
}

// Cache stores values that may expire after a per-key TTL and provides a
// sampling vacuum for garbage collecting expired keys.
//
// Values inserted without a TTL are persistent and never expire.
// Values inserted with a TTL are tracked as expiration candidates; an expired
// value is removed lazily by Get or in bulk by Vacuum.
type Cache[K KeyConstraint, V ValueConstraint] interface {
	// Insert stores a persistent value under the key.
	// If the key already held a value, the previous value is returned with
	// true, regardless of whether the previous value had expired.
	Insert(key K, value V) (V, bool)

	// InsertTTL stores a value under the key that expires once ttl has
	// elapsed, and records the key as an expiration candidate.
	// A ttl of zero is legal and expires the value on the next check.
	// The previous value is returned as in Insert.
	InsertTTL(key K, value V, ttl time.Duration) (V, bool)

	// Get looks up the key and reports whether a live value was found.
	// On a hit, consumer is invoked with the value; the value must be
	// treated as read-only and must not be retained beyond the call.
	// On a miss, consumer is not invoked; if the stored value exists but
	// has expired, it is removed from the store. Get never touches the
	// expiration candidates.
	Get(key K, consumer func(V)) bool

	// Fetch looks up the key and returns an independent copy of the value.
	// It behaves like Get, but clones the value so the caller may keep it.
	Fetch(key K) (V, bool)

	// Vacuum samples up to count expiration candidates, removes the expired
	// ones from the store, and drops them from the candidate list. If the
	// fraction of expired candidates in a sample exceeds retryThreshold,
	// another sample is drawn, until the observed density of expired
	// candidates falls to an acceptable level.
	//
	// Vacuum panics if count is negative or retryThreshold is not strictly
	// between 0 and 1.
	Vacuum(count int, retryThreshold float64)

	// Len returns the number of stored values.
	// It may count expired values that have not been removed yet.
	Len() int

	// TrackedLen returns the number of expiration candidates.
	// Candidates may reference keys that were overwritten or already
	// removed; such stale candidates are cleaned up by Vacuum.
	TrackedLen() int
}
