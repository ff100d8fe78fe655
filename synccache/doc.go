// Package synccache provides a concurrency-safe implementation of the
// sweepcache.Cache contract.
//
// The store and the expiration candidate list are guarded by independent
// locks, so lookups never contend with the candidate bookkeeping done by
// InsertTTL and Vacuum. The store can additionally be split into shards, each
// with its own lock, to spread write contention across keys.
//
// Vacuum runs its sampling step, its per-key check-and-remove steps, and its
// candidate removal step as separate critical sections; foreground operations
// are never blocked for the duration of a whole vacuum pass. Checking a key's
// expiry and removing it from the store happen under the same write lock, so
// a key that receives a fresh value from another goroutine is never evicted
// by a stale observation.
//
// The locks poison themselves when a writer panics mid-mutation: every
// subsequent operation on the cache panics with an error wrapping
// ErrPoisoned, since the internal state can no longer be trusted.
package synccache
