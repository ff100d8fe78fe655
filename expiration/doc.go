// Package expiration provides policies for deciding when cached values expire.
//
// A policy compares the current time against a value's expiration deadline.
// Persistent values never reach a policy; the cache implementations only
// consult a policy for values that were inserted with a TTL.
package expiration
