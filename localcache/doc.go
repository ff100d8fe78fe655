// Package localcache provides a single-goroutine implementation of the
// sweepcache.Cache contract.
//
// The cache keeps a map from key to stored value and an append-only list of
// expiration candidates: every key inserted with a TTL is recorded there,
// duplicates and all. Expired values are removed lazily on Get, or in bulk by
// Vacuum, which samples the candidate list instead of scanning the whole
// store and retries while the observed density of expired candidates stays
// above the caller's tolerance.
//
// The implementation performs no locking and is not safe for concurrent use;
// see the synccache package for the concurrent variant.
package localcache
