package localcache

import (
	"sort"
	"time"

	sweepcache "github.com/karupanerura/sweep-cache"
	"github.com/karupanerura/sweep-cache/internal/sampler"
)

// entry is a stored value with its expiration deadline.
// A zero deadline means the value is persistent and never expires.
// The deadline is fixed at insertion time; re-inserting a key stores a new
// entry instead of mutating the old one.
type entry[V sweepcache.ValueConstraint] struct {
	value    V
	deadline time.Time
}

// Cache is a map-backed implementation of the sweepcache.Cache contract.
// It must not be used from multiple goroutines.
type Cache[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint] struct {
	store    map[K]entry[V]
	expiring []K
	options  options[V]
}

var _ sweepcache.Cache[uint8, struct{}] = (*Cache[uint8, struct{}])(nil)

// New creates a new single-goroutine cache.
func New[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint](opts ...Option[K, V]) *Cache[K, V] {
	options := defaultOptions[V]()
	for _, opt := range opts {
		opt.apply(&options)
	}

	return &Cache[K, V]{
		store:   map[K]entry[V]{},
		options: options,
	}
}

// Insert stores a persistent value under the key and returns the previous
// value, if any.
func (c *Cache[K, V]) Insert(key K, value V) (V, bool) {
	return c.set(key, entry[V]{value: value})
}

// InsertTTL records the key as an expiration candidate, then stores the value
// with a deadline of now+ttl. It returns the previous value, if any.
// The candidate list is not deduplicated; re-inserting a key appends again.
func (c *Cache[K, V]) InsertTTL(key K, value V, ttl time.Duration) (V, bool) {
	c.expiring = append(c.expiring, key)
	return c.set(key, entry[V]{value: value, deadline: c.options.clock.Now().Add(ttl)})
}

func (c *Cache[K, V]) set(key K, e entry[V]) (V, bool) {
	prev, ok := c.store[key]
	c.store[key] = e
	return prev.value, ok
}

// Get looks up the key and invokes consumer with the value on a hit.
// An expired value is removed from the store, but stays on the candidate
// list until a vacuum samples it.
func (c *Cache[K, V]) Get(key K, consumer func(V)) bool {
	e, ok := c.store[key]
	if !ok {
		return false
	}
	if c.expired(e) {
		delete(c.store, key)
		return false
	}
	consumer(e.value)
	return true
}

// Fetch looks up the key and returns an independent copy of the value.
func (c *Cache[K, V]) Fetch(key K) (V, bool) {
	var value V
	ok := c.Get(key, func(v V) {
		value = c.options.cloner.CloneValue(v)
	})
	return value, ok
}

// Len returns the number of stored values, expired ones included.
func (c *Cache[K, V]) Len() int {
	return len(c.store)
}

// TrackedLen returns the number of expiration candidates.
func (c *Cache[K, V]) TrackedLen() int {
	return len(c.expiring)
}

// Vacuum samples up to count expiration candidates and evicts the expired
// ones. When the fraction of expired candidates in a sample exceeds
// retryThreshold, another sample is drawn from the shrunk candidate list.
// Sampling concentrates work where expired density is high and stops once the
// density drops below the caller's tolerance, instead of scanning the whole
// candidate list every cycle.
//
// Vacuum panics if count is negative or retryThreshold is not strictly
// between 0 and 1.
func (c *Cache[K, V]) Vacuum(count int, retryThreshold float64) {
	if count < 0 {
		panic("localcache: count must not be negative")
	}
	if retryThreshold <= 0.0 || retryThreshold >= 1.0 {
		panic("localcache: retryThreshold must be in (0.0, 1.0)")
	}

	for {
		amount := min(count, len(c.expiring))
		if amount == 0 {
			return
		}

		removed := c.sweep(sampler.Indices(c.options.random, len(c.expiring), amount))
		if float64(removed)/float64(amount) <= retryThreshold {
			return
		}
	}
}

// sweep resolves each sampled candidate index and evicts the expired ones.
// A candidate whose key is no longer in the store counts as expired, so stale
// candidates left behind by lazy removal or overwrites self-heal here.
// It returns the number of candidates removed.
func (c *Cache[K, V]) sweep(indices []int) int {
	// descending index order so removals do not shift later indices
	sort.Sort(sort.Reverse(sort.IntSlice(indices)))

	removed := 0
	for _, i := range indices {
		key := c.expiring[i]
		e, ok := c.store[key]
		if ok && !c.expired(e) {
			continue
		}
		delete(c.store, key)
		c.dropCandidate(i)
		removed++
	}
	return removed
}

// dropCandidate removes the candidate at index i by swapping in the last one.
// The candidate list is a set semantically, so order does not matter.
func (c *Cache[K, V]) dropCandidate(i int) {
	last := len(c.expiring) - 1
	c.expiring[i] = c.expiring[last]
	var zero K
	c.expiring[last] = zero
	c.expiring = c.expiring[:last]
}

func (c *Cache[K, V]) expired(e entry[V]) bool {
	if e.deadline.IsZero() {
		return false
	}
	return c.options.policy.IsExpired(c.options.clock.Now(), e.deadline)
}
