package synccache

import (
	"sort"
	"sync"
	"time"

	sweepcache "github.com/karupanerura/sweep-cache"
	"github.com/karupanerura/sweep-cache/internal/keyhash"
	"github.com/karupanerura/sweep-cache/internal/poison"
	"github.com/karupanerura/sweep-cache/internal/sampler"
)

// ErrPoisoned reports that a writer panicked while mutating the cache.
// Operations on a poisoned cache panic with an error wrapping this value.
var ErrPoisoned = poison.ErrPoisoned

// entry is a stored value with its expiration deadline.
// A zero deadline means the value is persistent and never expires.
type entry[V sweepcache.ValueConstraint] struct {
	value    V
	deadline time.Time
}

// shard is an independently locked region of the store.
type shard[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint] struct {
	mu    poison.RWMutex
	store map[K]entry[V]
}

// Cache is a concurrency-safe implementation of the sweepcache.Cache
// contract. All methods may be called from multiple goroutines.
type Cache[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint] struct {
	shards  []*shard[K, V]
	hashKey func(any) int

	// listMu guards expiring. Held independently of the shard locks and
	// never while a shard lock is held.
	listMu   poison.RWMutex
	expiring []K

	// vacuumMu serializes vacuum passes. Foreground operations only ever
	// append to the candidate list, so a running vacuum's sampled indices
	// stay valid until it removes them itself.
	vacuumMu sync.Mutex

	options options[V]
}

var _ sweepcache.Cache[uint8, struct{}] = (*Cache[uint8, struct{}])(nil)

// New creates a new concurrency-safe cache.
func New[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint](opts ...Option[K, V]) *Cache[K, V] {
	options := defaultOptions[V]()
	for _, opt := range opts {
		opt.apply(&options)
	}

	hashKey := options.hashKey
	if hashKey == nil && options.shards > 1 {
		hashKey = keyhash.GetOrCreateKeyHash[K]()
	}

	shards := make([]*shard[K, V], options.shards)
	for i := range shards {
		shards[i] = &shard[K, V]{store: map[K]entry[V]{}}
	}

	return &Cache[K, V]{
		shards:  shards,
		hashKey: hashKey,
		options: options,
	}
}

// resolveShard returns the shard that owns the given key.
func (c *Cache[K, V]) resolveShard(key K) *shard[K, V] {
	if len(c.shards) == 1 {
		return c.shards[0]
	}
	index := c.hashKey(key) % len(c.shards)
	if index < 0 {
		index *= -1
	}
	return c.shards[index]
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
	c.listMu.WithLock(func() {
		c.expiring = append(c.expiring, key)
	})
	return c.set(key, entry[V]{value: value, deadline: c.options.clock.Now().Add(ttl)})
}

func (c *Cache[K, V]) set(key K, e entry[V]) (prev V, ok bool) {
	s := c.resolveShard(key)
	s.mu.WithLock(func() {
		var old entry[V]
		old, ok = s.store[key]
		s.store[key] = e
		prev = old.value
	})
	return
}

// Get looks up the key and invokes consumer with the value on a hit.
// The consumer runs outside the store lock, so it must treat the value as
// read-only. An expired value is removed from the store; the candidate list
// is untouched.
func (c *Cache[K, V]) Get(key K, consumer func(V)) bool {
	s := c.resolveShard(key)

	var (
		value   V
		hit     bool
		expired bool
	)
	s.mu.WithRLock(func() {
		e, ok := s.store[key]
		if !ok {
			return
		}
		if c.expired(e) {
			expired = true
			return
		}
		value = e.value
		hit = true
	})

	if expired {
		// re-check under the write lock: a concurrent insert may have
		// replaced the entry since the read observation
		s.mu.WithLock(func() {
			if e, ok := s.store[key]; ok && c.expired(e) {
				delete(s.store, key)
			}
		})
	}
	if hit {
		consumer(value)
	}
	return hit
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
	total := 0
	for _, s := range c.shards {
		s.mu.WithRLock(func() {
			total += len(s.store)
		})
	}
	return total
}

// TrackedLen returns the number of expiration candidates.
func (c *Cache[K, V]) TrackedLen() int {
	var n int
	c.listMu.WithRLock(func() {
		n = len(c.expiring)
	})
	return n
}

// Vacuum samples up to count expiration candidates and evicts the expired
// ones, repeating while the fraction of expired candidates in a sample
// exceeds retryThreshold. Concurrent Vacuum calls are serialized.
//
// Vacuum panics if count is negative or retryThreshold is not strictly
// between 0 and 1.
func (c *Cache[K, V]) Vacuum(count int, retryThreshold float64) {
	if count < 0 {
		panic("synccache: count must not be negative")
	}
	if retryThreshold <= 0.0 || retryThreshold >= 1.0 {
		panic("synccache: retryThreshold must be in (0.0, 1.0)")
	}

	c.vacuumMu.Lock()
	defer c.vacuumMu.Unlock()

	for {
		amount, removed := c.sweep(count)
		if amount == 0 {
			return
		}
		if float64(removed)/float64(amount) <= retryThreshold {
			return
		}
	}
}

// sweep performs one vacuum pass: sample candidates, evict the expired ones,
// drop their candidate entries. It returns the sample size and the number of
// candidates removed.
func (c *Cache[K, V]) sweep(count int) (amount, removed int) {
	// sampling step, under the list read lock only
	var (
		indices []int
		keys    []K
	)
	c.listMu.WithRLock(func() {
		amount = min(count, len(c.expiring))
		if amount == 0 {
			return
		}
		indices = sampler.Indices(c.options.random, len(c.expiring), amount)
		keys = make([]K, len(indices))
		for i, index := range indices {
			keys[i] = c.expiring[index]
		}
	})
	if amount == 0 {
		return 0, 0
	}

	// check-and-remove per key, under that key's shard write lock.
	// Holding the write lock across the check and the delete serializes the
	// eviction against concurrent inserts of the same key: an entry that got
	// a fresh deadline in the meantime is observed live and left alone.
	// A key with no entry at all counts as expired, so stale candidates from
	// lazy removal or overwrites are cleaned up here.
	marked := make([]int, 0, len(keys))
	for i, key := range keys {
		s := c.resolveShard(key)
		evicted := false
		s.mu.WithLock(func() {
			if e, ok := s.store[key]; ok && !c.expired(e) {
				return
			}
			delete(s.store, key)
			evicted = true
		})
		if evicted {
			marked = append(marked, indices[i])
		}
	}

	// removal step, under the list write lock. Concurrent inserts may have
	// appended since the sampling step; appends never move existing
	// candidates, and only the (serialized) vacuum removes them, so the
	// marked indices are still valid. Descending order keeps swap-removal
	// from shifting indices that are still to be removed.
	if len(marked) != 0 {
		sort.Sort(sort.Reverse(sort.IntSlice(marked)))
		c.listMu.WithLock(func() {
			for _, index := range marked {
				last := len(c.expiring) - 1
				c.expiring[index] = c.expiring[last]
				var zero K
				c.expiring[last] = zero
				c.expiring = c.expiring[:last]
			}
		})
	}
	return amount, len(marked)
}

func (c *Cache[K, V]) expired(e entry[V]) bool {
	if e.deadline.IsZero() {
		return false
	}
	return c.options.policy.IsExpired(c.options.clock.Now(), e.deadline)
}
