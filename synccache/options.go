package synccache

import (
	"math/rand/v2"

	sweepcache "github.com/karupanerura/sweep-cache"
	"github.com/karupanerura/sweep-cache/expiration"
)

// DefaultShards is the default number of store shards.
// A single shard reproduces the plain two-lock layout: one lock for the
// whole store, one for the candidate list.
var DefaultShards = 1

// Option is the interface for the options of the cache.
type Option[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint] interface {
	apply(*options[V])
}

type optionFunc[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint] func(*options[V])

func (f optionFunc[K, V]) apply(o *options[V]) {
	f(o)
}

// WithClock sets the clock to the cache.
func WithClock[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint](clock sweepcache.Clock) Option[K, V] {
	return optionFunc[K, V](func(o *options[V]) {
		o.clock = clock
	})
}

// WithPolicy sets the expiration policy to the cache.
func WithPolicy[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint](policy expiration.Policy) Option[K, V] {
	return optionFunc[K, V](func(o *options[V]) {
		o.policy = policy
	})
}

// WithRandom sets the random number generator used by Vacuum's sampling.
// If not set, the shared global generator is used.
// Vacuum passes are serialized, so the generator needs no extra locking.
func WithRandom[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint](random *rand.Rand) Option[K, V] {
	return optionFunc[K, V](func(o *options[V]) {
		o.random = random
	})
}

// WithCloner sets the value cloner used by Fetch.
func WithCloner[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint](cloner sweepcache.ValueCloner[V]) Option[K, V] {
	return optionFunc[K, V](func(o *options[V]) {
		o.cloner = cloner
	})
}

// WithShards sets the number of store shards.
// The number of shards must be a natural number.
func WithShards[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint](shards int) Option[K, V] {
	if shards <= 0 {
		panic("shards must be natural number")
	}
	return optionFunc[K, V](func(o *options[V]) {
		o.shards = shards
	})
}

// WithKeyHash sets the hash function used to pick a shard for a key.
// It is only consulted when the cache has more than one shard. The default
// hash supports string, integer and float key types.
func WithKeyHash[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint](f func(K) int) Option[K, V] {
	return optionFunc[K, V](func(o *options[V]) {
		o.hashKey = func(key any) int {
			return f(key.(K))
		}
	})
}

type options[V sweepcache.ValueConstraint] struct {
	clock   sweepcache.Clock
	policy  expiration.Policy
	random  *rand.Rand
	cloner  sweepcache.ValueCloner[V]
	shards  int
	hashKey func(any) int
}

func defaultOptions[V sweepcache.ValueConstraint]() options[V] {
	return options[V]{
		clock:  sweepcache.SystemClock,
		policy: expiration.DeadlinePolicy{},
		random: nil,
		cloner: sweepcache.DefaultValueCloner[V](),
		shards: DefaultShards,
	}
}
