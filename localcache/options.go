package localcache

import (
	"math/rand/v2"

	sweepcache "github.com/karupanerura/sweep-cache"
	"github.com/karupanerura/sweep-cache/expiration"
)

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

type options[V sweepcache.ValueConstraint] struct {
	clock  sweepcache.Clock
	policy expiration.Policy
	random *rand.Rand
	cloner sweepcache.ValueCloner[V]
}

func defaultOptions[V sweepcache.ValueConstraint]() options[V] {
	return options[V]{
		clock:  sweepcache.SystemClock,
		policy: expiration.DeadlinePolicy{},
		random: nil,
		cloner: sweepcache.DefaultValueCloner[V](),
	}
}
