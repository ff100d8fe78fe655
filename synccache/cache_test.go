package synccache_test

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/sweep-cache/synccache"
	"golang.org/x/sync/errgroup"
)

// manualClock is a clock the test advances by hand, so expiry is exercised
// without sleeping. It must not be advanced concurrently with cache use.
type manualClock struct {
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func TestCache_InsertAndGet(t *testing.T) {
	t.Parallel()

	cache := synccache.New[string, string]()

	if _, ok := cache.Insert("id", "secret"); ok {
		t.Error("Insert() on a fresh key must report no previous value")
	}

	var got string
	if !cache.Get("id", func(v string) { got = v }) {
		t.Fatal("Get() must hit after Insert()")
	}
	if diff := cmp.Diff("secret", got); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}

	if cache.Get("nope", func(string) { t.Error("consumer must not be invoked on a miss") }) {
		t.Error("Get() must miss for an unknown key")
	}

	prev, ok := cache.Insert("id", "rotated")
	if !ok || prev != "secret" {
		t.Errorf("Insert() = (%q, %v), want (%q, true)", prev, ok, "secret")
	}
}

func TestCache_LazyExpiration(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	cache := synccache.New[string, string](synccache.WithClock[string, string](clock))

	cache.InsertTTL("id", "secret", time.Second)
	if !cache.Get("id", func(string) {}) {
		t.Fatal("Get() must hit before the TTL elapses")
	}

	clock.Advance(time.Second + time.Nanosecond)
	if cache.Get("id", func(string) { t.Error("consumer must not be invoked on a miss") }) {
		t.Error("Get() must miss after the TTL elapses")
	}

	if got := cache.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
	if got := cache.TrackedLen(); got != 1 {
		t.Errorf("TrackedLen() = %d, want 1", got)
	}
}

func TestCache_Fetch(t *testing.T) {
	t.Parallel()

	cache := synccache.New[string, string]()
	cache.Insert("id", "secret")

	got, ok := cache.Fetch("id")
	if !ok || got != "secret" {
		t.Errorf("Fetch() = (%q, %v), want (%q, true)", got, ok, "secret")
	}

	if _, ok := cache.Fetch("nope"); ok {
		t.Error("Fetch() must miss for an unknown key")
	}
}

func TestCache_Vacuum(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	cache := synccache.New[string, string](synccache.WithClock[string, string](clock))

	cache.InsertTTL("id", "secret", time.Second)
	cache.Vacuum(10, 0.25)
	if got := cache.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}

	clock.Advance(2 * time.Second)
	cache.Vacuum(10, 0.25)
	if got := cache.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
	if got := cache.TrackedLen(); got != 0 {
		t.Errorf("TrackedLen() = %d, want 0", got)
	}
}

func TestCache_VacuumSamplingRetry(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	cache := synccache.New[string, string](
		synccache.WithClock[string, string](clock),
		synccache.WithRandom[string, string](rand.New(rand.NewPCG(42, 54))),
	)

	cache.InsertTTL("id", "secret", time.Second)
	cache.InsertTTL("id2", "secret2", time.Second)
	clock.Advance(2 * time.Second)

	// sampling one of two expired candidates always exceeds the threshold,
	// so the retry drains the second one as well
	cache.Vacuum(1, 0.25)

	if got := cache.TrackedLen(); got != 0 {
		t.Errorf("TrackedLen() = %d, want 0", got)
	}
	if got := cache.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}

func TestCache_VacuumInvalidArguments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		count          int
		retryThreshold float64
	}{
		{name: "zero threshold", count: 10, retryThreshold: 0.0},
		{name: "one threshold", count: 10, retryThreshold: 1.0},
		{name: "negative threshold", count: 10, retryThreshold: -0.1},
		{name: "threshold above one", count: 10, retryThreshold: 1.5},
		{name: "negative count", count: -1, retryThreshold: 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cache := synccache.New[string, string]()
			defer func() {
				r := recover()
				if r == nil {
					t.Error("Expected panic, but did not panic")
					return
				}
				if msg, ok := r.(string); !ok || !strings.HasPrefix(msg, "synccache: ") {
					t.Errorf("panic value = %v, want synccache-prefixed message", r)
				}
			}()
			cache.Vacuum(tt.count, tt.retryThreshold)
		})
	}
}

func TestCache_Sharded(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	cache := synccache.New[string, int](
		synccache.WithShards[string, int](8),
		synccache.WithClock[string, int](clock),
	)

	const total = 100
	for i := 0; i < total; i++ {
		if i%2 == 0 {
			cache.Insert(fmt.Sprintf("key-%d", i), i)
		} else {
			cache.InsertTTL(fmt.Sprintf("key-%d", i), i, time.Second)
		}
	}
	if got := cache.Len(); got != total {
		t.Fatalf("Len() = %d, want %d", got, total)
	}

	for i := 0; i < total; i++ {
		var got int
		if !cache.Get(fmt.Sprintf("key-%d", i), func(v int) { got = v }) {
			t.Fatalf("Get(key-%d) must hit", i)
		}
		if got != i {
			t.Errorf("Get(key-%d) = %d, want %d", i, got, i)
		}
	}

	clock.Advance(2 * time.Second)
	cache.Vacuum(total, 0.25)

	if got := cache.Len(); got != total/2 {
		t.Errorf("Len() = %d, want %d", got, total/2)
	}
	if got := cache.TrackedLen(); got != 0 {
		t.Errorf("TrackedLen() = %d, want 0", got)
	}
}

func TestCache_WithShardsInvalid(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic, but did not panic")
		}
	}()
	synccache.WithShards[string, string](0)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	cache := synccache.New[int, int](synccache.WithShards[int, int](16))

	var eg errgroup.Group
	const workers, perWorker = 8, 200
	for w := 0; w < workers; w++ {
		w := w
		eg.Go(func() error {
			for i := 0; i < perWorker; i++ {
				key := w*perWorker + i
				if key%2 == 0 {
					cache.Insert(key, key)
				} else {
					cache.InsertTTL(key, key, time.Hour)
				}
				var got int
				if !cache.Get(key, func(v int) { got = v }) {
					return fmt.Errorf("key %d: lost a just-inserted value", key)
				}
				if got != key {
					return fmt.Errorf("key %d: got %d", key, got)
				}
			}
			return nil
		})
	}
	eg.Go(func() error {
		for i := 0; i < 50; i++ {
			cache.Vacuum(10, 0.25)
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := cache.Len(); got != workers*perWorker {
		t.Errorf("Len() = %d, want %d", got, workers*perWorker)
	}
}

func TestCache_ConcurrentVacuumEvictsExpired(t *testing.T) {
	t.Parallel()

	cache := synccache.New[string, string]()

	// a background goroutine vacuums on a short interval while the
	// foreground keeps inserting short-lived keys
	done := make(chan struct{})
	var eg errgroup.Group
	eg.Go(func() error {
		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				cache.Vacuum(10, 0.25)
			}
		}
	})

	for i := 0; i < 20; i++ {
		cache.InsertTTL(fmt.Sprintf("key-%d", i), "value", 10*time.Millisecond)
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond) // let the last keys expire
	close(done)
	if err := eg.Wait(); err != nil {
		t.Fatal(err)
	}

	// everything has expired by now: one full-sample vacuum drains the rest
	cache.Vacuum(cache.TrackedLen()+1, 0.5)

	if got := cache.TrackedLen(); got != 0 {
		t.Errorf("TrackedLen() = %d, want 0", got)
	}
	if got := cache.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}
