package vacuumer

import (
	"context"
	"time"

	"github.com/karupanerura/sweep-cache/internal/panicutil"
)

// Sweeper is the subset of the cache contract the background vacuumer drives.
// Both localcache.Cache and synccache.Cache satisfy it, though only the
// latter is safe to vacuum from a background goroutine.
type Sweeper interface {
	Vacuum(count int, retryThreshold float64)
}

// IntervalVacuumer is a background task that vacuums a cache at a fixed interval.
// It samples up to Count expiration candidates per pass and lets the cache's
// retry loop decide how much to clean based on RetryThreshold.
type IntervalVacuumer struct {
	sweeper           Sweeper
	interval          time.Duration
	count             int
	retryThreshold    float64
	onBackgroundError func(error)
}

// NewIntervalVacuumer creates a new IntervalVacuumer.
// The onBackgroundError callback receives failures from background vacuum
// passes and must not be nil.
// It panics if interval is not positive, count is negative, or retryThreshold
// is not strictly between 0 and 1, so a misconfigured vacuumer fails at
// construction instead of on its first background pass.
func NewIntervalVacuumer(sweeper Sweeper, interval time.Duration, count int, retryThreshold float64, onBackgroundError func(error)) *IntervalVacuumer {
	if interval <= 0 {
		panic("vacuumer: interval must be positive")
	}
	if count < 0 {
		panic("vacuumer: count must not be negative")
	}
	if retryThreshold <= 0.0 || retryThreshold >= 1.0 {
		panic("vacuumer: retryThreshold must be in (0.0, 1.0)")
	}
	if onBackgroundError == nil {
		panic("vacuumer: onBackgroundError must not be nil")
	}
	return &IntervalVacuumer{
		sweeper:           sweeper,
		interval:          interval,
		count:             count,
		retryThreshold:    retryThreshold,
		onBackgroundError: onBackgroundError,
	}
}

// LaunchBackgroundVacuumer starts the background vacuumer.
// The background vacuumer can be stopped by canceling the context passed to
// LaunchBackgroundVacuumer.
func (v *IntervalVacuumer) LaunchBackgroundVacuumer(ctx context.Context) {
	go v.poll(ctx)
}

// poll vacuums the cache immediately, then at the fixed interval.
func (v *IntervalVacuumer) poll(ctx context.Context) {
	v.run()

	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			v.run()
		}
	}
}

// run performs one vacuum pass, reporting a panic as a background error.
func (v *IntervalVacuumer) run() {
	if err := panicutil.Call(func() error {
		v.sweeper.Vacuum(v.count, v.retryThreshold)
		return nil
	}); err != nil {
		v.onBackgroundError(err)
	}
}
