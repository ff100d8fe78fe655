// Package vacuumer runs a cache's Vacuum operation on a fixed interval.
//
// The cache implementations own no goroutines or timers; this package is the
// composition layer that drives active expiration in the background. Panics
// escaping a vacuum pass (for example from a poisoned cache) are reported to
// an error callback instead of crashing the process.
package vacuumer
