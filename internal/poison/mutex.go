// Package poison provides locks that become permanently unusable when a
// writer panics while holding them.
//
// A panic inside a write-side critical section means the guarded state may
// have been left half-mutated. Instead of letting later operations silently
// observe inconsistent data, the lock records the panic and makes every
// subsequent acquisition fail loudly.
package poison

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc/panics"
)

// ErrPoisoned reports that a writer panicked while holding the lock.
// Panics raised by poisoned locks wrap this error.
var ErrPoisoned = errors.New("poisoned lock: a writer panicked while holding it")

// RWMutex is a reader/writer lock whose critical sections run as callbacks.
// A panic escaping a write-side callback poisons the lock: the panic value is
// recorded and re-raised to the caller, and every later call to WithLock or
// WithRLock panics with an error wrapping ErrPoisoned and the original cause.
// Panics escaping a read-side callback do not poison the lock, since readers
// cannot corrupt the guarded state.
//
// The zero value is an unlocked, unpoisoned mutex.
type RWMutex struct {
	mu    sync.RWMutex
	cause atomic.Pointer[panics.Recovered]
}

// WithLock runs f while holding the lock in write mode.
func (m *RWMutex) WithLock(f func()) {
	m.check()
	m.mu.Lock()
	defer m.mu.Unlock()

	// A writer may have poisoned the lock while we were blocked on it.
	m.check()
	defer func() {
		if v := recover(); v != nil {
			r := panics.NewRecovered(1, v)
			m.cause.CompareAndSwap(nil, &r)
			panic(v)
		}
	}()
	f()
}

// WithRLock runs f while holding the lock in read mode.
func (m *RWMutex) WithRLock(f func()) {
	m.check()
	m.mu.RLock()
	defer m.mu.RUnlock()

	// A writer may have poisoned the lock while we were blocked on it.
	m.check()
	f()
}

// Poisoned reports whether a writer has poisoned the lock.
func (m *RWMutex) Poisoned() bool {
	return m.cause.Load() != nil
}

func (m *RWMutex) check() {
	if r := m.cause.Load(); r != nil {
		panic(fmt.Errorf("%w: %v", ErrPoisoned, r.Value))
	}
}
