// Package panicutil converts panics from background tasks into errors.
package panicutil

import (
	"github.com/sourcegraph/conc/panics"
)

// Call invokes f and returns its error.
// If f panics, the recovered panic value is returned as a *panics.ErrRecovered
// instead of being propagated, so background goroutines can report it through
// an error callback rather than crashing the process.
func Call(f func() error) error {
	var (
		catcher panics.Catcher
		err     error
	)
	catcher.Try(func() {
		err = f()
	})
	if r := catcher.Recovered(); r != nil {
		return r.AsError()
	}
	return err
}
