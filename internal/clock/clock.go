// Package clock provides the wall-clock time source and the timer the
// controller uses for its blocking waits.
// The real implementation corrects the system clock with an NTP offset.
// The fake implementation allows testing with virtual time.
package clock

import (
	"context"
	"errors"
	"time"
)

// ErrNotSynchronized is returned by Read before any successful synchronization.
var ErrNotSynchronized = errors.New("clock: not synchronized")

// System is the real Timer backed by the runtime clock.
type System struct{}

// Now returns the current system time.
func (System) Now() time.Time {
	return time.Now()
}

// Sleep blocks for d or until ctx is done.
func (System) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
