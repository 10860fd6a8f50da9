//go:build !linux

package gpio

import (
	"errors"
	"time"

	"github.com/sweeney/medclock/internal/logic"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Board is not available on non-Linux platforms.
type Board struct{}

// Open returns an error on non-Linux platforms.
func Open(string, Pins, time.Duration, time.Duration) (*Board, error) {
	return nil, errUnsupported
}

// Poll is not implemented on non-Linux platforms.
func (b *Board) Poll() (logic.Button, error) {
	return logic.ButtonNone, errUnsupported
}

// Set is not implemented on non-Linux platforms.
func (b *Board) Set(logic.Indicator, bool) error {
	return errUnsupported
}

// Emit is not implemented on non-Linux platforms.
func (b *Board) Emit(int, time.Duration) error {
	return errUnsupported
}

// Silence is not implemented on non-Linux platforms.
func (b *Board) Silence() error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (b *Board) Close() error {
	return nil
}
