package clock

import (
	"context"
	"sync"
	"time"

	"github.com/sweeney/medclock/internal/logic"
)

// FakeTimer is a test double whose time only moves when Sleep is called.
type FakeTimer struct {
	mu  sync.Mutex
	now time.Time

	// Slept accumulates the total virtual time slept.
	Slept time.Duration
}

// NewFakeTimer creates a FakeTimer starting at start.
func NewFakeTimer(start time.Time) *FakeTimer {
	return &FakeTimer{now: start}
}

// Now returns the virtual time.
func (f *FakeTimer) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Sleep advances virtual time by d without blocking.
func (f *FakeTimer) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.Advance(d)
	return nil
}

// Advance moves virtual time forward by d.
func (f *FakeTimer) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	f.Slept += d
}

// FakeSync is a Clock Sync test double that derives its reading from a
// FakeTimer and records every Synchronize call.
type FakeSync struct {
	Timer *FakeTimer

	mu      sync.Mutex
	offset  int
	Offsets []int

	// ReadError, if set, is returned by Read.
	ReadError error
	// SyncError, if set, is returned by Synchronize after recording the offset.
	SyncError error

	// OnSynchronize, if set, is called with each new offset.
	OnSynchronize func(offsetSeconds int)
}

// NewFakeSync creates a FakeSync reading from timer.
func NewFakeSync(timer *FakeTimer) *FakeSync {
	return &FakeSync{Timer: timer}
}

// Synchronize records offsetSeconds and applies it to subsequent reads.
func (f *FakeSync) Synchronize(offsetSeconds int) error {
	f.mu.Lock()
	f.offset = offsetSeconds
	f.Offsets = append(f.Offsets, offsetSeconds)
	hook := f.OnSynchronize
	err := f.SyncError
	f.mu.Unlock()

	if hook != nil {
		hook(offsetSeconds)
	}
	return err
}

// Read returns the timer's time shifted by the current offset.
func (f *FakeSync) Read() (logic.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ReadError != nil {
		return logic.Reading{}, f.ReadError
	}
	t := f.Timer.Now().UTC().Add(time.Duration(f.offset) * time.Second)
	return logic.ReadingAt(t), nil
}

// SetReadError changes the error returned by Read.
func (f *FakeSync) SetReadError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReadError = err
}
