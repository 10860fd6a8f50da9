package gpio

import (
	"time"

	"github.com/sweeney/medclock/internal/logic"
)

// Press is a scripted button press that becomes visible at At.
type Press struct {
	At     time.Time
	Button logic.Button
}

// FakeInput is a test double that returns scripted button presses against a
// caller-supplied clock.
type FakeInput struct {
	// Now supplies the time presses are compared against.
	Now func() time.Time

	// Presses in chronological order. Each press is delivered once, by the
	// first Poll at or after its time.
	Presses []Press

	// ClosesAt, if set, keeps the input open until that time even after all
	// presses are consumed. Otherwise the input closes once drained.
	ClosesAt time.Time

	// PollError, if set, will be returned by Poll()
	PollError error

	// Polls counts calls to Poll.
	Polls int

	index int
}

// NewFakeInput creates a FakeInput with the given presses.
func NewFakeInput(now func() time.Time, presses ...Press) *FakeInput {
	return &FakeInput{Now: now, Presses: presses}
}

// Poll returns the next due press, ButtonNone, or ErrInputClosed.
func (f *FakeInput) Poll() (logic.Button, error) {
	f.Polls++
	if f.PollError != nil {
		return logic.ButtonNone, f.PollError
	}

	now := f.Now()
	if f.index < len(f.Presses) && !now.Before(f.Presses[f.index].At) {
		b := f.Presses[f.index].Button
		f.index++
		return b, nil
	}

	if !f.ClosesAt.IsZero() {
		if !now.Before(f.ClosesAt) {
			return logic.ButtonNone, ErrInputClosed
		}
		return logic.ButtonNone, nil
	}
	if f.index >= len(f.Presses) {
		return logic.ButtonNone, ErrInputClosed
	}
	return logic.ButtonNone, nil
}

// Remaining returns the number of presses not yet delivered.
func (f *FakeInput) Remaining() int {
	return len(f.Presses) - f.index
}

// Hold is a raw button level: Button reads pressed from At for For.
type Hold struct {
	Button logic.Button
	At     time.Time
	For    time.Duration
}

// FakeLines replays raw button levels through a logic.Debouncer, one sample
// per Poll, the way Board does. A tap is only reported if Poll is called
// often enough while the button is down.
type FakeLines struct {
	Now      func() time.Time
	Holds    []Hold
	ClosesAt time.Time

	debouncer *logic.Debouncer
}

// NewFakeLines creates FakeLines that close at closesAt.
func NewFakeLines(now func() time.Time, debounce, repeat time.Duration, closesAt time.Time, holds ...Hold) *FakeLines {
	return &FakeLines{
		Now:       now,
		Holds:     holds,
		ClosesAt:  closesAt,
		debouncer: logic.NewDebouncer(debounce, repeat),
	}
}

// Poll samples the scripted levels at Now.
func (f *FakeLines) Poll() (logic.Button, error) {
	now := f.Now()
	if !now.Before(f.ClosesAt) {
		return logic.ButtonNone, ErrInputClosed
	}
	s := logic.ButtonSample{Time: now}
	for _, h := range f.Holds {
		if now.Before(h.At) || !now.Before(h.At.Add(h.For)) {
			continue
		}
		for i, b := range logic.Buttons {
			if b == h.Button {
				s.Pressed[i] = true
			}
		}
	}
	return f.debouncer.Process(s), nil
}

// IndicatorChange is one recorded Set call.
type IndicatorChange struct {
	Indicator logic.Indicator
	On        bool
}

// FakeIndicators records indicator LED state.
type FakeIndicators struct {
	State   [2]bool
	History []IndicatorChange

	// SetError, if set, will be returned by Set()
	SetError error
}

// Set records the indicator state.
func (f *FakeIndicators) Set(ind logic.Indicator, on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.State[ind] = on
	f.History = append(f.History, IndicatorChange{Indicator: ind, On: on})
	return nil
}

// Note is one recorded Emit call.
type Note struct {
	Hz       int
	Duration time.Duration
}

// FakeTone records buzzer activity.
type FakeTone struct {
	Notes    []Note
	Silences int
	Sounding bool
}

// Emit records a note and marks the buzzer as sounding.
func (f *FakeTone) Emit(hz int, d time.Duration) error {
	f.Notes = append(f.Notes, Note{Hz: hz, Duration: d})
	f.Sounding = true
	return nil
}

// Silence marks the buzzer as quiet.
func (f *FakeTone) Silence() error {
	f.Silences++
	f.Sounding = false
	return nil
}
