package logic

import "time"

// ButtonSample is one raw read of all four buttons, already in logical form
// (true = pressed).
type ButtonSample struct {
	Pressed [4]bool // indexed like Buttons
	Time    time.Time
}

// buttonState tracks debounce state for a single button.
type buttonState struct {
	// Current stable (debounced) state
	stable bool
	// Pending state during debounce
	pending    bool
	hasPending bool
	// Time when pending state was first observed
	pendingSince time.Time
	// Whether we have established a baseline
	baselined bool
	// Last time a press was reported for this button
	lastEmit time.Time
	// Last reported press, kept across releases to enforce the minimum gap
	lastReport time.Time
}

// Debouncer turns raw button samples into discrete press events.
// A press is reported once the button has been stable for the debounce
// duration, and again every repeat interval while it stays held.
// Two reports of the same button are never closer than the repeat interval,
// even across a quick release and re-press.
// Buttons held at startup are ignored until released.
type Debouncer struct {
	debounce time.Duration
	repeat   time.Duration
	buttons  [4]buttonState
}

// NewDebouncer creates a debouncer. A repeat of 0 disables hold-to-repeat.
func NewDebouncer(debounce, repeat time.Duration) *Debouncer {
	return &Debouncer{debounce: debounce, repeat: repeat}
}

// Process consumes a sample and returns at most one button press.
// When several buttons qualify in the same sample, the first in Buttons order wins.
func (d *Debouncer) Process(s ButtonSample) Button {
	result := ButtonNone
	for i := range d.buttons {
		if d.processButton(&d.buttons[i], s.Pressed[i], s.Time) && result == ButtonNone {
			result = Buttons[i]
		}
	}
	return result
}

// processButton returns true when b should report a press at now.
func (d *Debouncer) processButton(b *buttonState, pressed bool, now time.Time) bool {
	if !b.baselined {
		if !b.hasPending || b.pending != pressed {
			b.pending = pressed
			b.hasPending = true
			b.pendingSince = now
			return false
		}
		if now.Sub(b.pendingSince) >= d.debounce {
			b.stable = pressed
			b.baselined = true
			b.hasPending = false
			// A button held through startup must be released before it reports.
			b.lastEmit = time.Time{}
		}
		return false
	}

	if pressed == b.stable {
		b.hasPending = false
		if pressed && d.repeat > 0 && !b.lastEmit.IsZero() && now.Sub(b.lastEmit) >= d.repeat {
			b.lastEmit = now
			b.lastReport = now
			return true
		}
		return false
	}

	if !b.hasPending || b.pending != pressed {
		b.pending = pressed
		b.hasPending = true
		b.pendingSince = now
		return false
	}

	if now.Sub(b.pendingSince) < d.debounce {
		return false
	}

	b.stable = pressed
	b.hasPending = false
	if !pressed {
		b.lastEmit = time.Time{}
		return false
	}
	b.lastEmit = now
	if !b.lastReport.IsZero() && now.Sub(b.lastReport) < d.repeat {
		return false
	}
	b.lastReport = now
	return true
}
