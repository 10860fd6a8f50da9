package logic

import "time"

// MaxCatchUp bounds how many skipped minutes Engine will look back over when
// the controller was blocked across an alarm's minute.
const MaxCatchUp = 10

const minutesPerDay = 24 * 60

// Engine decides, once per tick, which alarms should start ringing.
// It owns the per-alarm latch release and the missed-minute catch-up.
type Engine struct {
	last    Reading
	hasLast bool
	armed   [SlotCount]bool
}

// NewEngine creates an engine with no previous reading.
func NewEngine() *Engine {
	return &Engine{}
}

// Reset forgets the previous reading, disabling catch-up for the next
// evaluation. Called after a time zone change makes the clock jump.
func (e *Engine) Reset() {
	e.hasLast = false
}

// Armed records that slot i was just set. Minutes crossed before the next
// evaluation do not count as missed for it; an exact match still rings.
func (e *Engine) Armed(i int) {
	e.armed[Wrap(i, SlotCount)] = true
}

// Due evaluates every active slot against r and returns the slots that must
// ring now, in index order. Latches of slots whose minute no longer matches
// are released. A slot is due when its minute matches r, or was crossed since
// the previous evaluation (at most MaxCatchUp minutes back), it is not
// latched, and any snooze deadline has passed.
func (e *Engine) Due(set *AlarmSet, r Reading, now time.Time) []int {
	var due []int

	for i := range set.slots {
		a := &set.slots[i]
		if !a.active {
			continue
		}

		match := a.at == r
		if !match {
			a.Triggered = false
		}

		missed := !match && e.hasLast && !e.armed[i] && crossed(e.last, r, a.at)
		if !match && !missed {
			continue
		}
		if a.Triggered || a.Snoozed(now) {
			continue
		}
		due = append(due, i)
	}

	e.last = r
	e.hasLast = true
	e.armed = [SlotCount]bool{}
	return due
}

// Trigger latches slot i as having rung. Called on entering Ringing.
func (e *Engine) Trigger(set *AlarmSet, i int) {
	set.slots[Wrap(i, SlotCount)].Triggered = true
}

// crossed reports whether at lies in the half-open window (last, cur] of
// minutes of day, when that window spans 1..MaxCatchUp minutes.
func crossed(last, cur, at Reading) bool {
	span := Wrap(cur.MinuteOfDay()-last.MinuteOfDay(), minutesPerDay)
	if span == 0 || span > MaxCatchUp {
		return false
	}
	k := Wrap(at.MinuteOfDay()-last.MinuteOfDay(), minutesPerDay)
	return k > 0 && k <= span
}
