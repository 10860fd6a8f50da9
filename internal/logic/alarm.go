package logic

import (
	"fmt"
	"time"
)

// SlotCount is the fixed number of alarm slots. Slot identity never changes.
const SlotCount = 2

// SnoozeDuration is how long a snoozed alarm stays quiet before re-ringing.
const SnoozeDuration = 5 * time.Minute

// Alarm is one slot of the registry. An unset slot has no time of day and is
// excluded from evaluation and display.
type Alarm struct {
	at     Reading
	active bool

	// Triggered latches once the alarm has rung in its matching minute and is
	// released when the clock minute no longer matches.
	Triggered bool

	// SnoozeUntil is the absolute snooze deadline; zero means not snoozed.
	SnoozeUntil time.Time
}

// NewAlarm returns an active alarm at the given time of day.
func NewAlarm(hour, minute int) Alarm {
	return Alarm{at: Reading{Hour: Wrap(hour, 24), Minute: Wrap(minute, 60)}, active: true}
}

// Time returns the alarm's time of day and whether the slot is set.
func (a Alarm) Time() (Reading, bool) {
	return a.at, a.active
}

// Active reports whether the slot holds a time.
func (a Alarm) Active() bool {
	return a.active
}

// Snoozed reports whether a snooze deadline is pending at now.
func (a Alarm) Snoozed(now time.Time) bool {
	return !a.SnoozeUntil.IsZero() && now.Before(a.SnoozeUntil)
}

// String formats the alarm as "H:MM", or "--:--" when unset.
func (a Alarm) String() string {
	if !a.active {
		return "--:--"
	}
	return FormatClock(a.at)
}

// AlarmSet is the registry of exactly SlotCount alarms indexed 0..SlotCount-1.
// Callers pass indices produced by Wrap, so no range errors exist.
type AlarmSet struct {
	slots [SlotCount]Alarm
}

// NewAlarmSet creates a registry with the given initial slots.
func NewAlarmSet(initial ...Alarm) *AlarmSet {
	s := &AlarmSet{}
	for i := 0; i < len(initial) && i < SlotCount; i++ {
		s.slots[i] = initial[i]
	}
	return s
}

// Get returns a copy of slot i.
func (s *AlarmSet) Get(i int) Alarm {
	return s.slots[Wrap(i, SlotCount)]
}

// Set stores a new time in slot i and clears its latch and snooze deadline.
func (s *AlarmSet) Set(i, hour, minute int) {
	s.slots[Wrap(i, SlotCount)] = NewAlarm(hour, minute)
}

// Delete unsets slot i, clearing its latch and snooze deadline.
func (s *AlarmSet) Delete(i int) {
	s.slots[Wrap(i, SlotCount)] = Alarm{}
}

// IsActive reports whether slot i holds a time.
func (s *AlarmSet) IsActive(i int) bool {
	return s.slots[Wrap(i, SlotCount)].active
}

// ActiveCount returns the number of set slots.
func (s *AlarmSet) ActiveCount() int {
	n := 0
	for _, a := range s.slots {
		if a.active {
			n++
		}
	}
	return n
}

// Snooze sets the snooze deadline of slot i.
func (s *AlarmSet) Snooze(i int, until time.Time) {
	s.slots[Wrap(i, SlotCount)].SnoozeUntil = until
}

// Dismiss clears the snooze deadline of slot i. The latch is left alone so the
// alarm cannot ring again within the same minute.
func (s *AlarmSet) Dismiss(i int) {
	s.slots[Wrap(i, SlotCount)].SnoozeUntil = time.Time{}
}

// Slots returns a copy of all slots.
func (s *AlarmSet) Slots() [SlotCount]Alarm {
	return s.slots
}

// FormatClock formats r as "H:MM" the way the display shows times.
func FormatClock(r Reading) string {
	return fmt.Sprintf("%d:%02d", r.Hour, r.Minute)
}
