package logic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlarmSetDefaults(t *testing.T) {
	s := NewAlarmSet(NewAlarm(10, 30), NewAlarm(10, 31))

	require.Equal(t, 2, s.ActiveCount())
	at, ok := s.Get(0).Time()
	require.True(t, ok)
	assert.Equal(t, Reading{Hour: 10, Minute: 30}, at)
	at, ok = s.Get(1).Time()
	require.True(t, ok)
	assert.Equal(t, Reading{Hour: 10, Minute: 31}, at)
}

func TestAlarmSetPartialInitial(t *testing.T) {
	s := NewAlarmSet(NewAlarm(7, 0))

	assert.True(t, s.IsActive(0))
	assert.False(t, s.IsActive(1))
	assert.Equal(t, 1, s.ActiveCount())
}

func TestIsActiveMatchesUnsetSlot(t *testing.T) {
	s := NewAlarmSet(NewAlarm(10, 30), Alarm{})

	for i := 0; i < SlotCount; i++ {
		_, set := s.Get(i).Time()
		assert.Equal(t, set, s.IsActive(i), "slot %d", i)
	}
}

func TestDeleteClearsSlot(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC)
	s := NewAlarmSet(NewAlarm(10, 30), NewAlarm(8, 0))
	e := NewEngine()
	e.Trigger(s, 0)
	s.Snooze(0, now.Add(SnoozeDuration))

	s.Delete(0)

	a := s.Get(0)
	assert.False(t, s.IsActive(0))
	assert.False(t, a.Triggered)
	assert.True(t, a.SnoozeUntil.IsZero())
	assert.Equal(t, "--:--", a.String())
	assert.True(t, s.IsActive(1), "other slot untouched")
}

func TestDeleteUnsetSlotIsNoop(t *testing.T) {
	s := NewAlarmSet()
	s.Delete(1)
	assert.Equal(t, 0, s.ActiveCount())
}

func TestSetClearsLatchAndSnooze(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC)
	s := NewAlarmSet(NewAlarm(10, 30))
	NewEngine().Trigger(s, 0)
	s.Snooze(0, now.Add(time.Minute))

	s.Set(0, 6, 5)

	a := s.Get(0)
	assert.False(t, a.Triggered)
	assert.True(t, a.SnoozeUntil.IsZero())
	assert.Equal(t, "6:05", a.String())
}

func TestDismissKeepsLatch(t *testing.T) {
	now := time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC)
	s := NewAlarmSet(NewAlarm(10, 30))
	NewEngine().Trigger(s, 0)
	s.Snooze(0, now.Add(SnoozeDuration))
	require.True(t, s.Get(0).Snoozed(now))

	s.Dismiss(0)

	assert.False(t, s.Get(0).Snoozed(now))
	assert.True(t, s.Get(0).Triggered)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "0:00", FormatClock(Reading{}))
	assert.Equal(t, "10:05", FormatClock(Reading{Hour: 10, Minute: 5}))
	assert.Equal(t, "23:59", FormatClock(Reading{Hour: 23, Minute: 59}))
}
