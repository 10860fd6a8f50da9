// Package logic contains the pure state rules of the medicine clock.
// This package has NO external dependencies (no GPIO, MQTT, display, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"fmt"
	"time"
)

// Button is a discrete, debounced input event.
type Button int

const (
	ButtonNone Button = iota
	ButtonUp
	ButtonDown
	ButtonOk
	ButtonCancel
)

// Buttons lists the four physical buttons in debounce priority order.
var Buttons = [4]Button{ButtonUp, ButtonDown, ButtonOk, ButtonCancel}

func (b Button) String() string {
	switch b {
	case ButtonUp:
		return "UP"
	case ButtonDown:
		return "DOWN"
	case ButtonOk:
		return "OK"
	case ButtonCancel:
		return "CANCEL"
	default:
		return "NONE"
	}
}

// Reading is a wall-clock hour and minute as reported by the time source.
type Reading struct {
	Hour   int
	Minute int
}

// MinuteOfDay returns minutes since midnight.
func (r Reading) MinuteOfDay() int {
	return r.Hour*60 + r.Minute
}

func (r Reading) String() string {
	return fmt.Sprintf("%02d:%02d", r.Hour, r.Minute)
}

// ReadingAt extracts the hour and minute of t.
func ReadingAt(t time.Time) Reading {
	h, m, _ := t.Clock()
	return Reading{Hour: h, Minute: m}
}

// Indicator identifies one of the two environment fault LEDs.
type Indicator int

const (
	IndicatorTemperature Indicator = iota
	IndicatorHumidity
)

func (i Indicator) String() string {
	if i == IndicatorHumidity {
		return "humidity"
	}
	return "temperature"
}

// Mode is what the controller is currently doing.
type Mode string

const (
	ModeIdle    Mode = "IDLE"
	ModeMenu    Mode = "MENU"
	ModeRinging Mode = "RINGING"
	ModeSnoozed Mode = "SNOOZED"
)

// EventType represents a state change worth reporting.
type EventType string

const (
	EventAlarmRinging   EventType = "ALARM_RINGING"
	EventAlarmSnoozed   EventType = "ALARM_SNOOZED"
	EventAlarmDismissed EventType = "ALARM_DISMISSED"
	EventAlarmSet       EventType = "ALARM_SET"
	EventAlarmDeleted   EventType = "ALARM_DELETED"
	EventZoneChanged    EventType = "ZONE_CHANGED"
	EventEnvChanged     EventType = "ENV_CHANGED"
	EventClockFault     EventType = "CLOCK_FAULT"
)

// Event is a controller state change to be published.
// Only the fields relevant to Type are populated.
type Event struct {
	Timestamp time.Time
	Type      EventType

	// Alarm events
	Slot   int
	RingID string
	Time   string // "HH:MM"
	Until  time.Time

	// Zone events
	Zone Zone

	// Environment events
	Env EnvReport

	// Clock faults
	Reason string
}
