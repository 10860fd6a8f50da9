// Package mqtt publishes clock events and daemon lifecycle messages as JSON.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/medclock/internal/logic"
)

// Topics. Alarm, zone and environment events go to Topic; STARTUP, SHUTDOWN,
// HEARTBEAT and the broker's last will go to TopicSystem.
const (
	Topic       = "home/medclock/events"
	TopicSystem = "home/medclock/system"
)

// Publisher is implemented by RealPublisher, FakePublisher and Discard.
// A failed publish is reported to the caller and never retried by it.
type Publisher interface {
	Publish(event logic.Event) error
	PublishSystem(event SystemEvent) error
	Close() error
}

// ConnectionStatus is satisfied by publishers that know their broker state.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a daemon lifecycle message. RawPayload, when present, is
// sent as is; the status snapshot events use it.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string
	RawPayload []byte
	Retained   bool
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Medclock EventPayload `json:"medclock"`
}

// EventPayload contains the controller event details.
// Only the fields relevant to the event are present.
type EventPayload struct {
	Timestamp string     `json:"timestamp"`
	Event     string     `json:"event"`
	Alarm     *AlarmJSON `json:"alarm,omitempty"`
	Zone      *ZoneJSON  `json:"zone,omitempty"`
	Env       *EnvJSON   `json:"env,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// AlarmJSON identifies the alarm an event refers to.
type AlarmJSON struct {
	Slot   int    `json:"slot"` // 1-based, as shown on screen
	Time   string `json:"time,omitempty"`
	RingID string `json:"ring_id,omitempty"`
	Until  string `json:"snooze_until,omitempty"`
}

// ZoneJSON is a selected time zone.
type ZoneJSON struct {
	Name          string `json:"name"`
	Offset        string `json:"offset"`
	OffsetSeconds int    `json:"offset_seconds"`
}

// EnvJSON is an environment assessment. Readings are null on a sensor fault.
type EnvJSON struct {
	Temperature   *float64 `json:"temperature"`
	Humidity      *float64 `json:"humidity"`
	TempLevel     string   `json:"temperature_level"`
	HumidityLevel string   `json:"humidity_level"`
}

func isAlarmEvent(t logic.EventType) bool {
	switch t {
	case logic.EventAlarmRinging, logic.EventAlarmSnoozed, logic.EventAlarmDismissed,
		logic.EventAlarmSet, logic.EventAlarmDeleted:
		return true
	}
	return false
}

// NewEnvJSON converts an assessment, mapping fault readings to null.
func NewEnvJSON(r logic.EnvReport) *EnvJSON {
	e := &EnvJSON{
		TempLevel:     string(r.TempLevel),
		HumidityLevel: string(r.HumidityLevel),
	}
	if r.TempLevel != logic.LevelFault {
		v := r.Temperature
		e.Temperature = &v
	}
	if r.HumidityLevel != logic.LevelFault {
		v := r.Humidity
		e.Humidity = &v
	}
	return e
}

// FormatPayload creates the JSON payload for a controller event.
func FormatPayload(event logic.Event) ([]byte, error) {
	p := EventPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     string(event.Type),
		Reason:    event.Reason,
	}

	switch {
	case isAlarmEvent(event.Type):
		a := &AlarmJSON{Slot: event.Slot + 1, Time: event.Time, RingID: event.RingID}
		if !event.Until.IsZero() {
			a.Until = event.Until.UTC().Format(time.RFC3339)
		}
		p.Alarm = a
	case event.Type == logic.EventZoneChanged:
		p.Zone = &ZoneJSON{
			Name:          event.Zone.Name,
			Offset:        event.Zone.FormatOffset(),
			OffsetSeconds: event.Zone.OffsetSeconds,
		}
	case event.Type == logic.EventEnvChanged:
		p.Env = NewEnvJSON(event.Env)
	}

	return json.Marshal(Payload{Medclock: p})
}

// SystemPayload is the small envelope for system messages without a status
// snapshot, such as the last will.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}
	return json.Marshal(SystemPayload{System: SystemPayloadInner{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     event.Event,
		Reason:    event.Reason,
	}})
}

// Discard is the Publisher used when no broker is configured.
type Discard struct{}

func (Discard) Publish(logic.Event) error       { return nil }
func (Discard) PublishSystem(SystemEvent) error { return nil }
func (Discard) Close() error                    { return nil }
func (Discard) IsConnected() bool               { return false }
