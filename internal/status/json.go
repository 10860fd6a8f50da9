package status

import (
	"encoding/json"
	"math"
	"time"

	"github.com/sweeney/medclock/internal/logic"
)

// StatusJSON wraps the document served at /index.json and carried by
// STARTUP, SHUTDOWN and HEARTBEAT messages.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner is the status document. Event and Reason are only set on
// MQTT system events.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Clock         ClockJSON    `json:"clock"`
	Zone          ZoneJSON     `json:"zone"`
	Alarms        []AlarmJSON  `json:"alarms"`
	Env           *EnvJSON     `json:"env,omitempty"`
	Mode          string       `json:"mode"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTJSON     `json:"mqtt"`
	Network       *NetworkInfo `json:"network,omitempty"`
	Config        Config       `json:"config"`
}

type ClockJSON struct {
	Time  string `json:"time"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

type ZoneJSON struct {
	Index         int    `json:"index"`
	Name          string `json:"name"`
	Offset        string `json:"offset"`
	OffsetSeconds int    `json:"offset_seconds"`
}

// AlarmJSON is one slot. Time is omitted for an unset slot.
type AlarmJSON struct {
	Slot        int    `json:"slot"`
	Active      bool   `json:"active"`
	Time        string `json:"time,omitempty"`
	Triggered   bool   `json:"triggered"`
	SnoozeUntil string `json:"snooze_until,omitempty"`
}

// EnvJSON carries null for a reading the sensor failed to produce.
type EnvJSON struct {
	Temperature   *float64 `json:"temperature"`
	Humidity      *float64 `json:"humidity"`
	TempLevel     string   `json:"temperature_level"`
	HumidityLevel string   `json:"humidity_level"`
}

type MQTTJSON struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	Buffered  int    `json:"buffered"`
}

// Document converts a snapshot to its JSON form.
func Document(snap Snapshot) StatusInner {
	doc := StatusInner{
		Clock: ClockJSON{Time: snap.Clock.String(), Valid: snap.ClockValid, Error: snap.ClockError},
		Zone: ZoneJSON{
			Index:         snap.ZoneIndex,
			Name:          snap.Zone.Name,
			Offset:        snap.Zone.FormatOffset(),
			OffsetSeconds: snap.Zone.OffsetSeconds,
		},
		Alarms:        alarmsJSON(snap.Alarms),
		Mode:          string(snap.Mode),
		UptimeSeconds: int64(snap.Uptime() / time.Second),
		StartTime:     rfc3339(snap.StartTime),
		Timestamp:     rfc3339(snap.Now),
		MQTT:          MQTTJSON{Connected: snap.MQTTConnected, Broker: snap.Config.Broker, Buffered: snap.MQTTBuffered},
		Network:       snap.Network,
		Config:        snap.Config,
	}
	if snap.EnvKnown {
		e := snap.Env
		doc.Env = &EnvJSON{
			Temperature:   nullable(e.Temperature, e.TempLevel),
			Humidity:      nullable(e.Humidity, e.HumidityLevel),
			TempLevel:     string(e.TempLevel),
			HumidityLevel: string(e.HumidityLevel),
		}
	}
	return doc
}

func alarmsJSON(slots [logic.SlotCount]logic.Alarm) []AlarmJSON {
	out := make([]AlarmJSON, len(slots))
	for i, a := range slots {
		out[i] = AlarmJSON{Slot: i + 1, Triggered: a.Triggered}
		if at, ok := a.Time(); ok {
			out[i].Active, out[i].Time = true, at.String()
		}
		if !a.SnoozeUntil.IsZero() {
			out[i].SnoozeUntil = rfc3339(a.SnoozeUntil)
		}
	}
	return out
}

func nullable(v float64, l logic.Level) *float64 {
	if l == logic.LevelFault || math.IsNaN(v) {
		return nil
	}
	return &v
}

func rfc3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FormatJSON renders the indented document served over HTTP.
func FormatJSON(snap Snapshot) []byte {
	b, _ := json.MarshalIndent(StatusJSON{Status: Document(snap)}, "", "  ")
	return b
}

// FormatStatusEvent renders the compact document published with a system
// event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	doc := Document(snap)
	doc.Event, doc.Reason = event, reason
	b, _ := json.Marshal(StatusJSON{Status: doc})
	return b
}
