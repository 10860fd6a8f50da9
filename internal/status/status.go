// Package status holds the daemon state shown over HTTP and in MQTT system
// events. The controller writes it and readers take snapshots.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/medclock/internal/logic"
)

// NetworkInfo is what the pi-helper reports about the uplink. Empty fields
// mean the helper did not say.
type NetworkInfo struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// Config is the part of the daemon configuration shown on status pages.
// Durations are milliseconds so the JSON stays flat.
type Config struct {
	TickMs      int64  `json:"tick_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	RepeatMs    int64  `json:"repeat_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	NTPServer   string `json:"ntp_server"`
}

// Snapshot is a copy of the tracked state. Alarms is an array, so a Snapshot
// shares nothing with the Tracker it came from apart from Network.
type Snapshot struct {
	Clock      logic.Reading
	ClockValid bool
	ClockError string

	ZoneIndex int
	Zone      logic.Zone

	Alarms [logic.SlotCount]logic.Alarm

	Env      logic.EnvReport
	EnvKnown bool

	Mode logic.Mode

	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	MQTTBuffered  int
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// ActiveAlarms returns the number of set alarm slots.
func (s Snapshot) ActiveAlarms() int {
	n := 0
	for _, a := range s.Alarms {
		if a.Active() {
			n++
		}
	}
	return n
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Mode:      logic.ModeIdle,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// SetNow replaces the clock used to stamp snapshots.
func (t *Tracker) SetNow(now func() time.Time) {
	t.mu.Lock()
	t.now = now
	t.mu.Unlock()
}

// SetClock records the latest clock reading, or the read failure.
// A failed read keeps the previous reading for display.
func (t *Tracker) SetClock(r logic.Reading, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.snap.ClockError = err.Error()
		return
	}
	t.snap.Clock = r
	t.snap.ClockValid = true
	t.snap.ClockError = ""
}

// SetZone records the selected zone index.
func (t *Tracker) SetZone(i int) {
	t.mu.Lock()
	t.snap.ZoneIndex = i
	t.snap.Zone = logic.ZoneAt(i)
	t.mu.Unlock()
}

// SetAlarms copies the alarm registry.
func (t *Tracker) SetAlarms(alarms [logic.SlotCount]logic.Alarm) {
	t.mu.Lock()
	t.snap.Alarms = alarms
	t.mu.Unlock()
}

// SetEnv records the latest environment assessment.
func (t *Tracker) SetEnv(r logic.EnvReport) {
	t.mu.Lock()
	t.snap.Env = r
	t.snap.EnvKnown = true
	t.mu.Unlock()
}

// SetMode records what the controller is doing.
func (t *Tracker) SetMode(m logic.Mode) {
	t.mu.Lock()
	t.snap.Mode = m
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetMQTTBuffered sets the number of messages waiting for the broker.
func (t *Tracker) SetMQTTBuffered(n int) {
	t.mu.Lock()
	t.snap.MQTTBuffered = n
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	now := t.now
	t.mu.RUnlock()
	s.Now = now()
	return s
}
