package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/medclock/internal/clock"
	"github.com/sweeney/medclock/internal/controller"
	"github.com/sweeney/medclock/internal/display"
	"github.com/sweeney/medclock/internal/gpio"
	"github.com/sweeney/medclock/internal/logic"
	"github.com/sweeney/medclock/internal/mqtt"
	"github.com/sweeney/medclock/internal/sensor"
	"github.com/sweeney/medclock/internal/status"
	"github.com/sweeney/medclock/internal/web"
)

type harness struct {
	start   time.Time
	timer   *clock.FakeTimer
	input   *gpio.FakeInput
	screen  *display.Recorder
	sensor  *sensor.Fake
	leds    *gpio.FakeIndicators
	pub     *mqtt.FakePublisher
	tracker *status.Tracker
	ctl     *controller.Controller
}

func newHarness(start time.Time, zone int, alarms ...logic.Alarm) *harness {
	h := &harness{
		start:  start,
		timer:  clock.NewFakeTimer(start),
		screen: &display.Recorder{},
		sensor: &sensor.Fake{Temp: 26, Hum: 70},
		leds:   &gpio.FakeIndicators{},
		pub:    mqtt.NewFakePublisher(),
	}
	h.input = gpio.NewFakeInput(h.timer.Now)
	h.tracker = status.NewTracker(start, status.Config{TickMs: 1000})
	h.tracker.SetNow(h.timer.Now)
	h.ctl = controller.New(controller.Deps{
		Input:      h.input,
		Display:    h.screen,
		Clock:      clock.NewFakeSync(h.timer),
		Sensor:     h.sensor,
		Indicators: h.leds,
		Tone:       &gpio.FakeTone{},
		Timer:      h.timer,
		Publisher:  h.pub,
		Tracker:    h.tracker,
	}, controller.Options{Zone: zone, Alarms: alarms})
	return h
}

// press schedules buttons 100ms apart beginning at offset d from the start.
func (h *harness) press(d time.Duration, buttons ...logic.Button) {
	for i, b := range buttons {
		at := h.start.Add(d + time.Duration(i)*100*time.Millisecond)
		h.input.Presses = append(h.input.Presses, gpio.Press{At: at, Button: b})
	}
}

func (h *harness) statusJSON(t *testing.T) status.StatusInner {
	t.Helper()
	srv := web.New(":0", h.tracker)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /index.json: status %d", rec.Code)
	}
	var s status.StatusJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("invalid status JSON: %v", err)
	}
	return s.Status
}

func decodePayloads(t *testing.T, pub *mqtt.FakePublisher) []mqtt.EventPayload {
	t.Helper()
	out := make([]mqtt.EventPayload, len(pub.Payloads))
	for i, raw := range pub.Payloads {
		var p mqtt.Payload
		if err := json.Unmarshal(raw, &p); err != nil {
			t.Fatalf("payload %d: invalid JSON: %v", i, err)
		}
		if p.Medclock.Timestamp == "" {
			t.Errorf("payload %d: missing timestamp", i)
		}
		out[i] = p.Medclock
	}
	return out
}

// TestIntegrationSetAlarmRingSnoozeDismiss sets an alarm through the menu,
// lets it ring, snoozes it and dismisses it during the countdown.
func TestIntegrationSetAlarmRingSnoozeDismiss(t *testing.T) {
	up, ok, cancel := logic.ButtonUp, logic.ButtonOk, logic.ButtonCancel

	h := newHarness(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), 16)
	// Menu, "2. Set Alarm 1", hour 0 -> 8, minute 0 -> 1.
	h.press(100*time.Millisecond, ok, up, ok, up, up, up, up, up, up, up, up, ok, up, ok)
	h.press(62*time.Second, ok)
	h.press(70*time.Second, cancel)

	if err := h.ctl.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := h.input.Remaining(); n != 0 {
		t.Errorf("%d presses not consumed", n)
	}

	payloads := decodePayloads(t, h.pub)
	want := []string{"ENV_CHANGED", "ALARM_SET", "ALARM_RINGING", "ALARM_SNOOZED", "ALARM_DISMISSED"}
	if len(payloads) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(payloads), h.pub.Types())
	}
	for i, w := range want {
		if payloads[i].Event != w {
			t.Errorf("event %d: got %s, want %s", i, payloads[i].Event, w)
		}
	}

	set := payloads[1].Alarm
	if set == nil || set.Slot != 1 || set.Time != "08:01" {
		t.Errorf("ALARM_SET payload: got %+v, want slot 1 at 08:01", set)
	}

	ringing := payloads[2].Alarm
	if ringing == nil {
		t.Fatal("ALARM_RINGING payload has no alarm")
	}
	if _, err := uuid.Parse(ringing.RingID); err != nil {
		t.Errorf("ring_id %q is not a UUID: %v", ringing.RingID, err)
	}
	if snoozed := payloads[3].Alarm; snoozed == nil || snoozed.Until == "" || snoozed.RingID != ringing.RingID {
		t.Errorf("ALARM_SNOOZED payload: got %+v", snoozed)
	}
	if dismissed := payloads[4].Alarm; dismissed == nil || dismissed.RingID != ringing.RingID {
		t.Errorf("ALARM_DISMISSED payload: got %+v", dismissed)
	}

	s := h.statusJSON(t)
	if s.Mode != string(logic.ModeIdle) {
		t.Errorf("mode: got %s, want IDLE", s.Mode)
	}
	if len(s.Alarms) != logic.SlotCount {
		t.Fatalf("alarms: got %d slots", len(s.Alarms))
	}
	a := s.Alarms[0]
	if !a.Active || a.Time != "08:01" || !a.Triggered || a.SnoozeUntil != "" {
		t.Errorf("alarm 1: got %+v", a)
	}
	if s.Alarms[1].Active {
		t.Errorf("alarm 2 should be unset: %+v", s.Alarms[1])
	}
	if !s.Clock.Valid || s.Clock.Time != "08:01" {
		t.Errorf("clock: got %+v", s.Clock)
	}
}

// TestIntegrationEnvironmentAlerts follows an out-of-range environment from
// sensor to indicators, MQTT and the status endpoint.
func TestIntegrationEnvironmentAlerts(t *testing.T) {
	h := newHarness(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), 16)
	h.input.ClosesAt = h.start.Add(time.Hour)
	h.sensor.Temp = 35.5
	h.sensor.Hum = 50
	ctx := context.Background()

	if err := h.ctl.Tick(ctx); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	if h.leds.State != [2]bool{true, true} {
		t.Errorf("indicators: got %v, want both on", h.leds.State)
	}

	payloads := decodePayloads(t, h.pub)
	if len(payloads) != 1 || payloads[0].Env == nil {
		t.Fatalf("expected one ENV_CHANGED payload, got %v", h.pub.Types())
	}
	env := payloads[0].Env
	if env.TempLevel != "HIGH" || env.HumidityLevel != "LOW" {
		t.Errorf("levels: got %s/%s, want HIGH/LOW", env.TempLevel, env.HumidityLevel)
	}
	if env.Temperature == nil || *env.Temperature != 35.5 {
		t.Errorf("temperature: got %v, want 35.5", env.Temperature)
	}

	// A sensor fault clears the temperature indicator and nulls the reading.
	h.sensor.TempError = sensor.ErrFault
	if err := h.ctl.Tick(ctx); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if h.leds.State != [2]bool{false, true} {
		t.Errorf("indicators after fault: got %v, want humidity only", h.leds.State)
	}

	s := h.statusJSON(t)
	if s.Env == nil {
		t.Fatal("status has no env")
	}
	if s.Env.Temperature != nil || s.Env.TempLevel != "FAULT" {
		t.Errorf("env after fault: got %+v", s.Env)
	}
	if s.Env.Humidity == nil || *s.Env.Humidity != 50 {
		t.Errorf("humidity: got %v, want 50", s.Env.Humidity)
	}
}

// TestIntegrationZoneChangeMovesAlarms checks that alarms follow local time
// after the zone changes.
func TestIntegrationZoneChangeMovesAlarms(t *testing.T) {
	up, ok, cancel := logic.ButtonUp, logic.ButtonOk, logic.ButtonCancel

	// 04:59:50 UTC is 05:59:50 in CET (zone 17 is UTC+0:30, 18 is CET).
	h := newHarness(time.Date(2026, 3, 2, 4, 59, 50, 0, time.UTC), 16, logic.NewAlarm(6, 0))
	h.press(100*time.Millisecond, ok, ok, up, up, ok)
	h.press(15*time.Second, cancel)

	if err := h.ctl.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	rings := 0
	for _, e := range h.pub.Events {
		if e.Type == logic.EventAlarmRinging {
			rings++
			if e.Time != "06:00" {
				t.Errorf("ringing alarm time: got %s, want 06:00", e.Time)
			}
		}
	}
	if rings != 1 {
		t.Errorf("expected alarm to ring once in local time, got %d", rings)
	}
	if z := h.statusJSON(t).Zone; z.Index != 18 || z.OffsetSeconds != 3600 {
		t.Errorf("zone: got %+v, want index 18 at +3600", z)
	}
}
