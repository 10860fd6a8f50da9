package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/medclock/internal/gpio"
	"github.com/sweeney/medclock/internal/logic"
)

// TestLoadMissingFileYieldsDefaults checks that a fresh install runs without a settings file.
func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(afero.NewMemMapFs(), "/etc/medclock/medclock.yaml")
	require.NoError(t, err)

	require.Equal(t, logic.DefaultZone, cfg.Zone())
	require.Equal(t, []string{"10:30", "10:31"}, cfg.Alarms)
	require.Equal(t, time.Second, cfg.Tick)
	require.Equal(t, gpio.DefaultPins, cfg.GPIO.Pins)
	require.Equal(t, DefaultBroker, cfg.MQTTBroker())
	require.Equal(t, DefaultNTP, cfg.TimeServer())
}

// TestLoadOverrides verifies YAML keys, including inline pins and durations.
func TestLoadOverrides(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte(`
broker: "off"
http_addr: ":9090"
ntp_server: "off"
time_zone: 28
alarms: ["07:15", ""]
tick: 500ms
debounce: 30ms
gpio:
  chip: gpiochip4
  up: 5
  down: 6
  ok: 13
  cancel: 19
  buzzer: 12
  temp_led: 20
  humidity_led: 21
log:
  level: debug
`), 0o644))

	cfg, err := Load(fs, "/c.yaml")
	require.NoError(t, err)

	require.Equal(t, "", cfg.MQTTBroker())
	require.Equal(t, "", cfg.TimeServer())
	require.Equal(t, ":9090", cfg.StatusAddr())
	require.Equal(t, 28, cfg.Zone())
	require.Equal(t, 500*time.Millisecond, cfg.Tick)
	require.Equal(t, 30*time.Millisecond, cfg.Debounce)
	require.Equal(t, gpio.DefaultRepeat, cfg.Repeat)
	require.Equal(t, "gpiochip4", cfg.GPIO.Chip)
	require.Equal(t, 13, cfg.GPIO.Pins.Ok)
	require.Equal(t, 21, cfg.GPIO.Pins.HumidityLED)
	require.Equal(t, "debug", cfg.Log.Level)

	alarms, err := ParseAlarms(cfg.Alarms)
	require.NoError(t, err)
	require.Len(t, alarms, 2)
	require.Equal(t, "7:15", alarms[0].String())
	require.False(t, alarms[1].Active())
}

// TestValidate checks the rejection paths.
func TestValidate(t *testing.T) {
	t.Parallel()

	bad := 43
	require.Error(t, Validate(&Config{TimeZone: &bad}))
	require.Error(t, Validate(&Config{Alarms: []string{"10:30", "10:31", "10:32"}}))
	require.Error(t, Validate(&Config{Alarms: []string{"24:00"}}))
	require.Error(t, Validate(&Config{Alarms: []string{"1030"}}))
	require.Error(t, Validate(&Config{Broker: "not a url"}))
	require.Error(t, Validate(nil))

	zero := 0
	require.NoError(t, Validate(&Config{TimeZone: &zero, Alarms: []string{}}))
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg := Default()
	cfg.Alarms = []string{"", "21:00"}
	cfg.Repeat = 250 * time.Millisecond

	require.NoError(t, Save(fs, "/medclock.yaml", cfg))

	loaded, err := Load(fs, "/medclock.yaml")
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}
