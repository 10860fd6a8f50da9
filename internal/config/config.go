// Package config loads the medclock settings file.
//
// Settings are YAML. A missing file yields defaults; Validate fills in any
// unset field and rejects values that cannot be used.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/medclock/internal/gpio"
	"github.com/sweeney/medclock/internal/logic"
	"github.com/sweeney/medclock/internal/sensor"
)

const (
	// DefaultConfigFilename is the default settings path.
	DefaultConfigFilename = "/etc/medclock/medclock.yaml"

	DefaultBroker    = "tcp://127.0.0.1:1883"
	DefaultClientID  = "medclock"
	DefaultHTTPAddr  = ":8080"
	DefaultNTP       = "pool.ntp.org"
	DefaultTick      = time.Second
	DefaultPIDFile   = "/run/medclock.pid"
	DefaultHeartbeat = 15 * time.Minute

	// Off disables an optional service (broker, http_addr, ntp_server).
	Off = "off"
)

// DefaultAlarms are the two slots set at process start.
var DefaultAlarms = []string{"10:30", "10:31"}

var (
	errConfigIsNotSet = errors.New("configuration is not set")
	errTooManyAlarms  = fmt.Errorf("at most %d alarms can be configured", logic.SlotCount)
)

// Config holds medclock settings.
type Config struct {
	// Broker is the MQTT broker URL; "off" disables publishing.
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	// HTTPAddr is the status server address; "off" disables it.
	HTTPAddr string `yaml:"http_addr"`
	// NTPServer corrects the local clock; "off" trusts the system clock.
	NTPServer string `yaml:"ntp_server"`
	// TimeZone indexes logic.Zones.
	TimeZone *int `yaml:"time_zone"`
	// Alarms holds up to two "HH:MM" entries; "" leaves a slot unset.
	Alarms    []string      `yaml:"alarms"`
	Tick      time.Duration `yaml:"tick"`
	Debounce  time.Duration `yaml:"debounce"`
	Repeat    time.Duration `yaml:"repeat"`
	Heartbeat time.Duration `yaml:"heartbeat"`
	PIDFile   string        `yaml:"pid_file"`

	Log     LogConfig     `yaml:"log"`
	GPIO    GPIOConfig    `yaml:"gpio"`
	Display DisplayConfig `yaml:"display"`
	Sensor  SensorConfig  `yaml:"sensor"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// GPIOConfig selects the chip and line offsets.
type GPIOConfig struct {
	Chip string    `yaml:"chip"`
	Pins gpio.Pins `yaml:",inline"`
}

// DisplayConfig selects the I2C bus of the OLED.
type DisplayConfig struct {
	Bus string `yaml:"bus"`
}

// SensorConfig selects the IIO device directory.
type SensorConfig struct {
	Device string `yaml:"device"`
}

// Default returns a validated default configuration.
func Default() *Config {
	cfg := &Config{}
	_ = Validate(cfg)
	return cfg
}

// Load reads configuration from path on fsys. A missing file yields defaults.
func Load(fsys afero.Fs, path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to path on fsys.
func Save(fsys afero.Fs, path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}
	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Validate checks settings and fills defaults.
func Validate(c *Config) error {
	if c == nil {
		return errConfigIsNotSet
	}

	if c.ClientID == "" {
		c.ClientID = DefaultClientID
	}
	if c.Broker == "" {
		c.Broker = DefaultBroker
	}
	if c.Broker != Off {
		u, err := url.Parse(c.Broker)
		if err != nil {
			return fmt.Errorf("invalid broker: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid broker %q: want scheme://host:port", c.Broker)
		}
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = DefaultHTTPAddr
	}
	if c.NTPServer == "" {
		c.NTPServer = DefaultNTP
	}
	if c.PIDFile == "" {
		c.PIDFile = DefaultPIDFile
	}
	if c.TimeZone == nil {
		z := logic.DefaultZone
		c.TimeZone = &z
	}
	if *c.TimeZone < 0 || *c.TimeZone >= len(logic.Zones) {
		return fmt.Errorf("time_zone %d out of range 0..%d", *c.TimeZone, len(logic.Zones)-1)
	}

	if c.Alarms == nil {
		c.Alarms = append([]string(nil), DefaultAlarms...)
	}
	if len(c.Alarms) > logic.SlotCount {
		return errTooManyAlarms
	}
	if _, err := ParseAlarms(c.Alarms); err != nil {
		return err
	}

	if c.Tick <= 0 {
		c.Tick = DefaultTick
	}
	if c.Debounce <= 0 {
		c.Debounce = gpio.DefaultDebounce
	}
	if c.Repeat <= 0 {
		c.Repeat = gpio.DefaultRepeat
	}
	if c.Heartbeat == 0 {
		c.Heartbeat = DefaultHeartbeat
	}
	if c.Heartbeat < 0 {
		return errors.New("heartbeat must not be negative")
	}
	if c.GPIO.Chip == "" {
		c.GPIO.Chip = gpio.DefaultChip
	}
	if c.GPIO.Pins == (gpio.Pins{}) {
		c.GPIO.Pins = gpio.DefaultPins
	}
	if c.Sensor.Device == "" {
		c.Sensor.Device = sensor.DefaultDevice
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	return nil
}

// MQTTBroker returns the broker URL, or "" when publishing is off.
func (c *Config) MQTTBroker() string { return enabled(c.Broker) }

// StatusAddr returns the HTTP listen address, or "" when the server is off.
func (c *Config) StatusAddr() string { return enabled(c.HTTPAddr) }

// TimeServer returns the NTP server, or "" to trust the system clock.
func (c *Config) TimeServer() string { return enabled(c.NTPServer) }

// Zone returns the configured zone index.
func (c *Config) Zone() int {
	if c.TimeZone == nil {
		return logic.DefaultZone
	}
	return *c.TimeZone
}

func enabled(v string) string {
	if v == Off {
		return ""
	}
	return v
}

// ParseAlarms converts "HH:MM" entries into alarm slots. "" is an unset slot.
func ParseAlarms(entries []string) ([]logic.Alarm, error) {
	alarms := make([]logic.Alarm, 0, len(entries))
	for i, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			alarms = append(alarms, logic.Alarm{})
			continue
		}
		h, m, err := parseClock(e)
		if err != nil {
			return nil, fmt.Errorf("alarm %d: %w", i+1, err)
		}
		alarms = append(alarms, logic.NewAlarm(h, m))
	}
	return alarms, nil
}

func parseClock(s string) (int, int, error) {
	hs, ms, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(ms)
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h, m, nil
}
