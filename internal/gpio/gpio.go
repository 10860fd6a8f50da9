// Package gpio provides the buttons, indicator LEDs and buzzer with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"errors"
	"time"
)

// ErrInputClosed is returned by Poll once an input source has no more presses
// to deliver. The controller treats it as a clean stop.
var ErrInputClosed = errors.New("gpio: input closed")

// DefaultChip is the GPIO character device on a Raspberry Pi.
const DefaultChip = "gpiochip0"

// Pins holds BCM line offsets.
type Pins struct {
	Up          int `yaml:"up"`
	Down        int `yaml:"down"`
	Ok          int `yaml:"ok"`
	Cancel      int `yaml:"cancel"`
	Buzzer      int `yaml:"buzzer"`
	TempLED     int `yaml:"temp_led"`
	HumidityLED int `yaml:"humidity_led"`
}

// Pin definitions (BCM numbering)
var DefaultPins = Pins{
	Up:          17,
	Down:        27,
	Ok:          22,
	Cancel:      23,
	Buzzer:      18,
	TempLED:     24,
	HumidityLED: 25,
}

// Default input timing.
const (
	DefaultDebounce = 50 * time.Millisecond
	DefaultRepeat   = 200 * time.Millisecond
)
