// Package sensor reads temperature and relative humidity from a DHT11/DHT22
// bound to the Linux IIO dht11 driver.
package sensor

import (
	"errors"
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// DefaultDevice is the sysfs directory of the first IIO device.
const DefaultDevice = "/sys/bus/iio/devices/iio:device0"

const (
	tempAttr     = "in_temp_input"
	humidityAttr = "in_humidityrelative_input"
)

// DHT reads the driver's sysfs attributes. Values are reported in milli-units.
// The driver returns EIO when a transfer fails its checksum; such a read is
// surfaced as an error and the caller treats the reading as a fault.
type DHT struct {
	fs  afero.Fs
	dir string
}

// NewDHT creates a sensor reading from dir on fs.
func NewDHT(fs afero.Fs, dir string) *DHT {
	if dir == "" {
		dir = DefaultDevice
	}
	return &DHT{fs: fs, dir: dir}
}

// Temperature returns degrees Celsius.
func (d *DHT) Temperature() (float64, error) {
	return d.read(tempAttr)
}

// Humidity returns relative humidity in percent.
func (d *DHT) Humidity() (float64, error) {
	return d.read(humidityAttr)
}

func (d *DHT) read(attr string) (float64, error) {
	p := path.Join(d.dir, attr)
	b, err := afero.ReadFile(d.fs, p)
	if err != nil {
		return math.NaN(), fmt.Errorf("read %s: %w", p, err)
	}
	milli, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return math.NaN(), fmt.Errorf("parse %s: %w", p, err)
	}
	return float64(milli) / 1000, nil
}

// Fake is a test double returning fixed or scripted values.
type Fake struct {
	Temp float64
	Hum  float64

	// TempError and HumError, if set, are returned instead of the values.
	TempError error
	HumError  error

	Reads int
}

// ErrFault is a convenience error for scripting sensor faults.
var ErrFault = errors.New("sensor: read fault")

// Temperature returns Temp or TempError.
func (f *Fake) Temperature() (float64, error) {
	f.Reads++
	if f.TempError != nil {
		return math.NaN(), f.TempError
	}
	return f.Temp, nil
}

// Humidity returns Hum or HumError.
func (f *Fake) Humidity() (float64, error) {
	if f.HumError != nil {
		return math.NaN(), f.HumError
	}
	return f.Hum, nil
}
