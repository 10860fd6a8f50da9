package logic

import "math"

// Level is the classification of a single environment reading.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelNormal Level = "NORMAL"
	LevelHigh   Level = "HIGH"
	// LevelFault marks a reading the sensor could not produce. It is neither
	// confirmed low nor confirmed high, so it never lights an indicator.
	LevelFault Level = "FAULT"
)

// OutOfRange reports whether the level should light its indicator.
func (l Level) OutOfRange() bool {
	return l == LevelLow || l == LevelHigh
}

// Range is an inclusive comfort band.
type Range struct {
	Low  float64
	High float64
}

// Comfort bands. Values on the boundary are Normal.
var (
	TemperatureRange = Range{Low: 24, High: 32}
	HumidityRange    = Range{Low: 65, High: 80}
)

// Classify places v relative to the band. NaN and infinities are faults.
func (r Range) Classify(v float64) Level {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return LevelFault
	case v < r.Low:
		return LevelLow
	case v > r.High:
		return LevelHigh
	default:
		return LevelNormal
	}
}

// EnvReport is one tick's environment assessment. It is recomputed from
// scratch every tick; there is no hysteresis.
type EnvReport struct {
	Temperature   float64
	Humidity      float64
	TempLevel     Level
	HumidityLevel Level
}

// Assess classifies a temperature (C) and relative humidity (%) pair.
func Assess(temperature, humidity float64) EnvReport {
	return EnvReport{
		Temperature:   temperature,
		Humidity:      humidity,
		TempLevel:     TemperatureRange.Classify(temperature),
		HumidityLevel: HumidityRange.Classify(humidity),
	}
}

// Indicators returns the desired state of the temperature and humidity LEDs.
func (r EnvReport) Indicators() (temperature, humidity bool) {
	return r.TempLevel.OutOfRange(), r.HumidityLevel.OutOfRange()
}

// SameLevels reports whether two reports classify identically.
func (r EnvReport) SameLevels(o EnvReport) bool {
	return r.TempLevel == o.TempLevel && r.HumidityLevel == o.HumidityLevel
}
