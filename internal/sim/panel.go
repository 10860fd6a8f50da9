// Package sim is a terminal stand-in for the clock hardware. A Panel serves
// as the controller's input, display, indicators, buzzer and sensor, and a
// bubbletea Model draws it and turns key presses into button events.
package sim

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sweeney/medclock/internal/display"
	"github.com/sweeney/medclock/internal/gpio"
	"github.com/sweeney/medclock/internal/logic"
)

// ErrSensorFault is returned by the sensor methods while a fault is simulated.
var ErrSensorFault = errors.New("sim: sensor fault")

const pressQueue = 16

// State is what the terminal shows of the panel.
type State struct {
	Frame       []display.Line
	LEDs        [2]bool
	Note        int
	Temperature float64
	Humidity    float64
	Fault       bool
}

// Panel implements the controller collaborators in memory.
type Panel struct {
	presses   chan logic.Button
	closed    chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	pending []display.Line
	state   State
	notify  func(any)
}

// NewPanel creates a panel whose sensor starts at the given readings.
func NewPanel(temperature, humidity float64) *Panel {
	return &Panel{
		presses: make(chan logic.Button, pressQueue),
		closed:  make(chan struct{}),
		state:   State{Temperature: temperature, Humidity: humidity},
	}
}

// Attach registers the function that receives state updates. Passing a
// tea.Program's Send method keeps the terminal in step with the controller.
func (p *Panel) Attach(notify func(any)) {
	p.mu.Lock()
	p.notify = notify
	p.mu.Unlock()
}

// State returns a copy of the current panel state.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Panel) snapshotLocked() State {
	s := p.state
	s.Frame = append([]display.Line(nil), p.state.Frame...)
	return s
}

func (p *Panel) publish() {
	p.mu.Lock()
	notify := p.notify
	s := p.snapshotLocked()
	p.mu.Unlock()
	if notify != nil {
		notify(stateMsg(s))
	}
}

// Press queues a button event. Presses beyond the queue size are dropped.
func (p *Panel) Press(b logic.Button) {
	select {
	case p.presses <- b:
	default:
	}
}

// Close makes Poll report gpio.ErrInputClosed, which stops the controller.
func (p *Panel) Close() {
	p.closeOnce.Do(func() { close(p.closed) })
}

// Poll returns the next queued press, or ButtonNone.
func (p *Panel) Poll() (logic.Button, error) {
	select {
	case <-p.closed:
		return logic.ButtonNone, gpio.ErrInputClosed
	default:
	}
	select {
	case b := <-p.presses:
		return b, nil
	default:
		return logic.ButtonNone, nil
	}
}

// Clear discards lines drawn since the last Flush.
func (p *Panel) Clear() {
	p.mu.Lock()
	p.pending = nil
	p.mu.Unlock()
}

// DrawText queues a line for the next Flush.
func (p *Panel) DrawText(text string, size, row, col int) {
	p.mu.Lock()
	p.pending = append(p.pending, display.Line{Text: text, Size: size, Row: row, Col: col})
	p.mu.Unlock()
}

// Flush shows the queued lines.
func (p *Panel) Flush() error {
	p.mu.Lock()
	p.state.Frame = p.pending
	p.pending = nil
	p.mu.Unlock()
	p.publish()
	return nil
}

// Set lights or clears an indicator.
func (p *Panel) Set(ind logic.Indicator, on bool) error {
	if ind < 0 || int(ind) >= len(p.state.LEDs) {
		return fmt.Errorf("sim: unknown indicator %d", ind)
	}
	p.mu.Lock()
	changed := p.state.LEDs[ind] != on
	p.state.LEDs[ind] = on
	p.mu.Unlock()
	if changed {
		p.publish()
	}
	return nil
}

// Emit shows the note being played. The controller silences it.
func (p *Panel) Emit(hz int, _ time.Duration) error {
	p.mu.Lock()
	p.state.Note = hz
	p.mu.Unlock()
	p.publish()
	return nil
}

// Silence clears the note.
func (p *Panel) Silence() error {
	p.mu.Lock()
	changed := p.state.Note != 0
	p.state.Note = 0
	p.mu.Unlock()
	if changed {
		p.publish()
	}
	return nil
}

// Temperature returns the simulated temperature in C.
func (p *Panel) Temperature() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Fault {
		return math.NaN(), ErrSensorFault
	}
	return p.state.Temperature, nil
}

// Humidity returns the simulated relative humidity in %.
func (p *Panel) Humidity() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Fault {
		return math.NaN(), ErrSensorFault
	}
	return p.state.Humidity, nil
}

// Adjust shifts the simulated readings.
func (p *Panel) Adjust(dTemp, dHum float64) {
	p.mu.Lock()
	p.state.Temperature += dTemp
	p.state.Humidity = math.Max(0, math.Min(100, p.state.Humidity+dHum))
	p.mu.Unlock()
	p.publish()
}

// ToggleFault switches the simulated sensor fault on or off.
func (p *Panel) ToggleFault() {
	p.mu.Lock()
	p.state.Fault = !p.state.Fault
	p.mu.Unlock()
	p.publish()
}
