//go:build linux

package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/medclock/internal/logic"
)

// Board drives the clock's buttons, indicator LEDs and buzzer using the
// Linux GPIO character device.
type Board struct {
	chip    *gpiocdev.Chip
	buttons [4]*gpiocdev.Line // indexed like logic.Buttons
	leds    [2]*gpiocdev.Line // indexed by logic.Indicator
	buzzer  *gpiocdev.Line

	debouncer *logic.Debouncer
	now       func() time.Time

	toneMu   sync.Mutex
	toneStop chan struct{}
	toneDone chan struct{}
}

// Open requests all lines on chipName.
// Buttons are inputs with pull-up, wired active-low to ground.
func Open(chipName string, pins Pins, debounce, repeat time.Duration) (*Board, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	b := &Board{
		chip:      chip,
		debouncer: logic.NewDebouncer(debounce, repeat),
		now:       time.Now,
	}

	for i, pin := range []int{pins.Up, pins.Down, pins.Ok, pins.Cancel} {
		line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", logic.Buttons[i], pin, err)
		}
		b.buttons[i] = line
	}

	for i, pin := range []int{pins.TempLED, pins.HumidityLED} {
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request %s led pin %d: %w", logic.Indicator(i), pin, err)
		}
		b.leds[i] = line
	}

	b.buzzer, err = chip.RequestLine(pins.Buzzer, gpiocdev.AsOutput(0))
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request buzzer pin %d: %w", pins.Buzzer, err)
	}

	return b, nil
}

// Poll samples the four buttons once and returns a debounced press, or
// logic.ButtonNone. It must be called repeatedly for debouncing to progress.
// Inverts raw GPIO: raw inactive (0) = pressed.
func (b *Board) Poll() (logic.Button, error) {
	s := logic.ButtonSample{Time: b.now()}
	for i, line := range b.buttons {
		raw, err := line.Value()
		if err != nil {
			return logic.ButtonNone, fmt.Errorf("read %s pin: %w", logic.Buttons[i], err)
		}
		s.Pressed[i] = raw == 0
	}
	return b.debouncer.Process(s), nil
}

// Set drives an indicator LED.
func (b *Board) Set(ind logic.Indicator, on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := b.leds[ind].SetValue(v); err != nil {
		return fmt.Errorf("set %s led: %w", ind, err)
	}
	return nil
}

// Emit starts a square wave of hz on the buzzer and returns immediately.
// The tone stops by itself after d, or earlier on Silence or the next Emit.
func (b *Board) Emit(hz int, d time.Duration) error {
	if hz <= 0 {
		return fmt.Errorf("emit: invalid frequency %d", hz)
	}
	b.Silence()

	b.toneMu.Lock()
	defer b.toneMu.Unlock()

	stop := make(chan struct{})
	done := make(chan struct{})
	b.toneStop, b.toneDone = stop, done

	go b.squareWave(time.Second/time.Duration(2*hz), d, stop, done)
	return nil
}

// Silence stops any running tone and drives the buzzer low.
func (b *Board) Silence() error {
	b.toneMu.Lock()
	stop, done := b.toneStop, b.toneDone
	b.toneStop, b.toneDone = nil, nil
	b.toneMu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	if err := b.buzzer.SetValue(0); err != nil {
		return fmt.Errorf("silence buzzer: %w", err)
	}
	return nil
}

func (b *Board) squareWave(half, d time.Duration, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(half)
	defer ticker.Stop()
	deadline := time.NewTimer(d)
	defer deadline.Stop()

	level := 0
	for {
		select {
		case <-stop:
			return
		case <-deadline.C:
			b.buzzer.SetValue(0)
			return
		case <-ticker.C:
			level ^= 1
			b.buzzer.SetValue(level)
		}
	}
}

// Close releases GPIO resources.
// Outputs are driven low and every line is reconfigured to input before
// closing so the board boots in a clean state.
func (b *Board) Close() error {
	var errs []error

	if b.buzzer != nil {
		b.Silence()
	}

	lines := append([]*gpiocdev.Line{}, b.buttons[:]...)
	lines = append(lines, b.leds[:]...)
	lines = append(lines, b.buzzer)
	for _, line := range lines {
		if line == nil {
			continue
		}
		if err := line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", line.Offset(), err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", line.Offset(), err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
