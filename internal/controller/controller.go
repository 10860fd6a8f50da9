// Package controller runs the medicine clock: a single-threaded cooperative
// loop that refreshes the clock, rings due alarms, monitors the environment
// and hands control to the menu when Ok is pressed.
//
// Every blocking wait (ringing, snooze countdown, menu input, confirmation
// screens) runs on the calling goroutine and owns all collaborators until it
// returns. Nothing else touches the alarm registry, zone or menu selection.
package controller

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/medclock/internal/gpio"
	"github.com/sweeney/medclock/internal/logger"
	"github.com/sweeney/medclock/internal/logic"
	"github.com/sweeney/medclock/internal/status"
)

// Input returns one debounced button event per call, or ButtonNone.
type Input interface {
	Poll() (logic.Button, error)
}

// Renderer draws text lines and pushes them to the screen on Flush.
type Renderer interface {
	Clear()
	DrawText(text string, size, row, col int)
	Flush() error
}

// ClockSync reports the zone-adjusted wall clock.
type ClockSync interface {
	Synchronize(offsetSeconds int) error
	Read() (logic.Reading, error)
}

// Sensor reads the environment. Faults come back as NaN or an error.
type Sensor interface {
	Temperature() (float64, error)
	Humidity() (float64, error)
}

// Indicators drives the two environment fault LEDs.
type Indicators interface {
	Set(ind logic.Indicator, on bool) error
}

// Tone drives the buzzer. Emit starts a note and returns immediately.
type Tone interface {
	Emit(hz int, d time.Duration) error
	Silence() error
}

// Timer supplies time and cancellable sleeps.
type Timer interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// Publisher receives controller events.
type Publisher interface {
	Publish(event logic.Event) error
}

// Deps are the collaborators a Controller drives. Publisher and Tracker are
// optional.
type Deps struct {
	Input      Input
	Display    Renderer
	Clock      ClockSync
	Sensor     Sensor
	Indicators Indicators
	Tone       Tone
	Timer      Timer
	Publisher  Publisher
	Tracker    *status.Tracker
}

// Default timings.
const (
	DefaultTick         = time.Second
	DefaultPollInterval = 20 * time.Millisecond
)

// Options configure the initial state of a Controller.
type Options struct {
	// Zone is the index into logic.Zones.
	Zone int

	// Alarms seeds the registry, slot by slot.
	Alarms []logic.Alarm

	// Tick is the idle loop cadence.
	Tick time.Duration

	// PollInterval is the sleep between input polls in every blocking wait.
	PollInterval time.Duration

	// NewRingID generates the identifier shared by all events of one ringing
	// episode. Defaults to a random UUID.
	NewRingID func() string
}

// Controller owns the alarm registry, zone selection and menu selection.
type Controller struct {
	d    Deps
	tick time.Duration
	poll time.Duration

	newRingID func() string

	alarms *logic.AlarmSet
	engine *logic.Engine
	zone   int
	menu   int

	reading    logic.Reading
	hasReading bool
	clockFault bool

	env    logic.EnvReport
	hasEnv bool
}

// New creates a Controller. Zero option values select defaults.
func New(d Deps, opts Options) *Controller {
	c := &Controller{
		d:         d,
		tick:      opts.Tick,
		poll:      opts.PollInterval,
		newRingID: opts.NewRingID,
		alarms:    logic.NewAlarmSet(opts.Alarms...),
		engine:    logic.NewEngine(),
		zone:      logic.Wrap(opts.Zone, len(logic.Zones)),
	}
	if c.tick <= 0 {
		c.tick = DefaultTick
	}
	if c.poll <= 0 {
		c.poll = DefaultPollInterval
	}
	if c.newRingID == nil {
		c.newRingID = uuid.NewString
	}
	return c
}

// Alarms returns a copy of the alarm registry.
func (c *Controller) Alarms() [logic.SlotCount]logic.Alarm {
	return c.alarms.Slots()
}

// Zone returns the selected zone index.
func (c *Controller) Zone() int {
	return c.zone
}

// MenuIndex returns the menu entry that will be highlighted on next entry.
func (c *Controller) MenuIndex() int {
	return c.menu
}

// Run synchronizes the clock to the configured zone and ticks until ctx is
// cancelled or the input source closes. A closed input is a clean stop.
func (c *Controller) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "controller")

	z := logic.ZoneAt(c.zone)
	if err := c.d.Clock.Synchronize(z.OffsetSeconds); err != nil {
		logger.Warnf(ctx, "initial clock sync for %s failed: %v", z, err)
	}
	if c.d.Tracker != nil {
		c.d.Tracker.SetZone(c.zone)
		c.d.Tracker.SetAlarms(c.alarms.Slots())
		c.d.Tracker.SetMode(logic.ModeIdle)
	}
	logger.InfoKV(ctx, "controller started", "zone", z.String(), "alarms", c.alarmSummary())

	for {
		err := c.Tick(ctx)
		switch {
		case errors.Is(err, gpio.ErrInputClosed):
			logger.Infof(ctx, "input closed, stopping")
			return nil
		case err != nil:
			return err
		}
	}
}

// Tick runs one idle pass: clock refresh, alarm evaluation, environment
// monitoring, idle screen, then one tick interval of listening for Ok.
func (c *Controller) Tick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if c.refreshClock(ctx) {
		for _, i := range c.engine.Due(c.alarms, c.reading, c.d.Timer.Now()) {
			if err := c.ring(ctx, i); err != nil {
				return err
			}
		}
	}

	c.monitorEnv(ctx)
	c.showIdle(ctx)
	return c.idleWait(ctx)
}

// refreshClock reads Clock Sync and reports whether alarms may be evaluated.
// A failed read keeps the previous reading on screen.
func (c *Controller) refreshClock(ctx context.Context) bool {
	r, err := c.d.Clock.Read()
	if c.d.Tracker != nil {
		c.d.Tracker.SetClock(r, err)
	}
	if err != nil {
		if !c.clockFault {
			c.clockFault = true
			logger.WarnKV(ctx, "clock read failed, skipping alarm evaluation", "error", err)
			c.publish(ctx, logic.Event{Type: logic.EventClockFault, Reason: err.Error()})
		} else {
			logger.DebugKV(ctx, "clock still failing", "error", err)
		}
		return false
	}
	if c.clockFault {
		c.clockFault = false
		logger.Infof(ctx, "clock recovered at %s", r)
	}
	c.reading = r
	c.hasReading = true
	return true
}

// monitorEnv classifies the current readings, drives the indicators and
// reports classification changes.
func (c *Controller) monitorEnv(ctx context.Context) {
	temp, terr := c.d.Sensor.Temperature()
	if terr != nil {
		temp = math.NaN()
	}
	hum, herr := c.d.Sensor.Humidity()
	if herr != nil {
		hum = math.NaN()
	}

	rep := logic.Assess(temp, hum)
	tOn, hOn := rep.Indicators()
	if err := c.d.Indicators.Set(logic.IndicatorTemperature, tOn); err != nil {
		logger.Warnf(ctx, "set temperature indicator: %v", err)
	}
	if err := c.d.Indicators.Set(logic.IndicatorHumidity, hOn); err != nil {
		logger.Warnf(ctx, "set humidity indicator: %v", err)
	}

	if !c.hasEnv || !rep.SameLevels(c.env) {
		logger.InfoKV(ctx, "environment changed",
			"temperature_level", rep.TempLevel, "humidity_level", rep.HumidityLevel)
		if terr != nil {
			logger.Warnf(ctx, "temperature sensor: %v", terr)
		}
		if herr != nil {
			logger.Warnf(ctx, "humidity sensor: %v", herr)
		}
		c.publish(ctx, logic.Event{Type: logic.EventEnvChanged, Env: rep})
	}
	c.env = rep
	c.hasEnv = true
	if c.d.Tracker != nil {
		c.d.Tracker.SetEnv(rep)
	}
}

// idleWait listens for Ok for one tick interval. Ok diverts into the menu,
// which ends the tick once it returns.
func (c *Controller) idleWait(ctx context.Context) error {
	deadline := c.d.Timer.Now().Add(c.tick)
	for c.d.Timer.Now().Before(deadline) {
		b, err := c.pollInput(ctx)
		if err != nil {
			return err
		}
		if b == logic.ButtonOk {
			return c.runMenu(ctx)
		}
		if err := c.d.Timer.Sleep(ctx, c.poll); err != nil {
			return err
		}
	}
	return nil
}

// pollInput reads one button. Read errors other than a closed input are
// logged and treated as no press.
func (c *Controller) pollInput(ctx context.Context) (logic.Button, error) {
	b, err := c.d.Input.Poll()
	if errors.Is(err, gpio.ErrInputClosed) {
		return logic.ButtonNone, err
	}
	if err != nil {
		logger.Warnf(ctx, "input: %v", err)
		return logic.ButtonNone, nil
	}
	return b, nil
}

// waitButton blocks until any button is pressed.
func (c *Controller) waitButton(ctx context.Context) (logic.Button, error) {
	for {
		b, err := c.pollInput(ctx)
		if err != nil || b != logic.ButtonNone {
			return b, err
		}
		if err := c.d.Timer.Sleep(ctx, c.poll); err != nil {
			return logic.ButtonNone, err
		}
	}
}

func (c *Controller) publish(ctx context.Context, e logic.Event) {
	if c.d.Publisher == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = c.d.Timer.Now()
	}
	if err := c.d.Publisher.Publish(e); err != nil {
		logger.WarnKV(ctx, "publish failed", "event", e.Type, "error", err)
	}
}

func (c *Controller) setMode(m logic.Mode) {
	if c.d.Tracker != nil {
		c.d.Tracker.SetMode(m)
	}
}

func (c *Controller) trackAlarms() {
	if c.d.Tracker != nil {
		c.d.Tracker.SetAlarms(c.alarms.Slots())
	}
}

func (c *Controller) alarmSummary() []string {
	out := make([]string, 0, logic.SlotCount)
	for _, a := range c.alarms.Slots() {
		out = append(out, a.String())
	}
	return out
}
