package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/sweeney/medclock/internal/display"
	"github.com/sweeney/medclock/internal/logger"
	"github.com/sweeney/medclock/internal/logic"
)

// MenuLabels are the menu entries in browsing order.
var MenuLabels = [...]string{
	"1. Set Time Zone",
	"2. Set Alarm 1",
	"3. Set Alarm 2",
	"4. View Alarms",
	"5. Delete Alarm",
}

// How long each confirmation screen stays up.
const (
	zoneConfirmHold   = 1500 * time.Millisecond
	alarmSetHold      = time.Second
	viewAlarmsHold    = 2 * time.Second
	deletedHold       = time.Second
	nothingDeleteHold = 2 * time.Second
)

// runMenu browses the menu until Cancel or until a chosen sub-flow finishes.
// Either way control goes back to the idle loop.
func (c *Controller) runMenu(ctx context.Context) error {
	ctx = logger.WithName(ctx, "menu")
	c.setMode(logic.ModeMenu)
	defer c.setMode(logic.ModeIdle)

	for {
		c.show(ctx, line(MenuLabels[c.menu], 1, 20, 0))

		b, err := c.waitButton(ctx)
		if err != nil {
			return err
		}
		switch b {
		case logic.ButtonUp, logic.ButtonDown:
			c.menu = logic.Step(c.menu, len(MenuLabels), b)
		case logic.ButtonCancel:
			return nil
		case logic.ButtonOk:
			logger.Debugf(ctx, "selected %q", MenuLabels[c.menu])
			return c.runAction(ctx, c.menu)
		}
	}
}

func (c *Controller) runAction(ctx context.Context, i int) error {
	switch i {
	case 0:
		return c.setZone(ctx)
	case 1, 2:
		return c.setAlarm(ctx, i-1)
	case 3:
		return c.viewAlarms(ctx)
	default:
		return c.deleteAlarm(ctx)
	}
}

// setZone cycles a working copy of the zone index. Ok commits it and
// resynchronizes the clock before the confirmation appears.
func (c *Controller) setZone(ctx context.Context) error {
	work := c.zone
	for {
		c.show(ctx, zoneLines(work)...)

		b, err := c.waitButton(ctx)
		if err != nil {
			return err
		}
		switch b {
		case logic.ButtonUp, logic.ButtonDown:
			work = logic.Step(work, len(logic.Zones), b)
		case logic.ButtonCancel:
			return nil
		case logic.ButtonOk:
			return c.commitZone(ctx, work)
		}
	}
}

func (c *Controller) commitZone(ctx context.Context, i int) error {
	c.zone = i
	z := logic.ZoneAt(i)
	if err := c.d.Clock.Synchronize(z.OffsetSeconds); err != nil {
		logger.WarnKV(ctx, "clock sync after zone change failed", "zone", z.String(), "error", err)
	}
	// The clock jumps; minutes skipped by the jump are not missed alarms.
	c.engine.Reset()
	if c.d.Tracker != nil {
		c.d.Tracker.SetZone(i)
	}
	logger.Infof(ctx, "time zone set to %s", z)
	c.publish(ctx, logic.Event{Type: logic.EventZoneChanged, Zone: z})

	c.show(ctx,
		line("Time zone set to", 1, 0, 0),
		line(z.Name, 2, 20, 0),
	)
	return c.d.Timer.Sleep(ctx, zoneConfirmHold)
}

// setAlarm edits slot i: hour first, then minute. Cancel at either stage
// leaves the slot untouched.
func (c *Controller) setAlarm(ctx context.Context, i int) error {
	start, active := c.alarms.Get(i).Time()
	if !active {
		start = logic.Reading{}
	}

	hour, ok, err := c.enterValue(ctx, "Enter hour: ", start.Hour, 24)
	if err != nil || !ok {
		return err
	}
	minute, ok, err := c.enterValue(ctx, "Enter min: ", start.Minute, 60)
	if err != nil || !ok {
		return err
	}

	c.alarms.Set(i, hour, minute)
	c.engine.Armed(i)
	c.trackAlarms()
	at := logic.Reading{Hour: hour, Minute: minute}
	logger.Infof(ctx, "alarm %d set to %s", i+1, logic.FormatClock(at))
	c.publish(ctx, logic.Event{Type: logic.EventAlarmSet, Slot: i, Time: at.String()})

	c.show(ctx, line("Alarm is set", 1, 0, 2))
	return c.d.Timer.Sleep(ctx, alarmSetHold)
}

// enterValue adjusts v within [0, n) until Ok (ok=true) or Cancel (ok=false).
func (c *Controller) enterValue(ctx context.Context, prompt string, v, n int) (int, bool, error) {
	for {
		c.show(ctx, line(fmt.Sprintf("%s%d", prompt, v), 1, 0, 2))

		b, err := c.waitButton(ctx)
		if err != nil {
			return 0, false, err
		}
		switch b {
		case logic.ButtonUp, logic.ButtonDown:
			v = logic.Step(v, n, b)
		case logic.ButtonOk:
			return v, true, nil
		case logic.ButtonCancel:
			return 0, false, nil
		}
	}
}

// viewAlarms lists active slots for a fixed interval.
func (c *Controller) viewAlarms(ctx context.Context) error {
	var lines []display.Line
	for i, a := range c.alarms.Slots() {
		if a.Active() {
			lines = append(lines, line(alarmLabel(i, a), 1, len(lines)*10, 0))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, line("No alarms active", 1, 10, 0))
	}
	c.show(ctx, lines...)
	return c.d.Timer.Sleep(ctx, viewAlarmsHold)
}

// deleteAlarm selects among both slots, set or not, and unsets the chosen one
// on Ok. With no active alarms it only shows a notice.
func (c *Controller) deleteAlarm(ctx context.Context) error {
	if c.alarms.ActiveCount() == 0 {
		c.show(ctx, line("No alarms to delete", 1, 0, 0))
		return c.d.Timer.Sleep(ctx, nothingDeleteHold)
	}

	selected := 0
	for {
		lines := make([]display.Line, 0, logic.SlotCount)
		for i, a := range c.alarms.Slots() {
			prefix := "  "
			if i == selected {
				prefix = "> "
			}
			lines = append(lines, line(prefix+alarmLabel(i, a), 1, i*10, 0))
		}
		c.show(ctx, lines...)

		b, err := c.waitButton(ctx)
		if err != nil {
			return err
		}
		switch b {
		case logic.ButtonUp, logic.ButtonDown:
			selected = logic.Step(selected, logic.SlotCount, b)
		case logic.ButtonCancel:
			return nil
		case logic.ButtonOk:
			if c.alarms.IsActive(selected) {
				c.alarms.Delete(selected)
				c.trackAlarms()
				logger.Infof(ctx, "alarm %d deleted", selected+1)
				c.publish(ctx, logic.Event{Type: logic.EventAlarmDeleted, Slot: selected})
			}
			c.show(ctx, line(fmt.Sprintf("Deleted Alarm %d", selected+1), 1, 10, 0))
			return c.d.Timer.Sleep(ctx, deletedHold)
		}
	}
}
