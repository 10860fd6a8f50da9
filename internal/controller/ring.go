package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/sweeney/medclock/internal/logger"
	"github.com/sweeney/medclock/internal/logic"
)

// Melody is the ascending scale played while an alarm rings, in Hz.
var Melody = [...]int{262, 294, 330, 349, 392, 440, 494}

const (
	noteLength     = 500 * time.Millisecond
	noteGap        = 100 * time.Millisecond
	snoozeRedraw   = 500 * time.Millisecond
	ringingMessage = "MEDICINE TIME!"
)

// ring latches slot i and runs the ringing sub-machine until the user
// dismisses it. Ok snoozes; when the snooze runs out the alarm rings again
// whatever the clock now says.
func (c *Controller) ring(ctx context.Context, i int) error {
	c.engine.Trigger(c.alarms, i)
	at, _ := c.alarms.Get(i).Time()
	id := c.newRingID()
	ctx = logger.WithKV(logger.WithKV(ctx, "slot", i+1), "ring_id", id)
	defer c.setMode(logic.ModeIdle)

	for {
		c.setMode(logic.ModeRinging)
		c.trackAlarms()
		logger.Infof(ctx, "alarm %s ringing", logic.FormatClock(at))
		c.publish(ctx, logic.Event{Type: logic.EventAlarmRinging, Slot: i, RingID: id, Time: at.String()})
		c.show(ctx, line(ringingMessage, 1, 20, 10))

		b, err := c.playUntilPressed(ctx)
		c.silence(ctx)
		if err != nil {
			return err
		}
		if b == logic.ButtonCancel {
			c.dismiss(ctx, i, id, at)
			return nil
		}

		until := c.d.Timer.Now().Add(logic.SnoozeDuration)
		c.alarms.Snooze(i, until)
		c.setMode(logic.ModeSnoozed)
		c.trackAlarms()
		logger.Infof(ctx, "snoozed until %s", until.Format(time.TimeOnly))
		c.publish(ctx, logic.Event{Type: logic.EventAlarmSnoozed, Slot: i, RingID: id, Time: at.String(), Until: until})

		cancelled, err := c.snoozeCountdown(ctx, until)
		if err != nil {
			return err
		}
		if cancelled {
			c.dismiss(ctx, i, id, at)
			return nil
		}
		c.alarms.Snooze(i, time.Time{})
	}
}

// playUntilPressed loops the melody until Ok or Cancel. Input is sampled
// every poll interval through each note and gap, so the buttons keep
// debouncing while the buzzer sounds and a press cuts the note short.
func (c *Controller) playUntilPressed(ctx context.Context) (logic.Button, error) {
	for {
		for _, hz := range Melody {
			if err := c.d.Tone.Emit(hz, noteLength); err != nil {
				logger.Warnf(ctx, "buzzer: %v", err)
			}
			if b, err := c.listen(ctx, noteLength); err != nil || b != logic.ButtonNone {
				return b, err
			}
			c.silence(ctx)
			if b, err := c.listen(ctx, noteGap); err != nil || b != logic.ButtonNone {
				return b, err
			}
		}
	}
}

// listen polls input for d and returns the first Ok or Cancel.
func (c *Controller) listen(ctx context.Context, d time.Duration) (logic.Button, error) {
	end := c.d.Timer.Now().Add(d)
	for {
		b, err := c.pollInput(ctx)
		if err != nil {
			return logic.ButtonNone, err
		}
		if b == logic.ButtonOk || b == logic.ButtonCancel {
			return b, nil
		}
		left := end.Sub(c.d.Timer.Now())
		if left <= 0 {
			return logic.ButtonNone, nil
		}
		if err := c.d.Timer.Sleep(ctx, min(c.poll, left)); err != nil {
			return logic.ButtonNone, err
		}
	}
}

// snoozeCountdown shows the time left until the deadline, refreshed every
// half second, and reports whether Cancel cut it short.
func (c *Controller) snoozeCountdown(ctx context.Context, until time.Time) (bool, error) {
	for {
		now := c.d.Timer.Now()
		left := until.Sub(now)
		if left <= 0 {
			return false, nil
		}
		c.show(ctx, line("Snooze: "+formatCountdown(left), 1, 20, 10))

		end := now.Add(min(snoozeRedraw, left))
		for c.d.Timer.Now().Before(end) {
			b, err := c.pollInput(ctx)
			if err != nil {
				return false, err
			}
			if b == logic.ButtonCancel {
				return true, nil
			}
			if err := c.d.Timer.Sleep(ctx, c.poll); err != nil {
				return false, err
			}
		}
	}
}

func (c *Controller) dismiss(ctx context.Context, i int, id string, at logic.Reading) {
	c.alarms.Dismiss(i)
	c.trackAlarms()
	logger.Infof(ctx, "alarm %s dismissed", logic.FormatClock(at))
	c.publish(ctx, logic.Event{Type: logic.EventAlarmDismissed, Slot: i, RingID: id, Time: at.String()})
}

func (c *Controller) silence(ctx context.Context) {
	if err := c.d.Tone.Silence(); err != nil {
		logger.Warnf(ctx, "buzzer: %v", err)
	}
}

// formatCountdown renders d as "M:SS", rounding partial seconds up.
func formatCountdown(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
