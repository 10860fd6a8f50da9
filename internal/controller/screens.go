package controller

import (
	"context"
	"fmt"
	"math"

	"github.com/sweeney/medclock/internal/display"
	"github.com/sweeney/medclock/internal/logger"
	"github.com/sweeney/medclock/internal/logic"
)

func line(text string, size, row, col int) display.Line {
	return display.Line{Text: text, Size: size, Row: row, Col: col}
}

// show replaces the screen contents with lines.
func (c *Controller) show(ctx context.Context, lines ...display.Line) {
	c.d.Display.Clear()
	for _, l := range lines {
		c.d.Display.DrawText(l.Text, l.Size, l.Row, l.Col)
	}
	if err := c.d.Display.Flush(); err != nil {
		logger.Warnf(ctx, "display: %v", err)
	}
}

func (c *Controller) showIdle(ctx context.Context) {
	hour, minute := "--", "--"
	if c.hasReading {
		hour = fmt.Sprintf("%02d", c.reading.Hour)
		minute = fmt.Sprintf("%02d", c.reading.Minute)
	}
	c.show(ctx,
		line(hour, 2, 0, 10),
		line(":", 2, 0, 40),
		line(minute, 2, 0, 50),
		line(envLine("Temp: ", c.env.Temperature, "C", c.env.TempLevel), 1, 20, 0),
		line(envLine("Hum : ", c.env.Humidity, "%", c.env.HumidityLevel), 1, 30, 0),
	)
}

// envLine renders one reading with its Low/High suffix, or "--" on a fault.
func envLine(label string, v float64, unit string, l logic.Level) string {
	if l == logic.LevelFault || math.IsNaN(v) {
		return label + "--"
	}
	s := fmt.Sprintf("%s%.2f%s", label, v, unit)
	switch l {
	case logic.LevelLow:
		s += " Low"
	case logic.LevelHigh:
		s += " High"
	}
	return s
}

func zoneLines(i int) []display.Line {
	z := logic.ZoneAt(i)
	return []display.Line{
		line("Zone: UTC "+z.FormatOffset(), 1, 0, 0),
		line("Name: "+z.Name, 1, 10, 0),
	}
}

func alarmLabel(i int, a logic.Alarm) string {
	return fmt.Sprintf("Alarm %d: %s", i+1, a)
}
