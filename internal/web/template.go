package web

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"time"

	"github.com/sweeney/medclock/internal/logic"
	"github.com/sweeney/medclock/internal/status"
)

// row is one labelled line of the status page. Class picks its colour.
type row struct {
	Label string
	Value string
	Class string
}

type section struct {
	Title string
	Rows  []row
}

type page struct {
	Headline string
	Sub      string
	Mode     string
	Sections []section
}

func newPage(snap status.Snapshot) page {
	p := page{
		Headline: "--:--",
		Sub:      fmt.Sprintf("%s (UTC %s)", snap.Zone.Name, snap.Zone.FormatOffset()),
		Mode:     string(snap.Mode),
	}
	if snap.ClockValid {
		p.Headline = snap.Clock.String()
	}
	if snap.ClockError != "" {
		p.Sub += " · clock fault: " + snap.ClockError
	}

	p.Sections = []section{
		{Title: "Alarms", Rows: alarmRows(snap)},
		{Title: "Environment", Rows: envRows(snap)},
		{Title: "Connectivity", Rows: connectivityRows(snap)},
		{Title: "Device", Rows: deviceRows(snap)},
	}
	return p
}

func alarmRows(snap status.Snapshot) []row {
	rows := make([]row, 0, len(snap.Alarms))
	for i, a := range snap.Alarms {
		r := row{Label: fmt.Sprintf("Alarm %d", i+1), Value: "unset", Class: "off"}
		if at, ok := a.Time(); ok {
			r.Value, r.Class = at.String(), "on"
			if a.Triggered {
				r.Value += " · rung"
			}
			if !a.SnoozeUntil.IsZero() {
				r.Value += " · snoozed until " + a.SnoozeUntil.UTC().Format("15:04:05") + "Z"
				r.Class = "alert"
			}
		}
		rows = append(rows, r)
	}
	return rows
}

func envRows(snap status.Snapshot) []row {
	if !snap.EnvKnown {
		return []row{{Label: "Sensor", Value: "waiting for first reading", Class: "unknown"}}
	}
	e := snap.Env
	return []row{
		{Label: "Temperature", Value: reading(e.Temperature, e.TempLevel, "C"), Class: levelClass(e.TempLevel)},
		{Label: "Humidity", Value: reading(e.Humidity, e.HumidityLevel, "%"), Class: levelClass(e.HumidityLevel)},
	}
}

func connectivityRows(snap status.Snapshot) []row {
	mqtt := row{Label: "MQTT", Value: "disconnected", Class: "alert"}
	switch {
	case snap.Config.Broker == "":
		mqtt.Value, mqtt.Class = "off", "off"
	case snap.MQTTConnected:
		mqtt.Value, mqtt.Class = "connected", "ok"
	}
	if snap.Config.Broker != "" {
		mqtt.Value += fmt.Sprintf(" · %s · %d buffered", snap.Config.Broker, snap.MQTTBuffered)
	}
	rows := []row{mqtt}

	if n := snap.Network; n != nil {
		v := n.Status
		if n.Type != "" {
			v += " · " + n.Type
		}
		if n.SSID != "" {
			v += " · " + n.SSID
		}
		if n.IP != "" {
			v += " · " + n.IP
		}
		rows = append(rows, row{Label: "Network", Value: v})
	}
	return rows
}

func deviceRows(snap status.Snapshot) []row {
	c := snap.Config
	ntp := c.NTPServer
	if ntp == "" {
		ntp = "local clock"
	}
	heartbeat := "disabled"
	if c.HeartbeatMs > 0 {
		heartbeat = (time.Duration(c.HeartbeatMs) * time.Millisecond).String()
	}
	return []row{
		{Label: "Uptime", Value: formatUptime(snap.Uptime())},
		{Label: "Started", Value: snap.StartTime.UTC().Format(time.RFC3339)},
		{Label: "Time source", Value: ntp},
		{Label: "Tick", Value: fmt.Sprintf("%dms", c.TickMs)},
		{Label: "Buttons", Value: fmt.Sprintf("debounce %dms · repeat %dms", c.DebounceMs, c.RepeatMs)},
		{Label: "Heartbeat", Value: heartbeat},
	}
}

func reading(v float64, l logic.Level, unit string) string {
	if l == logic.LevelFault || math.IsNaN(v) {
		return "-- " + string(l)
	}
	return fmt.Sprintf("%.2f%s %s", v, unit, l)
}

func levelClass(l logic.Level) string {
	switch l {
	case logic.LevelNormal:
		return "ok"
	case logic.LevelFault:
		return "unknown"
	default:
		return "alert"
	}
}

func formatUptime(d time.Duration) string {
	d = d.Truncate(time.Second)
	days := int(d.Hours()) / 24
	h := int(d.Hours()) % 24
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="10">
<title>medclock · {{.Headline}}</title>
<style>
body { font-family: ui-monospace, monospace; background: #111; color: #ddd; max-width: 34em; margin: 1.5em auto; padding: 0 1em; }
header { border: 1px solid #2a6; border-radius: 6px; padding: .6em 1em; }
.clock { font-size: 3em; letter-spacing: .05em; }
.sub, .mode { color: #999; }
h2 { font-size: 1em; text-transform: uppercase; color: #6cf; margin: 1.4em 0 .3em; }
dl { display: grid; grid-template-columns: 9em 1fr; gap: .2em .8em; margin: 0; }
dt { color: #888; }
dd { margin: 0; }
.ok, .on { color: #4c4; }
.alert { color: #f55; font-weight: bold; }
.off { color: #666; }
.unknown { color: #fa3; }
footer { margin-top: 1.5em; color: #666; }
a { color: #6cf; }
</style>
</head>
<body>
<header>
<div class="clock">{{.Headline}}</div>
<div class="sub">{{.Sub}}</div>
<div class="mode">mode {{.Mode}}</div>
</header>
{{range .Sections}}
<h2>{{.Title}}</h2>
<dl>
{{range .Rows}}<dt>{{.Label}}</dt><dd{{with .Class}} class="{{.}}"{{end}}>{{.Value}}</dd>
{{end}}</dl>
{{end}}
<footer><a href="/index.json">index.json</a> · <a href="/healthz">healthz</a></footer>
</body>
</html>
`))

func renderHTML(w io.Writer, snap status.Snapshot) error {
	return pageTmpl.Execute(w, newPage(snap))
}
