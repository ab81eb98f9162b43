package web

import (
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"github.com/sweeney/greenhouse-relay/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateClass": func(s string) string {
		switch s {
		case "ON":
			return "on"
		case "OFF":
			return "off"
		}
		return "unknown"
	},
	"value": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"clock": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.UTC().Format("2006-01-02T15:04:05Z")
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="30">
<title>Greenhouse Relay</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.error { color: red; }
</style>
</head>
<body>
<h1>Greenhouse Relay</h1>

<h2>Relay</h2>
<table>
<tr><th>State</th><td id="relay-state" class="{{stateClass .Relay}}">{{.Relay}}</td></tr>
<tr><th>Last change</th><td>{{clock .LastChange}}</td></tr>
<tr><th>Schedule</th><td>{{.Config.Schedule}}</td></tr>
<tr><th>Actuator</th><td>{{.Config.Actuator}}</td></tr>
</table>

<h2>Sensors</h2>
<table>
{{range $kind, $r := .Readings}}<tr><th>{{$kind}}</th><td>{{value $r.Value}}{{with $r.Unit}} {{.}}{{end}} <small>({{clock $r.ObservedAt}})</small></td></tr>
{{else}}<tr><td colspan="2">no readings</td></tr>
{{end}}</table>

<h2>Counts</h2>
<table>
<tr><th>Relay ON</th><td>{{.RelayCounts.On}}</td></tr>
<tr><th>Relay OFF</th><td>{{.RelayCounts.Off}}</td></tr>
<tr><th>Write failures</th><td>{{.RelayCounts.WriteFailures}}</td></tr>
<tr><th>Schedule errors</th><td>{{.RelayCounts.ScheduleErrors}}</td></tr>
<tr><th>Reads (failed)</th><td>{{.IO.Reads}} ({{.IO.ReadFailures}})</td></tr>
</table>
{{if .LastError}}<p class="error">Last error at {{clock .LastErrorAt}}: {{.LastError}}</p>{{end}}

<h2>Connectivity</h2>
<table>
<tr><th>Backend</th><td>{{.Config.Backend}}{{if .Config.Port}} ({{.Config.Port}}){{end}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{clock .StartTime}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Sensor poll</th><td>{{if eq .Config.SensorPollMs 0}}disabled{{else}}{{.Config.SensorPollMs}}ms{{end}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Relay  string
		Uptime time.Duration
	}{
		Snapshot: snap,
		Relay:    relayText(snap),
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}

func relayText(snap status.Snapshot) string {
	if snap.Relay == "" {
		return "UNKNOWN"
	}
	return string(snap.Relay)
}
