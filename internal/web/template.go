package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/dock-sensor/internal/status"
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
	"flag": func(b bool, yes, no string) string {
		if b {
			return yes
		}
		return no
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Dock Sensor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
form { display: inline; }
</style>
</head>
<body>
<h1>Dock Sensor</h1>

<h2>Flags</h2>
<table>
<tr><th>Board</th><td id="board" class="{{flag .Flags.Shutdown "off" "on"}}">{{flag .Flags.Shutdown "OFF" "ON"}}</td></tr>
<tr><th>WiFi</th><td id="wifi" class="{{flag .Flags.WiFi "on" "off"}}">{{flag .Flags.WiFi "ACTIVE" "INACTIVE"}}</td></tr>
<tr><th>Charging</th><td id="charging" class="{{flag .Flags.Charging "on" "off"}}">{{flag .Flags.Charging "YES" "NO"}}</td></tr>
<tr><th>Searching</th><td id="searching" class="{{flag .Flags.Searching "on" "off"}}">{{flag .Flags.Searching "YES" "NO"}}</td></tr>
<tr><th>Ready</th><td>{{if .Ready}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Lines</h2>
<table>
{{range .Lines}}<tr><th>{{.Name}}</th><td>{{printf "%4d" .Raw}} ({{printf "%.2f" .Voltage}} V)</td></tr>
{{end}}</table>

<h2>Actions</h2>
<p>
<form method="post" action="/actions/go-to-charger"><button type="submit">Go to charger</button></form>
<form method="post" action="/actions/restart"><button type="submit">Restart board</button></form>
</p>
{{if .LastAction}}<p>Last: {{.LastAction.Name}} {{.LastAction.Result}} at {{.LastAction.Time.UTC.Format "2006-01-02T15:04:05Z"}}</p>{{end}}

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Config.RedisAddr}}<tr><th>Redis</th><td>{{.Config.RedisAddr}}</td></tr>{{end}}
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>WIFI_ACTIVE</th><td>{{.Counts.WiFiActive}}</td></tr>
<tr><th>WIFI_INACTIVE</th><td>{{.Counts.WiFiInactive}}</td></tr>
<tr><th>BOARD_OFF</th><td>{{.Counts.BoardOff}}</td></tr>
<tr><th>BOARD_ON</th><td>{{.Counts.BoardOn}}</td></tr>
<tr><th>SEARCHING_START</th><td>{{.Counts.SearchingStart}}</td></tr>
<tr><th>SEARCHING_STOP</th><td>{{.Counts.SearchingStop}}</td></tr>
<tr><th>CHARGING_START</th><td>{{.Counts.ChargingStart}}</td></tr>
<tr><th>CHARGING_STOP</th><td>{{.Counts.ChargingStop}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Cycles</th><td>{{.Cycles}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>ADC</th><td>{{.Config.ADCDevice}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/metrics">metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Lines  []status.LineJSON
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Lines:    status.Lines(snap.Raw),
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("web: render index: %v", err)
	}
}
