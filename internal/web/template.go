package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/Rjbanks919/ESP32-HomeKit-Fan/internal/status"
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
	"onOff": func(b bool) string {
		if b {
			return "ON"
		}
		return "OFF"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Fan Controller</title>
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
</style>
</head>
<body>
<h1>Fan Controller</h1>

<table>
<tr><th>Power</th><td class="{{if .Fan.On}}on{{else}}off{{end}}">{{onOff .Fan.On}}</td></tr>
<tr><th>Oscillation</th><td class="{{if .Fan.Oscillate}}on{{else}}off{{end}}">{{onOff .Fan.Oscillate}}</td></tr>
<tr><th>Speed</th><td>{{.Fan.Speed}} ({{.Fan.Speed.Percent}}%)</td></tr>
<tr><th>Indicator LEDs</th><td class="{{if .LedsEnabled}}on{{else}}off{{end}}">{{onOff .LedsEnabled}}</td></tr>
</table>

<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}} ({{.Config.Broker}})</td></tr>
<tr><th>Commands (smart home)</th><td>{{.Counts.SmartHome}}</td></tr>
<tr><th>Commands (button)</th><td>{{.Counts.Button}}</td></tr>
<tr><th>Commands (remote)</th><td>{{.Counts.Remote}}</td></tr>
<tr><th>Dropped</th><td>{{.Counts.Dropped}}</td></tr>
</table>

{{if .Network}}
<table>
<tr><th>Network</th><td>{{.Network.Type}} {{.Network.Status}}</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>
{{if .Network.SSID}}<tr><th>Wi-Fi</th><td>{{.Network.SSID}} ({{.Network.WifiStatus}})</td></tr>{{end}}
</table>
{{end}}

<table>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}} ms{{if .Config.SharedClock}} (shared clock){{end}}</td></tr>
<tr><th>Queue capacity</th><td>{{.Config.QueueCapacity}}</td></tr>
<tr><th>GPIO chip</th><td>{{.Config.Chip}}</td></tr>
<tr><th>IR receiver</th><td>{{.Config.LircDevice}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		log.Printf("web: render status page: %v", err)
	}
}
