package web

import (
	"html/template"
	"io"
	"log"
	"time"

	"github.com/firstcontact/missing-link/internal/status"
	"github.com/firstcontact/missing-link/internal/topology"
)

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Missing Link — Ring Controller</title>
<style>
  body { font-family: monospace; margin: 2em; background: #111; color: #ddd; }
  h1 { font-size: 1.2em; }
  table { border-collapse: collapse; margin: 1em 0; }
  td, th { border: 1px solid #444; padding: 0.3em 0.8em; text-align: left; }
  .on { color: #4f4; }
  .off { color: #f66; }
  .climax { font-size: 1.5em; margin: 0.5em 0; }
</style>
</head>
<body>
<h1>Missing Link — Ring Controller</h1>
<div class="climax">Climax:
  {{if .ClimaxActive}}<span class="on">ACTIVE</span>{{else}}<span class="off">inactive</span>{{end}}
  (closed {{.ClimaxCount}}x)
</div>
<table>
<tr><th>Edge</th><th>State</th></tr>
{{range .ActiveEdges}}<tr><td>{{index . 0}} &harr; {{index . 1}}</td><td class="on">linked</td></tr>
{{end}}{{range .MissingEdges}}<tr><td>{{index . 0}} &harr; {{index . 1}}</td><td class="off">open</td></tr>
{{end}}</table>
<table>
<tr><th>Statue</th><th>Reports</th></tr>
{{range $name := .Statues}}<tr><td>{{$name}}</td><td>{{range index $.Links $name}}{{.}} {{end}}</td></tr>
{{end}}</table>
<p>MQTT: {{if .MQTTConnected}}<span class="on">connected</span>{{else}}<span class="off">disconnected</span>{{end}}
 to {{.Broker}} &middot; contacts {{.ContactCount}} &middot; up {{.Uptime}}</p>
<script>
  const ws = new WebSocket("ws://" + location.host + "/ws");
  ws.onmessage = () => location.reload();
</script>
</body>
</html>
`))

type indexData struct {
	ClimaxActive  bool
	ClimaxCount   int
	ActiveEdges   [][2]string
	MissingEdges  [][2]string
	Statues       []string
	Links         map[string][]string
	MQTTConnected bool
	Broker        string
	ContactCount  int
	Uptime        time.Duration
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	links := snap.Ring.Reported
	if links == nil {
		links = map[string][]string{}
	}
	data := indexData{
		ClimaxActive:  snap.Ring.ClimaxActive,
		ClimaxCount:   snap.ClimaxCount,
		ActiveEdges:   topology.Pairs(snap.Ring.ActiveEdges),
		MissingEdges:  topology.Pairs(snap.Ring.MissingEdges),
		Statues:       snap.Config.Statues,
		Links:         links,
		MQTTConnected: snap.MQTTConnected,
		Broker:        snap.Config.Broker,
		ContactCount:  snap.ContactCount,
		Uptime:        snap.Uptime().Truncate(time.Second),
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("web: render index: %v", err)
	}
}
