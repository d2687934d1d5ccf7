package status

import (
	"encoding/json"
	"time"

	"github.com/firstcontact/missing-link/internal/topology"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Climax        string              `json:"climax"` // "active" or "inactive"
	ClimaxCount   int                 `json:"climax_count"`
	ActiveEdges   [][2]string         `json:"active_edges"`
	MissingEdges  [][2]string         `json:"missing_edges"`
	Links         map[string][]string `json:"links"`
	ContactCount  int                 `json:"contact_count"`
	UptimeSeconds int64               `json:"uptime_seconds"`
	StartTime     string              `json:"start_time"`
	Timestamp     string              `json:"timestamp"`
	MQTT          MQTTStatus          `json:"mqtt"`
	Config        ConfigJSON          `json:"config"`
}

// MQTTStatus reports broker connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of controller config.
type ConfigJSON struct {
	Broker   string   `json:"broker"`
	HTTPAddr string   `json:"http_addr"`
	Statues  []string `json:"statues"`
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	climax := "inactive"
	if snap.Ring.ClimaxActive {
		climax = "active"
	}

	links := snap.Ring.Reported
	if links == nil {
		links = map[string][]string{}
	}

	inner := StatusInner{
		Climax:        climax,
		ClimaxCount:   snap.ClimaxCount,
		ActiveEdges:   topology.Pairs(snap.Ring.ActiveEdges),
		MissingEdges:  topology.Pairs(snap.Ring.MissingEdges),
		Links:         links,
		ContactCount:  snap.ContactCount,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			Broker:   snap.Config.Broker,
			HTTPAddr: snap.Config.HTTPAddr,
			Statues:  snap.Config.Statues,
		},
	}

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}
