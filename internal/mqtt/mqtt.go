// Package mqtt is the messaging bridge between statues and the ring
// controller, with abstraction for testing. Statues publish contact
// changes and signal levels; the controller subscribes to them and
// publishes climax state. All payloads are JSON.
package mqtt

import (
	"encoding/json"
	"fmt"
)

// Topics used by the installation.
const (
	// TopicContact carries per-statue link changes, published only when
	// the contact state changes.
	TopicContact = "missing_link/contact"

	// TopicSignals carries periodic per-detector signal level reports.
	TopicSignals = "missing_link/signals"

	// TopicClimax carries the controller's ring closure state.
	TopicClimax = "missing_link/climax"

	// TopicConfigRequest asks the controller to send the statue table.
	TopicConfigRequest = "missing_link/config/request"

	// TopicConfigResponse carries the statue table back to the statues.
	TopicConfigResponse = "missing_link/config/response"
)

// ContactMessage reports which statues a detector currently, stably,
// detects.
type ContactMessage struct {
	Detector string   `json:"detector"`
	Emitters []string `json:"emitters"`
}

// SignalsMessage reports raw detection levels per target, for tuning.
type SignalsMessage struct {
	Detector  string             `json:"detector"`
	Signals   map[string]float64 `json:"signals"`
	Threshold float64            `json:"threshold"`
}

// ClimaxMessage reports the ring closure state and which neighbor pairs
// are connected or still missing.
type ClimaxMessage struct {
	State          string      `json:"state"` // "active" or "inactive"
	ConnectedPairs [][2]string `json:"connected_pairs"`
	MissingPairs   [][2]string `json:"missing_pairs"`
}

// Publisher is the outbound half of the bridge as seen by a statue.
type Publisher interface {
	// PublishContact sends a contact change. Must not block the control
	// loop; failures are reported, not fatal.
	PublishContact(msg ContactMessage) error

	// PublishSignals sends a signal level report.
	PublishSignals(msg SignalsMessage) error

	// RequestConfig asks the controller for the statue table.
	RequestConfig() error

	// Close disconnects from the broker.
	Close() error
}

// ClimaxPublisher is the outbound half as seen by the ring controller.
type ClimaxPublisher interface {
	PublishClimax(msg ClimaxMessage) error
}

// ConnectionStatus reports whether the broker connection is up.
type ConnectionStatus interface {
	IsConnected() bool
}

// FormatContact encodes a contact message. Emitters is normalized to an
// empty list so subscribers never see null.
func FormatContact(msg ContactMessage) ([]byte, error) {
	if msg.Emitters == nil {
		msg.Emitters = []string{}
	}
	return json.Marshal(msg)
}

// ParseContact decodes a contact message.
func ParseContact(payload []byte) (ContactMessage, error) {
	var msg ContactMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return ContactMessage{}, fmt.Errorf("parse contact message: %w", err)
	}
	if msg.Detector == "" {
		return ContactMessage{}, fmt.Errorf("contact message missing detector")
	}
	return msg, nil
}

// FormatClimax encodes a climax message, normalizing nil pair lists.
func FormatClimax(msg ClimaxMessage) ([]byte, error) {
	if msg.ConnectedPairs == nil {
		msg.ConnectedPairs = [][2]string{}
	}
	if msg.MissingPairs == nil {
		msg.MissingPairs = [][2]string{}
	}
	return json.Marshal(msg)
}

// FormatSignals encodes a signals message.
func FormatSignals(msg SignalsMessage) ([]byte, error) {
	return json.Marshal(msg)
}
