// Package status provides a thread-safe status tracker for the ring
// controller. It is read by the HTTP handlers and the websocket stream.
package status

import (
	"sync"
	"time"

	"github.com/firstcontact/missing-link/internal/topology"
)

// Config contains controller configuration for display.
type Config struct {
	Broker   string
	HTTPAddr string
	Statues  []string // ring order
}

// Snapshot is a point-in-time view of controller state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Ring          topology.Snapshot
	MQTTConnected bool
	ContactCount  int // contact messages processed since startup
	ClimaxCount   int // times the ring has closed since startup
	StartTime     time.Time
	Now           time.Time
	Config        Config
}

// Uptime returns the duration since the controller started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable controller state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// UpdateRing stores the latest topology snapshot. Called on every
// contact message; counts climaxes on the started edge.
func (t *Tracker) UpdateRing(ring topology.Snapshot, climaxStarted bool) {
	t.mu.Lock()
	t.snap.Ring = ring
	t.snap.ContactCount++
	if climaxStarted {
		t.snap.ClimaxCount++
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the broker connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the controller state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
