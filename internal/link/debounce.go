package link

import "time"

// DefaultHoldWindow is how long a raw reading must stay below threshold
// before a link is declared lost.
const DefaultHoldWindow = 100 * time.Millisecond

// Debouncer turns raw threshold crossings for one (node, target) pair
// into a stable boolean with asymmetric timing: a rise commits on the
// first qualifying sample, so the felt moment of contact is never
// delayed, while a fall only commits after the reading has stayed low
// for the full hold window. A single recovery inside the window cancels
// the pending drop. Each instance owns its own state; nothing is shared
// across targets.
type Debouncer struct {
	holdWindow  time.Duration
	stable      bool
	buffering   bool
	bufferStart time.Time
}

// NewDebouncer creates a debouncer with the given hold window.
// Non-positive values fall back to DefaultHoldWindow.
func NewDebouncer(holdWindow time.Duration) *Debouncer {
	if holdWindow <= 0 {
		holdWindow = DefaultHoldWindow
	}
	return &Debouncer{holdWindow: holdWindow}
}

// Update feeds one raw sample and returns the stable value.
func (d *Debouncer) Update(raw bool, now time.Time) bool {
	if raw {
		// Contact present: commit immediately, cancel any pending drop.
		d.stable = true
		d.buffering = false
		return d.stable
	}

	if !d.stable {
		return d.stable
	}

	if !d.buffering {
		d.buffering = true
		d.bufferStart = now
		return d.stable
	}

	if now.Sub(d.bufferStart) >= d.holdWindow {
		d.stable = false
		d.buffering = false
	}
	return d.stable
}

// Stable returns the current stable value without feeding a sample.
func (d *Debouncer) Stable() bool { return d.stable }
