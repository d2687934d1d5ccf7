// Package relay drives the climax relay outputs with hardware
// abstraction. The real implementation uses the Linux GPIO character
// device; the fake allows testing without hardware. Relays are a pure
// consumer of the climax boolean; everything they switch (fog, lights)
// is wired downstream.
package relay

// Sink switches the climax actuators.
type Sink interface {
	// SetClimax energizes or releases both relays.
	SetClimax(active bool) error

	// Close releases GPIO resources, leaving relays off.
	Close() error
}

// Default relay pins (BCM numbering).
const (
	DefaultPinA = 20
	DefaultPinB = 21
)

// Null is a Sink with no hardware behind it.
type Null struct{}

// SetClimax does nothing.
func (Null) SetClimax(bool) error { return nil }

// Close does nothing.
func (Null) Close() error { return nil }
