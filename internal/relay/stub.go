//go:build !linux

package relay

import "errors"

// RealSink is not available on non-Linux platforms.
type RealSink struct{}

// NewRealSink returns an error on non-Linux platforms.
func NewRealSink(pinA, pinB int) (*RealSink, error) {
	return nil, errors.New("relay: not supported on this platform (requires Linux)")
}

// SetClimax is not implemented on non-Linux platforms.
func (s *RealSink) SetClimax(bool) error {
	return errors.New("relay: not supported")
}

// Close is not implemented on non-Linux platforms.
func (s *RealSink) Close() error {
	return nil
}
