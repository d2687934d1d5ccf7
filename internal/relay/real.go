//go:build linux

package relay

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealSink drives two relay lines on actual hardware.
type RealSink struct {
	chip  *gpiocdev.Chip
	lineA *gpiocdev.Line
	lineB *gpiocdev.Line
}

// NewRealSink requests both relay lines as outputs, initially off.
func NewRealSink(pinA, pinB int) (*RealSink, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	lineA, err := chip.RequestLine(pinA, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request relay pin %d: %w", pinA, err)
	}

	lineB, err := chip.RequestLine(pinB, gpiocdev.AsOutput(0))
	if err != nil {
		lineA.Close()
		chip.Close()
		return nil, fmt.Errorf("request relay pin %d: %w", pinB, err)
	}

	return &RealSink{chip: chip, lineA: lineA, lineB: lineB}, nil
}

// SetClimax switches both relays together.
func (s *RealSink) SetClimax(active bool) error {
	value := 0
	if active {
		value = 1
	}
	if err := s.lineA.SetValue(value); err != nil {
		return fmt.Errorf("set relay A: %w", err)
	}
	if err := s.lineB.SetValue(value); err != nil {
		return fmt.Errorf("set relay B: %w", err)
	}
	return nil
}

// Close turns both relays off and releases the lines.
func (s *RealSink) Close() error {
	var errs []error

	if s.lineA != nil {
		if err := s.lineA.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear relay A: %w", err))
		}
		if err := s.lineA.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close relay A: %w", err))
		}
	}
	if s.lineB != nil {
		if err := s.lineB.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear relay B: %w", err))
		}
		if err := s.lineB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close relay B: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
