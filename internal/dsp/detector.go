package dsp

import (
	"fmt"
	"math"
)

// SampleSource exposes the newest completed analysis window from the
// audio capture path. LatestWindow must be a wait-free peek: it returns
// whatever window completed most recently (nil when the audio path is
// down) and never blocks the caller.
type SampleSource interface {
	LatestWindow() []float32
}

// DetectorConfig configures one per-target detector.
type DetectorConfig struct {
	TargetIndex int     // ring index of the statue being listened for
	Frequency   float64 // that statue's transmit frequency in Hz
	Threshold   float64 // magnitude above which the raw link is present
	SampleRate  float64
	WindowSize  int // analysis window length in samples
}

// DefaultWindowSize is sized so a window spans ~23 ms at 44.1 kHz,
// comfortably inside half a 150 ms control tick.
const DefaultWindowSize = 1024

// DefaultSampleRate matches the capture hardware.
const DefaultSampleRate = 44100

// ToneDetector estimates the energy at one target frequency once per
// control tick. One instance exists per (node, target) pair.
type ToneDetector struct {
	cfg      DetectorConfig
	goertzel *Goertzel
	source   SampleSource
	lastMag  float64
}

// NewToneDetector creates a detector reading from the given source.
func NewToneDetector(cfg DetectorConfig, source SampleSource) *ToneDetector {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.WindowSize == 0 {
		cfg.WindowSize = DefaultWindowSize
	}
	return &ToneDetector{
		cfg:      cfg,
		goertzel: NewGoertzel(cfg.Frequency, cfg.SampleRate),
		source:   source,
	}
}

// TargetIndex returns the ring index of the statue this detector senses.
func (d *ToneDetector) TargetIndex() int { return d.cfg.TargetIndex }

// Threshold returns the current detection threshold.
func (d *ToneDetector) Threshold() float64 { return d.cfg.Threshold }

// Frequency returns the current target frequency in Hz.
func (d *ToneDetector) Frequency() float64 { return d.cfg.Frequency }

// SetThreshold updates the detection threshold. Values outside (0, 1]
// are rejected so a bad config update cannot blind or flood a detector.
// The estimator state is reset so the next reading starts clean.
func (d *ToneDetector) SetThreshold(threshold float64) error {
	if threshold < 0.001 || threshold > 1.0 {
		return fmt.Errorf("dsp: threshold %.4f outside [0.001, 1.0]", threshold)
	}
	d.cfg.Threshold = threshold
	d.lastMag = 0
	return nil
}

// Retune points the detector at a new target frequency, resetting the
// estimator so stale energy from the old bin cannot bleed into the next
// reading.
func (d *ToneDetector) Retune(frequency float64) {
	d.cfg.Frequency = frequency
	d.goertzel.retune(frequency)
	d.lastMag = 0
}

// Sense reads the latest completed window and returns the magnitude at
// the target frequency. Oversized windows are truncated to the
// configured analysis length so the estimate stays on the bin grid the
// frequencies were chosen for. A missing window or a non-finite result
// yields a sanitized 0, so a faulty audio path degrades to "never
// linked" rather than faulting downstream.
func (d *ToneDetector) Sense() float64 {
	window := d.source.LatestWindow()
	if len(window) == 0 {
		d.lastMag = 0
		return 0
	}
	if len(window) > d.cfg.WindowSize {
		window = window[:d.cfg.WindowSize]
	}
	mag := d.goertzel.Magnitude(window)
	if math.IsNaN(mag) || math.IsInf(mag, 0) || mag < 0 {
		mag = 0
	}
	d.lastMag = mag
	return mag
}

// Level returns the most recent sensed magnitude without re-reading the
// source. Used for signal-level reports.
func (d *ToneDetector) Level() float64 { return d.lastMag }

// Linked reports whether the last sensed magnitude crosses the
// threshold. This is the raw, undebounced comparison.
func (d *ToneDetector) Linked() bool { return d.lastMag > d.cfg.Threshold }
