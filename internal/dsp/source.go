package dsp

import (
	"math"
	"sync/atomic"
)

// NullSource is a SampleSource with no audio path behind it. Detectors
// reading from it always sense 0, which is the required degraded mode
// when capture hardware is absent.
type NullSource struct{}

// LatestWindow always returns nil.
func (NullSource) LatestWindow() []float32 { return nil }

// SharedWindow is a SampleSource fed by an external capture callback.
// The producer stores completed windows; consumers peek at the newest
// one without locking, matching the wait-free read the control tick
// requires.
type SharedWindow struct {
	window atomic.Value // []float32
}

// Store publishes a completed analysis window. The slice must not be
// mutated after the call.
func (s *SharedWindow) Store(window []float32) {
	s.window.Store(window)
}

// LatestWindow returns the most recently stored window, or nil before
// the first capture completes.
func (s *SharedWindow) LatestWindow() []float32 {
	w, _ := s.window.Load().([]float32)
	return w
}

// SineSource synthesizes windows containing a mix of tones. It stands in
// for the capture path in simulation and tests, with phase continuity
// across windows so there are no discontinuities at window boundaries.
type SineSource struct {
	sampleRate float64
	windowSize int
	tones      []sineTone
	phase      float64 // in samples
}

type sineTone struct {
	frequency float64
	amplitude float64
}

// NewSineSource creates a source producing windows of the given size.
func NewSineSource(sampleRate float64, windowSize int) *SineSource {
	return &SineSource{sampleRate: sampleRate, windowSize: windowSize}
}

// SetTones replaces the set of tones present in subsequent windows.
func (s *SineSource) SetTones(tones map[float64]float64) {
	s.tones = s.tones[:0]
	for freq, amp := range tones {
		s.tones = append(s.tones, sineTone{frequency: freq, amplitude: amp})
	}
}

// LatestWindow synthesizes the next window of the configured tones.
func (s *SineSource) LatestWindow() []float32 {
	window := make([]float32, s.windowSize)
	for i := range window {
		t := (s.phase + float64(i)) / s.sampleRate
		var v float64
		for _, tone := range s.tones {
			v += tone.amplitude * math.Sin(2*math.Pi*tone.frequency*t)
		}
		window[i] = float32(v)
	}
	s.phase += float64(s.windowSize)
	return window
}
