// Package dsp implements single-frequency tone detection for contact
// sensing. Each statue transmits a fixed tone; a detector per target
// estimates the energy at that target's frequency in the incoming audio
// using the Goertzel recurrence, which only computes the one bin of
// interest instead of a full transform.
package dsp

import "math"

// Goertzel estimates the magnitude of one frequency in a sample block.
type Goertzel struct {
	coeff      float64
	sampleRate float64
	frequency  float64
}

// NewGoertzel creates an estimator for the given frequency at the given
// sample rate.
func NewGoertzel(frequency, sampleRate float64) *Goertzel {
	g := &Goertzel{sampleRate: sampleRate}
	g.retune(frequency)
	return g
}

func (g *Goertzel) retune(frequency float64) {
	g.frequency = frequency
	omega := 2 * math.Pi * frequency / g.sampleRate
	g.coeff = 2 * math.Cos(omega)
}

// Frequency returns the tuned target frequency in Hz.
func (g *Goertzel) Frequency() float64 { return g.frequency }

// Magnitude runs the recurrence over the block and returns the relative
// magnitude of the target frequency, normalized by block length so the
// result is comparable across window sizes. A full-scale sine at the
// target frequency yields roughly 0.5.
func (g *Goertzel) Magnitude(block []float32) float64 {
	if len(block) == 0 {
		return 0
	}
	var s0, s1, s2 float64
	for _, sample := range block {
		s0 = float64(sample) + g.coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	power := s1*s1 + s2*s2 - g.coeff*s1*s2
	if power < 0 {
		power = 0
	}
	return math.Sqrt(power) / float64(len(block))
}
