package dsp

import (
	"math"
	"testing"
)

// makeSine synthesizes n samples of a sine at the given frequency.
func makeSine(frequency, sampleRate float64, amplitude float64, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amplitude * math.Sin(2*math.Pi*frequency*float64(i)/sampleRate))
	}
	return out
}

func TestMagnitudeAtTargetFrequency(t *testing.T) {
	g := NewGoertzel(10077, 44100)
	block := makeSine(10077, 44100, 1.0, 1024)

	mag := g.Magnitude(block)
	// A full-scale sine at the target lands near 0.5 after length
	// normalization.
	if mag < 0.4 || mag > 0.6 {
		t.Errorf("on-frequency magnitude = %f, want ~0.5", mag)
	}
}

func TestMagnitudeRejectsOtherFrequencies(t *testing.T) {
	g := NewGoertzel(10077, 44100)

	for _, freq := range []float64{12274, 14643, 17227, 19467} {
		block := makeSine(freq, 44100, 1.0, 1024)
		mag := g.Magnitude(block)
		if mag > 0.05 {
			t.Errorf("off-frequency %v Hz magnitude = %f, want < 0.05", freq, mag)
		}
	}
}

func TestMagnitudeScalesWithAmplitude(t *testing.T) {
	g := NewGoertzel(12274, 44100)

	loud := g.Magnitude(makeSine(12274, 44100, 1.0, 1024))
	quiet := g.Magnitude(makeSine(12274, 44100, 0.1, 1024))

	ratio := quiet / loud
	if ratio < 0.08 || ratio > 0.12 {
		t.Errorf("amplitude ratio = %f, want ~0.1", ratio)
	}
}

func TestMagnitudeEmptyBlock(t *testing.T) {
	g := NewGoertzel(10077, 44100)
	if got := g.Magnitude(nil); got != 0 {
		t.Errorf("empty block magnitude = %f, want 0", got)
	}
}

func TestMagnitudeInMixedSignal(t *testing.T) {
	// Two tones present at once; each detector sees only its own.
	sampleRate := 44100.0
	n := 1024
	block := make([]float32, n)
	for i := range block {
		ti := float64(i) / sampleRate
		block[i] = float32(0.5*math.Sin(2*math.Pi*10077*ti) + 0.5*math.Sin(2*math.Pi*19467*ti))
	}

	onA := NewGoertzel(10077, sampleRate).Magnitude(block)
	onB := NewGoertzel(19467, sampleRate).Magnitude(block)
	off := NewGoertzel(14643, sampleRate).Magnitude(block)

	if onA < 0.2 {
		t.Errorf("10077 Hz magnitude = %f, want > 0.2", onA)
	}
	if onB < 0.2 {
		t.Errorf("19467 Hz magnitude = %f, want > 0.2", onB)
	}
	if off > 0.05 {
		t.Errorf("14643 Hz magnitude = %f, want < 0.05", off)
	}
}
