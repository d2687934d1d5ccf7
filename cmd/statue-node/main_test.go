package main

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/firstcontact/missing-link/internal/config"
	"github.com/firstcontact/missing-link/internal/dsp"
	"github.com/firstcontact/missing-link/internal/link"
	"github.com/firstcontact/missing-link/internal/mqtt"
	"github.com/firstcontact/missing-link/internal/music"
)

// testPipeline wires a full statue pipeline around a synthesized audio
// source, so the loop runs exactly as in production minus the hardware.
type testPipeline struct {
	id        config.Identity
	table     *config.Table
	source    *dsp.SineSource
	detectors []*dsp.ToneDetector
	agg       *link.Aggregator
	coord     *music.Coordinator
	publisher *mqtt.FakePublisher
}

func newTestPipeline(t *testing.T) *testPipeline {
	t.Helper()

	table := config.DefaultTable()
	id, err := config.Resolve(table, "eros", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	source := dsp.NewSineSource(dsp.DefaultSampleRate, dsp.DefaultWindowSize)
	detectors := make([]*dsp.ToneDetector, 0, len(id.Targets))
	indices := make([]int, 0, len(id.Targets))
	for _, target := range id.Targets {
		detectors = append(detectors, dsp.NewToneDetector(dsp.DetectorConfig{
			TargetIndex: target.Index,
			Frequency:   float64(target.EmitFreq),
			Threshold:   target.Threshold,
		}, source))
		indices = append(indices, target.Index)
	}

	return &testPipeline{
		id:        id,
		table:     table,
		source:    source,
		detectors: detectors,
		agg:       link.NewAggregator(indices, link.DefaultHoldWindow),
		coord: music.NewCoordinator(&music.FakeDevice{}, music.Config{
			ActiveTracks: []string{"active.wav"},
			IdleTracks:   []string{"idle.wav"},
		}),
		publisher: mqtt.NewFakePublisher(),
	}
}

// start runs the loop against scripted tick and signal channels.
func (p *testPipeline) start(cfgCh chan []byte, signalsEvery time.Duration) (chan time.Time, chan os.Signal, chan error) {
	tickCh := make(chan time.Time)
	sigCh := make(chan os.Signal)
	done := make(chan error, 1)
	go func() {
		done <- runLoop(p.id, p.table, p.detectors, p.agg, p.coord, p.publisher,
			cfgCh, signalsEvery, time.Now, tickCh, sigCh)
	}()
	return tickCh, sigCh, done
}

func TestRunLoopPublishesOnlyOnContactChange(t *testing.T) {
	p := newTestPipeline(t)

	// elektra's tone is present in the capture window from the start.
	p.source.SetTones(map[float64]float64{12274: 0.2})

	tickCh, sigCh, done := p.start(make(chan []byte), 0)

	tickCh <- time.Now()
	tickCh <- time.Now()
	tickCh <- time.Now()
	sigCh <- syscall.SIGTERM
	if err := <-done; err != nil {
		t.Fatalf("runLoop: %v", err)
	}

	// First tick reports the link; the two identical ticks after it are
	// silent; shutdown publishes the final empty contact.
	if len(p.publisher.Contacts) != 2 {
		t.Fatalf("contacts = %d, want 2: %+v", len(p.publisher.Contacts), p.publisher.Contacts)
	}
	first := p.publisher.Contacts[0]
	if first.Detector != "eros" {
		t.Errorf("detector = %q, want eros", first.Detector)
	}
	if len(first.Emitters) != 1 || first.Emitters[0] != "elektra" {
		t.Errorf("emitters = %v, want [elektra]", first.Emitters)
	}
	final := p.publisher.Contacts[1]
	if len(final.Emitters) != 0 {
		t.Errorf("final contact emitters = %v, want none", final.Emitters)
	}
}

func TestRunLoopPublishesPeriodicSignals(t *testing.T) {
	p := newTestPipeline(t)
	p.source.SetTones(map[float64]float64{12274: 0.2})

	// With a zero interval floor every tick is due for a report.
	tickCh, sigCh, done := p.start(make(chan []byte), time.Nanosecond)

	tickCh <- time.Now()
	sigCh <- syscall.SIGTERM
	if err := <-done; err != nil {
		t.Fatalf("runLoop: %v", err)
	}

	if len(p.publisher.Signals) != 1 {
		t.Fatalf("signals = %d, want 1", len(p.publisher.Signals))
	}
	report := p.publisher.Signals[0]
	if report.Detector != "eros" {
		t.Errorf("detector = %q, want eros", report.Detector)
	}
	if report.Signals["elektra"] < 0.05 {
		t.Errorf("elektra level = %v, want the synthesized tone's level", report.Signals["elektra"])
	}
	if report.Signals["ultimo"] > 0.001 {
		t.Errorf("ultimo level = %v, want silence", report.Signals["ultimo"])
	}
}

func TestRunLoopAppliesConfigUpdate(t *testing.T) {
	p := newTestPipeline(t)

	// The update raises elektra's threshold and leaves the rest alone.
	updated := config.DefaultTable()
	updated.Statues[1].Threshold = 0.2
	payload, err := updated.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	cfgCh := make(chan []byte)
	_, sigCh, done := p.start(cfgCh, 0)

	cfgCh <- payload
	sigCh <- syscall.SIGTERM
	if err := <-done; err != nil {
		t.Fatalf("runLoop: %v", err)
	}

	for _, d := range p.detectors {
		if d.TargetIndex() == 1 && d.Threshold() != 0.2 {
			t.Errorf("elektra threshold = %v, want 0.2", d.Threshold())
		}
		if d.TargetIndex() == 4 && d.Threshold() != config.DefaultThreshold {
			t.Errorf("ultimo threshold = %v, want untouched default", d.Threshold())
		}
	}
}

func TestRunLoopRejectsMalformedConfigUpdate(t *testing.T) {
	p := newTestPipeline(t)

	cfgCh := make(chan []byte)
	_, sigCh, done := p.start(cfgCh, 0)

	cfgCh <- []byte("not a table")
	sigCh <- syscall.SIGTERM
	if err := <-done; err != nil {
		t.Fatalf("runLoop: %v", err)
	}

	for _, d := range p.detectors {
		if d.Threshold() != config.DefaultThreshold {
			t.Errorf("threshold = %v, want untouched default", d.Threshold())
		}
	}
}

func TestSplitTracks(t *testing.T) {
	got := splitTracks(" a.wav, ,b.wav ,")
	if len(got) != 2 || got[0] != "a.wav" || got[1] != "b.wav" {
		t.Errorf("splitTracks = %v, want [a.wav b.wav]", got)
	}
	if splitTracks("") != nil {
		t.Errorf("splitTracks(empty) should be nil")
	}
}
