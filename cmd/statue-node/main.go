// Command statue-node runs one statue: it senses contact with the other
// statues through their tones, drives local music playback, and reports
// contact changes to the ring controller over MQTT.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/firstcontact/missing-link/internal/config"
	"github.com/firstcontact/missing-link/internal/dsp"
	"github.com/firstcontact/missing-link/internal/link"
	"github.com/firstcontact/missing-link/internal/mqtt"
	"github.com/firstcontact/missing-link/internal/music"
)

func main() {
	tick := flag.Duration("tick", 150*time.Millisecond, "Control tick period")
	hold := flag.Duration("hold", link.DefaultHoldWindow, "Link-loss hold window")
	pauseTimeout := flag.Duration("pause-timeout", music.DefaultPauseTimeout, "Music pause timeout")
	broker := flag.String("broker", "tcp://192.168.4.1:1883", "MQTT broker address")
	configPath := flag.String("config", "", "Statue table JSON (empty for built-in table)")
	statue := flag.String("statue", "", "Statue name override (must agree with address match)")
	signalsEvery := flag.Duration("signals", 5*time.Second, "Signal report interval (0 to disable)")
	volume := flag.Float64("volume", music.DefaultVolume, "Playback volume fraction")
	activeTracks := flag.String("active-tracks", strings.Join(defaultActiveTracks, ","),
		"Comma-separated tracks played while linked")
	idleTracks := flag.String("idle-tracks", strings.Join(defaultIdleTracks, ","),
		"Comma-separated tracks played while idle")
	simulate := flag.Bool("simulate", false, "Synthesize all target tones instead of capturing audio")

	flag.Parse()

	if err := run(*tick, *hold, *pauseTimeout, *broker, *configPath, *statue,
		*signalsEvery, *volume, splitTracks(*activeTracks), splitTracks(*idleTracks), *simulate); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// Track lists shipped with the installation; round-robin per queue.
var defaultActiveTracks = []string{
	"Missing Link Playa 1 - 6 channel.wav",
	"Missing Link Playa 2 - 6 Channel.wav",
	"Missing Link Playa 3 - 6 Channel.wav",
}

var defaultIdleTracks = []string{
	"Missing Link Playa Dormant - 5 channel deux.wav",
}

func splitTracks(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func run(tick, hold, pauseTimeout time.Duration, broker, configPath, statue string,
	signalsEvery time.Duration, volume float64, activeTracks, idleTracks []string, simulate bool) error {

	// Load the statue table and resolve identity once, before any
	// detector or audio component exists.
	table := config.DefaultTable()
	if configPath != "" {
		var err error
		if table, err = config.Load(configPath); err != nil {
			return err
		}
	}
	id, err := config.Resolve(table, statue, config.LocalAddresses())
	if err != nil {
		return err
	}
	log.Printf("running as %s (index %d, emit %d Hz, %d targets)",
		id.Self.Name, id.Self.Index, id.Self.EmitFreq, len(id.Targets))

	// Audio capture is owned by the audio subsystem; the detectors only
	// peek at its latest window. Without it (or in simulation) the
	// source degrades as specified.
	var source dsp.SampleSource = dsp.NullSource{}
	if simulate {
		sim := dsp.NewSineSource(dsp.DefaultSampleRate, dsp.DefaultWindowSize)
		tones := make(map[float64]float64, len(id.Targets))
		for _, t := range id.Targets {
			tones[float64(t.EmitFreq)] = 0.2
		}
		sim.SetTones(tones)
		source = sim
		log.Printf("simulating capture with all %d target tones present", len(id.Targets))
	} else {
		log.Printf("no audio capture wired, detectors will sense silence")
	}

	detectors := make([]*dsp.ToneDetector, 0, len(id.Targets))
	targetIndices := make([]int, 0, len(id.Targets))
	for _, t := range id.Targets {
		detectors = append(detectors, dsp.NewToneDetector(dsp.DetectorConfig{
			TargetIndex: t.Index,
			Frequency:   float64(t.EmitFreq),
			Threshold:   t.Threshold,
		}, source))
		targetIndices = append(targetIndices, t.Index)
	}

	agg := link.NewAggregator(targetIndices, hold)
	coord := music.NewCoordinator(&music.NullDevice{}, music.Config{
		ActiveTracks: activeTracks,
		IdleTracks:   idleTracks,
		PauseTimeout: pauseTimeout,
		Volume:       volume,
	})

	client, err := mqtt.NewClient(broker, "statue-"+id.Self.Name)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	publisher := mqtt.NewBuffered(client, client, 0)
	defer publisher.Close()

	// Inbound threshold/config updates arrive on a channel the tick
	// loop drains; nothing blocks inside the tick.
	cfgCh := make(chan []byte, 4)
	if err := client.SubscribeConfigResponses(func(payload []byte) {
		select {
		case cfgCh <- payload:
		default:
			log.Printf("config update dropped, previous one still pending")
		}
	}); err != nil {
		log.Printf("subscribe config: %v", err)
	}
	if err := publisher.RequestConfig(); err != nil {
		log.Printf("request config: %v", err)
	}

	log.Printf("started: tick=%v hold=%v pause-timeout=%v broker=%s", tick, hold, pauseTimeout, broker)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(id, table, detectors, agg, coord, publisher, cfgCh,
		signalsEvery, time.Now, ticker.C, sigCh)
}

func runLoop(id config.Identity, table *config.Table, detectors []*dsp.ToneDetector,
	agg *link.Aggregator, coord *music.Coordinator, publisher mqtt.Publisher,
	cfgCh <-chan []byte, signalsEvery time.Duration,
	now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {

	names := table.Names()
	lastSignals := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			// Drop our links so the controller does not hold a stale
			// report of us into the next climax evaluation.
			if err := publisher.PublishContact(mqtt.ContactMessage{Detector: id.Self.Name}); err != nil {
				log.Printf("publish final contact: %v", err)
			}
			return nil

		case payload := <-cfgCh:
			applyConfigUpdate(payload, detectors)

		case <-tick:
			t := now()

			raw := make(map[int]bool, len(detectors))
			for _, d := range detectors {
				d.Sense()
				raw[d.TargetIndex()] = d.Linked()
			}

			// One immutable snapshot per tick; the coordinator and the
			// bridge both see this exact value.
			state := agg.Tick(raw, t)
			coord.Advance(state, t)

			if !state.Unchanged() {
				msg := mqtt.ContactMessage{Detector: id.Self.Name}
				for _, idx := range state.IsLinked.Indices() {
					if idx < len(names) {
						msg.Emitters = append(msg.Emitters, names[idx])
					}
				}
				log.Printf("contact: %s -> %v", state.IsLinked, msg.Emitters)
				if err := publisher.PublishContact(msg); err != nil {
					log.Printf("publish contact: %v", err)
				}
			}

			if signalsEvery > 0 && t.Sub(lastSignals) >= signalsEvery {
				lastSignals = t
				if err := publisher.PublishSignals(signalsReport(id, names, detectors)); err != nil {
					log.Printf("publish signals: %v", err)
				}
			}
		}
	}
}

// signalsReport snapshots the per-target levels for tuning dashboards.
func signalsReport(id config.Identity, names []string, detectors []*dsp.ToneDetector) mqtt.SignalsMessage {
	msg := mqtt.SignalsMessage{
		Detector:  id.Self.Name,
		Signals:   make(map[string]float64, len(detectors)),
		Threshold: id.Self.Threshold,
	}
	for _, d := range detectors {
		if d.TargetIndex() < len(names) {
			msg.Signals[names[d.TargetIndex()]] = d.Level()
		}
	}
	return msg
}

// applyConfigUpdate applies a statue table update to the running
// detectors. Only valid thresholds are applied; unspecified or
// malformed fields leave the current configuration unchanged.
func applyConfigUpdate(payload []byte, detectors []*dsp.ToneDetector) {
	table, err := config.Parse(payload)
	if err != nil {
		log.Printf("config update rejected: %v", err)
		return
	}
	for _, d := range detectors {
		for _, s := range table.Statues {
			if s.Index != d.TargetIndex() {
				continue
			}
			if s.Threshold != d.Threshold() {
				if err := d.SetThreshold(s.Threshold); err != nil {
					log.Printf("config update: %s: %v", s.Name, err)
					continue
				}
				log.Printf("threshold for %s -> %.4f", s.Name, s.Threshold)
			}
			if s.EmitFreq != 0 && float64(s.EmitFreq) != d.Frequency() {
				d.Retune(float64(s.EmitFreq))
				log.Printf("frequency for %s -> %d Hz", s.Name, s.EmitFreq)
			}
		}
	}
}
