package music

import (
	"log"
	"time"
)

// State is the coordinator's derived playback state. It is recomputed
// from the persistent flags on every tick and never stored, so it cannot
// drift out of sync with the device.
type State int

const (
	StateNotStarted State = iota
	StatePlaying
	StatePaused
	StatePauseTimeout
	StatePauseFinished
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StatePlaying:
		return "PLAYING"
	case StatePaused:
		return "PAUSED"
	case StatePauseTimeout:
		return "PAUSE_TIMEOUT"
	case StatePauseFinished:
		return "PAUSE_FINISHED"
	case StateFinished:
		return "FINISHED"
	}
	return "UNKNOWN"
}

// Defaults for the coordinator's tunables.
const (
	DefaultPauseTimeout   = 2000 * time.Millisecond
	DefaultVolume         = 0.5
	DefaultPausedFraction = 0.5
)

// Config holds the coordinator's tunables.
type Config struct {
	// ActiveTracks plays while linked, IdleTracks while not. Each list
	// advances round-robin, independently of the other.
	ActiveTracks []string
	IdleTracks   []string
	// PauseTimeout is how long a disconnect may last before the session
	// is finalized.
	PauseTimeout time.Duration
	// Volume is the normal playback volume fraction.
	Volume float64
	// PausedFraction scales Volume at the start of a pause; the fade
	// then runs linearly from there to zero across PauseTimeout.
	PausedFraction float64
}

func (c Config) withDefaults() Config {
	if c.PauseTimeout <= 0 {
		c.PauseTimeout = DefaultPauseTimeout
	}
	if c.Volume == 0 {
		c.Volume = DefaultVolume
	}
	if c.PausedFraction == 0 {
		c.PausedFraction = DefaultPausedFraction
	}
	return c
}

// snapshot is the part of the contact state the coordinator consumes.
// It matches link.ContactState without importing it, keeping this
// package free of sensing dependencies.
type snapshot interface {
	Linked() bool
	JustLinked() bool
	JustUnlinked() bool
}

// Coordinator owns one statue's playback session. All mutation of the
// session happens here, driven by contact snapshot edges.
type Coordinator struct {
	device Device
	cfg    Config

	activeIdx int
	idleIdx   int

	paused     time.Time // zero when not paused
	current    string    // track the device was last told to play
	currentAct bool      // current came from the active queue
}

// NewCoordinator creates a coordinator driving the given device.
func NewCoordinator(device Device, cfg Config) *Coordinator {
	return &Coordinator{device: device, cfg: cfg.withDefaults()}
}

// QueueIndices returns the current active and idle round-robin indices.
func (c *Coordinator) QueueIndices() (active, idle int) {
	return c.activeIdx, c.idleIdx
}

// state derives the playback state from the persistent flags and the
// device, per tick.
func (c *Coordinator) state(now time.Time) State {
	if !c.paused.IsZero() {
		if now.Sub(c.paused) >= c.cfg.PauseTimeout {
			return StatePauseTimeout
		}
		if !c.device.IsPlaying() {
			return StatePauseFinished
		}
		return StatePaused
	}
	if c.device.IsPlaying() {
		return StatePlaying
	}
	if c.current == "" {
		return StateNotStarted
	}
	return StateFinished
}

// Advance runs one control tick. Transitions are driven only by edges in
// the snapshot, never by its level, so a mask that merely stays the same
// can never repeat an action.
func (c *Coordinator) Advance(contact snapshot, now time.Time) {
	st := c.state(now)

	switch {
	case contact.JustUnlinked() && st == StatePlaying:
		// Keep the track rendering; fade instead of cutting.
		c.paused = now
		c.device.SetVolume(c.cfg.Volume * c.cfg.PausedFraction)
		return

	case st == StatePauseTimeout || st == StatePauseFinished:
		// The disconnect stuck (or the track ran out while paused):
		// close the session and line up fresh tracks on both queues.
		c.finalize()
		st = c.state(now)

	case contact.JustLinked() && st == StatePaused:
		// Quick reconnect: same track, same position, full volume.
		c.paused = time.Time{}
		c.device.SetVolume(c.cfg.Volume)
		return

	case contact.JustLinked() && st == StatePlaying && !c.currentAct:
		// An idle track is rendering with no pending pause; stop it so
		// the active track starts fresh.
		c.device.Stop()
		c.current = ""
		st = c.state(now)

	case st == StatePaused:
		c.fade(now)
		return

	case st == StateFinished:
		// Natural end of a track: only the queue it finished in moves.
		if c.currentAct {
			c.advanceActive()
		} else {
			c.advanceIdle()
		}
		c.current = ""
		st = c.state(now)
	}

	if st == StateNotStarted {
		c.startNext(contact.Linked())
	}
}

// fade lowers the volume linearly from the paused fraction toward zero
// across the pause timeout.
func (c *Coordinator) fade(now time.Time) {
	remaining := 1 - float64(now.Sub(c.paused))/float64(c.cfg.PauseTimeout)
	if remaining < 0 {
		remaining = 0
	}
	c.device.SetVolume(c.cfg.Volume * c.cfg.PausedFraction * remaining)
}

// finalize ends a paused session: stop playback, advance both queues,
// and restore the default volume for the next session.
func (c *Coordinator) finalize() {
	c.device.Stop()
	c.advanceActive()
	c.advanceIdle()
	c.paused = time.Time{}
	c.current = ""
	c.device.SetVolume(c.cfg.Volume)
}

func (c *Coordinator) startNext(linked bool) {
	var track string
	if linked {
		if len(c.cfg.ActiveTracks) == 0 {
			return
		}
		track = c.cfg.ActiveTracks[c.activeIdx]
	} else {
		if len(c.cfg.IdleTracks) == 0 {
			return
		}
		track = c.cfg.IdleTracks[c.idleIdx]
	}

	c.device.SetVolume(c.cfg.Volume)
	if err := c.device.Play(track); err != nil {
		// Retried next tick; the detection loop must not stall on this.
		log.Printf("music: play %q: %v", track, err)
		return
	}
	c.current = track
	c.currentAct = linked
}

func (c *Coordinator) advanceActive() {
	if len(c.cfg.ActiveTracks) > 0 {
		c.activeIdx = (c.activeIdx + 1) % len(c.cfg.ActiveTracks)
	}
}

func (c *Coordinator) advanceIdle() {
	if len(c.cfg.IdleTracks) > 0 {
		c.idleIdx = (c.idleIdx + 1) % len(c.cfg.IdleTracks)
	}
}
