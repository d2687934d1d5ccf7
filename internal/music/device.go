// Package music coordinates track playback on one statue. It reacts to
// contact snapshot edges, fading out on disconnect and resuming the same
// track on quick reconnect, so flickering contact never causes jarring
// cuts or restarts.
package music

import "log"

// Device is the playback capability this package drives. The real
// implementation lives with the audio hardware; the coordinator only
// needs these four calls.
type Device interface {
	// IsPlaying reports whether a track is currently rendering.
	IsPlaying() bool
	// Play starts the given track from the beginning.
	Play(track string) error
	// Stop halts playback.
	Stop()
	// SetVolume sets output volume as a fraction in [0, 1].
	SetVolume(fraction float64)
}

// NullDevice is a Device with no audio hardware behind it. It logs
// transitions so a statue without a wired amplifier still shows what it
// would have played.
type NullDevice struct {
	playing bool
	track   string
}

// IsPlaying reports the simulated playback state.
func (d *NullDevice) IsPlaying() bool { return d.playing }

// Play records and logs the track start.
func (d *NullDevice) Play(track string) error {
	d.playing = true
	d.track = track
	log.Printf("music: play %q (no audio device)", track)
	return nil
}

// Stop halts the simulated playback.
func (d *NullDevice) Stop() {
	if d.playing {
		log.Printf("music: stop %q (no audio device)", d.track)
	}
	d.playing = false
	d.track = ""
}

// SetVolume is a no-op without hardware.
func (d *NullDevice) SetVolume(fraction float64) {}
