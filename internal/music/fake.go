package music

// FakeDevice records playback calls for test assertions. Tests control
// Playing directly to simulate tracks finishing.
type FakeDevice struct {
	// Playing is returned by IsPlaying. Play sets it, Stop clears it.
	Playing bool

	// Plays contains every track passed to Play, in order.
	Plays []string

	// Stops counts Stop calls.
	Stops int

	// Volumes contains every fraction passed to SetVolume, in order.
	Volumes []float64

	// PlayError, if set, is returned by Play (and Playing stays false).
	PlayError error
}

// IsPlaying returns the scripted playback state.
func (f *FakeDevice) IsPlaying() bool { return f.Playing }

// Play records the track.
func (f *FakeDevice) Play(track string) error {
	if f.PlayError != nil {
		return f.PlayError
	}
	f.Plays = append(f.Plays, track)
	f.Playing = true
	return nil
}

// Stop records the stop.
func (f *FakeDevice) Stop() {
	f.Stops++
	f.Playing = false
}

// SetVolume records the fraction.
func (f *FakeDevice) SetVolume(fraction float64) {
	f.Volumes = append(f.Volumes, fraction)
}

// LastVolume returns the most recent volume, or -1 if none was set.
func (f *FakeDevice) LastVolume() float64 {
	if len(f.Volumes) == 0 {
		return -1
	}
	return f.Volumes[len(f.Volumes)-1]
}
