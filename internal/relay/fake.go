package relay

// FakeSink records climax switching for test assertions.
type FakeSink struct {
	// States contains every value passed to SetClimax, in order.
	States []bool

	// Err, if set, is returned by SetClimax.
	Err error

	// Closed tracks if Close was called.
	Closed bool
}

// SetClimax records the state.
func (f *FakeSink) SetClimax(active bool) error {
	if f.Err != nil {
		return f.Err
	}
	f.States = append(f.States, active)
	return nil
}

// Close marks the sink as closed.
func (f *FakeSink) Close() error {
	f.Closed = true
	return nil
}

// Active returns the last recorded state, false if none.
func (f *FakeSink) Active() bool {
	if len(f.States) == 0 {
		return false
	}
	return f.States[len(f.States)-1]
}
