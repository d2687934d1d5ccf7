package link

import "time"

// Aggregator packs the debounced per-target booleans into one immutable
// ContactState per control tick. One instance exists per node; all of
// its state lives in fields so multiple simulated nodes can coexist in
// tests.
type Aggregator struct {
	debouncers  map[int]*Debouncer // keyed by target ring index
	prev        Mask
	initialized bool
}

// NewAggregator creates an aggregator for the given target ring indices.
func NewAggregator(targetIndices []int, holdWindow time.Duration) *Aggregator {
	a := &Aggregator{debouncers: make(map[int]*Debouncer, len(targetIndices))}
	for _, idx := range targetIndices {
		a.debouncers[idx] = NewDebouncer(holdWindow)
	}
	return a
}

// Tick feeds this tick's raw readings (keyed by target ring index) and
// returns the tick's snapshot. Exactly one snapshot is produced per
// call; the caller hands the same value to every consumer so they all
// observe an identical, non-torn state. Targets missing from raw are
// fed a false sample, so a dead detector decays to unlinked through the
// normal hold window.
func (a *Aggregator) Tick(raw map[int]bool, now time.Time) ContactState {
	var mask Mask
	for idx, deb := range a.debouncers {
		if deb.Update(raw[idx], now) {
			mask = mask.With(idx)
		}
	}

	state := ContactState{
		Initialized: a.initialized,
		WasLinked:   a.prev,
		IsLinked:    mask,
	}
	a.prev = mask
	a.initialized = true
	return state
}
