package link

import (
	"testing"
	"time"
)

func TestFirstTickNeverUnchanged(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	agg := NewAggregator([]int{1, 2}, 100*time.Millisecond)

	state := agg.Tick(map[int]bool{}, now)
	if state.Initialized {
		t.Error("first snapshot must not be initialized")
	}
	if state.Unchanged() {
		t.Error("first snapshot must never be unchanged")
	}
}

func TestMaskPacking(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	// A node at ring index 0 listens for indices 1..4.
	agg := NewAggregator([]int{1, 2, 3, 4}, 100*time.Millisecond)

	state := agg.Tick(map[int]bool{1: true, 3: true}, now)
	if !state.IsLinked.Has(1) || !state.IsLinked.Has(3) {
		t.Errorf("expected bits 1 and 3, got %s", state.IsLinked)
	}
	if state.IsLinked.Has(2) || state.IsLinked.Has(4) {
		t.Errorf("unexpected bits in %s", state.IsLinked)
	}
}

func TestSnapshotCarriesPreviousMask(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	agg := NewAggregator([]int{1, 2}, 100*time.Millisecond)

	first := agg.Tick(map[int]bool{1: true}, now)
	second := agg.Tick(map[int]bool{1: true}, now.Add(150*time.Millisecond))

	if second.WasLinked != first.IsLinked {
		t.Errorf("previous mask %s does not match prior current %s", second.WasLinked, first.IsLinked)
	}
	if !second.Unchanged() {
		t.Error("identical masks after first tick should be unchanged")
	}
}

func TestMissingTargetDecaysThroughHoldWindow(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	agg := NewAggregator([]int{1}, 100*time.Millisecond)

	agg.Tick(map[int]bool{1: true}, now)

	// Raw reading disappears entirely; the debouncer treats it as below
	// threshold and holds the link for the window.
	mid := agg.Tick(nil, now.Add(50*time.Millisecond))
	if !mid.IsLinked.Has(1) {
		t.Error("link dropped before hold window elapsed")
	}

	end := agg.Tick(nil, now.Add(200*time.Millisecond))
	if end.IsLinked.Has(1) {
		t.Error("link survived past hold window with no signal")
	}
}

func TestSnapshotImmutability(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	agg := NewAggregator([]int{1}, 100*time.Millisecond)

	first := agg.Tick(map[int]bool{1: true}, now)
	copyOf := first
	agg.Tick(map[int]bool{}, now.Add(200*time.Millisecond))
	agg.Tick(map[int]bool{}, now.Add(400*time.Millisecond))

	if first != copyOf {
		t.Error("snapshot mutated by later ticks")
	}
}
