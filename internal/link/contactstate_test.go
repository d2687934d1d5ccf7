package link

import "testing"

func TestMaskAccessors(t *testing.T) {
	var m Mask
	m = m.With(1).With(3)

	if !m.Has(1) || !m.Has(3) {
		t.Errorf("expected bits 1 and 3 set, got %s", m)
	}
	if m.Has(0) || m.Has(2) {
		t.Errorf("unexpected bits set in %s", m)
	}
	if got := m.Without(1); got.Has(1) {
		t.Errorf("Without(1) left bit set: %s", got)
	}
	if got, want := m.String(), "{1,3}"; got != want {
		t.Errorf("String: got %s, want %s", got, want)
	}
}

func TestUnchangedSemantics(t *testing.T) {
	cases := []struct {
		name  string
		state ContactState
		want  bool
	}{
		{"first tick equal masks", ContactState{Initialized: false, WasLinked: 0, IsLinked: 0}, false},
		{"first tick with links", ContactState{Initialized: false, WasLinked: 0, IsLinked: Mask(2)}, false},
		{"initialized equal", ContactState{Initialized: true, WasLinked: Mask(2), IsLinked: Mask(2)}, true},
		{"initialized differ", ContactState{Initialized: true, WasLinked: Mask(2), IsLinked: Mask(6)}, false},
		{"initialized both empty", ContactState{Initialized: true, WasLinked: 0, IsLinked: 0}, true},
	}

	for _, tc := range cases {
		if got := tc.state.Unchanged(); got != tc.want {
			t.Errorf("%s: Unchanged() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestLinkEdges(t *testing.T) {
	up := ContactState{Initialized: true, WasLinked: 0, IsLinked: Mask(4)}
	if !up.JustLinked() {
		t.Error("expected JustLinked on 0 -> {2}")
	}
	if up.JustUnlinked() {
		t.Error("unexpected JustUnlinked on 0 -> {2}")
	}

	down := ContactState{Initialized: true, WasLinked: Mask(4), IsLinked: 0}
	if !down.JustUnlinked() {
		t.Error("expected JustUnlinked on {2} -> 0")
	}

	// Switching targets while staying linked is neither edge.
	swap := ContactState{Initialized: true, WasLinked: Mask(4), IsLinked: Mask(2)}
	if swap.JustLinked() || swap.JustUnlinked() {
		t.Error("target swap must not register as a link edge")
	}
}

func TestLinkedTo(t *testing.T) {
	s := ContactState{Initialized: true, IsLinked: Mask(0).With(3)}
	if !s.LinkedTo(3) {
		t.Error("expected LinkedTo(3)")
	}
	if s.LinkedTo(1) {
		t.Error("unexpected LinkedTo(1)")
	}
	if !s.Linked() {
		t.Error("expected Linked with bit set")
	}
}
