// Package link converts raw per-target tone readings into the stable
// per-tick contact snapshot the rest of the system consumes. It has no
// hardware or network dependencies; time is always passed in.
package link

import (
	"fmt"
	"strings"
)

// Mask is a bitset of statue ring indices. Bit i set means target i is
// in the stable linked condition.
type Mask uint8

// Has reports whether the bit for the given statue index is set.
func (m Mask) Has(index int) bool { return m&(1<<uint(index)) != 0 }

// With returns a copy of the mask with the given bit set.
func (m Mask) With(index int) Mask { return m | 1<<uint(index) }

// Without returns a copy of the mask with the given bit cleared.
func (m Mask) Without(index int) Mask { return m &^ (1 << uint(index)) }

// Indices returns the set bit positions in ascending order.
func (m Mask) Indices() []int {
	var out []int
	for i := 0; i < 8; i++ {
		if m.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

// String renders the mask as e.g. "{1,3}".
func (m Mask) String() string {
	parts := make([]string, 0, 8)
	for _, i := range m.Indices() {
		parts = append(parts, fmt.Sprintf("%d", i))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// ContactState is one control tick's immutable snapshot of the node's
// link state: the mask just produced and the one before it. Consumers
// derive "changed" by comparing the two, never by re-reading hardware.
type ContactState struct {
	Initialized bool
	WasLinked   Mask
	IsLinked    Mask
}

// Linked reports whether any target is currently linked.
func (s ContactState) Linked() bool { return s.IsLinked != 0 }

// LinkedTo reports whether the target at the given ring index is linked.
func (s ContactState) LinkedTo(index int) bool { return s.IsLinked.Has(index) }

// Unchanged is true when the snapshot carries no transition. The first
// tick is never unchanged, regardless of mask value.
func (s ContactState) Unchanged() bool {
	return s.Initialized && s.IsLinked == s.WasLinked
}

// JustLinked reports the unlinked-to-linked edge: no target was linked
// before this tick and at least one is now.
func (s ContactState) JustLinked() bool {
	return s.WasLinked == 0 && s.IsLinked != 0
}

// JustUnlinked reports the linked-to-unlinked edge.
func (s ContactState) JustUnlinked() bool {
	return s.Initialized && s.WasLinked != 0 && s.IsLinked == 0
}
