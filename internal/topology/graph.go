// Package topology maintains the ring controller's view of statue
// links and detects full ring closure. Updates from statues arrive
// asynchronously and possibly stale; the graph keeps the latest report
// per statue and recomputes edge state on every update.
package topology

import (
	"sort"
	"sync"
)

// Edge is a normalized ring-neighbor pair: A precedes B in ring order.
type Edge struct {
	A, B string
}

// Snapshot is a consistent view of the graph, safe to use after the
// lock is released.
type Snapshot struct {
	ClimaxActive bool
	ActiveEdges  []Edge
	MissingEdges []Edge
	// Reported maps each statue to the statues it last reported
	// detecting. Statues that never reported are absent.
	Reported map[string][]string
}

// Transition describes what one update changed.
type Transition struct {
	// ClimaxStarted fires on the update that closes the final edge,
	// exactly once per closure.
	ClimaxStarted bool
	// ClimaxStopped fires on the update that first drops any edge out
	// of a closed ring.
	ClimaxStopped bool
	// EdgesChanged is true when the active edge set differs from the
	// one before this update.
	EdgesChanged bool
	Snapshot     Snapshot
}

// Graph holds the last-value-wins per-statue reports and the derived
// edge and climax state. All writes go through one mutex, so readers
// always see a fully-updated edge set.
type Graph struct {
	mu sync.Mutex

	ring  []string       // statue names in ring order
	index map[string]int // name -> ring position
	edges []Edge         // distinct ring-neighbor pairs, normalized

	reported map[string]map[string]bool // detector -> set of emitters
	active   map[Edge]bool
	climax   bool
}

// NewGraph creates a graph over the given statues in ring order. The
// ring wraps: the last statue neighbors the first. With two statues the
// forward and wraparound edges are the same pair, so the ring has a
// single edge.
func NewGraph(ring []string) *Graph {
	g := &Graph{
		ring:     append([]string(nil), ring...),
		index:    make(map[string]int, len(ring)),
		reported: make(map[string]map[string]bool),
		active:   make(map[Edge]bool),
	}
	for i, name := range ring {
		g.index[name] = i
	}
	n := len(ring)
	seen := make(map[Edge]bool, n)
	for i := 0; i < n; i++ {
		e := g.normalize(ring[i], ring[(i+1)%n])
		if !seen[e] {
			seen[e] = true
			g.edges = append(g.edges, e)
		}
	}
	return g
}

func (g *Graph) normalize(a, b string) Edge {
	if g.index[a] > g.index[b] {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// edgeActive applies the bidirectional-OR rule: an edge counts as
// connected when either endpoint reports the other. This mirrors the
// deployed behavior; switching to strict AND would be a one-line change
// here.
func (g *Graph) edgeActive(e Edge) bool {
	return g.reported[e.A][e.B] || g.reported[e.B][e.A]
}

// Update applies one statue's latest report and recomputes edge and
// climax state. Unknown detectors are ignored; unknown emitters are
// dropped from the report. Reapplying an identical report is a no-op
// transition, so at-least-once delivery cannot re-trigger a climax.
func (g *Graph) Update(detector string, emitters []string) Transition {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, known := g.index[detector]; !known {
		return Transition{Snapshot: g.snapshotLocked()}
	}

	report := make(map[string]bool, len(emitters))
	for _, e := range emitters {
		if _, known := g.index[e]; known && e != detector {
			report[e] = true
		}
	}
	g.reported[detector] = report

	newActive := make(map[Edge]bool)
	for _, e := range g.edges {
		if g.edgeActive(e) {
			newActive[e] = true
		}
	}

	changed := len(newActive) != len(g.active)
	if !changed {
		for e := range newActive {
			if !g.active[e] {
				changed = true
				break
			}
		}
	}

	newClimax := len(g.edges) > 0 && len(newActive) == len(g.edges)
	tr := Transition{
		ClimaxStarted: newClimax && !g.climax,
		ClimaxStopped: !newClimax && g.climax,
		EdgesChanged:  changed,
	}

	g.active = newActive
	g.climax = newClimax
	tr.Snapshot = g.snapshotLocked()
	return tr
}

// Snapshot returns the current derived state.
func (g *Graph) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Graph) snapshotLocked() Snapshot {
	snap := Snapshot{
		ClimaxActive: g.climax,
		Reported:     make(map[string][]string, len(g.reported)),
	}
	for _, e := range g.edges {
		if g.active[e] {
			snap.ActiveEdges = append(snap.ActiveEdges, e)
		} else {
			snap.MissingEdges = append(snap.MissingEdges, e)
		}
	}
	for detector, set := range g.reported {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool { return g.index[names[i]] < g.index[names[j]] })
		snap.Reported[detector] = names
	}
	return snap
}

// Pairs converts edges to name pairs for the climax payload.
func Pairs(edges []Edge) [][2]string {
	out := make([][2]string, len(edges))
	for i, e := range edges {
		out[i] = [2]string{e.A, e.B}
	}
	return out
}
