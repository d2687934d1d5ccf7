// Package config holds the statue table for the installation and resolves
// which statue this process is running as. The table is loaded once at
// startup; identities are immutable for the process lifetime.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Threshold bounds accepted for detection, matching the config protocol.
const (
	MinThreshold = 0.001
	MaxThreshold = 1.0
)

// DefaultThreshold is used when the table omits a statue's threshold.
const DefaultThreshold = 0.01

var (
	// ErrIdentityConflict means an explicit statue override disagrees with
	// the IP-matched identity. The two sources must agree; we never pick one
	// silently.
	ErrIdentityConflict = errors.New("config: statue override conflicts with address-matched identity")

	// ErrUnknownStatue means a name does not appear in the table.
	ErrUnknownStatue = errors.New("config: unknown statue")
)

// Statue is one row of the table. Index is the position in ring order.
type Statue struct {
	Index     int
	Name      string
	EmitFreq  int
	Threshold float64
	Detect    []string
	MAC       string
	IP        string
}

// Table is the full statue configuration in ring order.
type Table struct {
	Statues []Statue
}

// statueJSON mirrors the deployed config file format, keyed by statue name.
type statueJSON struct {
	Emit      int      `json:"emit"`
	Detect    []string `json:"detect"`
	Threshold float64  `json:"threshold"`
	MAC       string   `json:"mac_address"`
	IP        string   `json:"ip_address"`
}

// Parse decodes a statue table from its JSON form and validates it.
// Ring order follows the canonical statue ordering, not JSON key order.
func Parse(data []byte) (*Table, error) {
	var raw map[string]statueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse statue table: %w", err)
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("statue table needs at least 2 statues, got %d", len(raw))
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, strings.ToLower(name))
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := ringRank(names[i]), ringRank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})

	t := &Table{}
	for i, name := range names {
		entry := raw[name]
		threshold := entry.Threshold
		if threshold == 0 {
			threshold = DefaultThreshold
		}
		detect := make([]string, len(entry.Detect))
		for j, d := range entry.Detect {
			detect[j] = strings.ToLower(d)
		}
		t.Statues = append(t.Statues, Statue{
			Index:     i,
			Name:      name,
			EmitFreq:  entry.Emit,
			Threshold: threshold,
			Detect:    detect,
			MAC:       entry.MAC,
			IP:        entry.IP,
		})
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Load reads and parses a statue table from a file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read statue table: %w", err)
	}
	return Parse(data)
}

func (t *Table) validate() error {
	seenFreq := make(map[int]string)
	for _, s := range t.Statues {
		if s.EmitFreq <= 0 {
			return fmt.Errorf("statue %s: emit frequency must be positive, got %d", s.Name, s.EmitFreq)
		}
		if prev, dup := seenFreq[s.EmitFreq]; dup {
			return fmt.Errorf("statues %s and %s share emit frequency %d Hz", prev, s.Name, s.EmitFreq)
		}
		seenFreq[s.EmitFreq] = s.Name
		if s.Threshold < MinThreshold || s.Threshold > MaxThreshold {
			return fmt.Errorf("statue %s: threshold %.4f outside [%g, %g]", s.Name, s.Threshold, MinThreshold, MaxThreshold)
		}
		for _, d := range s.Detect {
			if _, err := t.ByName(d); err != nil {
				return fmt.Errorf("statue %s: detect target %q not in table", s.Name, d)
			}
		}
	}
	return nil
}

// Encode renders the table back into its wire/file JSON form.
func (t *Table) Encode() ([]byte, error) {
	raw := make(map[string]statueJSON, len(t.Statues))
	for _, s := range t.Statues {
		raw[s.Name] = statueJSON{
			Emit:      s.EmitFreq,
			Detect:    s.Detect,
			Threshold: s.Threshold,
			MAC:       s.MAC,
			IP:        s.IP,
		}
	}
	return json.MarshalIndent(raw, "", "  ")
}

// ByName looks up a statue by (case-insensitive) name.
func (t *Table) ByName(name string) (Statue, error) {
	name = strings.ToLower(name)
	for _, s := range t.Statues {
		if s.Name == name {
			return s, nil
		}
	}
	return Statue{}, fmt.Errorf("%w: %q", ErrUnknownStatue, name)
}

// Names returns all statue names in ring order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Statues))
	for i, s := range t.Statues {
		names[i] = s.Name
	}
	return names
}

// Targets returns the statues a given statue listens for, in ring order.
// If the table row has an explicit detect list it is honored; otherwise
// every other statue is a target.
func (t *Table) Targets(self Statue) []Statue {
	var targets []Statue
	if len(self.Detect) > 0 {
		for _, name := range self.Detect {
			if s, err := t.ByName(name); err == nil && s.Index != self.Index {
				targets = append(targets, s)
			}
		}
		sort.Slice(targets, func(i, j int) bool { return targets[i].Index < targets[j].Index })
		return targets
	}
	for _, s := range t.Statues {
		if s.Index != self.Index {
			targets = append(targets, s)
		}
	}
	return targets
}

// canonical ring order of the installation; unknown names sort after the
// known set, alphabetically, so a renamed deployment still gets a stable
// order.
var canonicalOrder = map[string]int{
	"eros":    0,
	"elektra": 1,
	"ariel":   2,
	"sophia":  3,
	"ultimo":  4,
}

func ringRank(name string) int {
	if r, ok := canonicalOrder[name]; ok {
		return r
	}
	return len(canonicalOrder)
}
