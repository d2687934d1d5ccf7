package config

import (
	"fmt"
	"log"
	"net"
)

// Identity is the resolved identity of this process: which statue it is
// and which statues it listens for. Assigned once at startup, immutable
// thereafter.
type Identity struct {
	Self     Statue
	Targets  []Statue
	Degraded bool // true when resolution fell back to the default entry
}

// Resolve determines this node's identity from the table. Resolution is
// a single authoritative step:
//
//   - If override is non-empty it must name a statue in the table, and if
//     an address match also exists the two must agree (a disagreement is a
//     configuration error, never resolved by precedence).
//   - Otherwise the statue whose configured IP matches one of addrs wins.
//   - If nothing matches, fall back to the first table entry, log a
//     warning, and run degraded so detection and audio keep working.
func Resolve(t *Table, override string, addrs []string) (Identity, error) {
	matched, haveMatch := matchByAddress(t, addrs)

	if override != "" {
		s, err := t.ByName(override)
		if err != nil {
			return Identity{}, err
		}
		if haveMatch && matched.Index != s.Index {
			return Identity{}, fmt.Errorf("%w: override %q vs address match %q",
				ErrIdentityConflict, s.Name, matched.Name)
		}
		return Identity{Self: s, Targets: t.Targets(s)}, nil
	}

	if haveMatch {
		return Identity{Self: matched, Targets: t.Targets(matched)}, nil
	}

	fallback := t.Statues[0]
	log.Printf("config: no statue matches local addresses %v, falling back to %s (degraded)",
		addrs, fallback.Name)
	return Identity{Self: fallback, Targets: t.Targets(fallback), Degraded: true}, nil
}

func matchByAddress(t *Table, addrs []string) (Statue, bool) {
	for _, addr := range addrs {
		for _, s := range t.Statues {
			if s.IP != "" && s.IP == addr {
				return s, true
			}
		}
	}
	return Statue{}, false
}

// LocalAddresses returns the IPv4 addresses of all non-loopback
// interfaces. Errors degrade to an empty list; Resolve then falls back.
func LocalAddresses() []string {
	ifaces, err := net.InterfaceAddrs()
	if err != nil {
		log.Printf("config: listing interface addresses: %v", err)
		return nil
	}
	var addrs []string
	for _, a := range ifaces {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil {
			addrs = append(addrs, v4.String())
		}
	}
	return addrs
}
