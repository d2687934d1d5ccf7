package config

// defaultTableJSON is the compiled-in statue table, used when no config
// file is given and as the fallback before a config response arrives.
// Frequencies sit on 1024-point FFT bin centers at 44.1 kHz to keep the
// tones clear of each other's intermodulation products.
const defaultTableJSON = `{
  "eros": {
    "emit": 10077,
    "detect": ["elektra", "ariel", "sophia", "ultimo"],
    "threshold": 0.01,
    "mac_address": "04:e9:e5:19:06:4c",
    "ip_address": "192.168.4.26"
  },
  "elektra": {
    "emit": 12274,
    "detect": ["eros", "ariel", "sophia", "ultimo"],
    "threshold": 0.01,
    "mac_address": "04:e9:e5:19:06:2f",
    "ip_address": "192.168.4.23"
  },
  "ariel": {
    "emit": 14643,
    "detect": ["eros", "elektra", "sophia", "ultimo"],
    "threshold": 0.01,
    "mac_address": "04:e9:e5:17:c4:51",
    "ip_address": "192.168.4.24"
  },
  "sophia": {
    "emit": 17227,
    "detect": ["eros", "elektra", "ariel", "ultimo"],
    "threshold": 0.01,
    "mac_address": "04:e9:e5:12:93:6b",
    "ip_address": "192.168.4.25"
  },
  "ultimo": {
    "emit": 19467,
    "detect": ["eros", "elektra", "ariel", "sophia"],
    "threshold": 0.01,
    "mac_address": "04:e9:e5:12:93:68",
    "ip_address": "192.168.4.27"
  }
}`

// DefaultTable returns the compiled-in statue table.
func DefaultTable() *Table {
	t, err := Parse([]byte(defaultTableJSON))
	if err != nil {
		// The default table is a constant; failing to parse it is a bug.
		panic(err)
	}
	return t
}
