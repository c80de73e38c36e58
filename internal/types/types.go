package types

import "time"

// Check is a single compliance rule: a string that must appear in a device
// configuration, optionally scoped to a named section block. Ref is an opaque
// caller-supplied identifier (e.g. "1.1.2") carried through to the verdict.
type Check struct {
	Ref     string `yaml:"ref,omitempty" json:"ref,omitempty"`
	Match   string `yaml:"match" json:"match"`
	Section string `yaml:"section,omitempty" json:"section,omitempty"`
}

// Document is one device configuration dump tagged with its hostname.
// Hash and LastChange are provenance from the inventory and do not affect
// search results.
type Document struct {
	Hostname   string    `json:"hostname"`
	Hash       string    `json:"hash,omitempty"`
	LastChange time.Time `json:"last_change,omitempty"`
	Text       string    `json:"text"`
}

// Verdict is the outcome of testing one Check against one Document.
// Present is always a concrete boolean; there is no "unknown" state.
type Verdict struct {
	Hostname string `json:"hostname"`
	Ref      string `json:"ref,omitempty"`
	Match    string `json:"match"`
	Section  string `json:"section,omitempty"`
	Present  bool   `json:"present"`
}

// Configured renders Present in the YES/NO vocabulary used by the CSV report.
func (v Verdict) Configured() string {
	if v.Present {
		return "YES"
	}
	return "NO"
}

// Key identifies a verdict for waiver matching.
func (v Verdict) Key() string {
	return v.Hostname + "|" + v.Ref + "|" + v.Match + "|" + v.Section
}
