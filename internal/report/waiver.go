package report

import (
	"encoding/json"
	"os"

	"github.com/confscan/confscan/internal/types"
)

// Waivers records accepted noncompliant verdicts so they stop failing CI.
// Keys are verdict keys: hostname|ref|match|section.
type Waivers struct {
	Items map[string]bool `json:"items"`
}

// LoadWaivers reads a waiver file; a missing file yields an empty set.
func LoadWaivers(path string) (Waivers, error) {
	w := Waivers{Items: map[string]bool{}}
	b, err := os.ReadFile(path)
	if err != nil {
		return w, err
	}
	_ = json.Unmarshal(b, &w)
	if w.Items == nil {
		w.Items = map[string]bool{}
	}
	return w, nil
}

// SaveWaivers writes every noncompliant verdict in vs as waived.
func SaveWaivers(path string, vs []types.Verdict) error {
	w := Waivers{Items: map[string]bool{}}
	for _, v := range vs {
		if !v.Present {
			w.Items[v.Key()] = true
		}
	}
	b, _ := json.MarshalIndent(w, "", "  ")
	return os.WriteFile(path, b, 0o644)
}

// Waived reports whether v is covered by the waiver set.
func (w Waivers) Waived(v types.Verdict) bool {
	return w.Items[v.Key()]
}

// FilterUnwaived returns the verdicts not covered by the waiver set,
// preserving order.
func FilterUnwaived(vs []types.Verdict, w Waivers) []types.Verdict {
	if len(w.Items) == 0 {
		return vs
	}
	var out []types.Verdict
	for _, v := range vs {
		if !w.Waived(v) {
			out = append(out, v)
		}
	}
	return out
}

// ShouldFail decides the process exit policy. failOn is "noncompliant"
// (default: any unwaived failing check fails the run) or "never".
func ShouldFail(vs []types.Verdict, failOn string) bool {
	if failOn == "never" {
		return false
	}
	for _, v := range vs {
		if !v.Present {
			return true
		}
	}
	return false
}
