// Package search implements the section-aware text search at the heart of
// confscan. It is a pure function of its inputs: no I/O, no shared state.
package search

import (
	"strings"

	"github.com/confscan/confscan/internal/types"
)

// Search tests every check against every document and returns one verdict per
// (document, check) pair, documents outer and checks inner. The output length
// is always len(docs) * len(checks).
//
// A check without a section is a literal, case-sensitive substring test over
// the whole body. A check with a section is the same test restricted to the
// first matching section block; if no such block exists the verdict is not
// present, with no fallback to the whole document.
func Search(docs []types.Document, checks []types.Check) []types.Verdict {
	out := make([]types.Verdict, 0, len(docs)*len(checks))
	for _, d := range docs {
		for _, c := range checks {
			out = append(out, types.Verdict{
				Hostname: d.Hostname,
				Ref:      c.Ref,
				Match:    c.Match,
				Section:  c.Section,
				Present:  present(d.Text, c),
			})
		}
	}
	return out
}

func present(body string, c types.Check) bool {
	if c.Section == "" {
		// strings.Contains is vacuously true for an empty match.
		return strings.Contains(body, c.Match)
	}
	block, ok := Section(body, c.Section)
	if !ok {
		return false
	}
	return strings.Contains(block, c.Match)
}

// Section extracts the first section block whose header line starts with the
// literal string name. A block is the header line plus every immediately
// following line that begins with a space or tab, newlines preserved as found.
// The end of the string acts as an implicit line boundary.
//
// The header test is a plain prefix comparison with no word-boundary logic, so
// "line vty" also matches a header "line vty0 transport input ssh". Callers
// that need an exact header must pass a more specific name.
func Section(body, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	for i := 0; i < len(body); {
		next := lineEnd(body, i)
		if strings.HasPrefix(body[i:next], name) {
			j := next
			for j < len(body) && (body[j] == ' ' || body[j] == '\t') {
				j = lineEnd(body, j)
			}
			return body[i:j], true
		}
		i = next
	}
	return "", false
}

// lineEnd returns the index just past the line starting at i, including its
// trailing newline when one exists.
func lineEnd(s string, i int) int {
	if n := strings.IndexByte(s[i:], '\n'); n >= 0 {
		return i + n + 1
	}
	return len(s)
}
