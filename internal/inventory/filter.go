package inventory

import (
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// FilterHostnames keeps hostnames matching any of the comma-separated glob
// patterns, preserving inventory order. An empty filter keeps everything.
func FilterHostnames(hostnames []string, filter string) []string {
	globs := parseGlobs(filter)
	if len(globs) == 0 {
		return hostnames
	}
	var out []string
	for _, h := range hostnames {
		if matchAnyGlob(h, globs) {
			out = append(out, h)
		}
	}
	return out
}

func parseGlobs(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func matchAnyGlob(name string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, name); ok {
			return true
		}
	}
	return false
}
