package report

import (
	"fmt"
	"io"
	"time"

	"github.com/confscan/confscan/internal/types"
	"github.com/fatih/color"
)

// PrintOptions controls console rendering.
type PrintOptions struct {
	NoColor     bool
	Duration    time.Duration
	Hosts       int
	HostsFailed int
}

// Print renders verdicts as aligned columns in input order, one line per
// (host, check) pair, followed by a summary footer.
func Print(w io.Writer, verdicts []types.Verdict, opts PrintOptions) {
	if len(verdicts) == 0 {
		fmt.Fprintln(w, "No verdicts produced (no hosts matched?)")
	}

	maxRef, maxHost := 3, 8
	for _, v := range verdicts {
		if l := len(v.Ref); l > maxRef {
			maxRef = l
		}
		if l := len(v.Hostname); l > maxHost {
			maxHost = l
		}
	}

	ok, nok := 0, 0
	for _, v := range verdicts {
		status := statusLabel(v.Present, opts.NoColor)
		if v.Present {
			ok++
		} else {
			nok++
		}
		scope := v.Match
		if v.Section != "" {
			scope = fmt.Sprintf("%s  [%s]", v.Match, v.Section)
		}
		fmt.Fprintf(w, "%s  %-*s %-*s %s\n", status, maxHost, v.Hostname, maxRef, v.Ref, scope)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Checks: %d (compliant: %d, noncompliant: %d)\n", len(verdicts), ok, nok)
	if opts.Hosts > 0 {
		fmt.Fprintf(w, "Hosts audited: %d\n", opts.Hosts)
	}
	if opts.HostsFailed > 0 {
		fmt.Fprintf(w, "Hosts skipped: %d\n", opts.HostsFailed)
	}
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Duration: %.2fs\n", opts.Duration.Seconds())
	}
}

func statusLabel(present, noColor bool) string {
	if noColor {
		if present {
			return "OK "
		}
		return "NOK"
	}
	if present {
		return color.GreenString("OK ")
	}
	return color.RedString("NOK")
}
