// Package audit keeps an append-only JSONL history of audit runs.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/confscan/confscan/internal/types"
)

// RunRecord summarizes one audit run.
type RunRecord struct {
	Timestamp    time.Time      `json:"timestamp"`
	RunID        string         `json:"run_id"`
	Target       string         `json:"target"` // inventory URL or directory
	Hosts        int            `json:"hosts"`
	HostsFailed  int            `json:"hosts_failed"`
	Checks       int            `json:"checks"`
	Verdicts     int            `json:"verdicts"`
	Noncompliant int            `json:"noncompliant"`
	Waived       int            `json:"waived"`
	Compliance   float64        `json:"compliance_pct"`
	Duration     string         `json:"duration"`
	TopFailing   []CheckSummary `json:"top_failing,omitempty"`
}

// CheckSummary names a check and how many hosts failed it.
type CheckSummary struct {
	Ref     string `json:"ref,omitempty"`
	Match   string `json:"match"`
	Section string `json:"section,omitempty"`
	Hosts   int    `json:"hosts"`
}

// Log is a JSONL run history at a fixed path.
type Log struct {
	path string
}

// DefaultPath stores the history next to the global config.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home == "" {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "confscan", "history.jsonl")
}

// NewLog opens a run log at path ("" = DefaultPath).
func NewLog(path string) *Log {
	if path == "" {
		path = DefaultPath()
	}
	return &Log{path: path}
}

// LogRun appends one record, assigning a run id when absent.
func (l *Log) LogRun(rec RunRecord) error {
	if l.path == "" {
		return fmt.Errorf("no history path")
	}
	if rec.RunID == "" {
		rec.RunID = fmt.Sprintf("run_%d", time.Now().Unix())
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(rec); err != nil {
		return fmt.Errorf("append run record: %w", err)
	}
	return nil
}

// LoadHistory returns past runs, newest first. Corrupt lines are skipped.
func (l *Log) LoadHistory() ([]RunRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}
	defer f.Close()

	var records []RunRecord
	dec := json.NewDecoder(f)
	for dec.More() {
		var rec RunRecord
		if err := dec.Decode(&rec); err != nil {
			break
		}
		records = append(records, rec)
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// NewRunRecord builds a record from run results. The failing-check summary is
// capped at five entries in verdict order.
func NewRunRecord(target string, verdicts []types.Verdict, hosts, hostsFailed, checks, waived int, duration time.Duration) RunRecord {
	nok := 0
	perCheck := map[string]*CheckSummary{}
	var order []string
	for _, v := range verdicts {
		if v.Present {
			continue
		}
		nok++
		k := v.Ref + "|" + v.Match + "|" + v.Section
		if perCheck[k] == nil {
			perCheck[k] = &CheckSummary{Ref: v.Ref, Match: v.Match, Section: v.Section}
			order = append(order, k)
		}
		perCheck[k].Hosts++
	}

	const topN = 5
	var top []CheckSummary
	for _, k := range order {
		if len(top) == topN {
			break
		}
		top = append(top, *perCheck[k])
	}

	pct := 100.0
	if len(verdicts) > 0 {
		pct = 100 * float64(len(verdicts)-nok) / float64(len(verdicts))
	}

	return RunRecord{
		Timestamp:    time.Now(),
		Target:       target,
		Hosts:        hosts,
		HostsFailed:  hostsFailed,
		Checks:       checks,
		Verdicts:     len(verdicts),
		Noncompliant: nok,
		Waived:       waived,
		Compliance:   pct,
		Duration:     duration.String(),
		TopFailing:   top,
	}
}
