// Package tui provides an interactive browser over audit verdicts.
package tui

import (
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/confscan/confscan/internal/report"
	"github.com/confscan/confscan/internal/types"
)

// Run starts the browser over verdicts and their documents. Waives made in
// the session are persisted to waiverPath when it is non-empty.
func Run(verdicts []types.Verdict, docs []types.Document, waivers report.Waivers, waiverPath string) error {
	m := NewModel(verdicts, docs, waivers, waiverPath)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// saveWaivers writes the waiver set as-is, keeping entries that did not come
// from this session's verdicts.
func saveWaivers(path string, w report.Waivers) error {
	b, _ := json.MarshalIndent(w, "", "  ")
	return os.WriteFile(path, b, 0o644)
}
