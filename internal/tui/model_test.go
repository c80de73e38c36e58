package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/confscan/confscan/internal/report"
	"github.com/confscan/confscan/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel() Model {
	verdicts := []types.Verdict{
		{Hostname: "edge-rtr1", Ref: "1.1.2", Match: "session-timeout", Section: "line con 0", Present: true},
		{Hostname: "edge-rtr1", Ref: "2.1.1", Match: "aaa new-model", Present: false},
		{Hostname: "sw1", Ref: "1.1.2", Match: "session-timeout", Section: "line con 0", Present: false},
	}
	docs := []types.Document{
		{Hostname: "edge-rtr1", Text: "line con 0\n session-timeout 15\n"},
		{Hostname: "sw1", Text: "aaa new-model\n"},
	}
	return NewModel(verdicts, docs, report.Waivers{}, "")
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModelRows(t *testing.T) {
	m := testModel()
	assert.Len(t, m.table.Rows(), 3)
	assert.Equal(t, "OK", m.table.Rows()[0][0])
	assert.Equal(t, "NOK", m.table.Rows()[1][0])
}

func TestFailingOnlyFilter(t *testing.T) {
	m := testModel()
	next, _ := m.Update(key("f"))
	got := next.(Model)
	assert.Len(t, got.table.Rows(), 2)
	for _, row := range got.table.Rows() {
		assert.True(t, strings.HasPrefix(row[0], "NOK"))
	}

	next, _ = got.Update(key("f"))
	assert.Len(t, next.(Model).table.Rows(), 3)
}

func TestWaiveSelected(t *testing.T) {
	m := testModel()

	// First row is compliant: waive refused.
	next, _ := m.Update(key("w"))
	got := next.(Model)
	assert.Contains(t, got.status, "only noncompliant")
	assert.Empty(t, got.waivers.Items)

	// Move to the failing row and waive it.
	got.table.SetCursor(1)
	next, _ = got.Update(key("w"))
	got = next.(Model)
	require.Len(t, got.waivers.Items, 1)
	assert.Equal(t, "NOK (waived)", got.table.Rows()[1][0])
}

func TestDetailShowsSectionBlock(t *testing.T) {
	m := testModel()
	d := m.detail()
	assert.Contains(t, d, "edge-rtr1")
	assert.Contains(t, d, "line con 0\n session-timeout 15\n")

	// Scoped check whose section is absent.
	m.table.SetCursor(2)
	assert.Contains(t, m.detail(), "section not present")
}

func TestDetailUnscopedMiss(t *testing.T) {
	m := testModel()
	m.table.SetCursor(1)
	assert.Contains(t, m.detail(), "not found anywhere")
}

func TestQuit(t *testing.T) {
	m := testModel()
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestViewBeforeReady(t *testing.T) {
	m := testModel()
	assert.Contains(t, m.View(), "loading")
}

func TestWindowSizeMakesReady(t *testing.T) {
	m := testModel()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	got := next.(Model)
	assert.True(t, got.ready)
	assert.Contains(t, got.View(), "confscan")
}
