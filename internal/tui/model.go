package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/confscan/confscan/internal/report"
	"github.com/confscan/confscan/internal/search"
	"github.com/confscan/confscan/internal/types"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	detailBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	okStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	nokStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// statusText renders Present as plain text; ANSI codes break table truncation.
func statusText(v types.Verdict, waived bool) string {
	switch {
	case v.Present:
		return "OK"
	case waived:
		return "NOK (waived)"
	default:
		return "NOK"
	}
}

// Model drives the interactive verdict browser.
type Model struct {
	table    table.Model
	viewport viewport.Model

	verdicts []types.Verdict
	visible  []int             // indices into verdicts currently shown
	docs     map[string]string // hostname -> config text

	waivers    report.Waivers
	waiverPath string

	failingOnly bool
	ready       bool
	quitting    bool
	width       int
	height      int
	status      string
}

// NewModel builds the browser over verdicts and their source documents.
// waiverPath may be empty; waiving then only lasts for the session.
func NewModel(verdicts []types.Verdict, docs []types.Document, waivers report.Waivers, waiverPath string) Model {
	text := make(map[string]string, len(docs))
	for _, d := range docs {
		text[d.Hostname] = d.Text
	}
	if waivers.Items == nil {
		waivers.Items = map[string]bool{}
	}

	columns := []table.Column{
		{Title: "Status", Width: 12},
		{Title: "Host", Width: 20},
		{Title: "Ref", Width: 8},
		{Title: "Match", Width: 28},
		{Title: "Section", Width: 20},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1)
	s.Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("208")).
		Bold(true).
		Padding(0, 1)
	s.Cell = lipgloss.NewStyle().Padding(0, 1)
	t.SetStyles(s)

	m := Model{
		table:      t,
		verdicts:   verdicts,
		docs:       text,
		waivers:    waivers,
		waiverPath: waiverPath,
		status:     "q: quit | j/k: navigate | f: failing only | w: waive | c: copy",
	}
	m.refreshRows()
	return m
}

func (m *Model) refreshRows() {
	m.visible = m.visible[:0]
	rows := make([]table.Row, 0, len(m.verdicts))
	for i, v := range m.verdicts {
		if m.failingOnly && v.Present {
			continue
		}
		m.visible = append(m.visible, i)
		rows = append(rows, table.Row{
			statusText(v, m.waivers.Waived(v)),
			v.Hostname,
			v.Ref,
			v.Match,
			v.Section,
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
}

func (m Model) selected() (types.Verdict, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.visible) {
		return types.Verdict{}, false
	}
	return m.verdicts[m.visible[c]], true
}

// detail renders the pane below the table: the extracted section block for
// scoped checks, or the whole-document status for unscoped ones.
func (m Model) detail() string {
	v, ok := m.selected()
	if !ok {
		return "no verdict selected"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s  ref=%s  match=%q", v.Hostname, v.Ref, v.Match)
	if v.Section != "" {
		fmt.Fprintf(&b, "  section=%q", v.Section)
	}
	b.WriteString("\n\n")

	body, haveDoc := m.docs[v.Hostname]
	switch {
	case !haveDoc:
		b.WriteString("(document text not available)")
	case v.Section == "":
		if v.Present {
			b.WriteString(matchContext(body, v.Match))
		} else {
			b.WriteString("match text not found anywhere in the configuration")
		}
	default:
		block, found := search.Section(body, v.Section)
		if !found {
			b.WriteString("section not present in the configuration")
		} else {
			b.WriteString(block)
		}
	}
	return b.String()
}

// matchContext returns the first line containing match, for a quick visual
// confirmation of an unscoped hit.
func matchContext(body, match string) string {
	for _, line := range strings.Split(body, "\n") {
		if strings.Contains(line, match) {
			return line
		}
	}
	return ""
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		tableHeight := m.height/2 - 4
		if tableHeight < 4 {
			tableHeight = 4
		}
		m.table.SetHeight(tableHeight)
		m.viewport = viewport.New(m.width-4, m.height-tableHeight-7)
		m.viewport.SetContent(m.detail())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "f":
			m.failingOnly = !m.failingOnly
			m.refreshRows()
			if m.failingOnly {
				m.status = fmt.Sprintf("showing %d failing verdicts | f: show all", len(m.visible))
			} else {
				m.status = fmt.Sprintf("showing all %d verdicts | f: failing only", len(m.visible))
			}
			return m.refreshed()
		case "w":
			if v, ok := m.selected(); ok {
				if v.Present {
					m.status = "only noncompliant verdicts can be waived"
				} else {
					m.waivers.Items[v.Key()] = true
					m.status = "waived " + v.Key()
					if m.waiverPath != "" {
						if err := saveWaivers(m.waiverPath, m.waivers); err != nil {
							m.status = fmt.Sprintf("waiver not saved: %v", err)
						}
					}
					m.refreshRows()
				}
			}
			return m.refreshed()
		case "c":
			if v, ok := m.selected(); ok {
				line := strings.Join([]string{v.Hostname, v.Ref, v.Match, v.Section, v.Configured()}, ",")
				if err := clipboard.WriteAll(line); err != nil {
					m.status = fmt.Sprintf("copy failed: %v", err)
				} else {
					m.status = "copied row to clipboard"
				}
			}
			return m.refreshed()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if m.ready {
		m.viewport.SetContent(m.detail())
	}
	return m, cmd
}

// refreshed re-renders the detail pane after a state change that bypasses the
// table update.
func (m Model) refreshed() (tea.Model, tea.Cmd) {
	if m.ready {
		m.viewport.SetContent(m.detail())
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}

	ok, nok := 0, 0
	for _, v := range m.verdicts {
		if v.Present {
			ok++
		} else {
			nok++
		}
	}
	title := titleStyle.Render(fmt.Sprintf("confscan  %s %d  %s %d",
		okStyle.Render("compliant"), ok, nokStyle.Render("noncompliant"), nok))

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.table.View(),
		detailBorderStyle.Width(m.width-2).Render(m.viewport.View()),
		statusBarStyle.Width(m.width).Render(" "+m.status),
	)
}
