// Package ui provides optional terminal interfaces.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/codeloops-go/internal/codeloopsdir"
	"github.com/nibzard/codeloops-go/internal/planning"
	"github.com/nibzard/codeloops-go/internal/store"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	refresh time.Duration
}

// WithRefreshInterval sets how often the project list is reloaded.
func WithRefreshInterval(d time.Duration) TUIOption {
	return func(c *tuiConfig) {
		if d > 0 {
			c.refresh = d
		}
	}
}

// RunTUI browses the projects of s until the user quits.
func RunTUI(ctx context.Context, s *store.Store, opts ...TUIOption) error {
	c := &tuiConfig{refresh: 2 * time.Second}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	model := newTUIModel(s, c.refresh)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type tuiModel struct {
	store        *store.Store
	tickInterval time.Duration
	loadErr      error
	projects     []projectRow
	cursor       int
	showDetail   bool
	detail       []string // rendered summaries of the selected project
	detailErr    error
	showHelp     bool
}

type projectRow struct {
	name   string
	files  store.ProjectFiles
	backup bool
}

type tickMsg time.Time

func newTUIModel(s *store.Store, interval time.Duration) *tuiModel {
	return &tuiModel{
		store:        s,
		tickInterval: interval,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
			return m, nil
		case "h", "?":
			m.showHelp = !m.showHelp
			return m, nil
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.loadDetail()
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.projects)-1 {
				m.cursor++
				m.loadDetail()
			}
			return m, nil
		case "enter":
			m.showDetail = !m.showDetail
			m.loadDetail()
			return m, nil
		case "esc":
			m.showDetail = false
			return m, nil
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}

	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b, m.store.Root())

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString("Error listing projects:\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	writeProjects(&b, m.projects, m.cursor)
	if m.showDetail {
		writeDetail(&b, m.selected(), m.detail, m.detailErr)
	}
	writeFooter(&b, m.tickInterval)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *tuiModel) selected() string {
	if m.cursor < 0 || m.cursor >= len(m.projects) {
		return ""
	}
	return m.projects[m.cursor].name
}

func (m *tuiModel) refresh() {
	names, err := m.store.ListProjects()
	if err != nil {
		m.loadErr = err
		m.projects = nil
		return
	}
	m.loadErr = nil

	rows := make([]projectRow, 0, len(names))
	for _, name := range names {
		rows = append(rows, projectRow{
			name:   name,
			files:  m.store.GetProjectFiles(name),
			backup: codeloopsdir.IsBackup(name),
		})
	}
	m.projects = rows

	if m.cursor >= len(m.projects) {
		m.cursor = len(m.projects) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.loadDetail()
}

// loadDetail renders the summaries of the selected project when the detail
// pane is open.
func (m *tuiModel) loadDetail() {
	m.detail = nil
	m.detailErr = nil
	feature := m.selected()
	if !m.showDetail || feature == "" {
		return
	}

	for _, kind := range codeloopsdir.Kinds {
		doc, err := m.store.ReadDocument(feature, kind)
		if err != nil {
			m.detailErr = err
			return
		}
		if doc == nil {
			m.detail = append(m.detail, fmt.Sprintf("No %s yet.", planning.DisplayName(kind)))
			continue
		}
		m.detail = append(m.detail, planning.FormatSummary(doc))
	}
}

func writeTitle(b *strings.Builder, root string) {
	title := "codeloops projects"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n")
	b.WriteString(root + "\n\n")
}

func writeProjects(b *strings.Builder, rows []projectRow, cursor int) {
	if len(rows) == 0 {
		b.WriteString("  No projects yet.\n\n")
		return
	}
	for i, row := range rows {
		pointer := " "
		if i == cursor {
			pointer = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", pointer, formatFiles(row.files), formatName(row)))
	}
	b.WriteString("\n")
}

func formatName(row projectRow) string {
	if row.backup {
		return row.name + " (backup)"
	}
	return row.name
}

// formatFiles renders presence as [PTK] with '-' for missing documents.
func formatFiles(f store.ProjectFiles) string {
	marks := []byte("---")
	if f.Problem {
		marks[0] = 'P'
	}
	if f.Technical {
		marks[1] = 'T'
	}
	if f.Tasks {
		marks[2] = 'K'
	}
	return "[" + string(marks) + "]"
}

func writeDetail(b *strings.Builder, feature string, detail []string, err error) {
	if feature == "" {
		return
	}
	b.WriteString(feature + "\n\n")
	if err != nil {
		b.WriteString("  " + err.Error() + "\n\n")
		return
	}
	for _, section := range detail {
		b.WriteString(section)
		if !strings.HasSuffix(section, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Refresh projects\n")
	b.WriteString("  up/k down/j  Move selection\n")
	b.WriteString("  enter        Toggle document summaries\n")
	b.WriteString("  esc          Close summaries\n")
	b.WriteString("  h, ?         Toggle this help screen\n\n")
	b.WriteString("  [PTK]        problem / technical / tasks present\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	b.WriteString(fmt.Sprintf("Press h for help | q to quit | Refreshing every %s\n", interval))
}

// IsTTY returns true if stdout is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
