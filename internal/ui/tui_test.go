package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	"github.com/nibzard/codeloops-go/internal/planning"
	"github.com/nibzard/codeloops-go/internal/store"
)

func newTestModel(t *testing.T) *tuiModel {
	t.Helper()
	s := store.New("/work/.codeloops", store.WithFs(afero.NewMemMapFs()))

	if _, err := s.CreateOrUpdateProblemDefinition("checkout", planning.Update{"problemStatement": "carts abandoned"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateOrUpdateTaskBreakdown("search", planning.Update{}); err != nil {
		t.Fatal(err)
	}

	m := newTUIModel(s, time.Second)
	m.Init()
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelListsProjects(t *testing.T) {
	m := newTestModel(t)

	if len(m.projects) != 2 {
		t.Fatalf("projects: got %d, want 2", len(m.projects))
	}
	view := m.View()
	if !strings.Contains(view, "> [P--] checkout") {
		t.Errorf("checkout row missing or not selected:\n%s", view)
	}
	if !strings.Contains(view, "  [--K] search") {
		t.Errorf("search row missing:\n%s", view)
	}
}

func TestModelNavigation(t *testing.T) {
	m := newTestModel(t)

	m.Update(key("down"))
	if m.selected() != "search" {
		t.Errorf("after down: got %q, want search", m.selected())
	}
	m.Update(key("j"))
	if m.selected() != "search" {
		t.Errorf("cursor should stop at the last row, got %q", m.selected())
	}
	m.Update(key("k"))
	if m.selected() != "checkout" {
		t.Errorf("after k: got %q, want checkout", m.selected())
	}
	m.Update(key("up"))
	if m.cursor != 0 {
		t.Errorf("cursor should stop at 0, got %d", m.cursor)
	}
}

func TestModelDetailShowsSummaries(t *testing.T) {
	m := newTestModel(t)

	m.Update(key("enter"))
	view := m.View()
	if !strings.Contains(view, "carts abandoned") {
		t.Errorf("problem summary missing:\n%s", view)
	}
	if !strings.Contains(view, "No technical approach yet.") {
		t.Errorf("missing document notice absent:\n%s", view)
	}

	m.Update(key("esc"))
	if strings.Contains(m.View(), "carts abandoned") {
		t.Error("esc should close the detail pane")
	}
}

func TestModelHelpAndQuit(t *testing.T) {
	m := newTestModel(t)

	m.Update(key("?"))
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("help screen not shown")
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModelRefreshPicksUpNewProjects(t *testing.T) {
	m := newTestModel(t)
	if _, err := m.store.CreateOrUpdateTechnicalApproach("billing", planning.Update{}); err != nil {
		t.Fatal(err)
	}

	m.Update(tickMsg(time.Now()))
	if len(m.projects) != 3 {
		t.Fatalf("projects after tick: got %d, want 3", len(m.projects))
	}
	if m.projects[0].name != "billing" || formatFiles(m.projects[0].files) != "[-T-]" {
		t.Errorf("unexpected first row %+v", m.projects[0])
	}
}

func TestModelEmptyRoot(t *testing.T) {
	m := newTUIModel(store.New("/empty", store.WithFs(afero.NewMemMapFs())), time.Second)
	m.Init()
	if !strings.Contains(m.View(), "No projects yet.") {
		t.Errorf("empty root view:\n%s", m.View())
	}
	m.Update(key("enter"))
	m.Update(key("down"))
	if m.cursor != 0 {
		t.Errorf("cursor: got %d, want 0", m.cursor)
	}
}

func TestFormatName(t *testing.T) {
	row := projectRow{name: "checkout-backup-2024-01-01T00-00-00-000Z", backup: true}
	if got := formatName(row); !strings.HasSuffix(got, "(backup)") {
		t.Errorf("formatName: got %q", got)
	}
}

func TestIsTTY(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("buffer is not a TTY")
	}
}
