package planning

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseDocument(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tb := NewTaskTemplate("checkout", now)
	tb.Tasks = []Task{NewTask("T1", "Cart model", PriorityP0, now)}
	raw, err := json.Marshal(tb)
	if err != nil {
		t.Fatal(err)
	}

	doc, err := ParseDocument(KindTasks, raw, "tasks.json")
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	view, err := doc.View(KindTasks)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	got := view.(*TaskBreakdown)
	if len(got.Tasks) != 1 || got.Tasks[0].ID != "T1" {
		t.Errorf("tasks: got %+v", got.Tasks)
	}
}

func TestParseDocumentKeepsUnknownKeys(t *testing.T) {
	in := `{"metadata": {}, "contextAnalysis": {"extra": 1}, "tasks": [{"id": "T1", "owner": "bob"}], "dependencies": [], "notes": "x"}`
	doc, err := ParseDocument(KindTasks, []byte(in), "tasks.json")
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	out, _ := json.Marshal(doc)
	for _, want := range []string{`"owner":"bob"`, `"notes":"x"`, `"extra":1`} {
		if !strings.Contains(string(out), want) {
			t.Errorf("missing %s in %s", want, out)
		}
	}
}

func TestParseDocumentRejectsWrongKind(t *testing.T) {
	raw, err := json.Marshal(NewProblemTemplate("checkout", time.Now()))
	if err != nil {
		t.Fatal(err)
	}

	_, err = ParseDocument(KindTasks, raw, "in.json")
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
	var fe *FormatError
	if errors.As(err, &fe) && fe.Path != "in.json" {
		t.Errorf("Path: got %q, want in.json", fe.Path)
	}
}

func TestParseDocumentUnknownKind(t *testing.T) {
	if _, err := ParseDocument(Kind("roadmap"), []byte(`{}`), "x"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestParseDocumentNestedTypeMismatch(t *testing.T) {
	raw := []byte(`{"metadata": {"version": 1, "created": ""}, "contextAnalysis": {}, "tasks": [{"priority": 0}], "dependencies": []}`)
	doc, err := ParseDocument(KindTasks, raw, "tasks.json")
	if err != nil {
		t.Fatalf("nested mismatches are accepted as stored, got %v", err)
	}
	meta, _ := doc.Get("metadata")
	if !strings.Contains(string(meta), `"version": 1`) {
		t.Errorf("metadata rewritten: %s", meta)
	}
}
