package planning

import (
	"strings"
	"testing"
	"time"
)

func TestFormatProblemSummary(t *testing.T) {
	p := NewProblemTemplate("checkout", time.Now())
	p.ProblemStatement = "cart abandonment"
	p.SuccessCriteria = []string{"a", "b"}
	p.Users = []UserPersona{{Persona: "shopper"}}

	out := FormatProblemSummary(p)
	for _, want := range []string{"cart abandonment", "1 personas defined", "2 items", notDefined} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestFormatTechnicalSummary(t *testing.T) {
	ta := NewTechnicalTemplate("checkout", time.Now())
	ta.TechnologyStack.Language = "Go"
	ta.TechnologyStack.Framework = "chi"
	ta.Architecture.APIEndpoints = []APIEndpoint{{Method: MethodGet, Path: "/cart"}, {Method: MethodPost, Path: "/cart"}}
	ta.Security.Authentication = "OIDC"

	out := FormatTechnicalSummary(ta)
	for _, want := range []string{"Go/chi", "0 defined", "2 planned", "OIDC"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestFormatTasksSummary(t *testing.T) {
	now := time.Now()
	tb := NewTaskTemplate("checkout", now)
	tb.Tasks = []Task{
		NewTask("T1", "one", PriorityP0, now),
		NewTask("T2", "two", PriorityP1, now),
		NewTask("T3", "three", PriorityP1, now),
	}
	tb.Tasks[0].Status = StatusCompleted
	tb.Dependencies = []TaskDependency{{TaskID: "T2", DependsOn: []string{"T1"}}}

	out := FormatTasksSummary(tb)
	for _, want := range []string{"3 total (1 completed)", "P0: 1 | 📋 P1: 2 | 💡 P2: 0", "1 defined"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestFormatSummaryDispatch(t *testing.T) {
	now := time.Now()
	if !strings.Contains(FormatSummary(NewTaskTemplate("f", now)), "0 total") {
		t.Error("FormatSummary should render task breakdowns")
	}
	if !strings.Contains(FormatSummary(NewProblemTemplate("f", now)), "0 personas") {
		t.Error("FormatSummary should render problem definitions")
	}
}

func TestToYAMLKeepsFieldOrder(t *testing.T) {
	p := NewProblemTemplate("checkout", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	p.ProblemStatement = "cart abandonment"

	out, err := ToYAML(p)
	if err != nil {
		t.Fatalf("ToYAML: %v", err)
	}
	s := string(out)

	if !strings.Contains(s, "problemStatement: cart abandonment") {
		t.Errorf("missing problemStatement:\n%s", s)
	}
	if !strings.Contains(s, "featureName: checkout") {
		t.Errorf("missing featureName:\n%s", s)
	}
	if strings.Index(s, "metadata:") > strings.Index(s, "problemStatement:") {
		t.Errorf("metadata should come before problemStatement:\n%s", s)
	}
	if strings.Contains(s, "{") {
		t.Errorf("expected block style output:\n%s", s)
	}
}
