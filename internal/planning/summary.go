package planning

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const notDefined = "Not defined"

func summaryLine(b *strings.Builder, icon, label, value string) {
	b.WriteString(icon)
	b.WriteByte(' ')
	b.WriteString(labelStyle.Render(label + ":"))
	b.WriteByte(' ')
	b.WriteString(value)
	b.WriteByte('\n')
}

func orNotDefined(s string) string {
	if strings.TrimSpace(s) == "" {
		return mutedStyle.Render(notDefined)
	}
	return s
}

// FormatProblemSummary renders a short overview of a problem definition.
func FormatProblemSummary(p *ProblemDefinition) string {
	var b strings.Builder
	scope := ""
	if p.Constraints != nil {
		scope = p.Constraints.Scope
	}
	summaryLine(&b, "📋", "Problem", orNotDefined(p.ProblemStatement))
	summaryLine(&b, "👥", "Users", fmt.Sprintf("%d personas defined", len(p.Users)))
	summaryLine(&b, "✅", "Success Criteria", fmt.Sprintf("%d items", len(p.SuccessCriteria)))
	summaryLine(&b, "🚫", "Constraints", orNotDefined(scope))
	return b.String()
}

// FormatTechnicalSummary renders a short overview of a technical approach.
func FormatTechnicalSummary(t *TechnicalApproach) string {
	var b strings.Builder
	stack := mutedStyle.Render(notDefined)
	if t.TechnologyStack != nil && (t.TechnologyStack.Language != "" || t.TechnologyStack.Framework != "") {
		stack = t.TechnologyStack.Language + "/" + t.TechnologyStack.Framework
	}
	endpoints := 0
	if t.Architecture != nil {
		endpoints = len(t.Architecture.APIEndpoints)
	}
	auth := ""
	if t.Security != nil {
		auth = t.Security.Authentication
	}
	summaryLine(&b, "🏗️", "Tech Stack", stack)
	summaryLine(&b, "📊", "Data Models", fmt.Sprintf("%d defined", len(t.DataModels)))
	summaryLine(&b, "🔌", "API Endpoints", fmt.Sprintf("%d planned", endpoints))
	summaryLine(&b, "🔐", "Security", orNotDefined(auth))
	return b.String()
}

// FormatTasksSummary renders task counts by priority and completion.
func FormatTasksSummary(t *TaskBreakdown) string {
	var b strings.Builder
	byPriority := t.CountByPriority()
	completed := t.CountByStatus()[StatusCompleted]

	summaryLine(&b, "📝", "Tasks", fmt.Sprintf("%d total (%d completed)", len(t.Tasks), completed))
	fmt.Fprintf(&b, "🔥 P0: %d | 📋 P1: %d | 💡 P2: %d\n",
		byPriority[PriorityP0], byPriority[PriorityP1], byPriority[PriorityP2])
	summaryLine(&b, "🔄", "Dependencies", fmt.Sprintf("%d defined", len(t.Dependencies)))
	return b.String()
}

// FormatSummary dispatches on the document's kind.
func FormatSummary(doc Document) string {
	switch d := doc.(type) {
	case *ProblemDefinition:
		return FormatProblemSummary(d)
	case *TechnicalApproach:
		return FormatTechnicalSummary(d)
	case *TaskBreakdown:
		return FormatTasksSummary(d)
	default:
		return ""
	}
}
