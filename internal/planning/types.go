package planning

import (
	"time"

	"github.com/nibzard/codeloops-go/internal/codeloopsdir"
)

// Kind aliases the document kind so callers need only this package.
type Kind = codeloopsdir.Kind

const (
	KindProblem   = codeloopsdir.KindProblem
	KindTechnical = codeloopsdir.KindTechnical
	KindTasks     = codeloopsdir.KindTasks
)

// Version is stamped into every new document's metadata.
const Version = "1.0.0"

// TimestampLayout is the UTC millisecond ISO-8601 form used for every
// stored timestamp, e.g. 2024-03-05T14:07:09.123Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp formats t in TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// DisplayName returns the human-readable name of a document kind.
func DisplayName(kind Kind) string {
	switch kind {
	case KindProblem:
		return "problem definition"
	case KindTechnical:
		return "technical approach"
	case KindTasks:
		return "task breakdown"
	default:
		return string(kind)
	}
}

// Metadata is the header shared by all planning documents. Timestamps are
// kept as stored; they are not parsed.
type Metadata struct {
	Created     string `json:"created"`
	Updated     string `json:"updated"`
	Version     string `json:"version"`
	FeatureName string `json:"featureName"`
}

// Document is implemented by the pointer types of the three document kinds.
// They are typed views for summaries and deep validation; the stored form
// is Raw.
type Document interface {
	Kind() Kind
	Meta() *Metadata
}

// ProblemDefinition describes what a feature solves and for whom.
type ProblemDefinition struct {
	Metadata         *Metadata     `json:"metadata" validate:"required"`
	ProblemStatement string        `json:"problemStatement"`
	Why              string        `json:"why"`
	SuccessCriteria  []string      `json:"successCriteria"`
	Constraints      *Constraints  `json:"constraints"`
	Users            []UserPersona `json:"users" validate:"dive"`
}

// Constraints bounds the problem with free text.
type Constraints struct {
	Technical string `json:"technical"`
	Business  string `json:"business"`
	Scope     string `json:"scope"`
	NonGoals  string `json:"nonGoals"`
}

// UserPersona describes one kind of user. Stories use the
// "As a [user], I want [goal], so that [benefit]" form.
type UserPersona struct {
	Persona    string   `json:"persona" validate:"required"`
	Goals      []string `json:"goals"`
	PainPoints []string `json:"painPoints"`
	Stories    []string `json:"stories"`
}

func (p *ProblemDefinition) Kind() Kind      { return KindProblem }
func (p *ProblemDefinition) Meta() *Metadata { return p.Metadata }

// TechnicalApproach describes how a feature will be built.
type TechnicalApproach struct {
	Metadata        *Metadata        `json:"metadata" validate:"required"`
	TechnologyStack *TechnologyStack `json:"technologyStack"`
	DataModels      []DataModel      `json:"dataModels" validate:"dive"`
	Architecture    *Architecture    `json:"architecture"`
	Security        *Security        `json:"security"`
}

type TechnologyStack struct {
	Language       string   `json:"language"`
	Framework      string   `json:"framework"`
	Dependencies   []string `json:"dependencies"`
	Database       string   `json:"database"`
	Infrastructure string   `json:"infrastructure"`
}

// DataModel names one persisted entity. Schema is free text (JSON Schema
// or a type definition).
type DataModel struct {
	Name            string   `json:"name" validate:"required"`
	Schema          string   `json:"schema"`
	ValidationRules string   `json:"validationRules"`
	Relationships   []string `json:"relationships,omitempty"`
}

type Architecture struct {
	Components        []string      `json:"components"`
	APIEndpoints      []APIEndpoint `json:"apiEndpoints" validate:"dive"`
	IntegrationPoints []string      `json:"integrationPoints"`
	FileOrganization  []string      `json:"fileOrganization"`
}

// HTTPMethod is the verb of a planned API endpoint.
type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodDelete HTTPMethod = "DELETE"
	MethodPatch  HTTPMethod = "PATCH"
)

type APIEndpoint struct {
	Method         HTTPMethod `json:"method" validate:"oneof=GET POST PUT DELETE PATCH"`
	Path           string     `json:"path" validate:"required"`
	Purpose        string     `json:"purpose"`
	RequestSchema  string     `json:"requestSchema,omitempty"`
	ResponseSchema string     `json:"responseSchema,omitempty"`
}

type Security struct {
	Authentication string `json:"authentication"`
	Authorization  string `json:"authorization"`
	Validation     string `json:"validation"`
	ErrorHandling  string `json:"errorHandling"`
}

func (t *TechnicalApproach) Kind() Kind      { return KindTechnical }
func (t *TechnicalApproach) Meta() *Metadata { return t.Metadata }

// TaskBreakdown is the ordered work plan for a feature.
type TaskBreakdown struct {
	Metadata        *Metadata        `json:"metadata" validate:"required"`
	ContextAnalysis *ContextAnalysis `json:"contextAnalysis"`
	Tasks           []Task           `json:"tasks" validate:"dive"`
	Dependencies    []TaskDependency `json:"dependencies" validate:"dive"`
}

// ContextAnalysis cross-references the other two documents as free text.
type ContextAnalysis struct {
	ProblemDefinition string `json:"problemDefinition"`
	TechnicalApproach string `json:"technicalApproach"`
	CodebasePatterns  string `json:"codebasePatterns"`
	ExternalDocs      string `json:"externalDocs"`
}

// Priority is a task priority, P0 being the most urgent.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
)

// Priorities lists every priority from most to least urgent.
var Priorities = []Priority{PriorityP0, PriorityP1, PriorityP2}

// Status is a task's progress state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
)

// Statuses lists every task status.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusBlocked}

// Task is a single unit of planned work.
type Task struct {
	ID                        string                `json:"id" validate:"required"`
	Title                     string                `json:"title" validate:"required"`
	Description               string                `json:"description"`
	Priority                  Priority              `json:"priority" validate:"oneof=P0 P1 P2"`
	Status                    Status                `json:"status" validate:"oneof=pending in_progress completed blocked"`
	EstimatedHours            float64               `json:"estimatedHours" validate:"gte=0"`
	UserStory                 string                `json:"userStory"`
	ContextAnalysis           TaskContext           `json:"contextAnalysis"`
	FileStructureChanges      FileStructureChanges  `json:"fileStructureChanges"`
	ImplementationDetails     ImplementationDetails `json:"implementationDetails"`
	TechnicalSpecifications   string                `json:"technicalSpecifications"`
	ImplementationConstraints []string              `json:"implementationConstraints"`
	ExternalDependencies      []string              `json:"externalDependencies"`
	IntegrationPoints         []string              `json:"integrationPoints"`
	AcceptanceCriteria        []string              `json:"acceptanceCriteria"`
	SuccessDefinition         string                `json:"successDefinition"`
	OutOfScope                []string              `json:"outOfScope"`
	Dependencies              []string              `json:"dependencies"`
	Notes                     string                `json:"notes,omitempty"`
	AssignedTo                string                `json:"assignedTo,omitempty"`
	CreatedDate               string                `json:"createdDate"`
	UpdatedDate               string                `json:"updatedDate"`
}

type TaskContext struct {
	WhatExists   []string `json:"whatExists"`
	WhatsMissing []string `json:"whatsMissing"`
}

type FileStructureChanges struct {
	NewFiles      []string   `json:"newFiles"`
	ModifiedFiles []string   `json:"modifiedFiles"`
	MovedFiles    []FileMove `json:"movedFiles"`
}

type FileMove struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type ImplementationDetails struct {
	Files           []string `json:"files"`
	Functions       []string `json:"functions"`
	APIEndpoints    []string `json:"apiEndpoints"`
	DatabaseChanges []string `json:"databaseChanges"`
}

// TaskDependency records which tasks a task waits on. Identifiers are
// not checked against the task list.
type TaskDependency struct {
	TaskID    string   `json:"taskId" validate:"required"`
	DependsOn []string `json:"dependsOn"`
	BlockedBy []string `json:"blockedBy,omitempty"`
	Blocks    []string `json:"blocks,omitempty"`
}

func (t *TaskBreakdown) Kind() Kind      { return KindTasks }
func (t *TaskBreakdown) Meta() *Metadata { return t.Metadata }

// GetTask returns a task by ID, or nil if not found.
func (t *TaskBreakdown) GetTask(id string) *Task {
	for i := range t.Tasks {
		if t.Tasks[i].ID == id {
			return &t.Tasks[i]
		}
	}
	return nil
}

// CountByPriority counts tasks per priority.
func (t *TaskBreakdown) CountByPriority() map[Priority]int {
	counts := make(map[Priority]int, len(Priorities))
	for _, task := range t.Tasks {
		counts[task.Priority]++
	}
	return counts
}

// CountByStatus counts tasks per status.
func (t *TaskBreakdown) CountByStatus() map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, task := range t.Tasks {
		counts[task.Status]++
	}
	return counts
}
