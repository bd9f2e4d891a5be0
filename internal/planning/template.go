package planning

import (
	"fmt"
	"time"
)

func newMetadata(feature string, now time.Time) *Metadata {
	stamp := Timestamp(now)
	return &Metadata{
		Created:     stamp,
		Updated:     stamp,
		Version:     Version,
		FeatureName: feature,
	}
}

// NewProblemTemplate returns an empty problem definition for feature.
func NewProblemTemplate(feature string, now time.Time) *ProblemDefinition {
	return &ProblemDefinition{
		Metadata:        newMetadata(feature, now),
		SuccessCriteria: []string{},
		Constraints:     &Constraints{},
		Users:           []UserPersona{},
	}
}

// NewTechnicalTemplate returns an empty technical approach for feature.
func NewTechnicalTemplate(feature string, now time.Time) *TechnicalApproach {
	return &TechnicalApproach{
		Metadata: newMetadata(feature, now),
		TechnologyStack: &TechnologyStack{
			Dependencies: []string{},
		},
		DataModels: []DataModel{},
		Architecture: &Architecture{
			Components:        []string{},
			APIEndpoints:      []APIEndpoint{},
			IntegrationPoints: []string{},
			FileOrganization:  []string{},
		},
		Security: &Security{},
	}
}

// NewTaskTemplate returns an empty task breakdown for feature.
func NewTaskTemplate(feature string, now time.Time) *TaskBreakdown {
	return &TaskBreakdown{
		Metadata:        newMetadata(feature, now),
		ContextAnalysis: &ContextAnalysis{},
		Tasks:           []Task{},
		Dependencies:    []TaskDependency{},
	}
}

// NewTemplate returns the empty document of the given kind.
func NewTemplate(kind Kind, feature string, now time.Time) (Document, error) {
	switch kind {
	case KindProblem:
		return NewProblemTemplate(feature, now), nil
	case KindTechnical:
		return NewTechnicalTemplate(feature, now), nil
	case KindTasks:
		return NewTaskTemplate(feature, now), nil
	default:
		return nil, fmt.Errorf("unknown document kind %q", kind)
	}
}

// NewTask returns a pending task with every list initialized, stamped
// with now.
func NewTask(id, title string, priority Priority, now time.Time) Task {
	return Task{
		ID:       id,
		Title:    title,
		Priority: priority,
		Status:   StatusPending,
		FileStructureChanges: FileStructureChanges{
			NewFiles:      []string{},
			ModifiedFiles: []string{},
			MovedFiles:    []FileMove{},
		},
		ContextAnalysis: TaskContext{
			WhatExists:   []string{},
			WhatsMissing: []string{},
		},
		ImplementationDetails: ImplementationDetails{
			Files:           []string{},
			Functions:       []string{},
			APIEndpoints:    []string{},
			DatabaseChanges: []string{},
		},
		ImplementationConstraints: []string{},
		ExternalDependencies:      []string{},
		IntegrationPoints:         []string{},
		AcceptanceCriteria:        []string{},
		OutOfScope:                []string{},
		Dependencies:              []string{},
		CreatedDate:               Timestamp(now),
		UpdatedDate:               Timestamp(now),
	}
}
