package planning

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateDeep(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		doc       func() Document
		wantField string
	}{
		{
			name:      "bad priority",
			wantField: "tasks[0].priority",
			doc: func() Document {
				tb := NewTaskTemplate("f", now)
				task := NewTask("T1", "t", PriorityP0, now)
				task.Priority = "P9"
				tb.Tasks = []Task{task}
				return tb
			},
		},
		{
			name:      "bad status",
			wantField: "tasks[0].status",
			doc: func() Document {
				tb := NewTaskTemplate("f", now)
				task := NewTask("T1", "t", PriorityP0, now)
				task.Status = "doing"
				tb.Tasks = []Task{task}
				return tb
			},
		},
		{
			name:      "negative estimate",
			wantField: "tasks[0].estimatedHours",
			doc: func() Document {
				tb := NewTaskTemplate("f", now)
				task := NewTask("T1", "t", PriorityP1, now)
				task.EstimatedHours = -1
				tb.Tasks = []Task{task}
				return tb
			},
		},
		{
			name:      "dependency without task id",
			wantField: "dependencies[0].taskId",
			doc: func() Document {
				tb := NewTaskTemplate("f", now)
				tb.Dependencies = []TaskDependency{{DependsOn: []string{"T1"}}}
				return tb
			},
		},
		{
			name:      "bad endpoint method",
			wantField: "architecture.apiEndpoints[0].method",
			doc: func() Document {
				ta := NewTechnicalTemplate("f", now)
				ta.Architecture.APIEndpoints = []APIEndpoint{{Method: "FETCH", Path: "/cart"}}
				return ta
			},
		},
		{
			name:      "persona without label",
			wantField: "users[0].persona",
			doc: func() Document {
				p := NewProblemTemplate("f", now)
				p.Users = []UserPersona{{Goals: []string{"buy"}}}
				return p
			},
		},
		{
			name:      "missing metadata",
			wantField: "metadata",
			doc: func() Document {
				p := NewProblemTemplate("f", now)
				p.Metadata = nil
				return p
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDeep(tt.doc())
			if err == nil {
				t.Fatal("expected deep validation error")
			}
			var de *DeepValidationError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DeepValidationError, got %T: %v", err, err)
			}
			found := false
			for _, p := range de.Problems {
				if p.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected problem at %s, got %v", tt.wantField, de.Problems)
			}
		})
	}
}

func TestValidateDeepAcceptsTemplates(t *testing.T) {
	now := time.Now()
	for _, doc := range []Document{
		NewProblemTemplate("f", now),
		NewTechnicalTemplate("f", now),
		NewTaskTemplate("f", now),
	} {
		if err := ValidateDeep(doc); err != nil {
			t.Errorf("%s: %v", doc.Kind(), err)
		}
	}
}

func TestValidateDeepNil(t *testing.T) {
	var tb *TaskBreakdown
	if err := ValidateDeep(tb); err == nil {
		t.Error("expected error for nil document")
	}
}

func TestDeepValidationErrorMessage(t *testing.T) {
	err := &DeepValidationError{
		Kind: KindTasks,
		Problems: []FieldProblem{
			{Field: "tasks[0].priority", Rule: "oneof", Param: "P0 P1 P2", Value: "P9"},
			{Field: "tasks[1].id", Rule: "required"},
		},
	}
	msg := err.Error()
	if !strings.Contains(msg, "task breakdown failed deep validation") {
		t.Errorf("unexpected message: %s", msg)
	}
	if !strings.Contains(msg, "tasks[0].priority must be one of [P0 P1 P2], got P9") {
		t.Errorf("missing oneof detail: %s", msg)
	}
	if !strings.Contains(msg, "tasks[1].id is required") {
		t.Errorf("missing required detail: %s", msg)
	}
}

func TestValidateDeepRawReportsTypeMismatch(t *testing.T) {
	r, err := ParseRaw([]byte(`{
		"metadata": {"created": "", "updated": "", "version": "1.0.0", "featureName": "f"},
		"contextAnalysis": {},
		"tasks": [{"id": "T1", "title": "t", "priority": 1, "status": "pending"}],
		"dependencies": []
	}`))
	if err != nil {
		t.Fatal(err)
	}

	err = ValidateDeepRaw(KindTasks, r)
	var de *DeepValidationError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DeepValidationError, got %v", err)
	}
	var found bool
	for _, p := range de.Problems {
		if p.Rule == "type" && strings.HasSuffix(p.Field, "priority") && p.Value == "number" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a type problem for priority, got %v", de.Problems)
	}
	if !strings.Contains(de.Error(), "must be a string, got number") {
		t.Errorf("unexpected message: %s", de.Error())
	}
}

func TestValidateDeepRawAcceptsTemplates(t *testing.T) {
	now := time.Now()
	for _, kind := range []Kind{KindProblem, KindTechnical, KindTasks} {
		doc, err := NewTemplate(kind, "f", now)
		if err != nil {
			t.Fatal(err)
		}
		r, err := RawOf(doc)
		if err != nil {
			t.Fatal(err)
		}
		if err := ValidateDeepRaw(kind, r); err != nil {
			t.Errorf("%s: %v", kind, err)
		}
	}
	if err := ValidateDeepRaw(KindTasks, nil); err == nil {
		t.Error("expected error for nil document")
	}
}
