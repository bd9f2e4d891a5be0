package store

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/codeloops-go/internal/planning"
)

// looseDocuments are valid for the structural validator but carry fields
// the Go types do not model or model with a different JSON type.
var looseDocuments = []struct {
	kind planning.Kind
	json string
}{
	{
		kind: planning.KindProblem,
		json: `{
  "owner": "alice",
  "metadata": {"created": "2024-01-01", "version": "", "featureName": "old", "reviewer": "bob"},
  "problemStatement": "Users abandon carts",
  "why": "",
  "successCriteria": ["conversion +5%", 7],
  "constraints": {"technical": [], "business": "none", "extra": {"budget": 10}},
  "users": [{"persona": "shopper", "goals": "pay", "age": 30}]
}`,
	},
	{
		kind: planning.KindTechnical,
		json: `{
  "metadata": {},
  "technologyStack": {"language": "Go", "dependencies": {"chi": "v5"}},
  "dataModels": [{"name": "Cart", "schema": {"type": "object"}, "relationships": null}],
  "apiEndpoints": [{"method": "FETCH", "path": "/cart", "auth": true}],
  "architecture": {"components": [], "patterns": "hexagonal", "layers": 3},
  "security": {},
  "rollout": "canary"
}`,
	},
	{
		kind: planning.KindTasks,
		json: `{
  "metadata": {"created": "", "updated": "yesterday"},
  "contextAnalysis": {"codebasePatterns": "repo", "extra": [1, 2]},
  "tasks": [
    {"id": "T1", "title": "Cart", "priority": 1, "status": "doing", "createdDate": "", "updatedDate": null, "owner": "alice"},
    {"id": 2, "priority": "high", "estimatedHours": "4"}
  ],
  "dependencies": [{"taskId": "T2", "dependsOn": "T1"}],
  "milestones": []
}`,
	},
}

// withoutStamp decodes a stored document, dropping the two metadata
// fields every write sets.
func withoutStamp(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	if meta, ok := doc["metadata"].(map[string]any); ok {
		delete(meta, "updated")
		delete(meta, "featureName")
	}
	return doc
}

func TestWriteKeepsEveryField(t *testing.T) {
	for _, tt := range looseDocuments {
		t.Run(string(tt.kind), func(t *testing.T) {
			s, fsys := newTestStore(t)

			doc, err := planning.ParseRaw([]byte(tt.json))
			require.NoError(t, err)
			require.NoError(t, s.Write("checkout", tt.kind, doc))

			path := filepath.Join(testRoot, "checkout", string(tt.kind)+".json")
			stored, err := afero.ReadFile(fsys, path)
			require.NoError(t, err)
			assert.Equal(t, withoutStamp(t, []byte(tt.json)), withoutStamp(t, stored))

			var full map[string]any
			require.NoError(t, json.Unmarshal(stored, &full))
			meta := full["metadata"].(map[string]any)
			assert.Equal(t, "2024-03-05T14:07:09.123Z", meta["updated"])
			assert.Equal(t, "checkout", meta["featureName"])

			got, err := s.Read("checkout", tt.kind)
			require.NoError(t, err)
			out, err := json.Marshal(got)
			require.NoError(t, err)
			assert.Equal(t, withoutStamp(t, stored), withoutStamp(t, out))
		})
	}
}

func TestWriteKeepsKeyOrder(t *testing.T) {
	s, fsys := newTestStore(t)

	doc, err := planning.ParseRaw([]byte(looseDocuments[0].json))
	require.NoError(t, err)
	require.NoError(t, s.Write("checkout", planning.KindProblem, doc))

	stored, err := afero.ReadFile(fsys, filepath.Join(testRoot, "checkout", "problem.json"))
	require.NoError(t, err)
	text := string(stored)
	assert.Less(t, strings.Index(text, `"owner"`), strings.Index(text, `"metadata"`))
	assert.Less(t, strings.Index(text, `"problemStatement"`), strings.Index(text, `"users"`))
}

func TestTypedReadersAcceptLooseDocuments(t *testing.T) {
	s, fsys := newTestStore(t)
	for _, tt := range looseDocuments {
		writeRaw(t, fsys, filepath.Join(testRoot, "checkout", string(tt.kind)+".json"), tt.json)
	}

	p, err := s.ReadProblemDefinition("checkout")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "2024-01-01", p.Metadata.Created)
	assert.Equal(t, "Users abandon carts", p.ProblemStatement)

	ta, err := s.ReadTechnicalApproach("checkout")
	require.NoError(t, err)
	require.NotNil(t, ta)
	assert.Equal(t, "Go", ta.TechnologyStack.Language)

	tb, err := s.ReadTaskBreakdown("checkout")
	require.NoError(t, err)
	require.NotNil(t, tb)
	require.Len(t, tb.Tasks, 2)
	assert.Equal(t, "T1", tb.Tasks[0].ID)
	assert.Empty(t, tb.Tasks[0].CreatedDate)
	assert.Equal(t, "repo", tb.ContextAnalysis.CodebasePatterns)

	doc, err := s.ReadDocument("checkout", planning.KindTasks)
	require.NoError(t, err)
	assert.NotNil(t, doc)
}

func TestCreateOrUpdateKeepsUntouchedUnknownKeys(t *testing.T) {
	s, fsys := newTestStore(t)
	path := filepath.Join(testRoot, "checkout", "problem.json")
	writeRaw(t, fsys, path, looseDocuments[0].json)

	_, err := s.CreateOrUpdateProblemDefinition("checkout", planning.Update{"why": "revenue"})
	require.NoError(t, err)

	stored, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	got := withoutStamp(t, stored)
	want := withoutStamp(t, []byte(looseDocuments[0].json))
	want["why"] = "revenue"
	assert.Equal(t, want, got)

	assert.Equal(t, "alice", got["owner"])
	constraints := got["constraints"].(map[string]any)
	assert.Equal(t, map[string]any{"budget": float64(10)}, constraints["extra"])
	meta := got["metadata"].(map[string]any)
	assert.Equal(t, "2024-01-01", meta["created"])
	assert.Equal(t, "bob", meta["reviewer"])
}

func TestCreateOrUpdateDoesNotInventMetadata(t *testing.T) {
	s, fsys := newTestStore(t)
	path := filepath.Join(testRoot, "checkout", "technical.json")
	writeRaw(t, fsys, path, `{"metadata": {}, "technologyStack": {}, "dataModels": [], "apiEndpoints": [], "architecture": {}, "security": {}}`)

	_, err := s.CreateOrUpdate("checkout", planning.KindTechnical, planning.Update{"security": map[string]any{"authentication": "oidc"}})
	require.NoError(t, err)

	stored, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(stored, &doc))
	assert.Equal(t, map[string]any{
		"updated":     "2024-03-05T14:07:09.123Z",
		"featureName": "checkout",
	}, doc["metadata"])
}

func TestCreateOrUpdateReturnsStoredDocument(t *testing.T) {
	s, fsys := newTestStore(t)

	doc, err := s.CreateOrUpdate("checkout", planning.KindTasks, planning.Update{"notes": "kept"})
	require.NoError(t, err)
	out, err := json.Marshal(doc)
	require.NoError(t, err)

	stored, err := afero.ReadFile(fsys, filepath.Join(testRoot, "checkout", "tasks.json"))
	require.NoError(t, err)
	assert.JSONEq(t, string(stored), string(out))
	assert.Contains(t, string(stored), `"notes": "kept"`)
}
