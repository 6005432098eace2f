package planner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGraphCanonicalizesCodes(t *testing.T) {
	g := NewGraph([]GraphCourse{
		{Code: "cosc 111"},
		{Code: "COSC111", Title: "duplicate entry"},
		{Code: "COSC211", Prerequisites: []string{"cosc 111", "COSC211"}},
		{Code: "  "},
	})

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"COSC111", "COSC211"}, g.Codes())

	course, ok := g.Course("COSC111")
	require.True(t, ok)
	assert.Empty(t, course.Title, "first entry wins on duplicate codes")

	assert.Equal(t, []string{"COSC111"}, g.Prerequisites("COSC211"), "self edges are dropped")
	assert.Empty(t, g.Prerequisites("MATH120"))
}

func TestFindCycleAcyclic(t *testing.T) {
	g := NewGraph([]GraphCourse{
		{Code: "COSC111"},
		{Code: "COSC112", Prerequisites: []string{"COSC111"}},
		{Code: "COSC211", Prerequisites: []string{"COSC112"}},
	})
	assert.Nil(t, g.FindCycle())
}

func TestFindCycleDetectsCycle(t *testing.T) {
	g := NewGraph([]GraphCourse{
		{Code: "COSC211", Prerequisites: []string{"COSC311"}},
		{Code: "COSC311", Prerequisites: []string{"COSC211"}},
	})

	cycle := g.FindCycle()
	require.NotNil(t, cycle)
	assert.Contains(t, cycle, "COSC211")
	assert.Contains(t, cycle, "COSC311")
	assert.Equal(t, cycle[0], cycle[len(cycle)-1], "cycle path closes on itself")
}

func TestFindCycleIgnoresUnknownPrereqs(t *testing.T) {
	g := NewGraph([]GraphCourse{
		{Code: "PHYS301", Prerequisites: []string{"PHYS100"}},
	})
	assert.Nil(t, g.FindCycle())
}

func writeGraphFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadGraph(t *testing.T) {
	path := writeGraphFile(t, `{
  "courses": [
    {"code": "COSC111", "title": "Introduction to Programming", "credits": 3, "category": "MAJOR_CORE"},
    {"code": "COSC211", "credits": 3, "prerequisites": ["COSC111"]}
  ]
}`)

	g, err := LoadGraph(path)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"COSC111"}, g.Prerequisites("COSC211"))
}

func TestLoadGraphRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing courses", body: `{}`},
		{name: "unknown field", body: `{"courses": [{"code": "COSC111", "semester": 1}]}`},
		{name: "bad category", body: `{"courses": [{"code": "COSC111", "category": "CORE"}]}`},
		{name: "negative credits", body: `{"courses": [{"code": "COSC111", "credits": -1}]}`},
		{name: "not json", body: `courses:`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadGraph(writeGraphFile(t, tt.body))
			require.Error(t, err)
		})
	}
}

func TestLoadGraphRejectsCycles(t *testing.T) {
	path := writeGraphFile(t, `{
  "courses": [
    {"code": "COSC211", "prerequisites": ["COSC311"]},
    {"code": "COSC311", "prerequisites": ["COSC211"]}
  ]
}`)

	_, err := LoadGraph(path)
	require.Error(t, err)
	assert.True(t, IsCyclicPrerequisites(err))
}

func TestLoadGraphMissingFile(t *testing.T) {
	_, err := LoadGraph(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestValidateGraphDocument(t *testing.T) {
	assert.NoError(t, ValidateGraphDocument([]byte(`{"courses": []}`)))
	assert.Error(t, ValidateGraphDocument([]byte(`{"courses": [{"title": "no code"}]}`)))
}
