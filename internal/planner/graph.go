package planner

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/uninav/advisor-api/internal/models"
)

// GraphCourse is one catalog entry in the prerequisite graph. Title,
// credits and category are optional enrichment; only the code and its
// prerequisite edges drive availability.
type GraphCourse struct {
	Code          string                     `json:"code"`
	Title         string                     `json:"title,omitempty"`
	Credits       float64                    `json:"credits,omitempty"`
	Category      models.RequirementCategory `json:"category,omitempty"`
	Prerequisites []string                   `json:"prerequisites,omitempty"`
}

type graphDocument struct {
	Courses []GraphCourse `json:"courses"`
}

// PrerequisiteGraph is the static course catalog with prerequisite edges.
// It is read-only after construction; the planner never mutates it.
type PrerequisiteGraph struct {
	courses map[string]GraphCourse
	codes   []string
}

// NewGraph builds a graph from catalog entries. Codes are canonicalized to
// upper case; a repeated code keeps its first entry. Acyclicity is NOT
// enforced here, callers that load external data use LoadGraph or run
// FindCycle themselves.
func NewGraph(courses []GraphCourse) *PrerequisiteGraph {
	g := &PrerequisiteGraph{courses: make(map[string]GraphCourse, len(courses))}
	for _, course := range courses {
		code := canonicalCode(course.Code)
		if code == "" {
			continue
		}
		if _, ok := g.courses[code]; ok {
			continue
		}
		course.Code = code
		prereqs := make([]string, 0, len(course.Prerequisites))
		for _, pre := range course.Prerequisites {
			if p := canonicalCode(pre); p != "" && p != code {
				prereqs = append(prereqs, p)
			}
		}
		sort.Strings(prereqs)
		course.Prerequisites = prereqs
		g.courses[code] = course
		g.codes = append(g.codes, code)
	}
	sort.Strings(g.codes)
	return g
}

const graphSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Prerequisite graph",
  "type": "object",
  "required": ["courses"],
  "additionalProperties": false,
  "properties": {
    "courses": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["code"],
        "additionalProperties": false,
        "properties": {
          "code": {"type": "string", "minLength": 4},
          "title": {"type": "string"},
          "credits": {"type": "number", "minimum": 0},
          "category": {
            "type": "string",
            "enum": [
              "MAJOR_CORE", "MAJOR_ELECTIVE", "REQUIRED_MATH",
              "REQUIRED_SCIENCE", "GENERAL_EDUCATION", "SUPPORTING",
              "FREE_ELECTIVE", "UNCATEGORIZED"
            ]
          },
          "prerequisites": {"type": "array", "items": {"type": "string", "minLength": 4}}
        }
      }
    }
  }
}`

var compiledGraphSchema = jsonschema.MustCompileString("prerequisite_graph.schema.json", graphSchema)

// ValidateGraphDocument checks raw graph JSON against the embedded schema.
func ValidateGraphDocument(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse graph file: %w", err)
	}
	if err := compiledGraphSchema.Validate(doc); err != nil {
		return fmt.Errorf("graph file does not match schema: %w", err)
	}
	return nil
}

// LoadGraph reads a prerequisite graph from a JSON file, validates it
// against the schema and rejects cyclic data outright.
func LoadGraph(path string) (*PrerequisiteGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}
	if err := ValidateGraphDocument(data); err != nil {
		return nil, err
	}

	var doc graphDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse graph file: %w", err)
	}

	g := NewGraph(doc.Courses)
	if cycle := g.FindCycle(); cycle != nil {
		return nil, cyclicPrerequisitesError(cycle)
	}
	return g, nil
}

// Course looks up a catalog entry by code.
func (g *PrerequisiteGraph) Course(code string) (GraphCourse, bool) {
	course, ok := g.courses[canonicalCode(code)]
	return course, ok
}

// Prerequisites returns the prerequisite codes of a course, empty when the
// course is unknown or has none.
func (g *PrerequisiteGraph) Prerequisites(code string) []string {
	return g.courses[canonicalCode(code)].Prerequisites
}

// Codes returns every catalog code in sorted order.
func (g *PrerequisiteGraph) Codes() []string {
	return append([]string(nil), g.codes...)
}

// Len reports the number of catalog entries.
func (g *PrerequisiteGraph) Len() int { return len(g.codes) }

// FindCycle returns one prerequisite cycle as a code path, or nil when the
// graph is acyclic. Traversal order is deterministic. Edges pointing at
// codes outside the catalog are treated as satisfied leaves.
func (g *PrerequisiteGraph) FindCycle() []string {
	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[string]int, len(g.codes))
	var stack []string
	var cycle []string

	var visit func(code string) bool
	visit = func(code string) bool {
		state[code] = visiting
		stack = append(stack, code)

		for _, pre := range g.courses[code].Prerequisites {
			if _, known := g.courses[pre]; !known {
				continue
			}
			switch state[pre] {
			case visiting:
				start := 0
				for i, c := range stack {
					if c == pre {
						start = i
						break
					}
				}
				cycle = append(append([]string(nil), stack[start:]...), pre)
				return true
			case unvisited:
				if visit(pre) {
					return true
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[code] = done
		return false
	}

	for _, code := range g.codes {
		if state[code] == unvisited && visit(code) {
			return cycle
		}
	}
	return nil
}

func canonicalCode(code string) string {
	return strings.ToUpper(strings.Join(strings.Fields(code), ""))
}
