// Command graphlint validates advisor data files before deployment: the
// prerequisite catalog JSON and the institution ruleset YAML. It reports
// schema violations, cycles and referential problems without starting
// the API.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/uninav/advisor-api/internal/planner"
	"github.com/uninav/advisor-api/internal/transcript"
)

type issue struct {
	Level   string
	Source  string
	Message string
}

func main() {
	var (
		graphPath   string
		rulesetPath string
	)

	flag.StringVar(&graphPath, "graph", "", "Path to prerequisite graph JSON")
	flag.StringVar(&rulesetPath, "ruleset", "", "Path to institution ruleset YAML")
	flag.Parse()

	if graphPath == "" && rulesetPath == "" {
		log.Fatal("nothing to check: pass -graph and/or -ruleset")
	}

	var issues []issue

	var rules *transcript.Ruleset
	if rulesetPath != "" {
		loaded, rulesetIssues := lintRuleset(rulesetPath)
		rules = loaded
		issues = append(issues, rulesetIssues...)
	}

	if graphPath != "" {
		issues = append(issues, lintGraph(graphPath, rules)...)
	}

	errors := printReport(issues)
	if errors > 0 {
		os.Exit(1)
	}
}

func lintRuleset(path string) (*transcript.Ruleset, []issue) {
	rules, err := transcript.LoadRuleset(path)
	if err != nil {
		return nil, []issue{{Level: "ERROR", Source: "ruleset", Message: err.Error()}}
	}

	var issues []issue
	completed := make(map[string]struct{}, len(rules.CompletedGrades))
	for _, grade := range rules.CompletedGrades {
		completed[strings.ToUpper(grade)] = struct{}{}
	}
	for _, grade := range rules.RecordedGrades {
		if _, ok := completed[strings.ToUpper(grade)]; ok {
			issues = append(issues, issue{
				Level:   "ERROR",
				Source:  "ruleset",
				Message: fmt.Sprintf("grade %q appears in both completed_grades and recorded_grades", grade),
			})
		}
	}
	return rules, issues
}

func lintGraph(path string, rules *transcript.Ruleset) []issue {
	data, err := os.ReadFile(path)
	if err != nil {
		return []issue{{Level: "ERROR", Source: "graph", Message: err.Error()}}
	}
	if err := planner.ValidateGraphDocument(data); err != nil {
		return []issue{{Level: "ERROR", Source: "graph", Message: err.Error()}}
	}

	var issues []issue
	issues = append(issues, lintRawCourses(data)...)

	graph, err := planner.LoadGraph(path)
	if err != nil {
		issues = append(issues, issue{Level: "ERROR", Source: "graph", Message: err.Error()})
		return issues
	}

	for _, code := range graph.Codes() {
		for _, pre := range graph.Prerequisites(code) {
			if _, known := graph.Course(pre); !known {
				issues = append(issues, issue{
					Level:   "WARN",
					Source:  "graph",
					Message: fmt.Sprintf("prerequisite %s of %s is not in the catalog and will be treated as satisfied", pre, code),
				})
			}
		}
		if rules != nil {
			if prefix := departmentPrefix(code); prefix != "" {
				if _, ok := rules.Departments[prefix]; !ok {
					issues = append(issues, issue{
						Level:   "WARN",
						Source:  "graph",
						Message: fmt.Sprintf("department %s of course %s is not mapped in the ruleset, courses will land in UNCATEGORIZED", prefix, code),
					})
				}
			}
		}
	}
	return issues
}

// lintRawCourses inspects the document before canonicalization, which
// silently drops duplicates and self-references during graph construction.
func lintRawCourses(data []byte) []issue {
	var doc struct {
		Courses []struct {
			Code          string   `json:"code"`
			Prerequisites []string `json:"prerequisites"`
		} `json:"courses"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return []issue{{Level: "ERROR", Source: "graph", Message: fmt.Sprintf("parse graph file: %v", err)}}
	}

	var issues []issue
	seen := make(map[string]struct{}, len(doc.Courses))
	for _, course := range doc.Courses {
		code := normalizeCode(course.Code)
		if _, dup := seen[code]; dup {
			issues = append(issues, issue{
				Level:   "WARN",
				Source:  "graph",
				Message: fmt.Sprintf("course %s is defined more than once, only the first entry is kept", code),
			})
		}
		seen[code] = struct{}{}

		for _, pre := range course.Prerequisites {
			if normalizeCode(pre) == code {
				issues = append(issues, issue{
					Level:   "WARN",
					Source:  "graph",
					Message: fmt.Sprintf("course %s lists itself as a prerequisite, the edge is ignored", code),
				})
			}
		}
	}
	return issues
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.Join(strings.Fields(code), ""))
}

// departmentPrefix returns the leading letters of a course code, e.g.
// COSC for COSC111.
func departmentPrefix(code string) string {
	for i, r := range code {
		if r >= '0' && r <= '9' {
			return code[:i]
		}
	}
	return code
}

func printReport(issues []issue) int {
	fmt.Println("Graph Lint Report")
	fmt.Println("=================")

	var errors, warnings int
	for _, is := range issues {
		fmt.Printf("[%s] %s: %s\n", is.Level, is.Source, is.Message)
		if is.Level == "ERROR" {
			errors++
		} else {
			warnings++
		}
	}
	if len(issues) == 0 {
		fmt.Println("No problems found")
	}

	fmt.Printf("Errors: %d, Warnings: %d\n", errors, warnings)
	return errors
}
