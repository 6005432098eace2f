package transcript

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/uninav/advisor-api/internal/models"
)

// Ruleset is the institution-specific vocabulary driving recognition:
// known department prefixes, section-header aliases, the grade alphabet and
// status markers, plus program-level defaults. A Ruleset is immutable after
// construction so several institutions' rule sets can coexist in one
// process.
type Ruleset struct {
	Departments          map[string]models.RequirementCategory `yaml:"departments"`
	CategoryHeaders      map[string]models.RequirementCategory `yaml:"category_headers"`
	CompletedGrades      []string                              `yaml:"completed_grades"`
	RecordedGrades       []string                              `yaml:"recorded_grades"`
	CompletionMarkers    []string                              `yaml:"completion_markers"`
	InProgressMarkers    []string                              `yaml:"in_progress_markers"`
	CreditsRequired      float64                               `yaml:"credits_required"`
	CreditTolerance      float64                               `yaml:"credit_tolerance"`
	DefaultCourseCredits float64                               `yaml:"default_course_credits"`

	completedSet map[string]struct{}
	recordedSet  map[string]struct{}
	gradeRe      *regexp.Regexp
}

// DefaultRuleset returns the built-in rule set used when no institution
// file is configured.
func DefaultRuleset() *Ruleset {
	r := &Ruleset{
		Departments: map[string]models.RequirementCategory{
			"COSC": models.CategoryMajorCore,
			"CSCI": models.CategoryMajorCore,
			"CS":   models.CategoryMajorCore,
			"SENG": models.CategoryMajorCore,
			"MATH": models.CategoryRequiredMath,
			"STAT": models.CategoryRequiredMath,
			"PHYS": models.CategoryRequiredScience,
			"CHEM": models.CategoryRequiredScience,
			"BIOL": models.CategoryRequiredScience,
			"ENGL": models.CategoryGeneralEducation,
			"HIST": models.CategoryGeneralEducation,
			"PHIL": models.CategoryGeneralEducation,
			"PSYC": models.CategoryGeneralEducation,
			"SOCI": models.CategoryGeneralEducation,
			"ECON": models.CategorySupporting,
			"ACCT": models.CategorySupporting,
			"BUSI": models.CategorySupporting,
			"ARTS": models.CategoryFreeElective,
			"MUSC": models.CategoryFreeElective,
			"PHED": models.CategoryFreeElective,
		},
		CategoryHeaders: map[string]models.RequirementCategory{
			"major core":            models.CategoryMajorCore,
			"core requirements":     models.CategoryMajorCore,
			"major requirements":    models.CategoryMajorCore,
			"computer science core": models.CategoryMajorCore,
			"major electives":       models.CategoryMajorElective,
			"technical electives":   models.CategoryMajorElective,
			"required math":         models.CategoryRequiredMath,
			"mathematics":           models.CategoryRequiredMath,
			"math requirements":     models.CategoryRequiredMath,
			"required science":      models.CategoryRequiredScience,
			"science requirements":  models.CategoryRequiredScience,
			"natural sciences":      models.CategoryRequiredScience,
			"general education":     models.CategoryGeneralEducation,
			"gen ed":                models.CategoryGeneralEducation,
			"core curriculum":       models.CategoryGeneralEducation,
			"supporting courses":    models.CategorySupporting,
			"support courses":       models.CategorySupporting,
			"electives":             models.CategoryFreeElective,
			"free electives":        models.CategoryFreeElective,
		},
		CompletedGrades: []string{
			"A+", "A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "D-",
			"P", "S", "CR", "T", "TR",
		},
		RecordedGrades: []string{
			"F", "W", "WF", "I", "U", "NC", "AU",
		},
		CompletionMarkers: []string{
			"complete", "completed", "passed", "done", "✓", "✔",
		},
		InProgressMarkers: []string{
			"ip", "in progress", "in-progress", "registered", "enrolled", "current",
		},
		CreditsRequired:      120,
		CreditTolerance:      6,
		DefaultCourseCredits: 3,
	}
	r.compile()
	return r
}

// LoadRuleset reads an institution rule set from a YAML file, layering the
// file's values over the built-in defaults.
func LoadRuleset(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ruleset file: %w", err)
	}

	loaded := &Ruleset{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parse ruleset file: %w", err)
	}

	r := DefaultRuleset()
	if len(loaded.Departments) > 0 {
		r.Departments = upperKeys(loaded.Departments)
	}
	if len(loaded.CategoryHeaders) > 0 {
		r.CategoryHeaders = lowerKeys(loaded.CategoryHeaders)
	}
	if len(loaded.CompletedGrades) > 0 {
		r.CompletedGrades = loaded.CompletedGrades
	}
	if len(loaded.RecordedGrades) > 0 {
		r.RecordedGrades = loaded.RecordedGrades
	}
	if len(loaded.CompletionMarkers) > 0 {
		r.CompletionMarkers = loaded.CompletionMarkers
	}
	if len(loaded.InProgressMarkers) > 0 {
		r.InProgressMarkers = loaded.InProgressMarkers
	}
	if loaded.CreditsRequired > 0 {
		r.CreditsRequired = loaded.CreditsRequired
	}
	if loaded.CreditTolerance > 0 {
		r.CreditTolerance = loaded.CreditTolerance
	}
	if loaded.DefaultCourseCredits > 0 {
		r.DefaultCourseCredits = loaded.DefaultCourseCredits
	}
	r.compile()

	return r, nil
}

// compile precomputes lookup sets and the grade token expression.
func (r *Ruleset) compile() {
	r.completedSet = make(map[string]struct{}, len(r.CompletedGrades))
	for _, g := range r.CompletedGrades {
		r.completedSet[strings.ToUpper(g)] = struct{}{}
	}
	r.recordedSet = make(map[string]struct{}, len(r.RecordedGrades))
	for _, g := range r.RecordedGrades {
		r.recordedSet[strings.ToUpper(g)] = struct{}{}
	}

	tokens := make([]string, 0, len(r.CompletedGrades)+len(r.RecordedGrades))
	for _, g := range r.CompletedGrades {
		tokens = append(tokens, strings.ToUpper(g))
	}
	for _, g := range r.RecordedGrades {
		tokens = append(tokens, strings.ToUpper(g))
	}
	// Longer tokens first so "A-" wins over "A".
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
	escaped := make([]string, len(tokens))
	for i, t := range tokens {
		escaped[i] = regexp.QuoteMeta(t)
	}
	r.gradeRe = regexp.MustCompile(`(^|[\s:|])(` + strings.Join(escaped, "|") + `)([\s,;|)]|$)`)
}

// KnownDepartment reports whether the prefix is in the department whitelist.
func (r *Ruleset) KnownDepartment(prefix string) bool {
	_, ok := r.Departments[strings.ToUpper(prefix)]
	return ok
}

// CategoryForDepartment resolves the fallback category of a department code.
func (r *Ruleset) CategoryForDepartment(prefix string) (models.RequirementCategory, bool) {
	cat, ok := r.Departments[strings.ToUpper(prefix)]
	return cat, ok
}

// CategoryForHeader resolves a section-header text against the alias table.
// Matching is case-insensitive and tolerates decoration around the alias.
func (r *Ruleset) CategoryForHeader(header string) (models.RequirementCategory, bool) {
	normalized := strings.ToLower(strings.TrimSpace(header))
	normalized = strings.Trim(normalized, ":-–— \t")
	if normalized == "" {
		return "", false
	}
	if cat, ok := r.CategoryHeaders[normalized]; ok {
		return cat, true
	}
	for alias, cat := range r.CategoryHeaders {
		if strings.Contains(normalized, alias) {
			return cat, true
		}
	}
	return "", false
}

// IsCompletedGrade reports whether the token records a completion.
func (r *Ruleset) IsCompletedGrade(token string) bool {
	_, ok := r.completedSet[strings.ToUpper(strings.TrimSpace(token))]
	return ok
}

// IsRecordedGrade reports whether the token is any known grade, including
// non-completing outcomes such as F or W.
func (r *Ruleset) IsRecordedGrade(token string) bool {
	upper := strings.ToUpper(strings.TrimSpace(token))
	if _, ok := r.completedSet[upper]; ok {
		return true
	}
	_, ok := r.recordedSet[upper]
	return ok
}

// FindGradeToken returns the first grade token present in the text.
func (r *Ruleset) FindGradeToken(text string) (string, bool) {
	m := r.gradeRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[2], true
}

// HasCompletionMarker reports whether the line carries an explicit
// completion marker.
func (r *Ruleset) HasCompletionMarker(line string) bool {
	return containsAnyFold(line, r.CompletionMarkers)
}

// HasInProgressMarker reports whether the line carries an explicit
// in-progress or registered marker.
func (r *Ruleset) HasInProgressMarker(line string) bool {
	return containsAnyFold(line, r.InProgressMarkers)
}

func containsAnyFold(line string, markers []string) bool {
	lower := strings.ToLower(line)
	for _, marker := range markers {
		m := strings.ToLower(marker)
		idx := strings.Index(lower, m)
		if idx < 0 {
			continue
		}
		if isWordLike(m) && !standaloneAt(lower, idx, len(m)) {
			continue
		}
		return true
	}
	return false
}

func isWordLike(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != ' ' && r != '-' {
			return false
		}
	}
	return true
}

func standaloneAt(s string, idx, length int) bool {
	before := idx == 0 || !isAlphanumeric(s[idx-1])
	afterIdx := idx + length
	after := afterIdx >= len(s) || !isAlphanumeric(s[afterIdx])
	return before && after
}

func isAlphanumeric(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func upperKeys(in map[string]models.RequirementCategory) map[string]models.RequirementCategory {
	out := make(map[string]models.RequirementCategory, len(in))
	for k, v := range in {
		out[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return out
}

func lowerKeys(in map[string]models.RequirementCategory) map[string]models.RequirementCategory {
	out := make(map[string]models.RequirementCategory, len(in))
	for k, v := range in {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}
