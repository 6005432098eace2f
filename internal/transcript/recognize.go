package transcript

import (
	"regexp"
	"strconv"
	"strings"
)

// courseLine is one recognized course line item before classification.
type courseLine struct {
	LineNo              int
	Code                string
	Title               string
	Credits             float64
	CreditsFound        bool
	Grade               string
	Term                string
	HasCompletionMarker bool
	HasInProgressMarker bool
	Header              string
}

// sectionHeader is a candidate category label captured from the document.
type sectionHeader struct {
	LineNo int
	Text   string
}

type studentFields struct {
	Name    string
	ID      string
	Major   string
	Advisor string
}

type summaryFields struct {
	GPA              *float64
	CreditsEarned    *float64
	CreditsRequired  *float64
	CurrentTermLabel string
}

// recognizedDocument is the structured output of the recognition pass.
type recognizedDocument struct {
	Student   studentFields
	Summary   summaryFields
	Headers   []sectionHeader
	Courses   []courseLine
	termsSeen []Term
}

// CurrentTerm resolves the document's current term: a caller override wins,
// then an explicit current-term field, then the latest term label found.
func (d *recognizedDocument) CurrentTerm(override string) *Term {
	if override != "" {
		if t, ok := ParseTerm(override); ok {
			return &t
		}
	}
	if d.Summary.CurrentTermLabel != "" {
		if t, ok := ParseTerm(d.Summary.CurrentTermLabel); ok {
			return &t
		}
	}
	if t, ok := LatestTerm(d.termsSeen); ok {
		return &t
	}
	return nil
}

// extractionRule is one named pass over a line. Rules run in a fixed order
// and the first rule that consumes a line wins.
type extractionRule struct {
	name  string
	apply func(*scanState, string, int) bool
}

type scanState struct {
	doc         *recognizedDocument
	rules       *Ruleset
	lastHeader  string
	runningTerm string
}

// recognizer scans extracted text for student fields, summary fields,
// section headers and course line items.
type recognizer struct {
	rules   *Ruleset
	ordered []extractionRule
}

func newRecognizer(rules *Ruleset) *recognizer {
	r := &recognizer{rules: rules}
	r.ordered = []extractionRule{
		{name: "student_field", apply: applyStudentField},
		{name: "summary_field", apply: applySummaryField},
		{name: "term_header", apply: applyTermHeader},
		{name: "course_line", apply: applyCourseLine},
		{name: "section_header", apply: applySectionHeader},
	}
	return r
}

// Recognize runs the ordered rules over every line of the text.
func (r *recognizer) Recognize(text string) *recognizedDocument {
	state := &scanState{doc: &recognizedDocument{}, rules: r.rules}

	for no, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		for _, rule := range r.ordered {
			if rule.apply(state, trimmed, no+1) {
				break
			}
		}
	}

	return state.doc
}

var studentLabels = map[string]string{
	"name":             "name",
	"student name":     "name",
	"student":          "name",
	"student id":       "id",
	"student number":   "id",
	"student no":       "id",
	"id":               "id",
	"sid":              "id",
	"major":            "major",
	"program":          "major",
	"degree program":   "major",
	"field of study":   "major",
	"advisor":          "advisor",
	"academic advisor": "advisor",
	"faculty advisor":  "advisor",
}

func applyStudentField(s *scanState, line string, _ int) bool {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return false
	}

	label := strings.ToLower(strings.TrimSpace(line[:idx]))
	value := strings.TrimSpace(line[idx+1:])
	field, ok := studentLabels[label]
	if !ok || value == "" {
		return false
	}

	switch field {
	case "name":
		if s.doc.Student.Name == "" {
			s.doc.Student.Name = value
		}
	case "id":
		if s.doc.Student.ID == "" {
			s.doc.Student.ID = value
		}
	case "major":
		if s.doc.Student.Major == "" {
			s.doc.Student.Major = value
		}
	case "advisor":
		if s.doc.Student.Advisor == "" {
			s.doc.Student.Advisor = value
		}
	}
	return true
}

var (
	gpaRe             = regexp.MustCompile(`(?i)\b(?:cumulative\s+|overall\s+|current\s+)?gpa\s*[:=]?\s*([0-9]+(?:\.[0-9]+)?)`)
	creditsEarnedRe   = regexp.MustCompile(`(?i)\b(?:total\s+)?credits?\s+(?:completed|earned)\s*[:=]?\s*([0-9]+(?:\.[0-9]+)?)|\bearned\s+credits?\s*[:=]?\s*([0-9]+(?:\.[0-9]+)?)`)
	creditsRequiredRe = regexp.MustCompile(`(?i)\b(?:total\s+)?credits?\s+(?:required|needed)\s*[:=]?\s*([0-9]+(?:\.[0-9]+)?)|\b(?:program|degree|required)\s+credits?\s*[:=]?\s*([0-9]+(?:\.[0-9]+)?)`)
	currentTermRe     = regexp.MustCompile(`(?i)\bcurrent\s+(?:term|semester)\s*[:=]?\s*(.+)$`)
)

func applySummaryField(s *scanState, line string, _ int) bool {
	matched := false

	if m := gpaRe.FindStringSubmatch(line); m != nil && s.doc.Summary.GPA == nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			s.doc.Summary.GPA = &v
			matched = true
		}
	}
	if m := creditsEarnedRe.FindStringSubmatch(line); m != nil && s.doc.Summary.CreditsEarned == nil {
		if v, ok := firstFloat(m[1:]); ok {
			s.doc.Summary.CreditsEarned = &v
			matched = true
		}
	}
	if m := creditsRequiredRe.FindStringSubmatch(line); m != nil && s.doc.Summary.CreditsRequired == nil {
		if v, ok := firstFloat(m[1:]); ok {
			s.doc.Summary.CreditsRequired = &v
			matched = true
		}
	}
	if m := currentTermRe.FindStringSubmatch(line); m != nil && s.doc.Summary.CurrentTermLabel == "" {
		if t, ok := ParseTerm(m[1]); ok {
			s.doc.Summary.CurrentTermLabel = t.String()
			s.doc.termsSeen = append(s.doc.termsSeen, t)
			matched = true
		}
	}

	return matched
}

// applyTermHeader consumes lines that are nothing but a term label, which
// group the course lines that follow them.
func applyTermHeader(s *scanState, line string, _ int) bool {
	loc := termRe.FindStringIndex(line)
	if loc == nil {
		return false
	}

	remainder := line[:loc[0]] + line[loc[1]:]
	remainder = strings.ToLower(remainder)
	for _, word := range []string{"semester", "term", "session"} {
		remainder = strings.ReplaceAll(remainder, word, "")
	}
	for _, r := range remainder {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return false
		}
	}

	t, ok := ParseTerm(line[loc[0]:loc[1]])
	if !ok {
		return false
	}
	s.runningTerm = t.String()
	s.doc.termsSeen = append(s.doc.termsSeen, t)
	return true
}

var (
	courseCodeRe   = regexp.MustCompile(`\b([A-Za-z]{2,5})[ \-]?([0-9]{3,4}[A-Z]?)\b`)
	creditsLabelRe = regexp.MustCompile(`(?i)\b([0-9]+(?:\.[0-9]+)?)\s*(?:credit\s*hours?|credits?|crs?\.?|hrs?|hours)\b`)
	numberTokenRe  = regexp.MustCompile(`\b[0-9]+(?:\.[0-9]+)?\b`)
)

func applyCourseLine(s *scanState, line string, no int) bool {
	code, codeEnd, ok := findCourseCode(s.rules, line)
	if !ok {
		return false
	}

	rest := line[codeEnd:]
	cut := len(rest)

	// Mask the term label before token scans so its year is not mistaken
	// for a credit value.
	termLabel := ""
	if loc := termRe.FindStringIndex(rest); loc != nil {
		if t, parsed := ParseTerm(rest[loc[0]:loc[1]]); parsed {
			termLabel = t.String()
			s.doc.termsSeen = append(s.doc.termsSeen, t)
			rest = rest[:loc[0]] + strings.Repeat(" ", loc[1]-loc[0]) + rest[loc[1]:]
			if loc[0] < cut {
				cut = loc[0]
			}
		}
	}
	if termLabel == "" {
		termLabel = s.runningTerm
	}

	credits := s.rules.DefaultCourseCredits
	creditsFound := false
	creditsAt := -1
	if m := creditsLabelRe.FindStringSubmatchIndex(rest); m != nil {
		if v, err := strconv.ParseFloat(rest[m[2]:m[3]], 64); err == nil {
			credits = v
			creditsFound = true
			creditsAt = m[2]
			if m[2] < cut {
				cut = m[2]
			}
		}
	} else {
		for _, loc := range numberTokenRe.FindAllStringIndex(rest, -1) {
			v, err := strconv.ParseFloat(rest[loc[0]:loc[1]], 64)
			if err != nil || v <= 0 || v > 12 {
				continue
			}
			credits = v
			creditsFound = true
			creditsAt = loc[0]
			if loc[0] < cut {
				cut = loc[0]
			}
			break
		}
	}

	grade, gradeAt := findGrade(s.rules, rest, creditsAt)
	if gradeAt >= 0 && gradeAt < cut {
		cut = gradeAt
	}

	title := strings.Trim(strings.TrimSpace(rest[:cut]), "-–—|•:,.() \t")

	s.doc.Courses = append(s.doc.Courses, courseLine{
		LineNo:              no,
		Code:                code,
		Title:               title,
		Credits:             credits,
		CreditsFound:        creditsFound,
		Grade:               grade,
		Term:                termLabel,
		HasCompletionMarker: s.rules.HasCompletionMarker(line),
		HasInProgressMarker: s.rules.HasInProgressMarker(line),
		Header:              s.lastHeader,
	})
	return true
}

// findGrade locates a grade token in the remainder of a course line.
// Single-letter tokens are only trusted after the credit value; elsewhere
// they are usually title text ("Calculus I", "Programming in C").
func findGrade(rules *Ruleset, rest string, creditsAt int) (string, int) {
	if creditsAt >= 0 {
		if m := rules.gradeRe.FindStringSubmatchIndex(rest[creditsAt:]); m != nil {
			return strings.ToUpper(rest[creditsAt+m[4] : creditsAt+m[5]]), creditsAt + m[4]
		}
		if m := rules.gradeRe.FindStringSubmatchIndex(rest[:creditsAt]); m != nil && m[5]-m[4] > 1 {
			return strings.ToUpper(rest[m[4]:m[5]]), m[4]
		}
		return "", -1
	}

	if m := rules.gradeRe.FindStringSubmatchIndex(rest); m != nil && m[5]-m[4] > 1 {
		return strings.ToUpper(rest[m[4]:m[5]]), m[4]
	}
	return "", -1
}

// findCourseCode returns the first code-like token whose department prefix
// is whitelisted, rejecting stray numbers and unknown prefixes.
func findCourseCode(rules *Ruleset, line string) (string, int, bool) {
	for _, m := range courseCodeRe.FindAllStringSubmatchIndex(line, -1) {
		dept := line[m[2]:m[3]]
		if !rules.KnownDepartment(dept) {
			continue
		}
		number := line[m[4]:m[5]]
		return strings.ToUpper(dept) + number, m[1], true
	}
	return "", 0, false
}

func applySectionHeader(s *scanState, line string, no int) bool {
	if len(strings.Fields(line)) > 8 {
		return false
	}
	letters := 0
	for _, r := range line {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters++
		}
	}
	if letters < 3 {
		return false
	}

	_, recognized := s.rules.CategoryForHeader(line)
	if !recognized && !strings.HasSuffix(line, ":") && !isMostlyUpper(line) {
		return false
	}

	s.lastHeader = strings.TrimSuffix(strings.TrimSpace(line), ":")
	s.doc.Headers = append(s.doc.Headers, sectionHeader{LineNo: no, Text: s.lastHeader})
	return true
}

func isMostlyUpper(line string) bool {
	upper, lower := 0, 0
	for _, r := range line {
		switch {
		case r >= 'A' && r <= 'Z':
			upper++
		case r >= 'a' && r <= 'z':
			lower++
		}
	}
	return upper > 0 && upper >= lower*3
}

func firstFloat(groups []string) (float64, bool) {
	for _, g := range groups {
		if g == "" {
			continue
		}
		if v, err := strconv.ParseFloat(g, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
