package planner

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/uninav/advisor-api/internal/models"
	"github.com/uninav/advisor-api/internal/transcript"
)

// Config carries the program-level planning defaults.
type Config struct {
	// MaxCreditsPerSemester is the default per-semester credit ceiling.
	MaxCreditsPerSemester float64
	// CreditVelocity is the assumed credits completed per semester for
	// graduation estimates.
	CreditVelocity float64
}

// Request is one planning invocation over a single record.
type Request struct {
	// Semesters is the number of semesters to plan. Must be positive.
	Semesters int
	// MaxCredits overrides the configured per-semester ceiling when > 0.
	MaxCredits float64
	// Velocity overrides the configured graduation velocity when > 0.
	Velocity float64
}

// Planner turns one academic record plus the prerequisite graph into a
// prioritized multi-semester plan. A Planner is stateless across calls and
// safe for concurrent use; it never mutates the record or the graph.
type Planner struct {
	graph  *PrerequisiteGraph
	rules  *transcript.Ruleset
	cfg    Config
	logger *zap.Logger
}

// NewPlanner constructs a Planner. A nil graph plans from the record's
// remaining courses alone; the rule set supplies credit defaults and
// department fallback categories for catalog-only courses.
func NewPlanner(graph *PrerequisiteGraph, rules *transcript.Ruleset, cfg Config, logger *zap.Logger) *Planner {
	if graph == nil {
		graph = NewGraph(nil)
	}
	if rules == nil {
		rules = transcript.DefaultRuleset()
	}
	if cfg.MaxCreditsPerSemester <= 0 {
		cfg.MaxCreditsPerSemester = 16
	}
	if cfg.CreditVelocity <= 0 {
		cfg.CreditVelocity = 15
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{graph: graph, rules: rules, cfg: cfg, logger: logger}
}

// Generate produces the multi-semester recommendation plan. Candidates are
// the record's remaining courses plus catalog courses the record has never
// seen. Each semester is filled greedily, High before Medium before Low
// priority, under the credit ceiling; after a semester is filled its
// placements count as completed and availability is re-evaluated, so a
// course unlocked by this semester's picks lands in a later one. Courses
// whose prerequisites stay unmet for the whole horizon come back in the
// blocked list with their missing prerequisites.
func (p *Planner) Generate(record *models.StudentAcademicRecord, req Request) (*models.RecommendationPlan, error) {
	if req.Semesters <= 0 {
		return nil, invalidSemesterCountError(req.Semesters)
	}
	if cycle := p.graph.FindCycle(); cycle != nil {
		return nil, cyclicPrerequisitesError(cycle)
	}

	ceiling := req.MaxCredits
	if ceiling <= 0 {
		ceiling = p.cfg.MaxCreditsPerSemester
	}

	state := p.newPlanState(record)
	current, haveTerm := currentTermOf(record)

	plan := &models.RecommendationPlan{
		RecordID:   record.ID,
		StudentKey: record.StudentKey,
		MaxCredits: ceiling,
		Semesters:  make([]models.PlannedSemester, 0, req.Semesters),
	}
	if haveTerm {
		plan.CurrentTerm = current.String()
	}

	for index := 1; index <= req.Semesters; index++ {
		available := state.available()
		if len(available) == 0 {
			break
		}

		semester := models.PlannedSemester{Index: index}
		if haveTerm {
			semester.Term = current.AddSemesters(index, false).String()
		}

		for _, candidate := range available {
			if semester.Credits+candidate.Credits > ceiling {
				continue
			}
			semester.Courses = append(semester.Courses, models.PlannedCourse{
				Code:      candidate.Code,
				Title:     candidate.Title,
				Credits:   candidate.Credits,
				Priority:  priorityFor(candidate.Category),
				Category:  candidate.Category,
				Rationale: p.rationale(candidate, state),
			})
			semester.Credits += candidate.Credits
			state.placed[candidate.Code] = struct{}{}
		}

		if len(semester.Courses) == 0 {
			break
		}
		// Everything placed this semester is assumed completed before
		// the next availability pass.
		for _, course := range semester.Courses {
			state.satisfied[course.Code] = struct{}{}
		}
		plan.Semesters = append(plan.Semesters, semester)
	}

	plan.Blocked = state.blocked()
	plan.Estimate = p.EstimateGraduation(record, req.Velocity)

	p.logger.Debug("generated recommendation plan",
		zap.String("student_key", record.StudentKey),
		zap.Int("semesters", len(plan.Semesters)),
		zap.Int("blocked", len(plan.Blocked)))

	return plan, nil
}

// EstimateGraduation projects semesters to graduation at the given credit
// velocity. The credit gap is the larger of the itemized remaining bucket
// and the requirement shortfall, so a plain grade transcript with no
// itemized remaining courses still yields a usable estimate.
func (p *Planner) EstimateGraduation(record *models.StudentAcademicRecord, velocity float64) models.GraduationEstimate {
	if velocity <= 0 {
		velocity = p.cfg.CreditVelocity
	}

	gap := record.CreditsRequired - record.CreditsCompleted - record.CreditsInProgress
	if record.CreditsRemaining > gap {
		gap = record.CreditsRemaining
	}
	if gap < 0 {
		gap = 0
	}

	estimate := models.GraduationEstimate{
		CreditsRemaining: gap,
		CreditVelocity:   velocity,
	}
	if gap > 0 {
		estimate.SemestersRemaining = int(math.Ceil(gap / velocity))
	}
	if current, ok := currentTermOf(record); ok {
		estimate.ExpectedTerm = current.AddSemesters(estimate.SemestersRemaining, false).String()
	}
	return estimate
}

// planState tracks the simulation: which codes count as satisfied for
// prerequisite checks, which are already placed, and the candidate pool.
type planState struct {
	graph      *PrerequisiteGraph
	candidates []models.CourseRecord
	satisfied  map[string]struct{}
	placed     map[string]struct{}
}

func (p *Planner) newPlanState(record *models.StudentAcademicRecord) *planState {
	state := &planState{
		graph:     p.graph,
		satisfied: make(map[string]struct{}),
		placed:    make(map[string]struct{}),
	}

	inRecord := make(map[string]struct{}, len(record.Courses))
	for _, course := range record.Courses {
		inRecord[course.Code] = struct{}{}
		switch course.Status {
		case models.CourseStatusCompleted, models.CourseStatusInProgress:
			state.satisfied[course.Code] = struct{}{}
		default:
			state.candidates = append(state.candidates, course)
		}
	}

	// Catalog courses the record has never seen are candidates too: a
	// grade transcript lists what was taken, the catalog knows the rest.
	for _, code := range p.graph.Codes() {
		if _, ok := inRecord[code]; ok {
			continue
		}
		entry, _ := p.graph.Course(code)
		state.candidates = append(state.candidates, p.candidateFromCatalog(entry))
	}

	return state
}

var deptRe = regexp.MustCompile(`^[A-Z]+`)

func (p *Planner) candidateFromCatalog(entry GraphCourse) models.CourseRecord {
	credits := entry.Credits
	if credits <= 0 {
		credits = p.rules.DefaultCourseCredits
	}

	category := entry.Category
	categoryAssumed := false
	if category == "" {
		categoryAssumed = true
		category = models.CategoryUncategorized
		if dept := deptRe.FindString(entry.Code); dept != "" {
			if cat, ok := p.rules.CategoryForDepartment(dept); ok {
				category = cat
			}
		}
	}

	return models.CourseRecord{
		Code:            entry.Code,
		Title:           entry.Title,
		Credits:         credits,
		Status:          models.CourseStatusRemaining,
		Category:        category,
		CategoryAssumed: categoryAssumed,
	}
}

// available returns the unplaced candidates whose prerequisites are all
// satisfied, ordered by priority then code.
func (s *planState) available() []models.CourseRecord {
	var out []models.CourseRecord
	for _, candidate := range s.candidates {
		if _, ok := s.placed[candidate.Code]; ok {
			continue
		}
		if len(s.missingPrereqs(candidate.Code)) > 0 {
			continue
		}
		out = append(out, candidate)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := priorityFor(out[i].Category).Rank(), priorityFor(out[j].Category).Rank()
		if pi != pj {
			return pi < pj
		}
		return out[i].Code < out[j].Code
	})
	return out
}

func (s *planState) missingPrereqs(code string) []string {
	var missing []string
	for _, pre := range s.graph.Prerequisites(code) {
		if _, ok := s.satisfied[pre]; !ok {
			missing = append(missing, pre)
		}
	}
	return missing
}

// blocked lists the candidates that never became available, with the
// prerequisites still missing at the end of the simulation.
func (s *planState) blocked() []models.BlockedCourse {
	var out []models.BlockedCourse
	for _, candidate := range s.candidates {
		if _, ok := s.placed[candidate.Code]; ok {
			continue
		}
		missing := s.missingPrereqs(candidate.Code)
		if len(missing) == 0 {
			continue
		}
		out = append(out, models.BlockedCourse{Code: candidate.Code, MissingPrereqs: missing})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func priorityFor(category models.RequirementCategory) models.PlanPriority {
	switch category {
	case models.CategoryMajorCore, models.CategoryRequiredMath:
		return models.PriorityHigh
	case models.CategoryRequiredScience, models.CategoryMajorElective:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// rationale explains one pick: the requirement it serves and, when it
// gates other candidates, what it unlocks.
func (p *Planner) rationale(course models.CourseRecord, state *planState) string {
	var sb strings.Builder
	if course.Category == models.CategoryUncategorized {
		sb.WriteString("counts toward remaining credits")
	} else {
		sb.WriteString(course.Category.Label() + " requirement")
	}

	unlocks := p.unlockedBy(course.Code, state)
	if len(unlocks) > 0 {
		fmt.Fprintf(&sb, "; prerequisite for %s", strings.Join(unlocks, ", "))
	}
	return sb.String()
}

func (p *Planner) unlockedBy(code string, state *planState) []string {
	var out []string
	for _, candidate := range state.candidates {
		if _, ok := state.placed[candidate.Code]; ok {
			continue
		}
		for _, pre := range p.graph.Prerequisites(candidate.Code) {
			if pre == code {
				out = append(out, candidate.Code)
				break
			}
		}
	}
	sort.Strings(out)
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

func currentTermOf(record *models.StudentAcademicRecord) (transcript.Term, bool) {
	if record.CurrentTerm == nil || *record.CurrentTerm == "" {
		return transcript.Term{}, false
	}
	return transcript.ParseTerm(*record.CurrentTerm)
}
