package models

// PlanPriority ranks a recommended course within a semester plan.
type PlanPriority string

const (
	PriorityHigh   PlanPriority = "HIGH"
	PriorityMedium PlanPriority = "MEDIUM"
	PriorityLow    PlanPriority = "LOW"
)

// Rank orders priorities High < Medium < Low for greedy placement.
func (p PlanPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// PlannedCourse is a single recommendation inside one semester.
type PlannedCourse struct {
	Code      string              `json:"code"`
	Title     string              `json:"title,omitempty"`
	Credits   float64             `json:"credits"`
	Priority  PlanPriority        `json:"priority"`
	Category  RequirementCategory `json:"category"`
	Rationale string              `json:"rationale"`
}

// PlannedSemester is one simulated semester of the recommendation plan.
type PlannedSemester struct {
	Index   int             `json:"index"`
	Term    string          `json:"term,omitempty"`
	Credits float64         `json:"credits"`
	Courses []PlannedCourse `json:"courses"`
}

// BlockedCourse is a remaining course whose prerequisites stay unmet for
// the whole planning horizon.
type BlockedCourse struct {
	Code           string   `json:"code"`
	MissingPrereqs []string `json:"missing_prerequisites"`
}

// GraduationEstimate projects how many semesters remain until the credit
// requirement is met at the assumed velocity.
type GraduationEstimate struct {
	CreditsRemaining   float64 `json:"credits_remaining"`
	CreditVelocity     float64 `json:"credit_velocity"`
	SemestersRemaining int     `json:"semesters_remaining"`
	ExpectedTerm       string  `json:"expected_term,omitempty"`
}

// RecommendationPlan is the full multi-semester output of one planning run
// over a single academic record and prerequisite graph.
type RecommendationPlan struct {
	RecordID    string             `json:"record_id"`
	StudentKey  string             `json:"student_key"`
	Semesters   []PlannedSemester  `json:"semesters"`
	Blocked     []BlockedCourse    `json:"blocked,omitempty"`
	Estimate    GraduationEstimate `json:"graduation_estimate"`
	MaxCredits  float64            `json:"max_credits_per_semester"`
	CurrentTerm string             `json:"current_term,omitempty"`
}
