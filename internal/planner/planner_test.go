package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uninav/advisor-api/internal/models"
)

func planRecord(currentTerm string, courses ...models.CourseRecord) *models.StudentAcademicRecord {
	record := &models.StudentAcademicRecord{
		ID:         "rec-1",
		StudentKey: "s1",
		Courses:    courses,
	}
	if currentTerm != "" {
		record.CurrentTerm = &currentTerm
	}
	for _, course := range courses {
		switch course.Status {
		case models.CourseStatusCompleted:
			record.CreditsCompleted += course.Credits
		case models.CourseStatusInProgress:
			record.CreditsInProgress += course.Credits
		default:
			record.CreditsRemaining += course.Credits
		}
	}
	record.CreditsRequired = 120
	return record
}

func course(code string, credits float64, status models.CourseStatus, category models.RequirementCategory) models.CourseRecord {
	return models.CourseRecord{Code: code, Credits: credits, Status: status, Category: category}
}

func TestGenerateRejectsInvalidSemesterCount(t *testing.T) {
	p := NewPlanner(nil, nil, Config{}, nil)
	record := planRecord("Fall 2025")

	for _, n := range []int{0, -3} {
		_, err := p.Generate(record, Request{Semesters: n})
		require.Error(t, err)
		assert.True(t, IsInvalidSemesterCount(err))
	}
}

func TestGenerateRejectsCyclicGraph(t *testing.T) {
	graph := NewGraph([]GraphCourse{
		{Code: "COSC211", Prerequisites: []string{"COSC311"}},
		{Code: "COSC311", Prerequisites: []string{"COSC211"}},
	})
	p := NewPlanner(graph, nil, Config{}, nil)

	_, err := p.Generate(planRecord("Fall 2025"), Request{Semesters: 2})
	require.Error(t, err)
	assert.True(t, IsCyclicPrerequisites(err))
}

func TestGenerateUnlockedCourseIsAvailable(t *testing.T) {
	graph := NewGraph([]GraphCourse{
		{Code: "COSC211", Prerequisites: []string{"COSC112"}},
	})
	p := NewPlanner(graph, nil, Config{}, nil)
	record := planRecord("Fall 2025",
		course("COSC111", 3, models.CourseStatusCompleted, models.CategoryMajorCore),
		course("COSC112", 3, models.CourseStatusCompleted, models.CategoryMajorCore),
		course("COSC211", 3, models.CourseStatusRemaining, models.CategoryMajorCore),
	)

	plan, err := p.Generate(record, Request{Semesters: 1})
	require.NoError(t, err)

	require.Len(t, plan.Semesters, 1)
	codes := plannedCodes(plan.Semesters[0])
	assert.Contains(t, codes, "COSC211")
	assert.Empty(t, plan.Blocked)
}

func TestGeneratePriorityOrderUnderCeiling(t *testing.T) {
	p := NewPlanner(NewGraph(nil), nil, Config{}, nil)
	record := planRecord("Fall 2025",
		course("ARTS105", 3, models.CourseStatusRemaining, models.CategoryFreeElective),
		course("PHYS201", 4, models.CourseStatusRemaining, models.CategoryRequiredScience),
		course("COSC211", 3, models.CourseStatusRemaining, models.CategoryMajorCore),
		course("MATH220", 4, models.CourseStatusRemaining, models.CategoryRequiredMath),
	)

	plan, err := p.Generate(record, Request{Semesters: 1, MaxCredits: 11})
	require.NoError(t, err)

	require.Len(t, plan.Semesters, 1)
	semester := plan.Semesters[0]
	require.Len(t, semester.Courses, 3)
	assert.Equal(t, "COSC211", semester.Courses[0].Code)
	assert.Equal(t, models.PriorityHigh, semester.Courses[0].Priority)
	assert.Equal(t, "MATH220", semester.Courses[1].Code)
	assert.Equal(t, "PHYS201", semester.Courses[2].Code)
	assert.Equal(t, models.PriorityMedium, semester.Courses[2].Priority)
	assert.Equal(t, 11.0, semester.Credits)
	assert.NotContains(t, plannedCodes(semester), "ARTS105", "low priority dropped at the ceiling")
}

func TestGenerateDefersUnlockedToLaterSemester(t *testing.T) {
	graph := NewGraph([]GraphCourse{
		{Code: "COSC211", Prerequisites: []string{"COSC111"}},
		{Code: "COSC311", Prerequisites: []string{"COSC211"}},
	})
	p := NewPlanner(graph, nil, Config{}, nil)
	record := planRecord("Fall 2025",
		course("COSC111", 3, models.CourseStatusCompleted, models.CategoryMajorCore),
		course("COSC211", 3, models.CourseStatusRemaining, models.CategoryMajorCore),
		course("COSC311", 3, models.CourseStatusRemaining, models.CategoryMajorCore),
	)

	plan, err := p.Generate(record, Request{Semesters: 3})
	require.NoError(t, err)

	require.Len(t, plan.Semesters, 2, "nothing is left for a third semester")
	assert.Equal(t, []string{"COSC211"}, plannedCodes(plan.Semesters[0]))
	assert.Equal(t, []string{"COSC311"}, plannedCodes(plan.Semesters[1]))
	assert.Empty(t, plan.Blocked)
}

func TestGenerateCoursePlacedOnlyOnce(t *testing.T) {
	p := NewPlanner(NewGraph(nil), nil, Config{}, nil)
	record := planRecord("Fall 2025",
		course("COSC211", 3, models.CourseStatusRemaining, models.CategoryMajorCore),
	)

	plan, err := p.Generate(record, Request{Semesters: 4})
	require.NoError(t, err)

	placed := 0
	for _, semester := range plan.Semesters {
		for _, c := range semester.Courses {
			if c.Code == "COSC211" {
				placed++
			}
		}
	}
	assert.Equal(t, 1, placed)
}

func TestGenerateBeyondHorizonIsNotBlocked(t *testing.T) {
	graph := NewGraph([]GraphCourse{
		{Code: "COSC311", Prerequisites: []string{"COSC211"}},
	})
	p := NewPlanner(graph, nil, Config{}, nil)
	record := planRecord("Fall 2025",
		course("COSC211", 3, models.CourseStatusRemaining, models.CategoryMajorCore),
		course("COSC311", 3, models.CourseStatusRemaining, models.CategoryMajorCore),
	)

	plan, err := p.Generate(record, Request{Semesters: 1})
	require.NoError(t, err)

	require.Len(t, plan.Semesters, 1)
	assert.Equal(t, []string{"COSC211"}, plannedCodes(plan.Semesters[0]))
	assert.Empty(t, plan.Blocked, "a deferred course is not a blocked course")
}

func TestGenerateBlockedCoursesReported(t *testing.T) {
	graph := NewGraph([]GraphCourse{
		{Code: "PHYS301", Prerequisites: []string{"PHYS100"}},
	})
	p := NewPlanner(graph, nil, Config{}, nil)
	record := planRecord("Fall 2025",
		course("PHYS301", 4, models.CourseStatusRemaining, models.CategoryRequiredScience),
	)

	plan, err := p.Generate(record, Request{Semesters: 2})
	require.NoError(t, err)

	assert.Empty(t, plan.Semesters)
	require.Len(t, plan.Blocked, 1)
	assert.Equal(t, "PHYS301", plan.Blocked[0].Code)
	assert.Equal(t, []string{"PHYS100"}, plan.Blocked[0].MissingPrereqs)
}

func TestGenerateIncludesCatalogOnlyCourses(t *testing.T) {
	graph := NewGraph([]GraphCourse{
		{Code: "MATH220", Title: "Linear Algebra"},
		{Code: "COSC490", Credits: 4, Category: models.CategoryMajorCore},
	})
	p := NewPlanner(graph, nil, Config{}, nil)
	record := planRecord("Fall 2025",
		course("COSC111", 3, models.CourseStatusCompleted, models.CategoryMajorCore),
	)

	plan, err := p.Generate(record, Request{Semesters: 1})
	require.NoError(t, err)

	require.Len(t, plan.Semesters, 1)
	byCode := make(map[string]models.PlannedCourse)
	for _, c := range plan.Semesters[0].Courses {
		byCode[c.Code] = c
	}

	math, ok := byCode["MATH220"]
	require.True(t, ok)
	assert.Equal(t, 3.0, math.Credits, "catalog entries without credits use the ruleset default")
	assert.Equal(t, models.CategoryRequiredMath, math.Category, "department fallback categorizes catalog-only codes")
	assert.Equal(t, models.PriorityHigh, math.Priority)

	capstone, ok := byCode["COSC490"]
	require.True(t, ok)
	assert.Equal(t, 4.0, capstone.Credits)
	assert.Equal(t, models.CategoryMajorCore, capstone.Category)
}

func TestGenerateTermLabelsAndRationale(t *testing.T) {
	graph := NewGraph([]GraphCourse{
		{Code: "COSC311", Prerequisites: []string{"COSC211"}},
	})
	p := NewPlanner(graph, nil, Config{}, nil)
	record := planRecord("Fall 2025",
		course("COSC211", 3, models.CourseStatusRemaining, models.CategoryMajorCore),
		course("COSC311", 3, models.CourseStatusRemaining, models.CategoryMajorCore),
	)

	plan, err := p.Generate(record, Request{Semesters: 2})
	require.NoError(t, err)

	assert.Equal(t, "Fall 2025", plan.CurrentTerm)
	require.Len(t, plan.Semesters, 2)
	assert.Equal(t, "Spring 2026", plan.Semesters[0].Term)
	assert.Equal(t, "Fall 2026", plan.Semesters[1].Term, "summer is skipped")

	first := plan.Semesters[0].Courses[0]
	assert.Equal(t, "COSC211", first.Code)
	assert.Contains(t, first.Rationale, "Major Core requirement")
	assert.Contains(t, first.Rationale, "prerequisite for COSC311")
}

func TestGenerateDeterministic(t *testing.T) {
	graph := NewGraph([]GraphCourse{
		{Code: "COSC211", Prerequisites: []string{"COSC111"}},
		{Code: "MATH220"},
		{Code: "PHYS201"},
	})
	p := NewPlanner(graph, nil, Config{}, nil)
	record := planRecord("Fall 2025",
		course("COSC111", 3, models.CourseStatusCompleted, models.CategoryMajorCore),
		course("ENGL101", 3, models.CourseStatusRemaining, models.CategoryGeneralEducation),
	)

	first, err := p.Generate(record, Request{Semesters: 3})
	require.NoError(t, err)
	second, err := p.Generate(record, Request{Semesters: 3})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEstimateGraduationScenario(t *testing.T) {
	p := NewPlanner(nil, nil, Config{}, nil)
	record := planRecord("Fall 2025")
	record.CreditsRequired = 120
	record.CreditsCompleted = 90
	record.CreditsRemaining = 30

	estimate := p.EstimateGraduation(record, 15)

	assert.Equal(t, 30.0, estimate.CreditsRemaining)
	assert.Equal(t, 15.0, estimate.CreditVelocity)
	assert.Equal(t, 2, estimate.SemestersRemaining)
	assert.Equal(t, "Fall 2026", estimate.ExpectedTerm)
}

func TestEstimateGraduationUsesRequirementGap(t *testing.T) {
	p := NewPlanner(nil, nil, Config{CreditVelocity: 12}, nil)
	record := planRecord("Spring 2024")
	record.CreditsRequired = 120
	record.CreditsCompleted = 100
	record.CreditsInProgress = 8
	record.CreditsRemaining = 0

	estimate := p.EstimateGraduation(record, 0)

	assert.Equal(t, 12.0, estimate.CreditVelocity, "configured default velocity applies")
	assert.Equal(t, 12.0, estimate.CreditsRemaining)
	assert.Equal(t, 1, estimate.SemestersRemaining)
	assert.Equal(t, "Fall 2024", estimate.ExpectedTerm)
}

func TestEstimateGraduationNothingRemaining(t *testing.T) {
	p := NewPlanner(nil, nil, Config{}, nil)
	record := planRecord("Spring 2024")
	record.CreditsRequired = 120
	record.CreditsCompleted = 126

	estimate := p.EstimateGraduation(record, 15)

	assert.Equal(t, 0.0, estimate.CreditsRemaining)
	assert.Equal(t, 0, estimate.SemestersRemaining)
	assert.Equal(t, "Spring 2024", estimate.ExpectedTerm)
}

func TestGenerateWithoutCurrentTerm(t *testing.T) {
	p := NewPlanner(NewGraph(nil), nil, Config{}, nil)
	record := planRecord("",
		course("COSC211", 3, models.CourseStatusRemaining, models.CategoryMajorCore),
	)

	plan, err := p.Generate(record, Request{Semesters: 1})
	require.NoError(t, err)

	assert.Empty(t, plan.CurrentTerm)
	require.Len(t, plan.Semesters, 1)
	assert.Empty(t, plan.Semesters[0].Term)
	assert.Empty(t, plan.Estimate.ExpectedTerm)
}

func plannedCodes(semester models.PlannedSemester) []string {
	codes := make([]string, 0, len(semester.Courses))
	for _, c := range semester.Courses {
		codes = append(codes, c.Code)
	}
	return codes
}
