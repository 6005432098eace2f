package planner

import (
	"errors"
	"fmt"
	"strings"
)

// RecommendationErrorKind discriminates planning failures.
type RecommendationErrorKind string

const (
	// KindInvalidSemesterCount rejects a request for zero or negative
	// semesters.
	KindInvalidSemesterCount RecommendationErrorKind = "INVALID_SEMESTER_COUNT"
	// KindCyclicPrerequisites rejects a prerequisite graph containing a
	// cycle. No partial plan is produced.
	KindCyclicPrerequisites RecommendationErrorKind = "CYCLIC_PREREQUISITES"
)

// RecommendationError reports why a plan could not be generated.
type RecommendationError struct {
	Kind   RecommendationErrorKind
	Detail string
}

func (e *RecommendationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("generate plan: %s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("generate plan: %s", e.Kind)
}

// IsInvalidSemesterCount reports whether err is a semester-count rejection.
func IsInvalidSemesterCount(err error) bool {
	var re *RecommendationError
	return errors.As(err, &re) && re.Kind == KindInvalidSemesterCount
}

// IsCyclicPrerequisites reports whether err is a graph-cycle rejection.
func IsCyclicPrerequisites(err error) bool {
	var re *RecommendationError
	return errors.As(err, &re) && re.Kind == KindCyclicPrerequisites
}

func invalidSemesterCountError(n int) error {
	return &RecommendationError{
		Kind:   KindInvalidSemesterCount,
		Detail: fmt.Sprintf("requested %d semesters", n),
	}
}

func cyclicPrerequisitesError(cycle []string) error {
	return &RecommendationError{
		Kind:   KindCyclicPrerequisites,
		Detail: strings.Join(cycle, " -> "),
	}
}
