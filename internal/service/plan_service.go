package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/uninav/advisor-api/internal/models"
	"github.com/uninav/advisor-api/internal/planner"
	appErrors "github.com/uninav/advisor-api/pkg/errors"
)

type planRecordSource interface {
	FindLatestByStudentKey(ctx context.Context, studentKey string) (*models.StudentAcademicRecord, error)
}

// PlanService generates course recommendation plans and graduation
// estimates from a student's latest stored record.
type PlanService struct {
	planner *planner.Planner
	records planRecordSource
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewPlanService constructs the service.
func NewPlanService(p *planner.Planner, records planRecordSource, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *PlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if p == nil {
		p = planner.NewPlanner(nil, nil, planner.Config{}, logger)
	}
	return &PlanService{
		planner: p,
		records: records,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// GeneratePlan builds a recommendation plan over the student's latest
// record. Plans are pure functions of the record and the request, so the
// cache key carries the record ID plus every request knob.
func (s *PlanService) GeneratePlan(ctx context.Context, studentKey string, req planner.Request) (*models.RecommendationPlan, error) {
	record, err := s.latestRecord(ctx, studentKey)
	if err != nil {
		return nil, err
	}

	key := planCacheKey(studentKey, record.ID, req.Semesters, req.MaxCredits, req.Velocity)
	if s.cache != nil {
		var cached models.RecommendationPlan
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	plan, err := s.planner.Generate(record, req)
	if err != nil {
		switch {
		case planner.IsInvalidSemesterCount(err):
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidPlanRequest.Code, appErrors.ErrInvalidPlanRequest.Status, "semesters must be a positive number")
		case planner.IsCyclicPrerequisites(err):
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidPlanRequest.Code, appErrors.ErrInvalidPlanRequest.Status, "prerequisite catalog contains a cycle")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate plan")
		}
	}
	if s.metrics != nil {
		s.metrics.RecordPlan()
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, plan, 0); err != nil {
			s.logger.Warn("failed to cache plan", zap.String("key", key), zap.Error(err))
		}
	}
	return plan, nil
}

// EstimateGraduation projects the student's graduation horizon from the
// latest record. A non-positive velocity falls back to the configured
// program default.
func (s *PlanService) EstimateGraduation(ctx context.Context, studentKey string, velocity float64) (*models.GraduationEstimate, error) {
	record, err := s.latestRecord(ctx, studentKey)
	if err != nil {
		return nil, err
	}
	estimate := s.planner.EstimateGraduation(record, velocity)
	return &estimate, nil
}

func (s *PlanService) latestRecord(ctx context.Context, studentKey string) (*models.StudentAcademicRecord, error) {
	start := time.Now()
	record, err := s.records.FindLatestByStudentKey(ctx, studentKey)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("record_latest", time.Since(start))
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no record found for student")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record")
	}
	return record, nil
}
