package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/uninav/advisor-api/internal/dto"
	"github.com/uninav/advisor-api/internal/models"
	"github.com/uninav/advisor-api/internal/planner"
	appErrors "github.com/uninav/advisor-api/pkg/errors"
	"github.com/uninav/advisor-api/pkg/response"
)

type planService interface {
	GeneratePlan(ctx context.Context, studentKey string, req planner.Request) (*models.RecommendationPlan, error)
	EstimateGraduation(ctx context.Context, studentKey string, velocity float64) (*models.GraduationEstimate, error)
}

// PlanHandler serves degree-plan recommendations.
type PlanHandler struct {
	service planService
}

// NewPlanHandler constructs the handler.
func NewPlanHandler(service planService) *PlanHandler {
	return &PlanHandler{service: service}
}

// Generate godoc
// @Summary Generate a recommendation plan
// @Description Build a greedy semester-by-semester plan from the student's latest record
// @Tags Plans
// @Accept json
// @Produce json
// @Param studentKey path string true "Student key"
// @Param payload body dto.PlanRequest false "Plan options"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{studentKey}/plan [post]
func (h *PlanHandler) Generate(c *gin.Context) {
	var req dto.PlanRequest
	if c.Request.ContentLength > 0 {
		if !bindJSON(c, &req, "invalid plan payload") {
			return
		}
	}
	if req.Semesters == 0 {
		req.Semesters = 2
	}

	plan, err := h.service.GeneratePlan(c.Request.Context(), c.Param("studentKey"), planner.Request{
		Semesters:  req.Semesters,
		MaxCredits: req.MaxCredits,
		Velocity:   req.Velocity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// Graduation godoc
// @Summary Estimate semesters remaining until graduation
// @Tags Plans
// @Produce json
// @Param studentKey path string true "Student key"
// @Param velocity query number false "Credits a student is assumed to complete per semester"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{studentKey}/graduation [get]
func (h *PlanHandler) Graduation(c *gin.Context) {
	velocity := 0.0
	if raw := strings.TrimSpace(c.Query("velocity")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "velocity must be a number"))
			return
		}
		velocity = parsed
	}

	estimate, err := h.service.EstimateGraduation(c.Request.Context(), c.Param("studentKey"), velocity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, estimate, nil)
}
