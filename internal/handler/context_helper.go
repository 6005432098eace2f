package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uninav/advisor-api/internal/middleware"
	"github.com/uninav/advisor-api/internal/models"
	appErrors "github.com/uninav/advisor-api/pkg/errors"
	"github.com/uninav/advisor-api/pkg/response"
)

// claimsFromContext returns the JWT claims set by the auth middleware,
// or nil when the request is unauthenticated.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// bindJSON decodes the request body into dest. On failure it writes a
// 400 envelope with the given message and reports false so the handler
// can return immediately.
func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}
