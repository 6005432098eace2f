package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the correlation ID of a request.
	RequestIDHeader = "X-Request-ID"

	requestIDContextKey = "request_id"
)

// RequestID assigns a correlation ID to each incoming HTTP request,
// honouring one already supplied by the client.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if reqID == "" {
			reqID = uuid.NewString()
		}

		c.Set(requestIDContextKey, reqID)
		c.Writer.Header().Set(RequestIDHeader, reqID)

		c.Next()
	}
}

// RequestIDValue returns the correlation ID stored in the Gin context.
func RequestIDValue(c *gin.Context) string {
	if v, exists := c.Get(requestIDContextKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
