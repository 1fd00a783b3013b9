package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quarkgate/apikit/pkg/constants"
)

// RequestID ensures every request carries an X-Request-Id. An id supplied by
// the caller is kept; otherwise a fresh UUID is generated. The id is written
// back to the request headers, the response headers and the request context
// so downstream units and the logger all see the same value.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Request.Header.Get(constants.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
			c.Request.Header.Set(constants.HeaderRequestID, requestID)
		}

		ctx := context.WithValue(c.Request.Context(), constants.ContextKeyRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(constants.ContextKeyRequestID), requestID)
		c.Writer.Header().Set(constants.HeaderRequestID, requestID)

		c.Next()
	}
}

// RequestIDFromContext returns the request id stored by RequestID, or an
// empty string when the unit did not run.
func RequestIDFromContext(c *gin.Context) string {
	if id, ok := c.Get(string(constants.ContextKeyRequestID)); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}
