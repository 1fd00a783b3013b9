package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quarkgate/apikit/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	var seenInHandler string
	var seenInContext string

	engine := newEngine(RequestID())
	engine.GET("/ping", func(c *gin.Context) {
		seenInHandler = c.Request.Header.Get(constants.HeaderRequestID)
		if id, ok := c.Request.Context().Value(constants.ContextKeyRequestID).(string); ok {
			seenInContext = id
		}
		c.Status(http.StatusOK)
	})

	w := perform(engine, testRequest{method: http.MethodGet, path: "/ping"})

	responseID := w.Header().Get(constants.HeaderRequestID)
	require.NotEmpty(t, responseID)
	_, err := uuid.Parse(responseID)
	assert.NoError(t, err)

	// The same id is visible on the request headers, the request context
	// and the response.
	assert.Equal(t, responseID, seenInHandler)
	assert.Equal(t, responseID, seenInContext)
}

func TestRequestIDPreservedWhenSupplied(t *testing.T) {
	engine := newEngine(RequestID())
	engine.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := perform(engine, testRequest{
		method:  http.MethodGet,
		path:    "/ping",
		headers: map[string]string{constants.HeaderRequestID: "caller-supplied-id"},
	})

	assert.Equal(t, "caller-supplied-id", w.Header().Get(constants.HeaderRequestID))
}

func TestRequestIDFromContext(t *testing.T) {
	var fromHelper string

	engine := newEngine(RequestID())
	engine.GET("/ping", func(c *gin.Context) {
		fromHelper = RequestIDFromContext(c)
		c.Status(http.StatusOK)
	})

	w := perform(engine, testRequest{method: http.MethodGet, path: "/ping"})
	assert.Equal(t, w.Header().Get(constants.HeaderRequestID), fromHelper)
}
