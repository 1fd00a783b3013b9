package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quarkgate/apikit/pkg/constants"
	"github.com/quarkgate/apikit/pkg/logger"
)

// Logger emits one structured access log line per completed request.
// Server errors log at error level, except 503 which stays informational
// because the time limiter produces it on purpose. Scrapes of the metrics
// endpoint are not logged at all.
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		if strings.HasPrefix(path, constants.MetricsPath) {
			return
		}

		status := c.Writer.Status()
		bodySize := c.Writer.Size()
		if bodySize < 0 {
			bodySize = 0
		}

		fields := []logger.Field{
			logger.Int("status_code", status),
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.String("uri", c.Request.RequestURI),
			logger.String("host", c.Request.Host),
			logger.String("remote_addr", c.ClientIP()),
			logger.String("user_agent", c.Request.UserAgent()),
			logger.String("proto", c.Request.Proto),
			logger.Duration("latency", time.Since(start)),
			logger.Int("body_size", bodySize),
		}

		ctx := c.Request.Context()
		if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
			log.Error(ctx, "request completed", nil, fields...)
			return
		}
		log.Info(ctx, "request completed", fields...)
	}
}
