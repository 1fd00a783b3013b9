package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quarkgate/apikit/internal/infrastructure/monitoring"
	"github.com/quarkgate/apikit/pkg/constants"
	"github.com/quarkgate/apikit/pkg/logger"
)

// Metrics records the request counter and latency histogram for every
// completed request, labeled by the matched route pattern rather than the
// raw path to keep cardinality bounded. Scrapes of the metrics endpoint
// are excluded. Each request also refreshes the system resource gauges in
// the background; the CPU average takes a fixed sampling window, so it must
// not block the response.
func Metrics(metrics *monitoring.Metrics, sampler *monitoring.SystemSampler, service string, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "not_found"
		}
		if path != constants.MetricsPath {
			status := strconv.Itoa(c.Writer.Status())
			metrics.RecordRequest(c.Request.Method, path, service, status, time.Since(start))
		}

		go func() {
			sample, err := sampler.Sample(context.Background())
			if err != nil {
				log.Warn(context.Background(), "system metrics sampling failed",
					logger.Error(err))
				return
			}
			metrics.RecordSystemSample(service, sample)
		}()
	}
}
