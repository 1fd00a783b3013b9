// Package monitoring provides the Prometheus metrics registry, the system
// resource sampler and the zap-backed logger implementation.
package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// secondsDurationBuckets are the histogram buckets for HTTP request
// duration: 5/10/25/50/100/250/500ms and 1/2.5/5/10s.
var secondsDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Metrics owns the Prometheus collectors. Each instance carries its own
// registry so tests can construct them independently.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	cpuUsage        *prometheus.GaugeVec
	totalMemory     *prometheus.GaugeVec
	usedMemory      *prometheus.GaugeVec
	totalSwap       *prometheus.GaugeVec
	usedSwap        *prometheus.GaugeVec
	totalDisksSpace *prometheus.GaugeVec
	usedDisksSpace  *prometheus.GaugeVec
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	httpLabels := []string{"method", "path", "service", "status"}
	systemLabels := []string{"service"}

	return &Metrics{
		registry: registry,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			httpLabels,
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_requests_duration_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: secondsDurationBuckets,
			},
			httpLabels,
		),
		cpuUsage: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "system_cpu_usage",
				Help: "Average CPU usage in percent.",
			},
			systemLabels,
		),
		totalMemory: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "system_total_memory",
				Help: "Total memory in bytes.",
			},
			systemLabels,
		),
		usedMemory: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "system_used_memory",
				Help: "Used memory in bytes.",
			},
			systemLabels,
		),
		totalSwap: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "system_total_swap",
				Help: "Total swap space in bytes.",
			},
			systemLabels,
		),
		usedSwap: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "system_used_swap",
				Help: "Used swap space in bytes.",
			},
			systemLabels,
		),
		totalDisksSpace: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "system_total_disks_space",
				Help: "Total disk space in bytes for the monitored mount points.",
			},
			systemLabels,
		),
		usedDisksSpace: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "system_used_disks_usage",
				Help: "Used disk space in bytes for the monitored mount points.",
			},
			systemLabels,
		),
	}
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments the request counter and observes the latency
// histogram for one completed HTTP request.
func (m *Metrics) RecordRequest(method, path, service, status string, latency time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, service, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, service, status).Observe(latency.Seconds())
}

// RecordSystemSample republishes a point-in-time resource sample as gauges.
func (m *Metrics) RecordSystemSample(service string, sample SystemSample) {
	m.cpuUsage.WithLabelValues(service).Set(sample.CPUUsage)
	m.totalMemory.WithLabelValues(service).Set(float64(sample.TotalMemory))
	m.usedMemory.WithLabelValues(service).Set(float64(sample.UsedMemory))
	m.totalSwap.WithLabelValues(service).Set(float64(sample.TotalSwap))
	m.usedSwap.WithLabelValues(service).Set(float64(sample.UsedSwap))
	m.totalDisksSpace.WithLabelValues(service).Set(float64(sample.TotalDisksSpace))
	m.usedDisksSpace.WithLabelValues(service).Set(float64(sample.UsedDisksSpace))
}
