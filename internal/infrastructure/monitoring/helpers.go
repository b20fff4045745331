package monitoring

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Snapshot returns the running totals.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		TotalRequests:     m.totals.requests.Load(),
		TotalErrors:       m.totals.errors.Load(),
		TotalCalls:        m.totals.calls.Load(),
		FailedCalls:       m.totals.failed.Load(),
		ActiveWindows:     m.totals.windows.Load(),
		ActiveConnections: m.totals.connections.Load(),
		UptimeSeconds:     m.uptime(),
	}
}

// AverageLatency is the mean HTTP request duration in seconds.
func (m *Metrics) AverageLatency() float64 {
	n := m.totals.requests.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(m.totals.latencyNs.Load() / n).Seconds()
}

// Handler exposes a gatherer in Prometheus exposition format.
// A nil gatherer uses the Prometheus default gatherer.
func Handler(gatherer prometheus.Gatherer) gin.HandlerFunc {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
