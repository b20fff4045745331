package monitoring

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "webbridge"

var (
	latencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	callBuckets    = []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	sizeBuckets    = prometheus.ExponentialBuckets(100, 10, 6)
)

// Metrics is the server's Prometheus instrument set.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	WindowsActive  prometheus.Gauge
	SessionsActive prometheus.Gauge

	BridgeCalls    *prometheus.CounterVec
	BridgeDuration *prometheus.HistogramVec
	BridgeInFlight prometheus.Gauge
	BridgeDropped  *prometheus.CounterVec
	BridgeMessages *prometheus.CounterVec
	BreakerState   *prometheus.GaugeVec

	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	started time.Time
	totals  totals
}

// totals backs the JSON snapshot without reading Prometheus state back.
type totals struct {
	requests    atomic.Int64
	errors      atomic.Int64
	calls       atomic.Int64
	failed      atomic.Int64
	windows     atomic.Int64
	connections atomic.Int64
	latencyNs   atomic.Int64
}

// MetricsSnapshot is the JSON view served at /metrics/json.
type MetricsSnapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	TotalCalls        int64   `json:"total_calls"`
	FailedCalls       int64   `json:"failed_calls"`
	ActiveWindows     int64   `json:"active_windows"`
	ActiveConnections int64   `json:"active_connections"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// NewMetrics registers the instrument set with reg.
// A nil reg uses the Prometheus default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return f.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
	}
	histogram := func(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
		return f.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: name, Help: help, Buckets: buckets}, labels)
	}
	gauge := func(name, help string) prometheus.Gauge {
		return f.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}

	m := &Metrics{
		started: time.Now(),

		RequestsTotal:   counter("http_requests_total", "HTTP requests served", "method", "path", "status"),
		RequestDuration: histogram("http_request_duration_seconds", "HTTP request latency", latencyBuckets, "method", "path"),
		RequestSize:     histogram("http_request_size_bytes", "HTTP request body size", sizeBuckets, "method", "path"),
		ResponseSize:    histogram("http_response_size_bytes", "HTTP response body size", sizeBuckets, "method", "path"),

		WindowsActive:  gauge("windows_active", "Registered windows"),
		SessionsActive: gauge("sessions_active", "Attached page sessions"),

		BridgeCalls:    counter("bridge_calls_total", "Dispatched binding calls", "window", "binding", "status"),
		BridgeDuration: histogram("bridge_call_duration_seconds", "Binding call latency", callBuckets, "window", "binding"),
		BridgeInFlight: gauge("bridge_calls_in_flight", "Binding calls currently running"),
		BridgeDropped:  counter("bridge_dropped_total", "Bridge envelopes dropped without reply", "reason"),
		BridgeMessages: counter("bridge_messages_total", "Untagged application messages", "direction"),
		BreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Binding circuit state (0 closed, 1 half-open, 2 open)",
		}, []string{"binding"}),

		WSConnections: gauge("ws_connections", "Open WebSocket connections"),
		WSMessages:    counter("ws_messages_total", "WebSocket frames", "direction", "type"),
	}
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "uptime_seconds",
		Help:      "Seconds since the metrics were registered",
	}, m.uptime)
	return m
}

func (m *Metrics) uptime() float64 {
	return time.Since(m.started).Seconds()
}

// RecordHTTPRequest records one served request. Status is the decimal code.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.totals.requests.Add(1)
	m.totals.latencyNs.Add(int64(duration))
	if status != "" && status[0] >= '4' {
		m.totals.errors.Add(1)
	}
}

// RecordBridgeCall records a finished binding call.
func (m *Metrics) RecordBridgeCall(window, binding, status string, duration time.Duration) {
	m.BridgeCalls.WithLabelValues(window, binding, status).Inc()
	m.BridgeDuration.WithLabelValues(window, binding).Observe(duration.Seconds())

	m.totals.calls.Add(1)
	if status != "ok" {
		m.totals.failed.Add(1)
	}
}

func (m *Metrics) RecordDropped(reason string) {
	m.BridgeDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordAppMessage(direction string) {
	m.BridgeMessages.WithLabelValues(direction).Inc()
}

// SetBreakerState publishes a binding's circuit state.
func (m *Metrics) SetBreakerState(binding string, state int) {
	m.BreakerState.WithLabelValues(binding).Set(float64(state))
}

func (m *Metrics) IncInFlight() { m.BridgeInFlight.Inc() }
func (m *Metrics) DecInFlight() { m.BridgeInFlight.Dec() }

func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

func (m *Metrics) SetWindowsActive(count int) {
	m.WindowsActive.Set(float64(count))
	m.totals.windows.Store(int64(count))
}

func (m *Metrics) IncSessions() { m.SessionsActive.Inc() }
func (m *Metrics) DecSessions() { m.SessionsActive.Dec() }

func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.totals.connections.Add(1)
}

func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.totals.connections.Add(-1)
}
