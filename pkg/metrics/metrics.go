package metrics

import (
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks gateway counters, exposed both as Prometheus collectors on
// /metrics and as a JSON snapshot on /api/stats.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	upstreamCalls   *prometheus.CounterVec
	sessionsActive  prometheus.Gauge
	sessionsCreated prometheus.Counter
	messagesTotal   prometheus.Counter

	// Plain counters backing the JSON stats endpoint
	requests        atomic.Int64
	upstreamTotal   atomic.Int64
	upstreamErrors  atomic.Int64
	activeSessions  atomic.Int64
	createdSessions atomic.Int64
	messages        atomic.Int64

	startTime time.Time
}

// New creates a Metrics instance with its own registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total HTTP requests handled, by method and status class",
		}, []string{"method", "status"}),
		upstreamCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_upstream_calls_total",
			Help: "Total calls to the analysis service, by outcome",
		}, []string{"outcome"}),
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gateway_chat_sessions_active",
			Help: "Number of live chat sessions",
		}),
		sessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "gateway_chat_sessions_created_total",
			Help: "Total chat sessions created",
		}),
		messagesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "gateway_chat_messages_total",
			Help: "Total chat messages appended to sessions",
		}),
		startTime: time.Now(),
	}
}

// ObserveRequest records one handled HTTP request
func (m *Metrics) ObserveRequest(method, status string) {
	m.requestsTotal.WithLabelValues(method, status).Inc()
	m.requests.Add(1)
}

// ObserveUpstreamCall records one upstream call and its outcome
func (m *Metrics) ObserveUpstreamCall(success bool) {
	m.upstreamTotal.Add(1)
	if !success {
		m.upstreamCalls.WithLabelValues("error").Inc()
		m.upstreamErrors.Add(1)
		return
	}
	m.upstreamCalls.WithLabelValues("success").Inc()
}

// SessionCreated records a new chat session
func (m *Metrics) SessionCreated() {
	m.sessionsCreated.Inc()
	m.sessionsActive.Inc()
	m.createdSessions.Add(1)
	m.activeSessions.Add(1)
}

// SessionDeleted records a removed chat session
func (m *Metrics) SessionDeleted() {
	m.sessionsActive.Dec()
	m.activeSessions.Add(-1)
}

// MessageAppended records one message appended to a session
func (m *Metrics) MessageAppended() {
	m.messagesTotal.Inc()
	m.messages.Add(1)
}

// Snapshot is the JSON shape served by /api/stats
type Snapshot struct {
	UptimeSeconds   int64 `json:"uptime_seconds"`
	RequestsTotal   int64 `json:"requests_total"`
	UpstreamCalls   int64 `json:"upstream_calls"`
	UpstreamErrors  int64 `json:"upstream_errors"`
	ActiveSessions  int64 `json:"active_sessions"`
	SessionsCreated int64 `json:"sessions_created"`
	MessagesTotal   int64 `json:"messages_total"`
}

// Snapshot returns the current counter values
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		UptimeSeconds:   int64(time.Since(m.startTime).Seconds()),
		RequestsTotal:   m.requests.Load(),
		UpstreamCalls:   m.upstreamTotal.Load(),
		UpstreamErrors:  m.upstreamErrors.Load(),
		ActiveSessions:  m.activeSessions.Load(),
		SessionsCreated: m.createdSessions.Load(),
		MessagesTotal:   m.messages.Load(),
	}
}

// Registry exposes the underlying registry so other instrumentation (e.g.
// the otel prometheus exporter) can share the exposition endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition endpoint
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware returns a gin middleware recording every handled request
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		m.ObserveRequest(c.Request.Method, statusClass(c.Writer.Status()))
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
