package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	LoginAttempts    *prometheus.CounterVec
	StageFailures    *prometheus.CounterVec
	SessionsIssued   prometheus.Counter
	Enrollments      prometheus.Counter
	AuditWriteErrors prometheus.Counter
	EndpointLatency  *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		LoginAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medgate_login_attempts_total",
			Help: "Total login attempts, labeled by role",
		}, []string{"role"}),
		StageFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "medgate_stage_failures_total",
			Help: "Verification failures, labeled by pipeline stage",
		}, []string{"stage"}),
		SessionsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medgate_sessions_issued_total",
			Help: "Total session tokens issued",
		}),
		Enrollments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medgate_biometric_enrollments_total",
			Help: "Total first-time biometric enrollments",
		}),
		AuditWriteErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "medgate_audit_write_errors_total",
			Help: "Audit events that could not be durably recorded",
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medgate_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// IncrementLoginAttempts increments the login attempts counter for a role.
func (m *Metrics) IncrementLoginAttempts(role string) {
	m.LoginAttempts.WithLabelValues(role).Inc()
}

// IncrementStageFailures increments the failure counter for a pipeline stage.
func (m *Metrics) IncrementStageFailures(stage string) {
	m.StageFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) IncrementSessionsIssued() {
	m.SessionsIssued.Inc()
}

func (m *Metrics) IncrementEnrollments() {
	m.Enrollments.Inc()
}

func (m *Metrics) IncrementAuditWriteErrors() {
	m.AuditWriteErrors.Inc()
}

// ObserveEndpointLatency records request duration for an endpoint.
func (m *Metrics) ObserveEndpointLatency(endpoint string, seconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(seconds)
}
