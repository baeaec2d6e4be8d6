package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for the session service. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	errors           *prometheus.CounterVec
	credentialChoice *prometheus.CounterVec
	guardDecisions   *prometheus.CounterVec
	remoteChecks     *prometheus.CounterVec
	normalizations   *prometheus.CounterVec
}

// NewMetrics registers collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_errors_total",
			Help: "Rendered API errors by route, method and code.",
		}, []string{"route", "method", "code"}),
		credentialChoice: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_credential_selections_total",
			Help: "Credential selections by chosen kind (ACCESS, SESSION or none).",
		}, []string{"kind"}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_guard_decisions_total",
			Help: "Navigation decisions by outcome and reason.",
		}, []string{"outcome", "reason"}),
		remoteChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_remote_checks_total",
			Help: "Remote session checks by result.",
		}, []string{"result"}),
		normalizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_identity_normalizations_total",
			Help: "Identity normalizations by detected record variant.",
		}, []string{"variant"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.requests,
			m.requestDuration,
			m.errors,
			m.credentialChoice,
			m.guardDecisions,
			m.remoteChecks,
			m.normalizations,
		)
	}
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordCredentialSelection counts which credential kind was presented.
func (m *Metrics) RecordCredentialSelection(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "none"
	}
	m.credentialChoice.WithLabelValues(kind).Inc()
}

// RecordGuardDecision counts allow and redirect outcomes.
func (m *Metrics) RecordGuardDecision(allowed bool, reason string) {
	if m == nil {
		return
	}
	outcome := "redirect"
	if allowed {
		outcome = "allow"
	}
	m.guardDecisions.WithLabelValues(outcome, reason).Inc()
}

// RecordRemoteCheck counts remote check results: live, rejected, error or cancelled.
func (m *Metrics) RecordRemoteCheck(result string) {
	if m == nil {
		return
	}
	m.remoteChecks.WithLabelValues(result).Inc()
}

// RecordNormalization counts normalized records per variant.
func (m *Metrics) RecordNormalization(variant string) {
	if m == nil {
		return
	}
	m.normalizations.WithLabelValues(variant).Inc()
}
