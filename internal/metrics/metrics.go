package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"didvault/internal/domain"
)

const namespace = "didvault"

// Relay job outcomes.
const (
	RelayOK      = "ok"
	RelayFailed  = "failed"
	RelayDropped = "dropped"
)

// Metrics holds the service collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	RateLimited  prometheus.Counter
	VaultOps     *prometheus.CounterVec
	PinDuration  *prometheus.HistogramVec
	RelayJobs    *prometheus.CounterVec
}

// New creates and registers all collectors, plus the Go and process
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		}),
		VaultOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vault_operations_total",
			Help:      "Vault operations by operation and result.",
		}, []string{"op", "result"}),
		PinDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pin_duration_seconds",
			Help:      "Latency of pinning calls by result.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"result"}),
		RelayJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_jobs_total",
			Help:      "Relay jobs by outcome.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.HTTPRequests, m.HTTPDuration, m.RateLimited,
		m.VaultOps, m.PinDuration, m.RelayJobs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RegisterIdentityGauge exposes the number of active identities.
func (m *Metrics) RegisterIdentityGauge(count func() int) {
	if m == nil {
		return
	}
	m.Registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "identities_active",
		Help:      "Identities currently held by the vault.",
	}, func() float64 { return float64(count()) }))
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, code).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveRateLimited counts a rejected request.
func (m *Metrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

// ObserveVaultOp records the outcome of a vault operation.
func (m *Metrics) ObserveVaultOp(op string, err error) {
	if m == nil {
		return
	}
	m.VaultOps.WithLabelValues(op, Result(err)).Inc()
}

// ObservePin records a pinning call.
func (m *Metrics) ObservePin(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.PinDuration.WithLabelValues(Result(err)).Observe(d.Seconds())
}

// ObserveRelay records a relay job outcome.
func (m *Metrics) ObserveRelay(result string) {
	if m == nil {
		return
	}
	m.RelayJobs.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Result maps an error to a low-cardinality label value.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, domain.ErrMalformedBlob):
		return "malformed_blob"
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return "authentication_failed"
	case errors.Is(err, domain.ErrTransportFailure):
		return "transport_failure"
	default:
		return "error"
	}
}
