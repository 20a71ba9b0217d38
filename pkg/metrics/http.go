package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request counts and latency per route. Every metric
// method is safe on a nil receiver so handlers never guard for a disabled
// collector.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	signings *prometheus.CounterVec
}

// NewHTTPMetrics registers the request metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served, by route and status class.",
	}, []string{"route", "method", "status"})
	signings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "consent_signings_total",
		Help: "Consent form signings accepted, by studio.",
	}, []string{"studio"})
	reg.MustRegister(duration, requests, signings)
	return &HTTPMetrics{
		duration: duration,
		requests: requests,
		signings: signings,
	}
}

// ObserveRequest records one served request.
func (m *HTTPMetrics) ObserveRequest(route, method, status string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	route = normalizeLabel(route)
	m.duration.WithLabelValues(route, method).Observe(duration.Seconds())
	m.requests.WithLabelValues(route, method, status).Inc()
}

// IncSigning counts an accepted consent signing for the studio.
func (m *HTTPMetrics) IncSigning(studioSlug string) {
	if m == nil || m.signings == nil {
		return
	}
	m.signings.WithLabelValues(normalizeLabel(studioSlug)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
