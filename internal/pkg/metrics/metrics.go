// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "referee_dashboard"

// Metrics holds the Prometheus collectors shared by the proxy, the
// aggregators and the auth flow. A nil *Metrics is valid and records nothing.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	CacheLookups     *prometheus.CounterVec
	Fallbacks        *prometheus.CounterVec
	Logins           *prometheus.CounterVec
	WSConnections    prometheus.Gauge
}

// New creates and registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		UpstreamRequests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Calls to the federation API by method and outcome",
			},
			[]string{"method", "outcome"}, // outcome=ok/config/upstream/transport/timeout/decode
		),
		UpstreamDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Federation API call latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		CacheLookups: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_cache_lookups_total",
				Help:      "GET response cache lookups",
			},
			[]string{"result"}, // hit/miss/error
		),
		Fallbacks: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dashboard_fallbacks_total",
				Help:      "Aggregator fallbacks to mock data by page",
			},
			[]string{"page"},
		),
		Logins: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Credential resolutions by method and result",
			},
			[]string{"method", "result"}, // method=operator/remote, result=ok/invalid/unavailable/limited
		),
		WSConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "websocket_connections",
				Help:      "Open session websocket connections",
			},
		),
	}
}

func (m *Metrics) ObserveUpstream(method, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(method, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(method).Observe(seconds)
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) Fallback(page string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(page).Inc()
}

func (m *Metrics) Login(method, result string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(method, result).Inc()
}

func (m *Metrics) WSConnected(delta float64) {
	if m == nil {
		return
	}
	m.WSConnections.Add(delta)
}
