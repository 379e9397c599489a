// Package prometheus provides the Prometheus implementation of the
// session metrics interface. Importing it (usually blank) registers the
// implementation with pkg/metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/helixkit/p4session/pkg/metrics"
	"github.com/helixkit/p4session/pkg/session"
)

func init() {
	metrics.RegisterSessionMetricsConstructor(NewSessionMetrics)
}

// sessionMetrics is the Prometheus implementation of session.Metrics.
type sessionMetrics struct {
	cacheLookups       *prometheus.CounterVec
	logins             *prometheus.CounterVec
	loginDuration      *prometheus.HistogramVec
	connects           *prometheus.CounterVec
	connectDuration    prometheus.Histogram
	connectAttempts    prometheus.Histogram
	logouts            prometheus.Counter
	cacheInvalidations *prometheus.CounterVec
}

var _ session.Metrics = (*sessionMetrics)(nil)

// NewSessionMetrics creates a Prometheus-backed session.Metrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// Construct at most once per registry: the collectors register
// themselves on creation.
func NewSessionMetrics() session.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &sessionMetrics{
		cacheLookups: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "p4session_cache_lookups_total",
				Help: "Total number of login cache lookups by result",
			},
			[]string{"result"},
		),
		logins: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "p4session_logins_total",
				Help: "Total number of login attempts by credential method and result",
			},
			[]string{"method", "result"},
		),
		loginDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "p4session_login_duration_seconds",
				Help: "Duration of login operations in seconds",
				Buckets: []float64{
					0.01, // 10ms - LAN round trip
					0.05, // 50ms
					0.1,  // 100ms
					0.25, // 250ms - WAN round trip
					0.5,  // 500ms
					1,    // 1s
					2.5,  // 2.5s - slow auth triggers
					5,    // 5s
					10,   // 10s - external auth worst case
				},
			},
			[]string{"method"},
		),
		connects: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "p4session_connects_total",
				Help: "Total number of connection attempts by result",
			},
			[]string{"result"},
		),
		connectDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "p4session_connect_duration_seconds",
				Help: "Duration of connection establishment in seconds, including retries",
				Buckets: []float64{
					0.01, // 10ms - local server
					0.05, // 50ms
					0.1,  // 100ms
					0.5,  // 500ms
					1,    // 1s - first retry
					5,    // 5s - second retry
					15,   // 15s
					60,   // 60s - retries exhausted
				},
			},
		),
		connectAttempts: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "p4session_connect_attempts",
				Help: "Distribution of dial attempts per connection",
				Buckets: []float64{
					1, // first attempt succeeded
					2,
					3,
					4,
					5,
				},
			},
		),
		logouts: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "p4session_logouts_total",
				Help: "Total number of logouts",
			},
		),
		cacheInvalidations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "p4session_cache_invalidations_total",
				Help: "Total number of login cache invalidations by reason",
			},
			[]string{"reason"},
		),
	}
}

func (m *sessionMetrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}

	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *sessionMetrics) RecordLogin(method string, success bool, duration time.Duration) {
	if m == nil {
		return
	}

	result := "failure"
	if success {
		result = "success"
	}
	m.logins.WithLabelValues(method, result).Inc()
	m.loginDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (m *sessionMetrics) RecordConnect(attempts int, success bool, duration time.Duration) {
	if m == nil {
		return
	}

	result := "failure"
	if success {
		result = "success"
	}
	m.connects.WithLabelValues(result).Inc()
	m.connectDuration.Observe(duration.Seconds())
	m.connectAttempts.Observe(float64(attempts))
}

func (m *sessionMetrics) RecordLogout() {
	if m == nil {
		return
	}
	m.logouts.Inc()
}

func (m *sessionMetrics) RecordInvalidation(reason string) {
	if m == nil {
		return
	}
	m.cacheInvalidations.WithLabelValues(reason).Inc()
}
