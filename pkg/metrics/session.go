package metrics

import (
	"github.com/helixkit/p4session/pkg/session"
)

// NewSessionMetrics creates a Prometheus-backed session.Metrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// When nil is returned, callers should pass nil to session.Options,
// which results in zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	metrics.InitRegistry()
//	helper, err := session.New(ctx, cfg, cred, session.Options{
//		Metrics: metrics.NewSessionMetrics(),
//	})
//
//	// Without metrics (zero overhead)
//	helper, err := session.New(ctx, cfg, cred, session.Options{})
func NewSessionMetrics() session.Metrics {
	if !IsEnabled() {
		return nil
	}
	if newPrometheusSessionMetrics == nil {
		return nil
	}
	return newPrometheusSessionMetrics()
}

// newPrometheusSessionMetrics is implemented in pkg/metrics/prometheus.
// The indirection keeps this package free of a dependency on the
// implementation while letting callers stay on the interface type.
var newPrometheusSessionMetrics func() session.Metrics

// RegisterSessionMetricsConstructor registers the Prometheus session
// metrics constructor. Called by pkg/metrics/prometheus during package
// initialization; applications select the implementation with a blank
// import:
//
//	import _ "github.com/helixkit/p4session/pkg/metrics/prometheus"
func RegisterSessionMetricsConstructor(constructor func() session.Metrics) {
	newPrometheusSessionMetrics = constructor
}
