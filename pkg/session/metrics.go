package session

import "time"

// Metrics receives session observability events. Implementations live
// outside this package (see pkg/metrics/prometheus); a nil Metrics
// disables recording entirely.
type Metrics interface {
	// RecordCacheLookup records one session-cache lookup and whether
	// it was served from the cache.
	RecordCacheLookup(hit bool)

	// RecordLogin records an authentication attempt: the credential
	// method, its outcome and wall time.
	RecordLogin(method string, success bool, duration time.Duration)

	// RecordConnect records a connection sequence: dial attempts
	// used, outcome and total wall time including backoff.
	RecordConnect(attempts int, success bool, duration time.Duration)

	// RecordLogout records a completed logout.
	RecordLogout()

	// RecordInvalidation records a cache invalidation and its reason
	// ("logout", "rotation", "manual").
	RecordInvalidation(reason string)
}
