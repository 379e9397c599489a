package logger

import (
	"log/slog"
	"time"
)

// Standard field keys. Using these constants keeps log output
// consistent and greppable across packages.
const (
	// Tracing correlation
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// Session identity
	KeySessionID = "session_id"
	KeyUser      = "user"
	KeyAddress   = "address"
	KeyCredType  = "cred_type"

	// Command execution
	KeyCommand    = "command"
	KeyAttempt    = "attempt"
	KeyMaxRetries = "max_retries"
	KeyBackoff    = "backoff"
	KeyDurationMs = "duration_ms"
	KeyError      = "error"

	// Login state
	KeyCacheHit  = "cache_hit"
	KeyExpiresAt = "expires_at"

	// Server properties
	KeyCharset       = "charset"
	KeyServerVersion = "server_version"
	KeyTicketsFile   = "tickets_file"
	KeyIgnoreFile    = "ignore_file"

	// Filesystem watching
	KeyPath         = "path"
	KeyPollInterval = "poll_interval"
)

// TraceID returns a trace-ID attribute.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a span-ID attribute.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// SessionID returns a session-ID attribute.
func SessionID(id string) slog.Attr {
	return slog.String(KeySessionID, id)
}

// User returns a user-name attribute.
func User(name string) slog.Attr {
	return slog.String(KeyUser, name)
}

// Address returns a server-address attribute.
func Address(addr string) slog.Attr {
	return slog.String(KeyAddress, addr)
}

// CredType returns a credential-type attribute.
func CredType(t string) slog.Attr {
	return slog.String(KeyCredType, t)
}

// Command returns a command-name attribute.
func Command(name string) slog.Attr {
	return slog.String(KeyCommand, name)
}

// Attempt returns a connection-attempt attribute.
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// Backoff returns a backoff-delay attribute.
func Backoff(d time.Duration) slog.Attr {
	return slog.Duration(KeyBackoff, d)
}

// Duration returns the elapsed time since start as a float64
// millisecond attribute, matching the JSON output expected by log
// dashboards.
func Duration(start time.Time) slog.Attr {
	return slog.Float64(KeyDurationMs, float64(time.Since(start).Microseconds())/1000.0)
}

// Err returns an error attribute, or the empty attribute when err is
// nil so it vanishes from output.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// CacheHit returns a cache-hit attribute.
func CacheHit(hit bool) slog.Attr {
	return slog.Bool(KeyCacheHit, hit)
}

// ExpiresAt returns a ticket-expiry attribute.
func ExpiresAt(t time.Time) slog.Attr {
	return slog.Time(KeyExpiresAt, t)
}

// ServerVersion returns a server-version attribute.
func ServerVersion(v int) slog.Attr {
	return slog.Int(KeyServerVersion, v)
}

// Path returns a file-path attribute.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}
