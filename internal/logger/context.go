package logger

import (
	"context"
	"time"
)

// LogContext carries request-scoped fields through a context.Context
// so every log line emitted during one session operation shares the
// same correlation data.
type LogContext struct {
	// Tracing correlation
	TraceID string
	SpanID  string

	// Session identity
	SessionID string
	User      string
	Address   string

	// Current operation
	Command   string
	StartTime time.Time
}

type contextKey struct{}

// WithContext returns a context carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, contextKey{}, lc)
}

// FromContext extracts the LogContext from ctx, or nil when ctx is nil
// or carries none.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(contextKey{}).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext stamped with the current time.
func NewLogContext() *LogContext {
	return &LogContext{StartTime: time.Now()}
}

// Clone returns a copy of lc, or nil when lc is nil. Copies are used
// when one session operation fans out so sub-operations can adjust
// fields without racing.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	cp := *lc
	return &cp
}

// WithCommand returns a copy of lc with the command name set.
func (lc *LogContext) WithCommand(name string) *LogContext {
	cp := lc.Clone()
	if cp == nil {
		cp = NewLogContext()
	}
	cp.Command = name
	return cp
}

// WithSession returns a copy of lc with session identity set.
func (lc *LogContext) WithSession(sessionID, user, address string) *LogContext {
	cp := lc.Clone()
	if cp == nil {
		cp = NewLogContext()
	}
	cp.SessionID = sessionID
	cp.User = user
	cp.Address = address
	return cp
}

// WithTrace returns a copy of lc with tracing correlation IDs set.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	cp := lc.Clone()
	if cp == nil {
		cp = NewLogContext()
	}
	cp.TraceID = traceID
	cp.SpanID = spanID
	return cp
}

// DurationMs returns the elapsed milliseconds since StartTime, or 0
// when unset.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}

// fields returns the populated fields as alternating key-value pairs
// for slog.
func (lc *LogContext) fields() []any {
	if lc == nil {
		return nil
	}
	out := make([]any, 0, 14)
	if lc.TraceID != "" {
		out = append(out, KeyTraceID, lc.TraceID)
	}
	if lc.SpanID != "" {
		out = append(out, KeySpanID, lc.SpanID)
	}
	if lc.SessionID != "" {
		out = append(out, KeySessionID, lc.SessionID)
	}
	if lc.User != "" {
		out = append(out, KeyUser, lc.User)
	}
	if lc.Address != "" {
		out = append(out, KeyAddress, lc.Address)
	}
	if lc.Command != "" {
		out = append(out, KeyCommand, lc.Command)
	}
	return out
}
