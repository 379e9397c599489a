package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span names for session operations.
const (
	SpanConnect     = "session.connect"
	SpanLogin       = "session.login"
	SpanLoginStatus = "session.login_status"
	SpanLogout      = "session.logout"
	SpanTicket      = "session.ticket"
	SpanTrust       = "session.trust"
)

// Attribute keys for session spans.
const (
	AttrUser            = "session.user"
	AttrServerAddress   = "server.address"
	AttrCredentialType  = "credential.type"
	AttrCacheHit        = "cache.hit"
	AttrConnectAttempts = "connect.attempts"
	AttrServerVersion   = "server.version"
)

// UserAttr returns the session user attribute.
func UserAttr(user string) attribute.KeyValue {
	return attribute.String(AttrUser, user)
}

// ServerAddressAttr returns the server address attribute.
func ServerAddressAttr(addr string) attribute.KeyValue {
	return attribute.String(AttrServerAddress, addr)
}

// CredentialTypeAttr returns the credential type attribute.
func CredentialTypeAttr(t string) attribute.KeyValue {
	return attribute.String(AttrCredentialType, t)
}

// CacheHitAttr returns the cache hit attribute.
func CacheHitAttr(hit bool) attribute.KeyValue {
	return attribute.Bool(AttrCacheHit, hit)
}

// ConnectAttemptsAttr returns the connect attempt count attribute.
func ConnectAttemptsAttr(n int) attribute.KeyValue {
	return attribute.Int(AttrConnectAttempts, n)
}

// ServerVersionAttr returns the server version attribute.
func ServerVersionAttr(v int) attribute.KeyValue {
	return attribute.Int(AttrServerVersion, v)
}

// StartConnectSpan starts a span covering one connection attempt
// sequence against addr.
func StartConnectSpan(ctx context.Context, addr, user string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanConnect,
		trace.WithAttributes(
			ServerAddressAttr(addr),
			UserAttr(user),
		),
	)
}

// StartLoginSpan starts a span covering an authentication exchange.
func StartLoginSpan(ctx context.Context, user, credType string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanLogin,
		trace.WithAttributes(
			UserAttr(user),
			CredentialTypeAttr(credType),
		),
	)
}

// StartLoginStatusSpan starts a span covering a login status query.
func StartLoginStatusSpan(ctx context.Context, user string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanLoginStatus,
		trace.WithAttributes(UserAttr(user)),
	)
}
