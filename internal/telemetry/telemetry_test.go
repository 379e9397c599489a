package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func resetGlobals() {
	tracer = nil
	tracerOnce = sync.Once{}
	tracerProvider = nil
	enabled = false
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "p4session", cfg.ServiceName)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	resetGlobals()
	defer resetGlobals()

	shutdown, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	resetGlobals()
	defer resetGlobals()

	tr := Tracer()
	require.NotNil(t, tr)

	_, span := tr.Start(context.Background(), "test")
	assert.False(t, span.IsRecording())
	span.End()
}

func TestStartSpan(t *testing.T) {
	resetGlobals()
	defer resetGlobals()

	ctx, span := StartSpan(context.Background(), SpanConnect)
	require.NotNil(t, ctx)
	require.NotNil(t, span)
	span.End()
}

func TestSpanStarters(t *testing.T) {
	resetGlobals()
	defer resetGlobals()

	t.Run("connect", func(t *testing.T) {
		ctx, span := StartConnectSpan(context.Background(), "perforce:1666", "alice")
		require.NotNil(t, ctx)
		span.End()
	})

	t.Run("login", func(t *testing.T) {
		ctx, span := StartLoginSpan(context.Background(), "alice", "password")
		require.NotNil(t, ctx)
		span.End()
	})

	t.Run("login status", func(t *testing.T) {
		ctx, span := StartLoginStatusSpan(context.Background(), "alice")
		require.NotNil(t, ctx)
		span.End()
	})
}

func TestSpanHelpers(t *testing.T) {
	resetGlobals()
	defer resetGlobals()

	ctx := context.Background()

	assert.NotPanics(t, func() {
		AddEvent(ctx, "cache_hit", CacheHitAttr(true))
		RecordError(ctx, errors.New("dial tcp: refused"))
		RecordError(ctx, nil)
		SetStatus(ctx, codes.Ok, "done")
		SetAttributes(ctx, UserAttr("alice"), ServerVersionAttr(20092))
	})
}

func TestTraceIDWithoutSpan(t *testing.T) {
	resetGlobals()
	defer resetGlobals()

	assert.Empty(t, TraceID(context.Background()))
	assert.Empty(t, SpanID(context.Background()))
}

func TestAttributeConstructors(t *testing.T) {
	assert.Equal(t, attribute.String(AttrUser, "alice"), UserAttr("alice"))
	assert.Equal(t, attribute.String(AttrServerAddress, "p:1666"), ServerAddressAttr("p:1666"))
	assert.Equal(t, attribute.String(AttrCredentialType, "ticket"), CredentialTypeAttr("ticket"))
	assert.Equal(t, attribute.Bool(AttrCacheHit, true), CacheHitAttr(true))
	assert.Equal(t, attribute.Int(AttrConnectAttempts, 3), ConnectAttemptsAttr(3))
	assert.Equal(t, attribute.Int(AttrServerVersion, 20092), ServerVersionAttr(20092))
}

func TestDefaultProfilingConfig(t *testing.T) {
	cfg := DefaultProfilingConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "p4session", cfg.ServiceName)
	assert.Equal(t, "http://localhost:4040", cfg.Endpoint)
}

func TestInitProfilingDisabled(t *testing.T) {
	shutdown, err := InitProfiling(ProfilingConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown())
}

func TestParseProfileType(t *testing.T) {
	valid := []string{
		"cpu", "alloc_objects", "alloc_space", "inuse_objects",
		"inuse_space", "goroutines", "mutex_count", "mutex_duration",
		"block_count", "block_duration",
	}
	for _, name := range valid {
		t.Run(name, func(t *testing.T) {
			_, err := parseProfileType(name)
			assert.NoError(t, err)
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := parseProfileType("heap_dump")
		assert.Error(t, err)
	})
}
