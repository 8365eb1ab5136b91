package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext_DefaultsToNop(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	l.Info("dropped")
}

func TestL_EnrichesWithContextValues(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithPrincipal(ctx, "user-9", "vendor-3")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	L(ctx).Info("import forwarded")

	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "user-9", fields["user_id"])
	assert.Equal(t, "vendor-3", fields["vendor_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(ctx))
}

func TestWithPrincipal_NoVendor(t *testing.T) {
	ctx := WithPrincipal(context.Background(), "admin-1", "")
	assert.Equal(t, "admin-1", GetUserID(ctx))
	assert.Empty(t, GetVendorID(ctx))
	assert.Empty(t, GetTraceID(ctx))
}
