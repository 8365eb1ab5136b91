package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
	vendorIDKey  contextKey = "vendor_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the request id; the backend client forwards it
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithPrincipal stores the caller's user and vendor ids for log correlation
func WithPrincipal(ctx context.Context, userID, vendorID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	if vendorID != "" {
		ctx = context.WithValue(ctx, vendorIDKey, vendorID)
	}
	return ctx
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// GetUserID retrieves user ID from context
func GetUserID(ctx context.Context) string {
	return stringValue(ctx, userIDKey)
}

// GetVendorID retrieves vendor ID from context
func GetVendorID(ctx context.Context) string {
	return stringValue(ctx, vendorIDKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// GetTraceID returns the active trace id, or "" without a valid span
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// L returns the context logger enriched with trace, request and caller ids.
//
//	logger.L(ctx).Info("import forwarded", zap.String("kind", "products"))
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)
	fields := make([]zap.Field, 0, 5)

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	for _, k := range []contextKey{requestIDKey, userIDKey, vendorIDKey} {
		if v := stringValue(ctx, k); v != "" {
			fields = append(fields, zap.String(string(k), v))
		}
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
