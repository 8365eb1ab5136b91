package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// TracingWithConfig wraps otelgin; health probes are not traced.
// otelgin runs the rest of the chain itself, so caller attributes are added
// by CallerSpanAttributes further down.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return otelgin.Middleware(cfg.ServiceName,
		otelgin.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	)
}

// CallerSpanAttributes tags the active span with the request id and, on
// authenticated routes, the caller. Place it after the JWT middleware.
func CallerSpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			attrs := make([]attribute.KeyValue, 0, 4)
			if id := c.GetString("request_id"); id != "" {
				attrs = append(attrs, attribute.String("request_id", id))
			}
			if p, ok := GetPrincipal(c); ok {
				attrs = append(attrs,
					attribute.String("user_id", p.UserID),
					attribute.String("role", string(p.Role)),
				)
				if p.VendorID != "" {
					attrs = append(attrs, attribute.String("vendor_id", p.VendorID))
				}
			}
			span.SetAttributes(attrs...)
		}
		c.Next()
	}
}

// SpanErrorMarker marks the span as failed on 5xx responses. A 4xx is the
// caller's problem and is only recorded as an attribute.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		status := c.Writer.Status()
		if status >= http.StatusBadRequest {
			span.SetAttributes(attribute.Int("http.response.status_code", status))
		}
		if status >= http.StatusInternalServerError {
			msg := http.StatusText(status)
			if len(c.Errors) > 0 {
				msg = c.Errors.Last().Error()
			}
			span.SetStatus(codes.Error, msg)
		}
	}
}
