package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// durationBuckets cover a BFF that mostly waits on the backend
var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

type httpMetrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	responseSize    metric.Int64Histogram
	activeRequests  metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	requestTotal, err := meter.Int64Counter("http_server_request_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}
	requestDuration, err := meter.Float64Histogram("http_server_request_duration_seconds",
		metric.WithDescription("HTTP request latency distribution in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...))
	if err != nil {
		return nil, err
	}
	responseSize, err := meter.Int64Histogram("http_server_response_size_bytes",
		metric.WithDescription("HTTP response body size distribution in bytes"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(100, 1000, 10000, 100000, 1000000, 5000000))
	if err != nil {
		return nil, err
	}
	activeRequests, err := meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Number of currently active HTTP requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}
	return &httpMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		responseSize:    responseSize,
		activeRequests:  activeRequests,
	}, nil
}

// HTTPMetrics records request count, latency, response size and in-flight
// requests. A nil meter, or one whose instruments cannot be created, yields a
// pass-through middleware.
func HTTPMetrics(meter metric.Meter, log *zap.Logger) gin.HandlerFunc {
	if meter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	m, err := newHTTPMetrics(meter)
	if err != nil {
		if log != nil {
			log.Warn("HTTP metrics disabled", zap.Error(err))
		}
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		m.activeRequests.Add(ctx, 1)
		c.Next()
		m.activeRequests.Add(ctx, -1)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		base := []attribute.KeyValue{
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.route", route),
		}
		withStatus := append(base[:len(base):len(base)],
			attribute.Int("http.response.status_code", c.Writer.Status()))
		if p, ok := GetPrincipal(c); ok {
			withStatus = append(withStatus, attribute.String("role", string(p.Role)))
		}

		m.requestTotal.Add(ctx, 1, metric.WithAttributes(withStatus...))
		m.requestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(base...))
		if size := c.Writer.Size(); size > 0 {
			m.responseSize.Record(ctx, int64(size), metric.WithAttributes(base...))
		}
	}
}
