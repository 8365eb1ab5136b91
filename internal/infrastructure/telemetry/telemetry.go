// Package telemetry wires OpenTelemetry traces, metrics and logs exported over OTLP/gRPC.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marketplace/portal/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	serviceVersion  = "1.0.0"
	metricsInterval = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Providers owns the SDK providers created at startup. Nil fields mean the
// signal is disabled and the global no-op implementation is in use.
type Providers struct {
	cfg    config.TelemetryConfig
	tracer *sdktrace.TracerProvider
	meter  *sdkmetric.MeterProvider
	logs   *sdklog.LoggerProvider
	logger *zap.Logger
}

// Setup creates the providers enabled in cfg and installs them globally.
// The W3C propagator is always installed so request ids and trace context
// reach the backend even with export disabled.
func Setup(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Providers, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	p := &Providers{cfg: cfg, logger: logger}
	if !cfg.Enabled {
		logger.Info("Telemetry disabled")
		return p, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(serviceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := p.setupTraces(ctx, res); err != nil {
		return nil, err
	}
	if cfg.MetricsEnabled {
		if err := p.setupMetrics(ctx, res); err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
	}
	if cfg.LogsEnabled {
		if err := p.setupLogs(ctx, res); err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
	}

	logger.Info("Telemetry initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
		zap.Bool("metrics", cfg.MetricsEnabled),
		zap.Bool("logs", cfg.LogsEnabled),
	)
	return p, nil
}

// Sampler picks a sampler for ratio, short-circuiting the two extremes
func Sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	case ratio <= 0:
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

func (p *Providers) setupTraces(ctx context.Context, res *resource.Resource) error {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(p.cfg.CollectorEndpoint)}
	if p.cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}
	p.tracer = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(Sampler(p.cfg.SamplingRatio)),
	)
	otel.SetTracerProvider(p.tracer)
	return nil
}

func (p *Providers) setupMetrics(ctx context.Context, res *resource.Resource) error {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(p.cfg.CollectorEndpoint)}
	if p.cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create metrics exporter: %w", err)
	}
	p.meter = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(metricsInterval))),
	)
	otel.SetMeterProvider(p.meter)
	return nil
}

func (p *Providers) setupLogs(ctx context.Context, res *resource.Resource) error {
	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(p.cfg.CollectorEndpoint)}
	if p.cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create logs exporter: %w", err)
	}
	p.logs = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(p.logs)
	return nil
}

// TracingEnabled reports whether spans are exported
func (p *Providers) TracingEnabled() bool {
	return p.tracer != nil
}

// MetricsEnabled reports whether metrics are exported
func (p *Providers) MetricsEnabled() bool {
	return p.meter != nil
}

// Meter returns a meter from the installed provider, or the global one
func (p *Providers) Meter(name string) metric.Meter {
	if p.meter != nil {
		return p.meter.Meter(name)
	}
	return otel.Meter(name)
}

// ZapCore returns a core that forwards records at level and above to the
// OTLP log exporter. It is a no-op core when log export is off.
func (p *Providers) ZapCore(level zapcore.Level) zapcore.Core {
	if p.logs == nil {
		return zapcore.NewNopCore()
	}
	return &levelCore{
		Core: otelzap.NewCore(p.cfg.ServiceName, otelzap.WithLoggerProvider(p.logs)),
		min:  level,
	}
}

// levelCore puts a floor under otelzap's core, which has none of its own
type levelCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *levelCore) Enabled(l zapcore.Level) bool {
	return l >= c.min && c.Core.Enabled(l)
}

func (c *levelCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

func (c *levelCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelCore{Core: c.Core.With(fields), min: c.min}
}

// Shutdown flushes and stops every provider that was started
func (p *Providers) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if p.tracer != nil {
		errs = append(errs, p.tracer.Shutdown(ctx))
	}
	if p.meter != nil {
		errs = append(errs, p.meter.Shutdown(ctx))
	}
	if p.logs != nil {
		errs = append(errs, p.logs.Shutdown(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		p.logger.Error("Telemetry shutdown failed", zap.Error(err))
		return fmt.Errorf("telemetry shutdown: %w", err)
	}
	return nil
}
