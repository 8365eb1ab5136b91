package telemetry

import (
	"context"
	"testing"

	"github.com/marketplace/portal/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetup_Disabled(t *testing.T) {
	p, err := Setup(context.Background(), config.TelemetryConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.TracingEnabled())
	assert.False(t, p.MetricsEnabled())
	assert.NotNil(t, p.Meter("test"))
	assert.False(t, p.ZapCore(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, p.Shutdown(context.Background()))

	// propagation still works so trace headers reach the backend
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(context.Background(), carrier)
	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), Sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), Sampler(0).Description())
	assert.Contains(t, Sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestZapCore_LevelFloor(t *testing.T) {
	lp := sdklog.NewLoggerProvider()
	defer lp.Shutdown(context.Background())

	p := &Providers{cfg: config.TelemetryConfig{ServiceName: "portal"}, logs: lp, logger: zap.NewNop()}
	core := p.ZapCore(zapcore.WarnLevel)

	assert.False(t, core.Enabled(zapcore.InfoLevel))

	child := core.With([]zapcore.Field{zap.String("k", "v")})
	assert.False(t, child.Enabled(zapcore.DebugLevel))
	assert.Nil(t, child.Check(zapcore.Entry{Level: zapcore.InfoLevel}, nil))
}
