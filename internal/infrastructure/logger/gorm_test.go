package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFn() (string, int64) { return "SELECT 1", 1 }

func TestGormLogger_Trace(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info, 100*time.Millisecond)
	ctx := WithRequestID(context.Background(), "req-7")

	gl.Trace(ctx, time.Now(), sqlFn, nil)
	gl.Trace(ctx, time.Now().Add(-time.Second), sqlFn, nil)
	gl.Trace(ctx, time.Now(), sqlFn, errors.New("boom"))
	gl.Trace(ctx, time.Now(), sqlFn, gormlogger.ErrRecordNotFound)

	assert.Equal(t, 1, recorded.FilterMessage("Slow SQL").Len())
	assert.Equal(t, 1, recorded.FilterMessage("SQL error").Len())
	assert.Equal(t, 2, recorded.FilterMessage("SQL").Len(), "record-not-found is logged as a plain query")
	assert.Equal(t, "req-7", recorded.All()[0].ContextMap()["request_id"])
}

func TestGormLogger_Silent(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info, 0).LogMode(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), sqlFn, errors.New("boom"))
	gl.Info(context.Background(), "x")
	assert.Zero(t, recorded.Len())
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
	assert.Equal(t, gormlogger.Warn, GormLevel("info"))
}
