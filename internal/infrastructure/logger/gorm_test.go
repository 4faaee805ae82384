package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var _ gormlogger.Interface = (*GormLogger)(nil)

func newObservedGorm(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func statement(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_LogMode(t *testing.T) {
	gormLog, _ := newObservedGorm(gormlogger.Info)
	quiet, ok := gormLog.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)

	assert.Equal(t, gormlogger.Info, gormLog.logLevel, "original is unchanged")
	assert.Equal(t, gormlogger.Warn, quiet.logLevel)
}

func TestGormLogger_Messages(t *testing.T) {
	gormLog, recorded := newObservedGorm(gormlogger.Warn)
	ctx := context.Background()

	gormLog.Info(ctx, "dropped %s", "info")
	gormLog.Warn(ctx, "index %s missing", "idx_products_title")
	gormLog.Error(ctx, "pool exhausted")

	logs := recorded.All()
	require.Len(t, logs, 2)
	assert.Equal(t, "index idx_products_title missing", logs[0].Message)
	assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, logs[1].Level)
}

func TestGormLogger_Trace(t *testing.T) {
	lockTimeout := errors.New("canceling statement due to lock timeout")
	classify := func(err error) QueryOutcome {
		if errors.Is(err, lockTimeout) {
			return OutcomeContention
		}
		return defaultClassifier(err)
	}

	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		elapsed time.Duration
		err     error
		message string
		zapLvl  zapcore.Level
	}{
		{"query at info", gormlogger.Info, 0, nil, "SQL query", zapcore.DebugLevel},
		{"query below info", gormlogger.Warn, 0, nil, "", 0},
		{"slow query", gormlogger.Warn, time.Second, nil, "Slow SQL", zapcore.WarnLevel},
		{"slow query below warn", gormlogger.Error, time.Second, nil, "", 0},
		{"failure", gormlogger.Error, 0, errors.New("connection reset"), "SQL error", zapcore.ErrorLevel},
		{"duplicate asin", gormlogger.Error, 0, gorm.ErrDuplicatedKey, "SQL constraint violation", zapcore.DebugLevel},
		{"lock timeout", gormlogger.Error, 0, lockTimeout, "SQL lock contention", zapcore.WarnLevel},
		{"record not found", gormlogger.Warn, 0, gormlogger.ErrRecordNotFound, "", 0},
		{"silent", gormlogger.Silent, time.Second, errors.New("boom"), "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gormLog, recorded := newObservedGorm(tt.level, WithErrorClassifier(classify))
			gormLog.Trace(context.Background(), time.Now().Add(-tt.elapsed), statement("SELECT * FROM products", 3), tt.err)

			if tt.message == "" {
				assert.Empty(t, recorded.All())
				return
			}
			logs := recorded.All()
			require.Len(t, logs, 1)
			assert.Equal(t, tt.message, logs[0].Message)
			assert.Equal(t, tt.zapLvl, logs[0].Level)
			assert.Equal(t, "SELECT * FROM products", logs[0].ContextMap()["sql"])
		})
	}
}

func TestGormLogger_Trace_DisabledSlowThreshold(t *testing.T) {
	gormLog, recorded := newObservedGorm(gormlogger.Warn, WithSlowThreshold(0))
	gormLog.Trace(context.Background(), time.Now().Add(-time.Hour), statement("SELECT 1", 1), nil)
	assert.Empty(t, recorded.All())
}

func TestGormLogger_Trace_CarriesRequestID(t *testing.T) {
	gormLog, recorded := newObservedGorm(gormlogger.Info)
	ctx := ContextWithRequestID(context.Background(), "req-42")

	gormLog.Trace(ctx, time.Now(), statement("UPDATE orders SET status = ?", 1), nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "req-42", logs[0].ContextMap()["request_id"])
	assert.EqualValues(t, 1, logs[0].ContextMap()["rows"])
}

func TestMapGormLogLevel(t *testing.T) {
	tests := map[string]gormlogger.LogLevel{
		"silent":  gormlogger.Silent,
		"error":   gormlogger.Error,
		"warn":    gormlogger.Warn,
		"info":    gormlogger.Info,
		"debug":   gormlogger.Info,
		"verbose": gormlogger.Warn,
		"":        gormlogger.Warn,
	}
	for level, want := range tests {
		assert.Equal(t, want, MapGormLogLevel(level), level)
	}
}
