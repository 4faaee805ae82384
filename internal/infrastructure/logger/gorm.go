package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// QueryOutcome says how loudly a failed statement should be logged
type QueryOutcome int

const (
	// OutcomeFailure is an unexpected failure, logged at error
	OutcomeFailure QueryOutcome = iota
	// OutcomeExpected is a constraint hit the caller turns into a domain error, logged at debug
	OutcomeExpected
	// OutcomeContention is a lock or statement timeout the caller may retry, logged at warn
	OutcomeContention
)

// ErrorClassifier maps a driver error to a QueryOutcome
type ErrorClassifier func(error) QueryOutcome

// GormLogger routes GORM statements and messages to zap
type GormLogger struct {
	logger        *zap.Logger
	logLevel      gormlogger.LogLevel
	slowThreshold time.Duration
	classify      ErrorClassifier
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold logs statements slower than threshold at warn; zero disables it
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slowThreshold = threshold }
}

// WithErrorClassifier replaces the default classifier, which only knows GORM's translated errors
func WithErrorClassifier(fn ErrorClassifier) GormLoggerOption {
	return func(l *GormLogger) {
		if fn != nil {
			l.classify = fn
		}
	}
}

// NewGormLogger creates a GORM logger writing to zapLogger
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{
		logger:        zapLogger,
		logLevel:      level,
		slowThreshold: 200 * time.Millisecond,
		classify:      defaultClassifier,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func defaultClassifier(err error) QueryOutcome {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return OutcomeExpected
	}
	return OutcomeFailure
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.logLevel = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.message(gormlogger.Info, zapcore.InfoLevel, msg, data)
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.message(gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.message(gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) message(min gormlogger.LogLevel, level zapcore.Level, msg string, data []any) {
	if l.logLevel < min {
		return
	}
	l.logger.Sugar().Logf(level, msg, data...)
}

// Trace implements gormlogger.Interface and logs one executed statement
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}
	if err != nil && errors.Is(err, gormlogger.ErrRecordNotFound) {
		// lookups report misses as NotFound themselves
		err = nil
	}

	elapsed := time.Since(begin)
	slow := l.slowThreshold > 0 && elapsed > l.slowThreshold
	switch {
	case err != nil && l.logLevel >= gormlogger.Error:
	case slow && l.logLevel >= gormlogger.Warn:
	case l.logLevel >= gormlogger.Info:
	default:
		return
	}

	sql, rows := fc()
	fields := append([]zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}, Fields(ctx)...)

	switch {
	case err != nil:
		fields = append(fields, zap.Error(err))
		switch l.classify(err) {
		case OutcomeExpected:
			l.logger.Debug("SQL constraint violation", fields...)
		case OutcomeContention:
			l.logger.Warn("SQL lock contention", fields...)
		default:
			l.logger.Error("SQL error", fields...)
		}
	case slow:
		l.logger.Warn("Slow SQL", append(fields, zap.Duration("threshold", l.slowThreshold))...)
	default:
		l.logger.Debug("SQL query", fields...)
	}
}

// MapGormLogLevel maps a config log level to GORM's
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
