package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLoggerConfig configures the GORM zap logger.
type GormLoggerConfig struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration
}

// GormLoggerConfigFor maps the application log level onto GORM levels.
// Statements are only traced at debug.
func GormLoggerConfigFor(level string) GormLoggerConfig {
	cfg := GormLoggerConfig{Level: gormlogger.Warn, SlowThreshold: 200 * time.Millisecond}
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		cfg.Level = gormlogger.Info
	case "error":
		cfg.Level = gormlogger.Error
	}
	return cfg
}

// GormLogger routes GORM output through zap with the request's correlation
// fields. Bound parameters are never logged.
type GormLogger struct {
	cfg GormLoggerConfig
}

func NewGormLogger(cfg GormLoggerConfig) *GormLogger {
	return &GormLogger{cfg: cfg}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.cfg.Level = level
	return &next
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) message(ctx context.Context, threshold gormlogger.LogLevel, level zapcore.Level, msg string, data []interface{}) {
	if l.cfg.Level < threshold {
		return
	}
	if ce := FromContext(ctx).Check(level, msg); ce != nil {
		ce.Write(zap.String("component", "gorm"), zap.Any("data", data))
	}
}

// Trace logs failed statements as errors and slow ones as warnings.
// Missing rows and unique violations are expected outcomes of slug lookups
// and upserts, so they only show up at debug.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.cfg.Level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	level := zapcore.DebugLevel
	switch {
	case err != nil && !expectedQueryError(err):
		level = zapcore.ErrorLevel
	case err == nil && l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold:
		level = zapcore.WarnLevel
	case l.cfg.Level < gormlogger.Info:
		return
	}
	if level == zapcore.ErrorLevel && l.cfg.Level < gormlogger.Error {
		return
	}

	ce := FromContext(ctx).Check(level, "gorm.query")
	if ce == nil {
		return
	}
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("component", "gorm"),
		zap.String("operation", operationFromSQL(sql)),
		zap.String("sql", strings.TrimSpace(sql)),
		zap.Duration("duration", elapsed),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(fields...)
}

// ParamsFilter drops bound values; customer names and phones travel as params.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

func expectedQueryError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, gorm.ErrDuplicatedKey)
}

// operationFromSQL returns the first top-level DML verb, so a CTE reports the
// statement it feeds rather than its inner SELECT.
func operationFromSQL(sql string) string {
	depth := 0
	top := strings.Map(func(r rune) rune {
		switch {
		case r == '(':
			depth++
			return ' '
		case r == ')':
			depth--
			return ' '
		case depth > 0:
			return -1
		}
		return r
	}, strings.ToUpper(sql))

	for _, token := range strings.Fields(top) {
		switch token = strings.TrimSuffix(token, ";"); token {
		case "SELECT", "INSERT", "UPDATE", "DELETE":
			return token
		}
	}
	return "UNKNOWN"
}

var _ gormlogger.Interface = (*GormLogger)(nil)
