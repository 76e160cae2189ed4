package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

const DefaultSlowQueryThreshold = 200 * time.Millisecond

// SQLLogger adapts gorm's logger to zap and writes one structured entry per statement.
type SQLLogger struct {
	zap           *zap.Logger
	level         logger.LogLevel
	slowThreshold time.Duration
	traceAll      bool
}

// NewSQLLogger logs every statement when traceAll is set, otherwise only failures and slow queries.
func NewSQLLogger(z *zap.Logger, level logger.LogLevel, slowThreshold time.Duration, traceAll bool) *SQLLogger {
	return &SQLLogger{
		zap:           z,
		level:         level,
		slowThreshold: slowThreshold,
		traceAll:      traceAll,
	}
}

func (l *SQLLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *SQLLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Info {
		l.zap.Info("[SQL] "+fmt.Sprintf(msg, data...), traceFields(ctx)...)
	}
}

func (l *SQLLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Warn {
		l.zap.Warn("[SQL] "+fmt.Sprintf(msg, data...), traceFields(ctx)...)
	}
}

func (l *SQLLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Error {
		l.zap.Error("[SQL] "+fmt.Sprintf(msg, data...), traceFields(ctx)...)
	}
}

func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, logger.ErrRecordNotFound)
	slow := l.slowThreshold > 0 && elapsed > l.slowThreshold

	if !failed && !slow && !(l.traceAll && l.level >= logger.Info) {
		return
	}

	sql, rows := fc()
	fields := append(traceFields(ctx),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
		zap.String("caller", utils.FileWithLineNum()),
	)

	switch {
	case failed && l.level >= logger.Error:
		l.zap.Error("[SQL] query failed", append(fields, zap.Error(err))...)
	case slow && l.level >= logger.Warn:
		l.zap.Warn("[SQL] slow query", append(fields, zap.Duration("threshold", l.slowThreshold))...)
	case l.traceAll && l.level >= logger.Info:
		l.zap.Info("[SQL] query", fields...)
	}
}

func traceFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{zap.String("trace_id", sc.TraceID().String())}
}
