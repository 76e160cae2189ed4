package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm/logger"
)

func newObservedSQLLogger(level logger.LogLevel, traceAll bool) (*SQLLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewSQLLogger(zap.New(core), level, 50*time.Millisecond, traceAll), logs
}

func statement() (string, int64) { return "SELECT 1", 1 }

func TestSQLLoggerTrace(t *testing.T) {
	ctx := context.Background()

	l, logs := newObservedSQLLogger(logger.Info, true)
	l.Trace(ctx, time.Now(), statement, nil)
	require.Equal(t, 1, logs.FilterMessage("[SQL] query").Len())

	l.Trace(ctx, time.Now().Add(-time.Second), statement, nil)
	slow := logs.FilterMessage("[SQL] slow query").All()
	require.Len(t, slow, 1)
	require.Equal(t, "SELECT 1", slow[0].ContextMap()["sql"])

	l.Trace(ctx, time.Now(), statement, errors.New("no such table"))
	require.Equal(t, 1, logs.FilterMessage("[SQL] query failed").Len())

	l.Trace(ctx, time.Now(), statement, logger.ErrRecordNotFound)
	require.Equal(t, 2, logs.FilterMessage("[SQL] query").Len())
}

func TestSQLLoggerQuietModes(t *testing.T) {
	ctx := context.Background()

	l, logs := newObservedSQLLogger(logger.Warn, false)
	l.Trace(ctx, time.Now(), statement, nil)
	require.Zero(t, logs.Len())

	l.Trace(ctx, time.Now().Add(-time.Second), statement, nil)
	require.Equal(t, 1, logs.FilterMessage("[SQL] slow query").Len())

	silent := l.LogMode(logger.Silent)
	silent.Trace(ctx, time.Now(), statement, errors.New("boom"))
	silent.Error(ctx, "ignored %d", 1)
	require.Equal(t, 1, logs.Len())

	l.Error(ctx, "connection lost after %d retries", 3)
	require.Equal(t, 1, logs.FilterMessage("[SQL] connection lost after 3 retries").Len())
}
