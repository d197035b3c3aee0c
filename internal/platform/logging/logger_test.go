package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return FromZap(zap.New(core)), logs
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelDebug, ParseLevel(" DEBUG "))
	require.Equal(t, LevelWarn, ParseLevel("warning"))
	require.Equal(t, LevelError, ParseLevel("error"))
	require.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestLogger_FieldsAndComponent(t *testing.T) {
	logger, logs := observed(LevelInfo)

	logger.Named("engine").Named("waivers").With("cutoff", "2026-10-15T03:00:00Z").
		Info("batch resolved", "awarded", 2, "error", errors.New("partial"), "dangling")
	logger.Debug("dropped below level")

	entries := logs.All()
	require.Len(t, entries, 1)
	entry := entries[0]
	require.Equal(t, "engine.waivers", entry.LoggerName)

	ctx := entry.ContextMap()
	require.Equal(t, "2026-10-15T03:00:00Z", ctx["cutoff"])
	require.EqualValues(t, 2, ctx["awarded"])
	require.Equal(t, "partial", ctx["error"])
	require.Contains(t, ctx, "dangling")
}

func TestLogger_ContextAddsTraceIDs(t *testing.T) {
	logger, logs := observed(LevelInfo)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01},
		SpanID:     trace.SpanID{0x02},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	logger.InfoContext(ctx, "pick made", "pick", 4)
	logger.InfoContext(context.Background(), "no span")

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, sc.TraceID().String(), entries[0].ContextMap()["trace_id"])
	require.NotContains(t, entries[1].ContextMap(), "trace_id")
}

func TestLogger_NilReceiverFallsBackToDefault(t *testing.T) {
	var logger *Logger
	require.NotPanics(t, func() {
		logger.Info("ignored")
		_ = logger.With("k", "v")
		require.NoError(t, logger.Sync())
	})
}
