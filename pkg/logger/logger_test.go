package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

// record logs one line through WithContext(ctx) and returns it decoded.
func record(t *testing.T, ctx context.Context) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	WithContext(ctx, NewWithWriter("storefront", "info", &buf)).Info("line")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func withSpan(traceHex, spanHex string) context.Context {
	traceID, _ := trace.TraceIDFromHex(traceHex)
	spanID, _ := trace.SpanIDFromHex(spanHex)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestNewWithWriter(t *testing.T) {
	out := record(t, context.Background())
	assert.Equal(t, "storefront", out["service"])
	assert.Equal(t, "line", out["msg"])
	assert.NotContains(t, out, "source")

	var buf bytes.Buffer
	NewWithWriter("storefront", "warn", &buf).Info("dropped")
	assert.Zero(t, buf.Len())

	buf.Reset()
	NewWithWriter("storefront", "debug", &buf).Debug("kept")
	assert.Contains(t, buf.String(), `"source"`)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" DEBUG ": slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"Warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
		"info+4":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestWithContext_Fields(t *testing.T) {
	ctx := withSpan("abcdef1234567890abcdef1234567890", "1234567890abcdef")
	ctx = WithCorrelationID(ctx, "corr-all")
	ctx = WithTabID(ctx, "tab-all")

	out := record(t, ctx)
	assert.Equal(t, "corr-all", out["correlation_id"])
	assert.Equal(t, "tab-all", out["tab_id"])
	assert.Equal(t, "abcdef1234567890abcdef1234567890", out["trace_id"])
	assert.Equal(t, "1234567890abcdef", out["span_id"])
}

func TestWithContext_Empty(t *testing.T) {
	out := record(t, context.Background())
	for _, key := range []string{"correlation_id", "tab_id", "trace_id", "span_id"} {
		assert.NotContains(t, out, key)
	}

	l := Discard()
	assert.Same(t, l, WithContext(context.Background(), l))
}

func TestIdentity_DoesNotLeakToParent(t *testing.T) {
	parent := WithCorrelationID(context.Background(), "corr-1")
	child := WithTabID(parent, "tab-1")
	child = WithCorrelationID(child, "corr-2")

	assert.Equal(t, "corr-1", CorrelationIDFromContext(parent))
	assert.Empty(t, TabIDFromContext(parent))
	assert.Equal(t, "corr-2", CorrelationIDFromContext(child))
	assert.Equal(t, "tab-1", TabIDFromContext(child))
}

func TestFromContext(t *testing.T) {
	l := Discard()
	assert.Same(t, l, FromContext(NewContext(context.Background(), l)))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(context.Background(), slog.LevelError))
}
