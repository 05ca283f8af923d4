package database

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/arglo/storefront/pkg/tracing"
)

// CommandDuration observes Redis round trips made through TraceCommand.
var CommandDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "redis",
		Name:      "command_duration_seconds",
		Help:      "Redis command latency, by command and outcome.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, 1},
	},
	[]string{"command", "result"},
)

type slowLog struct {
	threshold time.Duration
	logger    *slog.Logger
}

var slow atomic.Pointer[slowLog]

// SetSlowCommandLogging logs Redis commands slower than threshold as
// warnings. A zero threshold or nil logger turns it off.
func SetSlowCommandLogging(threshold time.Duration, logger *slog.Logger) {
	if threshold <= 0 || logger == nil {
		slow.Store(nil)
		return
	}
	slow.Store(&slowLog{threshold: threshold, logger: logger})
}

// TraceCommand starts a client span for a Redis command. Call the returned
// function with the command's error when it completes:
//
//	ctx, end := database.TraceCommand(ctx, "GET", key)
//	defer func() { end(err) }()
func TraceCommand(ctx context.Context, command, key string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracing.Tracer("database").Start(ctx, "redis."+command,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", command),
			attribute.String("db.redis.key", key),
		),
	)

	return ctx, func(err error) {
		elapsed := time.Since(start)
		result := "ok"
		if err != nil {
			result = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		CommandDuration.WithLabelValues(command, result).Observe(elapsed.Seconds())

		if s := slow.Load(); s != nil && elapsed >= s.threshold {
			s.warn(ctx, command, key, elapsed, err)
		}
	}
}

func (s *slowLog) warn(ctx context.Context, command, key string, elapsed time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("command", command),
		slog.String("key", key),
		slog.Duration("duration", elapsed),
		slog.Duration("threshold", s.threshold),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, "slow redis command", attrs...)
}
