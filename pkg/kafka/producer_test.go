package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, []string{"localhost:9092"}, newTestLogger())

	event, err := NewEvent("cart.updated", "tab-1", "cart", "storefront", map[string]int{"n": 1},
		WithCorrelationID("corr-7"))
	require.NoError(t, err)

	topic := Topic("cart", "publish-test")
	before := testutil.ToFloat64(EventsPublished.WithLabelValues(topic, "cart.updated"))
	require.NoError(t, p.Publish(context.Background(), topic, event))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, topic, msg.Topic)
	assert.Equal(t, "tab-1", string(msg.Key))
	assert.Equal(t, "cart.updated", header(msg, "event_type"))
	assert.Equal(t, "storefront", header(msg, "source"))
	assert.Equal(t, "corr-7", header(msg, "correlation_id"))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.EventID, decoded.EventID)

	assert.Equal(t, before+1, testutil.ToFloat64(EventsPublished.WithLabelValues(topic, "cart.updated")))
}

func TestProducer_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := NewProducerWithWriter(w, nil, newTestLogger())

	event, err := NewEvent("cart.updated", "tab-1", "cart", "storefront", nil)
	require.NoError(t, err)

	topic := Topic("cart", "error-test")
	err = p.Publish(context.Background(), topic, event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish event to "+topic)
	assert.Equal(t, float64(1), testutil.ToFloat64(PublishFailures.WithLabelValues(topic, ReasonBroker)))
}

func TestProducer_PublishRejectsInvalidEvent(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, nil, newTestLogger())

	err := p.Publish(context.Background(), Topic("cart", "invalid-test"), &Event{EventType: "cart.updated"})
	require.ErrorIs(t, err, ErrInvalidEvent)
	assert.Empty(t, w.msgs)
}

func TestFailureReason(t *testing.T) {
	assert.Equal(t, ReasonTimeout, failureReason(context.DeadlineExceeded))
	assert.Equal(t, ReasonCanceled, failureReason(fmt.Errorf("write: %w", context.Canceled)))
	assert.Equal(t, ReasonBroker, failureReason(errors.New("leader not available")))
}

func TestProducer_InjectsTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	w := &fakeWriter{}
	p := NewProducerWithWriter(w, nil, newTestLogger())
	event, err := NewEvent("cart.updated", "tab-1", "cart", "storefront", nil)
	require.NoError(t, err)
	require.NoError(t, p.Publish(ctx, Topic("cart", "trace-test"), event))

	require.Len(t, w.msgs, 1)
	assert.Contains(t, header(w.msgs[0], "traceparent"), span.SpanContext().TraceID().String())
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, nil, newTestLogger())
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewProducer_CreatesInstance(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"localhost:9092"}), newTestLogger())
	require.NotNil(t, p)
	assert.NoError(t, p.Close())
}

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"a:9092", "b:9092"})
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Brokers)
	assert.Equal(t, 64, cfg.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
	assert.False(t, cfg.Async)
}

func TestPingBrokers_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := PingBrokers(ctx, []string{"127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func TestHeaderCarrier(t *testing.T) {
	headers := []kafka.Header{{Key: "existing", Value: []byte("value1")}}
	c := NewHeaderCarrier(&headers)

	assert.Equal(t, "value1", c.Get("existing"))
	assert.Equal(t, "", c.Get("missing"))

	c.Set("new-key", "new-value")
	c.Set("existing", "updated")
	assert.Equal(t, "updated", c.Get("existing"))
	assert.Equal(t, []string{"existing", "new-key"}, c.Keys())
	assert.Len(t, headers, 2)
}
