package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// tracedRouter installs an in-memory exporter as the global provider for the
// duration of the test and returns a router with Tracing mounted.
func tracedRouter(t *testing.T) (*chi.Mux, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	r := chi.NewRouter()
	r.Use(Tracing("storefront"))
	return r, exporter
}

func onlySpan(t *testing.T, exporter *tracetest.InMemoryExporter) tracetest.SpanStub {
	t.Helper()
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	return spans[0]
}

func attr(span tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_NamesSpanAfterRoutePattern(t *testing.T) {
	r, exporter := tracedRouter(t)
	r.Get("/api/v1/products/{id}", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/products/7", nil))

	span := onlySpan(t, exporter)
	assert.Equal(t, "GET /api/v1/products/{id}", span.Name)
	route, ok := attr(span, "http.route")
	require.True(t, ok)
	assert.Equal(t, "/api/v1/products/{id}", route.AsString())
}

func TestTracing_StatusCodes(t *testing.T) {
	tests := []struct {
		status    int
		wantError bool
	}{
		{http.StatusOK, false},
		{http.StatusNotFound, false},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			r, exporter := tracedRouter(t)
			r.Get("/x", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(tt.status) })

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

			span := onlySpan(t, exporter)
			code, ok := attr(span, "http.status_code")
			require.True(t, ok)
			assert.Equal(t, int64(tt.status), code.AsInt64())
			assert.Equal(t, tt.wantError, span.Status.Code == codes.Error)
		})
	}
}

func TestTracing_ContinuesIncomingTrace(t *testing.T) {
	r, exporter := tracedRouter(t)
	r.Get("/api/v1/storefront", func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/storefront", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	span := onlySpan(t, exporter)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", span.SpanContext.TraceID().String())
	assert.Contains(t, rec.Header().Get("traceparent"), "4bf92f3577b34da6a3ce929d0e0e4736")
}

func TestTracing_StartsTraceWithoutParent(t *testing.T) {
	r, exporter := tracedRouter(t)
	r.Get("/api/v1/related", func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/related", nil))

	span := onlySpan(t, exporter)
	assert.True(t, span.SpanContext.IsValid())
	assert.NotEmpty(t, rec.Header().Get("traceparent"))
}

func TestTracing_RecordsTabID(t *testing.T) {
	r, exporter := tracedRouter(t)
	r.Get("/api/v1/storefront", func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/storefront", nil)
	req.Header.Set(TabIDHeader, "tab-42")
	r.ServeHTTP(httptest.NewRecorder(), req)

	tab, ok := attr(onlySpan(t, exporter), "storefront.tab_id")
	require.True(t, ok)
	assert.Equal(t, "tab-42", tab.AsString())
}

func TestRequestAttributes_Scheme(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Forwarded-Proto", "https")

	var scheme string
	for _, kv := range requestAttributes("storefront", req) {
		if kv.Key == "http.scheme" {
			scheme = kv.Value.AsString()
		}
	}
	assert.Equal(t, "https", scheme)
}
