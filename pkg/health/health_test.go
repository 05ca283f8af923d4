package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, handler http.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestLivenessHandler_AlwaysReturns200(t *testing.T) {
	h := NewHandler()
	h.Register("storage", func(ctx context.Context) error { return fmt.Errorf("down") })

	rec, resp := serve(t, h.LivenessHandler())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, StatusUp, resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestReadinessHandler_AllHealthy(t *testing.T) {
	h := NewHandler()
	h.Register("storage", func(ctx context.Context) error { return nil })
	h.Register("catalog", func(ctx context.Context) error { return nil })

	rec, resp := serve(t, h.ReadinessHandler())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Equal(t, StatusUp, resp.Checks["storage"].Status)
	assert.Equal(t, StatusUp, resp.Checks["catalog"].Status)
}

func TestReadinessHandler_OneDown(t *testing.T) {
	h := NewHandler()
	h.Register("catalog", func(ctx context.Context) error { return nil })
	h.Register("storage", func(ctx context.Context) error { return fmt.Errorf("connection refused") })

	rec, resp := serve(t, h.ReadinessHandler())

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, StatusDown, resp.Status)
	assert.Equal(t, "connection refused", resp.Checks["storage"].Error)
}

func TestReadinessHandler_DegradedStillReady(t *testing.T) {
	h := NewHandler()
	h.Register("storage", func(ctx context.Context) error {
		return fmt.Errorf("using in-memory fallback: %w", ErrDegraded)
	})

	rec, resp := serve(t, h.ReadinessHandler())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Equal(t, StatusDegraded, resp.Checks["storage"].Status)
}

func TestCheck_DownOutranksDegraded(t *testing.T) {
	h := NewHandler()
	h.Register("a", func(ctx context.Context) error { return ErrDegraded })
	h.Register("b", func(ctx context.Context) error { return fmt.Errorf("gone") })

	resp := h.Check(context.Background())
	assert.Equal(t, StatusDown, resp.Status)
}

func TestReadinessHandler_NoCheckers(t *testing.T) {
	h := NewHandler()
	rec, resp := serve(t, h.ReadinessHandler())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusUp, resp.Status)
}

func TestNames_Sorted(t *testing.T) {
	h := NewHandler()
	h.Register("storage", func(ctx context.Context) error { return nil })
	h.Register("catalog", func(ctx context.Context) error { return nil })

	assert.Equal(t, []string{"catalog", "storage"}, h.Names())
}

func TestCheck_TimeoutMarksDown(t *testing.T) {
	h := NewHandler(WithTimeout(20 * time.Millisecond))
	h.Register("kafka", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	resp := h.Check(context.Background())

	assert.Equal(t, StatusDown, resp.Status)
	assert.Equal(t, context.DeadlineExceeded.Error(), resp.Checks["kafka"].Error)
	assert.GreaterOrEqual(t, resp.Checks["kafka"].LatencyMS, int64(0))
}

func TestWithTimeout_IgnoresNonPositive(t *testing.T) {
	h := NewHandler(WithTimeout(0))
	assert.Equal(t, DefaultTimeout, h.timeout)
}

func TestWorse(t *testing.T) {
	tests := []struct {
		a, b, want Status
	}{
		{StatusUp, StatusUp, StatusUp},
		{StatusUp, StatusDegraded, StatusDegraded},
		{StatusDegraded, StatusUp, StatusDegraded},
		{StatusDegraded, StatusDown, StatusDown},
		{StatusDown, StatusDegraded, StatusDown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, worse(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}
