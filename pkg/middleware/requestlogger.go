package middleware

import (
	"log/slog"
	"net/http"

	"github.com/arglo/storefront/pkg/logger"
)

// TabIDHeader identifies the browsing context a request belongs to.
const TabIDHeader = "X-Tab-ID"

// RequestLogger builds a request-scoped logger carrying correlation_id,
// tab_id, trace_id and span_id and stores it with logger.NewContext.
//
// Mount it after RequestLogging and Tracing so those fields exist.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if tabID := r.Header.Get(TabIDHeader); tabID != "" {
				ctx = logger.WithTabID(ctx, tabID)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
