package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// unmatchedRoute labels requests that never reached a chi route.
const unmatchedRoute = "unknown"

// routePattern returns the chi pattern that served r, e.g.
// "/api/v1/products/{id}". It is only complete after the handler returned.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.RoutePattern() == "" {
		return unmatchedRoute
	}
	return rctx.RoutePattern()
}
