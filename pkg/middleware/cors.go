package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/cors"
)

var (
	defaultCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	defaultCORSHeaders = []string{"Accept", "Content-Type", CorrelationIDHeader, TabIDHeader}
)

const defaultCORSMaxAge = 3600

// CORSConfig holds configuration for the CORS middleware.
type CORSConfig struct {
	// AllowedOrigins lists exact origins. "*" allows every origin.
	AllowedOrigins []string

	// AllowedMethods defaults to GET, POST, OPTIONS.
	AllowedMethods []string

	// AllowedHeaders defaults to Accept, Content-Type and the correlation and tab headers.
	AllowedHeaders []string

	ExposedHeaders []string

	// MaxAge caches preflight results, in seconds.
	MaxAge int

	AllowCredentials bool

	// Environment "development" accepts any origin.
	Environment string
}

// DefaultCORSConfig returns a permissive configuration for local development.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: defaultCORSMethods,
		AllowedHeaders: defaultCORSHeaders,
		ExposedHeaders: []string{CorrelationIDHeader},
		MaxAge:         defaultCORSMaxAge,
		Environment:    "development",
	}
}

func (c CORSConfig) options() cors.Options {
	opts := cors.Options{
		AllowedOrigins:   c.AllowedOrigins,
		AllowedMethods:   c.AllowedMethods,
		AllowedHeaders:   c.AllowedHeaders,
		ExposedHeaders:   c.ExposedHeaders,
		MaxAge:           c.MaxAge,
		AllowCredentials: c.AllowCredentials,
	}
	if len(opts.AllowedMethods) == 0 {
		opts.AllowedMethods = defaultCORSMethods
	}
	if len(opts.AllowedHeaders) == 0 {
		opts.AllowedHeaders = defaultCORSHeaders
	}
	if opts.MaxAge == 0 {
		opts.MaxAge = defaultCORSMaxAge
	}
	if c.Environment == "development" || slices.Contains(c.AllowedOrigins, "*") {
		opts.AllowedOrigins = []string{"*"}
	}
	return opts
}

// CORS sets Cross-Origin Resource Sharing headers and answers preflight
// requests with 204 without reaching the router.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	return cors.New(cfg.options()).Handler
}
