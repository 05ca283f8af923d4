package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arglo/storefront/internal/storefront"
	"github.com/arglo/storefront/pkg/health"
	"github.com/arglo/storefront/pkg/middleware"
)

const serviceName = "storefront"

// RouterConfig holds what the router needs to mount the handlers.
type RouterConfig struct {
	Service        *storefront.Service
	Health         *health.Handler
	Logger         *slog.Logger
	AddToCartDelay time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	CORS           middleware.CORSConfig

	// CatalogMaxAge is how long clients may cache catalog reads.
	CatalogMaxAge time.Duration

	// Pprof mounts /debug/pprof for clients inside PprofCIDRs.
	Pprof      bool
	PprofCIDRs []string
}

// NewRouter creates a new chi router with all storefront routes.
func NewRouter(ctx context.Context, cfg RouterConfig) http.Handler {
	sf := NewStorefrontHandler(cfg.Service, cfg.AddToCartDelay, cfg.Logger)
	signals := NewSignalHandler(cfg.Service.Hub(), cfg.Logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(cfg.Logger))

	// Health checks
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	if cfg.Pprof {
		middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)
	}

	// The signal stream is long-lived and must not be buffered or cut short.
	r.Get("/api/v1/signals", signals.Stream)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Compress(5))
		r.Use(chimw.Timeout(30 * time.Second))

		// The catalog is immutable while the process runs.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CatalogMaxAge))
			r.Get("/api/v1/products", sf.ListProducts)
			r.Get("/api/v1/products/{id}", sf.GetProduct)
			r.Get("/api/v1/search", sf.Search)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)
			r.Get("/api/v1/storefront", sf.GetStorefront)
			r.Get("/api/v1/related", sf.GetRelated)

			r.Group(func(r chi.Router) {
				r.Use(ContentTypeJSON)
				r.Use(middleware.RateLimit(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Logger))
				r.Post("/api/v1/intents", sf.Dispatch)
				r.Post("/api/v1/checkout/whatsapp", sf.CheckoutWhatsApp)
				r.Post("/api/v1/checkout/clipboard", sf.CheckoutClipboard)
			})
		})
	})

	return r
}
