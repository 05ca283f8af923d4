package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/arglo/storefront/internal/catalog"
	"github.com/arglo/storefront/internal/checkout"
	"github.com/arglo/storefront/internal/config"
	"github.com/arglo/storefront/internal/event"
	handler "github.com/arglo/storefront/internal/handler/http"
	"github.com/arglo/storefront/internal/signal"
	"github.com/arglo/storefront/internal/state"
	"github.com/arglo/storefront/internal/storage"
	"github.com/arglo/storefront/internal/storefront"
	"github.com/arglo/storefront/internal/tabsync"
	"github.com/arglo/storefront/pkg/database"
	"github.com/arglo/storefront/pkg/health"
	pkgkafka "github.com/arglo/storefront/pkg/kafka"
	"github.com/arglo/storefront/pkg/middleware"
)

const slowRedisCommand = 100 * time.Millisecond

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	storage    storageSetup
	producer   *pkgkafka.Producer
	syncer     *tabsync.Syncer
	service    *storefront.Service
	httpServer *http.Server

	// stop ends background work tied to the router, such as the rate limiter janitor.
	stop context.CancelFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database.SetSlowCommandLogging(slowRedisCommand, logger)

	// Load the product catalog.
	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	initial, err := initialProduct(cat, cfg.InitialProductID)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog loaded",
		slog.String("path", cfg.CatalogPath),
		slog.Int("products", cat.Len()),
	)

	// Pick the storage medium shared with sibling tabs.
	st := openStorage(ctx, cfg, logger)
	appState := state.New(
		storage.NewPersistent(st.store, logger),
		state.Keys{Cart: cfg.CartKey, Wishlist: cfg.WishlistKey},
		logger,
	)
	// The syncer reloads once its subscription is live; this load only seeds
	// the initial view.
	appState.LoadFromStorage(ctx)

	// Initialize the Kafka producer when events are enabled.
	var (
		producer  *pkgkafka.Producer
		publisher event.Publisher = event.Noop{}
	)
	if cfg.EventsEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	hub := signal.NewHub()
	svc := storefront.New(storefront.Config{
		Catalog:   cat,
		State:     appState,
		Hub:       hub,
		Publisher: publisher,
		Checkout: checkout.NewService(checkout.Config{
			BaseURL: cfg.WhatsAppBaseURL,
			Phone:   cfg.WhatsAppPhone,
		}, checkout.SystemClipboard(), logger),
		Logger:           logger,
		TabID:            st.store.Origin(),
		PageSize:         cfg.PageSize,
		StorageAvailable: st.available,
	})
	if _, err := svc.ViewProduct(ctx, initial, false); err != nil {
		return nil, fmt.Errorf("view initial product %d: %w", initial, err)
	}
	syncer := tabsync.New(st.store, appState, hub, logger)

	// Health checks.
	healthHandler := health.NewHandler(health.WithTimeout(cfg.ReadinessTimeout()))
	healthHandler.Register("storage", st.checker())
	if producer != nil {
		healthHandler.Register("kafka", producer.Ping)
	}

	// HTTP router.
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	cors.Environment = cfg.Environment

	routerCtx, stop := context.WithCancel(context.Background())
	router := handler.NewRouter(routerCtx, handler.RouterConfig{
		Service:        svc,
		Health:         healthHandler,
		Logger:         logger,
		AddToCartDelay: cfg.AddToCartDelay(),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		CORS:           cors,
		CatalogMaxAge:  cfg.CatalogMaxAge(),
		Pprof:          cfg.PprofEnabled,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
	})

	httpServer := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// No write timeout: the signal stream stays open. Other routes are
		// bounded by the router's timeout middleware.
		IdleTimeout: 60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		storage:    st,
		producer:   producer,
		syncer:     syncer,
		service:    svc,
		httpServer: httpServer,
		stop:       stop,
	}, nil
}

// initialProduct returns the configured product id, or the first catalog id
// when none is configured or it is not in the catalog.
func initialProduct(cat *catalog.Catalog, configured int) (int, error) {
	if configured > 0 && cat.Has(configured) {
		return configured, nil
	}
	id, ok := cat.FirstID()
	if !ok {
		return 0, errors.New("catalog is empty")
	}
	return id, nil
}

// Run starts the tab sync listener and the HTTP server and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		if err := a.syncer.Run(ctx); err != nil {
			// Sibling tabs stay invisible, but this tab keeps working.
			a.logger.Error("tab sync stopped", slog.String("error", err.Error()))
		}
	}()

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("tab_id", a.service.TabID()),
			slog.Bool("storage_available", a.service.StorageAvailable()),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}
	a.stop()

	// Close Kafka producer.
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	// Close Redis client.
	if err := a.storage.close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
