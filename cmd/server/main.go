package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/arglo/storefront/internal/app"
	"github.com/arglo/storefront/internal/config"
	"github.com/arglo/storefront/pkg/logger"
	"github.com/arglo/storefront/pkg/tracing"
)

const serviceName = "storefront"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error("storefront exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("storefront stopped")
}

// run blocks until SIGINT or SIGTERM, or until the app fails.
func run(cfg *config.Config, log *slog.Logger) error {
	log.Info("starting storefront",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.HTTPPort),
		slog.String("storage_backend", cfg.StorageBackend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The provider must be global before any component asks for a tracer.
	shutdownTracer, err := tracing.InitTracer(ctx, tracerConfig(cfg))
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn("tracer shutdown", slog.String("error", err.Error()))
		}
	}()

	application, err := app.NewApp(cfg, log)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	return application.Run(ctx)
}

func tracerConfig(cfg *config.Config) tracing.Config {
	tc := tracing.DefaultConfig(serviceName)
	tc.Environment = cfg.Environment
	tc.Enabled = cfg.OTELEnabled
	tc.OTLPEndpoint = cfg.OTELEndpoint
	tc.SampleRate = cfg.OTELSampleRate
	return tc
}
