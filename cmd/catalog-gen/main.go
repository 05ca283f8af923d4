// Command catalog-gen writes a deterministic demo catalog that the storefront
// can load through CATALOG_PATH. The format follows the file extension.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/arglo/storefront/internal/catalog"
	pkgconfig "github.com/arglo/storefront/pkg/config"
	"github.com/arglo/storefront/pkg/logger"
)

type config struct {
	Path     string `env:"CATALOG_PATH" envDefault:"catalog.json"`
	Count    int    `env:"CATALOG_GEN_COUNT" envDefault:"200"`
	Seed     int64  `env:"CATALOG_GEN_SEED" envDefault:"42"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	var cfg config
	if err := pkgconfig.Load(&cfg); err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("catalog-gen", cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("catalog generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config, log *slog.Logger) error {
	products := catalog.Generate(cfg.Count, cfg.Seed)

	// Reject anything the storefront would refuse to load.
	if _, err := catalog.Build(products); err != nil {
		return err
	}

	raw, err := catalog.Encode(filepath.Ext(cfg.Path), products)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.Path, raw, 0o644); err != nil {
		return err
	}

	log.Info("catalog written",
		slog.String("path", cfg.Path),
		slog.Int("products", len(products)),
		slog.Int64("seed", cfg.Seed),
	)
	return nil
}
