package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/arglo/storefront/pkg/config"
)

// Storage backends.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all configuration for the storefront process.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Storage medium shared by sibling tabs.
	StorageBackend   string `env:"STORAGE_BACKEND" envDefault:"redis"`
	StorageNamespace string `env:"STORAGE_NAMESPACE" envDefault:"arglo"`
	CartKey          string `env:"CART_KEY" envDefault:"arglo_cart"`
	WishlistKey      string `env:"WISHLIST_KEY" envDefault:"arglo_wishlist"`

	// Catalog
	CatalogPath      string `env:"CATALOG_PATH" envDefault:"catalog.json"`
	InitialProductID int    `env:"INITIAL_PRODUCT_ID" envDefault:"0"`
	PageSize         int    `env:"PAGE_SIZE" envDefault:"20"`

	// Checkout handoff
	WhatsAppBaseURL string `env:"WHATSAPP_BASE_URL" envDefault:"https://wa.me"`
	WhatsAppPhone   string `env:"WHATSAPP_PHONE" envDefault:"50684751967"`

	// Artificial latency applied to add-to-cart intents.
	AddToCartDelayMS int `env:"ADD_TO_CART_DELAY_MS" envDefault:"500"`

	// Kafka
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	EventsEnabled bool     `env:"EVENTS_ENABLED" envDefault:"false"`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Rate limiting of intents, per client IP. RPS 0 disables it.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Client cache lifetime for catalog reads, in seconds.
	CatalogCacheMaxAge int `env:"CATALOG_CACHE_MAX_AGE" envDefault:"300"`

	// Upper bound for one readiness evaluation.
	ReadinessTimeoutMS int `env:"READINESS_TIMEOUT_MS" envDefault:"2000"`

	// Profiling endpoints, off unless enabled.
	PprofEnabled      bool     `env:"PPROF_ENABLED" envDefault:"false"`
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AddToCartDelay returns the artificial add-to-cart latency.
func (c *Config) AddToCartDelay() time.Duration {
	return time.Duration(c.AddToCartDelayMS) * time.Millisecond
}

// ReadinessTimeout bounds /health/ready.
func (c *Config) ReadinessTimeout() time.Duration {
	return time.Duration(c.ReadinessTimeoutMS) * time.Millisecond
}

// CatalogMaxAge returns how long clients may cache catalog reads.
func (c *Config) CatalogMaxAge() time.Duration {
	return time.Duration(c.CatalogCacheMaxAge) * time.Second
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	switch c.StorageBackend {
	case BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want %s or %s)", c.StorageBackend, BackendRedis, BackendMemory)
	}
	if c.CartKey == "" || c.WishlistKey == "" {
		return fmt.Errorf("CART_KEY and WISHLIST_KEY are required")
	}
	if c.CartKey == c.WishlistKey {
		return fmt.Errorf("CART_KEY and WISHLIST_KEY must differ, both are %q", c.CartKey)
	}
	if c.AddToCartDelayMS < 0 {
		return fmt.Errorf("ADD_TO_CART_DELAY_MS must not be negative")
	}
	if c.CatalogCacheMaxAge < 0 {
		return fmt.Errorf("CATALOG_CACHE_MAX_AGE must not be negative")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.OTELSampleRate)
	}
	if c.EventsEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when EVENTS_ENABLED is set")
	}
	return nil
}
