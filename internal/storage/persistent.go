package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/arglo/storefront/internal/metrics"
)

// probeKey is written and removed by Available.
const probeKey = "__storage_probe__"

// Persistent stores JSON values in a Store. Write failures are logged and
// reported, never returned, so callers keep working on in-memory state.
type Persistent struct {
	store  Store
	logger *slog.Logger
}

// NewPersistent wraps store.
func NewPersistent(store Store, logger *slog.Logger) *Persistent {
	return &Persistent{store: store, logger: logger}
}

// Store returns the underlying medium.
func (p *Persistent) Store() Store {
	return p.store
}

// Available reports whether the medium accepts a write followed by a delete.
func (p *Persistent) Available(ctx context.Context) bool {
	if err := p.store.Set(ctx, probeKey, uuid.NewString()); err != nil {
		p.logger.WarnContext(ctx, "storage probe write failed", slog.Any("error", err))
		return false
	}
	if err := p.store.Remove(ctx, probeKey); err != nil {
		p.logger.WarnContext(ctx, "storage probe delete failed", slog.Any("error", err))
		return false
	}
	return true
}

// Load decodes the value at key into dst. It returns false with a nil error
// when the key is absent, and an error wrapping ErrCorrupt when the stored
// value does not decode.
func (p *Persistent) Load(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := p.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("load %s: %w: %w", key, ErrCorrupt, err)
	}
	return true, nil
}

// Save encodes value as JSON and writes it at key. It reports whether the
// write reached the medium.
func (p *Persistent) Save(ctx context.Context, key string, value any) bool {
	data, err := json.Marshal(value)
	if err == nil {
		err = p.store.Set(ctx, key, string(data))
	}
	if err != nil {
		metrics.StorageWriteFailures.WithLabelValues(key).Inc()
		p.logger.WarnContext(ctx, "storage write failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return false
	}
	return true
}

// Clear removes key. Failures are logged.
func (p *Persistent) Clear(ctx context.Context, key string) bool {
	if err := p.store.Remove(ctx, key); err != nil {
		metrics.StorageWriteFailures.WithLabelValues(key).Inc()
		p.logger.WarnContext(ctx, "storage clear failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return false
	}
	return true
}
