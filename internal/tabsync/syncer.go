// Package tabsync keeps a tab's state in line with writes made by its
// sibling tabs to the shared storage medium.
package tabsync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/arglo/storefront/internal/domain"
	"github.com/arglo/storefront/internal/metrics"
	"github.com/arglo/storefront/internal/signal"
	"github.com/arglo/storefront/internal/state"
	"github.com/arglo/storefront/internal/storage"
)

// Emitter receives the view signals raised by applied changes.
type Emitter interface {
	Emit(signal.Signal)
}

// Syncer applies cart and wishlist changes observed on the store to the
// state. A payload that does not decode is discarded and the last good
// state is kept.
type Syncer struct {
	store   storage.Store
	state   *state.AppState
	emitter Emitter
	logger  *slog.Logger
}

// New creates a syncer.
func New(store storage.Store, st *state.AppState, emitter Emitter, logger *slog.Logger) *Syncer {
	return &Syncer{
		store:   store,
		state:   st,
		emitter: emitter,
		logger:  logger,
	}
}

// Run subscribes to the store and applies changes until ctx is done. It
// returns an error only when the subscription cannot be set up.
func (s *Syncer) Run(ctx context.Context) error {
	changes, err := s.store.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to storage changes: %w", err)
	}

	s.logger.InfoContext(ctx, "cross-tab sync started", slog.String("origin", s.store.Origin()))
	s.resync(ctx)
	for c := range changes {
		s.Apply(ctx, c)
	}
	s.logger.InfoContext(ctx, "cross-tab sync stopped")
	return nil
}

// resync reloads both collections once the subscription is live. Sibling
// writes made between the startup load and the subscription would
// otherwise never reach this tab.
func (s *Syncer) resync(ctx context.Context) {
	cart, wishlist := s.state.Snapshot()
	s.state.LoadFromStorage(ctx)
	nowCart, nowWishlist := s.state.Snapshot()

	if !slices.Equal(cart, nowCart) {
		s.emitter.Emit(signal.Signal{Kind: signal.Cart, Source: signal.SourceRemote})
	}
	if !slices.Equal(wishlist, nowWishlist) {
		s.emitter.Emit(signal.Signal{Kind: signal.Wishlist, Source: signal.SourceRemote})
	}
}

// Apply handles one change. Changes to other keys and removals are ignored.
func (s *Syncer) Apply(ctx context.Context, c storage.Change) {
	keys := s.state.Keys()
	if c.Key != keys.Cart && c.Key != keys.Wishlist {
		return
	}
	if c.NewValue == nil || *c.NewValue == "" {
		return
	}

	log := s.logger.With(slog.String("key", c.Key), slog.String("origin", c.Origin))

	switch c.Key {
	case keys.Cart:
		var cart domain.Cart
		if err := json.Unmarshal([]byte(*c.NewValue), &cart); err != nil {
			s.discard(ctx, log, c.Key, err)
			return
		}
		s.state.ApplyRemoteCart(cart)
		s.emitter.Emit(signal.Signal{Kind: signal.Cart, Source: signal.SourceRemote})

	case keys.Wishlist:
		var wishlist domain.Wishlist
		if err := json.Unmarshal([]byte(*c.NewValue), &wishlist); err != nil {
			s.discard(ctx, log, c.Key, err)
			return
		}
		s.state.ApplyRemoteWishlist(wishlist)
		s.emitter.Emit(signal.Signal{Kind: signal.Wishlist, Source: signal.SourceRemote})
	}

	metrics.SyncEvents.WithLabelValues(c.Key, metrics.SyncApplied).Inc()
	log.DebugContext(ctx, "applied change from sibling tab")
}

func (s *Syncer) discard(ctx context.Context, log *slog.Logger, key string, err error) {
	metrics.SyncEvents.WithLabelValues(key, metrics.SyncDiscarded).Inc()
	log.WarnContext(ctx, "discarding malformed change from sibling tab", slog.Any("error", err))
}
