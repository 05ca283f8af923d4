// Package state owns the cart and wishlist of one tab. Every mutation
// persists the affected collection and recomputes its count in the same step.
package state

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/arglo/storefront/internal/domain"
	"github.com/arglo/storefront/internal/metrics"
	"github.com/arglo/storefront/internal/storage"
)

// Cart operations, used as metric labels.
const (
	OpAdd    = "add"
	OpRemove = "remove"
	OpAdjust = "adjust"
	OpReset  = "reset"
)

// Keys names the two storage keys the state persists to.
type Keys struct {
	Cart     string
	Wishlist string
}

// AppState is the sole mutation authority for the cart and the wishlist.
type AppState struct {
	// saveMu orders writes to storage so they land in mutation order. It is
	// taken before mu and held across the write; remote updates only take mu.
	saveMu sync.Mutex
	mu     sync.RWMutex

	cart           domain.Cart
	wishlist       domain.Wishlist
	cartCount      int
	wishlistCount  int
	currentProduct int
	searchActive   bool

	persist *storage.Persistent
	keys    Keys
	logger  *slog.Logger
}

// New creates an empty state persisting through p.
func New(p *storage.Persistent, keys Keys, logger *slog.Logger) *AppState {
	return &AppState{
		cart:     domain.Cart{},
		wishlist: domain.Wishlist{},
		persist:  p,
		keys:     keys,
		logger:   logger,
	}
}

// Keys returns the storage keys in use.
func (s *AppState) Keys() Keys {
	return s.keys
}

// AddToCart adds quantity units of p in color. An existing line for the same
// product and color grows; otherwise a new line snapshots p. The caller is
// responsible for the quantity range. It returns the resulting line.
func (s *AppState) AddToCart(ctx context.Context, p domain.Product, quantity int, color string) domain.CartLineItem {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	idx := s.cart.FindLine(p.ID, color)
	if idx >= 0 {
		s.cart[idx].Quantity += quantity
	} else {
		s.cart = append(s.cart, domain.NewCartLineItem(p, quantity, color))
		idx = len(s.cart) - 1
	}
	line := s.cart[idx]
	snapshot := s.recountCartLocked()
	s.mu.Unlock()

	metrics.CartMutations.WithLabelValues(OpAdd).Inc()
	s.logger.InfoContext(ctx, "added to cart",
		slog.Int("product_id", p.ID),
		slog.String("color", color),
		slog.Int("quantity", line.Quantity),
	)
	s.persist.Save(ctx, s.keys.Cart, snapshot)
	return line
}

// RemoveFromCart removes the line at index. An out-of-range index changes
// nothing and reports false.
func (s *AppState) RemoveFromCart(ctx context.Context, index int) bool {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if index < 0 || index >= len(s.cart) {
		n := len(s.cart)
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "cart index out of range",
			slog.String("op", OpRemove),
			slog.Int("index", index),
			slog.Int("lines", n),
		)
		return false
	}
	s.cart = append(s.cart[:index], s.cart[index+1:]...)
	snapshot := s.recountCartLocked()
	s.mu.Unlock()

	metrics.CartMutations.WithLabelValues(OpRemove).Inc()
	s.persist.Save(ctx, s.keys.Cart, snapshot)
	return true
}

// AdjustQuantity changes the quantity of the line at index by delta. The
// quantity never drops below 1; reaching zero needs RemoveFromCart. It
// reports whether the quantity changed.
func (s *AppState) AdjustQuantity(ctx context.Context, index, delta int) bool {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if index < 0 || index >= len(s.cart) {
		n := len(s.cart)
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "cart index out of range",
			slog.String("op", OpAdjust),
			slog.Int("index", index),
			slog.Int("lines", n),
		)
		return false
	}

	qty := s.cart[index].Quantity + delta
	if qty < 1 {
		qty = 1
	}
	if qty == s.cart[index].Quantity {
		s.mu.Unlock()
		return false
	}
	s.cart[index].Quantity = qty
	snapshot := s.recountCartLocked()
	s.mu.Unlock()

	metrics.CartMutations.WithLabelValues(OpAdjust).Inc()
	s.persist.Save(ctx, s.keys.Cart, snapshot)
	return true
}

// ToggleWishlist removes the entry for (p, color) when present and adds it
// otherwise. It reports whether the entry was added.
func (s *AppState) ToggleWishlist(ctx context.Context, p domain.Product, color string) bool {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	idx := s.wishlist.FindEntry(p.ID, color)
	added := idx < 0
	if added {
		s.wishlist = append(s.wishlist, domain.NewWishlistEntry(p, color))
	} else {
		s.wishlist = append(s.wishlist[:idx], s.wishlist[idx+1:]...)
	}
	snapshot := s.recountWishlistLocked()
	s.mu.Unlock()

	outcome := metrics.OutcomeRemoved
	if added {
		outcome = metrics.OutcomeAdded
	}
	metrics.WishlistToggles.WithLabelValues(outcome).Inc()
	s.logger.InfoContext(ctx, "wishlist toggled",
		slog.Int("product_id", p.ID),
		slog.String("color", color),
		slog.String("outcome", outcome),
	)
	s.persist.Save(ctx, s.keys.Wishlist, snapshot)
	return added
}

// RemoveFromWishlist removes the entry at index and returns it. An
// out-of-range index changes nothing.
func (s *AppState) RemoveFromWishlist(ctx context.Context, index int) (domain.WishlistEntry, bool) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if index < 0 || index >= len(s.wishlist) {
		n := len(s.wishlist)
		s.mu.Unlock()
		s.logger.WarnContext(ctx, "wishlist index out of range",
			slog.Int("index", index),
			slog.Int("entries", n),
		)
		return domain.WishlistEntry{}, false
	}
	entry := s.wishlist[index]
	s.wishlist = append(s.wishlist[:index], s.wishlist[index+1:]...)
	snapshot := s.recountWishlistLocked()
	s.mu.Unlock()

	metrics.WishlistToggles.WithLabelValues(metrics.OutcomeRemoved).Inc()
	s.persist.Save(ctx, s.keys.Wishlist, snapshot)
	return entry, true
}

// InWishlist reports whether (productID, color) is saved.
func (s *AppState) InWishlist(productID int, color string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wishlist.FindEntry(productID, color) >= 0
}

// LoadFromStorage replaces both collections with the persisted ones. If
// either key fails to load, both collections are reset to empty. A missing
// key loads as empty.
func (s *AppState) LoadFromStorage(ctx context.Context) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	var cart domain.Cart
	var wishlist domain.Wishlist
	_, cartErr := s.persist.Load(ctx, s.keys.Cart, &cart)
	_, wishErr := s.persist.Load(ctx, s.keys.Wishlist, &wishlist)

	if err := errors.Join(cartErr, wishErr); err != nil {
		s.logger.WarnContext(ctx, "discarding stored cart and wishlist",
			slog.Bool("corrupt", errors.Is(err, storage.ErrCorrupt)),
			slog.Any("error", err),
		)
		cart, wishlist = nil, nil
	}

	s.mu.Lock()
	s.cart = cart.Clone()
	s.wishlist = wishlist.Clone()
	s.recountCartLocked()
	s.recountWishlistLocked()
	cartCount, wishlistCount := s.cartCount, s.wishlistCount
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "state loaded",
		slog.Int("cart_count", cartCount),
		slog.Int("wishlist_count", wishlistCount),
	)
}

// ResetStorage clears both persisted keys and both collections.
func (s *AppState) ResetStorage(ctx context.Context) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	s.cart = domain.Cart{}
	s.wishlist = domain.Wishlist{}
	s.recountCartLocked()
	s.recountWishlistLocked()
	s.mu.Unlock()

	s.persist.Clear(ctx, s.keys.Cart)
	s.persist.Clear(ctx, s.keys.Wishlist)
	metrics.CartMutations.WithLabelValues(OpReset).Inc()
	s.logger.InfoContext(ctx, "storage reset")
}

// ApplyRemoteCart replaces the cart with one written by another tab. The
// value already is in storage, so nothing is persisted.
func (s *AppState) ApplyRemoteCart(cart domain.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = cart.Clone()
	s.recountCartLocked()
}

// ApplyRemoteWishlist replaces the wishlist with one written by another tab.
func (s *AppState) ApplyRemoteWishlist(wishlist domain.Wishlist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wishlist = wishlist.Clone()
	s.recountWishlistLocked()
}

// Cart returns a copy of the cart lines.
func (s *AppState) Cart() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// Wishlist returns a copy of the wishlist entries.
func (s *AppState) Wishlist() domain.Wishlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wishlist.Clone()
}

// Snapshot copies both collections under one lock, so a frame built from
// it never mixes states from two mutations.
func (s *AppState) Snapshot() (domain.Cart, domain.Wishlist) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone(), s.wishlist.Clone()
}

// CartCount is the sum of quantities across all lines.
func (s *AppState) CartCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cartCount
}

// WishlistCount is the number of wishlist entries.
func (s *AppState) WishlistCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wishlistCount
}

// CartTotal is the cart total rounded to cents.
func (s *AppState) CartTotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Total()
}

// SetCurrentProduct records the product shown on the detail view.
func (s *AppState) SetCurrentProduct(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentProduct = id
}

// CurrentProduct returns the product shown on the detail view.
func (s *AppState) CurrentProduct() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentProduct
}

// SetSearchActive records whether the search modal is open.
func (s *AppState) SetSearchActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchActive = active
}

// SearchActive reports whether the search modal is open.
func (s *AppState) SearchActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchActive
}

// recountCartLocked updates cartCount and returns a copy to persist.
func (s *AppState) recountCartLocked() domain.Cart {
	s.cartCount = s.cart.ItemCount()
	return s.cart.Clone()
}

func (s *AppState) recountWishlistLocked() domain.Wishlist {
	s.wishlistCount = len(s.wishlist)
	return s.wishlist.Clone()
}
