// Package storefront is the application context of one tab: it owns the
// catalog, the cart and wishlist state, and the related-products pager, and
// turns view intents into calls on them.
package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/arglo/storefront/internal/catalog"
	"github.com/arglo/storefront/internal/checkout"
	"github.com/arglo/storefront/internal/domain"
	"github.com/arglo/storefront/internal/event"
	"github.com/arglo/storefront/internal/signal"
	"github.com/arglo/storefront/internal/state"
	apperrors "github.com/arglo/storefront/pkg/errors"
	"github.com/arglo/storefront/pkg/pagination"
)

// Notices shown to the shopper.
const (
	NoticeAddedToCart        = "Producto añadido al carrito"
	NoticeAddedFromWishlist  = "Producto añadido al carrito desde favoritos"
	NoticeWishlistAdded      = "Producto añadido a favoritos"
	NoticeWishlistRemoved    = "Producto removido de favoritos"
	NoticeCartEmpty          = "Tu carrito está vacío"
	NoticeWishlistEmpty      = "Tu lista de favoritos está vacía"
	NoticeStorageReset       = "Datos reiniciados correctamente"
	NoticeStorageUnavailable = "Tu navegador no soporta almacenamiento local. Los datos no se guardarán."
)

// Config wires a Service.
type Config struct {
	Catalog   *catalog.Catalog
	State     *state.AppState
	Hub       *signal.Hub
	Publisher event.Publisher
	Checkout  *checkout.Service
	Logger    *slog.Logger

	// TabID identifies this tab in events, usually the storage origin.
	TabID    string
	PageSize int

	// StorageAvailable is false when the process fell back to memory-only state.
	StorageAvailable bool
}

// Service dispatches intents for one tab.
type Service struct {
	catalog   *catalog.Catalog
	state     *state.AppState
	pager     *pagination.Pager[domain.Product]
	hub       *signal.Hub
	publisher event.Publisher
	checkout  *checkout.Service
	logger    *slog.Logger

	tabID            string
	storageAvailable bool

	// nav serializes navigation: the current product and the pager change
	// together.
	nav sync.Mutex
}

// New creates a storefront service. A nil Publisher disables events.
func New(cfg Config) *Service {
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = event.Noop{}
	}
	return &Service{
		catalog:          cfg.Catalog,
		state:            cfg.State,
		pager:            pagination.NewPager[domain.Product](cfg.PageSize),
		hub:              cfg.Hub,
		publisher:        publisher,
		checkout:         cfg.Checkout,
		logger:           cfg.Logger,
		tabID:            cfg.TabID,
		storageAvailable: cfg.StorageAvailable,
	}
}

// TabID returns the id of the tab this service acts for.
func (s *Service) TabID() string {
	return s.tabID
}

// StorageAvailable reports whether the storage medium passed its startup probe.
func (s *Service) StorageAvailable() bool {
	return s.storageAvailable
}

// Catalog returns the product catalog.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Hub returns the hub view refresh signals are emitted on.
func (s *Service) Hub() *signal.Hub {
	return s.hub
}

// State returns the cart and wishlist state.
func (s *Service) State() *state.AppState {
	return s.state
}

// Dispatch runs one intent.
func (s *Service) Dispatch(ctx context.Context, in Intent) (Result, error) {
	switch in.Kind {
	case AddToCart:
		return s.addToCart(ctx, in)
	case RemoveFromCart:
		return s.removeFromCart(ctx, in.Index)
	case AdjustQuantity:
		return s.adjustQuantity(ctx, in.Index, in.Delta)
	case ToggleWishlist:
		return s.toggleWishlist(ctx, in)
	case RemoveFromWishlist:
		return s.removeFromWishlist(ctx, in.Index)
	case WishlistToCart:
		return s.wishlistToCart(ctx, in.Index)
	case AddAllWishlistToCart:
		return s.addAllWishlistToCart(ctx)
	case ViewProduct:
		return s.ViewProduct(ctx, in.ProductID, in.KeepRelated)
	case NextPage:
		return s.turnPage(in.Kind, s.pager.Next), nil
	case PrevPage:
		return s.turnPage(in.Kind, s.pager.Prev), nil
	case GoToPage:
		return s.goToPage(in.Page), nil
	case OpenSearch, CloseSearch:
		s.state.SetSearchActive(in.Kind == OpenSearch)
		return Result{Kind: in.Kind, Changed: true}, nil
	case ResetStorage:
		s.state.ResetStorage(ctx)
		s.emit(signal.Cart, signal.Wishlist)
		s.publishCart(ctx, state.OpReset)
		return Result{Kind: in.Kind, Changed: true, Notice: NoticeStorageReset}, nil
	default:
		return Result{}, apperrors.InvalidInput(fmt.Sprintf("unknown intent kind %q", in.Kind))
	}
}

// ViewProduct shows product id on the detail view. Unless keepRelated is set,
// the related list is refreshed with page preservation: it is only rebuilt
// when still empty, so the page survives moving between products.
func (s *Service) ViewProduct(ctx context.Context, id int, keepRelated bool) (Result, error) {
	if !s.catalog.Has(id) {
		return Result{}, apperrors.NotFound("product", fmt.Sprint(id))
	}

	s.nav.Lock()
	s.state.SetCurrentProduct(id)
	rebuilt := false
	if !keepRelated {
		rebuilt = s.pager.SetItems(s.catalog.All(), true, func(p domain.Product) bool {
			return p.ID == id
		})
	}
	summary := s.pager.Summary()
	s.nav.Unlock()

	s.emit(signal.Product)
	if rebuilt {
		s.emit(signal.Related)
	}
	s.logger.DebugContext(ctx, "viewing product",
		slog.Int("product_id", id),
		slog.Bool("related_rebuilt", rebuilt),
	)
	return Result{Kind: ViewProduct, Changed: true, Page: &summary}, nil
}

// RefreshRelated rebuilds the related list around the current product and
// resets the page.
func (s *Service) RefreshRelated() pagination.Summary {
	s.nav.Lock()
	current := s.state.CurrentProduct()
	s.pager.SetItems(s.catalog.All(), false, func(p domain.Product) bool {
		return p.ID == current
	})
	summary := s.pager.Summary()
	s.nav.Unlock()

	s.emit(signal.Related)
	return summary
}

// Related returns the current page of related products.
func (s *Service) Related() pagination.Result[domain.Product] {
	return s.pager.Result()
}

// Search returns the catalog products matching query.
func (s *Service) Search(query string) []domain.Product {
	return s.catalog.Search(query)
}

// CheckoutWhatsApp hands the cart off through a prefilled WhatsApp chat.
func (s *Service) CheckoutWhatsApp(ctx context.Context) (checkout.Handoff, error) {
	cart := s.state.Cart()
	h, err := s.checkout.WhatsApp(ctx, cart)
	if err != nil {
		return checkout.Handoff{}, err
	}
	s.publishCheckout(ctx, h.Channel, cart)
	return h, nil
}

// CheckoutClipboard copies the quote request and returns the bare chat URL.
func (s *Service) CheckoutClipboard(ctx context.Context) (checkout.Handoff, error) {
	cart := s.state.Cart()
	h, err := s.checkout.Clipboard(ctx, cart)
	if err != nil {
		return checkout.Handoff{}, err
	}
	s.publishCheckout(ctx, h.Channel, cart)
	return h, nil
}

func (s *Service) addToCart(ctx context.Context, in Intent) (Result, error) {
	p, color, err := s.variant(in.ProductID, in.Color)
	if err != nil {
		return Result{}, err
	}

	line := s.state.AddToCart(ctx, p, ClampQuantity(in.Quantity), color)
	s.emit(signal.Cart)
	s.publishCart(ctx, state.OpAdd)
	return Result{Kind: AddToCart, Changed: true, Line: &line, Notice: NoticeAddedToCart}, nil
}

func (s *Service) removeFromCart(ctx context.Context, index int) (Result, error) {
	if !s.state.RemoveFromCart(ctx, index) {
		return Result{Kind: RemoveFromCart}, nil
	}
	s.emit(signal.Cart)
	s.publishCart(ctx, state.OpRemove)
	return Result{Kind: RemoveFromCart, Changed: true}, nil
}

func (s *Service) adjustQuantity(ctx context.Context, index, delta int) (Result, error) {
	if !s.state.AdjustQuantity(ctx, index, delta) {
		return Result{Kind: AdjustQuantity}, nil
	}
	s.emit(signal.Cart)
	s.publishCart(ctx, state.OpAdjust)
	return Result{Kind: AdjustQuantity, Changed: true}, nil
}

func (s *Service) toggleWishlist(ctx context.Context, in Intent) (Result, error) {
	p, color, err := s.variant(in.ProductID, in.Color)
	if err != nil {
		return Result{}, err
	}

	added := s.state.ToggleWishlist(ctx, p, color)
	s.emit(signal.Wishlist)

	entry := domain.NewWishlistEntry(p, color)
	if added {
		s.report(ctx, "wishlist.item_added", s.publisher.PublishWishlistItemAdded(ctx, s.tabID, entry))
		return Result{Kind: ToggleWishlist, Changed: true, Added: true, Notice: NoticeWishlistAdded}, nil
	}
	s.report(ctx, "wishlist.item_removed", s.publisher.PublishWishlistItemRemoved(ctx, s.tabID, entry))
	return Result{Kind: ToggleWishlist, Changed: true, Notice: NoticeWishlistRemoved}, nil
}

func (s *Service) removeFromWishlist(ctx context.Context, index int) (Result, error) {
	entry, ok := s.state.RemoveFromWishlist(ctx, index)
	if !ok {
		return Result{Kind: RemoveFromWishlist}, nil
	}
	s.emit(signal.Wishlist)
	s.report(ctx, "wishlist.item_removed", s.publisher.PublishWishlistItemRemoved(ctx, s.tabID, entry))
	return Result{Kind: RemoveFromWishlist, Changed: true, Notice: NoticeWishlistRemoved}, nil
}

// wishlistToCart adds one unit of the wishlist entry at index to the cart.
// The entry stays in the wishlist.
func (s *Service) wishlistToCart(ctx context.Context, index int) (Result, error) {
	wishlist := s.state.Wishlist()
	if index < 0 || index >= len(wishlist) {
		s.logger.WarnContext(ctx, "wishlist index out of range",
			slog.Int("index", index),
			slog.Int("entries", len(wishlist)),
		)
		return Result{Kind: WishlistToCart}, nil
	}

	entry := wishlist[index]
	p, err := s.catalog.Get(entry.ProductID)
	if err != nil {
		return Result{}, err
	}

	line := s.state.AddToCart(ctx, p, 1, entry.Color)
	s.emit(signal.Cart)
	s.publishCart(ctx, state.OpAdd)
	return Result{Kind: WishlistToCart, Changed: true, Line: &line, Notice: NoticeAddedFromWishlist}, nil
}

// addAllWishlistToCart adds one unit of every wishlist entry still in the
// catalog.
func (s *Service) addAllWishlistToCart(ctx context.Context) (Result, error) {
	wishlist := s.state.Wishlist()
	if len(wishlist) == 0 {
		return Result{Kind: AddAllWishlistToCart, Notice: NoticeWishlistEmpty}, nil
	}

	added := 0
	for _, entry := range wishlist {
		p, err := s.catalog.Get(entry.ProductID)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping wishlist entry missing from catalog",
				slog.Int("product_id", entry.ProductID),
			)
			continue
		}
		s.state.AddToCart(ctx, p, 1, entry.Color)
		added++
	}
	if added == 0 {
		return Result{Kind: AddAllWishlistToCart}, nil
	}

	s.emit(signal.Cart)
	s.publishCart(ctx, state.OpAdd)
	return Result{Kind: AddAllWishlistToCart, Changed: true, Notice: NoticeAddedFromWishlist}, nil
}

func (s *Service) turnPage(kind Kind, move func() bool) Result {
	s.nav.Lock()
	moved := move()
	summary := s.pager.Summary()
	s.nav.Unlock()

	if moved {
		s.emit(signal.Related)
	}
	return Result{Kind: kind, Changed: moved, Page: &summary}
}

func (s *Service) goToPage(page int) Result {
	s.nav.Lock()
	before := s.pager.Page()
	after := s.pager.SetPage(page - 1)
	summary := s.pager.Summary()
	s.nav.Unlock()

	changed := before != after
	if changed {
		s.emit(signal.Related)
	}
	return Result{Kind: GoToPage, Changed: changed, Page: &summary}
}

// variant resolves a product and the color to use for it. An empty color
// means the product's default color, the one the detail view selects.
func (s *Service) variant(productID int, color string) (domain.Product, string, error) {
	p, err := s.catalog.Get(productID)
	if err != nil {
		return domain.Product{}, "", err
	}
	if color == "" {
		return p, p.DefaultColor(), nil
	}
	if !p.HasColor(color) {
		return domain.Product{}, "", apperrors.InvalidInput(
			fmt.Sprintf("product %d has no color %q", productID, color))
	}
	return p, color, nil
}

func (s *Service) emit(kinds ...signal.Kind) {
	for _, k := range kinds {
		s.hub.Emit(signal.Signal{Kind: k, Source: signal.SourceLocal})
	}
}

func (s *Service) publishCart(ctx context.Context, op string) {
	s.report(ctx, "cart.updated", s.publisher.PublishCartUpdated(ctx, s.tabID, op, s.state.Cart()))
}

func (s *Service) publishCheckout(ctx context.Context, channel string, cart domain.Cart) {
	s.report(ctx, "checkout.handoff", s.publisher.PublishCheckoutHandoff(ctx, s.tabID, channel, cart))
}

// report logs a failed publish. Events never fail an intent.
func (s *Service) report(ctx context.Context, name string, err error) {
	if err != nil {
		s.logger.WarnContext(ctx, "failed to publish event",
			slog.String("event", name),
			slog.String("error", err.Error()),
		)
	}
}
