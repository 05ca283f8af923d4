package storefront

import (
	"github.com/arglo/storefront/internal/domain"
	"github.com/arglo/storefront/pkg/pagination"
)

// Kind names a user intent issued by the view.
type Kind string

const (
	AddToCart            Kind = "add_to_cart"
	RemoveFromCart       Kind = "remove_from_cart"
	AdjustQuantity       Kind = "adjust_quantity"
	ToggleWishlist       Kind = "toggle_wishlist"
	RemoveFromWishlist   Kind = "remove_from_wishlist"
	WishlistToCart       Kind = "wishlist_to_cart"
	AddAllWishlistToCart Kind = "add_all_wishlist_to_cart"
	ViewProduct          Kind = "view_product"
	NextPage             Kind = "next_page"
	PrevPage             Kind = "prev_page"
	GoToPage             Kind = "go_to_page"
	OpenSearch           Kind = "open_search"
	CloseSearch          Kind = "close_search"
	ResetStorage         Kind = "reset_storage"
)

// Kinds lists every intent kind.
var Kinds = []Kind{
	AddToCart, RemoveFromCart, AdjustQuantity, ToggleWishlist,
	RemoveFromWishlist, WishlistToCart, AddAllWishlistToCart, ViewProduct,
	NextPage, PrevPage, GoToPage, OpenSearch, CloseSearch, ResetStorage,
}

// Quantity bounds applied to add-to-cart intents.
const (
	MinQuantity = 1
	MaxQuantity = 999
)

// Intent is one command from the view. Only the fields relevant to Kind are
// read.
type Intent struct {
	Kind Kind `json:"kind"`

	// Product intents. An empty Color selects the default variant.
	ProductID int    `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Color     string `json:"color"`

	// Cart and wishlist line intents. An index outside the collection,
	// negative included, is a logged no-op.
	Index int `json:"index"`
	Delta int `json:"delta"`

	// GoToPage, 1-based.
	Page int `json:"page"`

	// ViewProduct keeps the related-products list untouched when set.
	KeepRelated bool `json:"keep_related"`
}

// Result reports what an intent did.
type Result struct {
	Kind    Kind                 `json:"kind"`
	Changed bool                 `json:"changed"`
	Added   bool                 `json:"added,omitempty"`
	Line    *domain.CartLineItem `json:"line,omitempty"`
	Page    *pagination.Summary  `json:"page,omitempty"`
	Notice  string               `json:"notice,omitempty"`
}

// ClampQuantity bounds q to [MinQuantity, MaxQuantity].
func ClampQuantity(q int) int {
	switch {
	case q < MinQuantity:
		return MinQuantity
	case q > MaxQuantity:
		return MaxQuantity
	default:
		return q
	}
}
