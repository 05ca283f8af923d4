package storefront

import (
	"github.com/arglo/storefront/internal/domain"
	"github.com/arglo/storefront/pkg/pagination"
)

// ProductView is the detail view of the current product.
type ProductView struct {
	domain.Product
	Discount      int    `json:"discount,omitempty"`
	SelectedColor string `json:"selected_color"`
	InWishlist    bool   `json:"in_wishlist"`
}

// CartView is the cart sidebar with its badge count.
type CartView struct {
	Items []CartLineView `json:"items"`
	Count int            `json:"count"`
	Total float64        `json:"total"`
}

// CartLineView is a cart line with its computed subtotal.
type CartLineView struct {
	domain.CartLineItem
	LineTotal float64 `json:"line_total"`
}

// WishlistView is the wishlist sidebar with its badge count.
type WishlistView struct {
	Items []domain.WishlistEntry `json:"items"`
	Count int                    `json:"count"`
}

// RelatedView is the current page of related products.
type RelatedView struct {
	Products []domain.Product   `json:"products"`
	Page     pagination.Summary `json:"page"`
	HasNext  bool               `json:"has_next"`
	HasPrev  bool               `json:"has_prev"`
}

// View is everything the rendering surface needs for one frame.
type View struct {
	TabID        string       `json:"tab_id"`
	Product      ProductView  `json:"product"`
	Cart         CartView     `json:"cart"`
	Wishlist     WishlistView `json:"wishlist"`
	Related      RelatedView  `json:"related"`
	SearchActive bool         `json:"search_active"`

	// Banner is set when state will not survive a restart.
	Banner string `json:"banner,omitempty"`
}

// View builds the view model. color selects the variant shown on the detail
// view; an empty or unknown color falls back to the product's default.
func (s *Service) View(color string) (View, error) {
	p, err := s.catalog.Get(s.state.CurrentProduct())
	if err != nil {
		return View{}, err
	}
	if color == "" || !p.HasColor(color) {
		color = p.DefaultColor()
	}

	cart, wishlist := s.state.Snapshot()
	lines := make([]CartLineView, len(cart))
	for i, l := range cart {
		lines[i] = CartLineView{CartLineItem: l, LineTotal: l.LineTotal()}
	}

	s.nav.Lock()
	related := RelatedView{
		Products: s.pager.CurrentPage(),
		Page:     s.pager.Summary(),
		HasNext:  s.pager.HasNext(),
		HasPrev:  s.pager.HasPrev(),
	}
	s.nav.Unlock()

	v := View{
		TabID: s.tabID,
		Product: ProductView{
			Product:       p,
			Discount:      p.Discount(),
			SelectedColor: color,
			InWishlist:    wishlist.FindEntry(p.ID, color) >= 0,
		},
		Cart: CartView{
			Items: lines,
			Count: cart.ItemCount(),
			Total: cart.Total(),
		},
		Wishlist: WishlistView{
			Items: wishlist,
			Count: len(wishlist),
		},
		Related:      related,
		SearchActive: s.state.SearchActive(),
	}
	if !s.storageAvailable {
		v.Banner = NoticeStorageUnavailable
	}
	return v, nil
}
