package domain

// WishlistEntry is a saved product variant, snapshotted like a cart line.
type WishlistEntry struct {
	ProductID int     `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Color     string  `json:"color"`
	Image     string  `json:"image"`
}

// NewWishlistEntry snapshots p for the given color.
func NewWishlistEntry(p Product, color string) WishlistEntry {
	return WishlistEntry{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Color:     color,
		Image:     p.DefaultImage(),
	}
}

// Wishlist is the ordered list of saved entries.
type Wishlist []WishlistEntry

// FindEntry returns the index of the entry for (productID, color), or -1.
func (w Wishlist) FindEntry(productID int, color string) int {
	for i := range w {
		if w[i].ProductID == productID && w[i].Color == color {
			return i
		}
	}
	return -1
}

// Clone returns an independent copy. A nil wishlist clones to an empty one.
func (w Wishlist) Clone() Wishlist {
	out := make(Wishlist, len(w))
	copy(out, w)
	return out
}
