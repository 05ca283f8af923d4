package domain

import "math"

// CartLineItem is one cart row. Title, price and image are snapshots taken
// when the product was first added.
type CartLineItem struct {
	ProductID int     `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Color     string  `json:"color"`
	Image     string  `json:"image"`
}

// NewCartLineItem snapshots p into a new line.
func NewCartLineItem(p Product, quantity int, color string) CartLineItem {
	return CartLineItem{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Quantity:  quantity,
		Color:     color,
		Image:     p.DefaultImage(),
	}
}

// LineTotal is price times quantity, rounded to cents.
func (l CartLineItem) LineTotal() float64 {
	return RoundCents(l.Price * float64(l.Quantity))
}

// Cart is the ordered list of line items; order is display order.
type Cart []CartLineItem

// FindLine returns the index of the line for (productID, color), or -1.
func (c Cart) FindLine(productID int, color string) int {
	for i := range c {
		if c[i].ProductID == productID && c[i].Color == color {
			return i
		}
	}
	return -1
}

// ItemCount is the sum of quantities.
func (c Cart) ItemCount() int {
	var n int
	for _, l := range c {
		n += l.Quantity
	}
	return n
}

// Total is the sum of line totals, rounded to cents.
func (c Cart) Total() float64 {
	var total float64
	for _, l := range c {
		total += l.Price * float64(l.Quantity)
	}
	return RoundCents(total)
}

// Clone returns an independent copy. A nil cart clones to an empty one.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// RoundCents rounds half away from zero to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
