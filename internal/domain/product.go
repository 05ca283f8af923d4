package domain

// DefaultVariant names the variant used for products without color options
// and for quick actions that do not let the shopper pick one.
const DefaultVariant = "Default"

// Product is a read-only catalog record.
type Product struct {
	ID          int      `json:"id" toml:"id" yaml:"id"`
	Title       string   `json:"title" toml:"title" yaml:"title"`
	Price       float64  `json:"price" toml:"price" yaml:"price"`
	OldPrice    *float64 `json:"oldPrice,omitempty" toml:"oldPrice,omitempty" yaml:"oldPrice,omitempty"`
	Rating      int      `json:"rating" toml:"rating" yaml:"rating"`
	Reviews     int      `json:"reviews" toml:"reviews" yaml:"reviews"`
	Categories  []string `json:"categories" toml:"categories" yaml:"categories"`
	Tags        []string `json:"tags" toml:"tags" yaml:"tags"`
	Description string   `json:"description" toml:"description" yaml:"description"`
	Images      []string `json:"images" toml:"images" yaml:"images"`
	Colors      []string `json:"colors,omitempty" toml:"colors,omitempty" yaml:"colors,omitempty"`
}

// HasOldPrice reports whether a previous price is present.
func (p Product) HasOldPrice() bool {
	return p.OldPrice != nil
}

// Discount returns the whole-number percentage saved against OldPrice, or 0.
func (p Product) Discount() int {
	if !p.HasOldPrice() || *p.OldPrice <= 0 || *p.OldPrice <= p.Price {
		return 0
	}
	return int((*p.OldPrice - p.Price) / *p.OldPrice * 100)
}

// HasColors reports whether the product offers color variants.
func (p Product) HasColors() bool {
	return len(p.Colors) > 0
}

// HasColor reports whether color is selectable for the product. Products
// without variants only accept DefaultVariant.
func (p Product) HasColor(color string) bool {
	if !p.HasColors() {
		return color == DefaultVariant
	}
	for _, c := range p.Colors {
		if c == color {
			return true
		}
	}
	return false
}

// DefaultColor is the variant preselected on the detail page.
func (p Product) DefaultColor() string {
	if p.HasColors() {
		return p.Colors[0]
	}
	return DefaultVariant
}

// DefaultImage is the first image, used for thumbnails and snapshots.
func (p Product) DefaultImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
