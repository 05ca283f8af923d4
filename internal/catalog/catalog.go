// Package catalog holds the static, read-only product catalog.
package catalog

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/arglo/storefront/internal/domain"
	apperrors "github.com/arglo/storefront/pkg/errors"
)

// Catalog maps product ids to records. It is immutable after construction
// and safe for concurrent use.
type Catalog struct {
	byID  map[int]domain.Product
	order []int
	index []searchDoc
}

// New builds a catalog from products, rejecting duplicate ids.
func New(products []domain.Product) (*Catalog, error) {
	c := &Catalog{
		byID:  make(map[int]domain.Product, len(products)),
		order: make([]int, 0, len(products)),
	}
	for _, p := range products {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %d: %w", p.ID, apperrors.ErrConflict)
		}
		c.byID[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	sort.Ints(c.order)

	c.index = make([]searchDoc, 0, len(c.order))
	for _, id := range c.order {
		c.index = append(c.index, newSearchDoc(c.byID[id]))
	}
	return c, nil
}

// Get returns the product with the given id.
func (c *Catalog) Get(id int) (domain.Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", strconv.Itoa(id))
	}
	return p, nil
}

// Has reports whether id exists.
func (c *Catalog) Has(id int) bool {
	_, ok := c.byID[id]
	return ok
}

// All returns every product ordered by id.
func (c *Catalog) All() []domain.Product {
	out := make([]domain.Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.order)
}

// FirstID returns the lowest product id, or false for an empty catalog.
func (c *Catalog) FirstID() (int, bool) {
	if len(c.order) == 0 {
		return 0, false
	}
	return c.order[0], true
}
