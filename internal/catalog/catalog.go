// Package catalog holds the immutable product list the storefront sells.
//
// A catalog is loaded once at startup, validated against an embedded CUE
// schema, and never modified afterwards. Readers may share it freely.
package catalog

import (
	"errors"
	"fmt"

	"github.com/roach88/storefront/internal/model"
)

// ErrInvalidCatalog is wrapped by errors for catalogs that parse but cannot
// be indexed (empty or duplicate ids).
var ErrInvalidCatalog = errors.New("invalid catalog")

// Store is the read-only catalog capability consumed by the rest of the
// application.
type Store interface {
	All() []model.Product
	ByID(id string) (model.Product, bool)
}

// Catalog is an in-memory Store.
type Catalog struct {
	products []model.Product
	byID     map[string]int
}

var _ Store = (*Catalog)(nil)

// New builds a catalog from products, preserving their order.
// Product ids must be unique.
func New(products []model.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]model.Product, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	copy(c.products, products)

	for i, p := range c.products {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: product at index %d has empty id", ErrInvalidCatalog, i)
		}
		if prev, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %q at index %d (first seen at %d)", ErrInvalidCatalog, p.ID, i, prev)
		}
		c.byID[p.ID] = i
	}
	return c, nil
}

// All returns the products in catalog order. The returned slice is a copy.
func (c *Catalog) All() []model.Product {
	out := make([]model.Product, len(c.products))
	copy(out, c.products)
	return out
}

// ByID looks a product up by id.
func (c *Catalog) ByID(id string) (model.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Product{}, false
	}
	return c.products[i], true
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}
