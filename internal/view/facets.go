package view

import "github.com/roach88/storefront/internal/model"

// DefaultFeaturedCount is how many products the home page features.
const DefaultFeaturedCount = 4

// Featured returns the first n products in catalog order.
func Featured(products []model.Product, n int) []model.Product {
	if n < 0 {
		n = 0
	}
	n = min(n, len(products))
	out := make([]model.Product, n)
	copy(out, products[:n])
	return out
}

// Facets are the distinct filter values offered for a catalog.
type Facets struct {
	Categories []string `json:"categories"`
	Brands     []string `json:"brands"`
}

// CatalogFacets collects distinct categories and brands in first-seen order.
func CatalogFacets(products []model.Product) Facets {
	f := Facets{Categories: []string{}, Brands: []string{}}
	seenCat := make(map[string]bool)
	seenBrand := make(map[string]bool)
	for _, p := range products {
		if p.Category != "" && !seenCat[p.Category] {
			seenCat[p.Category] = true
			f.Categories = append(f.Categories, p.Category)
		}
		if p.Brand != "" && !seenBrand[p.Brand] {
			seenBrand[p.Brand] = true
			f.Brands = append(f.Brands, p.Brand)
		}
	}
	return f
}

// ToggleCategory returns the category to select when the user picks
// category: picking the current selection clears it.
func ToggleCategory(c model.FilterCriteria, category string) string {
	if category == c.SelectedCategory {
		return ""
	}
	return category
}

// ToggleBrand is ToggleCategory for brands.
func ToggleBrand(c model.FilterCriteria, brand string) string {
	if brand == c.SelectedBrand {
		return ""
	}
	return brand
}
