// Package view computes read-only projections of the storefront state:
// the filtered and sorted product listing, cart totals and catalog facets.
//
// Every function here is pure and never modifies its inputs.
package view

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/storefront/internal/model"
)

// SortKey selects the listing order.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortName      SortKey = "name"
)

// SortKeys lists the supported keys in display order.
var SortKeys = []SortKey{SortFeatured, SortPriceLow, SortPriceHigh, SortRating, SortName}

// ParseSortKey returns the key named s, or false if s is not a known key.
func ParseSortKey(s string) (SortKey, bool) {
	for _, k := range SortKeys {
		if string(k) == s {
			return k, true
		}
	}
	return SortFeatured, false
}

// Project filters products by criteria and orders them by key.
//
// Filtering is conjunctive: search query (case-insensitive substring of
// name, brand or category), exact category, exact brand, inclusive price
// range. Empty query, category and brand match everything. Sorting is stable;
// unknown keys keep catalog order like SortFeatured.
func Project(products []model.Product, c model.FilterCriteria, key SortKey) []model.Product {
	m := newMatcher(c.SearchQuery)

	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if !m.match(p) {
			continue
		}
		if c.SelectedCategory != "" && p.Category != c.SelectedCategory {
			continue
		}
		if c.SelectedBrand != "" && p.Brand != c.SelectedBrand {
			continue
		}
		if !c.PriceRange.Contains(p.Price) {
			continue
		}
		out = append(out, p)
	}

	if cmpFn := comparator(key); cmpFn != nil {
		slices.SortStableFunc(out, cmpFn)
	}
	return out
}

func comparator(key SortKey) func(a, b model.Product) int {
	switch key {
	case SortPriceLow:
		return func(a, b model.Product) int { return a.Price.Cmp(b.Price) }
	case SortPriceHigh:
		return func(a, b model.Product) int { return b.Price.Cmp(a.Price) }
	case SortRating:
		return func(a, b model.Product) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortName:
		return func(a, b model.Product) int { return strings.Compare(a.Name, b.Name) }
	default:
		return nil
	}
}

// matcher performs case-insensitive substring search using Unicode case
// folding on NFC-normalised text, so "ÉCLAT" finds "éclat" regardless of how
// either string was composed.
type matcher struct {
	folder cases.Caser
	needle string
}

func newMatcher(query string) matcher {
	m := matcher{folder: cases.Fold()}
	m.needle = m.fold(query)
	return m
}

func (m matcher) fold(s string) string {
	return m.folder.String(norm.NFC.String(s))
}

func (m matcher) match(p model.Product) bool {
	if m.needle == "" {
		return true
	}
	return strings.Contains(m.fold(p.Name), m.needle) ||
		strings.Contains(m.fold(p.Brand), m.needle) ||
		strings.Contains(m.fold(p.Category), m.needle)
}
