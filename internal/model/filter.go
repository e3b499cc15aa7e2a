package model

import "github.com/shopspring/decimal"

// DefaultPriceMax is the upper bound of the default price filter.
const DefaultPriceMax = 5000

// PriceRange is an inclusive [Min, Max] price window.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// NewPriceRange builds a range from whole currency units.
func NewPriceRange(min, max int64) PriceRange {
	return PriceRange{Min: decimal.NewFromInt(min), Max: decimal.NewFromInt(max)}
}

// DefaultPriceRange returns [0, 5000].
func DefaultPriceRange() PriceRange {
	return NewPriceRange(0, DefaultPriceMax)
}

// Contains reports whether price lies inside the inclusive range.
func (r PriceRange) Contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(r.Min) && price.LessThanOrEqual(r.Max)
}

// FilterCriteria is the transient catalog filter state. Never persisted.
type FilterCriteria struct {
	SearchQuery      string     `json:"searchQuery"`
	SelectedCategory string     `json:"selectedCategory"`
	SelectedBrand    string     `json:"selectedBrand"`
	PriceRange       PriceRange `json:"priceRange"`
}

// DefaultFilter returns the criteria a fresh session starts with.
func DefaultFilter() FilterCriteria {
	return FilterCriteria{PriceRange: DefaultPriceRange()}
}
