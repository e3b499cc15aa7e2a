package engine

import "github.com/roach88/storefront/internal/model"

// Kind names an action variant. Used for logging and scenario files.
type Kind string

const (
	KindAddToCart          Kind = "ADD_TO_CART"
	KindRemoveFromCart     Kind = "REMOVE_FROM_CART"
	KindUpdateCartQuantity Kind = "UPDATE_CART_QUANTITY"
	KindClearCart          Kind = "CLEAR_CART"
	KindAddOrder           Kind = "ADD_ORDER"
	KindPlaceOrder         Kind = "PLACE_ORDER"
	KindSetSearchQuery     Kind = "SET_SEARCH_QUERY"
	KindSetCategory        Kind = "SET_CATEGORY"
	KindSetBrand           Kind = "SET_BRAND"
	KindSetPriceRange      Kind = "SET_PRICE_RANGE"
	KindResetFilters       Kind = "RESET_FILTERS"
)

// Action is the closed set of state transitions.
//
// The interface is sealed by an unexported method: only the variants in this
// file satisfy it, and Reduce switches over exactly these variants. Adding a
// variant means adding a case to Reduce.
type Action interface {
	Kind() Kind
	sealed()
}

// AddToCart increments the product's line or appends a new line with quantity 1.
type AddToCart struct {
	Product model.Product
}

// RemoveFromCart deletes the line for ProductID if present.
type RemoveFromCart struct {
	ProductID string
}

// UpdateCartQuantity sets the quantity of an existing line.
// A quantity <= 0 removes the line.
type UpdateCartQuantity struct {
	ProductID string
	Quantity  int
}

// ClearCart empties the cart.
type ClearCart struct{}

// AddOrder appends an order without touching the cart.
// Used by rehydration; checkout uses PlaceOrder.
type AddOrder struct {
	Order model.Order
}

// PlaceOrder appends the order and empties the cart as one transition.
type PlaceOrder struct {
	Order model.Order
}

// SetSearchQuery replaces the search query.
type SetSearchQuery struct {
	Query string
}

// SetCategory replaces the selected category ("" clears it).
type SetCategory struct {
	Category string
}

// SetBrand replaces the selected brand ("" clears it).
type SetBrand struct {
	Brand string
}

// SetPriceRange replaces the price window.
type SetPriceRange struct {
	Range model.PriceRange
}

// ResetFilters clears category and brand and restores the default price
// range. The search query is left alone.
type ResetFilters struct{}

func (AddToCart) Kind() Kind          { return KindAddToCart }
func (RemoveFromCart) Kind() Kind     { return KindRemoveFromCart }
func (UpdateCartQuantity) Kind() Kind { return KindUpdateCartQuantity }
func (ClearCart) Kind() Kind          { return KindClearCart }
func (AddOrder) Kind() Kind           { return KindAddOrder }
func (PlaceOrder) Kind() Kind         { return KindPlaceOrder }
func (SetSearchQuery) Kind() Kind     { return KindSetSearchQuery }
func (SetCategory) Kind() Kind        { return KindSetCategory }
func (SetBrand) Kind() Kind           { return KindSetBrand }
func (SetPriceRange) Kind() Kind      { return KindSetPriceRange }
func (ResetFilters) Kind() Kind       { return KindResetFilters }

func (AddToCart) sealed()          {}
func (RemoveFromCart) sealed()     {}
func (UpdateCartQuantity) sealed() {}
func (ClearCart) sealed()          {}
func (AddOrder) sealed()           {}
func (PlaceOrder) sealed()         {}
func (SetSearchQuery) sealed()     {}
func (SetCategory) sealed()        {}
func (SetBrand) sealed()           {}
func (SetPriceRange) sealed()      {}
func (ResetFilters) sealed()       {}
