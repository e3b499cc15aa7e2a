package engine

import "github.com/roach88/storefront/internal/model"

// State is the single authoritative application state.
//
// A State is treated as an immutable value: Reduce never writes into the
// slices of its input, so a State handed to an observer stays valid after
// later transitions.
type State struct {
	Cart   model.Cart
	Orders []model.Order
	Filter model.FilterCriteria
}

// InitialState returns an empty cart, no orders and default filters.
func InitialState() State {
	return State{
		Cart:   model.Cart{},
		Orders: []model.Order{},
		Filter: model.DefaultFilter(),
	}
}

// Reduce computes the next state. It is pure and total: unknown or nil
// actions return s unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case AddToCart:
		s.Cart = addToCart(s.Cart, a.Product)
	case RemoveFromCart:
		s.Cart = removeFromCart(s.Cart, a.ProductID)
	case UpdateCartQuantity:
		s.Cart = updateQuantity(s.Cart, a.ProductID, a.Quantity)
	case ClearCart:
		if len(s.Cart) > 0 {
			s.Cart = model.Cart{}
		}
	case AddOrder:
		s.Orders = appendOrder(s.Orders, a.Order)
	case PlaceOrder:
		s.Orders = appendOrder(s.Orders, a.Order)
		s.Cart = model.Cart{}
	case SetSearchQuery:
		s.Filter.SearchQuery = a.Query
	case SetCategory:
		s.Filter.SelectedCategory = a.Category
	case SetBrand:
		s.Filter.SelectedBrand = a.Brand
	case SetPriceRange:
		s.Filter.PriceRange = a.Range
	case ResetFilters:
		s.Filter.SelectedCategory = ""
		s.Filter.SelectedBrand = ""
		s.Filter.PriceRange = model.DefaultPriceRange()
	}
	return s
}

func addToCart(cart model.Cart, p model.Product) model.Cart {
	if i := cart.Index(p.ID); i >= 0 {
		next := cart.Clone()
		next[i].Quantity++
		return next
	}
	next := make(model.Cart, len(cart), len(cart)+1)
	copy(next, cart)
	return append(next, model.CartLine{Product: p, Quantity: 1})
}

func removeFromCart(cart model.Cart, productID string) model.Cart {
	i := cart.Index(productID)
	if i < 0 {
		return cart
	}
	next := make(model.Cart, 0, len(cart)-1)
	next = append(next, cart[:i]...)
	return append(next, cart[i+1:]...)
}

func updateQuantity(cart model.Cart, productID string, quantity int) model.Cart {
	i := cart.Index(productID)
	if i < 0 {
		return cart
	}
	if quantity <= 0 {
		return removeFromCart(cart, productID)
	}
	if cart[i].Quantity == quantity {
		return cart
	}
	next := cart.Clone()
	next[i].Quantity = quantity
	return next
}

func appendOrder(orders []model.Order, o model.Order) []model.Order {
	next := make([]model.Order, len(orders), len(orders)+1)
	copy(next, orders)
	return append(next, o.Clone())
}
