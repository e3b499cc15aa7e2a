package view

import (
	"github.com/shopspring/decimal"

	"github.com/roach88/storefront/internal/model"
)

// Fixed business constants. Not configurable.
var (
	FreeShippingThreshold = decimal.NewFromInt(99)
	FlatShipping          = decimal.RequireFromString("9.99")
	TaxRate               = decimal.RequireFromString("0.08")
)

// Totals is the price breakdown of a cart.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// FreeShipping reports whether shipping is waived.
func (t Totals) FreeShipping() bool {
	return t.Shipping.IsZero()
}

// CartTotals computes subtotal, shipping, tax and total with exact decimal
// arithmetic. Shipping is free strictly above the threshold.
func CartTotals(cart model.Cart) Totals {
	subtotal := decimal.Zero
	for _, line := range cart {
		subtotal = subtotal.Add(line.LineTotal())
	}

	shipping := FlatShipping
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(TaxRate)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax),
	}
}

// ItemCount is the total number of units in the cart.
func ItemCount(cart model.Cart) int {
	n := 0
	for _, line := range cart {
		n += line.Quantity
	}
	return n
}

// InCart reports whether the cart holds productID.
func InCart(cart model.Cart, productID string) bool {
	return cart.Index(productID) >= 0
}
