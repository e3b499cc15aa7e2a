package view

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/storefront/internal/model"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func line(id, price string, qty int) model.CartLine {
	return model.CartLine{Product: model.Product{ID: id, Price: d(price)}, Quantity: qty}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestCartTotals_EndToEndExample(t *testing.T) {
	totals := CartTotals(model.Cart{line("A", "50", 2)})

	assertDecimal(t, "100", totals.Subtotal, "subtotal")
	assertDecimal(t, "0", totals.Shipping, "shipping")
	assertDecimal(t, "8.00", totals.Tax, "tax")
	assertDecimal(t, "108.00", totals.Total, "total")
	assert.True(t, totals.FreeShipping())
}

func TestCartTotals_ShippingThreshold(t *testing.T) {
	tests := []struct {
		name     string
		cart     model.Cart
		subtotal string
		shipping string
	}{
		{
			name:     "three items below threshold",
			cart:     model.Cart{line("a", "10", 1), line("b", "20.50", 2), line("c", "5.25", 4)},
			subtotal: "72.00",
			shipping: "9.99",
		},
		{
			name:     "exactly 99 still pays shipping",
			cart:     model.Cart{line("a", "33", 1), line("b", "33", 1), line("c", "33", 1)},
			subtotal: "99",
			shipping: "9.99",
		},
		{
			name:     "one cent above threshold ships free",
			cart:     model.Cart{line("a", "33", 1), line("b", "33", 1), line("c", "33.01", 1)},
			subtotal: "99.01",
			shipping: "0",
		},
		{
			name:     "empty cart",
			cart:     model.Cart{},
			subtotal: "0",
			shipping: "9.99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := CartTotals(tt.cart)

			assertDecimal(t, tt.subtotal, totals.Subtotal, "subtotal")
			assertDecimal(t, tt.shipping, totals.Shipping, "shipping")

			s := d(tt.subtotal)
			wantTotal := s.Add(d(tt.shipping)).Add(s.Mul(d("0.08")))
			assertDecimal(t, wantTotal.String(), totals.Total, "total")
		})
	}
}

func TestCartTotals_TaxIsExact(t *testing.T) {
	totals := CartTotals(model.Cart{line("a", "19.99", 3)})

	assertDecimal(t, "59.97", totals.Subtotal, "subtotal")
	assertDecimal(t, "4.7976", totals.Tax, "tax")
	assertDecimal(t, "74.7576", totals.Total, "total")
}

func TestItemCountAndInCart(t *testing.T) {
	cart := model.Cart{line("a", "1", 2), line("b", "1", 3)}

	assert.Equal(t, 5, ItemCount(cart))
	assert.Equal(t, 0, ItemCount(nil))
	assert.True(t, InCart(cart, "b"))
	assert.False(t, InCart(cart, "z"))
}
