package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers in persisted fragments and catalog files.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog entry. Immutable once loaded.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	InStock     int             `json:"inStock"`
	Rating      float64         `json:"rating"`
	Reviews     int             `json:"reviews"`
	Image       string          `json:"image,omitempty"`
	Description string          `json:"description,omitempty"`
}

// CartLine is one distinct product in the cart.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns price × quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered sequence of lines in first-add order.
type Cart []CartLine

// Index returns the position of the line for productID, or -1.
func (c Cart) Index(productID string) int {
	for i, line := range c {
		if line.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Quantity returns the quantity held for productID (0 when absent).
func (c Cart) Quantity(productID string) int {
	if i := c.Index(productID); i >= 0 {
		return c[i].Quantity
	}
	return 0
}

// Clone returns an independent copy of the cart.
// Lines are values and decimal.Decimal is immutable, so a slice copy is a deep copy.
func (c Cart) Clone() Cart {
	if c == nil {
		return Cart{}
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Equal reports whether both carts hold the same product ids and quantities
// in the same order.
func (c Cart) Equal(other Cart) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i].Product.ID != other[i].Product.ID || c[i].Quantity != other[i].Quantity {
			return false
		}
	}
	return true
}

// OrderStatus is the fulfilment status of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered:
		return true
	}
	return false
}

// Address is the shipping destination stamped on an order.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// Order is a placed order. Only Status may change after creation, and only
// through fulfilment events outside this module.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	Items           Cart            `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	OrderDate       time.Time       `json:"orderDate"`
	ShippingAddress Address         `json:"shippingAddress"`
	TransactionID   string          `json:"transactionId,omitempty"`
}

// Clone returns a copy of the order that shares no slices with o.
func (o Order) Clone() Order {
	o.Items = o.Items.Clone()
	return o
}

// User is the signed-in identity supplied by the identity collaborator.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}
