package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/storefront/internal/model"
)

// marshalFragment converts a fragment value to JSON for storage.
// HTML escaping is disabled so product names round-trip byte for byte.
func marshalFragment(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// Encoder adds a trailing newline, remove it
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// unmarshalCart parses a stored cart. Unknown fields are ignored.
func unmarshalCart(data []byte) (model.Cart, error) {
	var cart model.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	if cart == nil {
		cart = model.Cart{}
	}
	return cart, nil
}

// unmarshalOrders parses stored orders. Unknown fields are ignored.
func unmarshalOrders(data []byte) ([]model.Order, error) {
	var orders []model.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("unmarshal orders: %w", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}
