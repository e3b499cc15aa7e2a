package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/model"
)

func TestMarshalFragment_NoHTMLEscapingNoNewline(t *testing.T) {
	p := testProduct("1", "10.50")
	p.Name = "Amp <50W> & Cab"

	data, err := marshalFragment(model.Cart{{Product: p, Quantity: 2}})
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"name":"Amp <50W> & Cab"`)
	assert.Contains(t, s, `"price":10.5`)
	assert.Contains(t, s, `"quantity":2`)
	assert.NotContains(t, s, "\n")
}

func TestUnmarshalCart(t *testing.T) {
	cart, err := unmarshalCart([]byte(`null`))
	require.NoError(t, err)
	assert.NotNil(t, cart)
	assert.Empty(t, cart)

	cart, err = unmarshalCart([]byte(`[{"product":{"id":"a","price":1.25,"color":"red"},"quantity":3,"gift":true}]`))
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, "a", cart[0].Product.ID)
	assert.Equal(t, "1.25", cart[0].Product.Price.String())
	assert.Equal(t, 3, cart[0].Quantity)

	_, err = unmarshalCart([]byte(`{"not":"a list"}`))
	assert.Error(t, err)
}

func TestUnmarshalOrders(t *testing.T) {
	orders, err := unmarshalOrders([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, orders)

	orders, err = unmarshalOrders([]byte(`[{"id":"o1","userId":"u1","items":[],"total":108,"status":"processing","orderDate":"2024-03-01T10:00:00Z","shippingAddress":{"street":"1 Main","city":"Austin","state":"TX","zipCode":"78701"}}]`))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, model.OrderProcessing, orders[0].Status)
	assert.Equal(t, "78701", orders[0].ShippingAddress.ZipCode)
	assert.Equal(t, "108", orders[0].Total.String())

	_, err = unmarshalOrders([]byte(`[{`))
	assert.Error(t, err)
}
