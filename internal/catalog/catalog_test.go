package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	all := c.All()
	require.Len(t, all, 12)
	assert.Equal(t, "1", all[0].ID)
	assert.Equal(t, "Fender Player Stratocaster", all[0].Name)
	assert.True(t, decimal.RequireFromString("849.99").Equal(all[0].Price))

	p, ok := c.ByID("8")
	require.True(t, ok)
	assert.Equal(t, "Shure", p.Brand)
	assert.Equal(t, 40, p.InStock)

	_, ok = c.ByID("nope")
	assert.False(t, ok)
}

func TestAll_ReturnsCopy(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	all := c.All()
	all[0].Name = "mutated"

	p, _ := c.ByID("1")
	assert.Equal(t, "Fender Player Stratocaster", p.Name)
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	_, err := New([]model.Product{{ID: "a"}, {ID: "b"}, {ID: "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate product id "a"`)
	assert.ErrorIs(t, err, ErrInvalidCatalog)

	_, err = New([]model.Product{{ID: ""}})
	require.Error(t, err)
}

func TestLoad_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "catalog.yaml",
			content: `products:
  - id: g1
    name: Telecaster
    category: Guitars
    brand: Fender
    price: 1049.50
    inStock: 2
    rating: 4.5
    reviews: 10
`,
		},
		{
			name: "json",
			file: "catalog.json",
			content: `{"products": [{"id": "g1", "name": "Telecaster", "category": "Guitars",
  "brand": "Fender", "price": 1049.50, "inStock": 2, "rating": 4.5, "reviews": 10}]}`,
		},
		{
			name: "cue",
			file: "catalog.cue",
			content: `products: [{
	id:       "g1"
	name:     "Telecaster"
	category: "Guitars"
	brand:    "Fender"
	price:    1049.50
	inStock:  2
	rating:   4.5
	reviews:  10
}]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Load(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			p, ok := c.ByID("g1")
			require.True(t, ok)
			assert.Equal(t, "Telecaster", p.Name)
			assert.True(t, decimal.RequireFromString("1049.5").Equal(p.Price), p.Price.String())
			assert.Equal(t, 2, p.InStock)
			assert.Equal(t, 4.5, p.Rating)
		})
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "negative price",
			content: `{"products": [{"id": "x", "name": "X", "category": "C", "brand": "B", "price": -1, "inStock": 0, "rating": 1, "reviews": 0}]}`,
		},
		{
			name:    "rating above five",
			content: `{"products": [{"id": "x", "name": "X", "category": "C", "brand": "B", "price": 1, "inStock": 0, "rating": 5.5, "reviews": 0}]}`,
		},
		{
			name:    "missing name",
			content: `{"products": [{"id": "x", "category": "C", "brand": "B", "price": 1, "inStock": 0, "rating": 1, "reviews": 0}]}`,
		},
		{
			name:    "fractional stock",
			content: `{"products": [{"id": "x", "name": "X", "category": "C", "brand": "B", "price": 1, "inStock": 1.5, "rating": 1, "reviews": 0}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "catalog.json", tt.content))
			require.Error(t, err)

			var se *SchemaError
			assert.ErrorAs(t, err, &se)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeFile(t, "catalog.toml", "x = 1"))
	assert.ErrorContains(t, err, "unsupported catalog extension")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read catalog")

	_, err = Load(writeFile(t, "bad.yaml", "products: [\n"))
	assert.ErrorContains(t, err, "failed to parse YAML catalog")
}

func TestLoad_ExtraFieldsAllowed(t *testing.T) {
	c, err := Load(writeFile(t, "catalog.json",
		`{"products": [{"id": "x", "name": "X", "category": "C", "brand": "B", "price": 1, "inStock": 0, "rating": 1, "reviews": 0, "sku": "X-1"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}
