package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/model"
)

func TestProducts_FilterAndSort(t *testing.T) {
	cfg := storeConfig(t, "")

	out, _, err := shop(t, cfg, "products", "--category", "Keyboards", "--sort", "price-low")
	require.NoError(t, err)

	korg := strings.Index(out, "Korg Minilogue XD")
	yamaha := strings.Index(out, "Yamaha P-125 Digital Piano")
	roland := strings.Index(out, "Roland FP-30X Digital Piano")
	require.True(t, korg > 0 && yamaha > 0 && roland > 0, out)
	assert.Less(t, korg, yamaha)
	assert.Less(t, yamaha, roland)
	assert.Contains(t, out, "3 of 12 products")
	assert.NotContains(t, out, "Stratocaster")
}

func TestProducts_JSON(t *testing.T) {
	cfg := storeConfig(t, "")

	out, _, err := shop(t, cfg, "--format", "json", "products", "--search", "SHURE")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   ProductListing `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Products, 1)
	assert.Equal(t, "8", resp.Data.Products[0].ID)
	assert.Equal(t, "SHURE", resp.Data.Filter.SearchQuery)
	assert.Equal(t, 12, resp.Data.Total)
}

func TestProducts_FeaturedAndPriceRange(t *testing.T) {
	cfg := storeConfig(t, "")

	out, _, err := shop(t, cfg, "products", "--featured")
	require.NoError(t, err)
	assert.Contains(t, out, "4 of 12 products")

	out, _, err = shop(t, cfg, "products", "--min", "0", "--max", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Ernie Ball Regular Slinky Strings")
	assert.Contains(t, out, "1 of 12 products")
}

func TestProducts_BadFlags(t *testing.T) {
	cfg := storeConfig(t, "")

	_, _, err := shop(t, cfg, "products", "--sort", "popularity")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = shop(t, cfg, "products", "--min", "500", "--max", "100")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestProduct_Detail(t *testing.T) {
	cfg := storeConfig(t, "")

	out, _, err := shop(t, cfg, "product", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Pearl Export EXX 5-Piece Kit")
	assert.Contains(t, out, "Out of stock")

	_, stderr, err := shop(t, cfg, "product", "404")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.Contains(t, stderr, `product "404" not found`)
}

func TestCart_PersistsAcrossInvocations(t *testing.T) {
	cfg := storeConfig(t, "")

	_, _, err := shop(t, cfg, "cart", "add", "8", "--qty", "2")
	require.NoError(t, err)

	out, _, err := shop(t, cfg, "cart")
	require.NoError(t, err)
	assert.Contains(t, out, "Shure SM58 Vocal Microphone")
	assert.Contains(t, out, "2 item(s)")
	assert.Contains(t, out, "Total:    $213.84")
	assert.Contains(t, out, "Shipping: FREE")

	out, _, err = shop(t, cfg, "cart", "add", "11")
	require.NoError(t, err)
	assert.Contains(t, out, "3 item(s)")

	out, _, err = shop(t, cfg, "cart", "set", "8", "0")
	require.NoError(t, err)
	assert.NotContains(t, out, "Shure")
	assert.Contains(t, out, "Shipping: $9.99 (free over $99.00)")

	out, _, err = shop(t, cfg, "cart", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty.")

	out, _, err = shop(t, cfg, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty.")
}

func TestCart_JSONAndRemove(t *testing.T) {
	cfg := storeConfig(t, "")

	_, _, err := shop(t, cfg, "cart", "add", "1")
	require.NoError(t, err)
	_, _, err = shop(t, cfg, "cart", "add", "3")
	require.NoError(t, err)

	out, _, err := shop(t, cfg, "--format", "json", "cart", "remove", "1")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			Lines     model.Cart `json:"lines"`
			ItemCount int        `json:"itemCount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Lines, 1)
	assert.Equal(t, "3", resp.Data.Lines[0].Product.ID)
	assert.Equal(t, 1, resp.Data.ItemCount)
}

func TestCart_Refusals(t *testing.T) {
	cfg := storeConfig(t, "")

	_, stderr, err := shop(t, cfg, "cart", "add", "7")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "out of stock")

	_, _, err = shop(t, cfg, "cart", "add", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = shop(t, cfg, "cart", "set", "8", "two")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, stderr, err = shop(t, cfg, "cart", "set", "8", "2")
	require.Error(t, err)
	assert.Contains(t, stderr, "not in the cart")

	_, _, err = shop(t, cfg, "cart", "add", "8", "--qty", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

var validCheckout = []string{
	"checkout",
	"--first-name", "Ada", "--last-name", "Lovelace", "--phone", "555-0100",
	"--address", "1 Main St", "--city", "Springfield", "--state", "IL", "--zip", "62701",
	"--card-number", "4242424242424242", "--expiry", "1230", "--cvv", "123", "--card-name", "Ada Lovelace",
}

func checkoutArgs(overrides ...string) []string {
	args := append([]string{}, validCheckout...)
	for i := 0; i+1 < len(overrides); i += 2 {
		for j := 1; j+1 < len(args); j += 2 {
			if args[j] == overrides[i] {
				args[j+1] = overrides[i+1]
			}
		}
	}
	return args
}

func TestCheckout_EndToEnd(t *testing.T) {
	cfg := storeConfig(t, "u1")

	_, _, err := shop(t, cfg, "cart", "add", "8", "--qty", "2")
	require.NoError(t, err)

	out, _, err := shop(t, cfg, checkoutArgs()...)
	require.NoError(t, err)
	assert.Contains(t, out, "Thank you! Your order has been placed.")
	assert.Contains(t, out, "Total: $213.84")
	assert.Contains(t, out, "Transaction: txn_")

	out, _, err = shop(t, cfg, "cart")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty.")

	out, _, err = shop(t, cfg, "--format", "json", "orders")
	require.NoError(t, err)
	var resp struct {
		Data []model.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	o := resp.Data[0]
	assert.Equal(t, "u1", o.UserID)
	assert.Equal(t, model.OrderProcessing, o.Status)
	assert.Equal(t, "213.84", o.Total.StringFixed(2))
	assert.Equal(t, "62701", o.ShippingAddress.ZipCode)
	require.Len(t, o.Items, 1)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.True(t, strings.HasPrefix(o.TransactionID, "txn_"))
}

func TestCheckout_Declined(t *testing.T) {
	cfg := storeConfig(t, "u1")

	_, _, err := shop(t, cfg, "cart", "add", "11")
	require.NoError(t, err)

	_, stderr, err := shop(t, cfg, checkoutArgs("--card-number", "4000 0000 0000 0002")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "Payment failed. Please try again.")

	out, _, err := shop(t, cfg, "orders")
	require.NoError(t, err)
	assert.Contains(t, out, "No orders yet.")

	out, _, err = shop(t, cfg, "cart")
	require.NoError(t, err)
	assert.Contains(t, out, "Ernie Ball Regular Slinky Strings")
}

func TestCheckout_ValidationErrors(t *testing.T) {
	cfg := storeConfig(t, "u1")

	_, _, err := shop(t, cfg, "cart", "add", "11")
	require.NoError(t, err)

	_, stderr, err := shop(t, cfg, checkoutArgs("--zip", "")...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "zipCode: ZIP code is required")

	_, stderr, err = shop(t, cfg, checkoutArgs("--expiry", "1")...)
	require.Error(t, err)
	assert.Contains(t, stderr, "expiryDate: Use MM/YY")

	out, _, err := shop(t, cfg, append([]string{"--format", "json"}, checkoutArgs("--cvv", "12")...)...)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, map[string]any{"cvv": "CVV must be 3 or 4 digits"}, resp.Error.Details)
}

func TestCheckout_Redirects(t *testing.T) {
	anon := storeConfig(t, "")
	_, _, err := shop(t, anon, "cart", "add", "11")
	require.NoError(t, err)

	_, stderr, err := shop(t, anon, checkoutArgs()...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "sign in to check out")

	empty := storeConfig(t, "u1")
	out, _, err := shop(t, empty, append([]string{"--format", "json"}, checkoutArgs()...)...)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeRedirect, resp.Error.Code)
	assert.Equal(t, map[string]any{"redirect": "/cart"}, resp.Error.Details)
}

func TestCatalogValidate(t *testing.T) {
	out, _, err := execute(t, "catalog", "validate", "../catalog/default_catalog.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "12 products")
	assert.Contains(t, out, "out of stock: 7")

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"products":[{"id":"x","name":"X","category":"C","brand":"B","price":-1,"inStock":1,"rating":4,"reviews":0}]}`), 0644))
	_, stderr, err := execute(t, "catalog", "validate", bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "Error [E301]")

	dup := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte(`
products:
  - { id: a, name: A, category: C, brand: B, price: 1, inStock: 1, rating: 4, reviews: 0 }
  - { id: a, name: A2, category: C, brand: B, price: 1, inStock: 1, rating: 4, reviews: 0 }
`), 0644))
	_, _, err = execute(t, "catalog", "validate", dup)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, _, err = execute(t, "catalog", "validate", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCatalogFacets(t *testing.T) {
	cfg := storeConfig(t, "")

	out, _, err := shop(t, cfg, "catalog", "facets")
	require.NoError(t, err)
	assert.Contains(t, out, "Categories:\n  Guitars\n  Keyboards\n  Drums\n")
	assert.Contains(t, out, "  Ernie Ball\n")
}
