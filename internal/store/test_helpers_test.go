package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/roach88/storefront/internal/model"
)

// createTestStore opens a fresh SQLite backend in a temp dir.
func createTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProduct(id, price string) model.Product {
	return model.Product{
		ID:       id,
		Name:     "Product " + id,
		Category: "Guitars",
		Brand:    "Fender",
		Price:    decimal.RequireFromString(price),
		InStock:  5,
		Rating:   4.5,
		Reviews:  12,
	}
}

// failingBackend fails every operation on the named fragments.
type failingBackend struct {
	Backend
	fail map[string]bool
}

var errBackend = errors.New("backend unavailable")

func (f *failingBackend) Get(ctx context.Context, name string) ([]byte, bool, error) {
	if f.fail[name] {
		return nil, false, errBackend
	}
	return f.Backend.Get(ctx, name)
}

func (f *failingBackend) Put(ctx context.Context, name string, data []byte) error {
	if f.fail[name] {
		return errBackend
	}
	return f.Backend.Put(ctx, name, data)
}

// countingBackend records how many Puts reached each fragment.
type countingBackend struct {
	*Memory
	puts map[string]int
}

func newCountingBackend() *countingBackend {
	return &countingBackend{Memory: NewMemory(), puts: make(map[string]int)}
}

func (c *countingBackend) Put(ctx context.Context, name string, data []byte) error {
	c.Memory.mu.Lock()
	c.puts[name]++
	c.Memory.mu.Unlock()
	return c.Memory.Put(ctx, name, data)
}

func (c *countingBackend) count(name string) int {
	c.Memory.mu.Lock()
	defer c.Memory.mu.Unlock()
	return c.puts[name]
}
