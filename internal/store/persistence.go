package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/storefront/internal/engine"
	"github.com/roach88/storefront/internal/model"
)

// Fragment names. Cart and orders are stored and loaded independently.
const (
	FragmentCart   = "cart"
	FragmentOrders = "orders"
)

// Persistence saves and restores the durable parts of the application
// state: the cart and the order history. Filter criteria are never stored.
type Persistence struct {
	backend Backend
	logger  *slog.Logger
}

// Option configures a Persistence.
type Option func(*Persistence)

// WithLogger sets the logger used for load and save diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Persistence) { p.logger = l }
}

// NewPersistence wraps backend.
func NewPersistence(backend Backend, opts ...Option) *Persistence {
	p := &Persistence{backend: backend, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load reads both fragments. It never fails: a fragment that is missing,
// unreadable or corrupt yields an empty sequence and a warning.
func (p *Persistence) Load(ctx context.Context) engine.Snapshot {
	snap := engine.Snapshot{Cart: model.Cart{}, Orders: []model.Order{}}

	if data, ok := p.read(ctx, FragmentCart); ok {
		cart, err := unmarshalCart(data)
		if err != nil {
			p.logger.Warn("discarding corrupt fragment", "fragment", FragmentCart, "error", err)
		} else {
			snap.Cart = cart
		}
	}

	if data, ok := p.read(ctx, FragmentOrders); ok {
		orders, err := unmarshalOrders(data)
		if err != nil {
			p.logger.Warn("discarding corrupt fragment", "fragment", FragmentOrders, "error", err)
		} else {
			snap.Orders = orders
		}
	}

	p.logger.Debug("fragments loaded", "cart_lines", len(snap.Cart), "orders", len(snap.Orders))
	return snap
}

func (p *Persistence) read(ctx context.Context, name string) ([]byte, bool) {
	data, ok, err := p.backend.Get(ctx, name)
	if err != nil {
		p.logger.Warn("fragment unavailable", "fragment", name, "error", err)
		return nil, false
	}
	return data, ok
}

// SaveCart replaces the stored cart with cart.
func (p *Persistence) SaveCart(ctx context.Context, cart model.Cart) error {
	if cart == nil {
		cart = model.Cart{}
	}
	return p.save(ctx, FragmentCart, cart)
}

// SaveOrders replaces the stored order history with orders.
func (p *Persistence) SaveOrders(ctx context.Context, orders []model.Order) error {
	if orders == nil {
		orders = []model.Order{}
	}
	return p.save(ctx, FragmentOrders, orders)
}

func (p *Persistence) save(ctx context.Context, name string, v any) error {
	data, err := marshalFragment(v)
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	if err := p.backend.Put(ctx, name, data); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}
