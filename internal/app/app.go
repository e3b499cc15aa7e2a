// Package app assembles a running storefront from configuration: storage,
// catalog, state engine, persistence writer, identity and payment gateway.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/checkout"
	"github.com/roach88/storefront/internal/config"
	"github.com/roach88/storefront/internal/engine"
	"github.com/roach88/storefront/internal/identity"
	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/payment"
	"github.com/roach88/storefront/internal/store"
)

// App owns the long-lived components. Create with New, release with Close.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Catalog  *catalog.Catalog
	Engine   *engine.Engine
	Identity *identity.Session
	Gateway  payment.Gateway

	backend     store.Backend
	writer      *store.Writer
	unsubscribe func()
}

// Option overrides a component New would otherwise build from config.
type Option func(*App)

// WithGateway replaces the simulated payment gateway.
func WithGateway(g payment.Gateway) Option {
	return func(a *App) { a.Gateway = g }
}

// WithBackend replaces the configured storage backend.
func WithBackend(b store.Backend) Option {
	return func(a *App) { a.backend = b }
}

// New opens storage, loads the catalog, restores the saved cart and
// orders, and starts routing state changes to storage.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	a := &App{Config: cfg, Logger: logger}
	for _, opt := range opts {
		opt(a)
	}

	if a.backend == nil {
		b, err := OpenBackend(cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		a.backend = b
	}

	cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		a.backend.Close()
		return nil, err
	}
	a.Catalog = cat
	logger.Debug("catalog loaded", "products", cat.Len())

	p := store.NewPersistence(a.backend, store.WithLogger(logger))
	a.writer = store.NewWriter(p, store.FlushInterval(cfg.Persistence.FlushInterval))

	a.Engine = engine.New(engine.WithLogger(logger))
	engine.Rehydrate(a.Engine, p.Load(ctx))
	a.unsubscribe = a.Engine.Subscribe(a.writer.Observe)

	a.Identity = newSession(cfg.User)

	if a.Gateway == nil {
		a.Gateway = newGateway(cfg.Payment, logger)
	}

	return a, nil
}

// OpenBackend opens the storage backend named by cfg.Driver.
func OpenBackend(cfg config.StoreConfig) (store.Backend, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return store.Open(cfg.Path)
	case config.DriverFile:
		return store.OpenDir(cfg.Path)
	case config.DriverMemory:
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func loadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.Path == "" {
		return catalog.Default()
	}
	cat, err := catalog.Load(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %q: %w", cfg.Path, err)
	}
	return cat, nil
}

func newSession(cfg config.UserConfig) *identity.Session {
	if cfg.ID == "" {
		return identity.Anonymous()
	}
	return identity.SignedIn(model.User{ID: cfg.ID, Email: cfg.Email, Name: cfg.Name})
}

// newGateway wraps the simulated gateway: the breaker sees timeouts as
// failures.
func newGateway(cfg config.PaymentConfig, logger *slog.Logger) payment.Gateway {
	sim := payment.NewSimulated(payment.WithLatency(cfg.Latency), payment.WithLogger(logger))
	return payment.NewBreaker(payment.WithTimeout(sim, cfg.Timeout), payment.BreakerConfig{
		ConsecutiveFailures: cfg.CircuitBreaker.ConsecutiveFailures,
		OpenTimeout:         cfg.CircuitBreaker.OpenTimeout,
	})
}

// Checkout starts a new checkout attempt.
func (a *App) Checkout(opts ...checkout.Option) *checkout.Orchestrator {
	opts = append([]checkout.Option{checkout.WithLogger(a.Logger)}, opts...)
	return checkout.New(a.Engine, a.Identity, a.Gateway, opts...)
}

// Run executes fn while the persistence writer runs in the background.
// When fn returns, the writer flushes and stops.
func (a *App) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return a.writer.Run(gCtx)
	})
	g.Go(func() error {
		defer cancel()
		return fn(gCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close stops observing the engine, writes anything still pending and
// closes storage.
func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	var errs []error
	if a.writer != nil {
		if err := a.writer.Flush(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("final flush: %w", err))
		}
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
