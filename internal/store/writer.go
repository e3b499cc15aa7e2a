package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/storefront/internal/engine"
	"github.com/roach88/storefront/internal/model"
)

// Writer persists state changes off the commit path.
//
// Queue calls record the latest snapshot of a fragment together with the
// engine version that produced it and return immediately. Snapshots older
// than one already queued are dropped, so observers delivered out of order
// cannot overwrite newer data. Run drains pending fragments in the
// background; Flush drains them synchronously.
type Writer struct {
	p        *Persistence
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	cart   pending[model.Cart]
	orders pending[[]model.Order]
	signal chan struct{} // buffered, size 1

	flushMu sync.Mutex // serialises backend writes
}

type pending[T any] struct {
	version int64
	value   T
	dirty   bool
}

// offer records value unless a newer version is already held.
func (p *pending[T]) offer(version int64, value T) bool {
	if version <= p.version {
		return false
	}
	p.version = version
	p.value = value
	p.dirty = true
	return true
}

func (p *pending[T]) take() (T, bool) {
	if !p.dirty {
		var zero T
		return zero, false
	}
	p.dirty = false
	return p.value, true
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// FlushInterval delays each background flush by d so bursts of changes
// coalesce into one write per fragment. Zero writes as soon as possible.
func FlushInterval(d time.Duration) WriterOption {
	return func(w *Writer) { w.interval = d }
}

// WithWriterLogger sets the logger used to report failed saves.
func WithWriterLogger(l *slog.Logger) WriterOption {
	return func(w *Writer) { w.logger = l }
}

// NewWriter creates a Writer saving through p.
func NewWriter(p *Persistence, opts ...WriterOption) *Writer {
	w := &Writer{
		p:      p,
		logger: p.logger,
		signal: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// QueueCart schedules cart to be saved.
func (w *Writer) QueueCart(version int64, cart model.Cart) {
	w.mu.Lock()
	queued := w.cart.offer(version, cart.Clone())
	w.mu.Unlock()
	if queued {
		w.notify()
	}
}

// QueueOrders schedules orders to be saved.
func (w *Writer) QueueOrders(version int64, orders []model.Order) {
	cp := make([]model.Order, len(orders))
	for i, o := range orders {
		cp[i] = o.Clone()
	}
	w.mu.Lock()
	queued := w.orders.offer(version, cp)
	w.mu.Unlock()
	if queued {
		w.notify()
	}
}

// Observe queues whichever fragments c changed. It has the engine.Observer
// signature so a Writer can be subscribed directly.
func (w *Writer) Observe(c engine.Change) {
	if c.CartChanged {
		w.QueueCart(c.Version, c.Next.Cart)
	}
	if c.OrdersChanged {
		w.QueueOrders(c.Version, c.Next.Orders)
	}
}

func (w *Writer) notify() {
	// Non-blocking: a buffer of 1 coalesces multiple signals
	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// Pending reports whether any fragment is waiting to be written.
func (w *Writer) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cart.dirty || w.orders.dirty
}

// Run flushes queued fragments until ctx is cancelled, then performs a
// final flush. It always returns nil; save failures are logged.
func (w *Writer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flushLogged(context.WithoutCancel(ctx))
			return nil
		case <-w.signal:
		}

		if w.interval > 0 {
			timer := time.NewTimer(w.interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				w.flushLogged(context.WithoutCancel(ctx))
				return nil
			case <-timer.C:
			}
		}

		w.flushLogged(ctx)
	}
}

func (w *Writer) flushLogged(ctx context.Context) {
	if err := w.Flush(ctx); err != nil {
		w.logger.Error("failed to persist state", "error", err)
	}
}

// Flush writes every pending fragment now.
func (w *Writer) Flush(ctx context.Context) error {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	w.mu.Lock()
	cart, saveCart := w.cart.take()
	orders, saveOrders := w.orders.take()
	w.mu.Unlock()

	var errs []error
	if saveCart {
		if err := w.p.SaveCart(ctx, cart); err != nil {
			errs = append(errs, err)
		}
	}
	if saveOrders {
		if err := w.p.SaveOrders(ctx, orders); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
