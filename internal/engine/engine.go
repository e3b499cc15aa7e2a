package engine

import (
	"log/slog"
	"sync"
)

// Change describes one committed transition.
type Change struct {
	Version       int64
	Action        Action
	Prev          State
	Next          State
	CartChanged   bool
	OrdersChanged bool
}

// Observer is notified after a transition that changed the cart or the orders.
//
// Observers run on the dispatching goroutine after the engine lock has been
// released, so they may read State() or dispatch. When several goroutines
// dispatch concurrently, deliveries can interleave; Version is strictly
// increasing in commit order and is the tie-breaker.
type Observer func(Change)

// Engine owns the State value and commits transitions one at a time.
//
// Thread-safety model:
//   - Dispatch / DispatchFunc: safe from any goroutine, serialized by mu
//   - State / Version: safe from any goroutine
//   - Subscribe: safe from any goroutine
type Engine struct {
	mu        sync.Mutex
	state     State
	version   int64
	observers map[int]Observer
	order     []int // subscription order
	nextID    int
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithState starts the engine from s instead of InitialState().
func WithState(s State) Option {
	return func(e *Engine) {
		e.state = s
	}
}

// New creates an engine holding InitialState().
func New(opts ...Option) *Engine {
	e := &Engine{
		state:     InitialState(),
		observers: make(map[int]Observer),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current committed state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Version returns the number of committed transitions so far.
func (e *Engine) Version() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// Subscribe registers an observer and returns a function that removes it.
func (e *Engine) Subscribe(obs Observer) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	e.observers[id] = obs
	e.order = append(e.order, id)

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.observers, id)
		for i, v := range e.order {
			if v == id {
				e.order = append(e.order[:i:i], e.order[i+1:]...)
				break
			}
		}
	}
}

// Dispatch commits a and returns the resulting state.
func (e *Engine) Dispatch(a Action) State {
	next, _ := e.DispatchFunc(func(State) Action { return a })
	return next
}

// DispatchFunc builds an action from the committed state and commits it in
// the same critical section, so no other transition can land between reading
// the state and applying the action. A nil action commits nothing.
//
// Returns the resulting state and whether an action was applied.
func (e *Engine) DispatchFunc(build func(State) Action) (State, bool) {
	e.mu.Lock()
	prev := e.state
	a := build(prev)
	if a == nil {
		e.mu.Unlock()
		return prev, false
	}

	next := Reduce(prev, a)
	e.state = next
	e.version++

	change := Change{
		Version:       e.version,
		Action:        a,
		Prev:          prev,
		Next:          next,
		CartChanged:   !prev.Cart.Equal(next.Cart),
		OrdersChanged: len(prev.Orders) != len(next.Orders),
	}

	var observers []Observer
	if change.CartChanged || change.OrdersChanged {
		observers = make([]Observer, 0, len(e.order))
		for _, id := range e.order {
			observers = append(observers, e.observers[id])
		}
	}
	e.mu.Unlock()

	e.logger.Debug("action committed",
		"action", a.Kind(),
		"version", change.Version,
		"cart_lines", len(next.Cart),
		"orders", len(next.Orders),
	)

	for _, obs := range observers {
		obs(change)
	}

	return next, true
}
