// Package checkout drives a shopper from a filled cart to a placed order.
//
// The Orchestrator is a three-step state machine:
//
//	shipping ──SubmitShipping──▶ payment ──SubmitPayment(Succeeded)──▶ success
//	    ▲                           │
//	    └──────────Back─────────────┘
//
// A failed payment leaves the orchestrator in payment with a banner message
// and no change to the cart or orders, so it can be retried. On success the
// order is built from the committed cart and placed with the cart cleared
// in a single engine transition.
//
// The orchestrator holds only local state. Dropping it at any step before
// success leaves nothing behind.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/roach88/storefront/internal/engine"
	"github.com/roach88/storefront/internal/identity"
	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/payment"
	"github.com/roach88/storefront/internal/view"
)

// Step is a checkout state.
type Step string

const (
	StepShipping Step = "shipping"
	StepPayment  Step = "payment"
	StepSuccess  Step = "success"
)

// Orchestrator runs one checkout attempt. Create a new one per attempt.
type Orchestrator struct {
	engine   *engine.Engine
	identity identity.Provider
	gateway  payment.Gateway
	ids      IDGenerator
	now      func() time.Time
	logger   *slog.Logger
	validate *validator.Validate

	mu         sync.Mutex
	step       Step
	shipping   ShippingForm
	banner     string
	processing bool
	placed     *model.Order
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithIDGenerator sets the order id source.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *Orchestrator) { o.ids = g }
}

// WithClock sets the source of order timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New starts a checkout in the shipping step. If a user is signed in the
// shipping email is prefilled from their account.
func New(e *engine.Engine, id identity.Provider, gw payment.Gateway, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine:   e,
		identity: id,
		gateway:  gw,
		ids:      UUIDGenerator{},
		now:      time.Now,
		logger:   slog.Default(),
		validate: newValidator(),
		step:     StepShipping,
	}
	for _, opt := range opts {
		opt(o)
	}
	if u, ok := id.CurrentUser(); ok {
		o.shipping.Email = u.Email
	}
	return o
}

// Step returns the current step.
func (o *Orchestrator) Step() Step {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

// Shipping returns the shipping form as last submitted (or prefilled).
func (o *Orchestrator) Shipping() ShippingForm {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.shipping
}

// Banner returns the payment failure message to display, if any.
func (o *Orchestrator) Banner() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.banner
}

// Processing reports whether a payment is awaiting the gateway.
func (o *Orchestrator) Processing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.processing
}

// PlacedOrder returns the order created on success.
func (o *Orchestrator) PlacedOrder() (model.Order, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.placed == nil {
		return model.Order{}, false
	}
	return o.placed.Clone(), true
}

// Totals prices the current cart.
func (o *Orchestrator) Totals() view.Totals {
	return view.CartTotals(o.engine.State().Cart)
}

// Guard checks the preconditions for being in checkout at all. It returns
// a RedirectError to /login without a user and to /cart with an empty cart.
// Once the order is placed the cart is empty and only the user
// is checked.
func (o *Orchestrator) Guard() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.guard()
	return err
}

func (o *Orchestrator) guard() (model.User, error) {
	select {
	case <-o.identity.Loaded():
	default:
		return model.User{}, ErrIdentityPending
	}

	u, ok := o.identity.CurrentUser()
	if !ok {
		return model.User{}, &RedirectError{To: RedirectLogin, Reason: "sign in to check out"}
	}
	if o.step != StepSuccess && len(o.engine.State().Cart) == 0 {
		return model.User{}, &RedirectError{To: RedirectCart, Reason: "cart is empty"}
	}
	return u, nil
}

// SubmitShipping validates form and advances to payment. On a validation
// failure the form is kept and the step does not change.
func (o *Orchestrator) SubmitShipping(form ShippingForm) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.step != StepShipping {
		return ErrWrongStep
	}
	if _, err := o.guard(); err != nil {
		return err
	}

	o.shipping = form
	if err := validateForm(o.validate, form); err != nil {
		return err
	}

	o.step = StepPayment
	o.logger.Debug("checkout step", "step", o.step)
	return nil
}

// Back returns from payment to shipping, keeping the shipping form.
func (o *Orchestrator) Back() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.step != StepPayment || o.processing {
		return ErrWrongStep
	}
	o.step = StepShipping
	o.banner = ""
	return nil
}

// SubmitPayment charges card for the current cart total. ctx bounds the
// gateway call.
//
// A declined or failed payment returns a PaymentError and leaves cart,
// orders and step untouched. A successful payment places the order and
// moves to success; the placed order is returned.
func (o *Orchestrator) SubmitPayment(ctx context.Context, card payment.Card) (model.Order, error) {
	o.mu.Lock()
	if o.step != StepPayment {
		o.mu.Unlock()
		return model.Order{}, ErrWrongStep
	}
	if o.processing {
		o.mu.Unlock()
		return model.Order{}, ErrPaymentInProgress
	}
	user, err := o.guard()
	if err != nil {
		o.mu.Unlock()
		return model.Order{}, err
	}
	if err := validateCard(o.validate, card); err != nil {
		o.mu.Unlock()
		return model.Order{}, err
	}
	amount := view.CartTotals(o.engine.State().Cart).Total
	o.processing = true
	o.banner = ""
	o.mu.Unlock()

	// No lock held while the gateway works.
	outcome, err := o.gateway.SubmitPayment(ctx, amount, card)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.processing = false

	if err != nil {
		o.banner = payment.FailureMessage
		o.logger.Warn("payment gateway error", "error", err)
		return model.Order{}, &PaymentError{Message: o.banner, Err: err}
	}

	switch out := outcome.(type) {
	case payment.Succeeded:
		return o.placeOrder(user, amount, out.TransactionID)
	case payment.Failed:
		o.banner = out.Message
		if o.banner == "" {
			o.banner = payment.FailureMessage
		}
		o.logger.Info("payment declined")
		return model.Order{}, &PaymentError{Message: o.banner}
	default:
		o.banner = payment.FailureMessage
		o.logger.Error("unknown payment outcome", "type", fmt.Sprintf("%T", outcome))
		return model.Order{}, &PaymentError{Message: o.banner}
	}
}

// placeOrder builds the order from the committed cart and places it in one
// engine transition. Callers hold o.mu.
func (o *Orchestrator) placeOrder(user model.User, charged decimal.Decimal, txn string) (model.Order, error) {
	var order model.Order
	_, committed := o.engine.DispatchFunc(func(s engine.State) engine.Action {
		if len(s.Cart) == 0 {
			return nil
		}
		items := s.Cart.Clone()
		order = model.Order{
			ID:              o.ids.Generate(),
			UserID:          user.ID,
			Items:           items,
			Total:           view.CartTotals(items).Total,
			Status:          model.OrderProcessing,
			OrderDate:       o.now(),
			ShippingAddress: o.shipping.ShippingAddress(),
			TransactionID:   txn,
		}
		return engine.PlaceOrder{Order: order}
	})
	if !committed {
		o.logger.Error("payment captured but cart emptied before commit", "transaction_id", txn)
		return model.Order{}, ErrEmptyCart
	}

	if !order.Total.Equal(charged) {
		o.logger.Warn("cart changed while payment was processing",
			"charged", charged.StringFixed(2), "order_total", order.Total.StringFixed(2))
	}

	o.step = StepSuccess
	o.placed = &order
	o.logger.Info("order placed", "order_id", order.ID, "transaction_id", txn, "total", order.Total.StringFixed(2))
	return order.Clone(), nil
}
