package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/checkout"
	"github.com/roach88/storefront/internal/engine"
	"github.com/roach88/storefront/internal/identity"
	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/payment"
	"github.com/roach88/storefront/internal/store"
	"github.com/roach88/storefront/internal/testutil"
	"github.com/roach88/storefront/internal/view"
)

// Step outcome classes.
const (
	OutcomeOK              = "ok"
	OutcomeValidation      = "validation"
	OutcomePayment         = "payment"
	OutcomeRedirect        = "redirect"
	OutcomeWrongStep       = "wrong_step"
	OutcomeEmptyCart       = "empty_cart"
	OutcomeIdentityPending = "identity_pending"
	OutcomeInProgress      = "in_progress"
	OutcomeRejected        = "rejected"
	OutcomeError           = "error"
)

// errRejected marks a step the storefront refuses before touching the engine,
// e.g. adding an unknown or out-of-stock product.
var errRejected = errors.New("rejected")

// Harness executes one scenario. Each run gets a fresh engine, session,
// in-memory store and deterministic clock and id generator.
type Harness struct {
	catalog  *catalog.Catalog
	engine   *engine.Engine
	session  *identity.Session
	gateway  *scriptedGateway
	persist  *store.Persistence
	writer   *store.Writer
	clock    *testutil.FixedClock
	ids      *testutil.SequentialIDGenerator
	logger   *slog.Logger
	checkout *checkout.Orchestrator
	sort     view.SortKey

	result  *Result
	tracing bool
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Load the catalog and build a fresh storefront
//  2. Execute setup steps (untraced, must succeed)
//  3. Execute flow steps, checking each expect clause
//  4. Flush persistence and project the final state
//  5. Evaluate assertions
//
// An error is returned only when the scenario cannot be executed at all.
// Failed expectations and assertions are reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	h, err := newHarness(scenario)
	if err != nil {
		return nil, err
	}

	for i, step := range scenario.Setup {
		outcome, err := h.execute(ctx, step)
		if outcome != OutcomeOK {
			return nil, fmt.Errorf("setup[%d] %s: %s: %v", i, step.Do, outcome, err)
		}
	}

	h.tracing = true
	for i, step := range scenario.Flow {
		idx := h.result.addStep(step.Do, step.Args)
		outcome, err := h.execute(ctx, step)

		ev := &h.result.Trace[idx]
		ev.Outcome = outcome
		if err != nil {
			ev.Error = err.Error()
		}
		if h.checkout != nil {
			ev.CheckoutStep = string(h.checkout.Step())
		}
		if step.Do == StepSubmitPayment && h.gateway.charged != nil {
			ev.Charged = h.gateway.charged.StringFixed(2)
			h.gateway.charged = nil
		}

		if step.Expect != nil {
			for _, msg := range h.checkExpect(step.Expect, outcome, err) {
				h.result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Do, msg))
			}
		}
	}
	h.tracing = false

	if err := h.writer.Flush(ctx); err != nil {
		return nil, fmt.Errorf("failed to flush persistence: %w", err)
	}
	h.result.State = h.finalState(ctx)

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

func newHarness(scenario *Scenario) (*Harness, error) {
	var (
		cat *catalog.Catalog
		err error
	)
	if scenario.Catalog != "" {
		cat, err = catalog.Load(scenario.Catalog)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := store.NewMemory()
	persist := store.NewPersistence(backend, store.WithLogger(logger))

	session := identity.Anonymous()
	if scenario.User != nil {
		session = identity.SignedIn(model.User{
			ID:    scenario.User.ID,
			Email: scenario.User.Email,
			Name:  scenario.User.Name,
		})
	}

	h := &Harness{
		catalog: cat,
		engine:  engine.New(engine.WithLogger(logger)),
		session: session,
		gateway: &scriptedGateway{},
		persist: persist,
		writer:  store.NewWriter(persist, store.WithWriterLogger(logger)),
		clock:   testutil.NewFixedClock(testutil.Epoch),
		ids:     testutil.NewSequentialIDGenerator("order"),
		logger:  logger,
		sort:    view.SortFeatured,
		result:  NewResult(),
	}
	h.engine.Subscribe(h.writer.Observe)
	h.engine.Subscribe(h.observe)
	return h, nil
}

// observe records cart and order commits caused by flow steps.
func (h *Harness) observe(c engine.Change) {
	h.recordCommit(c.Action, c.Next, c.Version)
}

func (h *Harness) recordCommit(a engine.Action, s engine.State, version int64) {
	if !h.tracing {
		return
	}
	h.result.addCommit(Commit{
		Action:    string(a.Kind()),
		Version:   version,
		CartLines: len(s.Cart),
		ItemCount: view.ItemCount(s.Cart),
		Orders:    len(s.Orders),
	})
}

// dispatchFilter commits a filter action. The engine does not notify
// observers for filter-only transitions, so the commit is recorded here.
func (h *Harness) dispatchFilter(a engine.Action) {
	s := h.engine.Dispatch(a)
	h.recordCommit(a, s, h.engine.Version())
}

// execute runs one step and classifies its outcome.
func (h *Harness) execute(ctx context.Context, step Step) (string, error) {
	err := h.apply(ctx, step)
	return classify(err), err
}

func (h *Harness) apply(ctx context.Context, step Step) error {
	args := step.Args

	switch step.Do {
	case StepAddToCart:
		p, ok := h.catalog.ByID(argString(args, "product"))
		if !ok {
			return fmt.Errorf("%w: unknown product %q", errRejected, argString(args, "product"))
		}
		if p.InStock <= 0 {
			return fmt.Errorf("%w: product %q is out of stock", errRejected, p.ID)
		}
		h.engine.Dispatch(engine.AddToCart{Product: p})

	case StepRemoveFromCart:
		h.engine.Dispatch(engine.RemoveFromCart{ProductID: argString(args, "product")})

	case StepSetQuantity:
		q, err := argInt(args, "quantity")
		if err != nil {
			return err
		}
		h.engine.Dispatch(engine.UpdateCartQuantity{ProductID: argString(args, "product"), Quantity: q})

	case StepClearCart:
		h.engine.Dispatch(engine.ClearCart{})

	case StepSearch:
		h.dispatchFilter(engine.SetSearchQuery{Query: argString(args, "query")})

	case StepSelectCategory:
		c := view.ToggleCategory(h.engine.State().Filter, argString(args, "category"))
		h.dispatchFilter(engine.SetCategory{Category: c})

	case StepSelectBrand:
		b := view.ToggleBrand(h.engine.State().Filter, argString(args, "brand"))
		h.dispatchFilter(engine.SetBrand{Brand: b})

	case StepPriceRange:
		lo, err := argDecimal(args, "min")
		if err != nil {
			return err
		}
		hi, err := argDecimal(args, "max")
		if err != nil {
			return err
		}
		h.dispatchFilter(engine.SetPriceRange{Range: model.PriceRange{Min: lo, Max: hi}})

	case StepResetFilters:
		h.dispatchFilter(engine.ResetFilters{})

	case StepSort:
		key, ok := view.ParseSortKey(argString(args, "key"))
		if !ok {
			return fmt.Errorf("%w: unknown sort key %q", errRejected, argString(args, "key"))
		}
		h.sort = key

	case StepSignOut:
		h.session.SignOut()

	case StepBeginCheckout:
		h.checkout = checkout.New(h.engine, h.session, h.gateway,
			checkout.WithIDGenerator(h.ids),
			checkout.WithClock(h.clock.Now),
			checkout.WithLogger(h.logger),
		)
		return h.checkout.Guard()

	case StepSubmitShipping:
		if h.checkout == nil {
			return checkout.ErrWrongStep
		}
		form, err := shippingForm(h.checkout.Shipping(), args)
		if err != nil {
			return err
		}
		return h.checkout.SubmitShipping(form)

	case StepBack:
		if h.checkout == nil {
			return checkout.ErrWrongStep
		}
		return h.checkout.Back()

	case StepSubmitPayment:
		if h.checkout == nil {
			return checkout.ErrWrongStep
		}
		card, err := cardFromArgs(args)
		if err != nil {
			return err
		}
		if err := h.gateway.script(args); err != nil {
			return err
		}
		_, err = h.checkout.SubmitPayment(ctx, card)
		return err

	default:
		return fmt.Errorf("unknown step %q", step.Do)
	}
	return nil
}

// classify maps a step error onto an outcome class.
func classify(err error) string {
	if err == nil {
		return OutcomeOK
	}

	var (
		verr *checkout.ValidationError
		perr *checkout.PaymentError
		rerr *checkout.RedirectError
	)
	switch {
	case errors.As(err, &verr):
		return OutcomeValidation
	case errors.As(err, &perr):
		return OutcomePayment
	case errors.As(err, &rerr):
		return OutcomeRedirect
	case errors.Is(err, checkout.ErrWrongStep):
		return OutcomeWrongStep
	case errors.Is(err, checkout.ErrEmptyCart):
		return OutcomeEmptyCart
	case errors.Is(err, checkout.ErrIdentityPending):
		return OutcomeIdentityPending
	case errors.Is(err, checkout.ErrPaymentInProgress):
		return OutcomeInProgress
	case errors.Is(err, errRejected):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}

// checkExpect compares a step outcome against its expect clause.
func (h *Harness) checkExpect(exp *Expect, outcome string, err error) []string {
	var msgs []string
	if exp.Outcome != outcome {
		msgs = append(msgs, fmt.Sprintf("expected outcome %q, got %q (%v)", exp.Outcome, outcome, err))
	}

	if exp.Step != "" {
		got := ""
		if h.checkout != nil {
			got = string(h.checkout.Step())
		}
		if got != exp.Step {
			msgs = append(msgs, fmt.Sprintf("expected checkout step %q, got %q", exp.Step, got))
		}
	}

	if exp.Redirect != "" {
		to, _ := checkout.IsRedirect(err)
		if to != exp.Redirect {
			msgs = append(msgs, fmt.Sprintf("expected redirect to %q, got %q", exp.Redirect, to))
		}
	}

	if len(exp.Fields) > 0 {
		var verr *checkout.ValidationError
		if !errors.As(err, &verr) {
			msgs = append(msgs, fmt.Sprintf("expected invalid fields %v, got no validation error", exp.Fields))
		} else {
			for _, f := range exp.Fields {
				if _, ok := verr.Fields[f]; !ok {
					msgs = append(msgs, fmt.Sprintf("expected field %q to be invalid", f))
				}
			}
		}
	}
	return msgs
}

// finalState projects the storefront into the flat map final_state
// assertions match against.
func (h *Harness) finalState(ctx context.Context) map[string]any {
	s := h.engine.State()
	totals := view.CartTotals(s.Cart)

	cartIDs := make([]string, len(s.Cart))
	for i, line := range s.Cart {
		cartIDs[i] = line.Product.ID
	}
	visible := view.Project(h.catalog.All(), s.Filter, h.sort)
	visibleIDs := make([]string, len(visible))
	for i, p := range visible {
		visibleIDs[i] = p.ID
	}
	_, signedIn := h.session.CurrentUser()

	state := map[string]any{
		"cart_lines":   len(s.Cart),
		"item_count":   view.ItemCount(s.Cart),
		"cart_ids":     cartIDs,
		"orders":       len(s.Orders),
		"subtotal":     totals.Subtotal.StringFixed(2),
		"shipping":     totals.Shipping.StringFixed(2),
		"tax":          totals.Tax.StringFixed(2),
		"total":        totals.Total.StringFixed(2),
		"visible":      visibleIDs,
		"search":       s.Filter.SearchQuery,
		"category":     s.Filter.SelectedCategory,
		"brand":        s.Filter.SelectedBrand,
		"signed_in":    signedIn,
		"step":         "",
		"banner":       "",
	}
	state["gateway_calls"] = h.gateway.calls

	if h.checkout != nil {
		state["step"] = string(h.checkout.Step())
		state["banner"] = h.checkout.Banner()
	}

	if n := len(s.Orders); n > 0 {
		last := s.Orders[n-1]
		state["last_order_id"] = last.ID
		state["last_order_user"] = last.UserID
		state["last_order_status"] = string(last.Status)
		state["last_order_txn"] = last.TransactionID
		state["last_order_total"] = last.Total.StringFixed(2)
		state["last_order_items"] = view.ItemCount(last.Items)
		state["last_order_zip"] = last.ShippingAddress.ZipCode
	}

	snap := h.persist.Load(ctx)
	state["persisted_cart_lines"] = len(snap.Cart)
	state["persisted_orders"] = len(snap.Orders)
	return state
}

// shippingForm overlays args on a complete, valid form seeded from the
// orchestrator's prefilled form. Pass an empty string to blank a field.
func shippingForm(prefilled checkout.ShippingForm, args map[string]any) (checkout.ShippingForm, error) {
	form := checkout.ShippingForm{
		FirstName: "Test",
		LastName:  "Shopper",
		Email:     prefilled.Email,
		Phone:     "555-0100",
		Address:   "1 Main St",
		City:      "Springfield",
		State:     "IL",
		ZipCode:   "62701",
	}
	if form.Email == "" {
		form.Email = "shopper@example.com"
	}
	if err := overlay(&form, args); err != nil {
		return checkout.ShippingForm{}, fmt.Errorf("shipping args: %w", err)
	}
	return form, nil
}

// cardFromArgs overlays args on a valid test card.
func cardFromArgs(args map[string]any) (payment.Card, error) {
	card := payment.Card{
		Number: "4242 4242 4242 4242",
		Expiry: "12/30",
		CVV:    "123",
		Name:   "Test Shopper",
	}
	if err := overlay(&card, args); err != nil {
		return payment.Card{}, fmt.Errorf("card args: %w", err)
	}
	return card, nil
}

// overlay decodes args onto v through its json field names. Values are
// taken as strings and keys v does not know are ignored.
func overlay(v any, args map[string]any) error {
	if len(args) == 0 {
		return nil
	}
	fields := make(map[string]string, len(args))
	for k := range args {
		fields[k] = argString(args, k)
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func argString(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func argInt(args map[string]any, key string) (int, error) {
	switch v := args[key].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("arg %s: %w", key, err)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("arg %s is required", key)
	default:
		return 0, fmt.Errorf("arg %s: unsupported type %T", key, v)
	}
}

func argDecimal(args map[string]any, key string) (decimal.Decimal, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return decimal.Zero, fmt.Errorf("arg %s is required", key)
	}
	d, err := decimal.NewFromString(fmt.Sprint(v))
	if err != nil {
		return decimal.Zero, fmt.Errorf("arg %s: %w", key, err)
	}
	return d, nil
}
