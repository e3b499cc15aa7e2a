package harness

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/checkout"
)

func TestRun_Scenarios(t *testing.T) {
	scenarios, err := LoadDir("testdata/scenarios")
	require.NoError(t, err)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			result, err := Run(context.Background(), scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_TraceInterleavesStepsAndCommits(t *testing.T) {
	scenario := &Scenario{
		Name:        "interleave",
		Description: "add then clear",
		Flow: []Step{
			{Do: StepAddToCart, Args: map[string]any{"product": "11"}},
			{Do: StepClearCart},
			{Do: StepClearCart},
		},
		Assertions: []Assertion{{Type: AssertTraceCount, Action: "CLEAR_CART", Count: 1}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	// The second clear changes nothing, so it has no commit.
	types := make([]string, len(result.Trace))
	for i, ev := range result.Trace {
		types[i] = ev.Type
		assert.Equal(t, int64(i+1), ev.Seq)
	}
	assert.Equal(t, []string{EventStep, EventCommit, EventStep, EventCommit, EventStep}, types)
}

func TestRun_SetupIsNotTraced(t *testing.T) {
	scenario := &Scenario{
		Name:        "setup",
		Description: "setup commits stay out of the trace",
		Setup:       []Step{{Do: StepAddToCart, Args: map[string]any{"product": "8"}}},
		Flow:        []Step{{Do: StepSearch, Args: map[string]any{"query": "shure"}}},
		Assertions: []Assertion{
			{Type: AssertTraceCount, Action: "ADD_TO_CART", Count: 0},
			{Type: AssertFinalState, Expect: map[string]any{"cart_lines": 1, "visible": []any{"8"}}},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	commits := result.Commits()
	require.Len(t, commits, 1)
	assert.Equal(t, "SET_SEARCH_QUERY", commits[0].Action)
	assert.Equal(t, int64(2), commits[0].Version)
}

func TestRun_SetupFailureIsAnError(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_setup",
		Description: "out of stock in setup",
		Setup:       []Step{{Do: StepAddToCart, Args: map[string]any{"product": "7"}}},
		Flow:        []Step{{Do: StepClearCart}},
		Assertions:  []Assertion{{Type: AssertTraceCount, Action: "CLEAR_CART", Count: 0}},
	}

	_, err := Run(context.Background(), scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup[0] add_to_cart: rejected")
}

func TestRun_UnmetExpectationFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "unmet",
		Description: "expects success but nobody is signed in",
		Setup:       []Step{{Do: StepAddToCart, Args: map[string]any{"product": "8"}}},
		Flow: []Step{
			{Do: StepBeginCheckout, Expect: &Expect{Outcome: OutcomeOK, Step: "payment"}},
		},
		Assertions: []Assertion{{Type: AssertFinalState, Expect: map[string]any{"orders": 1}}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], `flow[0] begin_checkout: expected outcome "ok", got "redirect"`)
	assert.Contains(t, result.Errors[1], `expected checkout step "payment", got "shipping"`)
	assert.Contains(t, result.Errors[2], "orders: want 1, got 0")
	assert.Equal(t, "redirect to /login: sign in to check out", result.Trace[0].Error)
}

func TestRun_EmptyCartRedirect(t *testing.T) {
	scenario := &Scenario{
		Name:        "empty",
		Description: "nothing to buy",
		User:        &User{ID: "u1", Email: "u1@example.com"},
		Flow: []Step{
			{Do: StepBeginCheckout, Expect: &Expect{Outcome: OutcomeRedirect, Redirect: checkout.RedirectCart}},
			{Do: StepSubmitShipping, Expect: &Expect{Outcome: OutcomeRedirect, Redirect: checkout.RedirectCart}},
		},
		Assertions: []Assertion{{Type: AssertFinalState, Expect: map[string]any{"step": "shipping", "signed_in": true}}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_GatewayErrorAndSignOut(t *testing.T) {
	scenario := &Scenario{
		Name:        "gateway_error",
		Description: "gateway down, then the shopper signs out",
		User:        &User{ID: "u1", Email: "u1@example.com"},
		Setup:       []Step{{Do: StepAddToCart, Args: map[string]any{"product": "11"}}},
		Flow: []Step{
			{Do: StepBeginCheckout},
			{Do: StepSubmitShipping},
			{Do: StepSubmitPayment, Args: map[string]any{"outcome": "error"}, Expect: &Expect{Outcome: OutcomePayment, Step: "payment"}},
			{Do: StepSignOut},
			{Do: StepSubmitPayment, Expect: &Expect{Outcome: OutcomeRedirect, Redirect: checkout.RedirectLogin}},
		},
		Assertions: []Assertion{{Type: AssertFinalState, Expect: map[string]any{
			"orders":        0,
			"cart_lines":    1,
			"gateway_calls": 1,
			"banner":        "Payment failed. Please try again.",
			"signed_in":     false,
		}}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	// 7.99 + 9.99 shipping + 0.6392 tax
	assert.Equal(t, "18.62", result.Trace[2].Charged)
}

func TestRun_CustomCatalog(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "tiny.yaml", `
products:
  - { id: a, name: Alpha, category: C, brand: B, price: 60, inStock: 2, rating: 4, reviews: 1 }
  - { id: b, name: Beta, category: C, brand: B, price: 40, inStock: 2, rating: 4, reviews: 1 }
`)
	path := writeScenario(t, dir, "s.yaml", `
name: tiny_catalog
description: "runs against a custom catalog"
catalog: tiny.yaml
user: { id: u1, email: u1@example.com }
flow:
  - do: add_to_cart
    args: { product: a }
  - do: add_to_cart
    args: { product: b }
  - do: begin_checkout
  - do: submit_shipping
  - do: submit_payment
    expect: { outcome: ok, step: success }
assertions:
  - type: final_state
    expect: { last_order_total: "108.00", last_order_id: order-1, last_order_txn: txn_test_1 }
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	_, err = Run(context.Background(), &Scenario{Catalog: filepath.Join(dir, "gone.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load catalog")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{&checkout.ValidationError{Fields: map[string]string{"cvv": "x"}}, OutcomeValidation},
		{&checkout.PaymentError{Message: "no"}, OutcomePayment},
		{&checkout.RedirectError{To: "/cart"}, OutcomeRedirect},
		{checkout.ErrWrongStep, OutcomeWrongStep},
		{checkout.ErrEmptyCart, OutcomeEmptyCart},
		{checkout.ErrIdentityPending, OutcomeIdentityPending},
		{checkout.ErrPaymentInProgress, OutcomeInProgress},
		{fmt.Errorf("%w: nope", errRejected), OutcomeRejected},
		{errors.New("boom"), OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}
