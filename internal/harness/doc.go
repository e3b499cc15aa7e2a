// Package harness runs scripted storefront sessions and checks their
// outcome.
//
// A scenario drives the real engine, catalog and checkout orchestrator with
// a scripted payment gateway, a fixed clock and sequential order ids, so
// the same scenario always produces the same trace.
//
// # Scenario Format
//
//	name: checkout_happy_path
//	description: "Two microphones, paid, order placed"
//	user: { id: u1, email: shopper@example.com }
//	setup:
//	  - do: add_to_cart
//	    args: { product: "8" }
//	flow:
//	  - do: begin_checkout
//	  - do: submit_shipping
//	    args: { zipCode: "" }
//	    expect: { outcome: validation, fields: [zipCode] }
//	  - do: submit_payment
//	    args: { outcome: succeeded, transactionId: txn_1 }
//	    expect: { outcome: ok, step: success }
//	assertions:
//	  - type: trace_contains
//	    action: PLACE_ORDER
//	  - type: final_state
//	    expect: { orders: 1, cart_lines: 0, total: "0.00" }
//
// Setup steps are not traced and must succeed. Flow steps are traced along
// with the engine commits they cause.
//
// # Assertion Types
//
//   - trace_contains: an action kind was committed at least once
//   - trace_order: action kinds were committed in this relative order
//   - trace_count: an action kind was committed exactly N times
//   - final_state: the final state projection matches the expected subset
//
// # Golden Traces
//
// RunWithGolden compares a scenario's trace against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
