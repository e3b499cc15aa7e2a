package harness

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/roach88/storefront/internal/payment"
)

// Gateway script outcomes.
const (
	GatewaySucceeded = "succeeded"
	GatewayFailed    = "failed"
	GatewayError     = "error"
)

// scriptedGateway answers the next payment with whatever the current
// submit_payment step asked for.
type scriptedGateway struct {
	outcome string
	txn     string
	message string

	calls   int
	charged *decimal.Decimal
}

// script arms the gateway from submit_payment args. Without an outcome
// the payment succeeds with a transaction id derived from the call count.
func (g *scriptedGateway) script(args map[string]any) error {
	g.outcome = argString(args, "outcome")
	if g.outcome == "" {
		g.outcome = GatewaySucceeded
	}
	switch g.outcome {
	case GatewaySucceeded, GatewayFailed, GatewayError:
	default:
		return fmt.Errorf("%w: unknown gateway outcome %q", errRejected, g.outcome)
	}
	g.txn = argString(args, "transactionId")
	g.message = argString(args, "message")
	return nil
}

func (g *scriptedGateway) SubmitPayment(_ context.Context, amount decimal.Decimal, _ payment.Card) (payment.Outcome, error) {
	g.calls++
	g.charged = &amount

	switch g.outcome {
	case GatewayFailed:
		return payment.Failed{Message: g.message}, nil
	case GatewayError:
		return nil, fmt.Errorf("%w: scripted gateway error", payment.ErrUnavailable)
	default:
		txn := g.txn
		if txn == "" {
			txn = fmt.Sprintf("txn_test_%d", g.calls)
		}
		return payment.Succeeded{TransactionID: txn}, nil
	}
}
