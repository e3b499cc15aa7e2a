// Package payment is the boundary to the external payment collaborator.
//
// A Gateway receives an amount and card details and answers with an
// Outcome. A decline is an Outcome, not an error; errors are reserved for
// the gateway being unreachable or timing out.
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// FailureMessage is shown to the shopper for any unsuccessful payment.
const FailureMessage = "Payment failed. Please try again."

// ErrUnavailable reports that the gateway could not be reached.
var ErrUnavailable = errors.New("payment gateway unavailable")

// Card is the payment form as entered. The cardnumber, expiry and notblank
// tags are registered by the checkout validator.
type Card struct {
	Number string `json:"cardNumber" validate:"required,cardnumber"`
	Expiry string `json:"expiryDate" validate:"required,len=5,expiry"`
	CVV    string `json:"cvv" validate:"required,number,min=3,max=4"`
	Name   string `json:"cardName" validate:"required,notblank"`
}

// Outcome is the result of a payment attempt: Succeeded or Failed.
type Outcome interface {
	outcome()
}

// Succeeded carries the gateway's transaction id.
type Succeeded struct {
	TransactionID string
}

// Failed carries a message suitable for the shopper.
type Failed struct {
	Message string
}

func (Succeeded) outcome() {}
func (Failed) outcome()    {}

// Gateway submits a payment.
type Gateway interface {
	SubmitPayment(ctx context.Context, amount decimal.Decimal, card Card) (Outcome, error)
}

// GatewayFunc adapts a function to Gateway.
type GatewayFunc func(ctx context.Context, amount decimal.Decimal, card Card) (Outcome, error)

func (f GatewayFunc) SubmitPayment(ctx context.Context, amount decimal.Decimal, card Card) (Outcome, error) {
	return f(ctx, amount, card)
}

// WithTimeout bounds every call to g by d. A non-positive d returns g.
func WithTimeout(g Gateway, d time.Duration) Gateway {
	if d <= 0 {
		return g
	}
	return GatewayFunc(func(ctx context.Context, amount decimal.Decimal, card Card) (Outcome, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return g.SubmitPayment(ctx, amount, card)
	})
}
