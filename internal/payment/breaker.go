package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the circuit breaker around a gateway.
type BreakerConfig struct {
	// ConsecutiveFailures opens the circuit once exceeded.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the circuit stays open before probing.
	OpenTimeout time.Duration
}

// Breaker stops calling a gateway that keeps failing at the transport
// level. Declines are successful calls and never trip it.
type Breaker struct {
	next Gateway
	cb   *gobreaker.CircuitBreaker[Outcome]
}

var _ Gateway = (*Breaker)(nil)

// NewBreaker wraps next.
func NewBreaker(next Gateway, cfg BreakerConfig) *Breaker {
	st := gobreaker.Settings{
		Name:        "payment-gateway-cb",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			// The shopper abandoning the call says nothing about the gateway.
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker[Outcome](st)}
}

func (b *Breaker) SubmitPayment(ctx context.Context, amount decimal.Decimal, card Card) (Outcome, error) {
	out, err := b.cb.Execute(func() (Outcome, error) {
		return b.next.SubmitPayment(ctx, amount, card)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return out, err
}

// State reports the breaker state ("closed", "open" or "half-open").
func (b *Breaker) State() string {
	return b.cb.State().String()
}
