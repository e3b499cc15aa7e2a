package payment

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Test card numbers understood by Simulated.
const (
	CardDeclined        = "4000000000000002"
	CardProcessingError = "4000000000000119"
)

const txnAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Simulated is an in-process gateway for demos and tests. Every payment
// succeeds after Latency unless the card number is one of the test cards.
type Simulated struct {
	Latency time.Duration

	mu     sync.Mutex
	rng    *rand.Rand
	logger *slog.Logger
}

var _ Gateway = (*Simulated)(nil)

// SimulatedOption configures a Simulated gateway.
type SimulatedOption func(*Simulated)

// WithLatency sets the artificial processing delay.
func WithLatency(d time.Duration) SimulatedOption {
	return func(s *Simulated) { s.Latency = d }
}

// WithSeed makes transaction ids reproducible.
func WithSeed(seed uint64) SimulatedOption {
	return func(s *Simulated) { s.rng = rand.New(rand.NewPCG(seed, seed)) }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SimulatedOption {
	return func(s *Simulated) { s.logger = l }
}

// NewSimulated returns a gateway with the given options applied.
func NewSimulated(opts ...SimulatedOption) *Simulated {
	s := &Simulated{
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulated) SubmitPayment(ctx context.Context, amount decimal.Decimal, card Card) (Outcome, error) {
	if s.Latency > 0 {
		timer := time.NewTimer(s.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	switch strings.ReplaceAll(card.Number, " ", "") {
	case CardDeclined:
		s.logger.Debug("payment declined", "amount", amount.StringFixed(2))
		return Failed{Message: FailureMessage}, nil
	case CardProcessingError:
		return nil, ErrUnavailable
	}

	txn := s.transactionID()
	s.logger.Debug("payment processed", "amount", amount.StringFixed(2), "transaction_id", txn)
	return Succeeded{TransactionID: txn}, nil
}

// transactionID returns "txn_" followed by 9 base-36 characters.
func (s *Simulated) transactionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	b.WriteString("txn_")
	for i := 0; i < 9; i++ {
		b.WriteByte(txnAlphabet[s.rng.IntN(len(txnAlphabet))])
	}
	return b.String()
}
