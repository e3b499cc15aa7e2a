package payment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var amount = decimal.RequireFromString("108.00")

func quiet() SimulatedOption {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSimulated_Succeeds(t *testing.T) {
	g := NewSimulated(quiet())

	out, err := g.SubmitPayment(context.Background(), amount, Card{Number: "4242 4242 4242 4242"})
	require.NoError(t, err)

	ok, isOK := out.(Succeeded)
	require.True(t, isOK, "got %T", out)
	assert.Regexp(t, regexp.MustCompile(`^txn_[0-9a-z]{9}$`), ok.TransactionID)
}

func TestSimulated_SeedIsReproducible(t *testing.T) {
	a, _ := NewSimulated(WithSeed(7), quiet()).SubmitPayment(context.Background(), amount, Card{})
	b, _ := NewSimulated(WithSeed(7), quiet()).SubmitPayment(context.Background(), amount, Card{})

	assert.Equal(t, a, b)
}

func TestSimulated_TestCards(t *testing.T) {
	g := NewSimulated(quiet())

	out, err := g.SubmitPayment(context.Background(), amount, Card{Number: "4000 0000 0000 0002"})
	require.NoError(t, err)
	assert.Equal(t, Failed{Message: FailureMessage}, out)

	_, err = g.SubmitPayment(context.Background(), amount, Card{Number: CardProcessingError})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestSimulated_LatencyHonoursContext(t *testing.T) {
	g := NewSimulated(WithLatency(time.Hour), quiet())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.SubmitPayment(ctx, amount, Card{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithTimeout(t *testing.T) {
	slow := NewSimulated(WithLatency(time.Hour), quiet())

	_, err := WithTimeout(slow, 10*time.Millisecond).SubmitPayment(context.Background(), amount, Card{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Same(t, slow, WithTimeout(slow, 0))
}

func TestBreaker_TripsOnTransportErrorsOnly(t *testing.T) {
	calls := 0
	next := GatewayFunc(func(ctx context.Context, amount decimal.Decimal, card Card) (Outcome, error) {
		calls++
		return nil, errors.New("connection reset")
	})
	b := NewBreaker(next, BreakerConfig{ConsecutiveFailures: 2, OpenTimeout: time.Hour})

	for i := 0; i < 3; i++ {
		_, err := b.SubmitPayment(context.Background(), amount, Card{})
		require.Error(t, err)
	}
	assert.Equal(t, "open", b.State())

	_, err := b.SubmitPayment(context.Background(), amount, Card{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 3, calls, "open circuit must not reach the gateway")
}

func TestBreaker_DeclinesDoNotTrip(t *testing.T) {
	next := GatewayFunc(func(ctx context.Context, amount decimal.Decimal, card Card) (Outcome, error) {
		return Failed{Message: FailureMessage}, nil
	})
	b := NewBreaker(next, BreakerConfig{ConsecutiveFailures: 1, OpenTimeout: time.Hour})

	for i := 0; i < 5; i++ {
		out, err := b.SubmitPayment(context.Background(), amount, Card{})
		require.NoError(t, err)
		assert.IsType(t, Failed{}, out)
	}
	assert.Equal(t, "closed", b.State())
}
