package checkout

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrWrongStep is returned when an operation is not valid in the
	// current step.
	ErrWrongStep = errors.New("operation not allowed in current checkout step")

	// ErrEmptyCart is returned when an order would be placed with no items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrIdentityPending is returned while the identity provider is still
	// resolving the session.
	ErrIdentityPending = errors.New("identity not loaded yet")

	// ErrPaymentInProgress is returned when a payment is submitted while
	// another one is awaiting the gateway.
	ErrPaymentInProgress = errors.New("payment already in progress")
)

// RedirectError sends the shopper to a page owned by a collaborator.
// It is a navigation outcome, not a fault.
type RedirectError struct {
	To     string
	Reason string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect to %s: %s", e.To, e.Reason)
}

// Redirect targets.
const (
	RedirectLogin = "/login"
	RedirectCart  = "/cart"
)

// ValidationError carries one inline message per invalid form field,
// keyed by the field's form name (e.g. "zipCode").
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// PaymentError is an unsuccessful payment. Message is the banner text
// shown to the shopper; Err is the transport error, if any.
type PaymentError struct {
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%v)", e.Message, e.Err)
	}
	return e.Message
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// IsRedirect reports whether err is a RedirectError and returns its target.
func IsRedirect(err error) (string, bool) {
	var re *RedirectError
	if errors.As(err, &re) {
		return re.To, true
	}
	return "", false
}
