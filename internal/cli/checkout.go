package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/app"
	"github.com/roach88/storefront/internal/checkout"
	"github.com/roach88/storefront/internal/payment"
)

// CheckoutOptions holds flags for the checkout command.
type CheckoutOptions struct {
	*RootOptions
	Shipping checkout.ShippingForm
	Card     payment.Card
}

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckoutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Long: `Check out the cart in one go: shipping details, then payment.

Requires a signed-in user (user.id in configuration) and a non-empty cart.
The email defaults to the signed-in user's.

Card numbers 4000 0000 0000 0002 (declined) and 4000 0000 0000 0119
(processing error) exercise the failure paths of the simulated gateway.

Exit codes:
  0 - Order placed
  1 - Invalid details, payment failed, or checkout not possible
  2 - Command error

Example:
  storefront checkout --first-name Ada --last-name Lovelace --phone 555-0100 \
    --address "1 Main St" --city Springfield --state IL --zip 62701 \
    --card-number 4242424242424242 --expiry 12/30 --cvv 123 --card-name "Ada Lovelace"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckout(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Shipping.FirstName, "first-name", "", "first name")
	f.StringVar(&opts.Shipping.LastName, "last-name", "", "last name")
	f.StringVar(&opts.Shipping.Email, "email", "", "email (default: signed-in user's)")
	f.StringVar(&opts.Shipping.Phone, "phone", "", "phone")
	f.StringVar(&opts.Shipping.Address, "address", "", "street address")
	f.StringVar(&opts.Shipping.City, "city", "", "city")
	f.StringVar(&opts.Shipping.State, "state", "", "state")
	f.StringVar(&opts.Shipping.ZipCode, "zip", "", "ZIP code")
	f.StringVar(&opts.Card.Number, "card-number", "", "card number")
	f.StringVar(&opts.Card.Expiry, "expiry", "", "expiry (MM/YY)")
	f.StringVar(&opts.Card.CVV, "cvv", "", "CVV")
	f.StringVar(&opts.Card.Name, "card-name", "", "name on card")

	return cmd
}

func runCheckout(cmd *cobra.Command, opts *CheckoutOptions) error {
	out := formatter(cmd, opts.RootOptions)

	return withApp(cmd, opts.RootOptions, func(ctx context.Context, a *app.App) error {
		o := a.Checkout()
		if err := o.Guard(); err != nil {
			return checkoutFailure(out, err)
		}

		form := opts.Shipping
		if form.Email == "" {
			form.Email = o.Shipping().Email
		}
		if err := o.SubmitShipping(form); err != nil {
			return checkoutFailure(out, err)
		}

		totals := o.Totals()
		if out.Format != "json" {
			writeTotals(cmd.OutOrStdout(), totals)
			fmt.Fprintf(out.GetErrWriter(), "\nProcessing payment of %s...\n", money(totals.Total))
		}

		card := payment.Card{
			Number: checkout.FormatCardNumber(opts.Card.Number),
			Expiry: checkout.FormatExpiry(opts.Card.Expiry),
			CVV:    checkout.FormatCVV(opts.Card.CVV),
			Name:   opts.Card.Name,
		}
		order, err := o.SubmitPayment(ctx, card)
		if err != nil {
			return checkoutFailure(out, err)
		}

		a.Logger.Info("order placed", "order_id", order.ID, "total", order.Total.StringFixed(2))
		if out.Format == "json" {
			return out.Success(order)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "\nThank you! Your order has been placed.")
		writeOrder(w, order)
		return nil
	})
}

// checkoutFailure maps orchestrator errors onto CLI errors and exit codes.
func checkoutFailure(out *OutputFormatter, err error) error {
	var (
		verr *checkout.ValidationError
		perr *checkout.PaymentError
		rerr *checkout.RedirectError
	)
	switch {
	case errors.As(err, &verr):
		return fail(out, ExitFailure, ErrCodeValidation, "please correct the highlighted fields", verr.Fields)
	case errors.As(err, &perr):
		return fail(out, ExitFailure, ErrCodePayment, perr.Message, nil)
	case errors.As(err, &rerr):
		msg := "checkout not possible: " + rerr.Reason
		switch rerr.To {
		case checkout.RedirectLogin:
			msg += " (set user.id in configuration)"
		case checkout.RedirectCart:
			msg += " (add products with 'storefront cart add')"
		}
		return fail(out, ExitFailure, ErrCodeRedirect, msg, map[string]string{"redirect": rerr.To})
	default:
		return fail(out, ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}
}
