package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/app"
	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/view"
)

// NewOrdersCommand creates the orders command.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List placed orders, newest last",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrders(cmd, rootOpts)
		},
	}
}

func runOrders(cmd *cobra.Command, opts *RootOptions) error {
	out := formatter(cmd, opts)

	return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
		orders := a.Engine.State().Orders
		if out.Format == "json" {
			if orders == nil {
				orders = []model.Order{}
			}
			return out.Success(orders)
		}

		w := cmd.OutOrStdout()
		if len(orders) == 0 {
			fmt.Fprintln(w, "No orders yet.")
			return nil
		}
		for i, o := range orders {
			if i > 0 {
				fmt.Fprintln(w)
			}
			writeOrder(w, o)
		}
		return nil
	})
}

func writeOrder(w io.Writer, o model.Order) {
	fmt.Fprintf(w, "Order %s  %s  %s\n", o.ID, o.OrderDate.Format("2006-01-02 15:04"), o.Status)
	for _, line := range o.Items {
		fmt.Fprintf(w, "  %d × %s  %s\n", line.Quantity, line.Product.Name, money(line.LineTotal()))
	}
	addr := o.ShippingAddress
	fmt.Fprintf(w, "  Ship to: %s, %s, %s %s\n", addr.Street, addr.City, addr.State, addr.ZipCode)
	if o.TransactionID != "" {
		fmt.Fprintf(w, "  Transaction: %s\n", o.TransactionID)
	}
	fmt.Fprintf(w, "  Total: %s\n", money(o.Total))
}

func writeTotals(w io.Writer, t view.Totals) {
	fmt.Fprintf(w, "\nSubtotal: %s\n", money(t.Subtotal))
	if t.FreeShipping() {
		fmt.Fprintln(w, "Shipping: FREE")
	} else {
		fmt.Fprintf(w, "Shipping: %s (free over %s)\n", money(t.Shipping), money(view.FreeShippingThreshold))
	}
	fmt.Fprintf(w, "Tax:      %s\n", money(t.Tax))
	fmt.Fprintf(w, "Total:    %s\n", money(t.Total))
}
