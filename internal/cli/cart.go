package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/app"
	"github.com/roach88/storefront/internal/engine"
	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/view"
)

// CartView is the payload of every cart command.
type CartView struct {
	Lines     model.Cart  `json:"lines"`
	ItemCount int         `json:"itemCount"`
	Totals    view.Totals `json:"totals"`
}

func newCartView(cart model.Cart) CartView {
	return CartView{Lines: cart, ItemCount: view.ItemCount(cart), Totals: view.CartTotals(cart)}
}

// NewCartCommand creates the cart command and its subcommands.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and edit the cart",
		Long: `Show and edit the persistent cart.

Examples:
  storefront cart
  storefront cart add 8 --qty 2
  storefront cart set 8 5
  storefront cart remove 8
  storefront cart clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cartAction(cmd, rootOpts, nil)
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cartAction(cmd, rootOpts, nil)
		},
	}

	var qty int
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if qty < 1 {
				return NewExitError(ExitCommandError, "--qty must be at least 1")
			}
			return cartAction(cmd, rootOpts, func(a *app.App, out *OutputFormatter) error {
				p, ok := a.Catalog.ByID(args[0])
				if !ok {
					return fail(out, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("product %q not found", args[0]), nil)
				}
				if p.InStock <= 0 {
					return fail(out, ExitFailure, ErrCodeOutOfStock, fmt.Sprintf("%s is out of stock", p.Name), nil)
				}
				for range qty {
					a.Engine.Dispatch(engine.AddToCart{Product: p})
				}
				return nil
			})
		},
	}
	add.Flags().IntVarP(&qty, "qty", "q", 1, "quantity to add")

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cartAction(cmd, rootOpts, func(a *app.App, _ *OutputFormatter) error {
				a.Engine.Dispatch(engine.RemoveFromCart{ProductID: args[0]})
				return nil
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set a line's quantity (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := strconv.Atoi(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid quantity", err)
			}
			return cartAction(cmd, rootOpts, func(a *app.App, out *OutputFormatter) error {
				if !view.InCart(a.Engine.State().Cart, args[0]) {
					return fail(out, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("product %q is not in the cart", args[0]), nil)
				}
				a.Engine.Dispatch(engine.UpdateCartQuantity{ProductID: args[0], Quantity: q})
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cartAction(cmd, rootOpts, func(a *app.App, _ *OutputFormatter) error {
				a.Engine.Dispatch(engine.ClearCart{})
				return nil
			})
		},
	}

	cmd.AddCommand(show, add, remove, set, clearCmd)
	return cmd
}

// cartAction applies edit (if any) and prints the resulting cart.
func cartAction(cmd *cobra.Command, opts *RootOptions, edit func(a *app.App, out *OutputFormatter) error) error {
	out := formatter(cmd, opts)

	return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
		if edit != nil {
			if err := edit(a, out); err != nil {
				return err
			}
		}

		cv := newCartView(a.Engine.State().Cart)
		if out.Format == "json" {
			return out.Success(cv)
		}
		writeCart(cmd, cv)
		return nil
	})
}

func writeCart(cmd *cobra.Command, cv CartView) {
	w := cmd.OutOrStdout()
	if len(cv.Lines) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tPRICE\tQTY\tLINE TOTAL\t")
	for _, line := range cv.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t\n",
			line.Product.ID, line.Product.Name, money(line.Product.Price), line.Quantity, money(line.LineTotal()))
	}
	tw.Flush()

	writeTotals(w, cv.Totals)
	fmt.Fprintf(w, "\n%d item(s)\n", cv.ItemCount)
}
