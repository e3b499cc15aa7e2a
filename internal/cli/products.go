package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/app"
	"github.com/roach88/storefront/internal/engine"
	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/view"
)

// ProductsOptions holds flags for the products command.
type ProductsOptions struct {
	*RootOptions
	Search   string
	Category string
	Brand    string
	Min      string
	Max      string
	Sort     string
	Featured bool
}

// ProductListing is the products command payload.
type ProductListing struct {
	Products  []model.Product      `json:"products"`
	Total     int                  `json:"total"`
	Filter    model.FilterCriteria `json:"filter"`
	Sort      view.SortKey         `json:"sort"`
	CartItems int                  `json:"cartItems"`
}

// NewProductsCommand creates the products command.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List catalog products",
		Long: `List catalog products, filtered and sorted.

Search matches name, brand or category, ignoring case. Category and brand
must match exactly. The price range is inclusive.

Examples:
  storefront products
  storefront products --search strat --sort price-low
  storefront products --category Keyboards --max 700
  storefront products --featured`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProducts(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "search query")
	cmd.Flags().StringVar(&opts.Category, "category", "", "exact category")
	cmd.Flags().StringVar(&opts.Brand, "brand", "", "exact brand")
	cmd.Flags().StringVar(&opts.Min, "min", "", "minimum price (default 0)")
	cmd.Flags().StringVar(&opts.Max, "max", "", fmt.Sprintf("maximum price (default %d)", model.DefaultPriceMax))
	cmd.Flags().StringVar(&opts.Sort, "sort", string(view.SortFeatured), "sort key (featured|price-low|price-high|rating|name)")
	cmd.Flags().BoolVar(&opts.Featured, "featured", false, "show only featured products")

	return cmd
}

func runProducts(cmd *cobra.Command, opts *ProductsOptions) error {
	out := formatter(cmd, opts.RootOptions)

	key, ok := view.ParseSortKey(opts.Sort)
	if !ok {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown sort key %q: must be one of %v", opts.Sort, view.SortKeys))
	}
	priceRange, err := parsePriceRange(opts.Min, opts.Max)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid price range", err)
	}

	return withApp(cmd, opts.RootOptions, func(ctx context.Context, a *app.App) error {
		applyFilters(a.Engine, opts, priceRange)

		s := a.Engine.State()
		var products []model.Product
		if opts.Featured {
			products = view.Featured(a.Catalog.All(), view.DefaultFeaturedCount)
		} else {
			products = view.Project(a.Catalog.All(), s.Filter, key)
		}

		listing := ProductListing{
			Products:  products,
			Total:     a.Catalog.Len(),
			Filter:    s.Filter,
			Sort:      key,
			CartItems: view.ItemCount(s.Cart),
		}
		if out.Format == "json" {
			return out.Success(listing)
		}
		writeProductTable(cmd.OutOrStdout(), listing.Products, s.Cart)
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d products · cart: %d item(s)\n",
			len(listing.Products), listing.Total, listing.CartItems)
		return nil
	})
}

// applyFilters routes the flags through the engine's filter actions so the
// listing is computed from engine state like any other view.
func applyFilters(e *engine.Engine, opts *ProductsOptions, r model.PriceRange) {
	e.Dispatch(engine.ResetFilters{})
	e.Dispatch(engine.SetSearchQuery{Query: opts.Search})
	if opts.Category != "" {
		e.Dispatch(engine.SetCategory{Category: view.ToggleCategory(e.State().Filter, opts.Category)})
	}
	if opts.Brand != "" {
		e.Dispatch(engine.SetBrand{Brand: view.ToggleBrand(e.State().Filter, opts.Brand)})
	}
	e.Dispatch(engine.SetPriceRange{Range: r})
}

func parsePriceRange(lo, hi string) (model.PriceRange, error) {
	r := model.DefaultPriceRange()
	if lo != "" {
		d, err := decimal.NewFromString(lo)
		if err != nil {
			return r, fmt.Errorf("min: %w", err)
		}
		r.Min = d
	}
	if hi != "" {
		d, err := decimal.NewFromString(hi)
		if err != nil {
			return r, fmt.Errorf("max: %w", err)
		}
		r.Max = d
	}
	if r.Min.GreaterThan(r.Max) {
		return r, fmt.Errorf("min %s is above max %s", r.Min, r.Max)
	}
	return r, nil
}

func writeProductTable(w io.Writer, products []model.Product, cart model.Cart) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tCATEGORY\tPRICE\tRATING\tSTOCK\t")
	for _, p := range products {
		stock := fmt.Sprint(p.InStock)
		if p.InStock == 0 {
			stock = "out of stock"
		}
		if q := cart.Quantity(p.ID); q > 0 {
			stock += fmt.Sprintf(" (%d in cart)", q)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.1f\t%s\t\n",
			p.ID, p.Name, p.Brand, p.Category, money(p.Price), p.Rating, stock)
	}
	tw.Flush()
}

// NewProductCommand creates the product command.
func NewProductCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProduct(cmd, rootOpts, args[0])
		},
	}
}

// ProductDetail is the product command payload.
type ProductDetail struct {
	Product model.Product `json:"product"`
	InCart  int           `json:"inCart"`
}

func runProduct(cmd *cobra.Command, opts *RootOptions, id string) error {
	out := formatter(cmd, opts)

	return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
		p, ok := a.Catalog.ByID(id)
		if !ok {
			return fail(out, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("product %q not found", id), nil)
		}
		detail := ProductDetail{Product: p, InCart: a.Engine.State().Cart.Quantity(id)}
		if out.Format == "json" {
			return out.Success(detail)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%s\n", p.Name)
		fmt.Fprintf(w, "  %s · %s\n", p.Brand, p.Category)
		fmt.Fprintf(w, "  %s  ★ %.1f (%d reviews)\n", money(p.Price), p.Rating, p.Reviews)
		if p.InStock > 0 {
			fmt.Fprintf(w, "  In stock: %d\n", p.InStock)
		} else {
			fmt.Fprintln(w, "  Out of stock")
		}
		if detail.InCart > 0 {
			fmt.Fprintf(w, "  In cart: %d\n", detail.InCart)
		}
		if d := strings.TrimSpace(p.Description); d != "" {
			fmt.Fprintf(w, "\n%s\n", d)
		}
		return nil
	})
}
