package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/view"
)

// CatalogReport is the catalog validate payload.
type CatalogReport struct {
	File       string      `json:"file"`
	Products   int         `json:"products"`
	Facets     view.Facets `json:"facets"`
	OutOfStock []string    `json:"outOfStock"`
}

// NewCatalogCommand creates the catalog command and its subcommands.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate catalogs",
	}

	validate := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a catalog file against the product schema",
		Long: `Validate a .yaml, .json or .cue catalog against the product schema.

Exit codes:
  0 - Catalog is valid
  1 - Catalog violates the schema or has duplicate ids
  2 - File missing or unsupported`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogValidate(cmd, rootOpts, args[0])
		},
	}

	facets := &cobra.Command{
		Use:   "facets",
		Short: "List the categories and brands of the configured catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalogFacets(cmd, rootOpts)
		},
	}

	cmd.AddCommand(validate, facets)
	return cmd
}

func runCatalogValidate(cmd *cobra.Command, opts *RootOptions, path string) error {
	out := formatter(cmd, opts)

	cat, err := catalog.Load(path)
	if err != nil {
		var serr *catalog.SchemaError
		switch {
		case errors.As(err, &serr):
			return fail(out, ExitFailure, ErrCodeSchema, serr.Error(), nil)
		case errors.Is(err, catalog.ErrInvalidCatalog):
			return fail(out, ExitFailure, ErrCodeSchema, err.Error(), nil)
		default:
			return fail(out, ExitCommandError, ErrCodeNotFound, err.Error(), nil)
		}
	}

	report := CatalogReport{
		File:       path,
		Products:   cat.Len(),
		Facets:     view.CatalogFacets(cat.All()),
		OutOfStock: []string{},
	}
	for _, p := range cat.All() {
		if p.InStock == 0 {
			report.OutOfStock = append(report.OutOfStock, p.ID)
		}
	}

	if out.Format == "json" {
		return out.Success(report)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ %s: %d products\n", path, report.Products)
	fmt.Fprintf(w, "  categories: %s\n", strings.Join(report.Facets.Categories, ", "))
	fmt.Fprintf(w, "  brands: %s\n", strings.Join(report.Facets.Brands, ", "))
	if len(report.OutOfStock) > 0 {
		fmt.Fprintf(w, "  out of stock: %s\n", strings.Join(report.OutOfStock, ", "))
	}
	return nil
}

func runCatalogFacets(cmd *cobra.Command, opts *RootOptions) error {
	out := formatter(cmd, opts)

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	var cat *catalog.Catalog
	if cfg.Catalog.Path == "" {
		cat, err = catalog.Default()
	} else {
		cat, err = catalog.Load(cfg.Catalog.Path)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load catalog", err)
	}

	facets := view.CatalogFacets(cat.All())
	if out.Format == "json" {
		return out.Success(facets)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Categories:")
	for _, c := range facets.Categories {
		fmt.Fprintf(w, "  %s\n", c)
	}
	fmt.Fprintln(w, "Brands:")
	for _, b := range facets.Brands {
		fmt.Fprintf(w, "  %s\n", b)
	}
	return nil
}
