package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/app"
	"github.com/roach88/storefront/internal/config"
)

// loadConfig reads configuration for the command. Failures are command
// errors.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(config.Sources{File: opts.ConfigFile, EnvFile: opts.EnvFile})
	if err != nil {
		return cfg, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	return cfg, nil
}

// withApp opens the storefront, runs fn while the persistence writer is
// active, and closes the storefront so every change reaches storage before
// the command returns.
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, a *app.App) error) (err error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg.Log.Level, opts.Verbose, cmd.ErrOrStderr())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open storefront", err)
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Error("failed to close storefront", "error", cerr)
			err = errors.Join(err, WrapExitError(ExitFailure, "changes may not have been saved", cerr))
		}
	}()

	logger.Debug("storefront opened",
		"store", cfg.Store.Driver,
		"cart_lines", len(a.Engine.State().Cart),
		"orders", len(a.Engine.State().Orders),
	)

	return a.Run(ctx, func(ctx context.Context) error {
		return fn(ctx, a)
	})
}

// formatter builds the output formatter for cmd.
func formatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// fail reports an error through the formatter and returns an ExitError so
// main sets the exit code. Text output goes to the error writer, with
// per-field messages listed one per line.
func fail(out *OutputFormatter, exitCode int, code, message string, details any) error {
	if out.Format == "json" {
		if err := out.Error(code, message, details); err != nil {
			return err
		}
	} else {
		w := out.GetErrWriter()
		fmt.Fprintf(w, "Error [%s]: %s\n", code, message)
		if fields, ok := details.(map[string]string); ok {
			for _, name := range slices.Sorted(maps.Keys(fields)) {
				fmt.Fprintf(w, "  %s: %s\n", name, fields[name])
			}
		}
	}
	return &ExitError{Code: exitCode, Message: message, Reported: true}
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
