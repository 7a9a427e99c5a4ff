// Package cmd holds the cobra commands behind the cmdpalette binary.
package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/atomicstack/cmdpalette/internal/app"
	"github.com/atomicstack/cmdpalette/internal/config"
	"github.com/atomicstack/cmdpalette/internal/logging"
	"github.com/atomicstack/cmdpalette/internal/logging/events"
	"github.com/spf13/cobra"
)

// ConfigError marks failures caused by invalid flags or environment.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "configuration error: " + e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }

// ExitCode maps an Execute error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return 2
	}
	return 1
}

// Execute runs the root command against os.Args and the process environment.
func Execute() error {
	return newRootCmd(os.Environ()).ExecuteContext(context.Background())
}

func newRootCmd(environ []string) *cobra.Command {
	root := &cobra.Command{
		Use:   "cmdpalette",
		Short: "A fuzzy command palette for the terminal",
		Long: `cmdpalette shows the actions of a catalog file in a searchable palette.
Type to fuzzy-search, enter to run an action or browse into its children,
backspace on an empty query to go back.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	values := config.AddFlags(root.PersistentFlags(), environ)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ConfigError{Err: err}
	})
	root.RunE = func(c *cobra.Command, args []string) error {
		cfg, err := prepare(values, args)
		if err != nil {
			return err
		}
		if err := app.Run(c.Context(), cfg.App, logging.Logr(), c.OutOrStdout()); err != nil {
			logging.Error(err)
			return err
		}
		return nil
	}
	root.AddCommand(newCheckCmd(values), newQueryCmd(values))
	return root
}

// prepare validates the parsed flags and configures logging.
func prepare(values *config.Values, args []string) (config.Config, error) {
	cfg, err := values.Config(args)
	if err != nil {
		return cfg, &ConfigError{Err: err}
	}
	if err := config.Validate(cfg); err != nil {
		return cfg, &ConfigError{Err: err}
	}
	logging.Configure(cfg.Logging.FilePath)
	logging.SetTraceEnabled(cfg.Logging.Trace)
	logging.SetVerbose(cfg.Logging.Verbose)
	events.App.Start(startupTracePayload(cfg))
	return cfg, nil
}
