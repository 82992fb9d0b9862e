// Package cli implements the salesdash command line: one-shot summaries,
// exports and chart rendering over the same dashboard service the server uses.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bobmcallan/salesdash/internal/app"
	"github.com/bobmcallan/salesdash/internal/common"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	DataPath     string
}

// CLIContext carries the initialized App through the command tree.
type CLIContext struct {
	App          *app.App
	OutputFormat string
}

// NewRootCommand creates the root cobra command with all global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "salesdash",
		Short: "Business sales and profit dashboard",
		Long: "salesdash loads a Superstore-style sales CSV and reports total sales, total\n" +
			"profit, profit margin, per-segment totals and category profit share.",
		Version: common.GetFullVersion(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: $SALESDASH_CONFIG, then salesdash.toml)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json)")
	pf.StringVar(&opts.DataPath, "data", "", "sales CSV path, overrides data.path from config")

	cmd.AddCommand(
		newSummaryCmd(),
		newExportCmd(),
		newChartsCmd(),
		newVersionCmd(),
	)

	return cmd
}

// persistentPreRun loads config, builds the logger and the App, then stores
// the CLIContext on the command.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	switch strings.ToLower(opts.OutputFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported output format %q", opts.OutputFormat)
	}

	cfg, err := common.LoadConfig(app.ResolveConfigPath(opts.ConfigPath))
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	if opts.DataPath != "" {
		cfg.Data.Path = opts.DataPath
	}

	logger := common.NewLoggerWithOutput(opts.LogLevel, zerolog.ConsoleWriter{
		Out:        cmd.ErrOrStderr(),
		TimeFormat: time.RFC3339,
	})

	a, err := app.NewAppWithConfig(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	cliCtx := &CLIContext{
		App:          a,
		OutputFormat: strings.ToLower(opts.OutputFormat),
	}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// printJSON outputs data as indented JSON to stdout.
func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// selectionFlag returns nil when --segments was not given (every segment)
// and the parsed list otherwise, which may be empty.
func selectionFlag(cmd *cobra.Command) ([]string, error) {
	if !cmd.Flags().Changed("segments") {
		return nil, nil
	}
	values, err := cmd.Flags().GetStringSlice("segments")
	if err != nil {
		return nil, err
	}
	segments := []string{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			segments = append(segments, v)
		}
	}
	return segments, nil
}
