package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-submit/internal/config"
	"github.com/rezonia/invoice-submit/internal/fiscalstore"
	"github.com/rezonia/invoice-submit/internal/logger"
	"github.com/rezonia/invoice-submit/internal/processor"
	"github.com/rezonia/invoice-submit/internal/rules"
)

var (
	version = "1.0.0"

	cfg *config.Config

	// logOutput is released after the command finishes
	logOutput io.Closer

	// Global flags
	verbose      bool
	outputFormat string
	rulesFile    string
	logLevel     string
	logFormat    string
)

var rootCmd = &cobra.Command{
	Use:   "invoice-submit",
	Short: "Validate and normalize invoicing documents for submission",
	Long: `Invoice Submit prepares invoices, credit notes, advance invoices, delivery notes
and estimates for the document API.

Supports:
  - Schema and e-SLOG compliance validation with field-scoped errors
  - Normalization into create/update payloads (price modes, customers, FURS/FINA, e-SLOG)
  - Table filter compilation into backend query JSON

Examples:
  # Validate document requests
  invoice-submit validate requests/*.json

  # Build the payload of one invoice
  invoice-submit normalize --kind invoices request.json

  # Compile a table filter
  invoice-submit query --status overdue

  # Start the HTTP API
  invoice-submit serve --address :8080`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  initConfig,
	PersistentPostRunE: closeLogOutput,
}

func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeLogOutput(rootCmd, nil); err == nil {
		err = cerr
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules-file", "", "Jurisdiction rules YAML (env: SUBMIT_RULES_FILE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (env: LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format, console or json (env: LOG_FORMAT)")
}

// initConfig loads the environment and lets flags override it
func initConfig(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded

	if rulesFile != "" {
		cfg.RulesFile = rulesFile
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if verbose && logLevel == "" {
		cfg.LogLevel = zerolog.DebugLevel.String()
	}

	closer, err := logger.Setup(cfg.LoggerConfig())
	if err != nil {
		return err
	}
	logOutput = closer
	return nil
}

func closeLogOutput(_ *cobra.Command, _ []string) error {
	if logOutput == nil {
		return nil
	}
	err := logOutput.Close()
	logOutput = nil
	return err
}

// newPipeline builds the submission pipeline from the loaded configuration
func newPipeline(ctx context.Context) (*processor.Pipeline, error) {
	table, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return nil, err
	}

	opts := []processor.Option{
		processor.WithRules(table),
		processor.WithLogger(logger.WithComponent("processor")),
	}
	if cfg.RedisAddr != "" {
		client, err := fiscalstore.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		opts = append(opts, processor.WithFiscalStore(fiscalstore.NewRedisStore(client, cfg.FiscalComboTTL)))
		printVerbose("Fiscal combos stored in Redis at %s\n", cfg.RedisAddr)
	}
	return processor.NewPipeline(opts...), nil
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
