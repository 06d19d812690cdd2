package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-submit/internal/logger"
	"github.com/rezonia/invoice-submit/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
	rateLimit    int
	redisAddr    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for validating and normalizing documents.

The API provides endpoints for:
  - POST /api/v1/validate                  - Schema and compliance validation
  - POST /api/v1/documents/:kind/prepare   - Validate and build the API payload
  - POST /api/v1/preview                   - Line and document totals
  - POST /api/v1/table/query               - Compile a table filter
  - GET  /api/v1/table/query               - Compile address-bar parameters
  - GET  /api/v1/rules                     - Jurisdiction rules
  - GET  /health                           - Health check

Examples:
  # Start server on default port
  invoice-submit serve

  # Remember fiscalization combos in Redis
  invoice-submit serve --redis-addr localhost:6379

  # Start in debug mode without rate limiting
  invoice-submit serve --debug --rate-limit 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (env: SUBMIT_ADDR)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode (env: SUBMIT_DEBUG)")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 0, "HTTP read timeout (env: SUBMIT_READ_TIMEOUT)")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 0, "HTTP write timeout (env: SUBMIT_WRITE_TIMEOUT)")
	serveCmd.Flags().IntVar(&rateLimit, "rate-limit", -1, "Requests per minute per IP, 0 disables (env: SUBMIT_RATE_LIMIT)")
	serveCmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address for fiscal combos (env: SUBMIT_REDIS_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serverAddr != "" {
		cfg.Addr = serverAddr
	}
	if serverDebug {
		cfg.Debug = true
	}
	if readTimeout > 0 {
		cfg.ReadTimeout = readTimeout
	}
	if writeTimeout > 0 {
		cfg.WriteTimeout = writeTimeout
	}
	if rateLimit >= 0 {
		cfg.RateLimit = rateLimit
	}
	if redisAddr != "" {
		cfg.RedisAddr = redisAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := newPipeline(ctx)
	if err != nil {
		return err
	}

	srv := server.NewServer(&server.Config{
		Address:      cfg.Addr,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Debug:        cfg.Debug,
		RateLimit:    cfg.RateLimit,
	}, pipeline, server.WithLogger(logger.WithComponent("server")))

	fmt.Fprintf(cmd.OutOrStdout(), "Starting server on %s\n", cfg.Addr)
	if cfg.RedisAddr == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Fiscal combos kept in memory (no Redis address)")
	}

	if err := srv.Run(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "\nServer stopped")
	return nil
}
