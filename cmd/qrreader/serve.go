package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/qrreader/internal/config"
	qrlog "github.com/nao1215/qrreader/internal/log"
	"github.com/nao1215/qrreader/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the QR reading HTTP service",
		Long: `Serve starts an HTTP service that decodes QR codes from image URLs.

Endpoints:
  POST /         {"url": "https://..."} -> {"success":true,"qr":{"data":"..."}}
  GET  /errors   error code descriptions
  GET  /health   liveness check
  GET  /history  recent reads (when history is enabled)

When a bearer token is configured (config file or ` + config.AuthTokenEnv + `),
POST / and GET /history require "Authorization: Bearer <token>".

Examples:
  # Listen on the default address (:8080)
  qrreader serve

  # Listen on localhost only and log JSON
  qrreader serve --listen 127.0.0.1:9000 --log-json

  # Require a token
  ` + config.AuthTokenEnv + `=secret qrreader serve`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddress,
		"Address to listen on")
	cmd.Flags().Bool("log-json", false,
		"Write logs as JSON")
	cmd.Flags().Float64("rate-limit", config.DefaultRateLimit,
		"Requests per second accepted by the server (0 disables the limit)")
	cmd.Flags().Int("rate-burst", config.DefaultRateBurst,
		"Maximum burst of requests above the rate limit")
	addFetchFlags(cmd)
	addHistoryFlags(cmd, true)

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newServeLogger(cmd, cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runServe(ctx, cfg, logger)
}

// buildServeConfig creates the server configuration from the config file and flags.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		if cfg.ListenAddress, err = flags.GetString("listen"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("log-json") {
		if cfg.LogJSON, err = flags.GetBool("log-json"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("rate-limit") {
		if cfg.RateLimit, err = flags.GetFloat64("rate-limit"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("rate-burst") {
		if cfg.RateBurst, err = flags.GetInt("rate-burst"); err != nil {
			return nil, err
		}
	}

	if err := applyFetchFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := applyHistoryFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newServeLogger creates the server logger. The server logs at Info so
// every request leaves a trace.
func newServeLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level := qrlog.Level(cfg.Verbose, slog.LevelInfo)
	if cfg.LogJSON {
		return qrlog.NewSecureJSONLogger(cmd.ErrOrStderr(), level)
	}
	return qrlog.NewSecureLogger(cmd.ErrOrStderr(), level)
}

// newServer wires the read pipeline and the history store into an HTTP server.
// The returned close function releases the history store.
func newServer(cfg *config.Config, logger *slog.Logger) (*server.Server, func() error, error) {
	proc, err := newProcessor(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithAuthToken(cfg.AuthToken),
		server.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
	}

	closeFn := func() error { return nil }
	db, err := openHistory(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if db != nil {
		opts = append(opts, server.WithHistory(db))
		closeFn = db.Close
	}

	return server.New(proc, opts...), closeFn, nil
}

// runServe serves until ctx is cancelled.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	srv, closeFn, err := newServer(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFn(); err != nil {
			logger.Error("failed to close history database", "error", err)
		}
	}()

	if cfg.AuthToken == "" {
		logger.Warn("no auth token configured; the read endpoint is open to everyone")
		if cfg.HistoryEnabled {
			logger.Warn("GET /history is refused until an auth token is configured")
		}
	}
	if cfg.AllowPrivateNetworks {
		logger.Warn("private network addresses are reachable by the fetcher")
	}

	return srv.ListenAndServe(ctx, cfg.ListenAddress)
}
