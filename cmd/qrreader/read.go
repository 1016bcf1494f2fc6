package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/qrreader/internal/config"
	"github.com/nao1215/qrreader/internal/database"
	"github.com/nao1215/qrreader/internal/fetch"
	qrlog "github.com/nao1215/qrreader/internal/log"
	"github.com/nao1215/qrreader/internal/model"
	"github.com/nao1215/qrreader/internal/pipeline"
	"github.com/nao1215/qrreader/internal/qr"
)

// errReadsFailed is returned when at least one read did not decode a QR code.
var errReadsFailed = errors.New("one or more reads failed")

// NewReadCmd creates the read command.
func NewReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read [image-url]...",
		Short: "Decode the QR code in one or more images",
		Long: `Read downloads each image, decodes it and prints the QR code text.

Only JPEG and PNG images are supported. Every read is recorded in the
history database unless --no-history is given.

Examples:
  # Read a single image
  qrreader read https://example.com/qr.png

  # Read several images, eight at a time
  qrreader read --batch 8 https://example.com/a.png https://example.com/b.jpg

  # Download through a local Tor daemon
  qrreader read --proxy 127.0.0.1:9050 https://example.com/qr.png

  # Write a JSON report to a file
  qrreader read --json -o reports/qr.json https://example.com/qr.png

The command exits with status 1 when any read fails.`,
		Args: cobra.ArbitraryArgs,
		RunE: runReadCmd,
	}

	addFetchFlags(cmd)
	addHistoryFlags(cmd, true)
	addReportFlags(cmd, true)
	cmd.Flags().IntP("batch", "b", config.DefaultConcurrency,
		"Number of concurrent reads")

	return cmd
}

// runReadCmd executes the read command.
func runReadCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildReadConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.ValidateRead(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := qrlog.NewSecureLogger(cmd.ErrOrStderr(), qrlog.Level(cfg.Verbose, slog.LevelWarn))

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runRead(ctx, cmd, cfg, logger)
}

// buildReadConfig creates the read configuration from the config file and flags.
func buildReadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if err := applyFetchFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := applyHistoryFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := applyReportFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("batch") {
		if cfg.Concurrency, err = cmd.Flags().GetInt("batch"); err != nil {
			return nil, err
		}
	}

	cfg.Targets = args
	return cfg, nil
}

// newProcessor wires the fetcher, the recognizer and the read pipeline.
func newProcessor(cfg *config.Config, logger *slog.Logger) (*pipeline.Processor, error) {
	fetcher, err := fetch.New(cfg.FetchConstraints(),
		fetch.WithLogger(logger),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithProxy(cfg.ProxyAddress),
		fetch.WithAllowPrivateNetworks(cfg.AllowPrivateNetworks),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}

	p := pipeline.DefaultPipeline(fetcher, qr.NewZXing(), pipeline.WithLogger(logger))
	return pipeline.NewProcessor(p,
		pipeline.WithProcessTimeout(cfg.ProcessTimeout),
		pipeline.WithProcessorLogger(logger),
	), nil
}

// openHistory opens the history database when it is enabled.
// It returns nil when history is disabled.
func openHistory(cfg *config.Config, logger *slog.Logger) (*database.HistoryDB, error) {
	if !cfg.HistoryEnabled {
		return nil, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("database opened", "path", db.Path())
	return db, nil
}

// runRead reads every target and writes one report for all of them.
func runRead(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	proc, err := newProcessor(cfg, logger)
	if err != nil {
		return err
	}

	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	progress := cmd.ErrOrStderr()
	if len(cfg.Targets) > 1 {
		fmt.Fprintf(progress, "Reading %d images (concurrency: %d)...\n", len(cfg.Targets), cfg.Concurrency)
	}
	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(proc,
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)
	reports, batchErr := bp.ProcessBatch(ctx, cfg.Targets)

	reports = completed(reports)
	for _, r := range reports {
		saveReadReport(ctx, db, r, logger)
	}

	if len(cfg.Targets) > 1 {
		fmt.Fprintf(progress, "Read %d images in %s\n\n", len(reports), time.Since(startTime).Round(time.Millisecond))
	}

	if err := writeReadReports(cmd, cfg, reports); err != nil {
		return err
	}

	if batchErr != nil {
		return fmt.Errorf("read interrupted: %w", batchErr)
	}
	if failed := countFailed(reports); failed > 0 {
		return fmt.Errorf("%w: %d of %d", errReadsFailed, failed, len(reports))
	}
	return nil
}

// writeReadReports writes reports in the format selected in cfg.
func writeReadReports(cmd *cobra.Command, cfg *config.Config, reports []*model.ReadReport) (err error) {
	w, closeFn, err := newReportWriter(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report file: %w", cerr)
		}
	}()

	if _, err := w.Write(reports); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// saveReadReport stores report in db. A nil db is a no-op.
func saveReadReport(ctx context.Context, db *database.HistoryDB, report *model.ReadReport, logger *slog.Logger) {
	if db == nil {
		return
	}
	// Save even when the read was interrupted.
	id, err := db.SaveRead(context.WithoutCancel(ctx), report)
	if err != nil {
		logger.Error("failed to save read report", "url", report.URL, "error", err)
		return
	}
	logger.Debug("read report saved to database", "url", report.URL, "id", id)
}

// completed drops reports of reads that never started.
func completed(reports []*model.ReadReport) []*model.ReadReport {
	out := make([]*model.ReadReport, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func countFailed(reports []*model.ReadReport) int {
	n := 0
	for _, r := range reports {
		if !r.Succeeded() {
			n++
		}
	}
	return n
}
