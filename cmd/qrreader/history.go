package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/qrreader/internal/config"
	"github.com/nao1215/qrreader/internal/database"
	qrlog "github.com/nao1215/qrreader/internal/log"
	"github.com/nao1215/qrreader/internal/model"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent reads from the history database",
		Long: `History lists the most recent reads recorded by "qrreader read"
and "qrreader serve", newest first, followed by overall statistics.

Examples:
  # Show the last 20 reads
  qrreader history

  # Show the last 100 reads as JSON
  qrreader history -n 100 --json

  # Find every read of an image by its SHA3-256 digest
  qrreader history --digest 3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532

  # Show the full stored report of read 42
  qrreader history --id 42 -v`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", database.DefaultListLimit,
		"Number of reads to show")
	cmd.Flags().String("digest", "",
		"Show only reads of the image with this SHA3-256 digest")
	cmd.Flags().Int64("id", 0,
		"Show the full stored report of the read with this ID")
	cmd.MarkFlagsMutuallyExclusive("id", "digest")
	addHistoryFlags(cmd, false)
	addReportFlags(cmd, true)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyHistoryFlags(cmd, cfg); err != nil {
		return err
	}
	if err := applyReportFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	digest, err := cmd.Flags().GetString("digest")
	if err != nil {
		return err
	}
	id, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("id") && id <= 0 {
		return fmt.Errorf("--id must be positive, got %d", id)
	}

	logger := qrlog.NewSecureLogger(cmd.ErrOrStderr(), qrlog.Level(cfg.Verbose, slog.LevelWarn))

	// Listing history never creates the database.
	db, err := database.Open(cfg.DBDir, database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	logger.Debug("database opened", "path", db.Path())

	ctx := cmd.Context()

	if id > 0 {
		return writeStoredRead(cmd, cfg, db, id)
	}

	var records []model.ReadRecord
	if digest != "" {
		records, err = db.FindByDigest(ctx, digest)
	} else {
		records, err = db.ListRecent(ctx, limit)
	}
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	stats, err := db.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read history statistics: %w", err)
	}

	w, closeFn, err := newReportWriter(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report file: %w", cerr)
		}
	}()

	if _, err := w.WriteHistory(records, stats); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// writeStoredRead prints one stored report in full.
func writeStoredRead(cmd *cobra.Command, cfg *config.Config, db *database.HistoryDB, id int64) (err error) {
	r, err := db.GetRead(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if r == nil {
		return fmt.Errorf("no read with id %d", id)
	}

	w, closeFn, err := newReportWriter(cmd, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report file: %w", cerr)
		}
	}()

	if _, err := w.Write([]*model.ReadReport{r}); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
