package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/qrreader/internal/config"
	"github.com/nao1215/qrreader/internal/outcome"
	"github.com/nao1215/qrreader/internal/report"
)

// NewErrorsCmd creates the errors command.
func NewErrorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "errors",
		Short: "List the error codes a read can return",
		Long: `Errors prints every error code returned by the read endpoint
and the read command, with its description.

Examples:
  qrreader errors
  qrreader errors --json`,
		Args: cobra.NoArgs,
		RunE: runErrorsCmd,
	}

	addReportFlags(cmd, false)

	return cmd
}

// runErrorsCmd executes the errors command.
func runErrorsCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.NewConfig()
	if err := applyReportFlags(cmd, cfg); err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return fmt.Errorf("configuration error: %w", config.ErrConflictingReportFormats)
	}

	w := report.NewWriter(reportFormat(cfg), cmd.OutOrStdout(), getVersion())
	if _, err := w.WriteCatalog(outcome.Catalog()); err != nil {
		return fmt.Errorf("failed to write error catalog: %w", err)
	}
	return nil
}
