package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/qrreader/internal/config"
	"github.com/nao1215/qrreader/internal/report"
)

// reportFormat returns the output format selected in cfg.
func reportFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	default:
		return report.FormatSimple
	}
}

// openOutput returns the destination for a report: cfg.ReportFile when set,
// the command's stdout otherwise. The returned close function must be called
// once the report is written.
func openOutput(cmd *cobra.Command, cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports carry decoded QR text, so only the owner may read them.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// newReportWriter opens the output selected in cfg and returns a writer for it.
func newReportWriter(cmd *cobra.Command, cfg *config.Config) (report.Writer, func() error, error) {
	out, closeFn, err := openOutput(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}
	format := reportFormat(cfg)
	if format == report.FormatSimple {
		return report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose)), closeFn, nil
	}
	return report.NewWriter(format, out, getVersion()), closeFn, nil
}
