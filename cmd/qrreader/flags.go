package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/qrreader/internal/config"
)

// addFetchFlags registers the flags shared by every command that downloads
// images.
func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().DurationP("timeout", "t", config.DefaultRequestTimeout,
		"Timeout for downloading one image")
	cmd.Flags().Duration("process-timeout", config.DefaultProcessTimeout,
		"Timeout for a whole read, including decoding")
	cmd.Flags().Int64("max-bytes", config.DefaultMaxImageBytes,
		"Largest image that will be downloaded, in bytes")
	cmd.Flags().String("user-agent", "",
		"User-Agent header sent with image requests")
	cmd.Flags().StringP("proxy", "x", "",
		"Download through a SOCKS5 proxy (e.g., 127.0.0.1:9050 for Tor)")
	cmd.Flags().Bool("allow-private", false,
		"Allow downloads from loopback and private network addresses")
}

// addHistoryFlags registers the history store flags.
func addHistoryFlags(cmd *cobra.Command, withDisable bool) {
	cmd.Flags().String("db-dir", "",
		"Directory of the history database (default: XDG data directory)")
	if withDisable {
		cmd.Flags().Bool("no-history", false, "Do not record reads in the history database")
	}
}

// applyFetchFlags copies explicitly set fetch flags onto cfg, so that
// flags override the configuration file only when given.
func applyFetchFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("timeout") {
		if cfg.RequestTimeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("process-timeout") {
		if cfg.ProcessTimeout, err = flags.GetDuration("process-timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("max-bytes") {
		if cfg.MaxImageBytes, err = flags.GetInt64("max-bytes"); err != nil {
			return err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	if flags.Changed("allow-private") {
		if cfg.AllowPrivateNetworks, err = flags.GetBool("allow-private"); err != nil {
			return err
		}
	}
	return nil
}

// applyHistoryFlags copies explicitly set history flags onto cfg.
func applyHistoryFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("db-dir") {
		dir, err := flags.GetString("db-dir")
		if err != nil {
			return err
		}
		cfg.DBDir = dir
	}
	if flags.Lookup("no-history") != nil && flags.Changed("no-history") {
		disabled, err := flags.GetBool("no-history")
		if err != nil {
			return err
		}
		cfg.HistoryEnabled = !disabled
	}
	return nil
}

// applyReportFlags reads the report format and output flags into cfg.
func applyReportFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error

	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if f := cmd.Flags().Lookup("output"); f != nil {
		cfg.ReportFile = f.Value.String()
	}
	return nil
}

// addReportFlags registers the report format flags.
func addReportFlags(cmd *cobra.Command, withOutput bool) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	if withOutput {
		cmd.Flags().StringP("output", "o", "",
			"Write report to specified file path (creates directories if needed)")
	}
}
