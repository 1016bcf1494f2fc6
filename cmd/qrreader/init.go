package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/qrreader/internal/config"
)

//go:embed templates/qrreader.yaml
var configTemplate []byte

// errConfigExists is returned when init would replace a file without -f.
var errConfigExists = errors.New("configuration file already exists")

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented qrreader configuration file",
		Long: `Init writes a configuration file in which every setting is commented
out at its default value, so the file changes nothing until edited.

The file is created with mode 0600 because it may later carry the
server auth token. Missing parent directories are created.

Examples:
  # Write .qrreader in the current directory
  qrreader init

  # Write the per-user file read by default
  qrreader init -o ~/.config/qrreader/config.yaml

  # Replace a file that already exists
  qrreader init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Where to write the configuration file")
	cmd.Flags().BoolP("force", "f", false,
		"Replace the file if it already exists")

	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if err := writeConfigTemplate(path, force); err != nil {
		if errors.Is(err, errConfigExists) {
			return fmt.Errorf("%w: %s (use -f to overwrite)", errConfigExists, path)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", path)
	fmt.Fprintln(cmd.OutOrStdout(), `Uncomment a setting to change it; "qrreader errors" lists the outcome codes.`)
	return nil
}

// writeConfigTemplate writes the embedded template to path with mode 0600.
// Without force an existing file is left untouched and errConfigExists is
// returned.
func writeConfigTemplate(path string, force bool) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0600) //nolint:gosec // path is chosen by the user
	if errors.Is(err, fs.ErrExist) {
		return errConfigExists
	}
	if err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close configuration file: %w", cerr)
		}
	}()

	// O_TRUNC keeps the old mode of a replaced file.
	if err := f.Chmod(0600); err != nil {
		return fmt.Errorf("failed to restrict configuration file: %w", err)
	}
	if _, err := f.Write(configTemplate); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}
