package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/workbench/internal/paths"
	"github.com/mesh-intelligence/workbench/internal/sqlite"
)

func newInitCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize workbench storage",
		Long: "Create the configuration and data directories and bring the database\n" +
			"schema up to date. A --data-dir given here is recorded in config.yaml.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts)
		},
	}
}

func runInit(cmd *cobra.Command, opts *options) error {
	if opts.dataDir != "" {
		configDir, err := paths.ResolveConfigDir(opts.configDir)
		if err != nil {
			return sysError(fmt.Errorf("resolve config dir: %w", err))
		}
		dataDir, err := filepath.Abs(opts.dataDir)
		if err != nil {
			return sysError(err)
		}
		if err := ensureDir(configDir); err != nil {
			return sysError(err)
		}
		if err := writeDefaultConfig(filepath.Join(configDir, configFileExt), dataDir); err != nil {
			return sysError(fmt.Errorf("write config: %w", err))
		}
	}

	return withStore(cmd, opts, func(ctx context.Context, store *sqlite.Backend) error {
		version, err := store.SchemaVersion()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Workbench initialized (schema version %d)\n", version)
		return nil
	})
}
