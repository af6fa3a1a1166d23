package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/workbench/internal/sqlite"
)

func newExportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write every table to JSONL files",
		Long: `Export writes one <Table>.jsonl file per table and a manifest.json
into dir, creating it if needed. Existing files are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, store *sqlite.Backend) error {
				manifest, err := store.Export(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, manifest)
			})
		},
	}
}

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Load JSONL files written by export",
		Long: `Import loads the JSONL files in dir in one transaction. Records keep
their Ids. Malformed lines and records that break a constraint are skipped
and counted in the printed report.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, store *sqlite.Backend) error {
				report, err := store.Import(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, report)
			})
		},
	}
}
