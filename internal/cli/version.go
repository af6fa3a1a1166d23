package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/workbench/pkg/workbench"
)

const modulePath = "github.com/mesh-intelligence/workbench"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the workbench version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "workbench v%s\nmodule: %s\n", workbench.Version, modulePath)
			return nil
		},
	}
}
