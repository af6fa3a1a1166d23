// Package cli implements the workbench command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/workbench/pkg/types"
	"github.com/mesh-intelligence/workbench/pkg/workbench"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// options holds global flag values shared by all subcommands.
type options struct {
	configDir string
	dataDir   string
	logLevel  string
}

// NewRootCmd creates the top-level "workbench" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "workbench",
		Short: "A relational store for crafting recipes",
		Long: "Workbench stores craft types, items, recipes and the ingredient amounts\n" +
			"that tie them together, keeping their references consistent.",
		Version: workbench.Version,
		// Errors are printed once by Execute, without usage.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/workbench)")
	pf.StringVar(&opts.dataDir, "data-dir", "", "data directory (default: $(CWD)/.workbench-db)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (default: warn)")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(opts),
		newGetCmd(opts),
		newCreateCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
		newListCmd(opts),
		newRecipesCmd(opts),
		newIngredientsCmd(opts),
		newAmountsCmd(opts),
		newIngredientCmd(opts),
		newShowCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}

// exitError attaches an exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// sysError marks err as a system failure (exit code 2).
func sysError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

// exitCode maps a command error to the process exit code. Errors without
// an explicit code are user errors: bad arguments, unknown tables, rejected
// writes.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// isUserError reports whether err is the caller's fault rather than the
// system's.
func isUserError(err error) bool {
	for _, target := range []error{
		types.ErrNotFound,
		types.ErrConstraintViolation,
		types.ErrInvalidID,
		types.ErrInvalidData,
		types.ErrInvalidFilter,
		types.ErrTableNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
