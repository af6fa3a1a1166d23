package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/workbench/internal/sqlite"
)

// withStore resolves the configuration, attaches a SQLite backend and runs
// fn against it. The backend is detached when fn returns. Errors from fn
// that are not the caller's fault exit with the system error code.
func withStore(cmd *cobra.Command, opts *options, fn func(ctx context.Context, store *sqlite.Backend) error) error {
	s, err := loadSettings(opts)
	if err != nil {
		return sysError(err)
	}
	logger, err := newLogger(s.logLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer logger.Sync()

	store := sqlite.NewBackend(sqlite.WithLogger(logger))
	if err := store.Attach(s.store); err != nil {
		return sysError(fmt.Errorf("attach store: %w", err))
	}
	defer store.Detach()

	if err := fn(cmd.Context(), store); err != nil {
		if isUserError(err) {
			return err
		}
		return sysError(err)
	}
	return nil
}
