// Package sqlite provides the public API for the SQLite workbench backend.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/workbench/internal/sqlite"
	"github.com/mesh-intelligence/workbench/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
// A nil logger discards log output.
//
// Example:
//
//	store := sqlite.NewBackend(logger)
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".workbench-db",
//	})
//	defer store.Detach()
func NewBackend(logger *zap.Logger) types.Store {
	return sqlite.NewBackend(sqlite.WithLogger(logger))
}
