package types

import "errors"

// Store defines the interface for backend-agnostic storage access.
// Callers attach to a backend, work with the typed tables and the resolver,
// and detach when done.
type Store interface {
	Resolver

	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist and brings the schema up to
	// date. Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, table operations return ErrStoreDetached.
	Detach() error

	CraftTypes() Table[CraftType]
	Items() Table[Item]
	Recipes() Table[Recipe]
	ItemsWithAmount() Table[ItemWithAmount]
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrTableNotFound   = errors.New("table not found")
)
