package types

import (
	"context"
	"errors"
	"iter"
)

// Entity is the set of record types a Table can hold.
type Entity interface {
	CraftType | Item | Recipe | ItemWithAmount
}

// Table provides uniform CRUD operations for a single entity type.
type Table[T Entity] interface {
	// Name returns the storage table name (e.g. "Items").
	Name() string

	// Create inserts a new row. A zero Id asks the store to assign one; a
	// non-zero Id is used as given and must be unused. Returns the persisted
	// record. Returns ErrConstraintViolation if a referenced row is missing
	// or the Id is taken.
	Create(ctx context.Context, rec *T) (*T, error)

	// Get retrieves the record with the given Id.
	// Returns ErrNotFound if no record exists with that Id.
	Get(ctx context.Context, id int64) (*T, error)

	// List returns the records matching filter in ascending Id order. The
	// sequence is lazy and restartable: every range runs the query again.
	// A nil or empty filter matches every record.
	List(ctx context.Context, filter Filter) iter.Seq2[*T, error]

	// Update replaces the row with the given Id. The Id field of rec is
	// overwritten with id.
	// Returns ErrNotFound if absent, ErrConstraintViolation if a reference
	// would break.
	Update(ctx context.Context, id int64, rec *T) (*T, error)

	// Delete removes the row with the given Id, applying the table's
	// referential rules. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id int64) error
}

// Table operation errors.
var (
	ErrNotFound            = errors.New("entity not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrInvalidID           = errors.New("invalid entity ID")
	ErrInvalidData         = errors.New("invalid entity data")
	ErrInvalidFilter       = errors.New("invalid filter")
)
