package sqlite

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/workbench/pkg/types"
)

// unavailableCodes are primary SQLite result codes that mean the store
// cannot serve the request at all, as opposed to rejecting it.
var unavailableCodes = map[int]bool{
	sqlite3.SQLITE_BUSY:     true,
	sqlite3.SQLITE_LOCKED:   true,
	sqlite3.SQLITE_CANTOPEN: true,
	sqlite3.SQLITE_IOERR:    true,
	sqlite3.SQLITE_NOTADB:   true,
	sqlite3.SQLITE_FULL:     true,
	sqlite3.SQLITE_READONLY: true,
	sqlite3.SQLITE_CORRUPT:  true,
}

// classify maps a driver error onto the types error taxonomy. The original
// error stays in the chain, so both the sentinel and the driver detail are
// visible to callers. Errors that already carry a sentinel, and errors that
// fit no category, are returned with only the operation prefix.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrConstraintViolation),
		errors.Is(err, types.ErrStorageUnavailable),
		errors.Is(err, types.ErrStoreDetached):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, types.ErrNotFound)
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone):
		return fmt.Errorf("%s: %w: %w", op, types.ErrStorageUnavailable, err)
	}

	var se *msqlite.Error
	if errors.As(err, &se) {
		primary := se.Code() & 0xff
		if primary == sqlite3.SQLITE_CONSTRAINT {
			return fmt.Errorf("%s: %w: %w", op, types.ErrConstraintViolation, err)
		}
		if unavailableCodes[primary] {
			return fmt.Errorf("%s: %w: %w", op, types.ErrStorageUnavailable, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isUserError reports whether err rejects the request, as opposed to the
// store failing to serve it.
func isUserError(err error) bool {
	return errors.Is(err, types.ErrNotFound) ||
		errors.Is(err, types.ErrConstraintViolation) ||
		errors.Is(err, types.ErrInvalidFilter) ||
		errors.Is(err, types.ErrInvalidID) ||
		errors.Is(err, types.ErrInvalidData)
}
