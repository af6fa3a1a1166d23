package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// withTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise, so multi-row work such as a cascade
// is all-or-nothing.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	return runTx(ctx, db, nil, fn)
}

// withReadTx runs fn inside a read-only transaction. The driver begins it
// deferred instead of immediate, so it reads one consistent snapshot
// without taking the write lock.
func withReadTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	return runTx(ctx, db, &sql.TxOptions{ReadOnly: true}, fn)
}

func runTx(ctx context.Context, db *sqlx.DB, opts *sql.TxOptions, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
