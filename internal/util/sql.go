package util

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

type TransactionCallback func(*sqlx.Tx) error

// Transaction runs cb inside a transaction bound to ctx. The transaction is
// committed if cb returns nil and rolled back otherwise, including when cb
// panics.
func Transaction(ctx context.Context, db *sqlx.DB, cb TransactionCallback) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := cb(tx); err != nil {
		if err2 := tx.Rollback(); err2 != nil {
			return fmt.Errorf("rollback error: %s\noriginal error: %w", err2, err)
		}

		return err
	}

	return tx.Commit()
}

// IsUniqueViolation reports whether err comes from a UNIQUE or PRIMARY KEY
// constraint failing.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// IsTransient reports whether err is worth retrying later: the database was
// busy or locked, or the context ran out of time while querying it.
func IsTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	return sqliteErr.Code == sqlite3.ErrBusy ||
		sqliteErr.Code == sqlite3.ErrLocked ||
		sqliteErr.Code == sqlite3.ErrInterrupt
}
