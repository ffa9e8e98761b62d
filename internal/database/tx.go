// internal/database/tx.go
//
// Transaction helper.
//
// Context
// -------
// Every website or section write and its activity-log entry must commit
// together.  Services wrap both statements in WithTx so a failure anywhere
// rolls back the whole unit, and a panic inside fn still releases the
// connection before re-panicking.
//
// Store functions accept sqlx.ExtContext, so the same code runs against
// the pool (*sqlx.DB) for reads and against *sqlx.Tx inside WithTx.
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// WithTx runs fn inside a READ COMMITTED transaction.  fn's error is
// returned unchanged so callers can still errors.Is against sentinels.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
