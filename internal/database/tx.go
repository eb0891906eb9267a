package database

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// WithTx runs fn inside a single transaction.
//
// Every mutating service operation goes through this wrapper so that the
// authorization reads and the mutation (including cascades) observe the same
// snapshot and commit or roll back together. On any error from fn the
// transaction is rolled back before the error is returned; on success the
// transaction is committed. The deferred rollback guarantees the pooled
// connection is released on every exit path, a panic inside fn included;
// after a successful commit it is a no-op.
//
// There are no automatic retries: a constraint violation, lost connection or
// authorization failure surfaces immediately and retry is the caller's
// responsibility.
func WithTx(ctx context.Context, db DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
