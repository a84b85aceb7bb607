package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Beginner starts a transaction. A pgx.Tx also satisfies it, in which case
// Begin opens a savepoint.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTx runs fn as one unit of work: begin, run, commit when fn returns nil,
// roll back on error or panic.
func WithTx(ctx context.Context, db Beginner, fn func(tx pgx.Tx) error) error {
	_, err := WithTxValue(ctx, db, func(tx pgx.Tx) (struct{}, error) {
		return struct{}{}, fn(tx)
	})
	return err
}

// WithTxValue is WithTx for units of work that produce a value.
func WithTxValue[T any](ctx context.Context, db Beginner, fn func(tx pgx.Tx) (T, error)) (_ T, txErr error) {
	var zero T

	tx, err := db.Begin(ctx)
	if err != nil {
		return zero, fmt.Errorf("db.Begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if txErr != nil {
			rollbackErr := tx.Rollback(ctx)
			if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	result, err := fn(tx)
	if err != nil {
		return zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, fmt.Errorf("tx.Commit: %w", err)
	}

	return result, nil
}

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation,
// optionally restricted to the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
