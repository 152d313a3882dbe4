package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the part of pgxpool.Pool and pgx.Tx the repositories need, so the same
// repository code runs either on the pool or inside a unit of work.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db querier
}

// isUniqueViolation reports whether err is a Postgres unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// notFoundOr maps pgx.ErrNoRows to notFound and wraps anything else with msg.
func notFoundOr(err error, notFound error, msg string, args ...any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return fmt.Errorf(msg+": %w", append(args, err)...)
}

// exactlyOne turns a zero row write into notFound.
func exactlyOne(tag pgconn.CommandTag, err error, notFound error, msg string, args ...any) error {
	if err != nil {
		return fmt.Errorf(msg+": %w", append(args, err)...)
	}
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}

// rollback ends tx unless it already finished. A failed rollback is a persistence failure.
func rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewPersistenceError("failed to rollback transaction", err)
	}
	return nil
}
