// Package store implements the core transaction boundary on PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/edvin/crisisdesk/internal/core"
)

// PostgreSQL error codes the store translates into core errors.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// DB is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Beginner starts transactions. *pgxpool.Pool satisfies it.
type Beginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Store runs every core transaction at SERIALIZABLE isolation.
type Store struct {
	pool Beginner
	opts pgx.TxOptions
}

func New(pool Beginner) *Store {
	return &Store{
		pool: pool,
		opts: pgx.TxOptions{IsoLevel: pgx.Serializable},
	}
}

// InTx implements core.TxRunner.
func (s *Store) InTx(ctx context.Context, fn func(tx core.Tx) error) error {
	err := pgx.BeginTxFunc(ctx, s.pool, s.opts, func(tx pgx.Tx) error {
		return fn(NewQueries(tx))
	})
	return mapError(err)
}

// mapError turns serialization failures raised anywhere in the transaction,
// including at commit, into core.ErrConflict.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			if errors.Is(err, core.ErrConflict) {
				return err
			}
			return fmt.Errorf("%w: %w", core.ErrConflict, err)
		}
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// notFound maps pgx.ErrNoRows to core.ErrNotFound and wraps anything else.
func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, core.ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", what, err)
}

// Queries implements core.Tx on top of any DB, normally a pgx.Tx.
type Queries struct {
	db DB
}

func NewQueries(db DB) *Queries {
	return &Queries{db: db}
}

var _ core.Tx = (*Queries)(nil)
var _ core.TxRunner = (*Store)(nil)
