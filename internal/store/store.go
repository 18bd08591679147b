// Package store is the Postgres record store for sales, agents and sale
// status history. Queries run against either the shared pool or a
// transaction through the DBTX interface; uniqueness on sale.nmi_mirn,
// agent.sidn and agent.lumo_name is enforced by the database and surfaced as
// ErrDuplicateKey.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no record matched the lookup.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey indicates a unique constraint violation on insert.
	ErrDuplicateKey = errors.New("duplicate key")
)

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Queries bundles all record operations over a pool or transaction.
type Queries struct {
	db DBTX
}

// New creates Queries bound to the given pool or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Store is the application record store backed by a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
	*Queries
}

// NewStore creates a Store over the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, Queries: New(pool)}
}

// Tx is a single unit of work. Callers must Commit or Rollback; Rollback
// after Commit is a no-op, so it is safe to defer.
type Tx struct {
	tx pgx.Tx
	*Queries
}

// Begin starts a unit of work.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{tx: tx, Queries: New(tx)}, nil
}

// Commit commits the unit of work.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback aborts the unit of work. Safe to call after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

// mapError translates driver errors into the store's error taxonomy.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, ErrDuplicateKey)
	}
	return err
}

/* ----------------------------------------
	pgtype helpers
---------------------------------------- */

func toPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func toPgNullUUID(id uuid.NullUUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id.UUID, Valid: id.Valid}
}

func fromPgUUID(p pgtype.UUID) uuid.UUID {
	return uuid.UUID(p.Bytes)
}

func fromPgNullUUID(p pgtype.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: uuid.UUID(p.Bytes), Valid: p.Valid}
}

func toPgDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

func fromPgDate(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func toPgFloat(f *float64) pgtype.Float8 {
	if f == nil {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: *f, Valid: true}
}

func fromPgFloat(f pgtype.Float8) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
