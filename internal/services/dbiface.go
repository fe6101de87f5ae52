package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Row interface {
	Scan(dest ...any) error
}

// Rows is satisfied by pgx.Rows as well as the test fakes.
type Rows interface {
	Close()
	Err() error
	Next() bool
	Scan(dest ...any) error
}

type CommandTag interface {
	RowsAffected() int64
}

// DBConn is the query surface shared by the pool and snapshot transactions.
type DBConn interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

type Tx interface {
	DBConn
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DB is a DBConn that can also open read-only snapshots. Every read inside a
// snapshot sees the same committed state, which is what page renders need.
type DB interface {
	DBConn
	BeginSnapshot(ctx context.Context) (Tx, error)
}

var snapshotOptions = pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxBeginner interface {
	pgxQuerier
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// PoolAdapter exposes a pgx pool through DB.
type PoolAdapter struct {
	conn
	pool pgxBeginner
}

func NewPoolAdapter(pool *pgxpool.Pool) *PoolAdapter {
	return newPoolAdapter(pool)
}

func newPoolAdapter(pool pgxBeginner) *PoolAdapter {
	return &PoolAdapter{conn: conn{q: pool}, pool: pool}
}

func (p *PoolAdapter) BeginSnapshot(ctx context.Context) (Tx, error) {
	tx, err := p.pool.BeginTx(ctx, snapshotOptions)
	if err != nil {
		return nil, err
	}
	return &snapshotTx{conn: conn{q: tx}, tx: tx}, nil
}

// conn converts pgx result types to the package interfaces. pgx.Rows and
// pgconn.CommandTag already satisfy them, so only the static types change.
type conn struct {
	q pgxQuerier
}

func (c conn) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return c.q.Exec(ctx, sql, args...)
}

func (c conn) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rows, err := c.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c conn) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return c.q.QueryRow(ctx, sql, args...)
}

type snapshotTx struct {
	conn
	tx pgx.Tx
}

func (t *snapshotTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *snapshotTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
