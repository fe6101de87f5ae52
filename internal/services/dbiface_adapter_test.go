package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakePgxRow struct {
	values []any
}

func (f fakePgxRow) Scan(dest ...any) error {
	return assignRow(dest, f.values)
}

// fakePgxRows and fakePgxTx embed the pgx interfaces so only the methods the
// adapter calls need bodies.
type fakePgxRows struct {
	pgx.Rows
	rows fakeRows
}

func (f *fakePgxRows) Close()                 { f.rows.Close() }
func (f *fakePgxRows) Err() error             { return f.rows.Err() }
func (f *fakePgxRows) Next() bool             { return f.rows.Next() }
func (f *fakePgxRows) Scan(dest ...any) error { return f.rows.Scan(dest...) }

type fakePgxConn struct {
	tag   string
	rows  [][]any
	row   []any
	query error
}

func (f *fakePgxConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(f.tag), nil
}

func (f *fakePgxConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if f.query != nil {
		return nil, f.query
	}
	return &fakePgxRows{rows: fakeRows{rows: f.rows}}, nil
}

func (f *fakePgxConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return fakePgxRow{values: f.row}
}

type fakePgxTx struct {
	pgx.Tx
	fakePgxConn
	committed  bool
	rolledBack bool
}

func (f *fakePgxTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return f.fakePgxConn.Exec(ctx, sql, args...)
}

func (f *fakePgxTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return f.fakePgxConn.Query(ctx, sql, args...)
}

func (f *fakePgxTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return f.fakePgxConn.QueryRow(ctx, sql, args...)
}

func (f *fakePgxTx) Commit(ctx context.Context) error {
	f.committed = true
	return nil
}

func (f *fakePgxTx) Rollback(ctx context.Context) error {
	f.rolledBack = true
	return nil
}

type fakePgxPool struct {
	fakePgxConn
	tx       *fakePgxTx
	beginErr error
	opts     pgx.TxOptions
}

func (f *fakePgxPool) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	f.opts = opts
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f.tx, nil
}

func TestPoolAdapter_Conn(t *testing.T) {
	ctx := context.Background()
	adapter := newPoolAdapter(&fakePgxPool{fakePgxConn: fakePgxConn{
		tag:  "DELETE 3",
		rows: [][]any{{"like"}, {"favorite"}},
		row:  []any{"combo"},
	}})

	tag, err := adapter.Exec(ctx, "DELETE FROM likes")
	if err != nil || tag.RowsAffected() != 3 {
		t.Fatalf("expected 3 rows affected, got %v %v", tag, err)
	}

	rows, err := adapter.Query(ctx, "SELECT kind")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var kinds []string
	for rows.Next() {
		var kind string
		if err := rows.Scan(&kind); err != nil {
			t.Fatalf("scan: %v", err)
		}
		kinds = append(kinds, kind)
	}
	rows.Close()
	if len(kinds) != 2 || kinds[1] != "favorite" {
		t.Fatalf("unexpected rows %v", kinds)
	}

	var slug string
	if err := adapter.QueryRow(ctx, "SELECT slug").Scan(&slug); err != nil || slug != "combo" {
		t.Fatalf("unexpected row %q %v", slug, err)
	}
}

func TestPoolAdapter_QueryErrorReturnsNilRows(t *testing.T) {
	adapter := newPoolAdapter(&fakePgxPool{fakePgxConn: fakePgxConn{query: errors.New("boom")}})
	rows, err := adapter.Query(context.Background(), "SELECT 1")
	if err == nil || rows != nil {
		t.Fatalf("expected nil rows and error, got %v %v", rows, err)
	}
}

func TestPoolAdapter_BeginSnapshot(t *testing.T) {
	ctx := context.Background()
	pgxTx := &fakePgxTx{fakePgxConn: fakePgxConn{row: []any{"inside"}}}
	pool := &fakePgxPool{tx: pgxTx}

	tx, err := newPoolAdapter(pool).BeginSnapshot(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.opts.IsoLevel != pgx.RepeatableRead || pool.opts.AccessMode != pgx.ReadOnly {
		t.Fatalf("expected read-only repeatable read, got %+v", pool.opts)
	}

	var got string
	if err := tx.QueryRow(ctx, "SELECT x").Scan(&got); err != nil || got != "inside" {
		t.Fatalf("expected query to run on the transaction, got %q %v", got, err)
	}
	if err := tx.Commit(ctx); err != nil || !pgxTx.committed {
		t.Fatalf("expected commit, got %v", err)
	}
	if err := tx.Rollback(ctx); err != nil || !pgxTx.rolledBack {
		t.Fatalf("expected rollback, got %v", err)
	}
}

func TestPoolAdapter_BeginSnapshotError(t *testing.T) {
	pool := &fakePgxPool{beginErr: errors.New("no conns")}
	if _, err := newPoolAdapter(pool).BeginSnapshot(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewPoolAdapter_CanBeConstructed(t *testing.T) {
	if NewPoolAdapter(nil) == nil {
		t.Fatal("expected adapter")
	}
}
