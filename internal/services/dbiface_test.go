package services

import (
	"context"
	"fmt"
	"reflect"
)

type fakeCommandTag struct {
	rowsAffected int64
}

func (f fakeCommandTag) RowsAffected() int64 {
	return f.rowsAffected
}

type fakeRow struct {
	scanFunc func(dest ...any) error
}

func (f fakeRow) Scan(dest ...any) error {
	if f.scanFunc == nil {
		return fmt.Errorf("scanFunc not set")
	}
	return f.scanFunc(dest...)
}

func rowFromValues(values ...any) Row {
	return fakeRow{scanFunc: func(dest ...any) error {
		return assignRow(dest, values)
	}}
}

func errRow(err error) Row {
	return fakeRow{scanFunc: func(dest ...any) error {
		return err
	}}
}

// fakeRows replays rows through assignRow, one Scan per Next.
type fakeRows struct {
	rows   [][]any
	idx    int
	err    error
	closed bool
}

func (f *fakeRows) Close()     { f.closed = true }
func (f *fakeRows) Err() error { return f.err }

func (f *fakeRows) Next() bool {
	if f.idx >= len(f.rows) {
		return false
	}
	f.idx++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	if f.idx == 0 || f.idx > len(f.rows) {
		return fmt.Errorf("scan called without active row")
	}
	return assignRow(dest, f.rows[f.idx-1])
}

type execFunc func(ctx context.Context, sql string, args ...any) (CommandTag, error)
type queryFunc func(ctx context.Context, sql string, args ...any) (Rows, error)
type queryRowFunc func(ctx context.Context, sql string, args ...any) Row

func runExec(fn execFunc, ctx context.Context, sql string, args []any) (CommandTag, error) {
	if fn == nil {
		return fakeCommandTag{}, nil
	}
	return fn(ctx, sql, args...)
}

func runQuery(fn queryFunc, ctx context.Context, sql string, args []any) (Rows, error) {
	if fn == nil {
		return &fakeRows{}, nil
	}
	return fn(ctx, sql, args...)
}

func runQueryRow(fn queryRowFunc, ctx context.Context, sql string, args []any) Row {
	if fn == nil {
		return errRow(fmt.Errorf("unexpected QueryRow: %s", sql))
	}
	return fn(ctx, sql, args...)
}

type fakeDB struct {
	ExecFunc     execFunc
	QueryFunc    queryFunc
	QueryRowFunc queryRowFunc
	SnapshotFunc func(ctx context.Context) (Tx, error)
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return runExec(f.ExecFunc, ctx, sql, args)
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return runQuery(f.QueryFunc, ctx, sql, args)
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return runQueryRow(f.QueryRowFunc, ctx, sql, args)
}

func (f *fakeDB) BeginSnapshot(ctx context.Context) (Tx, error) {
	if f.SnapshotFunc == nil {
		return nil, fmt.Errorf("snapshotFunc not set")
	}
	return f.SnapshotFunc(ctx)
}

type fakeTx struct {
	ExecFunc     execFunc
	QueryFunc    queryFunc
	QueryRowFunc queryRowFunc
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (f *fakeTx) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return runExec(f.ExecFunc, ctx, sql, args)
}

func (f *fakeTx) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return runQuery(f.QueryFunc, ctx, sql, args)
}

func (f *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return runQueryRow(f.QueryRowFunc, ctx, sql, args)
}

func (f *fakeTx) Commit(ctx context.Context) error {
	if f.CommitFunc == nil {
		return nil
	}
	return f.CommitFunc(ctx)
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	if f.RollbackFunc == nil {
		return nil
	}
	return f.RollbackFunc(ctx)
}

// assignRow copies values into scan destinations, converting where the types
// allow it (int64 counts into int fields, for example).
func assignRow(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan dest mismatch: got %d want %d", len(dest), len(values))
	}
	for i, value := range values {
		dv := reflect.ValueOf(dest[i])
		if dv.Kind() != reflect.Ptr || dv.IsNil() {
			return fmt.Errorf("dest %d not pointer", i)
		}
		target := dv.Elem()
		if value == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		vv := reflect.ValueOf(value)
		switch {
		case vv.Type().AssignableTo(target.Type()):
			target.Set(vv)
		case vv.Type().ConvertibleTo(target.Type()):
			target.Set(vv.Convert(target.Type()))
		default:
			return fmt.Errorf("cannot assign %T to %s", value, target.Type())
		}
	}
	return nil
}
