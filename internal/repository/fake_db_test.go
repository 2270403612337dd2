package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type call struct {
	sql  string
	args []any
}

// fakeDB отдаёт заранее заданные ответы и запоминает запросы.
type fakeDB struct {
	calls []call

	execTag pgconn.CommandTag
	execErr error

	row  func(dest ...any) error
	qErr error

	// Каждый Query забирает следующий набор строк.
	rowSets [][][]any
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.calls = append(f.calls, call{sql: sql, args: args})
	return f.execTag, f.execErr
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.calls = append(f.calls, call{sql: sql, args: args})
	if f.qErr != nil {
		return nil, f.qErr
	}
	var data [][]any
	if len(f.rowSets) > 0 {
		data, f.rowSets = f.rowSets[0], f.rowSets[1:]
	}
	return &fakeRows{data: data, idx: -1}, nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.calls = append(f.calls, call{sql: sql, args: args})
	return fakeRow{scan: f.row}
}

func (f *fakeDB) last() call {
	return f.calls[len(f.calls)-1]
}

func (f *fakeDB) lastSQL() string {
	return strings.Join(strings.Fields(f.last().sql), " ")
}

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

type fakeRows struct {
	data [][]any
	idx  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.data[r.idx], nil }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.data)
}

// Scan поддерживает только те типы, что встречаются в тестах.
func (r *fakeRows) Scan(dest ...any) error {
	return assign(dest, r.data[r.idx])
}
