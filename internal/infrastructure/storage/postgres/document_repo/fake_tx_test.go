package document_repo

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"fishledger/internal/infrastructure/storage/postgres"
)

// statement is one SQL call seen by recordingTx.
type statement struct {
	sql  string
	args []any
}

// result is a scripted answer to Query.
type result struct {
	columns []string
	rows    [][]any
}

// recordingTx is a pgx.Tx that records every statement in order and answers
// queries from a script. Methods not overridden panic through the nil embed.
type recordingTx struct {
	pgx.Tx

	statements []statement
	copies     []copyCall

	results []result
	execTag pgconn.CommandTag
	execErr error
}

type copyCall struct {
	table   string
	columns []string
	rows    int
}

func newRecordingTx(results ...result) *recordingTx {
	return &recordingTx{results: results, execTag: pgconn.NewCommandTag("UPDATE 1")}
}

// ctx returns a context carrying the transaction and a repo manager to go with it.
func (t *recordingTx) ctx() (context.Context, *postgres.TxManager) {
	return postgres.WithTx(context.Background(), t), new(postgres.TxManager)
}

func (t *recordingTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.statements = append(t.statements, statement{sql: sql, args: args})
	return t.execTag, t.execErr
}

func (t *recordingTx) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	t.statements = append(t.statements, statement{sql: sql, args: args})
	if len(t.results) == 0 {
		return &scriptedRows{}, nil
	}
	next := t.results[0]
	t.results = t.results[1:]
	return &scriptedRows{result: next}, nil
}

func (t *recordingTx) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	n := 0
	for src.Next() {
		n++
	}
	t.copies = append(t.copies, copyCall{table: table[len(table)-1], columns: columns, rows: n})
	return int64(n), nil
}

func (t *recordingTx) sql() []string {
	out := make([]string, len(t.statements))
	for i, s := range t.statements {
		out[i] = s.sql
	}
	return out
}

// scriptedRows serves one result set to pgxscan.
type scriptedRows struct {
	result
	pos int
}

func (r *scriptedRows) Close()                        {}
func (r *scriptedRows) Err() error                    { return nil }
func (r *scriptedRows) CommandTag() pgconn.CommandTag { return pgconn.NewCommandTag("SELECT") }
func (r *scriptedRows) Conn() *pgx.Conn               { return nil }
func (r *scriptedRows) RawValues() [][]byte           { return nil }

func (r *scriptedRows) FieldDescriptions() []pgconn.FieldDescription {
	fields := make([]pgconn.FieldDescription, len(r.columns))
	for i, c := range r.columns {
		fields[i] = pgconn.FieldDescription{Name: c}
	}
	return fields
}

func (r *scriptedRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *scriptedRows) Values() ([]any, error) {
	return r.rows[r.pos-1], nil
}

func (r *scriptedRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if row[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(row[i]))
	}
	return nil
}
