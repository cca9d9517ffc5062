package db

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// RowSource yields raw rows per logical table.
type RowSource interface {
	// Columns returns the column names of a table.
	Columns(ctx context.Context, table string) ([]string, error)
	// Scan calls fn for every row of a table, in source order.
	Scan(ctx context.Context, table string, fn func(Row) error) error
}

// columnIndex maps lowercase column names to value positions.
type columnIndex map[string]int

func newColumnIndex(columns []string) columnIndex {
	idx := make(columnIndex, len(columns))
	for i, col := range columns {
		idx[strings.ToLower(col)] = i
	}
	return idx
}

// Row is a name-addressable record from a RowSource.
type Row struct {
	table  string
	index  columnIndex
	values []any
}

// NewRow builds a Row. Values are matched to columns by position.
func NewRow(table string, columns []string, values []any) Row {
	return Row{table: table, index: newColumnIndex(columns), values: values}
}

// Has reports whether the row carries a column.
func (r Row) Has(col string) bool {
	_, ok := r.index[strings.ToLower(col)]
	return ok
}

// Value returns the raw value of a column.
func (r Row) Value(col string) (any, error) {
	i, ok := r.index[strings.ToLower(col)]
	if !ok || i >= len(r.values) {
		return nil, &MissingColumnError{Table: r.table, Column: col}
	}
	return r.values[i], nil
}

// Int64 reads an integer column. NULL reads as 0.
func (r Row) Int64(col string) (int64, error) {
	v, err := r.Value(col)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case float64:
		if n == math.Trunc(n) {
			return int64(n), nil
		}
	}
	return 0, &ColumnTypeError{Table: r.table, Column: col, Want: "integer", Value: v}
}

// Bool reads an integer flag column.
func (r Row) Bool(col string) (bool, error) {
	n, err := r.Int64(col)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

// NullString reads a text column, returning nil for NULL.
func (r Row) NullString(col string) (*string, error) {
	v, err := r.Value(col)
	if err != nil {
		return nil, err
	}
	switch s := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &s, nil
	case []byte:
		str := string(s)
		return &str, nil
	}
	return nil, &ColumnTypeError{Table: r.table, Column: col, Want: "text", Value: v}
}

// String reads a text column, returning "" for NULL.
func (r Row) String(col string) (string, error) {
	s, err := r.NullString(col)
	if err != nil || s == nil {
		return "", err
	}
	return *s, nil
}

// OptionalString reads a text column that older stores may not carry.
func (r Row) OptionalString(col string) (*string, error) {
	if !r.Has(col) {
		return nil, nil
	}
	return r.NullString(col)
}

// MemorySource is an in-memory RowSource.
type MemorySource struct {
	tables map[string]*memTable
}

type memTable struct {
	columns []string
	rows    [][]any
}

// NewMemorySource creates an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{tables: map[string]*memTable{}}
}

// AddTable declares a table and its columns. Redeclaring resets the table.
func (m *MemorySource) AddTable(table string, columns ...string) {
	m.tables[table] = &memTable{columns: append([]string(nil), columns...)}
}

// Insert appends a row to a declared table.
func (m *MemorySource) Insert(table string, values ...any) error {
	t, ok := m.tables[table]
	if !ok {
		return &MissingTableError{Table: table}
	}
	if len(values) != len(t.columns) {
		return fmt.Errorf("insert into %s: %d values for %d columns", table, len(values), len(t.columns))
	}
	t.rows = append(t.rows, append([]any(nil), values...))
	return nil
}

// Columns implements RowSource.
func (m *MemorySource) Columns(ctx context.Context, table string) ([]string, error) {
	t, ok := m.tables[table]
	if !ok {
		return nil, &MissingTableError{Table: table}
	}
	return append([]string(nil), t.columns...), nil
}

// Scan implements RowSource.
func (m *MemorySource) Scan(ctx context.Context, table string, fn func(Row) error) error {
	t, ok := m.tables[table]
	if !ok {
		return &MissingTableError{Table: table}
	}
	index := newColumnIndex(t.columns)
	for _, values := range t.rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(Row{table: table, index: index, values: values}); err != nil {
			return err
		}
	}
	return nil
}
