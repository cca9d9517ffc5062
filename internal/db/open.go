package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteSource reads a message store through database/sql.
type SQLiteSource struct {
	db   *sql.DB
	path string
}

// OpenSource opens a message store read-only. The caller must Close it.
func OpenSource(path string) (*SQLiteSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("database file %s does not exist", path)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("database path %s is a directory", path)
	}

	dsn := (&url.URL{Scheme: "file", Path: abs, RawQuery: "mode=ro"}).String()
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA query_only = ON"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	src := NewSQLiteSource(conn)
	src.path = abs
	return src, nil
}

// NewSQLiteSource wraps a connection the caller already holds, such as a
// fixture database in tests. Path is empty and Close closes conn.
func NewSQLiteSource(conn *sql.DB) *SQLiteSource {
	return &SQLiteSource{db: conn}
}

// Path returns the absolute path of the store, if opened from disk.
func (s *SQLiteSource) Path() string {
	return s.path
}

// Close releases the connection.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func (s *SQLiteSource) tableExists(ctx context.Context, table string) (bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type='table' AND name=?
	`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLiteSource) query(ctx context.Context, table, suffix string) (*sql.Rows, error) {
	if !isKnownTable(table) {
		return nil, fmt.Errorf("unknown table %q", table)
	}
	exists, err := s.tableExists(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", table, err)
	}
	if !exists {
		return nil, &MissingTableError{Table: table}
	}
	return s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s%s", quoteIdent(table), suffix))
}

// Columns implements RowSource.
func (s *SQLiteSource) Columns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.query(ctx, table, " LIMIT 0")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return rows.Columns()
}

// Scan implements RowSource. Rows are read in rowid order, which for join
// tables is insertion order.
func (s *SQLiteSource) Scan(ctx context.Context, table string, fn func(Row) error) error {
	rows, err := s.query(ctx, table, " ORDER BY rowid")
	if err != nil {
		return err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	index := newColumnIndex(columns)

	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scan %s: %w", table, err)
		}
		if err := fn(Row{table: table, index: index, values: values}); err != nil {
			return err
		}
	}
	return rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
