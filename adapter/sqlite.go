package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"unicode"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is an Adapter backed by database/sql and go-sqlite3. SQLite
// accepts the same $n placeholders, quoting and RETURNING clause as
// PostgreSQL.
type SQLite struct {
	mu         sync.RWMutex
	db         *sql.DB
	driverName string
}

// NewSQLite creates a disconnected SQLite adapter.
func NewSQLite() *SQLite {
	return &SQLite{driverName: "sqlite3"}
}

// NewSQLiteDB wraps an already open database. The adapter reports itself
// connected and closes db on Disconnect.
func NewSQLiteDB(db *sql.DB) *SQLite {
	return &SQLite{db: db, driverName: "sqlite3"}
}

// Connect opens the database file named by cfg and pings it.
func (a *SQLite) Connect(ctx context.Context, cfg Config) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}

	path := cfg.SQLitePath()
	if path == "" {
		return fmt.Errorf("%w: sqlite database path is empty", ErrConnectionFailed)
	}

	db, err := sql.Open(a.driverName, path)
	if err != nil {
		return fmt.Errorf("%w: failed to open database: %w", ErrConnectionFailed, err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: failed to ping database: %w", ErrConnectionFailed, err)
	}

	a.db = db
	return nil
}

// Disconnect closes the database.
func (a *SQLite) Disconnect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// IsConnected reports whether a database is open.
func (a *SQLite) IsConnected() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.db != nil
}

// DB returns the underlying database, nil when disconnected.
func (a *SQLite) DB() *sql.DB {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.db
}

// Query runs one statement. Statements producing a result set are read
// through QueryContext; the rest run through ExecContext so that RowCount
// carries the number of affected rows.
func (a *SQLite) Query(ctx context.Context, query string, params []any) (*Result, error) {
	db := a.DB()
	if db == nil {
		return nil, ErrNotConnected
	}

	if !returnsRows(query) {
		res, err := db.ExecContext(ctx, query, params...)
		if err != nil {
			return nil, &QueryError{SQL: query, Err: err}
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, &QueryError{SQL: query, Err: err}
		}
		return &Result{RowCount: n}, nil
	}

	rows, err := db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	defer rows.Close()

	out, fields, err := scanRows(rows)
	if err != nil {
		return nil, &QueryError{SQL: query, Err: err}
	}
	return &Result{Rows: out, RowCount: int64(len(out)), Fields: fields}, nil
}

func scanRows(rows *sql.Rows) ([]Row, []Field, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, nil, err
	}
	fields := make([]Field, len(types))
	for i, ct := range types {
		fields[i] = Field{Name: ct.Name(), TypeName: ct.DatabaseTypeName()}
	}

	var out []Row
	values := make([]any, len(fields))
	dest := make([]any, len(fields))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, err
		}
		row := make(Row, len(fields))
		for i, f := range fields {
			row[f.Name] = values[i]
		}
		out = append(out, row)
	}
	return out, fields, rows.Err()
}

func returnsRows(query string) bool {
	s := strings.ToUpper(strings.TrimSpace(query))
	for _, prefix := range []string{"SELECT", "WITH", "PRAGMA", "VALUES", "EXPLAIN"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return hasKeyword(s, "RETURNING")
}

// hasKeyword reports whether kw appears as a whole word in the upper-cased
// statement s, outside quoted identifiers and string literals.
func hasKeyword(s, kw string) bool {
	var b strings.Builder
	var quote rune
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			r = ' '
		case r == '"' || r == '\'' || r == '`':
			quote = r
			r = ' '
		}
		b.WriteRune(r)
	}
	words := strings.FieldsFunc(b.String(), func(r rune) bool {
		return !(r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	for _, w := range words {
		if w == kw {
			return true
		}
	}
	return false
}

// CreateTable creates table if it does not exist.
func (a *SQLite) CreateTable(ctx context.Context, table string, columns []ColumnSpec) error {
	_, err := a.Query(ctx, createTableSQL(table, columns), nil)
	return err
}

// DropTable drops table if it exists.
func (a *SQLite) DropTable(ctx context.Context, table string) error {
	_, err := a.Query(ctx, dropTableSQL(table), nil)
	return err
}

// TableExists looks table up in sqlite_master.
func (a *SQLite) TableExists(ctx context.Context, table string) (bool, error) {
	res, err := a.Query(ctx,
		"SELECT COUNT(*) AS n FROM sqlite_master WHERE type = 'table' AND name = $1",
		[]any{table})
	if err != nil {
		return false, err
	}
	if len(res.Rows) == 0 {
		return false, nil
	}
	n, _ := res.Rows[0]["n"].(int64)
	return n > 0, nil
}

var _ Adapter = (*SQLite)(nil)
