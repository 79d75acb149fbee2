// Package adapter defines the contract between litorm and a database engine
// and ships the PostgreSQL and SQLite implementations.
//
// Adapters are selected by tag through New:
//
//	a, err := adapter.New("postgres")
//	if err != nil {
//		return err
//	}
//	err = a.Connect(ctx, adapter.Config{Host: "localhost", Port: 5432, Database: "app"})
//
// Both adapters speak the same SQL: double-quoted identifiers and numbered
// $n placeholders.
package adapter

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
)

var (
	// ErrNotConnected is returned by Query when no connection is open.
	ErrNotConnected = errors.New("litorm: not connected to database")

	// ErrConnectionFailed is joined with the driver error when Connect fails.
	ErrConnectionFailed = errors.New("litorm: failed to connect")

	// ErrUnsupportedAdapter is returned for an unknown adapter tag or URL scheme.
	ErrUnsupportedAdapter = errors.New("litorm: adapter type not supported")
)

// QueryError wraps a statement the database rejected.
type QueryError struct {
	SQL string
	Err error
}

func (e *QueryError) Error() string { return "query failed: " + e.Err.Error() }

// Unwrap returns the driver error.
func (e *QueryError) Unwrap() error { return e.Err }

// Row is one result row keyed by column name.
type Row = map[string]any

// Field describes one result column.
type Field struct {
	Name       string
	DataTypeID uint32 // PostgreSQL type OID, 0 when the driver has none
	TypeName   string
}

// Result is the outcome of one statement.
type Result struct {
	Rows     []Row
	RowCount int64 // rows returned or affected
	Fields   []Field
}

// ColumnSpec is one column of a CREATE TABLE statement. Definition is the
// type and constraint text that follows the quoted name.
type ColumnSpec struct {
	Name       string
	Definition string
}

// Adapter is a connection to one database engine.
type Adapter interface {
	Connect(ctx context.Context, cfg Config) error
	Disconnect(ctx context.Context) error
	IsConnected() bool
	Query(ctx context.Context, sql string, params []any) (*Result, error)
	CreateTable(ctx context.Context, table string, columns []ColumnSpec) error
	DropTable(ctx context.Context, table string) error
	TableExists(ctx context.Context, table string) (bool, error)
}

func quoteIdent(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

func createTableSQL(table string, columns []ColumnSpec) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quoteIdent(c.Name) + " " + c.Definition
	}
	return "CREATE TABLE IF NOT EXISTS " + quoteIdent(table) + " (" + strings.Join(defs, ", ") + ")"
}

func dropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + quoteIdent(table)
}
