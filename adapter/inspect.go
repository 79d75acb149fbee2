package adapter

import (
	"context"
	"fmt"
)

// ColumnInfo describes a column of a live table.
type ColumnInfo struct {
	Name     string
	Type     string
	Nullable bool
	Default  any // default expression as reported by the database, nil if none
	Primary  bool
}

// Inspector is implemented by adapters that can read the live schema.
type Inspector interface {
	Tables(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, table string) ([]ColumnInfo, error)
}

// Tables lists the base tables of the configured schema.
func (a *Postgres) Tables(ctx context.Context) ([]string, error) {
	res, err := a.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`, []any{a.schemaName()})
	if err != nil {
		return nil, err
	}
	return stringColumn(res, "table_name"), nil
}

// Columns lists the columns of table in ordinal order. An unknown table
// has no columns.
func (a *Postgres) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	schemaName := a.schemaName()
	res, err := a.Query(ctx, `
		SELECT
			c.column_name,
			c.data_type,
			c.is_nullable,
			c.column_default,
			EXISTS (
				SELECT 1
				FROM information_schema.table_constraints tc
				JOIN information_schema.key_column_usage kcu
					ON tc.constraint_name = kcu.constraint_name
					AND tc.table_schema = kcu.table_schema
				WHERE tc.table_schema = $1
					AND tc.table_name = $2
					AND tc.constraint_type = 'PRIMARY KEY'
					AND kcu.column_name = c.column_name
			) AS is_primary
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`, []any{schemaName, table})
	if err != nil {
		return nil, err
	}

	cols := make([]ColumnInfo, 0, len(res.Rows))
	for _, row := range res.Rows {
		name := asString(row["column_name"])
		typ := asString(row["data_type"])
		nullable := asString(row["is_nullable"])
		primary, _ := row["is_primary"].(bool)
		cols = append(cols, ColumnInfo{
			Name:     name,
			Type:     typ,
			Nullable: nullable == "YES",
			Default:  row["column_default"],
			Primary:  primary,
		})
	}
	return cols, nil
}

func (a *Postgres) schemaName() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.schema == "" {
		return "public"
	}
	return a.schema
}

// Tables lists the user tables of the database.
func (a *SQLite) Tables(ctx context.Context) ([]string, error) {
	res, err := a.Query(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`, nil)
	if err != nil {
		return nil, err
	}
	return stringColumn(res, "name"), nil
}

// Columns lists the columns of table in declaration order. An unknown
// table has no columns.
func (a *SQLite) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	res, err := a.Query(ctx,
		`SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info($1) ORDER BY cid`,
		[]any{table})
	if err != nil {
		return nil, err
	}

	cols := make([]ColumnInfo, 0, len(res.Rows))
	for _, row := range res.Rows {
		name := asString(row["name"])
		typ := asString(row["type"])
		notNull, _ := row["notnull"].(int64)
		pk, _ := row["pk"].(int64)
		cols = append(cols, ColumnInfo{
			Name: name,
			Type: typ,
			// SQLite does not report NOT NULL for primary keys.
			Nullable: notNull == 0 && pk == 0,
			Default:  row["dflt_value"],
			Primary:  pk > 0,
		})
	}
	return cols, nil
}

func stringColumn(res *Result, column string) []string {
	out := make([]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		out = append(out, asString(row[column]))
	}
	return out
}

func asString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

var (
	_ Inspector = (*Postgres)(nil)
	_ Inspector = (*SQLite)(nil)
)
