package adapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is an Adapter backed by a pgx connection pool.
type Postgres struct {
	mu     sync.RWMutex
	pool   *pgxpool.Pool
	schema string
}

// NewPostgres creates a disconnected PostgreSQL adapter.
func NewPostgres() *Postgres {
	return &Postgres{}
}

// Connect opens the pool and acquires one connection to make sure the
// server is reachable.
func (a *Postgres) Connect(ctx context.Context, cfg Config) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresURL())
	if err != nil {
		return fmt.Errorf("%w: failed to parse postgres config: %w", ErrConnectionFailed, err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("%w: failed to create pool: %w", ErrConnectionFailed, err)
	}

	// Test the connection
	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return fmt.Errorf("%w: failed to connect to postgres: %w", ErrConnectionFailed, err)
	}
	conn.Release()

	a.pool = pool
	a.schema = cfg.Schema()
	return nil
}

// Disconnect closes the pool.
func (a *Postgres) Disconnect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	return nil
}

// IsConnected reports whether Connect succeeded and Disconnect was not called.
func (a *Postgres) IsConnected() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pool != nil
}

// Pool returns the underlying pool, nil when disconnected.
func (a *Postgres) Pool() *pgxpool.Pool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pool
}

// Query runs one statement and collects every row.
func (a *Postgres) Query(ctx context.Context, sql string, params []any) (*Result, error) {
	pool := a.Pool()
	if pool == nil {
		return nil, ErrNotConnected
	}

	rows, err := pool.Query(ctx, sql, params...)
	if err != nil {
		return nil, &QueryError{SQL: sql, Err: err}
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	typeMap := rows.Conn().TypeMap()
	fields := make([]Field, len(fds))
	for i, fd := range fds {
		fields[i] = Field{Name: fd.Name, DataTypeID: fd.DataTypeOID}
		if t, ok := typeMap.TypeForOID(fd.DataTypeOID); ok {
			fields[i].TypeName = t.Name
		}
	}

	var out []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, &QueryError{SQL: sql, Err: err}
		}
		row := make(Row, len(fields))
		for i, f := range fields {
			row[f.Name] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	// The command tag is only complete once the rows are closed.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: sql, Err: err}
	}

	return &Result{
		Rows:     out,
		RowCount: rows.CommandTag().RowsAffected(),
		Fields:   fields,
	}, nil
}

// CreateTable creates table if it does not exist.
func (a *Postgres) CreateTable(ctx context.Context, table string, columns []ColumnSpec) error {
	_, err := a.Query(ctx, createTableSQL(table, columns), nil)
	return err
}

// DropTable drops table if it exists.
func (a *Postgres) DropTable(ctx context.Context, table string) error {
	_, err := a.Query(ctx, dropTableSQL(table), nil)
	return err
}

// TableExists looks table up in information_schema within the configured schema.
func (a *Postgres) TableExists(ctx context.Context, table string) (bool, error) {
	res, err := a.Query(ctx,
		"SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2) AS exists",
		[]any{a.schemaName(), table})
	if err != nil {
		return false, err
	}
	if len(res.Rows) == 0 {
		return false, nil
	}
	exists, _ := res.Rows[0]["exists"].(bool)
	return exists, nil
}

var _ Adapter = (*Postgres)(nil)
