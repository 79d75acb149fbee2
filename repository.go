package litorm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tordrt/litorm/adapter"
	"github.com/tordrt/litorm/entity"
	"github.com/tordrt/litorm/query"
	"github.com/tordrt/litorm/schema"
)

// Repository reads and writes the entities of one model. It keeps no
// clause state between calls and may be shared between goroutines.
type Repository struct {
	meta    *schema.Metadata
	adapter adapter.Adapter
	logger  *slog.Logger
}

// NewRepository returns a repository for meta that executes through a.
func NewRepository(meta *schema.Metadata, a adapter.Adapter, opts ...Option) (*Repository, error) {
	if meta == nil {
		return nil, schema.ErrMissingMetadata
	}
	if a == nil {
		return nil, fmt.Errorf("%w: adapter is nil", adapter.ErrNotConnected)
	}
	o := buildOptions(opts)
	return &Repository{
		meta:    meta,
		adapter: a,
		logger:  o.logger.With("model", meta.Name()),
	}, nil
}

// Metadata returns the model the repository serves.
func (r *Repository) Metadata() *schema.Metadata { return r.meta }

// Builder returns a fresh query builder for the model.
func (r *Repository) Builder() *query.Builder { return query.New(r.meta) }

// FindAll returns every entity matching the equality conditions. Empty
// conditions select the whole table.
func (r *Repository) FindAll(ctx context.Context, conditions entity.Record) ([]*entity.Entity, error) {
	return r.Find(ctx, r.Builder().Select().WhereMap(conditions))
}

// FindOne returns the first entity matching the equality conditions, or
// nil when there is none.
func (r *Repository) FindOne(ctx context.Context, conditions entity.Record) (*entity.Entity, error) {
	found, err := r.Find(ctx, r.Builder().Select().WhereMap(conditions).Limit(1))
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

// FindByID returns the entity whose primary key equals id, or nil.
func (r *Repository) FindByID(ctx context.Context, id any) (*entity.Entity, error) {
	pk, ok := r.meta.PrimaryKey()
	if !ok {
		return nil, fmt.Errorf("%w: model %s declares no primary key", ErrMissingPrimaryKey, r.meta.Name())
	}
	return r.FindOne(ctx, entity.Record{pk.Property: id})
}

// Find runs a SELECT built by b and maps the rows to entities.
func (r *Repository) Find(ctx context.Context, b *query.Builder) ([]*entity.Entity, error) {
	if b.Kind() != query.KindSelect {
		return nil, fmt.Errorf("%w: find needs a select, got %s", query.ErrUnsupportedStatement, b.Kind())
	}
	stmt, err := b.Build()
	if err != nil {
		return nil, err
	}
	res, err := r.exec(ctx, stmt)
	if err != nil {
		return nil, err
	}

	out := make([]*entity.Entity, 0, len(res.Rows))
	for _, row := range res.Rows {
		e, err := entity.FromRow(r.meta, row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// Create inserts e. The row returned by the database (generated keys,
// defaults) is merged into e, and e is left without pending changes.
func (r *Repository) Create(ctx context.Context, e *entity.Entity) (*entity.Entity, error) {
	if err := r.checkModel(e); err != nil {
		return nil, err
	}
	stmt, err := r.Builder().InsertEntity(e).Build()
	if err != nil {
		return nil, err
	}
	res, err := r.exec(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if len(res.Rows) > 0 {
		e.Merge(res.Rows[0])
	}
	e.SyncOriginalValues()
	return e, nil
}

// Update writes the changed columns of e. An entity without changes is
// returned as is and no statement is sent.
func (r *Repository) Update(ctx context.Context, e *entity.Entity) (*entity.Entity, error) {
	if err := r.checkModel(e); err != nil {
		return nil, err
	}
	if !e.HasChanges() {
		return e, nil
	}
	pk, id, err := r.primaryKey(e)
	if err != nil {
		return nil, err
	}
	stmt, err := r.Builder().UpdateEntity(e).WhereEq(pk, id).Build()
	if err != nil {
		return nil, err
	}
	if _, err := r.exec(ctx, stmt); err != nil {
		return nil, err
	}
	e.SyncOriginalValues()
	return e, nil
}

// Delete removes e by primary key and reports whether a row was deleted.
func (r *Repository) Delete(ctx context.Context, e *entity.Entity) (bool, error) {
	if err := r.checkModel(e); err != nil {
		return false, err
	}
	pk, id, err := r.primaryKey(e)
	if err != nil {
		return false, err
	}
	stmt, err := r.Builder().Delete().WhereEq(pk, id).Build()
	if err != nil {
		return false, err
	}
	res, err := r.exec(ctx, stmt)
	if err != nil {
		return false, err
	}
	return res.RowCount > 0, nil
}

// Query runs raw SQL with $n placeholders and returns the rows unmapped.
func (r *Repository) Query(ctx context.Context, sql string, params ...any) ([]adapter.Row, error) {
	res, err := r.exec(ctx, query.Statement{SQL: sql, Params: params})
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

func (r *Repository) exec(ctx context.Context, stmt query.Statement) (*adapter.Result, error) {
	start := time.Now()
	res, err := r.adapter.Query(ctx, stmt.SQL, stmt.Params)
	attrs := []any{"sql", stmt.SQL, "params", len(stmt.Params), "duration", time.Since(start)}
	if err != nil {
		r.logger.DebugContext(ctx, "query failed", append(attrs, "error", err)...)
		return nil, err
	}
	r.logger.DebugContext(ctx, "query executed", append(attrs, "rows", res.RowCount)...)
	return res, nil
}

func (r *Repository) checkModel(e *entity.Entity) error {
	if e == nil {
		return errors.New("litorm: entity is nil")
	}
	m := e.Metadata()
	switch {
	case m == r.meta:
		return nil
	case m == nil:
		return fmt.Errorf("%w: entity has no model", ErrModelMismatch)
	case m.Name() != r.meta.Name():
		return fmt.Errorf("%w: %s passed to repository of %s", ErrModelMismatch, m.Name(), r.meta.Name())
	}
	return nil
}

func (r *Repository) primaryKey(e *entity.Entity) (string, any, error) {
	pk, ok := r.meta.PrimaryKey()
	if !ok {
		return "", nil, fmt.Errorf("%w: model %s declares no primary key", ErrMissingPrimaryKey, r.meta.Name())
	}
	// The row is addressed by its persisted key, which differs from the
	// current one when the key itself was changed.
	id, ok := e.Original(pk.Property)
	if !ok || id == nil {
		id, ok = e.Get(pk.Property)
	}
	if !ok || id == nil {
		return "", nil, fmt.Errorf("%w: %s.%s", ErrMissingPrimaryKey, r.meta.Name(), pk.Property)
	}
	return pk.Property, id, nil
}
