// Package query builds parameterized PostgreSQL statements for one model.
//
// A Builder accumulates clauses through chained calls and renders a single
// statement with Build:
//
//	stmt, err := query.New(users).
//		Select().
//		WhereMap(entity.Record{"status": "active"}).
//		OrderBy("createdAt", query.Desc).
//		Limit(10).
//		Build()
//	// stmt.SQL:    SELECT * FROM "orders" WHERE "status" = $1 ORDER BY "createdAt" DESC LIMIT $2
//	// stmt.Params: ["active", 10]
//
// Identifiers are always quoted and values are always bound parameters,
// LIMIT and OFFSET included. Property names are resolved to physical column
// names through the model metadata; names the model does not declare are
// used as they are.
//
// A Builder is not safe for concurrent use.
package query

import (
	"fmt"

	"github.com/tordrt/litorm/entity"
	"github.com/tordrt/litorm/schema"
)

// Kind is the statement a Builder renders.
type Kind int

const (
	KindSelect Kind = iota
	KindInsert
	KindUpdate
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "SELECT"
	case KindInsert:
		return "INSERT"
	case KindUpdate:
		return "UPDATE"
	case KindDelete:
		return "DELETE"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Statement is a rendered SQL statement and its positional parameters.
type Statement struct {
	SQL    string
	Params []any
}

type assignment struct {
	property string
	value    any
}

// Builder accumulates the clauses of one statement.
type Builder struct {
	meta        *schema.Metadata
	missingMeta bool

	kind       Kind
	columns    []string
	conditions []Condition
	orders     []Order
	joins      []Join
	limit      int
	hasLimit   bool
	offset     int
	hasOffset  bool
	data       []assignment
	hasData    bool

	err error
}

// New returns a builder for the model described by meta, in SELECT * mode.
func New(meta *schema.Metadata) *Builder {
	b := &Builder{meta: meta}
	if meta == nil {
		b.meta, b.missingMeta = new(schema.Metadata), true
	}
	b.Reset()
	return b
}

// Kind returns the statement kind currently selected.
func (b *Builder) Kind() Kind { return b.kind }

// Err returns the first error recorded while chaining, if any.
func (b *Builder) Err() error { return b.err }

func (b *Builder) fail(format string, args ...any) {
	if b.err == nil {
		b.err = fmt.Errorf(format, args...)
	}
}

// Select switches to SELECT and replaces the projection. No columns means *.
func (b *Builder) Select(columns ...string) *Builder {
	b.kind = KindSelect
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	b.columns = append([]string(nil), columns...)
	return b
}

// Insert switches to INSERT with the given property values.
func (b *Builder) Insert(data entity.Record) *Builder {
	b.kind = KindInsert
	b.setData(data)
	return b
}

// InsertEntity switches to INSERT with every declared property of e that
// is set. Unset properties are left out of the statement so the column
// default applies.
func (b *Builder) InsertEntity(e *entity.Entity) *Builder {
	b.kind = KindInsert
	b.data = b.data[:0]
	b.hasData = true
	for _, prop := range b.meta.Properties() {
		if v, ok := e.Get(prop); ok {
			b.data = append(b.data, assignment{property: prop, value: v})
		}
	}
	return b
}

// Update switches to UPDATE with the given property values.
func (b *Builder) Update(data entity.Record) *Builder {
	b.kind = KindUpdate
	b.setData(data)
	return b
}

// UpdateEntity switches to UPDATE with the changed properties of e only.
func (b *Builder) UpdateEntity(e *entity.Entity) *Builder {
	b.kind = KindUpdate
	b.setData(e.Changes())
	return b
}

func (b *Builder) setData(data entity.Record) {
	b.data = b.data[:0]
	b.hasData = true
	for _, k := range b.meta.OrderKeys(data) {
		b.data = append(b.data, assignment{property: k, value: data[k]})
	}
}

// Delete switches to DELETE.
func (b *Builder) Delete() *Builder {
	b.kind = KindDelete
	return b
}

// Where appends AND-combined conditions.
func (b *Builder) Where(conds ...Condition) *Builder {
	for _, c := range conds {
		op, ok := normalizeOperator(c.Operator)
		if !ok {
			b.fail("%w: operator %q", ErrInvalidClause, c.Operator)
			continue
		}
		if op == "IS" || op == "IS NOT" {
			if _, ok := isOperand(c.Value); !ok {
				b.fail("%w: %s needs nil, true or false, got %T", ErrInvalidClause, op, c.Value)
				continue
			}
		}
		c.Operator = op
		b.conditions = append(b.conditions, c)
	}
	return b
}

// WhereMap appends one equality condition per entry of conditions, in
// declared-column order followed by the remaining keys sorted.
func (b *Builder) WhereMap(conditions entity.Record) *Builder {
	for _, k := range b.meta.OrderKeys(conditions) {
		b.Where(Eq(k, conditions[k]))
	}
	return b
}

// WhereEq appends column = value.
func (b *Builder) WhereEq(column string, value any) *Builder {
	return b.Where(Eq(column, value))
}

// WhereOp appends a condition with an explicit operator.
func (b *Builder) WhereOp(column, operator string, value any) *Builder {
	return b.Where(Cond(column, operator, value))
}

// OrderBy appends an ORDER BY term. Terms render in call order.
func (b *Builder) OrderBy(column string, dir Direction) *Builder {
	switch dir {
	case "":
		dir = Asc
	case Asc, Desc:
	default:
		b.fail("%w: order direction %q", ErrInvalidClause, dir)
		return b
	}
	b.orders = append(b.orders, Order{Column: column, Direction: dir})
	return b
}

// Join appends an equality join. Joins render in call order, before WHERE.
func (b *Builder) Join(table, leftColumn, rightColumn string, opts ...JoinOption) *Builder {
	j := Join{Table: table, Kind: InnerJoin, LeftColumn: leftColumn, RightColumn: rightColumn}
	for _, opt := range opts {
		opt(&j)
	}
	switch j.Kind {
	case InnerJoin, LeftJoin, RightJoin, FullJoin:
	default:
		b.fail("%w: join kind %q", ErrInvalidClause, j.Kind)
		return b
	}
	b.joins = append(b.joins, j)
	return b
}

// Limit sets the LIMIT bound.
func (b *Builder) Limit(n int) *Builder {
	if n < 0 {
		b.fail("%w: negative limit %d", ErrInvalidClause, n)
		return b
	}
	b.limit, b.hasLimit = n, true
	return b
}

// Offset sets the OFFSET bound.
func (b *Builder) Offset(n int) *Builder {
	if n < 0 {
		b.fail("%w: negative offset %d", ErrInvalidClause, n)
		return b
	}
	b.offset, b.hasOffset = n, true
	return b
}

// Reset clears every clause and returns the builder to SELECT *.
func (b *Builder) Reset() {
	b.kind = KindSelect
	b.columns = []string{"*"}
	b.conditions = nil
	b.orders = nil
	b.joins = nil
	b.limit, b.hasLimit = 0, false
	b.offset, b.hasOffset = 0, false
	b.data = nil
	b.hasData = false
	b.err = nil
}

// Build renders the statement for the current kind. Placeholders are
// numbered from $1 on every call.
func (b *Builder) Build() (Statement, error) {
	if b.missingMeta {
		return Statement{}, schema.ErrMissingMetadata
	}
	if b.err != nil {
		return Statement{}, b.err
	}
	switch b.kind {
	case KindSelect:
		return b.buildSelect(), nil
	case KindInsert:
		return b.buildInsert()
	case KindUpdate:
		return b.buildUpdate()
	case KindDelete:
		return b.buildDelete()
	default:
		return Statement{}, fmt.Errorf("%w: %s", ErrUnsupportedStatement, b.kind)
	}
}
