package query

import "strings"

// Condition is one comparison of a WHERE clause. Conditions are always
// combined with AND.
type Condition struct {
	Column   string
	Operator string
	Value    any
}

var operators = map[string]string{
	"=":        "=",
	"!=":       "!=",
	"<>":       "<>",
	"<":        "<",
	"<=":       "<=",
	">":        ">",
	">=":       ">=",
	"LIKE":     "LIKE",
	"NOT LIKE": "NOT LIKE",
	"ILIKE":    "ILIKE",
	"IS":       "IS",
	"IS NOT":   "IS NOT",
}

// normalizeOperator returns the canonical spelling of op, or false when op
// is not an allowed operator. Operators end up in SQL text, never as a
// parameter, so only known spellings pass.
func normalizeOperator(op string) (string, bool) {
	canon, ok := operators[strings.ToUpper(strings.Join(strings.Fields(op), " "))]
	return canon, ok
}

// Cond builds a condition with an explicit operator.
func Cond(column, operator string, value any) Condition {
	return Condition{Column: column, Operator: operator, Value: value}
}

// Eq builds column = value.
func Eq(column string, value any) Condition { return Cond(column, "=", value) }

// Neq builds column != value.
func Neq(column string, value any) Condition { return Cond(column, "!=", value) }

// Gt builds column > value.
func Gt(column string, value any) Condition { return Cond(column, ">", value) }

// Gte builds column >= value.
func Gte(column string, value any) Condition { return Cond(column, ">=", value) }

// Lt builds column < value.
func Lt(column string, value any) Condition { return Cond(column, "<", value) }

// Lte builds column <= value.
func Lte(column string, value any) Condition { return Cond(column, "<=", value) }

// Like builds column LIKE pattern.
func Like(column string, pattern any) Condition { return Cond(column, "LIKE", pattern) }

// Direction is an ORDER BY direction. The zero value sorts ascending.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Order is one ORDER BY term.
type Order struct {
	Column    string
	Direction Direction
}

// JoinKind selects the join type.
type JoinKind string

const (
	InnerJoin JoinKind = "INNER"
	LeftJoin  JoinKind = "LEFT"
	RightJoin JoinKind = "RIGHT"
	FullJoin  JoinKind = "FULL"
)

// Join is one JOIN clause with an equality ON condition.
type Join struct {
	Table       string
	Alias       string
	Kind        JoinKind
	LeftColumn  string
	RightColumn string
}

// JoinOption configures a Join.
type JoinOption func(*Join)

// WithKind sets the join kind. Joins are INNER by default.
func WithKind(kind JoinKind) JoinOption {
	return func(j *Join) { j.Kind = kind }
}

// WithAlias sets the alias of the joined table.
func WithAlias(alias string) JoinOption {
	return func(j *Join) { j.Alias = alias }
}
