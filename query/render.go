package query

import (
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// params collects bound values and hands out their placeholders.
type params struct {
	values []any
}

func (p *params) add(v any) string {
	p.values = append(p.values, v)
	return Placeholder(len(p.values))
}

// Placeholder renders the n-th positional parameter ($1, $2, ...). It is the
// only place that knows the placeholder syntax.
func Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// QuoteIdent quotes a possibly qualified identifier. Each dot-separated part
// is quoted on its own and a trailing * is kept as a star.
func QuoteIdent(name string) string {
	if name == "*" {
		return name
	}
	parts := strings.Split(name, ".")
	if last := len(parts) - 1; last > 0 && parts[last] == "*" {
		return pgx.Identifier(parts[:last]).Sanitize() + ".*"
	}
	return pgx.Identifier(parts).Sanitize()
}

func (b *Builder) column(property string) string {
	return QuoteIdent(b.meta.ColumnName(property))
}

func (b *Builder) buildSelect() Statement {
	var p params
	cols := make([]string, len(b.columns))
	for i, c := range b.columns {
		cols[i] = b.column(c)
	}

	parts := []string{"SELECT " + strings.Join(cols, ", ") + " FROM " + QuoteIdent(b.meta.TableName())}
	for _, j := range b.joins {
		target := QuoteIdent(j.Table)
		if j.Alias != "" {
			target += " AS " + QuoteIdent(j.Alias)
		}
		parts = append(parts, string(j.Kind)+" JOIN "+target+" ON "+QuoteIdent(j.LeftColumn)+" = "+QuoteIdent(j.RightColumn))
	}
	if where := b.renderWhere(&p); where != "" {
		parts = append(parts, where)
	}
	if len(b.orders) > 0 {
		terms := make([]string, len(b.orders))
		for i, o := range b.orders {
			terms[i] = b.column(o.Column) + " " + string(o.Direction)
		}
		parts = append(parts, "ORDER BY "+strings.Join(terms, ", "))
	}
	if b.hasLimit {
		parts = append(parts, "LIMIT "+p.add(b.limit))
	}
	if b.hasOffset {
		parts = append(parts, "OFFSET "+p.add(b.offset))
	}
	return Statement{SQL: strings.Join(parts, " "), Params: p.values}
}

func (b *Builder) buildInsert() (Statement, error) {
	if !b.hasData || len(b.data) == 0 {
		return Statement{}, ErrEmptyData
	}
	var p params
	cols := make([]string, len(b.data))
	holders := make([]string, len(b.data))
	for i, a := range b.data {
		cols[i] = b.column(a.property)
		holders[i] = p.add(a.value)
	}
	sql := "INSERT INTO " + QuoteIdent(b.meta.TableName()) +
		" (" + strings.Join(cols, ",") + ") VALUES (" + strings.Join(holders, ",") + ") RETURNING *"
	return Statement{SQL: sql, Params: p.values}, nil
}

func (b *Builder) buildUpdate() (Statement, error) {
	if !b.hasData || len(b.data) == 0 {
		return Statement{}, ErrEmptyData
	}
	var p params
	sets := make([]string, len(b.data))
	for i, a := range b.data {
		sets[i] = b.column(a.property) + " = " + p.add(a.value)
	}
	sql := "UPDATE " + QuoteIdent(b.meta.TableName()) + " SET " + strings.Join(sets, ", ")
	if where := b.renderWhere(&p); where != "" {
		sql += " " + where
	}
	sql += " RETURNING *"
	return Statement{SQL: sql, Params: p.values}, nil
}

func (b *Builder) buildDelete() (Statement, error) {
	if len(b.conditions) == 0 {
		return Statement{}, ErrUnsafeDelete
	}
	var p params
	sql := "DELETE FROM " + QuoteIdent(b.meta.TableName()) + " " + b.renderWhere(&p)
	return Statement{SQL: sql, Params: p.values}, nil
}

// renderWhere renders the WHERE clause, continuing the numbering of p.
func (b *Builder) renderWhere(p *params) string {
	if len(b.conditions) == 0 {
		return ""
	}
	terms := make([]string, len(b.conditions))
	for i, c := range b.conditions {
		if kw, ok := isOperand(c.Value); ok && (c.Operator == "IS" || c.Operator == "IS NOT") {
			terms[i] = b.column(c.Column) + " " + c.Operator + " " + kw
			continue
		}
		terms[i] = b.column(c.Column) + " " + c.Operator + " " + p.add(c.Value)
	}
	return "WHERE " + strings.Join(terms, " AND ")
}

// isOperand maps the values allowed after IS / IS NOT to their keyword.
func isOperand(v any) (string, bool) {
	switch v {
	case nil:
		return "NULL", true
	case true:
		return "TRUE", true
	case false:
		return "FALSE", true
	}
	return "", false
}
