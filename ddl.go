package litorm

import (
	"fmt"
	"strings"

	"github.com/tordrt/litorm/adapter"
	"github.com/tordrt/litorm/query"
	"github.com/tordrt/litorm/schema"
)

// dialect selects the type names used in CREATE TABLE.
type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

func dialectOf(a adapter.Adapter) dialect {
	if _, ok := a.(*adapter.SQLite); ok {
		return dialectSQLite
	}
	return dialectPostgres
}

// columnSpecs derives the CREATE TABLE columns of a model.
func columnSpecs(meta *schema.Metadata, d dialect) []adapter.ColumnSpec {
	cols := meta.Columns()
	specs := make([]adapter.ColumnSpec, len(cols))
	for i, c := range cols {
		specs[i] = adapter.ColumnSpec{Name: c.ColumnName(), Definition: columnDefinition(c, d)}
	}
	return specs
}

func columnDefinition(c schema.ColumnDefinition, d dialect) string {
	parts := []string{sqlType(c, d)}
	if c.Primary {
		parts = append(parts, "PRIMARY KEY")
	} else {
		if !c.Nullable {
			parts = append(parts, "NOT NULL")
		}
		if c.Unique {
			parts = append(parts, "UNIQUE")
		}
	}
	if c.Default != nil && !c.Generated() {
		parts = append(parts, "DEFAULT "+literal(c.Default))
	}
	if ref := c.References; ref != nil {
		parts = append(parts, "REFERENCES "+query.QuoteIdent(ref.Table)+" ("+query.QuoteIdent(ref.Column)+")")
	}
	return strings.Join(parts, " ")
}

func sqlType(c schema.ColumnDefinition, d dialect) string {
	switch c.Type {
	case schema.TypeString:
		return "TEXT"
	case schema.TypeNumber:
		switch {
		case c.Generated() && d == dialectSQLite:
			// INTEGER PRIMARY KEY is the rowid alias and auto-increments.
			return "INTEGER"
		case c.Generated():
			return "SERIAL"
		case c.Primary || c.References != nil:
			return "INTEGER"
		default:
			return "NUMERIC"
		}
	case schema.TypeBoolean:
		return "BOOLEAN"
	case schema.TypeDate:
		if d == dialectSQLite {
			return "TIMESTAMP"
		}
		return "TIMESTAMPTZ"
	case schema.TypeJSON, schema.TypeArray:
		if d == dialectSQLite {
			return "TEXT"
		}
		return "JSONB"
	default:
		return "TEXT"
	}
}

func literal(v any) string {
	switch v := v.(type) {
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(v)
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprint(v), "'", "''") + "'"
	}
}
