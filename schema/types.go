package schema

import "fmt"

// ColumnType is the semantic type of a model column.
type ColumnType string

const (
	TypeString  ColumnType = "string"
	TypeNumber  ColumnType = "number"
	TypeBoolean ColumnType = "boolean"
	TypeDate    ColumnType = "date"
	TypeJSON    ColumnType = "json"
	TypeArray   ColumnType = "array"
)

// Valid reports whether t is one of the known column types.
func (t ColumnType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeDate, TypeJSON, TypeArray:
		return true
	}
	return false
}

// ParseColumnType converts a type name such as "string" into a ColumnType.
func ParseColumnType(s string) (ColumnType, error) {
	t := ColumnType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown column type %q", ErrInvalidMetadata, s)
	}
	return t, nil
}

// Reference is a foreign key target.
type Reference struct {
	Table  string
	Column string
}

// ColumnDefinition describes one declared property of a model.
type ColumnDefinition struct {
	Property   string
	Type       ColumnType
	Primary    bool
	Nullable   bool
	Unique     bool
	Default    any
	Name       string // physical column name, empty means Property
	References *Reference
}

// ColumnName returns the physical column name.
func (c ColumnDefinition) ColumnName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Property
}

// Generated reports whether the column is filled by a database sequence.
func (c ColumnDefinition) Generated() bool {
	s, ok := c.Default.(string)
	return ok && s == SerialDefault
}

// SerialDefault is the default value marking an auto-generated primary key.
const SerialDefault = "SERIAL"

// ColumnOption configures a ColumnDefinition.
type ColumnOption func(*ColumnDefinition)

// PrimaryKey marks the column as the primary key.
func PrimaryKey() ColumnOption {
	return func(c *ColumnDefinition) { c.Primary = true }
}

// PrimaryGenerated marks the column as a sequence-backed primary key.
func PrimaryGenerated() ColumnOption {
	return func(c *ColumnDefinition) {
		c.Primary = true
		c.Default = SerialDefault
	}
}

// NotNull marks the column as NOT NULL. Columns are nullable by default.
func NotNull() ColumnOption {
	return func(c *ColumnDefinition) { c.Nullable = false }
}

// Unique marks the column as UNIQUE.
func Unique() ColumnOption {
	return func(c *ColumnDefinition) { c.Unique = true }
}

// Default sets the column default value.
func Default(v any) ColumnOption {
	return func(c *ColumnDefinition) { c.Default = v }
}

// Name overrides the physical column name.
func Name(name string) ColumnOption {
	return func(c *ColumnDefinition) { c.Name = name }
}

// References declares a foreign key to table.column.
func References(table, column string) ColumnOption {
	return func(c *ColumnDefinition) {
		c.References = &Reference{Table: table, Column: column}
	}
}

// Column declares a property of the given type.
func Column(property string, typ ColumnType, opts ...ColumnOption) ColumnDefinition {
	c := ColumnDefinition{
		Property: property,
		Type:     typ,
		Nullable: true,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
