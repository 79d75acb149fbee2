// Package schema holds the static description of data models: table names,
// column definitions and the registry that associates them with type names.
package schema

import (
	"fmt"
	"sort"

	"github.com/go-openapi/inflect"
)

// Metadata is the immutable description of one model type.
type Metadata struct {
	name       string
	table      string
	columns    []ColumnDefinition
	byProperty map[string]int
	byColumn   map[string]int
	primary    int
}

// New builds the metadata for the model typeName. An empty table defaults to
// the pluralized snake case of typeName ("OrderItem" becomes "order_items").
func New(typeName, table string, columns ...ColumnDefinition) (*Metadata, error) {
	if typeName == "" && table == "" {
		return nil, fmt.Errorf("%w: model name and table are both empty", ErrInvalidMetadata)
	}
	if table == "" {
		table = DefaultTableName(typeName)
	}
	if typeName == "" {
		typeName = table
	}

	m := &Metadata{
		name:       typeName,
		table:      table,
		columns:    make([]ColumnDefinition, 0, len(columns)),
		byProperty: make(map[string]int, len(columns)),
		byColumn:   make(map[string]int, len(columns)),
		primary:    -1,
	}
	for _, c := range columns {
		if c.Property == "" {
			return nil, fmt.Errorf("%w: %s has a column without a property name", ErrInvalidMetadata, typeName)
		}
		if !c.Type.Valid() {
			return nil, fmt.Errorf("%w: %s.%s has unknown type %q", ErrInvalidMetadata, typeName, c.Property, c.Type)
		}
		if _, dup := m.byProperty[c.Property]; dup {
			return nil, fmt.Errorf("%w: %s.%s declared twice", ErrInvalidMetadata, typeName, c.Property)
		}
		if _, dup := m.byColumn[c.ColumnName()]; dup {
			return nil, fmt.Errorf("%w: %s maps two properties to column %q", ErrInvalidMetadata, typeName, c.ColumnName())
		}
		if c.Primary && m.primary >= 0 {
			return nil, fmt.Errorf("%w: %s declares more than one primary key", ErrInvalidMetadata, typeName)
		}
		if c.References != nil {
			ref := *c.References
			c.References = &ref
		}

		idx := len(m.columns)
		m.columns = append(m.columns, c)
		m.byProperty[c.Property] = idx
		m.byColumn[c.ColumnName()] = idx
		if c.Primary {
			m.primary = idx
		}
	}
	return m, nil
}

// MustNew is like New but panics on error. It is meant for package-level
// model declarations.
func MustNew(typeName, table string, columns ...ColumnDefinition) *Metadata {
	m, err := New(typeName, table, columns...)
	if err != nil {
		panic(err)
	}
	return m
}

// DefaultTableName derives a table name from a model type name.
func DefaultTableName(typeName string) string {
	return inflect.Underscore(inflect.Pluralize(typeName))
}

// Name returns the model type name.
func (m *Metadata) Name() string { return m.name }

// TableName returns the table the model maps to.
func (m *Metadata) TableName() string { return m.table }

// Properties returns the declared property names in declaration order.
func (m *Metadata) Properties() []string {
	props := make([]string, len(m.columns))
	for i, c := range m.columns {
		props[i] = c.Property
	}
	return props
}

// Columns returns a copy of the column definitions in declaration order.
func (m *Metadata) Columns() []ColumnDefinition {
	cols := make([]ColumnDefinition, len(m.columns))
	copy(cols, m.columns)
	return cols
}

// Column returns the definition of a declared property.
func (m *Metadata) Column(property string) (ColumnDefinition, bool) {
	idx, ok := m.byProperty[property]
	if !ok {
		return ColumnDefinition{}, false
	}
	return m.columns[idx], true
}

// Has reports whether property is declared.
func (m *Metadata) Has(property string) bool {
	_, ok := m.byProperty[property]
	return ok
}

// ColumnName resolves a property to its physical column name. Names without
// a definition are returned unchanged so ad-hoc columns can still be used.
func (m *Metadata) ColumnName(property string) string {
	if c, ok := m.Column(property); ok {
		return c.ColumnName()
	}
	return property
}

// PropertyFor maps a physical column name (or a property name) back to the
// declared property.
func (m *Metadata) PropertyFor(column string) (string, bool) {
	if idx, ok := m.byColumn[column]; ok {
		return m.columns[idx].Property, true
	}
	if _, ok := m.byProperty[column]; ok {
		return column, true
	}
	return "", false
}

// PrimaryKey returns the primary key definition, if one is declared.
func (m *Metadata) PrimaryKey() (ColumnDefinition, bool) {
	if m.primary < 0 {
		return ColumnDefinition{}, false
	}
	return m.columns[m.primary], true
}

// OrderKeys returns the keys of a record in a stable order: declared
// properties first in declaration order, then the remaining keys sorted.
func (m *Metadata) OrderKeys(record map[string]any) []string {
	keys := make([]string, 0, len(record))
	for _, c := range m.columns {
		if _, ok := record[c.Property]; ok {
			keys = append(keys, c.Property)
		}
	}
	var extra []string
	for k := range record {
		if !m.Has(k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
