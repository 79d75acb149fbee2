package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/litorm/schema"
)

// TextFormatter formats model metadata as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the models in compact text format
func (f *TextFormatter) Format(models []*schema.Metadata) error {
	for i, m := range models {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between models
		}
		f.FormatModel(m)
	}
	return nil
}

// FormatModel writes a single model
func (f *TextFormatter) FormatModel(m *schema.Metadata) {
	// Model header with primary key
	pkStr := ""
	if pk, ok := m.PrimaryKey(); ok {
		pkStr = fmt.Sprintf(" (PK: %s)", pk.Property)
	}
	_, _ = fmt.Fprintf(f.writer, "MODEL %s → %s%s\n", m.Name(), m.TableName(), pkStr)

	for _, col := range m.Columns() {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", formatColumn(col))
	}

	refs := references(m)
	if len(refs) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "  REFERENCES:")
		for _, col := range refs {
			_, _ = fmt.Fprintf(f.writer, "    %s → %s.%s\n", col.ColumnName(), col.References.Table, col.References.Column)
		}
	}
}

func formatColumn(col schema.ColumnDefinition) string {
	name := col.Property
	if col.ColumnName() != col.Property {
		name = fmt.Sprintf("%s (%s)", col.Property, col.ColumnName())
	}
	parts := []string{name + ":", string(col.Type)}
	return strings.Join(append(parts, constraints(col)...), " ")
}

// constraints lists the column flags in display order.
func constraints(col schema.ColumnDefinition) []string {
	var out []string
	if col.Primary {
		out = append(out, "PK")
	}
	if col.Generated() {
		out = append(out, "GENERATED")
	}
	if col.Unique {
		out = append(out, "UNIQUE")
	}
	if !col.Nullable && !col.Primary {
		out = append(out, "NOT NULL")
	}
	if col.Default != nil && !col.Generated() {
		out = append(out, fmt.Sprintf("DEFAULT %v", col.Default))
	}
	return out
}

func references(m *schema.Metadata) []schema.ColumnDefinition {
	var out []schema.ColumnDefinition
	for _, col := range m.Columns() {
		if col.References != nil {
			out = append(out, col)
		}
	}
	return out
}
