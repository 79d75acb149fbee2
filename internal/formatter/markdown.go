package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/litorm/schema"
)

// MarkdownFormatter formats model metadata as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the models in markdown format
func (f *MarkdownFormatter) Format(models []*schema.Metadata) error {
	_, _ = fmt.Fprintln(f.writer, "# Models")
	_, _ = fmt.Fprintln(f.writer)

	for _, m := range models {
		f.FormatModel(m)
	}
	return nil
}

// FormatModel formats a single model (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatModel(m *schema.Metadata) {
	_, _ = fmt.Fprintf(f.writer, "## %s (`%s`)\n\n", m.Name(), m.TableName())

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)

	for _, col := range m.Columns() {
		name := col.Property
		if col.ColumnName() != col.Property {
			name = fmt.Sprintf("%s (`%s`)", col.Property, col.ColumnName())
		}
		if c := constraints(col); len(c) > 0 {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s, %s\n", name, col.Type, strings.Join(c, ", "))
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", name, col.Type)
		}
	}
	_, _ = fmt.Fprintln(f.writer)

	if refs := references(m); len(refs) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### References")
		_, _ = fmt.Fprintln(f.writer)
		for _, col := range refs {
			_, _ = fmt.Fprintf(f.writer, "- %s → %s.%s\n", col.ColumnName(), col.References.Table, col.References.Column)
		}
		_, _ = fmt.Fprintln(f.writer)
	}
}
