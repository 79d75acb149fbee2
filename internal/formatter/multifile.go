package formatter

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/tordrt/litorm/schema"
)

const (
	formatMarkdown = "markdown"
	formatText     = "text"
)

// MultiFileFormatter writes one file per model plus an overview
type MultiFileFormatter struct {
	Fs           afero.Fs
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter writing to the OS filesystem
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		Fs:           afero.NewOsFs(),
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes the models to multiple files
func (f *MultiFileFormatter) Format(models []*schema.Metadata) error {
	if f.OutputFormat != formatText && f.OutputFormat != formatMarkdown {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'markdown')", f.OutputFormat)
	}

	// Create output directory if it doesn't exist
	if err := f.Fs.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeFile("_overview", func(w io.Writer) { f.writeOverview(w, models) }); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, m := range models {
		if err := f.writeFile(m.TableName(), func(w io.Writer) { f.writeModel(w, m, models) }); err != nil {
			return fmt.Errorf("failed to write model file for %s: %w", m.Name(), err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeFile(name string, write func(io.Writer)) error {
	file, err := f.Fs.Create(filepath.Join(f.OutputDir, name+f.getFileExtension()))
	if err != nil {
		return err
	}
	write(file)
	return file.Close()
}

func (f *MultiFileFormatter) writeOverview(w io.Writer, models []*schema.Metadata) {
	sorted := make([]*schema.Metadata, len(models))
	copy(sorted, models)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].TableName() < sorted[j].TableName()
	})

	if f.OutputFormat == formatMarkdown {
		_, _ = fmt.Fprintf(w, "# Models Overview\n\n")
		_, _ = fmt.Fprintf(w, "Each model has a corresponding file: `<table_name>%s`\n\n", f.getFileExtension())
		_, _ = fmt.Fprintf(w, "## Tables\n\n")
	} else {
		_, _ = fmt.Fprintf(w, "MODELS OVERVIEW\n")
		_, _ = fmt.Fprintf(w, "Each model has a file: <table_name>%s\n\n", f.getFileExtension())
	}

	for _, m := range sorted {
		if f.OutputFormat == formatMarkdown {
			_, _ = fmt.Fprintf(w, "- **%s** (%s)", m.TableName(), m.Name())
		} else {
			_, _ = fmt.Fprintf(w, "%s (%s)", m.TableName(), m.Name())
		}

		// Show outgoing references
		if refs := references(m); len(refs) > 0 {
			targets := make([]string, len(refs))
			for i, col := range refs {
				targets[i] = col.References.Table
			}
			_, _ = fmt.Fprintf(w, " references: %s", strings.Join(targets, ", "))
		}
		_, _ = fmt.Fprintln(w)
	}
}

func (f *MultiFileFormatter) writeModel(w io.Writer, m *schema.Metadata, all []*schema.Metadata) {
	incoming := findIncomingReferences(m.TableName(), all)

	if f.OutputFormat == formatMarkdown {
		NewMarkdownFormatter(w).FormatModel(m)
		if len(incoming) > 0 {
			_, _ = fmt.Fprintf(w, "### Referenced by\n\n")
			for _, ref := range incoming {
				_, _ = fmt.Fprintf(w, "- %s.%s → %s\n", ref.SourceTable, ref.SourceColumn, ref.TargetColumn)
			}
			_, _ = fmt.Fprintln(w)
		}
		return
	}

	NewTextFormatter(w).FormatModel(m)
	if len(incoming) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "  REFERENCED BY:")
		for _, ref := range incoming {
			_, _ = fmt.Fprintf(w, "    %s.%s → %s\n", ref.SourceTable, ref.SourceColumn, ref.TargetColumn)
		}
	}
}

// IncomingReference is a foreign key of another model pointing to this table
type IncomingReference struct {
	SourceTable  string
	SourceColumn string
	TargetColumn string
}

// findIncomingReferences finds all foreign keys pointing to this table
func findIncomingReferences(table string, models []*schema.Metadata) []IncomingReference {
	var incoming []IncomingReference
	for _, m := range models {
		for _, col := range references(m) {
			if col.References.Table == table {
				incoming = append(incoming, IncomingReference{
					SourceTable:  m.TableName(),
					SourceColumn: col.ColumnName(),
					TargetColumn: col.References.Column,
				})
			}
		}
	}
	return incoming
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == formatMarkdown {
		return ".md"
	}
	return ".txt"
}
