package litorm

import (
	"context"
	"fmt"

	"github.com/tordrt/litorm/adapter"
)

// TableDiff compares a model with its live table.
type TableDiff struct {
	Model   string
	Table   string
	Exists  bool
	Missing []string // declared columns the table lacks
	Extra   []string // table columns the model does not declare
}

// InSync reports whether the table exists with exactly the declared columns.
func (d TableDiff) InSync() bool {
	return d.Exists && len(d.Missing) == 0 && len(d.Extra) == 0
}

// CheckTables compares every registered model with the live schema. It
// only reads; use EnsureTables to create missing tables.
func (c *Connection) CheckTables(ctx context.Context) ([]TableDiff, error) {
	insp, ok := c.adapter.(adapter.Inspector)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInspectUnsupported, c.tag)
	}

	var diffs []TableDiff
	for _, meta := range c.registry.Models() {
		d := TableDiff{Model: meta.Name(), Table: meta.TableName()}

		live, err := insp.Columns(ctx, d.Table)
		if err != nil {
			return nil, fmt.Errorf("failed to read columns of %s: %w", d.Table, err)
		}
		d.Exists = len(live) > 0

		if d.Exists {
			declared := make(map[string]bool)
			for _, col := range meta.Columns() {
				declared[col.ColumnName()] = true
			}
			liveNames := make(map[string]bool, len(live))
			for _, col := range live {
				liveNames[col.Name] = true
				if !declared[col.Name] {
					d.Extra = append(d.Extra, col.Name)
				}
			}
			for _, col := range meta.Columns() {
				if !liveNames[col.ColumnName()] {
					d.Missing = append(d.Missing, col.ColumnName())
				}
			}
		}

		if !d.InSync() {
			c.logger.WarnContext(ctx, "table out of sync", "model", d.Model, "table", d.Table,
				"exists", d.Exists, "missing", d.Missing, "extra", d.Extra)
		}
		diffs = append(diffs, d)
	}
	return diffs, nil
}
