package formatter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pterm/pterm"

	"github.com/tordrt/litorm/adapter"
)

// FormatRows writes a result as a table. Column order follows the result
// fields; without fields the row keys are sorted.
func FormatRows(w io.Writer, res *adapter.Result) error {
	if res == nil || len(res.Rows) == 0 {
		_, err := fmt.Fprintf(w, "(%d rows)\n", rowCount(res))
		return err
	}

	headers := columnNames(res)
	data := pterm.TableData{headers}
	for _, row := range res.Rows {
		line := make([]string, len(headers))
		for i, h := range headers {
			line[i] = formatValue(row[h])
		}
		data = append(data, line)
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n(%d rows)\n", strings.TrimRight(table, "\n"), len(res.Rows))
	return err
}

func rowCount(res *adapter.Result) int64 {
	if res == nil {
		return 0
	}
	return res.RowCount
}

func columnNames(res *adapter.Result) []string {
	if len(res.Fields) > 0 {
		names := make([]string, len(res.Fields))
		for i, f := range res.Fields {
			names[i] = f.Name
		}
		return names
	}
	var names []string
	for k := range res.Rows[0] {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
