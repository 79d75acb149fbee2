package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tordrt/litorm"
	"github.com/tordrt/litorm/adapter"
	"github.com/tordrt/litorm/internal/formatter"
	"github.com/tordrt/litorm/query"
	"github.com/tordrt/litorm/schema"
)

var (
	whereFlags []string
	orderFlag  string
	limitFlag  int
	offsetFlag int
	format     string
	outputFile string
	outputDir  string
)

var queryCmd = &cobra.Command{
	Use:   "query SQL [PARAMS...]",
	Short: "Run a raw SQL statement with $n parameters",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

var findCmd = &cobra.Command{
	Use:   "find MODEL",
	Short: "Select entities of a model",
	Example: `  litorm find User --where active=true --where "age>=18" --order name --limit 10
  litorm find User --where id=42`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Document the models of the models file",
	Args:  cobra.NoArgs,
	RunE:  runDescribe,
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Create missing tables for every model",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [TABLE]",
	Short: "List live tables, or the columns of one table",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

var dropCmd = &cobra.Command{
	Use:   "drop TABLE",
	Short: "Drop a table if it exists",
	Args:  cobra.ExactArgs(1),
	RunE:  runDrop,
}

func init() {
	findCmd.Flags().StringArrayVarP(&whereFlags, "where", "w", nil, "Condition column<op>value, op is one of = != <> >= <= > < ~ (LIKE); repeatable")
	findCmd.Flags().StringVar(&orderFlag, "order", "", "Order by column[:asc|desc], comma-separated")
	findCmd.Flags().IntVarP(&limitFlag, "limit", "l", 0, "Maximum number of rows (0: no limit)")
	findCmd.Flags().IntVar(&offsetFlag, "offset", 0, "Rows to skip")

	describeCmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text or markdown (default: text)")
	describeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	describeCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for multi-file output")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := connect(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer disconnect(ctx, conn)

	params := make([]any, len(args)-1)
	for i, raw := range args[1:] {
		params[i] = parseValue(raw)
	}

	res, err := conn.Adapter().Query(ctx, args[0], params)
	if err != nil {
		return err
	}
	return formatter.FormatRows(cmd.OutOrStdout(), res)
}

func runFind(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg := schema.NewRegistry()
	if _, err := cfg.LoadModels(reg); err != nil {
		return err
	}

	conn, err := connect(ctx, cfg, reg)
	if err != nil {
		return err
	}
	defer disconnect(ctx, conn)

	repo, err := conn.RepositoryFor(args[0])
	if err != nil {
		return err
	}

	b, err := findBuilder(repo.Builder(), whereFlags, orderFlag, limitFlag, offsetFlag)
	if err != nil {
		return err
	}

	found, err := repo.Find(ctx, b)
	if err != nil {
		return err
	}

	meta := repo.Metadata()
	res := &adapter.Result{RowCount: int64(len(found))}
	for _, p := range meta.Properties() {
		res.Fields = append(res.Fields, adapter.Field{Name: p})
	}
	for _, e := range found {
		res.Rows = append(res.Rows, e.Values())
	}
	return formatter.FormatRows(cmd.OutOrStdout(), res)
}

// findBuilder applies the find flags to a select builder.
func findBuilder(b *query.Builder, where []string, order string, limit, offset int) (*query.Builder, error) {
	b.Select()
	for _, w := range where {
		cond, err := parseCondition(w)
		if err != nil {
			return nil, err
		}
		b.Where(cond)
	}
	orders, err := parseOrder(order)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		b.OrderBy(o.Column, o.Direction)
	}
	if limit > 0 {
		b.Limit(limit)
	}
	if offset > 0 {
		b.Offset(offset)
	}
	return b, b.Err()
}

func runDescribe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if format == "" {
		format = cfg.Format
	}

	models, err := cfg.LoadModels(schema.NewRegistry())
	if err != nil {
		return err
	}

	// Validate flag combinations
	if outputDir != "" && outputFile != "" {
		return fmt.Errorf("cannot use both --output-dir and --output flags")
	}

	// Multi-file output
	if outputDir != "" {
		if err := formatter.NewMultiFileFormatter(outputDir, format).Format(models); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return nil
	}

	// Single-file output
	writer := cmd.OutOrStdout()
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
			}
		}()
		writer = f
	}

	switch format {
	case "text":
		err = formatter.NewTextFormatter(writer).Format(models)
	case "markdown":
		err = formatter.NewMarkdownFormatter(writer).Format(models)
	default:
		return fmt.Errorf("invalid format: %s (must be 'text' or 'markdown')", format)
	}
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg := schema.NewRegistry()
	models, err := cfg.LoadModels(reg)
	if err != nil {
		return err
	}

	conn, err := connect(ctx, cfg, reg)
	if err != nil {
		return err
	}
	defer disconnect(ctx, conn)

	created, err := conn.EnsureTables(ctx)
	for _, table := range created {
		pterm.Success.Printfln("created table %s", table)
	}
	if err != nil {
		return err
	}
	if len(created) == 0 {
		pterm.Info.Printfln("all %d tables exist", len(models))
	}

	diffs, err := conn.CheckTables(ctx)
	if errors.Is(err, litorm.ErrInspectUnsupported) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, d := range diffs {
		if len(d.Missing) > 0 {
			pterm.Warning.Printfln("%s: columns missing in database: %s", d.Table, strings.Join(d.Missing, ", "))
		}
		if len(d.Extra) > 0 {
			pterm.Warning.Printfln("%s: columns not declared in model %s: %s", d.Table, d.Model, strings.Join(d.Extra, ", "))
		}
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := connect(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer disconnect(ctx, conn)

	insp, ok := conn.Adapter().(adapter.Inspector)
	if !ok {
		return litorm.ErrInspectUnsupported
	}

	if len(args) == 0 {
		tables, err := insp.Tables(ctx)
		if err != nil {
			return err
		}
		res := &adapter.Result{Fields: []adapter.Field{{Name: "table"}}, RowCount: int64(len(tables))}
		for _, t := range tables {
			res.Rows = append(res.Rows, adapter.Row{"table": t})
		}
		return formatter.FormatRows(cmd.OutOrStdout(), res)
	}

	cols, err := insp.Columns(ctx, args[0])
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return fmt.Errorf("table %s not found", args[0])
	}
	return formatter.FormatRows(cmd.OutOrStdout(), columnsResult(cols))
}

func columnsResult(cols []adapter.ColumnInfo) *adapter.Result {
	res := &adapter.Result{RowCount: int64(len(cols))}
	for _, name := range []string{"column", "type", "nullable", "default", "primary"} {
		res.Fields = append(res.Fields, adapter.Field{Name: name})
	}
	for _, c := range cols {
		res.Rows = append(res.Rows, adapter.Row{
			"column":   c.Name,
			"type":     c.Type,
			"nullable": c.Nullable,
			"default":  c.Default,
			"primary":  c.Primary,
		})
	}
	return res
}

func runDrop(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := connect(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer disconnect(ctx, conn)

	if err := conn.Adapter().DropTable(ctx, args[0]); err != nil {
		return err
	}
	pterm.Success.Printfln("dropped table %s", args[0])
	return nil
}

var conditionOperators = []struct {
	token string
	op    string
}{
	// Two-character tokens first so ">=" is not read as ">".
	{"!=", "!="},
	{"<>", "<>"},
	{">=", ">="},
	{"<=", "<="},
	{"=", "="},
	{">", ">"},
	{"<", "<"},
	{"~", "LIKE"},
}

// parseCondition parses "column<op>value", for example "age>=18".
func parseCondition(s string) (query.Condition, error) {
	best, bestAt := -1, -1
	for i, o := range conditionOperators {
		at := strings.Index(s, o.token)
		if at > 0 && (bestAt == -1 || at < bestAt || (at == bestAt && len(o.token) > len(conditionOperators[best].token))) {
			best, bestAt = i, at
		}
	}
	if best == -1 {
		return query.Condition{}, fmt.Errorf("invalid condition %q (expected column<op>value)", s)
	}
	o := conditionOperators[best]
	column := strings.TrimSpace(s[:bestAt])
	value := parseValue(strings.TrimSpace(s[bestAt+len(o.token):]))

	switch {
	case value == nil && o.op == "=":
		return query.Cond(column, "IS", nil), nil
	case value == nil && (o.op == "!=" || o.op == "<>"):
		return query.Cond(column, "IS NOT", nil), nil
	}
	return query.Cond(column, o.op, value), nil
}

// parseOrder parses "name,created_at:desc".
func parseOrder(s string) ([]query.Order, error) {
	var orders []query.Order
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		column, dir, _ := strings.Cut(part, ":")
		o := query.Order{Column: strings.TrimSpace(column), Direction: query.Asc}
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case "", "asc":
		case "desc":
			o.Direction = query.Desc
		default:
			return nil, fmt.Errorf("invalid order direction %q (must be asc or desc)", dir)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// parseValue converts a command line argument to a query parameter:
// null, true, false, integers and floats are typed, anything else is a
// string. Quotes force a string.
func parseValue(s string) any {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	switch strings.ToLower(s) {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
