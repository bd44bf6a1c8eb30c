package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rohankatakam/dppgraph/internal/config"
	"github.com/rohankatakam/dppgraph/internal/graph"
)

var (
	queryParams map[string]string
	queryJSON   bool
)

var queryCmd = &cobra.Command{
	Use:   "query <cypher>",
	Short: "Run a read-only Cypher query",
	Long: `Run a Cypher query in a read session and print the normalized records.
Values are passed as parameters with --param name=value; numeric values are
sent as numbers.`,
	Example: `  dpp query 'MATCH (p:Product) WHERE p.gwp < $max RETURN p.name, p.gwp' --param max=0`,
	Args:    cobra.ExactArgs(1),
	RunE:    runQuery,
}

func init() {
	queryCmd.Flags().StringToStringVar(&queryParams, "param", nil, "query parameter name=value (repeatable)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "print records as JSON")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := requireGraph(config.ValidationContextQuery); err != nil {
		return err
	}
	defer graph.CloseShared(ctx)

	params := make(map[string]any, len(queryParams))
	for k, v := range queryParams {
		params[k] = parseParam(v)
	}

	records, err := graph.SharedRunner{}.Execute(graph.WithOperation(ctx, graph.OpRawQuery), args[0], params)
	if err != nil {
		return err
	}

	rows := make([]graph.Record, len(records))
	for i, r := range records {
		rows[i] = graph.NormalizeRecord(r)
	}

	if queryJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	printRecords(rows)
	return nil
}

// parseParam sends integers and floats as numbers, everything else as text
func parseParam(v string) any {
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

func printRecords(rows []graph.Record) {
	if len(rows) == 0 {
		fmt.Println("(no records)")
		return
	}

	columns := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header(header...)
	for _, row := range rows {
		cells := make([]any, len(columns))
		for i, c := range columns {
			cells[i] = graph.FormatDisplay(row[c])
		}
		table.Append(cells...)
	}
	table.Render()
	fmt.Printf("%d record(s)\n", len(rows))
}
