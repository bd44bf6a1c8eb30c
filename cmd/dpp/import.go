package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rohankatakam/dppgraph/internal/config"
	"github.com/rohankatakam/dppgraph/internal/ec3"
	"github.com/rohankatakam/dppgraph/internal/graph"
	"github.com/rohankatakam/dppgraph/internal/ingest"
)

var (
	importCategories []string
	importCountry    string
	importDryRun     bool
	importBatchSize  int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import EPD products from EC3 into the graph",
	Long: `Fetch Environmental Product Declarations from the EC3 database and upsert
Product, Manufacturer, Plant, Certification and Location nodes.

Without EC3_API_KEY the built-in sample products are imported instead.
Re-running an import updates existing nodes rather than duplicating them.`,
	Example: `  dpp import --category Concrete --category Steel
  dpp import --dry-run`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringSliceVar(&importCategories, "category", nil, "EC3 category to import (repeatable; default all sample categories)")
	importCmd.Flags().StringVar(&importCountry, "country", "", "country code filter, e.g. BE")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "fetch and transform only, write nothing")
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", ingest.DefaultBatchSize, "statements per write transaction")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	categories := importCategories
	if len(categories) == 0 {
		categories = ec3.FixtureCategories()
	}

	source, err := ec3.NewClient(ec3.Options{
		APIKey:    cfg.EC3.APIKey,
		BaseURL:   cfg.EC3.BaseURL,
		RateLimit: cfg.EC3.RateLimit,
		CachePath: cfg.EC3.CachePath,
		CacheTTL:  cfg.EC3.CacheTTL,
	})
	if err != nil {
		return err
	}
	defer source.Close()
	if source.UsingFixtures() {
		logger.Warn("EC3_API_KEY not set, importing sample products")
	}

	var writer *ingest.Writer
	if !importDryRun {
		if err := requireGraph(config.ValidationContextImport); err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			graph.CloseShared(closeCtx)
		}()

		client, err := graph.Shared(ctx)
		if err != nil {
			return err
		}
		writer = ingest.NewWriter(client, importBatchSize)
	}

	result, err := ingest.NewImporter(source, writer).Run(ctx, ingest.Request{
		Categories: categories,
		Country:    importCountry,
		DryRun:     importDryRun,
	})
	if err != nil {
		return err
	}

	printImportResult(result)
	return nil
}

func printImportResult(result ingest.Result) {
	categories := make([]string, 0, len(result.Products))
	for c := range result.Products {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Category", "Products")
	for _, c := range categories {
		table.Append(c, fmt.Sprintf("%d", result.Products[c]))
	}
	table.Render()

	fmt.Printf("\nNodes: %d  Relationships: %d  Statements: %d\n",
		len(result.Batch.Nodes), len(result.Batch.Relationships), result.Statements)
	if result.Write == nil {
		fmt.Println("Dry run: nothing written")
		return
	}
	fmt.Printf("Written in %d transaction(s), %s\n", result.Write.Transactions, result.Write.Duration.Round(time.Millisecond))
}
