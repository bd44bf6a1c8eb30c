package ingest

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/rohankatakam/dppgraph/internal/ec3"
	"github.com/rohankatakam/dppgraph/internal/errors"
)

// ProductSource lists EPDs by category
type ProductSource interface {
	SearchProducts(ctx context.Context, category, country string) ([]ec3.Product, error)
}

// Request selects what to import
type Request struct {
	Categories []string
	Country    string
	DryRun     bool // transform only, write nothing
}

// Result reports what an import fetched and wrote
type Result struct {
	Products   map[string]int `json:"products"` // per category
	Batch      Batch          `json:"-"`
	Statements int            `json:"statements"`
	Write      *WriteStats    `json:"write,omitempty"`
}

// Importer fetches products and writes them to the graph
type Importer struct {
	source      ProductSource
	writer      *Writer
	concurrency int
	logger      *slog.Logger
}

// NewImporter creates an importer. writer may be nil for dry runs.
func NewImporter(source ProductSource, writer *Writer) *Importer {
	return &Importer{
		source:      source,
		writer:      writer,
		concurrency: 4,
		logger:      slog.Default().With("component", "importer"),
	}
}

// Run fetches every category in parallel, transforms the products into one
// deduplicated batch and writes it unless the request is a dry run.
func (im *Importer) Run(ctx context.Context, req Request) (Result, error) {
	if len(req.Categories) == 0 {
		return Result{}, errors.ValidationError("at least one category is required")
	}

	fetched := make([][]ec3.Product, len(req.Categories))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.concurrency)
	for i, category := range req.Categories {
		g.Go(func() error {
			products, err := im.source.SearchProducts(gctx, category, req.Country)
			if err != nil {
				return err
			}
			fetched[i] = products
			im.logger.Info("category fetched", "category", category, "products", len(products))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{Products: make(map[string]int, len(req.Categories))}
	var all []ec3.Product
	for i, category := range req.Categories {
		result.Products[category] += len(fetched[i])
		all = append(all, fetched[i]...)
	}

	result.Batch = TransformMany(all)
	statements, err := Statements(result.Batch)
	if err != nil {
		return Result{}, errors.InternalErrorf("invalid import batch: %v", err)
	}
	result.Statements = len(statements)

	if req.DryRun {
		im.logger.Info("dry run, nothing written",
			"nodes", len(result.Batch.Nodes),
			"relationships", len(result.Batch.Relationships))
		return result, nil
	}
	if im.writer == nil {
		return Result{}, errors.InternalError("importer has no writer configured")
	}

	stats, err := im.writer.Write(ctx, result.Batch)
	if err != nil {
		return Result{}, err
	}
	result.Write = &stats
	return result, nil
}
