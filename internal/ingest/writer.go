package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rohankatakam/dppgraph/internal/graph"
)

// BatchExecutor runs statements in one write transaction
type BatchExecutor interface {
	ExecuteBatch(ctx context.Context, statements []graph.Statement) error
}

const DefaultBatchSize = 500

// WriteStats summarizes one write
type WriteStats struct {
	Nodes         int           `json:"nodes"`
	Relationships int           `json:"relationships"`
	Transactions  int           `json:"transactions"`
	Duration      time.Duration `json:"duration"`
}

// Writer upserts batches into the graph store
type Writer struct {
	exec      BatchExecutor
	batchSize int
	logger    *slog.Logger
}

// NewWriter creates a writer committing at most batchSize statements per
// transaction (DefaultBatchSize when <= 0)
func NewWriter(exec BatchExecutor, batchSize int) *Writer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Writer{
		exec:      exec,
		batchSize: batchSize,
		logger:    slog.Default().With("component", "ingest"),
	}
}

// Statements builds MERGE statements for b: nodes first, then relationships
func Statements(b Batch) ([]graph.Statement, error) {
	statements := make([]graph.Statement, 0, len(b.Nodes)+len(b.Relationships))

	for _, n := range b.Nodes {
		props := make(map[string]any, len(n.Properties))
		for k, v := range n.Properties {
			if k != "id" {
				props[k] = v
			}
		}
		builder := graph.NewCypherBuilder()
		query, err := builder.BuildMergeNode(n.Label, n.ID(), props)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID(), err)
		}
		statements = append(statements, builder.Statement(query))
	}

	for _, r := range b.Relationships {
		builder := graph.NewCypherBuilder()
		query, err := builder.BuildMergeEdge(r.FromLabel, r.From, r.Type, r.ToLabel, r.To, nil)
		if err != nil {
			return nil, fmt.Errorf("relationship %s %s->%s: %w", r.Type, r.From, r.To, err)
		}
		statements = append(statements, builder.Statement(query))
	}

	return statements, nil
}

// Write upserts b. Statements are committed in chunks of the batch size so
// relationships only reference nodes committed earlier or in the same chunk.
func (w *Writer) Write(ctx context.Context, b Batch) (WriteStats, error) {
	start := time.Now()
	stats := WriteStats{Nodes: len(b.Nodes), Relationships: len(b.Relationships)}

	statements, err := Statements(b)
	if err != nil {
		return stats, err
	}

	for i := 0; i < len(statements); i += w.batchSize {
		end := min(i+w.batchSize, len(statements))
		if err := w.exec.ExecuteBatch(ctx, statements[i:end]); err != nil {
			return stats, err
		}
		stats.Transactions++
	}

	stats.Duration = time.Since(start)
	w.logger.Info("batch written",
		"nodes", stats.Nodes,
		"relationships", stats.Relationships,
		"transactions", stats.Transactions,
		"duration", stats.Duration)
	return stats, nil
}
