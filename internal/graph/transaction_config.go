package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Operation names tag every store call. They appear as transaction metadata
// in the Neo4j query log and as the operation label on query metrics.
const (
	OpBuildingGraph = "building_graph"
	OpExpandNode    = "expand_node"
	OpCarbon        = "carbon_breakdown"
	OpBuildingName  = "building_name"
	OpRiskDetector  = "risk_detector"
	OpAssistant     = "assistant_query"
	OpRawQuery      = "raw_query"
	OpIngestBatch   = "ingest_batch"
	OpHealthCheck   = "health_check"
)

// TransactionConfig defines timeout and metadata for transactions.
//
// Transaction metadata is logged by Neo4j and visible in query.log.
// Serving reads carry no timeout of their own; they are bounded by the
// driver defaults and the caller's context.
type TransactionConfig struct {
	Timeout  time.Duration
	Metadata map[string]any
}

// DefaultTransactionConfigs returns configs per operation type
func DefaultTransactionConfigs() map[string]TransactionConfig {
	read := func(op string) TransactionConfig {
		return TransactionConfig{Metadata: map[string]any{"operation": op, "type": "read"}}
	}
	return map[string]TransactionConfig{
		OpBuildingGraph: read(OpBuildingGraph),
		OpExpandNode:    read(OpExpandNode),
		OpCarbon:        read(OpCarbon),
		OpBuildingName:  read(OpBuildingName),
		OpRiskDetector:  read(OpRiskDetector),

		// Free-form query text from the assistant or the query command
		OpAssistant: {
			Metadata: map[string]any{"operation": OpAssistant, "type": "read", "source": "llm"},
		},
		OpRawQuery: read(OpRawQuery),

		// EPD import upserts
		OpIngestBatch: {
			Timeout: 3 * time.Minute,
			Metadata: map[string]any{
				"operation": OpIngestBatch,
				"type":      "write",
			},
		},

		OpHealthCheck: {
			Timeout:  5 * time.Second,
			Metadata: map[string]any{"operation": OpHealthCheck, "type": "read"},
		},
	}
}

// AsNeo4jConfig converts to Neo4j transaction config functions.
// Use with session.Run for reads and ExecuteWrite for import batches.
func (tc TransactionConfig) AsNeo4jConfig() []func(*neo4j.TransactionConfig) {
	configs := []func(*neo4j.TransactionConfig){}

	if tc.Timeout > 0 {
		configs = append(configs, neo4j.WithTxTimeout(tc.Timeout))
	}

	if len(tc.Metadata) > 0 {
		configs = append(configs, neo4j.WithTxMetadata(tc.Metadata))
	}

	return configs
}

// GetConfigForOperation retrieves the transaction config for an operation.
// Unknown operations get metadata only.
func GetConfigForOperation(operation string) TransactionConfig {
	if config, ok := DefaultTransactionConfigs()[operation]; ok {
		return config
	}

	return TransactionConfig{
		Metadata: map[string]any{
			"operation": operation,
			"type":      "unknown",
		},
	}
}

// WithCustomMetadata returns a copy of the config with one extra metadata entry
func (tc TransactionConfig) WithCustomMetadata(key string, value any) TransactionConfig {
	newConfig := TransactionConfig{
		Timeout:  tc.Timeout,
		Metadata: make(map[string]any, len(tc.Metadata)+1),
	}
	for k, v := range tc.Metadata {
		newConfig.Metadata[k] = v
	}
	newConfig.Metadata[key] = value
	return newConfig
}

type operationKey struct{}

// WithOperation tags ctx with the operation name used for metadata and metrics
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, operationKey{}, operation)
}

// OperationFrom returns the operation tagged on ctx, or OpRawQuery
func OperationFrom(ctx context.Context) string {
	if op, ok := ctx.Value(operationKey{}).(string); ok && op != "" {
		return op
	}
	return OpRawQuery
}
