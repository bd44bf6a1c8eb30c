// Package mcp serves the passport queries as Model Context Protocol tools
// so LLM agents can explore a building's graph.
package mcp

import (
	"context"
	"log/slog"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rohankatakam/dppgraph/internal/graph"
	"github.com/rohankatakam/dppgraph/internal/passport"
	"github.com/rohankatakam/dppgraph/internal/risk"
)

const (
	serverName    = "dpp-graph"
	serverVersion = "0.1.0"
)

// NewServer registers every tool on a new MCP server
func NewServer(p *passport.Service, r *risk.Analyzer, runner graph.Runner) *sdk.Server {
	server := sdk.NewServer(&sdk.Implementation{Name: serverName, Version: serverVersion}, nil)
	t := &toolset{passport: p, risks: r, runner: runner}

	sdk.AddTool(server, &sdk.Tool{
		Name:        "building_graph",
		Description: "Nodes and relationships around a building up to a depth, filtered to the labels a stakeholder view may see.",
	}, t.buildingGraph)
	sdk.AddTool(server, &sdk.Tool{
		Name:        "expand_node",
		Description: "One-hop neighbourhood of any node, for incremental exploration.",
	}, t.expandNode)
	sdk.AddTool(server, &sdk.Tool{
		Name:        "carbon_breakdown",
		Description: "Embodied carbon (GWP, kg CO2e) of a building: total and per building element category with percentages.",
	}, t.carbonBreakdown)
	sdk.AddTool(server, &sdk.Tool{
		Name:        "supply_chain_risks",
		Description: "Supply chain risks for a building: single-source products, expiring certifications, supplier and geographic concentration.",
	}, t.supplyChainRisks)
	sdk.AddTool(server, &sdk.Tool{
		Name:        "run_cypher",
		Description: "Run a read-only Cypher query against the passport graph. Writes are rejected by the read session.",
	}, t.runCypher)

	return server
}

// ServeStdio runs server over stdin/stdout until the client disconnects or ctx is cancelled
func ServeStdio(ctx context.Context, server *sdk.Server) error {
	slog.Default().With("component", "mcp").Info("mcp server starting on stdio", "name", serverName, "version", serverVersion)
	return server.Run(ctx, &sdk.StdioTransport{})
}
