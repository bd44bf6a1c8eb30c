package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/dppgraph/internal/config"
	"github.com/rohankatakam/dppgraph/internal/graph"
	"github.com/rohankatakam/dppgraph/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Expose building_graph, expand_node, carbon_breakdown, supply_chain_risks
and run_cypher as Model Context Protocol tools over stdin/stdout.

Logs go to stderr so they never interleave with protocol messages.`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := requireGraph(config.ValidationContextQuery); err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		graph.CloseShared(closeCtx)
	}()

	svc, err := newServices(ctx, false)
	if err != nil {
		return err
	}
	return mcp.ServeStdio(ctx, mcp.NewServer(svc.passport, svc.risks, svc.runner))
}
