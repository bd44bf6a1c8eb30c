package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/dppgraph/internal/config"
	"github.com/rohankatakam/dppgraph/internal/graph"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check Neo4j connectivity",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := requireGraph(config.ValidationContextQuery); err != nil {
		return err
	}
	defer graph.CloseShared(context.Background())

	status := graph.SharedHealth(ctx)

	fmt.Printf("Neo4j:     %s\n", cfg.Neo4j.URI)
	fmt.Printf("Database:  %s\n", cfg.Neo4j.Database)
	if !status.Healthy {
		fmt.Printf("Status:    unreachable\n")
		return fmt.Errorf("health check failed: %s", status.Message)
	}
	fmt.Printf("Status:    ok\n")
	fmt.Printf("Latency:   %dms\n", status.LatencyMs)
	fmt.Printf("Pool size: %d\n", status.MaxPoolSize)
	return nil
}
