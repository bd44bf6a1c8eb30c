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
	"github.com/rohankatakam/dppgraph/internal/server"
)

var (
	serveAddr           string
	serveHealthInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the passport HTTP API",
	Long: `Serve the building graph, expansion, carbon, risk and voice chat endpoints
over HTTP, with /health and Prometheus /metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from HTTP_ADDR or :3000)")
	serveCmd.Flags().DurationVar(&serveHealthInterval, "health-interval", 30*time.Second, "interval between background store health checks (0 disables)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := requireGraph(config.ValidationContextServe); err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := graph.CloseShared(closeCtx); err != nil {
			logger.WithError(err).Warn("Failed to close Neo4j driver")
		}
	}()

	// Warm the driver so configuration problems surface at startup; an
	// unreachable store is reported by /health rather than aborting.
	if client, err := graph.Shared(ctx); err != nil {
		logger.WithError(err).Warn("Neo4j unavailable at startup, will retry on first request")
	} else if serveHealthInterval > 0 {
		go client.WatchHealth(ctx, serveHealthInterval)
	}

	svc, err := newServices(ctx, true)
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	handler := server.NewHandler(svc.passport, svc.risks, svc.assistant, graph.SharedHealth)
	logger.WithField("addr", addr).Info("Starting passport API")
	if err := server.New(addr, server.NewRouter(handler)).Run(ctx, cfg.Server.ShutdownTimeout); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
