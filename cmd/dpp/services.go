package main

import (
	"context"

	"github.com/rohankatakam/dppgraph/internal/assistant"
	"github.com/rohankatakam/dppgraph/internal/config"
	"github.com/rohankatakam/dppgraph/internal/graph"
	"github.com/rohankatakam/dppgraph/internal/llm"
	"github.com/rohankatakam/dppgraph/internal/passport"
	"github.com/rohankatakam/dppgraph/internal/risk"
)

// services are the query layers shared by serve and mcp
type services struct {
	runner    graph.Runner
	passport  *passport.Service
	risks     *risk.Analyzer
	assistant *assistant.Assistant
}

// requireGraph validates the Neo4j settings for vctx and registers them for
// the shared client. The connection itself is made on first use.
func requireGraph(vctx config.ValidationContext) error {
	result := cfg.Validate(vctx)
	for _, w := range result.Warnings {
		logger.Warn(w)
	}
	if err := cfg.Require(vctx); err != nil {
		return err
	}
	graph.Configure(cfg.GraphSettings())
	return nil
}

func newServices(ctx context.Context, withAssistant bool) (*services, error) {
	runner := graph.SharedRunner{}
	s := &services{
		runner:   runner,
		passport: passport.NewService(runner),
		risks:    risk.NewAnalyzer(runner, risk.DefaultThresholds()),
	}
	if !withAssistant {
		return s, nil
	}

	client, err := llm.NewClient(ctx, cfg.LLMSettings())
	if err != nil {
		return nil, err
	}
	if client.IsEnabled() {
		s.assistant = assistant.New(client, runner, "")
	} else {
		logger.Warn("No LLM configured, /api/voice/chat is disabled (set LLM_PROVIDER and OPENAI_API_KEY or GEMINI_API_KEY)")
	}
	return s, nil
}
