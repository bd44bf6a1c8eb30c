package mcp

import (
	"context"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rohankatakam/dppgraph/internal/errors"
	"github.com/rohankatakam/dppgraph/internal/graph"
	"github.com/rohankatakam/dppgraph/internal/passport"
	"github.com/rohankatakam/dppgraph/internal/risk"
)

// BuildingGraphInput are the arguments of building_graph
type BuildingGraphInput struct {
	BuildingID string `json:"building_id" jsonschema:"business id of the building, e.g. building-001"`
	Depth      int    `json:"depth,omitempty" jsonschema:"traversal depth 1-4, default 2"`
	View       string `json:"view,omitempty" jsonschema:"stakeholder view: consumer, manufacturer, recycler or regulator"`
}

// NodeInput are the arguments of expand_node
type NodeInput struct {
	NodeID string `json:"node_id" jsonschema:"business id of any node"`
}

// BuildingInput are the arguments of carbon_breakdown and supply_chain_risks
type BuildingInput struct {
	BuildingID string `json:"building_id" jsonschema:"business id of the building"`
}

// CypherInput are the arguments of run_cypher
type CypherInput struct {
	Query  string         `json:"query" jsonschema:"read-only Cypher query"`
	Params map[string]any `json:"params,omitempty" jsonschema:"query parameters referenced as $name"`
}

// CypherOutput is the result of run_cypher
type CypherOutput struct {
	Records []map[string]any `json:"records"`
	Count   int              `json:"count"`
}

// toolset binds the passport services to MCP tool handlers
type toolset struct {
	passport *passport.Service
	risks    *risk.Analyzer
	runner   graph.Runner
}

func (t *toolset) buildingGraph(ctx context.Context, req *sdk.CallToolRequest, in BuildingGraphInput) (*sdk.CallToolResult, graph.Subgraph, error) {
	id, err := requireID("building_id", in.BuildingID)
	if err != nil {
		return nil, graph.Subgraph{}, err
	}
	depth := in.Depth
	if depth == 0 {
		depth = passport.DefaultDepth
	}
	sub, err := t.passport.FetchBuildingGraph(ctx, id, depth, passport.ParseView(in.View))
	return nil, sub, err
}

func (t *toolset) expandNode(ctx context.Context, req *sdk.CallToolRequest, in NodeInput) (*sdk.CallToolResult, graph.Subgraph, error) {
	id, err := requireID("node_id", in.NodeID)
	if err != nil {
		return nil, graph.Subgraph{}, err
	}
	sub, err := t.passport.ExpandNode(ctx, id)
	return nil, sub, err
}

func (t *toolset) carbonBreakdown(ctx context.Context, req *sdk.CallToolRequest, in BuildingInput) (*sdk.CallToolResult, passport.CarbonBreakdown, error) {
	id, err := requireID("building_id", in.BuildingID)
	if err != nil {
		return nil, passport.CarbonBreakdown{}, err
	}
	breakdown, err := t.passport.CarbonBreakdown(ctx, id)
	return nil, breakdown, err
}

func (t *toolset) supplyChainRisks(ctx context.Context, req *sdk.CallToolRequest, in BuildingInput) (*sdk.CallToolResult, risk.Report, error) {
	id, err := requireID("building_id", in.BuildingID)
	if err != nil {
		return nil, risk.Report{}, err
	}
	report, err := t.risks.Analyze(ctx, id)
	return nil, report, err
}

func (t *toolset) runCypher(ctx context.Context, req *sdk.CallToolRequest, in CypherInput) (*sdk.CallToolResult, CypherOutput, error) {
	if strings.TrimSpace(in.Query) == "" {
		return nil, CypherOutput{}, errors.ValidationError("query is required")
	}
	records, err := t.runner.Execute(graph.WithOperation(ctx, graph.OpRawQuery), in.Query, in.Params)
	if err != nil {
		return nil, CypherOutput{}, err
	}

	out := CypherOutput{Records: make([]map[string]any, 0, len(records)), Count: len(records)}
	for _, r := range records {
		out.Records = append(out.Records, graph.NormalizeRecord(r))
	}
	return nil, out, nil
}

func requireID(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", errors.ValidationErrorf("%s is required", field)
	}
	return value, nil
}
