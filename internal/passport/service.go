// Package passport answers the read queries behind a building's digital
// product passport: the stakeholder-filtered subgraph, one-hop expansion and
// the embodied carbon breakdown.
package passport

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/rohankatakam/dppgraph/internal/errors"
	"github.com/rohankatakam/dppgraph/internal/graph"
)

// Service runs passport queries against a graph store
type Service struct {
	runner graph.Runner
	logger *slog.Logger
}

// NewService creates a passport service over runner
func NewService(runner graph.Runner) *Service {
	return &Service{
		runner: runner,
		logger: slog.Default().With("component", "passport"),
	}
}

// FetchBuildingGraph returns the nodes and relationships reachable from a
// building within depth hops (clamped to [1,4]) whose paths end on a label
// visible to view. A building that does not exist yields an empty subgraph.
func (s *Service) FetchBuildingGraph(ctx context.Context, buildingID string, depth int, view View) (graph.Subgraph, error) {
	depth = ClampDepth(depth)
	view = ParseView(string(view))

	records, err := s.runner.Execute(graph.WithOperation(ctx, graph.OpBuildingGraph), SubgraphQuery(depth), map[string]any{
		"buildingId":    buildingID,
		"allowedLabels": view.Labels(),
	})
	if err != nil {
		return graph.Subgraph{}, errors.DatabaseErrorf(err, "failed to fetch building graph").
			WithContext("building_id", buildingID)
	}

	sub := graph.SubgraphFromRecords(records, "nodes", "relationships")
	s.logger.Debug("building graph fetched",
		"building_id", buildingID,
		"depth", depth,
		"view", view,
		"nodes", len(sub.Nodes),
		"relationships", len(sub.Relationships))
	return sub, nil
}

// ExpandNode returns the one-hop neighbourhood of any node. Callers merge
// the result into an earlier subgraph by node and relationship id.
func (s *Service) ExpandNode(ctx context.Context, nodeID string) (graph.Subgraph, error) {
	records, err := s.runner.Execute(graph.WithOperation(ctx, graph.OpExpandNode), ExpandQuery, map[string]any{
		"nodeId": nodeID,
	})
	if err != nil {
		return graph.Subgraph{}, errors.DatabaseErrorf(err, "failed to expand node").
			WithContext("node_id", nodeID)
	}

	sub := graph.SubgraphFromRecords(records, "nodes", "relationships")
	s.logger.Debug("node expanded", "node_id", nodeID, "nodes", len(sub.Nodes))
	return sub, nil
}

// CarbonCategory is one building element category in a breakdown
type CarbonCategory struct {
	Name       string  `json:"name"`
	GWP        int64   `json:"gwp"`
	Percentage float64 `json:"percentage"`
}

// CarbonBreakdown is a building's embodied carbon, total and per category.
// Percentage on the root is always 100.
type CarbonBreakdown struct {
	Name       string           `json:"name"`
	GWP        int64            `json:"gwp"`
	Percentage float64          `json:"percentage"`
	Children   []CarbonCategory `json:"children"`
}

const defaultBuildingName = "Building"

// CarbonBreakdown computes total and per-category GWP for a building.
//
// Percentages divide by the signed total, so a building whose net carbon is
// negative reports positive shares for sequestering categories. A zero total
// gives every category 0%.
func (s *Service) CarbonBreakdown(ctx context.Context, buildingID string) (CarbonBreakdown, error) {
	params := map[string]any{"buildingId": buildingID}

	records, err := s.runner.Execute(graph.WithOperation(ctx, graph.OpCarbon), CarbonQuery, params)
	if err != nil {
		return CarbonBreakdown{}, errors.DatabaseErrorf(err, "failed to fetch carbon data").
			WithContext("building_id", buildingID)
	}

	type category struct {
		name string
		gwp  float64
	}
	categories := make([]category, 0, len(records))
	var total float64
	for _, record := range records {
		c := category{
			name: graph.String(record["category"]),
			gwp:  graph.Number(record["categoryGWP"]),
		}
		categories = append(categories, c)
		total += c.gwp
	}

	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].gwp > categories[j].gwp
	})

	children := make([]CarbonCategory, 0, len(categories))
	for _, c := range categories {
		children = append(children, CarbonCategory{
			Name:       c.name,
			GWP:        roundHalfUp(c.gwp),
			Percentage: Percentage(c.gwp, total),
		})
	}

	return CarbonBreakdown{
		Name:       s.buildingName(ctx, params),
		GWP:        roundHalfUp(total),
		Percentage: 100,
		Children:   children,
	}, nil
}

// buildingName is best effort: any failure falls back to the default name
func (s *Service) buildingName(ctx context.Context, params map[string]any) string {
	records, err := s.runner.Execute(graph.WithOperation(ctx, graph.OpBuildingName), BuildingNameQuery, params)
	if err != nil {
		s.logger.Warn("building name lookup failed", "building_id", params["buildingId"], "error", err)
		return defaultBuildingName
	}
	if len(records) == 0 {
		return defaultBuildingName
	}
	if name := strings.TrimSpace(graph.String(records[0]["name"])); name != "" {
		return name
	}
	return defaultBuildingName
}

// Percentage returns part as a share of total rounded to one decimal (halves
// away from zero), or 0 when total is 0. The sign of total is kept.
func Percentage(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(part*1000/total) / 10
}

// roundHalfUp rounds to the nearest integer with halves toward +Inf
func roundHalfUp(x float64) int64 {
	return int64(math.Floor(x + 0.5))
}
