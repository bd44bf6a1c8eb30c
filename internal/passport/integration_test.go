package passport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/dppgraph/internal/graph"
	"github.com/rohankatakam/dppgraph/internal/graph/graphtest"
)

// One building, two elements, three products. Only the concrete has a
// supplier, a plant and an EPD; the plant's location is four hops out.
const passportFixture = `
CREATE (b:Building {id: $tag + '-building', name: 'Fixture Haus', fixture: $tag})
CREATE (structure:BuildingElement {id: $tag + '-structure', category: 'Structure', fixture: $tag})
CREATE (envelope:BuildingElement {id: $tag + '-envelope', category: 'Envelope', fixture: $tag})
CREATE (concrete:Product {id: $tag + '-concrete', name: 'Ready Mix 4000', gwp: 300.0, quantity: 2, fixture: $tag})
CREATE (clt:Product {id: $tag + '-clt', name: 'CLT Panel', gwp: -50.0, quantity: 2, fixture: $tag})
CREATE (glass:Product {id: $tag + '-glass', name: 'Glass IGU', gwp: 100.0, quantity: 1, fixture: $tag})
CREATE (holcim:Manufacturer {id: $tag + '-holcim', name: 'Holcim', fixture: $tag})
CREATE (plant:Plant {id: $tag + '-plant', name: 'Obourg', fixture: $tag})
CREATE (be:Location {id: $tag + '-be', country: 'BE', fixture: $tag})
CREATE (epd:Certification {id: $tag + '-epd', validUntil: date() + duration({days: 30}), fixture: $tag})
CREATE (b)-[:COMPOSED_OF]->(structure), (b)-[:COMPOSED_OF]->(envelope)
CREATE (structure)-[:USES_PRODUCT]->(concrete), (structure)-[:USES_PRODUCT]->(clt), (envelope)-[:USES_PRODUCT]->(glass)
CREATE (concrete)-[:SUPPLIED_BY]->(holcim), (concrete)-[:MANUFACTURED_AT]->(plant), (concrete)-[:HAS_EPD]->(epd)
CREATE (plant)-[:LOCATED_IN]->(be)
`

// A building whose only product sequesters carbon
const sequestrationFixture = `
CREATE (b:Building {id: $tag + '-timber', name: 'Timber Pavilion', fixture: $tag})
CREATE (e:BuildingElement {id: $tag + '-frame', category: 'Frame', fixture: $tag})
CREATE (p:Product {id: $tag + '-glulam', name: 'Glulam Beam', gwp: -718.0, quantity: 1, fixture: $tag})
CREATE (b)-[:COMPOSED_OF]->(e), (e)-[:USES_PRODUCT]->(p)
`

func labelsOf(g graph.Subgraph) map[string]int {
	out := map[string]int{}
	for _, n := range g.Nodes {
		for _, l := range n.Labels {
			out[l]++
		}
	}
	return out
}

func assertConsistent(t *testing.T, g graph.Subgraph) {
	t.Helper()
	ids := map[string]bool{}
	for _, n := range g.Nodes {
		assert.False(t, ids[n.ID], "duplicate node %s", n.ID)
		ids[n.ID] = true
	}
	relIDs := map[string]bool{}
	for _, r := range g.Relationships {
		assert.False(t, relIDs[r.ID], "duplicate relationship %s", r.ID)
		relIDs[r.ID] = true
		assert.True(t, ids[r.From], "relationship %s starts outside the subgraph", r.ID)
		assert.True(t, ids[r.To], "relationship %s ends outside the subgraph", r.ID)
	}
}

func TestService_Integration(t *testing.T) {
	client := graphtest.Live(t)
	tag := graphtest.Tag()
	graphtest.Seed(t, client, tag, passportFixture, sequestrationFixture)

	svc := NewService(client)
	ctx := context.Background()
	building := tag + "-building"

	t.Run("depth one consumer", func(t *testing.T) {
		g, err := svc.FetchBuildingGraph(ctx, building, 1, ViewConsumer)
		require.NoError(t, err)
		assertConsistent(t, g)
		assert.Len(t, g.Nodes, 3)
		assert.Len(t, g.Relationships, 2)
		assert.Equal(t, map[string]int{"Building": 1, "BuildingElement": 2}, labelsOf(g))
	})

	t.Run("depth four consumer stops at hidden labels", func(t *testing.T) {
		g, err := svc.FetchBuildingGraph(ctx, building, 4, ViewConsumer)
		require.NoError(t, err)
		assertConsistent(t, g)
		assert.Equal(t, map[string]int{
			"Building":        1,
			"BuildingElement": 2,
			"Product":         3,
			"Manufacturer":    1,
			"Certification":   1,
		}, labelsOf(g))
		assert.Len(t, g.Relationships, 7)
	})

	t.Run("depth four recycler", func(t *testing.T) {
		g, err := svc.FetchBuildingGraph(ctx, building, 4, ViewRecycler)
		require.NoError(t, err)
		assertConsistent(t, g)
		labels := labelsOf(g)
		assert.Zero(t, labels["Manufacturer"])
		assert.Zero(t, labels["Plant"])
		assert.Zero(t, labels["Location"])
		assert.Equal(t, 3, labels["Product"])
		assert.Equal(t, 1, labels["Certification"])
		assert.Equal(t, 1, labels["Building"], "the start node is on every path")
		assert.Len(t, g.Relationships, 6)
	})

	t.Run("regulator reaches location", func(t *testing.T) {
		g, err := svc.FetchBuildingGraph(ctx, building, 4, ViewRegulator)
		require.NoError(t, err)
		assertConsistent(t, g)
		assert.Equal(t, 1, labelsOf(g)["Location"])
	})

	t.Run("unknown building is empty", func(t *testing.T) {
		g, err := svc.FetchBuildingGraph(ctx, tag+"-missing", 2, ViewConsumer)
		require.NoError(t, err)
		assert.Empty(t, g.Nodes)
		assert.Empty(t, g.Relationships)
	})

	t.Run("expand product", func(t *testing.T) {
		g, err := svc.ExpandNode(ctx, tag+"-concrete")
		require.NoError(t, err)

		ids := make([]string, 0, len(g.Nodes))
		for _, n := range g.Nodes {
			ids = append(ids, n.ID)
		}
		assert.ElementsMatch(t, []string{tag + "-structure", tag + "-holcim", tag + "-plant", tag + "-epd"}, ids)
		assert.Len(t, g.Relationships, 4)
	})

	t.Run("carbon breakdown", func(t *testing.T) {
		c, err := svc.CarbonBreakdown(ctx, building)
		require.NoError(t, err)
		assert.Equal(t, "Fixture Haus", c.Name)
		assert.Equal(t, int64(600), c.GWP)
		require.Len(t, c.Children, 2)
		assert.Equal(t, CarbonCategory{Name: "Structure", GWP: 500, Percentage: 83.3}, c.Children[0])
		assert.Equal(t, CarbonCategory{Name: "Envelope", GWP: 100, Percentage: 16.7}, c.Children[1])
	})

	t.Run("sequestration keeps sign", func(t *testing.T) {
		c, err := svc.CarbonBreakdown(ctx, tag+"-timber")
		require.NoError(t, err)
		assert.Equal(t, int64(-718), c.GWP)
		require.Len(t, c.Children, 1)
		assert.Equal(t, int64(-718), c.Children[0].GWP)
		assert.Equal(t, 100.0, c.Children[0].Percentage)
	})
}
