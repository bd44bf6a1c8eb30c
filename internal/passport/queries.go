package passport

import (
	"fmt"

	"github.com/rohankatakam/dppgraph/internal/graph"
)

// subgraphQueryTemplate walks every path of 1..depth hops from the building
// in any direction, keeps paths whose end node carries an allowed label, and
// returns the distinct nodes and relationships on them. The depth bound is
// the only interpolated value and comes from a clamped int.
const subgraphQueryTemplate = `
MATCH path = (b:Building {id: $buildingId})-[*1..%d]-(connected)
WHERE any(label IN labels(connected) WHERE label IN $allowedLabels)
UNWIND relationships(path) AS rel
WITH collect(DISTINCT rel) AS rels
UNWIND rels AS rel
UNWIND [startNode(rel), endNode(rel)] AS node
WITH rels, collect(DISTINCT node) AS nodes
RETURN
  [n IN nodes | ` + graph.NodeProjection + `] AS nodes,
  [r IN rels | ` + graph.RelationshipProjection + `] AS relationships
`

// ExpandQuery returns the one-hop neighbourhood of a node, any relationship
// type, both directions. The origin node itself is not included.
const ExpandQuery = `
MATCH (origin {id: $nodeId})-[r]-(n)
WITH collect(DISTINCT n) AS nodes, collect(DISTINCT r) AS rels
RETURN
  [n IN nodes | ` + graph.NodeProjection + `] AS nodes,
  [r IN rels | ` + graph.RelationshipProjection + `] AS relationships
`

// CarbonQuery sums embodied carbon per building element category.
// Elements without a category are grouped as Uncategorized.
const CarbonQuery = `
MATCH (b:Building {id: $buildingId})-[:COMPOSED_OF]->(e:BuildingElement)-[:USES_PRODUCT]->(p:Product)
RETURN coalesce(e.category, 'Uncategorized') AS category,
       sum(coalesce(p.gwp, 0) * coalesce(p.quantity, 1)) AS categoryGWP
`

// BuildingNameQuery resolves a building's display name
const BuildingNameQuery = `
MATCH (b:Building {id: $buildingId})
RETURN b.name AS name
`

// SubgraphQuery renders the traversal query for a depth, clamping it first
func SubgraphQuery(depth int) string {
	return fmt.Sprintf(subgraphQueryTemplate, ClampDepth(depth))
}
