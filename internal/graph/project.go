package graph

// Projection fragments for queries that return a subgraph. They expect the
// node bound to n and the relationship bound to r. Nodes are identified by
// their id property; relationships by their internal id rendered as a string.
const (
	NodeProjection         = `{id: n.id, labels: labels(n), properties: properties(n)}`
	RelationshipProjection = `{id: toString(id(r)), type: type(r), from: startNode(r).id, to: endNode(r).id, properties: properties(r)}`
)

// NodeFromMap decodes a projected node map
func NodeFromMap(m map[string]any) Node {
	props, _ := m["properties"].(map[string]any)
	return Node{
		ID:         String(m["id"]),
		Labels:     Strings(m["labels"]),
		Properties: NormalizeProperties(props),
	}
}

// RelationshipFromMap decodes a projected relationship map
func RelationshipFromMap(m map[string]any) Relationship {
	props, _ := m["properties"].(map[string]any)
	return Relationship{
		ID:         String(m["id"]),
		Type:       String(m["type"]),
		From:       String(m["from"]),
		To:         String(m["to"]),
		Properties: NormalizeProperties(props),
	}
}

// SubgraphFromRecords collects projected node and relationship lists from
// every record into one deduplicated subgraph. Missing columns are treated
// as empty lists.
func SubgraphFromRecords(records []Record, nodesKey, relsKey string) Subgraph {
	b := NewSubgraphBuilder()
	for _, record := range records {
		nodes, _ := record[nodesKey].([]any)
		for _, item := range nodes {
			switch v := item.(type) {
			case map[string]any:
				b.AddNode(NodeFromMap(v))
			case Node:
				b.AddNode(v)
			}
		}

		rels, _ := record[relsKey].([]any)
		for _, item := range rels {
			switch v := item.(type) {
			case map[string]any:
				b.AddRelationship(RelationshipFromMap(v))
			case Relationship:
				b.AddRelationship(v)
			}
		}
	}
	return b.Build()
}
