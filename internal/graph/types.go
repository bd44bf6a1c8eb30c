package graph

import "context"

// Record is one result row keyed by column name
type Record = map[string]any

// Runner executes a parameterized read query and returns its records.
// *Client implements it; tests substitute graphtest.Runner.
type Runner interface {
	Execute(ctx context.Context, query string, params map[string]any) ([]Record, error)
}

// Node is a graph node projected for transport.
// ID is the business id stored in the node's id property.
type Node struct {
	ID         string         `json:"id"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
}

// Relationship is a graph relationship projected for transport.
// ID is the store's internal id rendered as a decimal string; From and To are business ids.
type Relationship struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	From       string         `json:"from"`
	To         string         `json:"to"`
	Properties map[string]any `json:"properties"`
}

// Subgraph is a set of nodes and relationships with no duplicate ids.
type Subgraph struct {
	Nodes         []Node         `json:"nodes"`
	Relationships []Relationship `json:"relationships"`
}

// EmptySubgraph returns a subgraph whose slices encode as [] rather than null
func EmptySubgraph() Subgraph {
	return Subgraph{Nodes: []Node{}, Relationships: []Relationship{}}
}

// SubgraphBuilder accumulates nodes and relationships, keeping the first
// occurrence of each id.
type SubgraphBuilder struct {
	graph    Subgraph
	nodeSeen map[string]struct{}
	relSeen  map[string]struct{}
}

// NewSubgraphBuilder creates an empty builder
func NewSubgraphBuilder() *SubgraphBuilder {
	return &SubgraphBuilder{
		graph:    EmptySubgraph(),
		nodeSeen: make(map[string]struct{}),
		relSeen:  make(map[string]struct{}),
	}
}

// AddNode adds n unless a node with the same id was already added.
// Nodes without a business id are dropped.
func (b *SubgraphBuilder) AddNode(n Node) bool {
	if n.ID == "" {
		return false
	}
	if _, ok := b.nodeSeen[n.ID]; ok {
		return false
	}
	b.nodeSeen[n.ID] = struct{}{}
	b.graph.Nodes = append(b.graph.Nodes, n)
	return true
}

// AddRelationship adds r unless a relationship with the same id was already
// added. Relationships touching a node without a business id are dropped
// along with that node, so no edge points at a missing endpoint.
func (b *SubgraphBuilder) AddRelationship(r Relationship) bool {
	if r.ID == "" || r.From == "" || r.To == "" {
		return false
	}
	if _, ok := b.relSeen[r.ID]; ok {
		return false
	}
	b.relSeen[r.ID] = struct{}{}
	b.graph.Relationships = append(b.graph.Relationships, r)
	return true
}

// Merge adds every node and relationship of other
func (b *SubgraphBuilder) Merge(other Subgraph) {
	for _, n := range other.Nodes {
		b.AddNode(n)
	}
	for _, r := range other.Relationships {
		b.AddRelationship(r)
	}
}

// Build returns the accumulated subgraph
func (b *SubgraphBuilder) Build() Subgraph {
	return b.graph
}
