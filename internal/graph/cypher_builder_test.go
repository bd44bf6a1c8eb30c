package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMergeNode(t *testing.T) {
	b := NewCypherBuilder()
	query, err := b.BuildMergeNode("Product", "product-abc", map[string]any{
		"name":     "Ready Mix 4000",
		"gwp":      312.4,
		"category": "Concrete",
	})
	require.NoError(t, err)

	assert.Equal(t, "MERGE (n:Product {id: $p0}) SET n.category = $p1, n.gwp = $p2, n.name = $p3", query)
	assert.Equal(t, map[string]any{
		"p0": "product-abc",
		"p1": "Concrete",
		"p2": 312.4,
		"p3": "Ready Mix 4000",
	}, b.Params())
}

func TestBuildMergeNode_ValuesNeverInQueryText(t *testing.T) {
	b := NewCypherBuilder()
	hostile := "x'}) DETACH DELETE n //"
	query, err := b.BuildMergeNode("Manufacturer", hostile, map[string]any{"name": hostile})
	require.NoError(t, err)
	assert.NotContains(t, query, "DETACH")
}

func TestBuildMergeNode_RejectsBadIdentifiers(t *testing.T) {
	tests := []struct {
		name  string
		label string
		id    string
		props map[string]any
	}{
		{"label injection", "Product) DETACH DELETE (n", "p1", nil},
		{"empty label", "", "p1", nil},
		{"missing id", "Product", "", nil},
		{"property key injection", "Product", "p1", map[string]any{"name = 1, n.x": "v"}},
		{"leading digit", "1Product", "p1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCypherBuilder().BuildMergeNode(tt.label, tt.id, tt.props)
			assert.Error(t, err)
		})
	}
}

func TestBuildMergeEdge(t *testing.T) {
	b := NewCypherBuilder()
	query, err := b.BuildMergeEdge("Product", "product-1", "SUPPLIED_BY", "Manufacturer", "manufacturer-acme", nil)
	require.NoError(t, err)

	assert.Equal(t,
		"MATCH (from:Product {id: $p0}) MATCH (to:Manufacturer {id: $p1}) MERGE (from)-[r:SUPPLIED_BY]->(to)",
		query)

	stmt := b.Statement(query)
	assert.Equal(t, "product-1", stmt.Params["p0"])
	assert.Equal(t, "manufacturer-acme", stmt.Params["p1"])

	_, err = NewCypherBuilder().BuildMergeEdge("Product", "a", "SUPPLIED-BY", "Manufacturer", "b", nil)
	assert.Error(t, err)
}

func TestIsValidIdentifier(t *testing.T) {
	assert.True(t, IsValidIdentifier("BuildingElement"))
	assert.True(t, IsValidIdentifier("_valid_until"))
	assert.True(t, IsValidIdentifier("USES_PRODUCT"))
	assert.False(t, IsValidIdentifier(""))
	assert.False(t, IsValidIdentifier("has space"))
	assert.False(t, IsValidIdentifier("a`b"))
}
