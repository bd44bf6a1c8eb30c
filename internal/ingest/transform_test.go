package ingest

import (
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/dppgraph/internal/ec3"
)

func fixture(t *testing.T, category string) ec3.Product {
	t.Helper()
	products, err := ec3.FixtureProducts(category)
	require.NoError(t, err)
	require.NotEmpty(t, products)
	return products[0]
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Holcim Belgium":     "holcim-belgium",
		"AGC Glass Europe":   "agc-glass-europe",
		"  --Stora Enso!! ":  "stora-enso",
		"ArcelorMittal S.A.": "arcelormittal-s-a",
		"Rockwool (DK) A/S":  "rockwool-dk-a-s",
		"":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestTransform(t *testing.T) {
	p := fixture(t, "Wood")
	b := Transform(p)

	require.Len(t, b.Nodes, 5)
	require.Len(t, b.Relationships, 5)

	byLabel := make(map[string]NodeSpec)
	for _, n := range b.Nodes {
		byLabel[n.Label] = n
	}

	product := byLabel[LabelProduct]
	assert.Regexp(t, `^product-[0-9a-f-]{36}$`, product.ID())
	assert.Equal(t, "CLT Panel 120mm", product.Properties["name"])
	assert.Equal(t, -718.0, product.Properties["gwp"])
	assert.Equal(t, "ec3-wood-001", product.Properties["epdNumber"])

	manufacturer := byLabel[LabelManufacturer]
	assert.Equal(t, "manufacturer-stora-enso", manufacturer.ID())
	assert.Equal(t, "did:web:stora-enso.example.com", manufacturer.Properties["did"])

	assert.Equal(t, "location-finland", byLabel[LabelLocation].ID())

	cert := byLabel[LabelCertification]
	validUntil, ok := cert.Properties["validUntil"].(neo4j.Date)
	require.True(t, ok)
	assert.Equal(t, "2028-09-01", validUntil.Time().Format("2006-01-02"))

	types := make([]string, len(b.Relationships))
	for i, r := range b.Relationships {
		types[i] = r.Type
	}
	assert.Equal(t, []string{RelSuppliedBy, RelManufacturedAt, RelHasEPD, RelLocatedIn, RelLocatedIn}, types)
	assert.Equal(t, product.ID(), b.Relationships[0].From)
	assert.Equal(t, manufacturer.ID(), b.Relationships[0].To)
}

func TestTransform_StableIDs(t *testing.T) {
	p := fixture(t, "Concrete")
	first, second := Transform(p), Transform(p)
	for i := range first.Nodes {
		assert.Equal(t, first.Nodes[i].ID(), second.Nodes[i].ID())
	}

	other := p
	other.ID = "ec3-concrete-002"
	assert.NotEqual(t, first.Nodes[0].ID(), Transform(other).Nodes[0].ID())
}

func TestTransform_InvalidDateOmitted(t *testing.T) {
	p := fixture(t, "Glass")
	p.ValidUntil = "soon"
	b := Transform(p)
	for _, n := range b.Nodes {
		if n.Label == LabelCertification {
			assert.NotContains(t, n.Properties, "validUntil")
		}
	}
}

func TestTransformMany_DedupsSharedNodes(t *testing.T) {
	// Concrete, Insulation and Glass manufacturers are all in Belgium
	products := []ec3.Product{fixture(t, "Concrete"), fixture(t, "Insulation"), fixture(t, "Glass")}
	b := TransformMany(products)

	ids := make(map[string]int)
	locations := 0
	for _, n := range b.Nodes {
		ids[n.ID()]++
		if n.Label == LabelLocation {
			locations++
		}
	}
	for id, count := range ids {
		assert.Equal(t, 1, count, id)
	}
	assert.Equal(t, 1, locations)
	assert.Len(t, b.Nodes, 13) // 3 x (product, manufacturer, plant, cert) + 1 location
	assert.Len(t, b.Relationships, 15)

	again := TransformMany(append(products, products...))
	assert.Len(t, again.Nodes, 13)
	assert.Len(t, again.Relationships, 15)
}
