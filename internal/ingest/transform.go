// Package ingest shapes EC3 products into passport graph nodes and writes
// them to the store with idempotent upserts.
package ingest

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/rohankatakam/dppgraph/internal/ec3"
)

// Node labels and relationship types written by the importer
const (
	LabelProduct       = "Product"
	LabelManufacturer  = "Manufacturer"
	LabelPlant         = "Plant"
	LabelCertification = "Certification"
	LabelLocation      = "Location"

	RelSuppliedBy     = "SUPPLIED_BY"
	RelManufacturedAt = "MANUFACTURED_AT"
	RelHasEPD         = "HAS_EPD"
	RelLocatedIn      = "LOCATED_IN"
)

// idNamespace seeds name-based UUIDs so re-importing the same EPD yields the same ids
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://buildingtransparency.org/api/epds"))

// NodeSpec is a node to upsert; Properties always carries "id"
type NodeSpec struct {
	Label      string
	Properties map[string]any
}

// ID returns the node's business id
func (n NodeSpec) ID() string {
	id, _ := n.Properties["id"].(string)
	return id
}

// RelSpec is a relationship to upsert between two nodes identified by id
type RelSpec struct {
	Type      string
	FromLabel string
	From      string
	ToLabel   string
	To        string
}

func (r RelSpec) key() string {
	return r.Type + "|" + r.From + "|" + r.To
}

// Batch is the graph shape of one or more products
type Batch struct {
	Nodes         []NodeSpec
	Relationships []RelSpec
}

// Transform maps one EC3 product to its Product, Manufacturer, Plant,
// Certification and Location nodes and the five relationships between them.
func Transform(p ec3.Product) Batch {
	manufacturerSlug := Slugify(p.Manufacturer.Name)

	productID := "product-" + nameUUID("product", p.ID)
	manufacturerID := "manufacturer-" + manufacturerSlug
	plantID := "plant-" + nameUUID("plant", manufacturerSlug, p.Plant.Name)
	certificationID := "cert-" + nameUUID("cert", p.ID)
	locationID := "location-" + Slugify(p.Manufacturer.Country)

	certification := map[string]any{
		"id":     certificationID,
		"name":   "Environmental Product Declaration",
		"type":   "EPD",
		"issuer": "EC3",
	}
	if validUntil, ok := parseDate(p.ValidUntil); ok {
		certification["validUntil"] = validUntil
	}
	if p.EPDURL != "" {
		certification["url"] = p.EPDURL
	}

	nodes := []NodeSpec{
		{Label: LabelProduct, Properties: map[string]any{
			"id":           productID,
			"name":         p.Name,
			"gwp":          p.GWP,
			"declaredUnit": p.DeclaredUnit,
			"epdNumber":    p.ID,
		}},
		{Label: LabelManufacturer, Properties: map[string]any{
			"id":      manufacturerID,
			"name":    p.Manufacturer.Name,
			"country": p.Manufacturer.Country,
			"did":     "did:web:" + manufacturerSlug + ".example.com",
		}},
		{Label: LabelPlant, Properties: map[string]any{
			"id":        plantID,
			"name":      p.Plant.Name,
			"latitude":  p.Plant.Latitude,
			"longitude": p.Plant.Longitude,
		}},
		{Label: LabelCertification, Properties: certification},
		{Label: LabelLocation, Properties: map[string]any{
			"id":      locationID,
			"country": p.Manufacturer.Country,
		}},
	}

	rels := []RelSpec{
		{Type: RelSuppliedBy, FromLabel: LabelProduct, From: productID, ToLabel: LabelManufacturer, To: manufacturerID},
		{Type: RelManufacturedAt, FromLabel: LabelProduct, From: productID, ToLabel: LabelPlant, To: plantID},
		{Type: RelHasEPD, FromLabel: LabelProduct, From: productID, ToLabel: LabelCertification, To: certificationID},
		{Type: RelLocatedIn, FromLabel: LabelPlant, From: plantID, ToLabel: LabelLocation, To: locationID},
		{Type: RelLocatedIn, FromLabel: LabelManufacturer, From: manufacturerID, ToLabel: LabelLocation, To: locationID},
	}

	return Batch{Nodes: nodes, Relationships: rels}
}

// TransformMany transforms products and merges the results, keeping the
// first occurrence of every node id and relationship.
func TransformMany(products []ec3.Product) Batch {
	var out Batch
	seenNodes := make(map[string]bool)
	seenRels := make(map[string]bool)

	for _, p := range products {
		b := Transform(p)
		for _, n := range b.Nodes {
			if seenNodes[n.ID()] {
				continue
			}
			seenNodes[n.ID()] = true
			out.Nodes = append(out.Nodes, n)
		}
		for _, r := range b.Relationships {
			if seenRels[r.key()] {
				continue
			}
			seenRels[r.key()] = true
			out.Relationships = append(out.Relationships, r)
		}
	}
	return out
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases text and joins runs of alphanumerics with "-"
func Slugify(text string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(text), "-"), "-")
}

func nameUUID(kind string, parts ...string) string {
	return uuid.NewSHA1(idNamespace, []byte(kind+":"+strings.Join(parts, ":"))).String()
}

// parseDate converts YYYY-MM-DD to a store date so date comparisons work
func parseDate(s string) (neo4j.Date, bool) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return neo4j.Date{}, false
	}
	return neo4j.DateOf(t), true
}
