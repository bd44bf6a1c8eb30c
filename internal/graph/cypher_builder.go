package graph

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// CypherBuilder builds parameterized Cypher statements.
// Every value is bound as a parameter; labels, relationship types and
// property keys are validated as identifiers before they reach query text.
type CypherBuilder struct {
	params  map[string]any
	counter int
}

// NewCypherBuilder creates a query builder
func NewCypherBuilder() *CypherBuilder {
	return &CypherBuilder{
		params: make(map[string]any),
	}
}

// AddParam adds a parameter and returns its placeholder
func (b *CypherBuilder) AddParam(value any) string {
	paramName := fmt.Sprintf("p%d", b.counter)
	b.counter++
	b.params[paramName] = value
	return "$" + paramName
}

// Params returns all parameters for the query
func (b *CypherBuilder) Params() map[string]any {
	return b.params
}

// BuildMergeNode creates an idempotent upsert keyed on the node's id property.
// Properties are written in key order so the same input always yields the same text.
func (b *CypherBuilder) BuildMergeNode(label string, id string, properties map[string]any) (string, error) {
	if !IsValidIdentifier(label) {
		return "", fmt.Errorf("invalid node label: %s (must be alphanumeric + underscore)", label)
	}
	if id == "" {
		return "", fmt.Errorf("node id is required for MERGE on %s", label)
	}

	idParam := b.AddParam(id)

	setClause, err := b.setClause("n", properties)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf("MERGE (n:%s {id: %s})", label, idParam)
	if setClause != "" {
		query += " SET " + setClause
	}
	return query, nil
}

// BuildMergeEdge creates an idempotent relationship upsert between two
// nodes matched by id.
func (b *CypherBuilder) BuildMergeEdge(fromLabel, fromID, relType, toLabel, toID string, properties map[string]any) (string, error) {
	for _, ident := range []string{fromLabel, toLabel} {
		if !IsValidIdentifier(ident) {
			return "", fmt.Errorf("invalid node label: %s", ident)
		}
	}
	if !IsValidIdentifier(relType) {
		return "", fmt.Errorf("invalid relationship type: %s", relType)
	}

	fromParam := b.AddParam(fromID)
	toParam := b.AddParam(toID)

	setClause, err := b.setClause("r", properties)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf(
		"MATCH (from:%s {id: %s}) MATCH (to:%s {id: %s}) MERGE (from)-[r:%s]->(to)",
		fromLabel, fromParam,
		toLabel, toParam,
		relType,
	)
	if setClause != "" {
		query += " SET " + setClause
	}
	return query, nil
}

// Statement returns the built query with its parameters
func (b *CypherBuilder) Statement(query string) Statement {
	return Statement{Query: query, Params: b.params}
}

func (b *CypherBuilder) setClause(variable string, properties map[string]any) (string, error) {
	if len(properties) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(properties))
	for key := range properties {
		if !IsValidIdentifier(key) {
			return "", fmt.Errorf("invalid property key: %s (must be alphanumeric + underscore)", key)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	for _, key := range keys {
		clauses = append(clauses, fmt.Sprintf("%s.%s = %s", variable, key, b.AddParam(properties[key])))
	}
	return strings.Join(clauses, ", "), nil
}

// IsValidIdentifier reports whether s can be used as a Cypher label,
// relationship type or property key without quoting.
func IsValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}
