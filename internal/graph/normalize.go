package graph

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Normalize converts a store-native value into a plain Go value suitable for
// JSON transport. It is the single decode boundary for query output:
//
//   - 64-bit integer wire pairs ({low, high}) become int64
//   - dates (neo4j.Date, {year, month, day} maps) become "YYYY-MM-DD"
//   - local date-times and date-times become RFC 3339 strings
//   - durations become ISO-8601 strings
//   - nodes and relationships project to Node and Relationship
//   - lists and maps normalize recursively
//
// nil stays nil; use Number where a numeric zero is wanted.
func Normalize(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case bool, string:
		return v
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return v
	case float32:
		return float64(v)
	case neo4j.Date:
		return formatDate(v.Time())
	case neo4j.LocalDateTime:
		return v.Time().Format("2006-01-02T15:04:05.999999999")
	case neo4j.LocalTime:
		return v.Time().Format("15:04:05.999999999")
	case neo4j.Time:
		return v.Time().Format("15:04:05.999999999Z07:00")
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case neo4j.Duration:
		return v.String()
	case neo4j.Point2D:
		return v.String()
	case neo4j.Point3D:
		return v.String()
	case neo4j.Node:
		return ProjectNode(v)
	case neo4j.Relationship:
		return projectRawRelationship(v)
	case neo4j.Path:
		nodes := make([]any, len(v.Nodes))
		for i, n := range v.Nodes {
			nodes[i] = ProjectNode(n)
		}
		rels := make([]any, len(v.Relationships))
		for i, r := range v.Relationships {
			rels[i] = projectRawRelationship(r)
		}
		return map[string]any{"nodes": nodes, "relationships": rels}
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Normalize(item)
		}
		return out
	case map[string]any:
		if n, ok := wireInt(v); ok {
			return n
		}
		if d, ok := wireDate(v); ok {
			return d
		}
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = Normalize(item)
		}
		return out
	default:
		return fmt.Sprintf("%v", v)
	}
}

// NormalizeRecord normalizes every column of a record
func NormalizeRecord(record Record) Record {
	out := make(Record, len(record))
	for k, v := range record {
		out[k] = Normalize(v)
	}
	return out
}

// NormalizeProperties normalizes a property map; a nil map becomes empty
func NormalizeProperties(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = Normalize(v)
	}
	return out
}

// Number returns value as a float64 for numeric contexts; nil and
// non-numeric values are 0.
func Number(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case float64:
		return v
	case float32:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	case map[string]any:
		if n, ok := wireInt(v); ok {
			return float64(n)
		}
	}
	return 0
}

// Int returns value as an int64, truncating fractions
func Int(value any) int64 {
	if n, ok := value.(int64); ok {
		return n
	}
	return int64(Number(value))
}

// String returns value as a string; nil is ""
func String(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	switch n := Normalize(value).(type) {
	case string:
		return n
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", n)
	}
}

// Strings converts a list column to []string, dropping nils
func Strings(value any) []string {
	items, ok := value.([]any)
	if !ok {
		if ss, ok := value.([]string); ok {
			return ss
		}
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, String(item))
	}
	return out
}

var displayPrinter = message.NewPrinter(language.English)

// FormatDisplay renders a value for human-readable output: booleans as
// Yes/No, numbers with thousands separators and at most three fraction
// digits, dates as YYYY-MM-DD.
func FormatDisplay(value any) string {
	switch v := Normalize(value).(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case int64:
		return displayPrinter.Sprint(number.Decimal(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return displayPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ProjectNode converts a driver node to the transport shape.
// The business id comes from the id property, never the internal id.
func ProjectNode(n neo4j.Node) Node {
	labels := n.Labels
	if labels == nil {
		labels = []string{}
	}
	return Node{
		ID:         String(n.Props["id"]),
		Labels:     labels,
		Properties: NormalizeProperties(n.Props),
	}
}

// projectRawRelationship is used when a relationship reaches the normalizer
// without its endpoints; From and To carry the store's internal node ids.
func projectRawRelationship(r neo4j.Relationship) Relationship {
	return Relationship{
		ID:         strconv.FormatInt(r.Id, 10),
		Type:       r.Type,
		From:       strconv.FormatInt(r.StartId, 10),
		To:         strconv.FormatInt(r.EndId, 10),
		Properties: NormalizeProperties(r.Props),
	}
}

// wireInt decodes a {low, high} 32-bit pair into an int64
func wireInt(m map[string]any) (int64, bool) {
	if len(m) != 2 {
		return 0, false
	}
	low, okLow := plainInt(m["low"])
	high, okHigh := plainInt(m["high"])
	if !okLow || !okHigh {
		return 0, false
	}
	return high<<32 | int64(uint32(low)), true
}

// wireDate decodes a {year, month, day} map whose fields may be wire pairs
func wireDate(m map[string]any) (string, bool) {
	if len(m) != 3 {
		return "", false
	}
	var parts [3]int64
	for i, key := range []string{"year", "month", "day"} {
		raw, ok := m[key]
		if !ok {
			return "", false
		}
		if inner, isMap := raw.(map[string]any); isMap {
			n, ok := wireInt(inner)
			if !ok {
				return "", false
			}
			parts[i] = n
			continue
		}
		n, ok := plainInt(raw)
		if !ok {
			return "", false
		}
		parts[i] = n
	}
	return fmt.Sprintf("%04d-%02d-%02d", parts[0], parts[1], parts[2]), true
}

func plainInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
