package passport

import (
	"math"
	"strconv"
	"strings"
)

// View is a stakeholder role controlling which node labels are visible
type View string

const (
	ViewConsumer     View = "consumer"
	ViewManufacturer View = "manufacturer"
	ViewRecycler     View = "recycler"
	ViewRegulator    View = "regulator"
)

// viewLabels is the static allow-list per view
var viewLabels = map[View][]string{
	ViewConsumer:     {"Building", "BuildingElement", "Product", "Certification", "Manufacturer"},
	ViewManufacturer: {"Building", "BuildingElement", "Product", "Plant", "Manufacturer", "Material"},
	ViewRecycler:     {"Product", "Material", "Certification", "BuildingElement"},
	ViewRegulator:    {"Building", "BuildingElement", "Product", "Certification", "Manufacturer", "Plant", "Location"},
}

// Views lists every known view in display order
func Views() []View {
	return []View{ViewConsumer, ViewManufacturer, ViewRecycler, ViewRegulator}
}

// ParseView resolves a raw view name; unknown or empty values are consumer
func ParseView(raw string) View {
	v := View(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := viewLabels[v]; ok {
		return v
	}
	return ViewConsumer
}

// Labels returns a copy of the view's allow-list
func (v View) Labels() []string {
	labels, ok := viewLabels[v]
	if !ok {
		labels = viewLabels[ViewConsumer]
	}
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

const (
	DefaultDepth = 2
	MinDepth     = 1
	MaxDepth     = 4
)

// ClampDepth bounds a traversal depth to [MinDepth, MaxDepth]
func ClampDepth(depth int) int {
	if depth < MinDepth {
		return MinDepth
	}
	if depth > MaxDepth {
		return MaxDepth
	}
	return depth
}

// ParseDepth reads a depth query parameter. Absent or non-numeric input is
// DefaultDepth; fractions are truncated; the result is clamped.
func ParseDepth(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultDepth
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return DefaultDepth
	}
	switch {
	case f >= MaxDepth:
		return MaxDepth
	case f < MinDepth:
		return MinDepth
	}
	return ClampDepth(int(math.Trunc(f)))
}
