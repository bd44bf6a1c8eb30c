package risk

// Type identifies which detector produced an item
type Type string

const (
	TypeSingleSource  Type = "single_source"
	TypeExpiringCert  Type = "expiring_cert"
	TypeConcentration Type = "concentration"
	TypeGeographic    Type = "geographic"
)

// Severity of a risk item
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Item is one supply-chain risk found for a building
type Item struct {
	Type             Type     `json:"type"`
	Severity         Severity `json:"severity"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	AffectedProducts []string `json:"affectedProducts"`
}

// Report lists the risks found for a building in detector order
type Report struct {
	Risks []Item `json:"risks"`
}

// Thresholds tune the detectors
type Thresholds struct {
	// Single-source: more than this many single-supplier products is high severity
	SingleSourceHigh int

	// Expiring certification window and result cap
	ExpiryWindowDays int
	ExpiryLimit      int

	// Concentration: manufacturers with more than Min products qualify;
	// a top manufacturer above High is high severity
	ConcentrationMin   int
	ConcentrationHigh  int
	ConcentrationLimit int

	// Geographic: countries with more than Min products qualify; an item
	// is emitted only when the top country exceeds Emit
	GeographicMin   int
	GeographicEmit  int
	GeographicLimit int
}

// DefaultThresholds returns the standard detector configuration
func DefaultThresholds() Thresholds {
	return Thresholds{
		SingleSourceHigh:   5,
		ExpiryWindowDays:   90,
		ExpiryLimit:        10,
		ConcentrationMin:   3,
		ConcentrationHigh:  10,
		ConcentrationLimit: 5,
		GeographicMin:      5,
		GeographicEmit:     10,
		GeographicLimit:    3,
	}
}
