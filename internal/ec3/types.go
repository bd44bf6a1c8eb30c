package ec3

// Product is one EPD record as returned by the EC3 epds endpoint
type Product struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Manufacturer Manufacturer `json:"manufacturer" yaml:"manufacturer"`
	Plant        Plant        `json:"plant_or_group" yaml:"plant_or_group"`
	GWP          float64      `json:"gwp" yaml:"gwp"` // kg CO2e per declared unit; negative means sequestration
	DeclaredUnit string       `json:"declared_unit" yaml:"declared_unit"`
	EPDURL       string       `json:"epd_url" yaml:"epd_url"`
	ValidUntil   string       `json:"valid_until" yaml:"valid_until"` // YYYY-MM-DD
}

type Manufacturer struct {
	Name    string `json:"name" yaml:"name"`
	Country string `json:"country" yaml:"country"`
}

type Plant struct {
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}
