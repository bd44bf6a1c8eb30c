package ec3

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/products.yaml
var fixtureYAML []byte

var (
	fixturesOnce sync.Once
	fixtures     map[string][]Product
	fixturesErr  error
)

func loadFixtures() (map[string][]Product, error) {
	fixturesOnce.Do(func() {
		fixtures = make(map[string][]Product)
		if err := yaml.Unmarshal(fixtureYAML, &fixtures); err != nil {
			fixturesErr = fmt.Errorf("failed to parse fixture products: %w", err)
		}
	})
	return fixtures, fixturesErr
}

// FixtureProducts returns the sample products for category; unknown
// categories have none.
func FixtureProducts(category string) ([]Product, error) {
	all, err := loadFixtures()
	if err != nil {
		return nil, err
	}
	products := all[category]
	out := make([]Product, len(products))
	copy(out, products)
	return out, nil
}

// FixtureCategories lists the categories with sample products
func FixtureCategories() []string {
	all, err := loadFixtures()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(all))
	for category := range all {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}
