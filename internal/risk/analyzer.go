package risk

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rohankatakam/dppgraph/internal/errors"
	"github.com/rohankatakam/dppgraph/internal/graph"
	"github.com/rohankatakam/dppgraph/internal/metrics"
)

// detector runs one query and turns its records into at most one item
type detector struct {
	kind     Type
	query    string
	params   func(buildingID string) map[string]any
	evaluate func(records []graph.Record) *Item
}

// Analyzer runs the supply-chain risk detectors for a building
type Analyzer struct {
	runner     graph.Runner
	thresholds Thresholds
	detectors  []detector
	logger     *slog.Logger
}

// NewAnalyzer creates an analyzer with the given thresholds
func NewAnalyzer(runner graph.Runner, thresholds Thresholds) *Analyzer {
	a := &Analyzer{
		runner:     runner,
		thresholds: thresholds,
		logger:     slog.Default().With("component", "risk"),
	}
	a.detectors = []detector{
		{kind: TypeSingleSource, query: QuerySingleSource, params: a.baseParams, evaluate: a.singleSource},
		{kind: TypeExpiringCert, query: QueryExpiringCerts, params: a.expiryParams, evaluate: a.expiringCerts},
		{kind: TypeConcentration, query: QuerySupplierConcentration, params: a.concentrationParams, evaluate: a.concentration},
		{kind: TypeGeographic, query: QueryGeographicConcentration, params: a.geographicParams, evaluate: a.geographic},
	}
	return a
}

// Analyze runs every detector and returns the items found, always in the
// order single_source, expiring_cert, concentration, geographic.
//
// Detectors run concurrently and independently: a failing detector is
// logged and contributes nothing. Analyze fails only when every detector
// failed, which means the store itself is unreachable.
func (a *Analyzer) Analyze(ctx context.Context, buildingID string) (Report, error) {
	start := time.Now()
	ctx = graph.WithOperation(ctx, graph.OpRiskDetector)

	items := make([]*Item, len(a.detectors))
	errs := make([]error, len(a.detectors))

	var g errgroup.Group
	for i, d := range a.detectors {
		g.Go(func() error {
			records, err := a.runner.Execute(ctx, d.query, d.params(buildingID))
			if err != nil {
				errs[i] = err
				metrics.DetectorFailures.WithLabelValues(string(d.kind)).Inc()
				a.logger.Warn("risk detector failed",
					"detector", d.kind,
					"building_id", buildingID,
					"error", err)
				return nil
			}
			items[i] = d.evaluate(records)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed == len(a.detectors) {
		return Report{}, errors.DatabaseError(errs[0], "failed to fetch risk data").
			WithContext("building_id", buildingID)
	}

	report := Report{Risks: []Item{}}
	for _, item := range items {
		if item == nil {
			continue
		}
		report.Risks = append(report.Risks, *item)
		metrics.RisksEmitted.WithLabelValues(string(item.Type), string(item.Severity)).Inc()
	}

	a.logger.Debug("risk analysis complete",
		"building_id", buildingID,
		"risks", len(report.Risks),
		"failed_detectors", failed,
		"duration", time.Since(start))
	return report, nil
}

func (a *Analyzer) baseParams(buildingID string) map[string]any {
	return map[string]any{"buildingId": buildingID}
}

func (a *Analyzer) expiryParams(buildingID string) map[string]any {
	return map[string]any{
		"buildingId": buildingID,
		"windowDays": a.thresholds.ExpiryWindowDays,
		"limit":      a.thresholds.ExpiryLimit,
	}
}

func (a *Analyzer) concentrationParams(buildingID string) map[string]any {
	return map[string]any{
		"buildingId":  buildingID,
		"minProducts": a.thresholds.ConcentrationMin,
		"limit":       a.thresholds.ConcentrationLimit,
	}
}

func (a *Analyzer) geographicParams(buildingID string) map[string]any {
	return map[string]any{
		"buildingId":  buildingID,
		"minProducts": a.thresholds.GeographicMin,
		"limit":       a.thresholds.GeographicLimit,
	}
}

func (a *Analyzer) singleSource(records []graph.Record) *Item {
	if len(records) == 0 {
		return nil
	}

	products := make([]string, 0, len(records))
	for _, r := range records {
		products = append(products, graph.String(r["product"]))
	}

	severity := SeverityMedium
	if len(products) > a.thresholds.SingleSourceHigh {
		severity = SeverityHigh
	}

	return &Item{
		Type:             TypeSingleSource,
		Severity:         severity,
		Title:            "Single Supplier Risk",
		Description:      fmt.Sprintf("%d products have only one supplier. Supply disruptions could impact the project.", len(products)),
		AffectedProducts: products,
	}
}

func (a *Analyzer) expiringCerts(records []graph.Record) *Item {
	if len(records) == 0 {
		return nil
	}

	type expiring struct {
		product string
		date    string
	}
	rows := make([]expiring, 0, len(records))
	for _, r := range records {
		rows = append(rows, expiring{product: graph.String(r["product"]), date: graph.String(r["expiryDate"])})
	}

	// ISO dates sort lexically
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date < rows[j].date })
	if limit := a.thresholds.ExpiryLimit; limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	products := make([]string, len(rows))
	for i, row := range rows {
		products[i] = row.product
	}

	return &Item{
		Type:     TypeExpiringCert,
		Severity: SeverityMedium,
		Title:    "Expiring Certifications",
		Description: fmt.Sprintf("%d EPDs expire within %d days. Products may lose compliance status.",
			len(products), a.thresholds.ExpiryWindowDays),
		AffectedProducts: products,
	}
}

type countRow struct {
	name  string
	count int64
}

// rankCounts decodes name/count rows, keeps those above threshold and orders them
// by descending count
func rankCounts(records []graph.Record, nameKey string, threshold int) []countRow {
	rows := make([]countRow, 0, len(records))
	for _, r := range records {
		row := countRow{name: graph.String(r[nameKey]), count: graph.Int(r["productCount"])}
		if row.count > int64(threshold) {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].count > rows[j].count })
	return rows
}

func (a *Analyzer) concentration(records []graph.Record) *Item {
	rows := rankCounts(records, "manufacturer", a.thresholds.ConcentrationMin)
	if len(rows) == 0 {
		return nil
	}

	top := rows[0]
	severity := SeverityLow
	if top.count > int64(a.thresholds.ConcentrationHigh) {
		severity = SeverityHigh
	}

	return &Item{
		Type:             TypeConcentration,
		Severity:         severity,
		Title:            "Supplier Concentration",
		Description:      fmt.Sprintf("%s supplies %d products. High dependency on single supplier.", top.name, top.count),
		AffectedProducts: []string{top.name},
	}
}

func (a *Analyzer) geographic(records []graph.Record) *Item {
	rows := rankCounts(records, "country", a.thresholds.GeographicMin)
	if len(rows) == 0 || rows[0].count <= int64(a.thresholds.GeographicEmit) {
		return nil
	}

	top := rows[0]
	return &Item{
		Type:             TypeGeographic,
		Severity:         SeverityMedium,
		Title:            "Geographic Concentration",
		Description:      fmt.Sprintf("%d products sourced from %s. Regional disruptions could affect supply.", top.count, top.name),
		AffectedProducts: []string{fmt.Sprintf("%s (%d products)", top.name, top.count)},
	}
}
