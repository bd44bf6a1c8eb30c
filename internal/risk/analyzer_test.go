package risk

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/dppgraph/internal/errors"
	"github.com/rohankatakam/dppgraph/internal/graph"
	"github.com/rohankatakam/dppgraph/internal/graph/graphtest"
)

func products(names ...string) []graph.Record {
	out := make([]graph.Record, len(names))
	for i, n := range names {
		out[i] = graph.Record{"product": n, "soleSupplier": "Acme"}
	}
	return out
}

func counts(key string, pairs ...any) []graph.Record {
	var out []graph.Record
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, graph.Record{key: pairs[i], "productCount": int64(pairs[i+1].(int))})
	}
	return out
}

func newAnalyzer(runner graph.Runner) *Analyzer {
	return NewAnalyzer(runner, DefaultThresholds())
}

func TestSingleSource(t *testing.T) {
	// Three of five products have one supplier; the query only returns those.
	runner := graphtest.New().On(QuerySingleSource, products("Ready Mix 4000", "Rebar A615", "Mineral Wool Batt")...)

	report, err := newAnalyzer(runner).Analyze(context.Background(), "building-001")
	require.NoError(t, err)
	require.Len(t, report.Risks, 1)

	item := report.Risks[0]
	assert.Equal(t, TypeSingleSource, item.Type)
	assert.Equal(t, SeverityMedium, item.Severity)
	assert.Equal(t, []string{"Ready Mix 4000", "Rebar A615", "Mineral Wool Batt"}, item.AffectedProducts)
	assert.Contains(t, item.Description, "3 products have only one supplier")
}

func TestSingleSource_HighAboveFive(t *testing.T) {
	runner := graphtest.New().On(QuerySingleSource, products("a", "b", "c", "d", "e", "f")...)

	report, err := newAnalyzer(runner).Analyze(context.Background(), "building-001")
	require.NoError(t, err)
	assert.Equal(t, SeverityHigh, report.Risks[0].Severity)
}

func TestExpiringCerts_CappedAndAscending(t *testing.T) {
	var rows []graph.Record
	// 15 certifications expiring over the next 30 days, returned out of order
	for i := 15; i >= 1; i-- {
		rows = append(rows, graph.Record{
			"product":    fmt.Sprintf("product-%02d", i),
			"expiryDate": fmt.Sprintf("2026-11-%02d", i*2),
		})
	}
	runner := graphtest.New().On(QueryExpiringCerts, rows...)

	report, err := newAnalyzer(runner).Analyze(context.Background(), "building-001")
	require.NoError(t, err)
	require.Len(t, report.Risks, 1)

	item := report.Risks[0]
	assert.Equal(t, TypeExpiringCert, item.Type)
	assert.Equal(t, SeverityMedium, item.Severity)
	require.Len(t, item.AffectedProducts, 10)
	assert.Equal(t, "product-01", item.AffectedProducts[0])
	assert.Equal(t, "product-10", item.AffectedProducts[9])

	calls := runner.Calls()
	var params map[string]any
	for _, c := range calls {
		if c.Query == QueryExpiringCerts {
			params = c.Params
		}
	}
	require.NotNil(t, params)
	assert.Equal(t, 90, params["windowDays"])
	assert.Equal(t, 10, params["limit"])
}

func TestConcentration(t *testing.T) {
	tests := []struct {
		name     string
		rows     []graph.Record
		wantItem bool
		severity Severity
		top      string
	}{
		{"none qualify", counts("manufacturer", "Acme", 3), false, "", ""},
		{"low", counts("manufacturer", "Acme", 4, "Steelco", 7), true, SeverityLow, "Steelco"},
		{"boundary ten is low", counts("manufacturer", "Acme", 10), true, SeverityLow, "Acme"},
		{"high", counts("manufacturer", "Acme", 11, "Steelco", 5), true, SeverityHigh, "Acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := graphtest.New().On(QuerySupplierConcentration, tt.rows...)
			report, err := newAnalyzer(runner).Analyze(context.Background(), "building-001")
			require.NoError(t, err)

			if !tt.wantItem {
				assert.Empty(t, report.Risks)
				return
			}
			require.Len(t, report.Risks, 1)
			assert.Equal(t, TypeConcentration, report.Risks[0].Type)
			assert.Equal(t, tt.severity, report.Risks[0].Severity)
			assert.Equal(t, []string{tt.top}, report.Risks[0].AffectedProducts)
		})
	}
}

func TestGeographic(t *testing.T) {
	t.Run("top at ten emits nothing", func(t *testing.T) {
		runner := graphtest.New().On(QueryGeographicConcentration, counts("country", "Germany", 10, "Canada", 6)...)
		report, err := newAnalyzer(runner).Analyze(context.Background(), "building-001")
		require.NoError(t, err)
		assert.Empty(t, report.Risks)
	})

	t.Run("top above ten", func(t *testing.T) {
		runner := graphtest.New().On(QueryGeographicConcentration, counts("country", "Canada", 6, "China", 14)...)
		report, err := newAnalyzer(runner).Analyze(context.Background(), "building-001")
		require.NoError(t, err)
		require.Len(t, report.Risks, 1)

		item := report.Risks[0]
		assert.Equal(t, TypeGeographic, item.Type)
		assert.Equal(t, SeverityMedium, item.Severity)
		assert.Equal(t, []string{"China (14 products)"}, item.AffectedProducts)
		assert.Equal(t, "14 products sourced from China. Regional disruptions could affect supply.", item.Description)
	})
}

func TestAnalyze_FixedOrder(t *testing.T) {
	runner := graphtest.New().
		On(QueryGeographicConcentration, counts("country", "USA", 12)...).
		On(QuerySupplierConcentration, counts("manufacturer", "Acme", 5)...).
		On(QueryExpiringCerts, graph.Record{"product": "Glass IGU", "expiryDate": "2026-12-01"}).
		On(QuerySingleSource, products("Glass IGU")...)

	for i := 0; i < 20; i++ {
		report, err := newAnalyzer(runner).Analyze(context.Background(), "building-001")
		require.NoError(t, err)
		require.Len(t, report.Risks, 4)

		got := make([]Type, len(report.Risks))
		for j, r := range report.Risks {
			got[j] = r.Type
		}
		assert.Equal(t, []Type{TypeSingleSource, TypeExpiringCert, TypeConcentration, TypeGeographic}, got)
	}
}

func TestAnalyze_DetectorFailureIsIsolated(t *testing.T) {
	runner := graphtest.New().
		Fail(QuerySingleSource, fmt.Errorf("query timed out")).
		On(QuerySupplierConcentration, counts("manufacturer", "Acme", 12)...)

	report, err := newAnalyzer(runner).Analyze(context.Background(), "building-001")
	require.NoError(t, err)
	require.Len(t, report.Risks, 1)
	assert.Equal(t, TypeConcentration, report.Risks[0].Type)
	assert.Len(t, runner.Calls(), 4, "every detector still runs")
}

func TestAnalyze_NoSignalsIsEmptyList(t *testing.T) {
	report, err := newAnalyzer(graphtest.New()).Analyze(context.Background(), "building-001")
	require.NoError(t, err)
	assert.NotNil(t, report.Risks)
	assert.Empty(t, report.Risks)
}

func TestAnalyze_StoreUnreachable(t *testing.T) {
	runner := graphtest.New().FailAll(fmt.Errorf("connection refused"))

	_, err := newAnalyzer(runner).Analyze(context.Background(), "building-001")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeDatabase, errors.GetType(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAnalyze_TagsOperation(t *testing.T) {
	runner := graphtest.New()
	_, err := newAnalyzer(runner).Analyze(context.Background(), "building-001")
	require.NoError(t, err)

	for _, c := range runner.Calls() {
		assert.Equal(t, graph.OpRiskDetector, c.Operation)
		assert.Equal(t, "building-001", c.Params["buildingId"])
	}
}
