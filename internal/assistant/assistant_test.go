package assistant

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/dppgraph/internal/errors"
	"github.com/rohankatakam/dppgraph/internal/graph"
	"github.com/rohankatakam/dppgraph/internal/graph/graphtest"
	"github.com/rohankatakam/dppgraph/internal/llm/llmtest"
)

const totalQuery = "MATCH (b:Building {id: 'building-001'})-[:COMPOSED_OF]->(e)-[:USES_PRODUCT]->(p) RETURN sum(p.gwp * coalesce(p.quantity, 1)) AS totalGWP"

func plan(cypher, intent, template string) string {
	return fmt.Sprintf(`{"cypher": %q, "intent": %q, "naturalResponse": %q}`, cypher, intent, template)
}

func TestChat_SingleRow(t *testing.T) {
	completer := llmtest.New().Respond(plan(totalQuery, "total carbon footprint", "The total is {{result}} kg CO2e."))
	runner := graphtest.New().On(totalQuery, graph.Record{"totalGWP": 1234567.25})

	answer, err := New(completer, runner, "").Chat(context.Background(), "What's the total carbon footprint?")
	require.NoError(t, err)

	assert.Equal(t, "The total is 1,234,567.25 kg CO2e.", answer.Response)
	assert.Equal(t, "total carbon footprint", answer.Intent)
	assert.Equal(t, totalQuery, answer.Cypher)
	assert.Equal(t, 1, answer.ResultCount)

	call, ok := runner.LastCall()
	require.True(t, ok)
	assert.Equal(t, graph.OpAssistant, call.Operation)

	prompts := completer.Prompts()
	require.Len(t, prompts, 1)
	assert.True(t, prompts[0].JSON)
	assert.Contains(t, prompts[0].System, "building-001")
	assert.Contains(t, prompts[0].User, "What's the total carbon footprint?")
}

func TestChat_SingleRowWireValues(t *testing.T) {
	query := "MATCH (p:Product) RETURN count(p) AS products, true AS certified"
	completer := llmtest.New().Respond(plan(query, "count", "Result: {{result}}"))
	runner := graphtest.New().On(query, graph.Record{
		"products":  map[string]any{"low": int64(1500), "high": int64(0)},
		"certified": true,
	})

	answer, err := New(completer, runner, "").Chat(context.Background(), "How many products?")
	require.NoError(t, err)
	assert.Equal(t, "Result: Yes, 1,500", answer.Response)
}

func TestChat_NoRows(t *testing.T) {
	query := "MATCH (p:Product {country: 'Belgium'}) RETURN p.name"
	completer := llmtest.New().Respond(plan(query, "belgian products", "Products from Belgium: {{result}}."))

	answer, err := New(completer, graphtest.New(), "").Chat(context.Background(), "Which products are from Belgium?")
	require.NoError(t, err)
	assert.Equal(t, "Products from Belgium: no data found.", answer.Response)
	assert.Equal(t, 0, answer.ResultCount)
}

func TestChat_ManyRowsFormattedByLLM(t *testing.T) {
	query := "MATCH (m:Manufacturer) RETURN m.name AS name"
	completer := llmtest.New().
		Respond(plan(query, "list manufacturers", "Manufacturers: {{result}}")).
		Respond("  The manufacturers are Holcim and Rockwool.  ")
	runner := graphtest.New().On(query, graph.Record{"name": "Holcim"}, graph.Record{"name": "Rockwool"})

	answer, err := New(completer, runner, "").Chat(context.Background(), "Who makes the products?")
	require.NoError(t, err)
	assert.Equal(t, "The manufacturers are Holcim and Rockwool.", answer.Response)
	assert.Equal(t, 2, answer.ResultCount)

	prompts := completer.Prompts()
	require.Len(t, prompts, 2)
	assert.False(t, prompts[1].JSON)
	assert.Contains(t, prompts[1].User, "Rockwool")
}

func TestChat_ManyRowsFallbackToJSON(t *testing.T) {
	query := "MATCH (m:Manufacturer) RETURN m.name AS name"
	completer := llmtest.New().
		Respond(plan(query, "list manufacturers", "Manufacturers: {{result}}")).
		Fail(fmt.Errorf("rate limited"))
	runner := graphtest.New().On(query, graph.Record{"name": "Holcim"}, graph.Record{"name": "Rockwool"})

	answer, err := New(completer, runner, "").Chat(context.Background(), "Who makes the products?")
	require.NoError(t, err)
	assert.Equal(t, `Manufacturers: [{"name":"Holcim"},{"name":"Rockwool"}]`, answer.Response)
}

func TestChat_QueryFailureIsEmptyResult(t *testing.T) {
	query := "MATCH (x) RETURN x.broken("
	completer := llmtest.New().Respond(plan(query, "broken", "Answer: {{result}}"))
	runner := graphtest.New().Fail(query, fmt.Errorf("syntax error"))

	answer, err := New(completer, runner, "").Chat(context.Background(), "Anything?")
	require.NoError(t, err)
	assert.Equal(t, "Answer: no data found", answer.Response)
	assert.Equal(t, 0, answer.ResultCount)
}

func TestChat_UnanswerableSkipsQuery(t *testing.T) {
	completer := llmtest.New().Respond(`{"cypher": null, "intent": "unknown", "naturalResponse": "I can help with building questions."}`)
	runner := graphtest.New()

	answer, err := New(completer, runner, "").Chat(context.Background(), "What's the weather?")
	require.NoError(t, err)
	assert.Equal(t, "unknown", answer.Intent)
	assert.Equal(t, "I can help with building questions.", answer.Response)
	assert.Empty(t, runner.Calls())
}

func TestChat_EmptyMessage(t *testing.T) {
	for _, msg := range []string{"", "   "} {
		_, err := New(llmtest.New(), graphtest.New(), "").Chat(context.Background(), msg)
		require.Error(t, err)
		assert.Equal(t, errors.ErrorTypeValidation, errors.GetType(err))
		assert.Contains(t, err.Error(), "Message is required")
	}
}

func TestChat_DisabledLLM(t *testing.T) {
	_, err := New(llmtest.Disabled(), graphtest.New(), "").Chat(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeConfig, errors.GetType(err))
}

func TestGenerateQuery(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantCypher string
		wantIntent string
	}{
		{"plain json", plan("RETURN 1", "test", "{{result}}"), "RETURN 1", "test"},
		{"fenced json", "```json\n" + plan("RETURN 2", "fenced", "{{result}}") + "\n```", "RETURN 2", "fenced"},
		{"bare fence", "```\n" + plan("RETURN 3", "bare", "{{result}}") + "\n```", "RETURN 3", "bare"},
		{"not json", "Sure! Here is your query: MATCH (n) RETURN n", "", "parse_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := llmtest.New().Respond(tt.raw)
			q, err := New(completer, graphtest.New(), "").GenerateQuery(context.Background(), "question")
			require.NoError(t, err)
			assert.Equal(t, tt.wantCypher, q.Cypher)
			assert.Equal(t, tt.wantIntent, q.Intent)
			assert.NotEmpty(t, q.NaturalResponse)
		})
	}
}

func TestGenerateQuery_ProviderError(t *testing.T) {
	completer := llmtest.New().Fail(fmt.Errorf("401 unauthorized"))
	_, err := New(completer, graphtest.New(), "").GenerateQuery(context.Background(), "question")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeExternal, errors.GetType(err))
}

func TestNew_BuildingScope(t *testing.T) {
	completer := llmtest.New().Respond(plan("", "unknown", "n/a"))
	_, err := New(completer, graphtest.New(), "building-042").GenerateQuery(context.Background(), "question")
	require.NoError(t, err)
	assert.Contains(t, completer.Prompts()[0].System, "building-042")
}
