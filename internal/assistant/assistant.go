// Package assistant answers natural-language questions about a building by
// having an LLM write a Cypher query, running it read-only and phrasing the
// result.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/rohankatakam/dppgraph/internal/errors"
	"github.com/rohankatakam/dppgraph/internal/graph"
	"github.com/rohankatakam/dppgraph/internal/llm"
)

// DefaultBuildingID is the building questions refer to when none is given
const DefaultBuildingID = "building-001"

// Query is the LLM's plan for answering a question
type Query struct {
	Cypher          string `json:"cypher"`
	Intent          string `json:"intent"`
	NaturalResponse string `json:"naturalResponse"`
}

// Answer is the reply to one chat message
type Answer struct {
	Response    string `json:"response"`
	Intent      string `json:"intent"`
	Cypher      string `json:"cypher"`
	ResultCount int    `json:"resultCount"`
}

// Assistant turns questions into graph queries and answers
type Assistant struct {
	llm        llm.Completer
	runner     graph.Runner
	buildingID string
	logger     *slog.Logger
}

// New creates an assistant scoped to buildingID (DefaultBuildingID when empty)
func New(completer llm.Completer, runner graph.Runner, buildingID string) *Assistant {
	if buildingID == "" {
		buildingID = DefaultBuildingID
	}
	return &Assistant{
		llm:        completer,
		runner:     runner,
		buildingID: buildingID,
		logger:     slog.Default().With("component", "assistant"),
	}
}

// Chat answers one message. Query execution failures are logged and treated
// as an empty result so the user still gets a reply.
func (a *Assistant) Chat(ctx context.Context, message string) (Answer, error) {
	if strings.TrimSpace(message) == "" {
		return Answer{}, errors.ValidationError("Message is required")
	}
	if !a.llm.IsEnabled() {
		return Answer{}, errors.ConfigError("assistant unavailable: no LLM provider configured")
	}

	query, err := a.GenerateQuery(ctx, message)
	if err != nil {
		return Answer{}, err
	}

	var rows []graph.Record
	if query.Cypher != "" {
		records, err := a.runner.Execute(graph.WithOperation(ctx, graph.OpAssistant), query.Cypher, nil)
		if err != nil {
			a.logger.Warn("generated query failed", "intent", query.Intent, "cypher", query.Cypher, "error", err)
		} else {
			rows = make([]graph.Record, 0, len(records))
			for _, r := range records {
				rows = append(rows, graph.NormalizeRecord(r))
			}
		}
	}

	response := a.formatResponse(ctx, query.NaturalResponse, rows)
	a.logger.Debug("chat answered", "intent", query.Intent, "rows", len(rows))

	return Answer{
		Response:    response,
		Intent:      query.Intent,
		Cypher:      query.Cypher,
		ResultCount: len(rows),
	}, nil
}

// GenerateQuery asks the LLM for a Cypher query answering question.
// Output that is not the expected JSON yields an empty query with intent
// "parse_error" instead of an error.
func (a *Assistant) GenerateQuery(ctx context.Context, question string) (Query, error) {
	system := fmt.Sprintf(schemaContext, a.buildingID)
	user := fmt.Sprintf(queryInstructions, question, a.buildingID, a.buildingID, unknownResponse)

	raw, err := a.llm.CompleteJSON(ctx, system, user)
	if err != nil {
		return Query{}, errors.ExternalError(err, "query generation failed")
	}

	var q Query
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &q); err != nil {
		a.logger.Warn("unparseable query plan", "error", err, "response_length", len(raw))
		return Query{Intent: "parse_error", NaturalResponse: parseErrorResponse}, nil
	}
	q.Cypher = strings.TrimSpace(q.Cypher)
	if q.NaturalResponse == "" {
		q.NaturalResponse = resultPlaceholder
	}
	return q, nil
}

// formatResponse fills the template with rows. Several rows are phrased by
// the LLM, falling back to their JSON rendering.
func (a *Assistant) formatResponse(ctx context.Context, template string, rows []graph.Record) string {
	switch len(rows) {
	case 0:
		return strings.Replace(template, resultPlaceholder, noDataText, 1)
	case 1:
		return strings.Replace(template, resultPlaceholder, formatRow(rows[0]), 1)
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		data = []byte(fmt.Sprintf("%v", rows))
	}

	text, err := a.llm.Complete(ctx, "", fmt.Sprintf(formatInstructions, template, data))
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			a.logger.Warn("result formatting failed", "error", err)
		}
		compact, _ := json.Marshal(rows)
		return strings.Replace(template, resultPlaceholder, string(compact), 1)
	}
	return strings.TrimSpace(text)
}

// formatRow renders one record's values for display, ordered by column name
func formatRow(row graph.Record) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = graph.FormatDisplay(row[k])
	}
	return strings.Join(values, ", ")
}

// stripCodeFence removes a surrounding ``` or ```json fence
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
