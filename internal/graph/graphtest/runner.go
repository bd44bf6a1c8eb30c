// Package graphtest provides an in-memory graph.Runner for tests.
package graphtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rohankatakam/dppgraph/internal/graph"
)

// Call is one recorded Execute invocation
type Call struct {
	Operation string
	Query     string
	Params    map[string]any
}

// Runner answers queries from canned responses keyed by query text.
// Unknown queries return no records. It is safe for concurrent use.
type Runner struct {
	mu        sync.Mutex
	responses map[string][]graph.Record
	failures  map[string]error
	fallback  error
	calls     []Call
}

// New creates an empty Runner
func New() *Runner {
	return &Runner{
		responses: make(map[string][]graph.Record),
		failures:  make(map[string]error),
	}
}

// On sets the records returned for query
func (r *Runner) On(query string, records ...graph.Record) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[key(query)] = records
	return r
}

// Fail makes query return err
func (r *Runner) Fail(query string, err error) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[key(query)] = err
	return r
}

// FailAll makes every query without a canned response return err,
// simulating an unreachable store.
func (r *Runner) FailAll(err error) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = err
	return r
}

// Execute implements graph.Runner
func (r *Runner) Execute(ctx context.Context, query string, params map[string]any) ([]graph.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, Call{Operation: graph.OperationFrom(ctx), Query: query, Params: params})

	k := key(query)
	if err, ok := r.failures[k]; ok {
		return nil, err
	}
	if records, ok := r.responses[k]; ok {
		out := make([]graph.Record, len(records))
		copy(out, records)
		return out, nil
	}
	if r.fallback != nil {
		return nil, fmt.Errorf("graphtest: %w", r.fallback)
	}
	return []graph.Record{}, nil
}

// Calls returns the recorded invocations in order
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// LastCall returns the most recent invocation
func (r *Runner) LastCall() (Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Call{}, false
	}
	return r.calls[len(r.calls)-1], true
}

func key(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
