package ingest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/dppgraph/internal/ec3"
	"github.com/rohankatakam/dppgraph/internal/errors"
)

type fixtureSource struct {
	mu        sync.Mutex
	requested []string
	fail      string
}

func (s *fixtureSource) SearchProducts(ctx context.Context, category, country string) ([]ec3.Product, error) {
	s.mu.Lock()
	s.requested = append(s.requested, category)
	s.mu.Unlock()
	if category == s.fail {
		return nil, fmt.Errorf("upstream unavailable")
	}
	return ec3.FixtureProducts(category)
}

func TestImporter_DryRun(t *testing.T) {
	source := &fixtureSource{}
	exec := &recordingExecutor{}
	im := NewImporter(source, NewWriter(exec, 0))

	result, err := im.Run(context.Background(), Request{Categories: []string{"Concrete", "Steel", "Plastics"}, DryRun: true})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Concrete", "Steel", "Plastics"}, source.requested)
	assert.Equal(t, map[string]int{"Concrete": 1, "Steel": 1, "Plastics": 0}, result.Products)
	assert.Len(t, result.Batch.Nodes, 10)
	assert.Equal(t, 20, result.Statements)
	assert.Nil(t, result.Write)
	assert.Empty(t, exec.batches)
}

func TestImporter_Writes(t *testing.T) {
	exec := &recordingExecutor{}
	im := NewImporter(&fixtureSource{}, NewWriter(exec, 0))

	result, err := im.Run(context.Background(), Request{Categories: []string{"Wood"}})
	require.NoError(t, err)
	require.NotNil(t, result.Write)
	assert.Equal(t, 1, result.Write.Transactions)
	require.Len(t, exec.batches, 1)
	assert.Len(t, exec.batches[0], 10)
}

func TestImporter_FetchFailureAborts(t *testing.T) {
	exec := &recordingExecutor{}
	im := NewImporter(&fixtureSource{fail: "Steel"}, NewWriter(exec, 0))

	_, err := im.Run(context.Background(), Request{Categories: []string{"Concrete", "Steel"}})
	assert.ErrorContains(t, err, "upstream unavailable")
	assert.Empty(t, exec.batches)
}

func TestImporter_RequiresCategory(t *testing.T) {
	_, err := NewImporter(&fixtureSource{}, nil).Run(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeValidation, errors.GetType(err))
}
