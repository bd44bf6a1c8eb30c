package graphtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rohankatakam/dppgraph/internal/graph"
)

// Live connects to the store named by NEO4J_URI for integration tests. The
// test is skipped in short mode, when NEO4J_URI is unset, or when the store
// cannot be reached. The client is closed on cleanup.
func Live(t *testing.T) *graph.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("NEO4J_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := graph.NewClient(ctx, graph.Settings{
		URI:      uri,
		User:     os.Getenv("NEO4J_USER"),
		Password: os.Getenv("NEO4J_PASSWORD"),
		Database: os.Getenv("NEO4J_DATABASE"),
	})
	if err != nil {
		t.Skipf("Neo4j not available: %v", err)
	}
	t.Cleanup(func() { client.Close(context.Background()) })
	return client
}

// Tag returns a fixture tag unique to this run. Seeded nodes carry it in
// their fixture property and ids are prefixed with it.
func Tag() string {
	return "it-" + uuid.NewString()[:8]
}

// Seed runs statements in one write transaction, each with $tag bound, and
// detach-deletes every node carrying the tag when the test ends.
func Seed(t *testing.T, client *graph.Client, tag string, statements ...string) {
	t.Helper()
	ctx := context.Background()

	t.Cleanup(func() {
		err := client.ExecuteBatch(ctx, []graph.Statement{{
			Query:  `MATCH (n {fixture: $tag}) DETACH DELETE n`,
			Params: map[string]any{"tag": tag},
		}})
		if err != nil {
			t.Logf("fixture cleanup for %s failed: %v", tag, err)
		}
	})

	batch := make([]graph.Statement, len(statements))
	for i, q := range statements {
		batch[i] = graph.Statement{Query: q, Params: map[string]any{"tag": tag}}
	}
	if err := client.ExecuteBatch(ctx, batch); err != nil {
		t.Fatalf("seeding fixture %s: %v", tag, err)
	}
}
