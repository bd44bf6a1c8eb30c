package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/dppgraph/internal/errors"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"NEO4J_URI", "NEO4J_USER", "NEO4J_PASSWORD", "NEO4J_DATABASE", "NEO4J_MAX_POOL_SIZE",
		"HTTP_ADDR", "LLM_PROVIDER", "OPENAI_API_KEY", "OPENAI_MODEL", "GEMINI_API_KEY", "GEMINI_MODEL",
		"EC3_API_KEY", "EC3_BASE_URL", "EC3_CACHE_PATH", "EC3_RATE_LIMIT", "LOG_LEVEL", "LOG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "neo4j", cfg.Neo4j.Database)
	assert.Equal(t, 50, cfg.Neo4j.MaxPoolSize)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAIModel)
	assert.Equal(t, 24*time.Hour, cfg.EC3.CacheTTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
neo4j:
  uri: bolt://file-host:7687
  user: reader
server:
  addr: ":8080"
`), 0644))

	t.Setenv("NEO4J_URI", "neo4j://env-host:7687")
	t.Setenv("NEO4J_PASSWORD", "s3cret")
	t.Setenv("EC3_RATE_LIMIT", "2.5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "neo4j://env-host:7687", cfg.Neo4j.URI, "env wins over file")
	assert.Equal(t, "reader", cfg.Neo4j.User)
	assert.Equal(t, "s3cret", cfg.Neo4j.Password)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 2.5, cfg.EC3.RateLimit)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("NEO4J_USER")
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NEO4J_USER=from-dotenv\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("NEO4J_USER") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Neo4j.User)
}

func TestValidate_Neo4jRequired(t *testing.T) {
	cfg := Default()

	result := cfg.Validate(ValidationContextServe)
	assert.True(t, result.HasErrors())
	assert.Len(t, result.Errors, 3)
	assert.Contains(t, result.Error(), "NEO4J_URI is required")

	err := cfg.Require(ValidationContextQuery)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeConfig, errors.GetType(err))
	assert.True(t, errors.IsFatal(err))
}

func TestValidate_Valid(t *testing.T) {
	cfg := Default()
	cfg.Neo4j.URI = "bolt://localhost:7687"
	cfg.Neo4j.User = "neo4j"
	cfg.Neo4j.Password = "building-passport"

	result := cfg.Validate(ValidationContextServe)
	assert.False(t, result.HasErrors())
	assert.NotEmpty(t, result.Warnings, "missing OpenAI key is a warning")
	assert.NoError(t, cfg.Require(ValidationContextImport))
}

func TestValidate_InvalidURI(t *testing.T) {
	cfg := Default()
	cfg.Neo4j.URI = "localhost"
	cfg.Neo4j.User = "neo4j"
	cfg.Neo4j.Password = "pw"

	result := cfg.Validate(ValidationContextQuery)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "invalid")
}
