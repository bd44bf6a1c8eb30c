package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" WARNING "))
	assert.Equal(t, ERROR, ParseLevel("error"))
	assert.Equal(t, INFO, ParseLevel("info"))
	assert.Equal(t, INFO, ParseLevel("verbose"))
}

func TestNewLogger_WritesToConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "dpp.log")

	var console bytes.Buffer
	logger, err := NewLogger(Config{Level: INFO, OutputFile: path, JSONFormat: true}, &console)
	require.NoError(t, err)
	defer logger.Close()

	logger.Slog().Info("subgraph fetched", "building", "building-001", "nodes", 12)
	logger.Slog().Debug("hidden at info level")

	assert.Contains(t, console.String(), `"building":"building-001"`)
	assert.NotContains(t, console.String(), "hidden at info level")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "subgraph fetched")
}

func TestRotateIfNeeded(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dpp.log")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 64), 0644))

	logger, err := NewLogger(Config{Level: INFO, OutputFile: path, MaxSize: 32}, &bytes.Buffer{})
	require.NoError(t, err)
	defer logger.Close()

	_, err = os.Stat(path + ".1")
	assert.NoError(t, err, "oversized log should be rotated to .1")
}
