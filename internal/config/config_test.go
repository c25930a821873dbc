package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatstack/mcp-fanout-go/internal/logging"
)

func TestLoadDefaults(t *testing.T) {
	// Run from an empty directory so a stray fanout.yaml cannot interfere.
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.IncludeBase)
	assert.True(t, cfg.IncludeRevit)
	assert.Empty(t, cfg.Servers)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fanout.yaml")
	content := `
log_level: debug
log_format: json
timeout: 45s
include_base: false
servers:
  cad-export:
    url: http://host:7000
    transport: streamable-http
  local-tool:
    command: python
    args: ["tool.py", "--serve"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, logging.FormatJSON, cfg.Format())
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.False(t, cfg.IncludeBase)
	assert.True(t, cfg.IncludeRevit)

	require.Len(t, cfg.Servers, 2)
	assert.Equal(t, "http://host:7000", cfg.Servers["cad-export"].URL)
	assert.Equal(t, "streamable-http", cfg.Servers["cad-export"].Transport)
	assert.Equal(t, []string{"tool.py", "--serve"}, cfg.Servers["local-tool"].Args)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
