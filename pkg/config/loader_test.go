package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraph-dev/codegraph/pkg/config"
)

func TestLoadConfig_MalformedYAML_ReturnsError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	content := `scan:
  workers: [invalid yaml
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.LoadConfig(cfgPath)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadConfig_UnknownKeys_NoError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".codegraph.yaml")
	content := `unknown_section:
  unknown_key: "value"
scan:
  workers: 4
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Scan.Workers)
}

func TestLoadConfig_PartialConfig_MergesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, ".codegraph.yaml")
	content := `store:
  snapshot_retention: 90
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, 90, cfg.Store.SnapshotRetention)
	assert.Equal(t, ".", cfg.Scan.Root)
	assert.Equal(t, "stdio", cfg.MCP.Transport)
}

func TestLoadConfig_EnvOverride_NestedKey(t *testing.T) {
	dir := t.TempDir()
	emptyPath := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(emptyPath, []byte(""), 0o600))

	t.Setenv("CODEGRAPH_SEMANTIC_AUTO_REBUILD", "true")

	cfg, err := config.LoadConfig(emptyPath)
	require.NoError(t, err)

	assert.True(t, cfg.Semantic.AutoRebuild)
}

func TestLoadConfig_ExplicitPath_NotFound_ReturnsError(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfig_EmptyIgnoreDirs_StillHasBuiltins(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Contains(t, cfg.Scan.IgnoreDirs, ".git")
	assert.Contains(t, cfg.Scan.IgnoreDirs, "node_modules")
}
