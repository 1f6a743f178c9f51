package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "bibdoc.db", cfg.Store.Path)
	assert.Equal(t, []string{"year", "title"}, cfg.Dedup.Fields)
	assert.InDelta(t, 0.9, cfg.Dedup.Threshold, 1e-9)
	assert.Empty(t, cfg.Parse.Macros)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yml := `
log:
  level: debug
  format: json
parse:
  macros:
    JACM: Journal of the ACM
store:
  path: /tmp/refs.db
dedup:
  threshold: 0.75
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bibdoc.yaml"), []byte(yml), 0o644))

	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/tmp/refs.db", cfg.Store.Path)
	assert.InDelta(t, 0.75, cfg.Dedup.Threshold, 1e-9)
	// viper folds map keys to lower case
	assert.Equal(t, "Journal of the ACM", cfg.Parse.Macros["jacm"])
}

func TestLoadEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BIBDOC_LOG_LEVEL", "error")
	t.Setenv("BIBDOC_STORE_PATH", "env.db")

	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "env.db", cfg.Store.Path)
}

func TestLoadRejectsThreshold(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bibdoc.yaml"), []byte("dedup:\n  threshold: 2\n"), 0o644))

	_, err := LoadFrom(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dedup.threshold")
}
