package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_DefaultsAreValid(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "sqlite", cfg.Index.Backend)
	assert.Greater(t, cfg.Index.ChunkLines, cfg.Index.ChunkOverlap)
	assert.True(t, cfg.Search.SplitProjects)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, NewConfig().Index.ChunkLines, cfg.Index.ChunkLines)
}

func TestLoad_ReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
index:
  backend: flatfile
  chunk_lines: 20
  chunk_overlap: 5
search:
  max_results: 7
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".codescout.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "flatfile", cfg.Index.Backend)
	assert.Equal(t, 20, cfg.Index.ChunkLines)
	assert.Equal(t, 5, cfg.Index.ChunkOverlap)
	assert.Equal(t, 7, cfg.Search.MaxResults)
	// Untouched values keep defaults.
	assert.Equal(t, NewConfig().Index.MaxTermsPerChunk, cfg.Index.MaxTermsPerChunk)
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	dir := t.TempDir()
	yaml := "index:\n  backend: flatfile\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".codescout.yaml"), []byte(yaml), 0o644))

	t.Setenv("CODESCOUT_INDEX_BACKEND", "sqlite")
	t.Setenv("CODESCOUT_SEARCH_TIMEOUT", "3s")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Index.Backend)
	assert.Equal(t, 3*time.Second, cfg.Search.Timeout)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Index.Backend = "badger" }},
		{"zero chunk lines", func(c *Config) { c.Index.ChunkLines = 0 }},
		{"overlap >= chunk lines", func(c *Config) { c.Index.ChunkOverlap = c.Index.ChunkLines }},
		{"negative min score", func(c *Config) { c.Search.MinSemanticScore = -0.1 }},
		{"min score above one", func(c *Config) { c.Search.MinSemanticScore = 1.5 }},
		{"relative root", func(c *Config) { c.Roots = []Root{{Label: "x", Path: "relative/path"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.Roots = []Root{{Label: "work", Path: dir}}
	cfg.Search.MaxResults = 11

	require.NoError(t, cfg.Save(filepath.Join(dir, ".codescout.yaml")))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 11, loaded.Search.MaxResults)
	require.Len(t, loaded.Roots, 1)
	assert.Equal(t, "work", loaded.Roots[0].Label)
}
