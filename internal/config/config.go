// Package config holds the engine configuration for codescout.
// All engine knobs are plain values passed into constructors; the retrieval
// core performs no config discovery of its own.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Root is a labeled workspace root directory. Every operation is contained
// within the configured roots.
type Root struct {
	Label string `yaml:"label" json:"label"`
	Path  string `yaml:"path" json:"path"`
}

// Config represents the complete codescout configuration.
type Config struct {
	Version int          `yaml:"version" json:"version"`
	Roots   []Root       `yaml:"roots" json:"roots"`
	Index   IndexConfig  `yaml:"index" json:"index"`
	Search  SearchConfig `yaml:"search" json:"search"`
	Watch   WatchConfig  `yaml:"watch" json:"watch"`
	Server  ServerConfig `yaml:"server" json:"server"`
}

// IndexConfig configures the semantic index.
type IndexConfig struct {
	// Backend selects the persistence backend: "sqlite" (default) or "flatfile".
	// The factory falls back to flatfile when sqlite initialization fails.
	Backend string `yaml:"backend" json:"backend"`

	// DataDir is where index files live (default: ~/.codescout/index).
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// ChunkLines is the line span of one chunk window.
	ChunkLines int `yaml:"chunk_lines" json:"chunk_lines"`

	// ChunkOverlap is the number of lines shared by adjacent windows.
	// The window advances by ChunkLines - ChunkOverlap lines per step.
	ChunkOverlap int `yaml:"chunk_overlap" json:"chunk_overlap"`

	// MaxTermsPerChunk caps the sparse term vector per chunk.
	MaxTermsPerChunk int `yaml:"max_terms_per_chunk" json:"max_terms_per_chunk"`

	// MaxIndexedFiles is the global cap on files per IndexProject call.
	MaxIndexedFiles int `yaml:"max_indexed_files" json:"max_indexed_files"`

	// MaxFileBytes is the per-file read size cap.
	MaxFileBytes int64 `yaml:"max_file_bytes" json:"max_file_bytes"`

	// PreviewLength caps the stored preview string per chunk.
	PreviewLength int `yaml:"preview_length" json:"preview_length"`
}

// SearchConfig configures lexical and hybrid search.
type SearchConfig struct {
	// MaxResults is the default result cap per search.
	MaxResults int `yaml:"max_results" json:"max_results"`

	// MinSemanticScore drops semantic hits below this similarity.
	MinSemanticScore float64 `yaml:"min_semantic_score" json:"min_semantic_score"`

	// Timeout is the wall-clock deadline shared by all search workers.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// Concurrency is the worker pool size for multi-project search
	// (0 = NumCPU).
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	// CacheTTL is the lexical result cache expiry (0 disables caching).
	CacheTTL time.Duration `yaml:"cache_ttl" json:"cache_ttl"`

	// CacheCapacity is the maximum number of cached result lists; the
	// oldest-inserted entry is evicted when exceeded.
	CacheCapacity int `yaml:"cache_capacity" json:"cache_capacity"`

	// SplitProjects expands each search base into its discovered
	// sub-projects instead of one flat tree.
	SplitProjects bool `yaml:"split_projects" json:"split_projects"`

	// ForceSplit treats every immediate subdirectory as a project when the
	// heuristic finds none.
	ForceSplit bool `yaml:"force_split" json:"force_split"`

	// AutoIndex lets hybrid search trigger one index build per scope when
	// the semantic leg comes back empty.
	AutoIndex bool `yaml:"auto_index" json:"auto_index"`
}

// WatchConfig configures the file-system watcher.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled" json:"enabled"`
	Debounce time.Duration `yaml:"debounce" json:"debounce"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Index: IndexConfig{
			Backend:          "sqlite",
			DataDir:          defaultDataDir(),
			ChunkLines:       40,
			ChunkOverlap:     10,
			MaxTermsPerChunk: 48,
			MaxIndexedFiles:  5000,
			MaxFileBytes:     1 * 1024 * 1024,
			PreviewLength:    240,
		},
		Search: SearchConfig{
			MaxResults:       20,
			MinSemanticScore: 0.08,
			Timeout:          10 * time.Second,
			Concurrency:      runtime.NumCPU(),
			CacheTTL:         30 * time.Second,
			CacheCapacity:    128,
			SplitProjects:    true,
			AutoIndex:        true,
		},
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: 2 * time.Second,
		},
		Server: ServerConfig{
			LogLevel: "info",
		},
	}
}

// Load loads configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. Config file (.codescout.yaml in dir, then .codescout.yml)
//  3. Environment variables (CODESCOUT_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts .codescout.yaml, then .codescout.yml. A missing file
// is fine; defaults apply.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{".codescout.yaml", ".codescout.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return c.loadYAML(path)
		}
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// applyEnvOverrides applies CODESCOUT_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CODESCOUT_INDEX_BACKEND"); v != "" {
		c.Index.Backend = v
	}
	if v := os.Getenv("CODESCOUT_DATA_DIR"); v != "" {
		c.Index.DataDir = v
	}
	if v := os.Getenv("CODESCOUT_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.MaxResults = n
		}
	}
	if v := os.Getenv("CODESCOUT_SEARCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Search.Timeout = d
		}
	}
	if v := os.Getenv("CODESCOUT_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.Concurrency = n
		}
	}
	if v := os.Getenv("CODESCOUT_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	if c.Index.Backend != "sqlite" && c.Index.Backend != "flatfile" {
		return fmt.Errorf("index.backend must be sqlite or flatfile, got %q", c.Index.Backend)
	}
	if c.Index.ChunkLines <= 0 {
		return fmt.Errorf("index.chunk_lines must be positive, got %d", c.Index.ChunkLines)
	}
	if c.Index.ChunkOverlap < 0 || c.Index.ChunkOverlap >= c.Index.ChunkLines {
		return fmt.Errorf("index.chunk_overlap must be in [0, chunk_lines), got %d", c.Index.ChunkOverlap)
	}
	if c.Index.MaxTermsPerChunk <= 0 {
		return fmt.Errorf("index.max_terms_per_chunk must be positive, got %d", c.Index.MaxTermsPerChunk)
	}
	if c.Index.MaxFileBytes <= 0 {
		return fmt.Errorf("index.max_file_bytes must be positive, got %d", c.Index.MaxFileBytes)
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be positive, got %d", c.Search.MaxResults)
	}
	if c.Search.MinSemanticScore < 0 || c.Search.MinSemanticScore > 1 {
		return fmt.Errorf("search.min_semantic_score must be in [0,1], got %f", c.Search.MinSemanticScore)
	}
	if c.Search.Concurrency < 0 {
		return fmt.Errorf("search.concurrency must not be negative, got %d", c.Search.Concurrency)
	}
	if c.Search.CacheCapacity < 0 {
		return fmt.Errorf("search.cache_capacity must not be negative, got %d", c.Search.CacheCapacity)
	}
	for i, r := range c.Roots {
		if r.Path == "" {
			return fmt.Errorf("roots[%d].path must not be empty", i)
		}
		if !filepath.IsAbs(r.Path) {
			return fmt.Errorf("roots[%d].path must be absolute, got %q", i, r.Path)
		}
	}
	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".codescout", "index")
	}
	return filepath.Join(home, ".codescout", "index")
}
