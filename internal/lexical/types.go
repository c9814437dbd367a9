// Package lexical provides line and filename search over workspace scopes.
// Each scope runs a three-tier backend chain: ripgrep, then git grep, then a
// full in-process scan, so results survive missing external tools. Searches
// across many project scopes run on a bounded worker pool sharing one
// wall-clock deadline, and code-search results pass through a TTL cache.
package lexical

import (
	"runtime"
	"time"
)

// Match is one lexical line match.
type Match struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// FileMatch is one filename match.
type FileMatch struct {
	File         string `json:"file"`
	RelativePath string `json:"relativePath"`
	Name         string `json:"name"`
}

// CodeSearchRequest configures one content search.
type CodeSearchRequest struct {
	Query         string
	Scopes        []string
	Glob          string
	MaxResults    int
	CaseSensitive bool
}

// FileSearchRequest configures one filename search.
type FileSearchRequest struct {
	Query         string
	Scopes        []string
	MaxResults    int
	CaseSensitive bool
}

// Result is the outcome of one multi-scope search. Partial is set when the
// shared deadline passed before every scope was processed.
type Result struct {
	Matches []Match `json:"matches"`
	Partial bool    `json:"partial"`
	Scopes  int     `json:"scopes"`
}

// Options configures the engine.
type Options struct {
	// Timeout is the shared wall-clock budget for one search (0 = 10s).
	Timeout time.Duration

	// Concurrency bounds the scope worker pool (0 = NumCPU).
	Concurrency int

	// CacheTTL is the result cache lifetime; 0 disables caching.
	CacheTTL time.Duration

	// CacheCapacity bounds the cache; the oldest-inserted entry is
	// evicted when it overflows (0 = 128).
	CacheCapacity int
}

func (o Options) normalized() Options {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.NumCPU()
	}
	if o.CacheCapacity <= 0 {
		o.CacheCapacity = 128
	}
	return o
}
