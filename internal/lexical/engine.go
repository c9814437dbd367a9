package lexical

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	scouterr "github.com/codescout-mcp/codescout/internal/errors"
	"github.com/codescout-mcp/codescout/internal/workspace"
)

// defaultMaxResults caps searches that do not specify a limit.
const defaultMaxResults = 20

// Engine runs lexical searches over workspace scopes.
type Engine struct {
	ws    *workspace.Accessor
	opts  Options
	cache *resultCache
	log   *slog.Logger
}

// New creates an engine over the given accessor.
func New(ws *workspace.Accessor, opts Options, log *slog.Logger) *Engine {
	opts = opts.normalized()
	return &Engine{
		ws:    ws,
		opts:  opts,
		cache: newResultCache(opts.CacheTTL, opts.CacheCapacity),
		log:   log,
	}
}

// SearchCode searches file contents across the request scopes. Each scope
// runs the ripgrep / git grep / in-process scan chain on a bounded worker
// pool sharing one wall-clock deadline; Result.Partial is set when the
// deadline passed before every scope finished.
func (e *Engine) SearchCode(ctx context.Context, req CodeSearchRequest) (*Result, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, scouterr.New(scouterr.ErrCodeInvalidQuery, "query must not be empty", nil)
	}
	if len(req.Scopes) == 0 {
		return nil, scouterr.ValidationError("at least one search scope is required")
	}
	if req.MaxResults <= 0 {
		req.MaxResults = defaultMaxResults
	}

	key := cacheKey(req.Query, req.Scopes, req.Glob, req.MaxResults, req.CaseSensitive)
	if matches, ok := e.cache.get(key); ok {
		return &Result{Matches: matches, Scopes: len(req.Scopes)}, nil
	}

	deadline := time.Now().Add(e.opts.Timeout)
	dctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	perScope := make([][]Match, len(req.Scopes))
	var mu sync.Mutex
	timedOut := false

	g, gctx := errgroup.WithContext(dctx)
	g.SetLimit(e.opts.Concurrency)
	for i, scope := range req.Scopes {
		g.Go(func() error {
			// Stop claiming scopes once the shared deadline passed.
			if gctx.Err() != nil || time.Now().After(deadline) {
				mu.Lock()
				timedOut = true
				mu.Unlock()
				return nil
			}
			matches := e.searchScope(gctx, scope, req)
			mu.Lock()
			perScope[i] = matches
			if gctx.Err() != nil {
				timedOut = true
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	result := &Result{Scopes: len(req.Scopes), Partial: timedOut || dctx.Err() != nil}
	for _, matches := range perScope {
		result.Matches = append(result.Matches, matches...)
		if len(result.Matches) >= req.MaxResults {
			result.Matches = result.Matches[:req.MaxResults]
			break
		}
	}

	if !result.Partial {
		e.cache.put(key, result.Matches)
	}
	return result, nil
}

// searchScope runs the three-tier backend chain for one scope. Tool
// unavailability and runtime tool failures fall through silently; the
// in-process scan always answers.
func (e *Engine) searchScope(ctx context.Context, scope string, req CodeSearchRequest) []Match {
	matches, err := runRipgrep(ctx, scope, req)
	if err == nil {
		return matches
	}
	e.log.Debug("ripgrep_unavailable",
		slog.String("scope", scope),
		slog.String("error", err.Error()))

	matches, err = runGitGrep(ctx, scope, req)
	if err == nil {
		return matches
	}
	e.log.Debug("git_grep_unavailable",
		slog.String("scope", scope),
		slog.String("error", err.Error()))

	return e.runScan(ctx, scope, req)
}

// SearchFiles matches only file path and name text, for "find module by
// name" queries. Same fast-tool/fallback pattern as content search.
func (e *Engine) SearchFiles(ctx context.Context, req FileSearchRequest) ([]FileMatch, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, scouterr.New(scouterr.ErrCodeInvalidQuery, "query must not be empty", nil)
	}
	if len(req.Scopes) == 0 {
		return nil, scouterr.ValidationError("at least one search scope is required")
	}
	if req.MaxResults <= 0 {
		req.MaxResults = defaultMaxResults
	}

	dctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	needle := req.Query
	if !req.CaseSensitive {
		needle = strings.ToLower(needle)
	}

	var results []FileMatch
	for _, scope := range req.Scopes {
		for _, rel := range e.listFiles(dctx, scope) {
			haystack := rel
			if !req.CaseSensitive {
				haystack = strings.ToLower(haystack)
			}
			if !strings.Contains(haystack, needle) {
				continue
			}
			results = append(results, FileMatch{
				File:         filepath.Join(scope, rel),
				RelativePath: rel,
				Name:         filepath.Base(rel),
			})
			if len(results) >= req.MaxResults {
				return results, nil
			}
		}
	}
	return results, nil
}

// listFiles enumerates base-relative file paths, via ripgrep when present
// and the workspace walk otherwise.
func (e *Engine) listFiles(ctx context.Context, base string) []string {
	if files, err := runRipgrepFiles(ctx, base); err == nil {
		return files
	}

	var files []string
	for batch := range e.ws.Walk(ctx, base) {
		for _, f := range batch.Files {
			if rel, err := filepath.Rel(base, f); err == nil {
				files = append(files, filepath.ToSlash(rel))
			}
		}
	}
	sort.Strings(files)
	return files
}
