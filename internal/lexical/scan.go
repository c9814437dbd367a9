package lexical

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// runScan is the last tier: a full in-process scan of text files under
// base. It needs no external tools and honors the same literal matching
// semantics as the grep tiers.
func (e *Engine) runScan(ctx context.Context, base string, req CodeSearchRequest) []Match {
	needle := req.Query
	if !req.CaseSensitive {
		needle = strings.ToLower(needle)
	}

	var matches []Match
	for _, file := range e.ws.TextFiles(ctx, base) {
		if ctx.Err() != nil {
			break
		}
		if !globMatches(req.Glob, base, file) {
			continue
		}
		content, err := e.ws.ReadFileCapped(file)
		if err != nil {
			continue // oversized or unreadable, skip this file only
		}
		for i, line := range strings.Split(string(content), "\n") {
			haystack := line
			if !req.CaseSensitive {
				haystack = strings.ToLower(haystack)
			}
			if !strings.Contains(haystack, needle) {
				continue
			}
			matches = append(matches, Match{
				File: file,
				Line: i + 1,
				Text: strings.TrimSpace(line),
			})
			if req.MaxResults > 0 && len(matches) >= req.MaxResults {
				return matches
			}
		}
	}
	return matches
}

// globMatches tests file against pattern, trying both the base-relative
// path and the bare filename so "*.go" behaves like the grep tools.
func globMatches(pattern, base, file string) bool {
	if pattern == "" {
		return true
	}
	rel, err := filepath.Rel(base, file)
	if err != nil {
		rel = file
	}
	rel = filepath.ToSlash(rel)
	if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
		return true
	}
	ok, err := doublestar.Match(pattern, filepath.Base(file))
	return err == nil && ok
}
