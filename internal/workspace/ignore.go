package workspace

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ignoreRule is one compiled .gitignore line.
type ignoreRule struct {
	glob    string
	negate  bool
	dirOnly bool
}

// ignoreMatcher applies the .gitignore at a walk base. Later rules win,
// matching git's evaluation order.
type ignoreMatcher struct {
	rules []ignoreRule
}

// loadIgnoreMatcher reads base/.gitignore. A missing or unreadable file
// yields a matcher that ignores nothing.
func loadIgnoreMatcher(base string) *ignoreMatcher {
	m := &ignoreMatcher{}
	f, err := os.Open(filepath.Join(base, ".gitignore"))
	if err != nil {
		return m
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m.addPattern(scanner.Text())
	}
	return m
}

func (m *ignoreMatcher) addPattern(pattern string) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || strings.HasPrefix(pattern, "#") {
		return
	}

	r := ignoreRule{}
	if strings.HasPrefix(pattern, "!") {
		r.negate = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		r.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}

	// A slash anywhere in the body anchors the pattern to the base;
	// otherwise it matches at any depth.
	if strings.HasPrefix(pattern, "/") {
		pattern = strings.TrimPrefix(pattern, "/")
	} else if !strings.Contains(pattern, "/") {
		pattern = "**/" + pattern
	}

	if _, err := doublestar.Match(pattern, ""); err != nil {
		return // malformed pattern: drop it
	}
	r.glob = pattern
	m.rules = append(m.rules, r)
}

// Ignored reports whether the base-relative path rel is excluded. rel uses
// slash separators.
func (m *ignoreMatcher) Ignored(rel string, isDir bool) bool {
	ignored := false
	for _, r := range m.rules {
		if r.dirOnly && !isDir {
			continue
		}
		if ok, _ := doublestar.Match(r.glob, rel); ok {
			ignored = !r.negate
		}
	}
	return ignored
}
