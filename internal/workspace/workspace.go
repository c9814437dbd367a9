// Package workspace provides scoped file-system access for codescout.
// Every operation is contained within the configured roots: paths are
// normalized against them, search scopes are resolved from them, and reads
// are size-capped. The accessor never mutates the file system.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codescout-mcp/codescout/internal/config"
	scouterr "github.com/codescout-mcp/codescout/internal/errors"
)

// projectCacheSize caps the number of cached project discoveries.
const projectCacheSize = 256

// Options configures the accessor.
type Options struct {
	// MaxFileBytes is the per-file read cap (0 = 1MB default).
	MaxFileBytes int64

	// SplitProjects expands search bases into discovered sub-projects.
	SplitProjects bool

	// ForceSplit treats every immediate subdirectory as a project when
	// the heuristic finds none.
	ForceSplit bool
}

// DefaultMaxFileBytes is the default per-file read cap (1MB).
const DefaultMaxFileBytes = 1 * 1024 * 1024

// Accessor resolves and reads paths inside the configured roots.
type Accessor struct {
	roots        []config.Root
	maxFileBytes int64
	split        bool
	forceSplit   bool

	// projectCache caches discovered projects by root path.
	projectCache *lru.Cache[string, projectCacheEntry]
}

// New creates an accessor over the given roots.
// At least one root is required; root paths must be absolute.
func New(roots []config.Root, opts Options) (*Accessor, error) {
	if len(roots) == 0 {
		return nil, scouterr.ValidationError("at least one workspace root is required")
	}
	cleaned := make([]config.Root, len(roots))
	for i, r := range roots {
		if !filepath.IsAbs(r.Path) {
			return nil, scouterr.ValidationError(fmt.Sprintf("root path must be absolute: %s", r.Path))
		}
		cleaned[i] = config.Root{Label: r.Label, Path: filepath.Clean(r.Path)}
	}

	maxBytes := opts.MaxFileBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}

	cache, err := lru.New[string, projectCacheEntry](projectCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create project cache: %w", err)
	}

	return &Accessor{
		roots:        cleaned,
		maxFileBytes: maxBytes,
		split:        opts.SplitProjects,
		forceSplit:   opts.ForceSplit,
		projectCache: cache,
	}, nil
}

// Roots returns the configured roots in order.
func (a *Accessor) Roots() []config.Root {
	return a.roots
}

// NormalizeTarget resolves path against the first configured root (relative
// input) and verifies containment. It fails with a scope error when the
// resolved path lies outside every configured root.
func (a *Accessor) NormalizeTarget(path string) (string, error) {
	if path == "" {
		return "", scouterr.ValidationError("path must not be empty")
	}

	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(a.roots[0].Path, resolved)
	}
	resolved = filepath.Clean(resolved)

	if a.rootFor(resolved) == "" {
		return "", scouterr.ScopeError(path)
	}
	return resolved, nil
}

// rootFor returns the configured root containing path, or "".
func (a *Accessor) rootFor(path string) string {
	for _, r := range a.roots {
		if path == r.Path || strings.HasPrefix(path, r.Path+string(filepath.Separator)) {
			return r.Path
		}
	}
	return ""
}

// Contains reports whether path lies inside a configured root.
func (a *Accessor) Contains(path string) bool {
	return a.rootFor(filepath.Clean(path)) != ""
}

// ResolveSearchBases resolves the scope of one search:
//   - project given: that single normalized path,
//   - allRoots: every configured root,
//   - otherwise: the first root.
//
// With project splitting enabled, each base expands into its discovered
// sub-projects instead of being searched as one flat tree.
func (a *Accessor) ResolveSearchBases(project string, allRoots bool) ([]string, error) {
	var bases []string
	switch {
	case project != "":
		p, err := a.NormalizeTarget(project)
		if err != nil {
			return nil, err
		}
		if info, statErr := os.Stat(p); statErr != nil || !info.IsDir() {
			return nil, scouterr.NotFoundError(fmt.Sprintf("project directory not found: %s", project))
		}
		bases = []string{p}
	case allRoots:
		for _, r := range a.roots {
			bases = append(bases, r.Path)
		}
	default:
		bases = []string{a.roots[0].Path}
	}

	if !a.split {
		return bases, nil
	}

	var expanded []string
	for _, base := range bases {
		projects := a.DiscoverProjects(base)
		if len(projects) == 0 {
			expanded = append(expanded, base)
			continue
		}
		for _, p := range projects {
			expanded = append(expanded, p.Path)
		}
	}
	return expanded, nil
}

// ReadFileCapped reads path, failing with a capacity error when the file
// exceeds the configured size cap. The failure affects only this read.
func (a *Accessor) ReadFileCapped(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, scouterr.New(scouterr.ErrCodeFileNotFound,
				fmt.Sprintf("file not found: %s", path), nil)
		}
		return nil, scouterr.Wrap(scouterr.ErrCodeFileNotFound, err)
	}
	if info.Size() > a.maxFileBytes {
		return nil, scouterr.CapacityError(path, info.Size(), a.maxFileBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, scouterr.Wrap(scouterr.ErrCodeFileNotFound, err)
	}
	return data, nil
}
