package workspace

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ignoredDirs is the fixed ignore-list of heavy or system directory names
// skipped during traversal (version control, dependency caches, build output).
var ignoredDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"target":       true,
	"coverage":     true,
	"__pycache__":  true,
	"venv":         true,
	".venv":        true,
	"bower_components": true,
}

// textExtensions is the fixed allow-list of extensions treated as text for
// content scans. Binary and unknown extensions are excluded.
var textExtensions = map[string]bool{
	".go": true, ".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".ts": true, ".tsx": true, ".py": true, ".rb": true, ".rs": true,
	".java": true, ".kt": true, ".kts": true, ".c": true, ".h": true,
	".cpp": true, ".hpp": true, ".cc": true, ".cs": true, ".swift": true,
	".php": true, ".scala": true, ".ex": true, ".exs": true, ".erl": true,
	".hs": true, ".lua": true, ".r": true, ".sql": true, ".sh": true,
	".bash": true, ".zsh": true, ".fish": true, ".html": true, ".htm": true,
	".css": true, ".scss": true, ".sass": true, ".less": true, ".vue": true,
	".svelte": true, ".json": true, ".yaml": true, ".yml": true,
	".toml": true, ".xml": true, ".ini": true, ".conf": true, ".cfg": true,
	".env": true, ".md": true, ".mdx": true, ".markdown": true, ".rst": true,
	".txt": true, ".graphql": true, ".gql": true, ".proto": true,
	".dockerfile": true, ".gradle": true, ".properties": true, ".tf": true,
}

// Batch is one directory's listing: its immediate subdirectories (after
// filtering) and the files it contains.
type Batch struct {
	Dir     string
	Subdirs []string
	Files   []string
}

// Walk performs a depth-first traversal from base, streaming one Batch per
// visited directory. Dotfile entries, ignored directory names, and entries
// excluded by the base's .gitignore are skipped. The channel is closed when
// traversal completes or ctx is done.
func (a *Accessor) Walk(ctx context.Context, base string) <-chan Batch {
	out := make(chan Batch, 8)
	ign := loadIgnoreMatcher(base)
	go func() {
		defer close(out)
		a.walkDir(ctx, base, base, ign, out)
	}()
	return out
}

func (a *Accessor) walkDir(ctx context.Context, base, dir string, ign *ignoreMatcher, out chan<- Batch) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return // unreadable directory: skip, never abort the walk
	}

	batch := Batch{Dir: dir}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)
		rel, relErr := filepath.Rel(base, full)
		if relErr == nil && ign.Ignored(filepath.ToSlash(rel), e.IsDir()) {
			continue
		}
		if e.IsDir() {
			if ignoredDirs[name] {
				continue
			}
			batch.Subdirs = append(batch.Subdirs, full)
			continue
		}
		batch.Files = append(batch.Files, full)
	}

	select {
	case out <- batch:
	case <-ctx.Done():
		return
	}

	for _, sub := range batch.Subdirs {
		a.walkDir(ctx, base, sub, ign, out)
	}
}

// TextFiles walks base and returns the sorted text files beneath it.
func (a *Accessor) TextFiles(ctx context.Context, base string) []string {
	var files []string
	for batch := range a.Walk(ctx, base) {
		for _, f := range batch.Files {
			if IsTextFile(f) {
				files = append(files, f)
			}
		}
	}
	sort.Strings(files)
	return files
}

// IgnoredDir reports whether name is on the traversal ignore-list.
func IgnoredDir(name string) bool {
	return ignoredDirs[name]
}

// IsTextFile reports whether path's extension is on the text allow-list.
func IsTextFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	return textExtensions[ext]
}
