package workspace

import (
	"os"
	"path/filepath"
	"time"
)

// Project is a directory inferred to be a self-contained unit. Projects only
// scope queries; they are never persisted as entities.
type Project struct {
	Name string
	Path string
}

// projectCacheEntry pairs a discovery result with the root's mtime at the
// time of discovery, so directory churn invalidates the entry.
type projectCacheEntry struct {
	modTime  time.Time
	projects []Project
}

// vcsMarkers are version-control markers that qualify a directory as a project.
var vcsMarkers = []string{".git", ".hg", ".svn"}

// manifestFiles is the fixed recognized set of package/build/lockfile names.
var manifestFiles = []string{
	"go.mod",
	"package.json",
	"Cargo.toml",
	"pyproject.toml",
	"setup.py",
	"requirements.txt",
	"pom.xml",
	"build.gradle",
	"build.gradle.kts",
	"Gemfile",
	"composer.json",
	"mix.exs",
	"CMakeLists.txt",
	"Makefile",
	"Package.swift",
	"deno.json",
}

// hintDirs are source/library/app/test layout conventions. Two or more of
// these qualify a directory as a project even without a manifest.
var hintDirs = []string{
	"src", "lib", "app", "apps", "pkg", "internal", "cmd",
	"test", "tests", "spec", "include", "public", "assets",
}

// DiscoverProjects inspects the immediate subdirectories of root and returns
// those that look like self-contained projects. Dotfiles and ignored names
// are skipped. When zero subdirectories qualify and force-split is set,
// every immediate subdirectory becomes its own scope unit; otherwise an
// empty slice means the root is one flat scope.
//
// Results are cached per root and invalidated by the root's mtime.
func (a *Accessor) DiscoverProjects(root string) []Project {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil
	}

	if entry, ok := a.projectCache.Get(root); ok && entry.modTime.Equal(info.ModTime()) {
		return entry.projects
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var projects []Project
	var candidates []Project
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if name[0] == '.' || ignoredDirs[name] {
			continue
		}
		dir := filepath.Join(root, name)
		candidates = append(candidates, Project{Name: name, Path: dir})
		if isProjectDir(dir) {
			projects = append(projects, Project{Name: name, Path: dir})
		}
	}

	if len(projects) == 0 && a.forceSplit {
		projects = candidates
	}

	a.projectCache.Add(root, projectCacheEntry{modTime: info.ModTime(), projects: projects})
	return projects
}

// InvalidateProjectCache drops the cached discovery for root, or all roots
// when root is empty. Called by the watcher on directory churn.
func (a *Accessor) InvalidateProjectCache(root string) {
	if root == "" {
		a.projectCache.Purge()
		return
	}
	a.projectCache.Remove(root)
}

// isProjectDir applies the project-boundary heuristic: a version-control
// marker, a recognized manifest file, or at least two hint directories.
func isProjectDir(dir string) bool {
	for _, marker := range vcsMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	for _, manifest := range manifestFiles {
		if info, err := os.Stat(filepath.Join(dir, manifest)); err == nil && !info.IsDir() {
			return true
		}
	}

	hints := 0
	for _, hint := range hintDirs {
		if info, err := os.Stat(filepath.Join(dir, hint)); err == nil && info.IsDir() {
			hints++
			if hints >= 2 {
				return true
			}
		}
	}
	return false
}
