package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestWalk_SkipsDotfilesAndIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":                "package main",
		"sub/util.go":            "package sub",
		".hidden/secret.go":      "package hidden",
		".env.local":             "KEY=1",
		"node_modules/x/idx.js":  "x",
		"vendor/dep/dep.go":      "package dep",
		"__pycache__/m.pyc":      "x",
	})

	a := newAccessor(t, []string{root}, Options{})

	var files []string
	for batch := range a.Walk(context.Background(), root) {
		files = append(files, batch.Files...)
	}
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "main.go"),
		filepath.Join(root, "sub", "util.go"),
	}, files)
}

func TestWalk_ContextCancellation(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a/b/c/d.go": "x"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newAccessor(t, []string{root}, Options{})
	count := 0
	for range a.Walk(ctx, root) {
		count++
	}
	assert.Zero(t, count)
}

func TestTextFiles_FiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.ts":       "let x = 1",
		"a.go":       "package a",
		"image.png":  "binary",
		"noext":      "plain",
		"lib/c.py":   "pass",
	})

	a := newAccessor(t, []string{root}, Options{})
	got := a.TextFiles(context.Background(), root)
	assert.Equal(t, []string{
		filepath.Join(root, "a.go"),
		filepath.Join(root, "b.ts"),
		filepath.Join(root, "lib", "c.py"),
	}, got)
}

func TestIsTextFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"main.go", true},
		{"app.TSX", true},
		{"README.md", true},
		{"config.yaml", true},
		{"photo.jpg", false},
		{"binary.exe", false},
		{"Makefile", false},
		{"archive.tar.gz", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTextFile(tt.path), tt.path)
	}
}
