package lexical

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codescout-mcp/codescout/internal/config"
	scouterr "github.com/codescout-mcp/codescout/internal/errors"
	"github.com/codescout-mcp/codescout/internal/workspace"
)

func newTestEngine(t *testing.T, root string, opts Options) *Engine {
	t.Helper()
	ws, err := workspace.New([]config.Root{{Label: "w", Path: root}}, workspace.Options{})
	require.NoError(t, err)
	return New(ws, opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func seedTree(t *testing.T, root string) {
	t.Helper()
	files := map[string]string{
		"main.go":        "package main\n\nfunc main() {\n\tconnectDatabase()\n}\n",
		"db/connect.go":  "package db\n\n// connectDatabase opens the pool\nfunc connectDatabase() {}\n",
		"notes/setup.md": "# Setup\nconfigure the Database connection\n",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestSearchCode_FindsLiteralIgnoringCase(t *testing.T) {
	root := t.TempDir()
	seedTree(t, root)
	e := newTestEngine(t, root, Options{})

	res, err := e.SearchCode(context.Background(), CodeSearchRequest{
		Query:  "database",
		Scopes: []string{root},
	})
	require.NoError(t, err)
	assert.False(t, res.Partial)

	var files []string
	for _, m := range res.Matches {
		files = append(files, m.File)
		assert.Greater(t, m.Line, 0)
		assert.NotEmpty(t, m.Text)
	}
	assert.Contains(t, files, filepath.Join(root, "main.go"))
	assert.Contains(t, files, filepath.Join(root, "db", "connect.go"))
	assert.Contains(t, files, filepath.Join(root, "notes", "setup.md"))
}

func TestSearchCode_CaseSensitive(t *testing.T) {
	root := t.TempDir()
	seedTree(t, root)
	e := newTestEngine(t, root, Options{})

	res, err := e.SearchCode(context.Background(), CodeSearchRequest{
		Query:         "Database",
		Scopes:        []string{root},
		CaseSensitive: true,
	})
	require.NoError(t, err)

	for _, m := range res.Matches {
		assert.Contains(t, m.Text, "Database")
	}
}

func TestSearchCode_GlobRestrictsFiles(t *testing.T) {
	root := t.TempDir()
	seedTree(t, root)
	e := newTestEngine(t, root, Options{})

	res, err := e.SearchCode(context.Background(), CodeSearchRequest{
		Query:  "database",
		Scopes: []string{root},
		Glob:   "*.md",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Matches)
	for _, m := range res.Matches {
		assert.Equal(t, ".md", filepath.Ext(m.File))
	}
}

func TestSearchCode_MaxResultsCap(t *testing.T) {
	root := t.TempDir()
	seedTree(t, root)
	e := newTestEngine(t, root, Options{})

	res, err := e.SearchCode(context.Background(), CodeSearchRequest{
		Query:      "database",
		Scopes:     []string{root},
		MaxResults: 1,
	})
	require.NoError(t, err)
	assert.Len(t, res.Matches, 1)
}

func TestSearchCode_EmptyQueryRejected(t *testing.T) {
	e := newTestEngine(t, t.TempDir(), Options{})
	_, err := e.SearchCode(context.Background(), CodeSearchRequest{
		Query:  "   ",
		Scopes: []string{"/w"},
	})
	assert.True(t, scouterr.IsCode(err, scouterr.ErrCodeInvalidQuery))
}

func TestSearchCode_NoScopesRejected(t *testing.T) {
	e := newTestEngine(t, t.TempDir(), Options{})
	_, err := e.SearchCode(context.Background(), CodeSearchRequest{Query: "alpha"})
	assert.True(t, scouterr.IsCode(err, scouterr.ErrCodeInvalidInput))
}

func TestSearchCode_MultiScopeConcatenates(t *testing.T) {
	root := t.TempDir()
	for _, proj := range []string{"one", "two"} {
		dir := filepath.Join(root, proj)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"),
			[]byte("package a // shared marker\n"), 0o644))
	}
	e := newTestEngine(t, root, Options{Concurrency: 2})

	res, err := e.SearchCode(context.Background(), CodeSearchRequest{
		Query:  "shared marker",
		Scopes: []string{filepath.Join(root, "one"), filepath.Join(root, "two")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Scopes)
	assert.Len(t, res.Matches, 2)
}

func TestSearchCode_ServesFromCache(t *testing.T) {
	root := t.TempDir()
	seedTree(t, root)
	e := newTestEngine(t, root, Options{CacheTTL: time.Minute})

	req := CodeSearchRequest{Query: "connectDatabase", Scopes: []string{root}}
	first, err := e.SearchCode(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, first.Matches)

	// The tree is gone; only the cache can answer now.
	require.NoError(t, os.RemoveAll(filepath.Join(root, "db")))
	require.NoError(t, os.Remove(filepath.Join(root, "main.go")))

	second, err := e.SearchCode(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.Matches, second.Matches)
}

func TestRunScan_LastTierMatches(t *testing.T) {
	root := t.TempDir()
	seedTree(t, root)
	e := newTestEngine(t, root, Options{})

	matches := e.runScan(context.Background(), root, CodeSearchRequest{
		Query:      "connectdatabase",
		MaxResults: 10,
	})
	require.NotEmpty(t, matches)
	assert.Contains(t, matches[0].Text, "connectDatabase")
}

func TestSearchFiles_MatchesNameAndPath(t *testing.T) {
	root := t.TempDir()
	seedTree(t, root)
	e := newTestEngine(t, root, Options{})

	got, err := e.SearchFiles(context.Background(), FileSearchRequest{
		Query:  "connect",
		Scopes: []string{root},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "connect.go", got[0].Name)
	assert.Equal(t, "db/connect.go", got[0].RelativePath)
	assert.Equal(t, filepath.Join(root, "db", "connect.go"), got[0].File)
}

func TestSearchFiles_EmptyQueryRejected(t *testing.T) {
	e := newTestEngine(t, t.TempDir(), Options{})
	_, err := e.SearchFiles(context.Background(), FileSearchRequest{Scopes: []string{"/w"}})
	assert.True(t, scouterr.IsCode(err, scouterr.ErrCodeInvalidQuery))
}

func TestGlobMatches(t *testing.T) {
	tests := []struct {
		pattern string
		rel     string
		want    bool
	}{
		{"", "any/file.go", true},
		{"*.go", "file.go", true},
		{"*.go", "sub/file.go", true}, // matches by bare filename
		{"**/*.go", "sub/file.go", true},
		{"*.md", "file.go", false},
		{"db/*.go", "db/connect.go", true},
	}
	for _, tt := range tests {
		got := globMatches(tt.pattern, "/w", filepath.Join("/w", filepath.FromSlash(tt.rel)))
		assert.Equal(t, tt.want, got, "%s vs %s", tt.pattern, tt.rel)
	}
}
