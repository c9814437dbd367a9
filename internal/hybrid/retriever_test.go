package hybrid

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codescout-mcp/codescout/internal/config"
	scouterr "github.com/codescout-mcp/codescout/internal/errors"
	"github.com/codescout-mcp/codescout/internal/lexical"
	"github.com/codescout-mcp/codescout/internal/semantic"
	"github.com/codescout-mcp/codescout/internal/workspace"
)

func newTestRetriever(t *testing.T, root string, opts Options) *Retriever {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	ws, err := workspace.New([]config.Root{{Label: "w", Path: root}}, workspace.Options{})
	require.NoError(t, err)

	sem, err := semantic.Open(t.TempDir(), semantic.BackendFlatFile, ws,
		semantic.DefaultParams(), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sem.Close() })

	lex := lexical.New(ws, lexical.Options{}, log)
	return New(lex, sem, ws, opts, log)
}

func seedProject(t *testing.T, root string) {
	t.Helper()
	files := map[string]string{
		"auth.go":  "package auth\n\nfunc validateToken(token string) bool {\n\treturn token != \"\"\n}\n",
		"users.go": "package auth\n\nfunc loadUser(id string) {}\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}
}

func TestSearch_AutoIndexBootstrap(t *testing.T) {
	root := t.TempDir()
	seedProject(t, root)
	r := newTestRetriever(t, root, Options{AutoIndex: true})

	resp, err := r.Search(context.Background(), Request{Query: "validateToken"})
	require.NoError(t, err)

	require.Len(t, resp.AutoIndex, 1)
	assert.Equal(t, 2, resp.AutoIndex[0].IndexedFiles)
	assert.Empty(t, resp.AutoIndex[0].Error)

	assert.NotEmpty(t, resp.SemanticHits)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, filepath.Join(root, "auth.go"), resp.Results[0].File)
	assert.Equal(t, TypeHybrid, resp.Results[0].Type)
}

func TestSearch_AutoIndexOnlyOncePerScope(t *testing.T) {
	root := t.TempDir()
	seedProject(t, root)
	r := newTestRetriever(t, root, Options{AutoIndex: true})

	// A query no file can satisfy semantically still triggers exactly one
	// bootstrap for the scope.
	first, err := r.Search(context.Background(), Request{Query: "zzznothing"})
	require.NoError(t, err)
	assert.Len(t, first.AutoIndex, 1)

	second, err := r.Search(context.Background(), Request{Query: "zzznothing"})
	require.NoError(t, err)
	assert.Empty(t, second.AutoIndex)
}

func TestSearch_AutoIndexDisabled(t *testing.T) {
	root := t.TempDir()
	seedProject(t, root)
	r := newTestRetriever(t, root, Options{})

	resp, err := r.Search(context.Background(), Request{Query: "validateToken"})
	require.NoError(t, err)
	assert.Empty(t, resp.AutoIndex)
	assert.Empty(t, resp.SemanticHits)

	// Lexical hits still rank on their own.
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, TypeLexical, resp.Results[0].Type)
}

func TestSearch_EmptyQueryRejected(t *testing.T) {
	r := newTestRetriever(t, t.TempDir(), Options{})
	_, err := r.Search(context.Background(), Request{Query: " "})
	assert.True(t, scouterr.IsCode(err, scouterr.ErrCodeInvalidQuery))
}

func TestSearch_MaxResultsTruncatesFusion(t *testing.T) {
	root := t.TempDir()
	seedProject(t, root)
	r := newTestRetriever(t, root, Options{AutoIndex: true})

	resp, err := r.Search(context.Background(), Request{Query: "auth", MaxResults: 1})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(resp.Results), 1)
}

func TestSearch_MissingProjectFails(t *testing.T) {
	r := newTestRetriever(t, t.TempDir(), Options{})
	_, err := r.Search(context.Background(), Request{Query: "alpha", Project: "absent"})
	assert.True(t, scouterr.IsCode(err, scouterr.ErrCodeProjectNotFound))
}
