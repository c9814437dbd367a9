package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codescout-mcp/codescout/internal/config"
	scouterr "github.com/codescout-mcp/codescout/internal/errors"
)

func newAccessor(t *testing.T, roots []string, opts Options) *Accessor {
	t.Helper()
	cfgRoots := make([]config.Root, len(roots))
	for i, r := range roots {
		cfgRoots[i] = config.Root{Label: filepath.Base(r), Path: r}
	}
	a, err := New(cfgRoots, opts)
	require.NoError(t, err)
	return a
}

func TestNew_RequiresRoots(t *testing.T) {
	_, err := New(nil, Options{})
	assert.True(t, scouterr.IsCode(err, scouterr.ErrCodeInvalidInput))
}

func TestNew_RejectsRelativeRoot(t *testing.T) {
	_, err := New([]config.Root{{Label: "x", Path: "relative"}}, Options{})
	assert.Error(t, err)
}

func TestNormalizeTarget_ResolvesRelativeAgainstFirstRoot(t *testing.T) {
	root := t.TempDir()
	a := newAccessor(t, []string{root}, Options{})

	got, err := a.NormalizeTarget("sub/dir")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "sub", "dir"), got)
}

func TestNormalizeTarget_TraversalEscapesScope(t *testing.T) {
	root := t.TempDir()
	a := newAccessor(t, []string{root}, Options{})

	_, err := a.NormalizeTarget("../../etc/passwd")
	require.Error(t, err)
	assert.True(t, scouterr.IsCode(err, scouterr.ErrCodeOutOfScope))
}

func TestNormalizeTarget_AbsoluteInsideSecondRoot(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	a := newAccessor(t, []string{first, second}, Options{})

	target := filepath.Join(second, "lib", "util.go")
	got, err := a.NormalizeTarget(target)
	require.NoError(t, err)
	assert.Equal(t, target, got)
}

func TestNormalizeTarget_AbsoluteOutsideAllRoots(t *testing.T) {
	a := newAccessor(t, []string{t.TempDir()}, Options{})

	_, err := a.NormalizeTarget(filepath.Join(os.TempDir(), "unrelated-dir-xyz"))
	assert.True(t, scouterr.IsCode(err, scouterr.ErrCodeOutOfScope))
}

func TestResolveSearchBases_DefaultIsFirstRoot(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	a := newAccessor(t, []string{first, second}, Options{})

	bases, err := a.ResolveSearchBases("", false)
	require.NoError(t, err)
	assert.Equal(t, []string{first}, bases)
}

func TestResolveSearchBases_AllRoots(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	a := newAccessor(t, []string{first, second}, Options{})

	bases, err := a.ResolveSearchBases("", true)
	require.NoError(t, err)
	assert.Equal(t, []string{first, second}, bases)
}

func TestResolveSearchBases_ExplicitProject(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "svc"), 0o755))
	a := newAccessor(t, []string{root}, Options{})

	bases, err := a.ResolveSearchBases("svc", false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "svc")}, bases)
}

func TestResolveSearchBases_MissingProject(t *testing.T) {
	a := newAccessor(t, []string{t.TempDir()}, Options{})

	_, err := a.ResolveSearchBases("no-such-dir", false)
	assert.True(t, scouterr.IsCode(err, scouterr.ErrCodeProjectNotFound))
}

func TestResolveSearchBases_SplitsIntoProjects(t *testing.T) {
	root := t.TempDir()
	// Two qualifying projects: one by manifest, one by VCS marker.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "api"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "api", "go.mod"), []byte("module api\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "web", ".git"), 0o755))
	// A non-qualifying directory.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "notes"), 0o755))

	a := newAccessor(t, []string{root}, Options{SplitProjects: true})

	bases, err := a.ResolveSearchBases("", false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "api"),
		filepath.Join(root, "web"),
	}, bases)
}

func TestReadFileCapped_EnforcesLimit(t *testing.T) {
	root := t.TempDir()
	big := filepath.Join(root, "big.txt")
	require.NoError(t, os.WriteFile(big, []byte(strings.Repeat("a", 128)), 0o644))
	small := filepath.Join(root, "small.txt")
	require.NoError(t, os.WriteFile(small, []byte("ok"), 0o644))

	a := newAccessor(t, []string{root}, Options{MaxFileBytes: 64})

	_, err := a.ReadFileCapped(big)
	assert.True(t, scouterr.IsCode(err, scouterr.ErrCodeFileTooLarge))

	data, err := a.ReadFileCapped(small)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

func TestReadFileCapped_MissingFile(t *testing.T) {
	a := newAccessor(t, []string{t.TempDir()}, Options{})
	_, err := a.ReadFileCapped(filepath.Join(a.Roots()[0].Path, "nope.go"))
	assert.True(t, scouterr.IsCode(err, scouterr.ErrCodeFileNotFound))
}
