package hybrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codescout-mcp/codescout/internal/lexical"
	"github.com/codescout-mcp/codescout/internal/semantic"
)

// An item ranked first in both lists must beat an item ranked first in
// only one.
func TestFuse_FirstInBothBeatsFirstInOne(t *testing.T) {
	lex := []lexical.Match{
		{File: "/w/both.go", Line: 10, Text: "alpha"},
		{File: "/w/lexonly.go", Line: 1, Text: "alpha"},
	}
	sem := []semantic.Hit{
		{File: "/w/both.go", StartLine: 1, EndLine: 40, Score: 0.9},
	}

	fused := fuse(lex, sem, DefaultRRFConstant)
	require.NotEmpty(t, fused)
	assert.Equal(t, "/w/both.go", fused[0].File)
	assert.Equal(t, TypeHybrid, fused[0].Type)

	semOnly := fuse(nil, sem, DefaultRRFConstant)
	require.Len(t, semOnly, 1)
	assert.Greater(t, fused[0].Score, semOnly[0].Score)
}

func TestFuse_MergesWhenChunkContainsLine(t *testing.T) {
	lex := []lexical.Match{{File: "/w/a.go", Line: 25, Text: "handler()"}}
	sem := []semantic.Hit{{File: "/w/a.go", StartLine: 20, EndLine: 40, Score: 0.5, Preview: "..."}}

	fused := fuse(lex, sem, DefaultRRFConstant)
	require.Len(t, fused, 1)
	assert.Equal(t, TypeHybrid, fused[0].Type)
	assert.Equal(t, 25, fused[0].Line)
	assert.Equal(t, 20, fused[0].StartLine)
	assert.Equal(t, 1, fused[0].LexRank)
	assert.Equal(t, 1, fused[0].SemRank)
	assert.InDelta(t, 2.0/61.0, fused[0].Score, 1e-12)
}

func TestFuse_NoMergeOutsideLineRange(t *testing.T) {
	lex := []lexical.Match{{File: "/w/a.go", Line: 5}}
	sem := []semantic.Hit{{File: "/w/a.go", StartLine: 20, EndLine: 40, Score: 0.5}}

	fused := fuse(lex, sem, DefaultRRFConstant)
	require.Len(t, fused, 2)
	types := []string{fused[0].Type, fused[1].Type}
	assert.ElementsMatch(t, []string{TypeLexical, TypeSemantic}, types)
}

func TestFuse_NoMergeAcrossFiles(t *testing.T) {
	lex := []lexical.Match{{File: "/w/a.go", Line: 5}}
	sem := []semantic.Hit{{File: "/w/b.go", StartLine: 1, EndLine: 40, Score: 0.5}}

	fused := fuse(lex, sem, DefaultRRFConstant)
	assert.Len(t, fused, 2)
}

// An absent rank contributes nothing to the combined score.
func TestFuse_AbsentRankContributesZero(t *testing.T) {
	lex := []lexical.Match{{File: "/w/a.go", Line: 5}}

	fused := fuse(lex, nil, DefaultRRFConstant)
	require.Len(t, fused, 1)
	assert.InDelta(t, 1.0/61.0, fused[0].Score, 1e-12)
	assert.Zero(t, fused[0].SemRank)
}

func TestFuse_SortedDescendingByScore(t *testing.T) {
	lex := []lexical.Match{
		{File: "/w/a.go", Line: 1},
		{File: "/w/b.go", Line: 2},
		{File: "/w/c.go", Line: 3},
	}
	sem := []semantic.Hit{
		{File: "/w/c.go", StartLine: 1, EndLine: 10, Score: 0.8},
	}

	fused := fuse(lex, sem, DefaultRRFConstant)
	for i := 1; i < len(fused); i++ {
		assert.GreaterOrEqual(t, fused[i-1].Score, fused[i].Score)
	}
	// c.go appears in both lists and outranks the lexical-only leaders.
	assert.Equal(t, "/w/c.go", fused[0].File)
}

func TestFuse_EmptyInputs(t *testing.T) {
	assert.Empty(t, fuse(nil, nil, DefaultRRFConstant))
}
