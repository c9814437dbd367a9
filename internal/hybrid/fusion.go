// Package hybrid fuses lexical and semantic search results with Reciprocal
// Rank Fusion and bootstraps the semantic index on first use.
package hybrid

import (
	"sort"

	"github.com/codescout-mcp/codescout/internal/lexical"
	"github.com/codescout-mcp/codescout/internal/semantic"
)

// DefaultRRFConstant is the standard RRF smoothing parameter.
// k=60 is empirically validated across domains.
const DefaultRRFConstant = 60

// Result types after fusion.
const (
	TypeLexical  = "lexical"
	TypeSemantic = "semantic"
	TypeHybrid   = "hybrid"
)

// FusedResult is a single result after RRF fusion. A lexical match and a
// semantic chunk merge into one hybrid record when the chunk's line range
// contains the match's line; otherwise each keeps its own type.
type FusedResult struct {
	File      string  `json:"file"`
	Line      int     `json:"line,omitempty"`
	StartLine int     `json:"startLine,omitempty"`
	EndLine   int     `json:"endLine,omitempty"`
	Text      string  `json:"text,omitempty"`
	Preview   string  `json:"preview,omitempty"`
	Type      string  `json:"type"`
	Score     float64 `json:"score"`

	// LexRank and SemRank are 1-indexed positions in the source lists,
	// 0 when absent. A rank absent from one list contributes 0 to the
	// combined score.
	LexRank  int     `json:"lexRank,omitempty"`
	SemRank  int     `json:"semRank,omitempty"`
	SemScore float64 `json:"semScore,omitempty"`
}

// fuse combines the two ranked lists: score = 1/(k+lexRank) + 1/(k+semRank),
// with an absent rank contributing nothing. Sorted by combined score
// descending, ties broken by file then line for stable output.
func fuse(lex []lexical.Match, sem []semantic.Hit, k int) []FusedResult {
	if k <= 0 {
		k = DefaultRRFConstant
	}

	semUsed := make([]bool, len(sem))
	var fused []FusedResult

	for li, m := range lex {
		merged := false
		for si, h := range sem {
			if semUsed[si] || h.File != m.File {
				continue
			}
			if m.Line < h.StartLine || m.Line > h.EndLine {
				continue
			}
			semUsed[si] = true
			fused = append(fused, FusedResult{
				File:      m.File,
				Line:      m.Line,
				StartLine: h.StartLine,
				EndLine:   h.EndLine,
				Text:      m.Text,
				Preview:   h.Preview,
				Type:      TypeHybrid,
				LexRank:   li + 1,
				SemRank:   si + 1,
				SemScore:  h.Score,
				Score:     rrf(k, li+1) + rrf(k, si+1),
			})
			merged = true
			break
		}
		if !merged {
			fused = append(fused, FusedResult{
				File:    m.File,
				Line:    m.Line,
				Text:    m.Text,
				Type:    TypeLexical,
				LexRank: li + 1,
				Score:   rrf(k, li+1),
			})
		}
	}

	for si, h := range sem {
		if semUsed[si] {
			continue
		}
		fused = append(fused, FusedResult{
			File:      h.File,
			StartLine: h.StartLine,
			EndLine:   h.EndLine,
			Preview:   h.Preview,
			Type:      TypeSemantic,
			SemRank:   si + 1,
			SemScore:  h.Score,
			Score:     rrf(k, si+1),
		})
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		if fused[i].File != fused[j].File {
			return fused[i].File < fused[j].File
		}
		return firstLine(fused[i]) < firstLine(fused[j])
	})
	return fused
}

func rrf(k, rank int) float64 {
	return 1 / float64(k+rank)
}

func firstLine(r FusedResult) int {
	if r.Line > 0 {
		return r.Line
	}
	return r.StartLine
}
