package semantic

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// chunkFile splits content into overlapping line-window chunks. Windows are
// ChunkLines long and advance by ChunkLines-ChunkOverlap lines; each chunk
// keeps its top MaxTermsPerChunk terms by frequency and a capped preview.
// Norms are filled in later by the corpus. Empty content yields no chunks.
func chunkFile(path, content string, params Params) []*Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	// A trailing newline terminates the last line rather than opening an
	// empty one; dropping it keeps EndLine within the file's line count.
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	step := params.ChunkLines - params.ChunkOverlap

	var chunks []*Chunk
	for start := 0; start < len(lines); start += step {
		end := start + params.ChunkLines
		if end > len(lines) {
			end = len(lines)
		}
		window := strings.Join(lines[start:end], "\n")

		terms := topTerms(TermCounts(window), params.MaxTermsPerChunk)
		if len(terms) > 0 {
			chunks = append(chunks, &Chunk{
				ID:        chunkID(path, start+1),
				StartLine: start + 1,
				EndLine:   end,
				Preview:   preview(window, params.PreviewLength),
				Terms:     terms,
			})
		}

		if end == len(lines) {
			break
		}
	}
	return chunks
}

// chunkID derives a stable chunk identifier from file path and start line.
func chunkID(path string, startLine int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", path, startLine)))
	return hex.EncodeToString(sum[:8])
}

// topTerms keeps the n highest-frequency terms, ties broken alphabetically
// so repeated indexing runs produce identical vectors.
func topTerms(counts map[string]int, n int) map[string]int {
	if len(counts) <= n {
		return counts
	}
	terms := make([]string, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	kept := make(map[string]int, n)
	for _, t := range terms[:n] {
		kept[t] = counts[t]
	}
	return kept
}

// preview returns the trimmed window text truncated to maxLen runes.
func preview(window string, maxLen int) string {
	trimmed := strings.TrimSpace(window)
	runes := []rune(trimmed)
	if len(runes) <= maxLen {
		return trimmed
	}
	return string(runes[:maxLen])
}
