// Package semantic provides the TF-IDF chunk index: identifier-aware
// tokenization, overlapping line-window chunking, incremental document
// frequency and norm maintenance, and cosine-similarity search. Two
// persistence backends (embedded SQLite and a flat JSON file) share one
// contract and are selected by a factory.
package semantic

import (
	"context"
	"time"
)

// Backend names.
const (
	BackendSQLite   = "sqlite"
	BackendFlatFile = "flatfile"
)

// Index is the shared contract of both persistence backends.
type Index interface {
	// Status reports backend identity and corpus counts.
	Status(ctx context.Context) (*Status, error)

	// IndexProject scans scope, indexes changed/new text files, removes
	// disappeared ones, and persists the result as one atomic unit.
	IndexProject(ctx context.Context, req IndexRequest) (*IndexSummary, error)

	// Search scores in-scope chunks against query by TF-IDF cosine
	// similarity. Empty query, empty corpus, and zero query norm all
	// return an empty list, not an error.
	Search(ctx context.Context, req SearchRequest) ([]Hit, error)

	// Close releases the backend and its index lock.
	Close() error
}

// Status describes the current state of an index.
type Status struct {
	Backend      string    `json:"backend"`
	NativeDriver bool      `json:"nativeDriver"`
	TotalFiles   int       `json:"totalFiles"`
	TotalChunks  int       `json:"totalChunks"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IndexRequest configures one indexing pass.
type IndexRequest struct {
	// Scope is the absolute directory to index.
	Scope string

	// Force reindexes files whose signature is unchanged.
	Force bool

	// MaxFiles caps this pass (0 = the configured global cap).
	MaxFiles int
}

// FileFailure records one file that could not be indexed. Failures never
// abort the enclosing batch.
type FileFailure struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// IndexSummary reports the outcome of one indexing pass.
type IndexSummary struct {
	ScannedFiles int           `json:"scannedFiles"`
	IndexedFiles int           `json:"indexedFiles"`
	SkippedFiles int           `json:"skippedFiles"`
	RemovedFiles int           `json:"removedFiles"`
	FailedFiles  int           `json:"failedFiles"`
	TotalFiles   int           `json:"totalFiles"`
	TotalChunks  int           `json:"totalChunks"`
	Failures     []FileFailure `json:"failures,omitempty"`
}

// SearchRequest configures one semantic query.
type SearchRequest struct {
	Query      string
	Scope      string
	MaxResults int
	MinScore   float64
}

// Hit is one semantic search result.
type Hit struct {
	File      string  `json:"file"`
	StartLine int     `json:"startLine"`
	EndLine   int     `json:"endLine"`
	Preview   string  `json:"preview"`
	Score     float64 `json:"score"`
}

// FileSignature is the cheap change-detection key: an unchanged signature
// means the file is skipped during reindexing unless forced.
type FileSignature struct {
	ModTime int64 `json:"modTime"`
	Size    int64 `json:"size"`
}

// Chunk is a contiguous, possibly overlapping line range of one file with a
// sparse term vector and a precomputed TF-IDF norm.
type Chunk struct {
	ID        string         `json:"id"`
	StartLine int            `json:"startLine"`
	EndLine   int            `json:"endLine"`
	Preview   string         `json:"preview"`
	Terms     map[string]int `json:"terms"`
	Norm      float64        `json:"norm"`
}

// Document is one indexed file: its signature plus its ordered chunks.
type Document struct {
	Signature FileSignature `json:"signature"`
	Chunks    []*Chunk      `json:"chunks"`
}

// Params are the indexing knobs, supplied by the configuration layer.
type Params struct {
	ChunkLines       int
	ChunkOverlap     int
	MaxTermsPerChunk int
	MaxIndexedFiles  int
	PreviewLength    int
}

// DefaultParams returns the default indexing knobs.
func DefaultParams() Params {
	return Params{
		ChunkLines:       40,
		ChunkOverlap:     10,
		MaxTermsPerChunk: 48,
		MaxIndexedFiles:  5000,
		PreviewLength:    240,
	}
}

// normalized fills in zero values and clamps the overlap below the window.
func (p Params) normalized() Params {
	d := DefaultParams()
	if p.ChunkLines <= 0 {
		p.ChunkLines = d.ChunkLines
	}
	if p.ChunkOverlap < 0 {
		p.ChunkOverlap = d.ChunkOverlap
	}
	if p.ChunkOverlap >= p.ChunkLines {
		p.ChunkOverlap = p.ChunkLines - 1
	}
	if p.MaxTermsPerChunk <= 0 {
		p.MaxTermsPerChunk = d.MaxTermsPerChunk
	}
	if p.MaxIndexedFiles <= 0 {
		p.MaxIndexedFiles = d.MaxIndexedFiles
	}
	if p.PreviewLength <= 0 {
		p.PreviewLength = d.PreviewLength
	}
	return p
}
