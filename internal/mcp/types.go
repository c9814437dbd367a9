package mcp

import (
	"github.com/codescout-mcp/codescout/internal/hybrid"
	"github.com/codescout-mcp/codescout/internal/lexical"
	"github.com/codescout-mcp/codescout/internal/semantic"
)

// SearchCodeInput defines the input schema for the search_code tool.
type SearchCodeInput struct {
	Query         string `json:"query" jsonschema:"the text to search file contents for"`
	Project       string `json:"project,omitempty" jsonschema:"restrict the search to one project directory"`
	AllRoots      bool   `json:"all_roots,omitempty" jsonschema:"search every configured root instead of the first"`
	Glob          string `json:"glob,omitempty" jsonschema:"restrict matches to files whose path matches this glob, e.g. *.go"`
	MaxResults    int    `json:"max_results,omitempty" jsonschema:"maximum number of matches, default 20"`
	CaseSensitive bool   `json:"case_sensitive,omitempty" jsonschema:"match case exactly instead of ignoring it"`
}

// SearchCodeOutput defines the output schema for the search_code tool.
type SearchCodeOutput struct {
	Matches []lexical.Match `json:"matches"`
	Partial bool            `json:"partial,omitempty"`
	Scopes  int             `json:"scopes"`
}

// FindFilesInput defines the input schema for the find_files tool.
type FindFilesInput struct {
	Query         string `json:"query" jsonschema:"the file name or path fragment to look for"`
	Project       string `json:"project,omitempty" jsonschema:"restrict the search to one project directory"`
	AllRoots      bool   `json:"all_roots,omitempty" jsonschema:"search every configured root instead of the first"`
	MaxResults    int    `json:"max_results,omitempty" jsonschema:"maximum number of files, default 20"`
	CaseSensitive bool   `json:"case_sensitive,omitempty" jsonschema:"match case exactly instead of ignoring it"`
}

// FindFilesOutput defines the output schema for the find_files tool.
type FindFilesOutput struct {
	Files []lexical.FileMatch `json:"files"`
}

// SemanticSearchInput defines the input schema for the semantic_search tool.
type SemanticSearchInput struct {
	Query      string  `json:"query" jsonschema:"the natural-language or identifier query"`
	Project    string  `json:"project,omitempty" jsonschema:"restrict the search to one project directory"`
	MaxResults int     `json:"max_results,omitempty" jsonschema:"maximum number of hits, default 20"`
	MinScore   float64 `json:"min_score,omitempty" jsonschema:"discard hits below this similarity score (0-1)"`
}

// SemanticSearchOutput defines the output schema for the semantic_search tool.
type SemanticSearchOutput struct {
	Hits []semantic.Hit `json:"hits"`
}

// HybridSearchInput defines the input schema for the hybrid_search tool.
type HybridSearchInput struct {
	Query      string `json:"query" jsonschema:"the search query, fused across lexical and semantic ranking"`
	Project    string `json:"project,omitempty" jsonschema:"restrict the search to one project directory"`
	AllRoots   bool   `json:"all_roots,omitempty" jsonschema:"search every configured root instead of the first"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum number of fused results, default 20"`
}

// HybridSearchOutput defines the output schema for the hybrid_search tool.
type HybridSearchOutput struct {
	Results      []hybrid.FusedResult      `json:"results"`
	LexicalHits  []lexical.Match           `json:"lexicalHits"`
	SemanticHits []semantic.Hit            `json:"semanticHits"`
	Partial      bool                      `json:"partial,omitempty"`
	AutoIndex    []hybrid.AutoIndexOutcome `json:"autoIndex,omitempty"`
}

// IndexProjectInput defines the input schema for the index_project tool.
type IndexProjectInput struct {
	Project  string `json:"project,omitempty" jsonschema:"the project directory to index, default the first root"`
	Force    bool   `json:"force,omitempty" jsonschema:"reindex files even when their signature is unchanged"`
	MaxFiles int    `json:"max_files,omitempty" jsonschema:"cap the number of files scanned in this pass"`
}

// IndexProjectOutput defines the output schema for the index_project tool.
type IndexProjectOutput struct {
	semantic.IndexSummary
}

// IndexStatusInput defines the input schema for the index_status tool (no parameters).
type IndexStatusInput struct{}

// IndexStatusOutput defines the output schema for the index_status tool.
type IndexStatusOutput struct {
	semantic.Status
}

// ListProjectsInput defines the input schema for the list_projects tool (no parameters).
type ListProjectsInput struct{}

// ProjectOutput is one discovered project.
type ProjectOutput struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Root string `json:"root"`
}

// ListProjectsOutput defines the output schema for the list_projects tool.
type ListProjectsOutput struct {
	Projects []ProjectOutput `json:"projects"`
}
