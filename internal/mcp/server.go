package mcp

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codescout-mcp/codescout/internal/hybrid"
	"github.com/codescout-mcp/codescout/internal/lexical"
	"github.com/codescout-mcp/codescout/internal/semantic"
	"github.com/codescout-mcp/codescout/internal/workspace"
	"github.com/codescout-mcp/codescout/pkg/version"
)

// Server wires the retrieval engine into an MCP server over stdio.
type Server struct {
	mcp       *mcp.Server
	ws        *workspace.Accessor
	lex       *lexical.Engine
	sem       semantic.Index
	retriever *hybrid.Retriever
	log       *slog.Logger
}

// NewServer creates the MCP server and registers its tools.
func NewServer(ws *workspace.Accessor, lex *lexical.Engine, sem semantic.Index, retriever *hybrid.Retriever, log *slog.Logger) *Server {
	s := &Server{
		ws:        ws,
		lex:       lex,
		sem:       sem,
		retriever: retriever,
		log:       log,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "codescout",
			Version: version.Version,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Serve runs the server on stdio until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("mcp_server_started",
		slog.String("transport", "stdio"),
		slog.String("version", version.Version))
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_code",
		Description: "Search file contents for a text query across the workspace. Uses ripgrep when available and degrades to slower scans otherwise, so it always answers.",
	}, s.searchCodeHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "find_files",
		Description: "Find files by name or path fragment. Strictly faster than content search for locating a module or config file.",
	}, s.findFilesHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "semantic_search",
		Description: "Search the TF-IDF chunk index by meaning rather than exact text. Requires the project to be indexed (see index_project).",
	}, s.semanticSearchHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "hybrid_search",
		Description: "Best default search. Runs lexical and semantic search side by side and fuses both rankings; bootstraps the semantic index on first use.",
	}, s.hybridSearchHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_project",
		Description: "Build or refresh the semantic index for a project. Unchanged files are skipped, deleted files are removed from the index.",
	}, s.indexProjectHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_status",
		Description: "Report index backend, file and chunk counts, and when the index was last updated.",
	}, s.indexStatusHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_projects",
		Description: "List the project directories discovered under the configured roots.",
	}, s.listProjectsHandler)

	s.log.Info("mcp_tools_registered", slog.Int("count", 7))
}

func (s *Server) searchCodeHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchCodeInput) (
	*mcp.CallToolResult,
	SearchCodeOutput,
	error,
) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchCodeOutput{}, NewInvalidParamsError("query parameter is required")
	}

	scopes, err := s.ws.ResolveSearchBases(input.Project, input.AllRoots)
	if err != nil {
		return nil, SearchCodeOutput{}, MapError(err)
	}

	res, err := s.lex.SearchCode(ctx, lexical.CodeSearchRequest{
		Query:         input.Query,
		Scopes:        scopes,
		Glob:          input.Glob,
		MaxResults:    input.MaxResults,
		CaseSensitive: input.CaseSensitive,
	})
	if err != nil {
		return nil, SearchCodeOutput{}, MapError(err)
	}

	return nil, SearchCodeOutput{
		Matches: res.Matches,
		Partial: res.Partial,
		Scopes:  res.Scopes,
	}, nil
}

func (s *Server) findFilesHandler(ctx context.Context, _ *mcp.CallToolRequest, input FindFilesInput) (
	*mcp.CallToolResult,
	FindFilesOutput,
	error,
) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, FindFilesOutput{}, NewInvalidParamsError("query parameter is required")
	}

	scopes, err := s.ws.ResolveSearchBases(input.Project, input.AllRoots)
	if err != nil {
		return nil, FindFilesOutput{}, MapError(err)
	}

	files, err := s.lex.SearchFiles(ctx, lexical.FileSearchRequest{
		Query:         input.Query,
		Scopes:        scopes,
		MaxResults:    input.MaxResults,
		CaseSensitive: input.CaseSensitive,
	})
	if err != nil {
		return nil, FindFilesOutput{}, MapError(err)
	}

	return nil, FindFilesOutput{Files: files}, nil
}

func (s *Server) semanticSearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input SemanticSearchInput) (
	*mcp.CallToolResult,
	SemanticSearchOutput,
	error,
) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SemanticSearchOutput{}, NewInvalidParamsError("query parameter is required")
	}

	hits, err := s.sem.Search(ctx, semantic.SearchRequest{
		Query:      input.Query,
		Scope:      input.Project,
		MaxResults: input.MaxResults,
		MinScore:   input.MinScore,
	})
	if err != nil {
		return nil, SemanticSearchOutput{}, MapError(err)
	}

	return nil, SemanticSearchOutput{Hits: hits}, nil
}

func (s *Server) hybridSearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input HybridSearchInput) (
	*mcp.CallToolResult,
	HybridSearchOutput,
	error,
) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, HybridSearchOutput{}, NewInvalidParamsError("query parameter is required")
	}

	resp, err := s.retriever.Search(ctx, hybrid.Request{
		Query:      input.Query,
		Project:    input.Project,
		AllRoots:   input.AllRoots,
		MaxResults: input.MaxResults,
	})
	if err != nil {
		return nil, HybridSearchOutput{}, MapError(err)
	}

	return nil, HybridSearchOutput{
		Results:      resp.Results,
		LexicalHits:  resp.LexicalHits,
		SemanticHits: resp.SemanticHits,
		Partial:      resp.Partial,
		AutoIndex:    resp.AutoIndex,
	}, nil
}

func (s *Server) indexProjectHandler(ctx context.Context, _ *mcp.CallToolRequest, input IndexProjectInput) (
	*mcp.CallToolResult,
	IndexProjectOutput,
	error,
) {
	scope := input.Project
	if scope == "" {
		scope = s.ws.Roots()[0].Path
	}

	summary, err := s.sem.IndexProject(ctx, semantic.IndexRequest{
		Scope:    scope,
		Force:    input.Force,
		MaxFiles: input.MaxFiles,
	})
	if err != nil {
		return nil, IndexProjectOutput{}, MapError(err)
	}

	return nil, IndexProjectOutput{IndexSummary: *summary}, nil
}

func (s *Server) indexStatusHandler(ctx context.Context, _ *mcp.CallToolRequest, _ IndexStatusInput) (
	*mcp.CallToolResult,
	IndexStatusOutput,
	error,
) {
	status, err := s.sem.Status(ctx)
	if err != nil {
		return nil, IndexStatusOutput{}, MapError(err)
	}
	return nil, IndexStatusOutput{Status: *status}, nil
}

func (s *Server) listProjectsHandler(_ context.Context, _ *mcp.CallToolRequest, _ ListProjectsInput) (
	*mcp.CallToolResult,
	ListProjectsOutput,
	error,
) {
	out := ListProjectsOutput{}
	for _, root := range s.ws.Roots() {
		projects := s.ws.DiscoverProjects(root.Path)
		if len(projects) == 0 {
			out.Projects = append(out.Projects, ProjectOutput{
				Name: filepath.Base(root.Path),
				Path: root.Path,
				Root: root.Path,
			})
			continue
		}
		for _, p := range projects {
			out.Projects = append(out.Projects, ProjectOutput{
				Name: p.Name,
				Path: p.Path,
				Root: root.Path,
			})
		}
	}
	return nil, out, nil
}
