package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codescout-mcp/codescout/internal/hybrid"
	"github.com/codescout-mcp/codescout/internal/lexical"
	"github.com/codescout-mcp/codescout/internal/output"
	"github.com/codescout-mcp/codescout/internal/semantic"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit         int
	project       string
	allRoots      bool
	lexicalOnly   bool
	semanticOnly  bool
	glob          string
	caseSensitive bool
	minScore      float64
	jsonOutput    bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the workspace",
		Long: `Search the workspace with hybrid retrieval: literal grep matches and
TF-IDF similarity hits fused by Reciprocal Rank Fusion.

Examples:
  codescout search "connect database"
  codescout search "validateToken" --lexical --glob "*.go"
  codescout search "retry with backoff" --semantic --limit 5
  codescout search "parser" --project api --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.lexicalOnly && opts.semanticOnly {
				return fmt.Errorf("--lexical and --semantic are mutually exclusive")
			}
			query := strings.Join(args, " ")
			return runSearch(cmd.Context(), cmd, query, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (0 = configured default)")
	cmd.Flags().StringVarP(&opts.project, "project", "p", "", "Search only this discovered project")
	cmd.Flags().BoolVar(&opts.allRoots, "all-roots", false, "Search every configured root")
	cmd.Flags().BoolVar(&opts.lexicalOnly, "lexical", false, "Literal grep search only")
	cmd.Flags().BoolVar(&opts.semanticOnly, "semantic", false, "Similarity search only")
	cmd.Flags().StringVar(&opts.glob, "glob", "", "Restrict lexical search to matching paths (e.g. \"*.go\")")
	cmd.Flags().BoolVar(&opts.caseSensitive, "case-sensitive", false, "Match case in lexical search")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", 0, "Drop semantic hits below this similarity")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.limit <= 0 {
		opts.limit = cfg.Search.MaxResults
	}
	if opts.minScore > 0 {
		cfg.Search.MinSemanticScore = opts.minScore
	}

	app, err := buildApp(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer app.Close()

	out := output.New(cmd.OutOrStdout())

	switch {
	case opts.lexicalOnly:
		return runLexicalSearch(ctx, cmd, app, out, query, opts)
	case opts.semanticOnly:
		return runSemanticSearch(ctx, cmd, app, out, query, opts)
	default:
		return runHybridSearch(ctx, cmd, app, out, query, opts)
	}
}

func runHybridSearch(ctx context.Context, cmd *cobra.Command, a *app, out *output.Writer, query string, opts searchOptions) error {
	resp, err := a.retriever.Search(ctx, hybrid.Request{
		Query:      query,
		Project:    opts.project,
		AllRoots:   opts.allRoots,
		MaxResults: opts.limit,
	})
	if err != nil {
		return err
	}
	if opts.jsonOutput {
		return encodeJSON(cmd, resp)
	}
	if len(resp.Results) == 0 {
		out.Println("no results")
		return nil
	}
	for i, r := range resp.Results {
		location := fmt.Sprintf("%s:%d", r.File, resultLine(r))
		snippet := r.Text
		if snippet == "" {
			snippet = r.Preview
		}
		out.Result(i+1, location, r.Type, r.Score, snippet)
	}
	if resp.Partial {
		out.Warning("search hit its deadline; results may be incomplete")
	}
	return nil
}

func resultLine(r hybrid.FusedResult) int {
	if r.Line > 0 {
		return r.Line
	}
	return r.StartLine
}

func runLexicalSearch(ctx context.Context, cmd *cobra.Command, a *app, out *output.Writer, query string, opts searchOptions) error {
	scopes, err := a.ws.ResolveSearchBases(opts.project, opts.allRoots)
	if err != nil {
		return err
	}
	res, err := a.lex.SearchCode(ctx, lexical.CodeSearchRequest{
		Query:         query,
		Scopes:        scopes,
		Glob:          opts.glob,
		MaxResults:    opts.limit,
		CaseSensitive: opts.caseSensitive,
	})
	if err != nil {
		return err
	}
	if opts.jsonOutput {
		return encodeJSON(cmd, res)
	}
	if len(res.Matches) == 0 {
		out.Println("no results")
		return nil
	}
	for i, m := range res.Matches {
		out.Result(i+1, fmt.Sprintf("%s:%d", m.File, m.Line), "", 0, m.Text)
	}
	if res.Partial {
		out.Warning("search hit its deadline; results may be incomplete")
	}
	return nil
}

func runSemanticSearch(ctx context.Context, cmd *cobra.Command, a *app, out *output.Writer, query string, opts searchOptions) error {
	scopes, err := a.ws.ResolveSearchBases(opts.project, opts.allRoots)
	if err != nil {
		return err
	}
	var hits []semantic.Hit
	for _, scope := range scopes {
		scopeHits, err := a.sem.Search(ctx, semantic.SearchRequest{
			Query:      query,
			Scope:      scope,
			MaxResults: opts.limit,
			MinScore:   a.cfg.Search.MinSemanticScore,
		})
		if err != nil {
			return err
		}
		hits = append(hits, scopeHits...)
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > opts.limit {
		hits = hits[:opts.limit]
	}
	if opts.jsonOutput {
		return encodeJSON(cmd, hits)
	}
	if len(hits) == 0 {
		out.Println("no results (run 'codescout index' first?)")
		return nil
	}
	for i, h := range hits {
		location := fmt.Sprintf("%s:%d-%d", h.File, h.StartLine, h.EndLine)
		out.Result(i+1, location, "semantic", h.Score, h.Preview)
	}
	return nil
}

func encodeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
