package hybrid

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	scouterr "github.com/codescout-mcp/codescout/internal/errors"
	"github.com/codescout-mcp/codescout/internal/lexical"
	"github.com/codescout-mcp/codescout/internal/semantic"
	"github.com/codescout-mcp/codescout/internal/workspace"
)

// overFetchFactor widens both source queries so fusion has enough
// candidates to reorder before the final truncation.
const overFetchFactor = 3

// defaultMaxResults caps searches that do not specify a limit.
const defaultMaxResults = 20

// Options configures the retriever.
type Options struct {
	// MinSemanticScore filters low-similarity semantic hits (0 = keep all).
	MinSemanticScore float64

	// AutoIndex enables one semantic index bootstrap per scope when the
	// index has nothing for it.
	AutoIndex bool

	// K is the RRF smoothing constant (0 = 60).
	K int
}

// Request is one hybrid query.
type Request struct {
	Query      string
	Project    string
	AllRoots   bool
	MaxResults int
}

// AutoIndexOutcome records a bootstrap attempt made during a query.
type AutoIndexOutcome struct {
	Scope        string `json:"scope"`
	IndexedFiles int    `json:"indexedFiles"`
	Error        string `json:"error,omitempty"`
}

// Response carries the fused ranking plus both source lists.
type Response struct {
	Results      []FusedResult      `json:"results"`
	LexicalHits  []lexical.Match    `json:"lexicalHits"`
	SemanticHits []semantic.Hit     `json:"semanticHits"`
	Partial      bool               `json:"partial,omitempty"`
	AutoIndex    []AutoIndexOutcome `json:"autoIndex,omitempty"`
}

// Retriever runs lexical and semantic search side by side and fuses the
// rankings with RRF.
type Retriever struct {
	lex  *lexical.Engine
	sem  semantic.Index
	ws   *workspace.Accessor
	opts Options
	log  *slog.Logger

	// autoIndexed tracks scopes already bootstrapped in this process,
	// one attempt per scope regardless of outcome.
	mu          sync.Mutex
	autoIndexed map[string]struct{}
}

// New creates a retriever over the given engines.
func New(lex *lexical.Engine, sem semantic.Index, ws *workspace.Accessor, opts Options, log *slog.Logger) *Retriever {
	if opts.K <= 0 {
		opts.K = DefaultRRFConstant
	}
	return &Retriever{
		lex:         lex,
		sem:         sem,
		ws:          ws,
		opts:        opts,
		log:         log,
		autoIndexed: make(map[string]struct{}),
	}
}

// Search resolves the request scope, over-fetches both sources, optionally
// bootstraps the semantic index, and returns the fused ranking.
func (r *Retriever) Search(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, scouterr.New(scouterr.ErrCodeInvalidQuery, "query must not be empty", nil)
	}
	if req.MaxResults <= 0 {
		req.MaxResults = defaultMaxResults
	}
	overFetch := req.MaxResults * overFetchFactor

	bases, err := r.ws.ResolveSearchBases(req.Project, req.AllRoots)
	if err != nil {
		return nil, err
	}

	lexRes, err := r.lex.SearchCode(ctx, lexical.CodeSearchRequest{
		Query:      req.Query,
		Scopes:     bases,
		MaxResults: overFetch,
	})
	if err != nil {
		return nil, err
	}

	semHits, outcomes := r.semanticFetch(ctx, req.Query, bases, overFetch)

	resp := &Response{
		LexicalHits:  lexRes.Matches,
		SemanticHits: semHits,
		Partial:      lexRes.Partial,
		AutoIndex:    outcomes,
	}
	resp.Results = fuse(lexRes.Matches, semHits, r.opts.K)
	if len(resp.Results) > req.MaxResults {
		resp.Results = resp.Results[:req.MaxResults]
	}
	return resp, nil
}

// semanticFetch queries every base, bootstrapping the index once per scope
// when it comes back empty and auto-indexing is on. Semantic failures
// degrade to lexical-only results instead of failing the query.
func (r *Retriever) semanticFetch(ctx context.Context, query string, bases []string, overFetch int) ([]semantic.Hit, []AutoIndexOutcome) {
	var hits []semantic.Hit
	var outcomes []AutoIndexOutcome

	for _, base := range bases {
		baseHits, err := r.searchBase(ctx, query, base, overFetch)
		if err != nil {
			r.log.Warn("semantic_search_failed",
				slog.String("scope", base),
				slog.String("error", err.Error()))
			continue
		}

		if len(baseHits) == 0 && r.opts.AutoIndex && r.claimAutoIndex(base) {
			outcome := AutoIndexOutcome{Scope: base}
			sum, indexErr := r.sem.IndexProject(ctx, semantic.IndexRequest{Scope: base})
			if indexErr != nil {
				outcome.Error = indexErr.Error()
				r.log.Warn("auto_index_failed",
					slog.String("scope", base),
					slog.String("error", indexErr.Error()))
			} else {
				outcome.IndexedFiles = sum.IndexedFiles
				baseHits, _ = r.searchBase(ctx, query, base, overFetch)
			}
			outcomes = append(outcomes, outcome)
		}

		hits = append(hits, baseHits...)
	}

	if len(bases) > 1 {
		sort.SliceStable(hits, func(i, j int) bool {
			return hits[i].Score > hits[j].Score
		})
		if len(hits) > overFetch {
			hits = hits[:overFetch]
		}
	}
	return hits, outcomes
}

func (r *Retriever) searchBase(ctx context.Context, query, base string, overFetch int) ([]semantic.Hit, error) {
	return r.sem.Search(ctx, semantic.SearchRequest{
		Query:      query,
		Scope:      base,
		MaxResults: overFetch,
		MinScore:   r.opts.MinSemanticScore,
	})
}

// claimAutoIndex records the attempt and reports whether this scope still
// had one available.
func (r *Retriever) claimAutoIndex(scope string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, done := r.autoIndexed[scope]; done {
		return false
	}
	r.autoIndexed[scope] = struct{}{}
	return true
}
