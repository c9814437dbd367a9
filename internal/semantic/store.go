package semantic

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	scouterr "github.com/codescout-mcp/codescout/internal/errors"
	"github.com/codescout-mcp/codescout/internal/workspace"
)

// persister is the storage strategy behind a Store: it loads the corpus
// once at startup and durably applies each change set. Scoring and index
// maintenance live in the corpus; persisters only move bytes.
type persister interface {
	// load reads the persisted corpus, or an empty one when nothing is
	// stored yet. A corrupt store degrades to empty instead of failing.
	load() (*corpus, error)

	// save durably applies cs against the state described by c, as one
	// atomic unit.
	save(c *corpus, cs *changeSet) error

	// name identifies the backend in status output.
	name() string

	// native reports whether the compiled-in database driver is the
	// native (cgo) one.
	native() bool

	close() error
}

// Store implements Index over a pluggable persister. All corpus access is
// serialized through one RWMutex, so concurrent indexing and searching
// observe either fully-pre-update or fully-post-update state.
type Store struct {
	mu     sync.RWMutex
	corpus *corpus
	p      persister
	ws     *workspace.Accessor
	params Params
	log    *slog.Logger
}

var _ Index = (*Store)(nil)

func newStore(p persister, ws *workspace.Accessor, params Params, log *slog.Logger) (*Store, error) {
	c, err := p.load()
	if err != nil {
		return nil, err
	}
	return &Store{
		corpus: c,
		p:      p,
		ws:     ws,
		params: params.normalized(),
		log:    log,
	}, nil
}

// Status reports backend identity and corpus counts.
func (s *Store) Status(ctx context.Context) (*Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Status{
		Backend:      s.p.name(),
		NativeDriver: s.p.native(),
		TotalFiles:   len(s.corpus.docs),
		TotalChunks:  s.corpus.totalChunks,
		UpdatedAt:    s.corpus.updatedAt,
	}, nil
}

// IndexProject scans req.Scope, reindexes changed or new files, drops
// documents for files that disappeared, and persists the result. Unreadable
// and oversized files are counted and reported, never fatal.
func (s *Store) IndexProject(ctx context.Context, req IndexRequest) (*IndexSummary, error) {
	scope, err := s.ws.NormalizeTarget(req.Scope)
	if err != nil {
		return nil, err
	}

	maxFiles := s.params.MaxIndexedFiles
	if req.MaxFiles > 0 && req.MaxFiles < maxFiles {
		maxFiles = req.MaxFiles
	}

	files := s.ws.TextFiles(ctx, scope)
	if len(files) > maxFiles {
		files = files[:maxFiles]
	}
	if err := ctx.Err(); err != nil {
		return nil, scouterr.Wrap(scouterr.ErrCodeIndexFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	summary := &IndexSummary{ScannedFiles: len(files)}
	upserts := make(map[string]*Document)
	present := make(map[string]struct{}, len(files))

	for _, file := range files {
		present[file] = struct{}{}

		info, statErr := os.Stat(file)
		if statErr != nil {
			summary.fail(file, statErr.Error())
			continue
		}
		sig := FileSignature{ModTime: info.ModTime().UnixNano(), Size: info.Size()}
		if old, ok := s.corpus.docs[file]; ok && !req.Force && old.Signature == sig {
			summary.SkippedFiles++
			continue
		}

		content, readErr := s.ws.ReadFileCapped(file)
		if readErr != nil {
			summary.fail(file, readErr.Error())
			continue
		}

		upserts[file] = &Document{
			Signature: sig,
			Chunks:    chunkFile(file, string(content), s.params),
		}
		summary.IndexedFiles++
	}

	var removals []string
	for _, path := range s.corpus.pathsUnder(scope) {
		if _, ok := present[path]; !ok {
			removals = append(removals, path)
		}
	}
	summary.RemovedFiles = len(removals)

	cs := s.corpus.apply(upserts, removals, time.Now().UTC())
	if !cs.empty() {
		if saveErr := s.p.save(s.corpus, cs); saveErr != nil {
			return nil, scouterr.New(scouterr.ErrCodeIndexFailed,
				fmt.Sprintf("failed to persist index: %v", saveErr), saveErr)
		}
	}

	summary.TotalFiles = len(s.corpus.docs)
	summary.TotalChunks = s.corpus.totalChunks

	s.log.Info("index_project_complete",
		slog.String("scope", scope),
		slog.String("backend", s.p.name()),
		slog.Int("indexed", summary.IndexedFiles),
		slog.Int("skipped", summary.SkippedFiles),
		slog.Int("removed", summary.RemovedFiles),
		slog.Int("failed", summary.FailedFiles),
		slog.Int("total_chunks", summary.TotalChunks))

	return summary, nil
}

func (sum *IndexSummary) fail(file, reason string) {
	sum.FailedFiles++
	sum.Failures = append(sum.Failures, FileFailure{File: file, Reason: reason})
}

// Search tokenizes the query, keeps its top terms by frequency, and scores
// in-scope chunks by cosine similarity.
func (s *Store) Search(ctx context.Context, req SearchRequest) ([]Hit, error) {
	scope := req.Scope
	if scope != "" {
		normalized, err := s.ws.NormalizeTarget(scope)
		if err != nil {
			return nil, err
		}
		scope = normalized
	}
	if err := ctx.Err(); err != nil {
		return nil, scouterr.Wrap(scouterr.ErrCodeSearchFailed, err)
	}

	queryCounts := topTerms(TermCounts(req.Query), s.params.MaxTermsPerChunk)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus.search(queryCounts, scope, req.MaxResults, req.MinScore), nil
}

// Close releases the persister.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.close()
}
