package semantic

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// flatFileVersion is the on-disk format version of the JSON store.
const flatFileVersion = 1

// flatFileName is the store file inside the data directory.
const flatFileName = "index.json"

// flatFileDoc is the complete persisted form of the index.
type flatFileDoc struct {
	Version     int                  `json:"version"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	TotalChunks int                  `json:"totalChunks"`
	TotalFiles  int                  `json:"totalFiles"`
	DF          map[string]int       `json:"df"`
	Documents   map[string]*Document `json:"documents"`
}

// flatFilePersister stores the corpus as one JSON document, rewritten
// atomically (temp file + rename) on every save.
type flatFilePersister struct {
	path string
	log  *slog.Logger
}

var _ persister = (*flatFilePersister)(nil)

func newFlatFilePersister(dataDir string, log *slog.Logger) (*flatFilePersister, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	return &flatFilePersister{
		path: filepath.Join(dataDir, flatFileName),
		log:  log,
	}, nil
}

func (f *flatFilePersister) name() string { return BackendFlatFile }
func (f *flatFilePersister) native() bool { return false }
func (f *flatFilePersister) close() error { return nil }

// load reads the JSON store. A missing file yields an empty corpus; an
// unreadable or corrupt one degrades to empty so the index stays rebuildable.
func (f *flatFilePersister) load() (*corpus, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return newCorpus(), nil
	}
	if err != nil {
		f.log.Warn("flatfile_index_unreadable",
			slog.String("path", f.path),
			slog.String("error", err.Error()))
		return newCorpus(), nil
	}

	var doc flatFileDoc
	if err := json.Unmarshal(data, &doc); err != nil || doc.Version != flatFileVersion {
		f.log.Warn("flatfile_index_corrupted",
			slog.String("path", f.path),
			slog.String("reason", corruptReason(err, doc.Version)))
		return newCorpus(), nil
	}

	c := newCorpus()
	c.updatedAt = doc.UpdatedAt
	c.totalChunks = doc.TotalChunks
	if doc.DF != nil {
		c.df = doc.DF
	}
	if doc.Documents != nil {
		c.docs = doc.Documents
	}
	return c, nil
}

func corruptReason(err error, version int) string {
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("unsupported format version %d", version)
}

// save rewrites the whole store. The change set is already folded into the
// corpus, so a full rewrite is the atomic unit here.
func (f *flatFilePersister) save(c *corpus, _ *changeSet) error {
	doc := flatFileDoc{
		Version:     flatFileVersion,
		UpdatedAt:   c.updatedAt,
		TotalChunks: c.totalChunks,
		TotalFiles:  len(c.docs),
		DF:          c.df,
		Documents:   c.docs,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace index: %w", err)
	}
	return nil
}
