package semantic

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// sqliteFileName is the database file inside the data directory.
const sqliteFileName = "index.db"

// sqliteSchemaVersion is the current database schema version.
const sqliteSchemaVersion = 1

// sqlitePersister stores the corpus in an embedded SQLite database. Each
// save runs in one transaction, so a mid-update failure never leaves
// partially-updated df or norm state.
type sqlitePersister struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

var _ persister = (*sqlitePersister)(nil)

func newSQLitePersister(dataDir string, log *slog.Logger) (*sqlitePersister, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	path := filepath.Join(dataDir, sqliteFileName)

	// Validate integrity before opening; auto-clear a corrupted database
	// so the index stays rebuildable.
	if validErr := validateSQLiteIntegrity(path); validErr != nil {
		log.Warn("sqlite_index_corrupted",
			slog.String("path", path),
			slog.String("error", validErr.Error()))
		if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
			return nil, fmt.Errorf("index corrupted at %s and cannot remove: %w (original error: %v)",
				path, removeErr, validErr)
		}
		_ = os.Remove(path + "-wal")
		_ = os.Remove(path + "-shm")
		log.Info("sqlite_index_cleared",
			slog.String("path", path),
			slog.String("reason", "corruption detected, please reindex"))
	}

	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer to prevent lock contention
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -65536",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &sqlitePersister{db: db, path: path, log: log}, nil
}

// validateSQLiteIntegrity checks a database file before opening it for use.
// Returns nil when the file is absent (it will be created) or healthy.
func validateSQLiteIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	db, err := sql.Open(sqliteDriverName, path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}
	return nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS index_meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS files (
		path       TEXT PRIMARY KEY,
		mod_time   INTEGER NOT NULL,
		size       INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS chunks (
		id         TEXT PRIMARY KEY,
		file_path  TEXT NOT NULL REFERENCES files(path) ON DELETE CASCADE,
		start_line INTEGER NOT NULL,
		end_line   INTEGER NOT NULL,
		preview    TEXT NOT NULL,
		terms_json TEXT NOT NULL,
		norm       REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_file ON chunks(file_path);
	CREATE TABLE IF NOT EXISTS term_document_frequency (
		term TEXT PRIMARY KEY,
		df   INTEGER NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *sqlitePersister) name() string { return BackendSQLite }
func (s *sqlitePersister) native() bool { return sqliteNativeDriver }
func (s *sqlitePersister) close() error { return s.db.Close() }

// degrade clears every index table after a row-level decode failure, so the
// next index pass rebuilds from a clean slate instead of hitting the same
// corrupt row on every startup.
func (s *sqlitePersister) degrade() (*corpus, error) {
	for _, table := range []string{"chunks", "files", "term_document_frequency", "index_meta"} {
		if _, err := s.db.Exec(`DELETE FROM ` + table); err != nil {
			return nil, fmt.Errorf("failed to clear corrupt table %s: %w", table, err)
		}
	}
	s.log.Info("sqlite_index_cleared",
		slog.String("path", s.path),
		slog.String("reason", "corrupt row detected, please reindex"))
	return newCorpus(), nil
}

// load reads the whole database into a corpus. Row-level decode failures
// degrade to an empty corpus rather than failing startup.
func (s *sqlitePersister) load() (*corpus, error) {
	c := newCorpus()

	var updatedAt, chunkCount string
	if err := s.db.QueryRow(
		`SELECT value FROM index_meta WHERE key = 'updated_at'`).Scan(&updatedAt); err == nil {
		if t, parseErr := time.Parse(time.RFC3339Nano, updatedAt); parseErr == nil {
			c.updatedAt = t
		}
	}
	if err := s.db.QueryRow(
		`SELECT value FROM index_meta WHERE key = 'total_chunks'`).Scan(&chunkCount); err == nil {
		c.totalChunks, _ = strconv.Atoi(chunkCount)
	}

	files, err := s.db.Query(`SELECT path, mod_time, size FROM files`)
	if err != nil {
		return nil, fmt.Errorf("failed to read files: %w", err)
	}
	defer files.Close()
	for files.Next() {
		var path string
		var sig FileSignature
		if err := files.Scan(&path, &sig.ModTime, &sig.Size); err != nil {
			s.log.Warn("sqlite_index_row_unreadable", slog.String("error", err.Error()))
			return s.degrade()
		}
		c.docs[path] = &Document{Signature: sig}
	}
	if err := files.Err(); err != nil {
		return nil, fmt.Errorf("failed to read files: %w", err)
	}

	chunks, err := s.db.Query(
		`SELECT id, file_path, start_line, end_line, preview, terms_json, norm
		 FROM chunks ORDER BY file_path, start_line`)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunks: %w", err)
	}
	defer chunks.Close()
	for chunks.Next() {
		var ch Chunk
		var filePath, termsJSON string
		if err := chunks.Scan(&ch.ID, &filePath, &ch.StartLine, &ch.EndLine,
			&ch.Preview, &termsJSON, &ch.Norm); err != nil {
			s.log.Warn("sqlite_index_row_unreadable", slog.String("error", err.Error()))
			return s.degrade()
		}
		if err := json.Unmarshal([]byte(termsJSON), &ch.Terms); err != nil {
			s.log.Warn("sqlite_index_terms_corrupt",
				slog.String("chunk", ch.ID),
				slog.String("error", err.Error()))
			return s.degrade()
		}
		doc, ok := c.docs[filePath]
		if !ok {
			continue // orphan chunk, dropped on next save
		}
		doc.Chunks = append(doc.Chunks, &ch)
	}
	if err := chunks.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chunks: %w", err)
	}

	dfRows, err := s.db.Query(`SELECT term, df FROM term_document_frequency`)
	if err != nil {
		return nil, fmt.Errorf("failed to read term frequencies: %w", err)
	}
	defer dfRows.Close()
	for dfRows.Next() {
		var term string
		var df int
		if err := dfRows.Scan(&term, &df); err != nil {
			s.log.Warn("sqlite_index_row_unreadable", slog.String("error", err.Error()))
			return s.degrade()
		}
		c.df[term] = df
	}
	if err := dfRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read term frequencies: %w", err)
	}

	return c, nil
}

// save applies one change set in a single transaction.
func (s *sqlitePersister) save(c *corpus, cs *changeSet) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, path := range cs.removals {
		if _, err := tx.Exec(`DELETE FROM chunks WHERE file_path = ?`, path); err != nil {
			return fmt.Errorf("failed to delete chunks for %s: %w", path, err)
		}
		if _, err := tx.Exec(`DELETE FROM files WHERE path = ?`, path); err != nil {
			return fmt.Errorf("failed to delete file %s: %w", path, err)
		}
	}

	now := c.updatedAt.Format(time.RFC3339Nano)
	for path, doc := range cs.upserts {
		if _, err := tx.Exec(`DELETE FROM chunks WHERE file_path = ?`, path); err != nil {
			return fmt.Errorf("failed to clear chunks for %s: %w", path, err)
		}
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO files (path, mod_time, size, updated_at) VALUES (?, ?, ?, ?)`,
			path, doc.Signature.ModTime, doc.Signature.Size, now); err != nil {
			return fmt.Errorf("failed to upsert file %s: %w", path, err)
		}
		for _, ch := range doc.Chunks {
			termsJSON, marshalErr := json.Marshal(ch.Terms)
			if marshalErr != nil {
				return fmt.Errorf("failed to encode terms for chunk %s: %w", ch.ID, marshalErr)
			}
			if _, err := tx.Exec(
				`INSERT OR REPLACE INTO chunks
				 (id, file_path, start_line, end_line, preview, terms_json, norm)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				ch.ID, path, ch.StartLine, ch.EndLine, ch.Preview, string(termsJSON), ch.Norm); err != nil {
				return fmt.Errorf("failed to insert chunk %s: %w", ch.ID, err)
			}
		}
	}

	for term, df := range cs.dfChanged {
		if df == 0 {
			if _, err := tx.Exec(`DELETE FROM term_document_frequency WHERE term = ?`, term); err != nil {
				return fmt.Errorf("failed to delete term %s: %w", term, err)
			}
			continue
		}
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO term_document_frequency (term, df) VALUES (?, ?)`,
			term, df); err != nil {
			return fmt.Errorf("failed to upsert term %s: %w", term, err)
		}
	}

	for _, touched := range cs.normUpdates {
		for _, ch := range touched {
			if _, err := tx.Exec(`UPDATE chunks SET norm = ? WHERE id = ?`, ch.Norm, ch.ID); err != nil {
				return fmt.Errorf("failed to update norm for chunk %s: %w", ch.ID, err)
			}
		}
	}

	meta := map[string]string{
		"schema_version": strconv.Itoa(sqliteSchemaVersion),
		"updated_at":     now,
		"total_chunks":   strconv.Itoa(c.totalChunks),
		"total_files":    strconv.Itoa(len(c.docs)),
	}
	for key, value := range meta {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO index_meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("failed to write meta %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index update: %w", err)
	}
	return nil
}
