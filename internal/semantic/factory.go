package semantic

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	scouterr "github.com/codescout-mcp/codescout/internal/errors"
	"github.com/codescout-mcp/codescout/internal/workspace"
)

// lockFileName guards the data directory against concurrent writers from
// separate processes.
const lockFileName = "index.lock"

// Open selects and initializes a backend for the given data directory.
// The requested backend is tried first; when the SQLite backend fails to
// initialize, the flat-file backend takes over so indexing stays available.
// The returned handle holds an exclusive file lock on dataDir until Close.
func Open(dataDir, backend string, ws *workspace.Accessor, params Params, log *slog.Logger) (Index, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, scouterr.PersistenceError(
			fmt.Sprintf("cannot create index directory %s", dataDir), err)
	}

	lock := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, scouterr.PersistenceError("cannot acquire index lock", err)
	}
	if !locked {
		return nil, scouterr.New(scouterr.ErrCodeIndexLocked,
			fmt.Sprintf("index at %s is locked by another process", dataDir), nil)
	}

	p, err := openPersister(dataDir, backend, log)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	store, err := newStore(p, ws, params, log)
	if err != nil {
		_ = p.close()
		_ = lock.Unlock()
		return nil, scouterr.PersistenceError("failed to load index", err)
	}

	return &lockedIndex{Store: store, lock: lock}, nil
}

func openPersister(dataDir, backend string, log *slog.Logger) (persister, error) {
	switch backend {
	case BackendSQLite, "":
		p, err := newSQLitePersister(dataDir, log)
		if err == nil {
			return p, nil
		}
		log.Warn("sqlite_backend_unavailable",
			slog.String("error", err.Error()),
			slog.String("fallback", BackendFlatFile))
		return newFlatFilePersister(dataDir, log)

	case BackendFlatFile:
		return newFlatFilePersister(dataDir, log)

	default:
		return nil, scouterr.ValidationError(
			fmt.Sprintf("unknown index backend: %s (valid options: %s, %s)",
				backend, BackendSQLite, BackendFlatFile))
	}
}

// lockedIndex couples a store with its directory lock.
type lockedIndex struct {
	*Store
	lock *flock.Flock
}

func (l *lockedIndex) Close() error {
	err := l.Store.Close()
	if unlockErr := l.lock.Unlock(); err == nil {
		err = unlockErr
	}
	return err
}
