// Package watcher keeps the semantic index in step with file-system churn.
// It watches the configured roots recursively, coalesces bursts of change
// events per root, and triggers one reindex per quiet root.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/codescout-mcp/codescout/internal/workspace"
)

// Options configures the watcher behavior.
type Options struct {
	// Debounce is the quiet window before a changed root is reindexed.
	// Default: 2s.
	Debounce time.Duration
}

// ReindexFunc is invoked once per debounced root.
type ReindexFunc func(ctx context.Context, root string)

// Watcher debounces file-system events into reindex calls.
type Watcher struct {
	ws       *workspace.Accessor
	reindex  ReindexFunc
	debounce time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	fsw     *fsnotify.Watcher
	done    chan struct{}
}

// New creates a watcher over the accessor's roots.
func New(ws *workspace.Accessor, reindex ReindexFunc, opts Options, log *slog.Logger) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = 2 * time.Second
	}
	return &Watcher{
		ws:       ws,
		reindex:  reindex,
		debounce: opts.Debounce,
		log:      log,
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
}

// Start registers every directory under the configured roots and begins
// dispatching events. It returns once the listener goroutine is running;
// the watcher stops when ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw

	for _, root := range w.ws.Roots() {
		w.addRecursive(ctx, root.Path)
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher. Safe to call once Start succeeded.
func (w *Watcher) Stop() error {
	close(w.done)
	w.mu.Lock()
	for _, timer := range w.pending {
		timer.Stop()
	}
	w.pending = make(map[string]*time.Timer)
	w.mu.Unlock()
	return w.fsw.Close()
}

func (w *Watcher) addRecursive(ctx context.Context, root string) {
	if err := w.fsw.Add(root); err != nil {
		w.log.Warn("watch_add_failed",
			slog.String("path", root),
			slog.String("error", err.Error()))
	}
	for batch := range w.ws.Walk(ctx, root) {
		for _, dir := range batch.Subdirs {
			if err := w.fsw.Add(dir); err != nil {
				w.log.Warn("watch_add_failed",
					slog.String("path", dir),
					slog.String("error", err.Error()))
			}
		}
	}
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch_error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if ignoredPath(event.Name) {
		return
	}

	// New directories inside a root join the watch so nested changes keep
	// arriving. Anything outside the roots (symlink targets, unmounted
	// leftovers) stays unwatched.
	if event.Op.Has(fsnotify.Create) && w.ws.Contains(event.Name) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addRecursive(ctx, event.Name)
		}
	}

	root := w.rootOf(event.Name)
	if root == "" {
		return
	}
	w.ws.InvalidateProjectCache(root)
	w.schedule(ctx, root)
}

// schedule arms (or re-arms) the per-root debounce timer.
func (w *Watcher) schedule(ctx context.Context, root string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[root]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.pending[root] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, root)
		w.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		default:
		}
		w.log.Info("watch_reindex", slog.String("root", root))
		w.reindex(ctx, root)
	})
}

func (w *Watcher) rootOf(path string) string {
	for _, root := range w.ws.Roots() {
		if path == root.Path || strings.HasPrefix(path, root.Path+string(filepath.Separator)) {
			return root.Path
		}
	}
	return ""
}

// ignoredPath filters events from dotfile and ignored directory segments.
func ignoredPath(path string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == "" {
			continue
		}
		if strings.HasPrefix(segment, ".") || workspace.IgnoredDir(segment) {
			return true
		}
	}
	return false
}
