// Package watch re-imports a configuration snapshot whenever its file
// changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Veraticus/calcman/internal/common"
)

// DefaultDebounce is how long the file must stay quiet before it is read.
const DefaultDebounce = 250 * time.Millisecond

// Importer replaces the catalog with a serialized snapshot.
type Importer interface {
	ImportJSON(ctx context.Context, data []byte) error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// OnError is called for every failed reload after it has been logged.
func OnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// OnImport is called after every successful reload.
func OnImport(fn func()) Option {
	return func(w *Watcher) { w.onImport = fn }
}

// Watcher reloads one snapshot file into an Importer.
type Watcher struct {
	importer Importer
	logger   *slog.Logger
	onError  func(error)
	onImport func()
	path     string
	debounce time.Duration
}

// New creates a watcher for the snapshot at path.
func New(path string, importer Importer, opts ...Option) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: snapshot path is empty", common.ErrMissingConfig)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	w := &Watcher{
		importer: importer,
		path:     abs,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = common.OrDefault(w.logger)
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run watches until ctx is canceled. The parent directory is watched rather
// than the file itself so that editors that replace the file by renaming
// are picked up.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Info("Watching snapshot", "path", w.path, "debounce", w.debounce)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.fail(fmt.Errorf("file watcher: %w", err))

		case <-timer.C:
			w.reload(ctx)
		}
	}
}

// reload reads and imports the snapshot. A failed import leaves the
// catalog as it was.
func (w *Watcher) reload(ctx context.Context) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.logger.Debug("Snapshot disappeared before reload", "path", w.path)
			return
		}
		w.fail(fmt.Errorf("failed to read snapshot: %w", err))
		return
	}

	if err := w.importer.ImportJSON(ctx, data); err != nil {
		w.fail(fmt.Errorf("failed to import %s: %w", w.path, err))
		return
	}

	w.logger.Info("Snapshot reloaded", "path", w.path)
	if w.onImport != nil {
		w.onImport()
	}
}

func (w *Watcher) fail(err error) {
	w.logger.Warn("Snapshot reload failed", "error", err)
	if w.onError != nil {
		w.onError(err)
	}
}
