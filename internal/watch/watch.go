// Package watch re-runs a handler whenever a results file is written.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bitrise-io/go-utils/v2/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last write before
// running the handler. Runners write reports in several chunks.
const DefaultDebounce = 200 * time.Millisecond

// Handler is called with the watched file's absolute path.
type Handler func(ctx context.Context, path string) error

// Watcher watches a single file for changes.
//
// The parent directory is watched rather than the file itself, so the file
// may be created later, replaced by rename, or truncated and rewritten.
type Watcher struct {
	path      string
	debounce  time.Duration
	logger    log.Logger
	fsWatcher *fsnotify.Watcher
}

// New creates a watcher for path. The file need not exist yet, but its
// directory must.
func New(path string, logger log.Logger) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	dir := filepath.Dir(absPath)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watching %s: %s is not a directory", path, dir)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &Watcher{
		path:      absPath,
		debounce:  DefaultDebounce,
		logger:    logger,
		fsWatcher: fsWatcher,
	}, nil
}

// WithDebounce sets the quiet period before the handler runs and returns w.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Close releases the underlying watcher. Run closes it on return.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

// Run calls fn once if the file already exists, then again after every
// burst of writes, until ctx is done. Handler errors are logged and do not
// stop the watch. Run returns nil when ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	defer func() { _ = w.fsWatcher.Close() }()

	if _, err := os.Stat(w.path); err == nil {
		w.handle(ctx, fn)
	} else {
		w.logger.Debugf("%s does not exist yet, waiting for it", w.path)
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debugf("%s: %s", event.Op, event.Name)
			timer.Reset(w.debounce)
			pending = timer.C

		case <-pending:
			pending = nil
			w.handle(ctx, fn)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			w.logger.Errorf("Watcher error: %s", err)
		}
	}
}

// relevant reports whether event changes the watched file's content.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (w *Watcher) handle(ctx context.Context, fn Handler) {
	if err := fn(ctx, w.path); err != nil {
		w.logger.Warnf("Processing %s failed: %s", w.path, err)
	}
}
