// Package watch reports changes to local dataset files.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher emits the path of a dataset file after it changes. Bursts of
// events for the same file (editors often write, rename and chmod in one
// save) are collapsed into one notification.
type Watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]bool
	changes  chan string
	logger   *slog.Logger
	debounce time.Duration
}

// New watches the given files. Their parent directories are watched rather
// than the files themselves so that atomic replace-by-rename is seen.
func New(files []string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]bool, len(files)),
		changes:  make(chan string, len(files)+1),
		logger:   logger,
		debounce: defaultDebounce,
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	return w, nil
}

// Changes delivers the absolute path of each changed file.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Run processes filesystem events until ctx is done or the watcher is
// closed. It closes the Changes channel on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)

	pending := make(map[string]bool)
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			path, relevant := w.relevant(ev)
			if !relevant {
				continue
			}
			w.logger.Debug("dataset file event", "path", path, "op", ev.Op.String())
			pending[path] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("fsnotify error", "error", err)

		case <-fire:
			fire = nil
			for path := range pending {
				select {
				case w.changes <- path:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			pending = make(map[string]bool)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return "", false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return "", false
	}
	return abs, w.files[abs]
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}
