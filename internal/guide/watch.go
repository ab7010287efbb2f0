package guide

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"guideprogress/internal/logging"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher signals when markdown files under the site root change. Bursts of
// events inside one debounce interval produce a single signal.
type Watcher struct {
	root     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   logging.Logger
	changes  chan struct{}

	mu      sync.Mutex
	pending bool
}

func NewWatcher(root string, debounce time.Duration, logger logging.Logger) (*Watcher, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("site root is required")
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = logging.Nop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:     root,
		debounce: debounce,
		fsw:      fsw,
		logger:   logger.With(logging.F("component", "guide_watch")),
		changes:  make(chan struct{}, 1),
	}, nil
}

// Changes is closed once the watcher stops.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Start watches every section directory that exists and processes events
// until ctx is done or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	for _, section := range Sections {
		dir := filepath.Join(w.root, section)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := w.addRecursive(dir); err != nil {
			return err
		}
	}
	go w.run(ctx)
	w.logger.Debug("guide_watch_started", logging.F("root", w.root))
	return nil
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if base := d.Name(); strings.HasPrefix(base, ".") && path != dir {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("guide_watch_add_failed", logging.F("path", path), logging.Err(err))
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.changes)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("guide_watch_error", logging.Err(err))
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("guide_watch_add_failed", logging.F("path", event.Name), logging.Err(err))
			}
			w.markPending()
			return
		}
	}
	switch strings.ToLower(filepath.Ext(event.Name)) {
	case ".md", ".mdx":
		w.markPending()
	}
}

func (w *Watcher) markPending() {
	w.mu.Lock()
	w.pending = true
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = false
	w.mu.Unlock()
	if !pending {
		return
	}
	select {
	case w.changes <- struct{}{}:
	default:
	}
}
