package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// Event is a wrapper around fsnotify.Event
type Event struct {
	Name string
	Op   fsnotify.Op
}

// Watcher handles filesystem events and triggers builds
type Watcher struct {
	watcher  *fsnotify.Watcher
	Dirs     []string
	Ignore   []string // path prefixes whose events are dropped
	Debounce time.Duration
	OnEvent  func(Event)
	logger   *slog.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a new watcher for the specified directories. Missing
// directories are skipped when Start runs.
func New(dirs []string, onEvent func(Event), logger *slog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		watcher:  w,
		Dirs:     dirs,
		Debounce: DefaultDebounce,
		OnEvent:  onEvent,
		logger:   logger,
	}, nil
}

// Start watches until ctx is cancelled. OnEvent runs once per quiet
// period of Debounce with the last event seen.
func (w *Watcher) Start(ctx context.Context) {
	defer func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		_ = w.watcher.Close()
	}()

	for _, dir := range w.Dirs {
		w.addTree(dir)
	}

	w.logger.Info("👀 Watch mode active. Waiting for changes...")

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Chmod == fsnotify.Chmod || w.ignored(event.Name) {
				continue
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addTree(event.Name)
				}
			}
			w.schedule(Event{Name: event.Name, Op: event.Op})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	d := w.Debounce
	if d <= 0 {
		d = DefaultDebounce
	}
	w.timer = time.AfterFunc(d, func() {
		w.OnEvent(ev)
	})
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return
	}
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if (path != dir && strings.HasPrefix(info.Name(), ".")) || w.ignored(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
	if err != nil {
		w.logger.Warn("Failed to watch directory", "path", dir, "error", err)
	}
}

func (w *Watcher) ignored(path string) bool {
	clean := filepath.Clean(path)
	for _, prefix := range w.Ignore {
		p := filepath.Clean(prefix)
		if clean == p || strings.HasPrefix(clean, p+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
