// Package watch re-runs checks when submission files change.
package watch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/panbanda/ucr/pkg/config"
	"github.com/panbanda/ucr/pkg/dialect"
)

// DefaultDebounce is the quiet period a file must reach before its callback
// fires.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors submission files for changes and triggers a callback once
// each changed file has been stable for the debounce period.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	config    *config.Config
	dialects  *dialect.Registry
	debounce  time.Duration
	root      string
	only      string // set when watching a single file
	out       io.Writer
	callback  func(path string)
	mu        sync.Mutex
	pending   map[string]time.Time
}

// NewWatcher creates a watcher for a directory tree or a single file.
func NewWatcher(path string, cfg *config.Config, dialects *dialect.Registry, debounce time.Duration) (*Watcher, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if dialects == nil {
		dialects = dialect.NewRegistry()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		config:    cfg,
		dialects:  dialects,
		debounce:  debounce,
		root:      path,
		out:       os.Stdout,
		pending:   make(map[string]time.Time),
	}
	if !info.IsDir() {
		w.only = filepath.Clean(path)
		w.root = filepath.Dir(path)
	}
	return w, nil
}

// SetCallback sets the function to call when a file changes.
func (w *Watcher) SetCallback(cb func(path string)) {
	w.callback = cb
}

// SetOutput redirects status lines.
func (w *Watcher) SetOutput(out io.Writer) {
	w.out = out
}

// addDirs registers every non-excluded directory under root.
func (w *Watcher) addDirs() error {
	if w.only != "" {
		return w.fsWatcher.Add(w.root)
	}
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root {
			for _, excluded := range w.config.Exclude.Dirs {
				if d.Name() == excluded {
					return filepath.SkipDir
				}
			}
		}
		return w.fsWatcher.Add(path)
	})
}

// Start watches until ctx is cancelled or the watcher is stopped.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addDirs(); err != nil {
		return err
	}

	target := w.root
	if w.only != "" {
		target = w.only
	}
	fmt.Fprintln(w.out, color.CyanString("Watching for changes in %s...", target))
	fmt.Fprintln(w.out, color.CyanString("Press Ctrl+C to stop"))
	fmt.Fprintln(w.out)

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(w.out, color.RedString("Watch error: %v", err))
		}
	}
}

// relevant reports whether a changed path should trigger a re-check.
func (w *Watcher) relevant(path string) bool {
	if w.only != "" {
		return filepath.Clean(path) == w.only
	}
	if w.config.ShouldExclude(path) {
		return false
	}
	_, err := w.dialects.ForPath(path)
	return err == nil
}

// handleEvent records writes and creates of relevant files.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	// New directories join the watch set.
	if event.Op&fsnotify.Create != 0 && w.only == "" {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.fsWatcher.Add(event.Name)
			return
		}
	}

	if !w.relevant(event.Name) {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// processDebounced flushes pending changes until ctx is done.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending(time.Now())
		}
	}
}

// processPending fires callbacks for files stable since before now-debounce.
func (w *Watcher) processPending(now time.Time) []string {
	w.mu.Lock()
	var ready []string
	for path, lastMod := range w.pending {
		if now.Sub(lastMod) >= w.debounce {
			ready = append(ready, path)
		}
	}
	for _, path := range ready {
		delete(w.pending, path)
	}
	w.mu.Unlock()

	// Callbacks run sequentially so their output does not interleave.
	for _, path := range ready {
		if w.callback != nil {
			w.runCallback(path)
		}
	}
	return ready
}

// runCallback executes the callback for a changed file.
func (w *Watcher) runCallback(path string) {
	relPath, err := filepath.Rel(w.root, path)
	if err != nil {
		relPath = path
	}

	fmt.Fprintln(w.out, color.YellowString("\nFile changed: %s", relPath))
	fmt.Fprintln(w.out, strings.Repeat("-", 40))

	w.callback(path)

	fmt.Fprintln(w.out)
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedPaths returns the directories being watched.
func (w *Watcher) WatchedPaths() []string {
	return w.fsWatcher.WatchList()
}
