// Package watch re-runs the add engine when files change under tracked
// component roots. It keeps the index in sync with ongoing edits without
// the user re-issuing add commands.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"trackd/internal/add"
	"trackd/internal/config"
	"trackd/internal/index"
	"trackd/internal/log"
	"trackd/pkg/types"
)

// Watcher monitors the root directories of authored components and
// re-adds a component after its files settle.
type Watcher struct {
	cfg       *config.Config
	fsWatcher *fsnotify.Watcher

	// roots maps a watched directory (tracking-root relative) to the
	// identifier of the component added from it
	roots map[string]string

	stopChan chan struct{}

	mutex   sync.RWMutex
	running bool
}

// New creates a watcher over every authored record that has a RootDir.
func New(cfg *config.Config, idx *index.Index) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		cfg:       cfg,
		fsWatcher: fsWatcher,
		roots:     make(map[string]string),
		stopChan:  make(chan struct{}),
	}

	for key, rec := range idx.RecordsOfOrigin(types.Authored) {
		if rec.RootDir == "" {
			continue
		}
		abs := filepath.Join(cfg.Root, filepath.FromSlash(rec.RootDir))
		if info, statErr := os.Stat(abs); statErr != nil || !info.IsDir() {
			log.Warn("skipping missing component root %s", rec.RootDir)
			continue
		}
		if err := fsWatcher.Add(abs); err != nil {
			return nil, fmt.Errorf("failed to watch %s: %w", rec.RootDir, err)
		}
		w.roots[rec.RootDir] = key
		log.Debug("watching %s for %s", rec.RootDir, key)
	}

	return w, nil
}

// Roots returns the watched directories mapped to their component ids.
func (w *Watcher) Roots() map[string]string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	out := make(map[string]string, len(w.roots))
	for dir, id := range w.roots {
		out[dir] = id
	}
	return out
}

// Start runs the event loop until Stop is called. Changed roots are
// re-added after the configured debounce so bursts of writes collapse into
// one add invocation. Re-add failures are logged and the loop continues.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.running {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mutex.Unlock()

	debounce := time.Duration(w.cfg.Watch.DebounceMillis) * time.Millisecond
	pending := make(map[string]*time.Timer)
	var pendingMu sync.Mutex

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			rootDir, componentID, found := w.rootFor(event.Name)
			if !found {
				continue
			}

			pendingMu.Lock()
			if timer, exists := pending[rootDir]; exists {
				timer.Stop()
			}
			pending[rootDir] = time.AfterFunc(debounce, func() {
				pendingMu.Lock()
				delete(pending, rootDir)
				pendingMu.Unlock()
				w.readd(rootDir, componentID)
			})
			pendingMu.Unlock()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watch error: %v", err)

		case <-w.stopChan:
			return nil
		}
	}
}

// Stop terminates the event loop and releases the fsnotify watcher.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.stopChan)
	_ = w.fsWatcher.Close()
}

// rootFor maps an absolute event path back to the watched component root.
func (w *Watcher) rootFor(eventPath string) (rootDir, componentID string, found bool) {
	absRoot, err := filepath.Abs(w.cfg.Root)
	if err != nil {
		return "", "", false
	}
	rel, err := filepath.Rel(absRoot, eventPath)
	if err != nil {
		return "", "", false
	}
	rel = filepath.ToSlash(rel)

	w.mutex.RLock()
	defer w.mutex.RUnlock()
	for dir, id := range w.roots {
		if rel == dir || (len(rel) > len(dir) && rel[:len(dir)] == dir && rel[len(dir)] == '/') {
			return dir, id, true
		}
	}
	return "", "", false
}

// readd re-runs the add engine for one component root against a freshly
// loaded index.
func (w *Watcher) readd(rootDir, componentID string) {
	idx, err := index.Load(w.cfg.IndexPath())
	if err != nil {
		log.Error("re-add of %s failed to load index: %v", componentID, err)
		return
	}
	engine, err := add.New(w.cfg, idx)
	if err != nil {
		log.Error("re-add of %s failed: %v", componentID, err)
		return
	}
	result, err := engine.Add(add.Request{
		Paths: []string{rootDir},
		ID:    componentID,
	})
	if err != nil {
		log.Error("re-add of %s failed: %v", componentID, err)
		return
	}
	if err := idx.Persist(); err != nil {
		log.Error("re-add of %s failed to persist index: %v", componentID, err)
		return
	}
	for _, c := range result.Components {
		log.Info("re-added %s (%d files)", c.ID, len(c.Files))
	}
}
