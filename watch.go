package birch

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// TextureWatcher reports texture files that changed on disk. Its goroutine
// only records names; the scene drains them once per frame and reloads the
// textures on the update goroutine.
type TextureWatcher struct {
	root    string
	watcher *fsnotify.Watcher
	done    chan struct{}

	mu      sync.Mutex
	changed []string
	seen    map[string]bool
}

// NewTextureWatcher watches dir (not recursively). Reported names are
// slash-separated paths relative to dir, the form FSTextureLoader expects.
func NewTextureWatcher(dir string) (*TextureWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("birch: create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("birch: watch %s: %w", dir, err)
	}
	w := &TextureWatcher{
		root:    dir,
		watcher: fw,
		done:    make(chan struct{}),
		seen:    make(map[string]bool),
	}
	go w.run()
	return w, nil
}

func (w *TextureWatcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			rel, err := filepath.Rel(w.root, ev.Name)
			if err != nil {
				continue
			}
			w.push(filepath.ToSlash(rel))
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("asset watcher error", "dir", w.root, "err", err)
		}
	}
}

// push records name once until the next Drain.
func (w *TextureWatcher) push(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seen[name] {
		return
	}
	w.seen[name] = true
	w.changed = append(w.changed, name)
}

// Drain returns the names changed since the last call, in the order they
// first changed.
func (w *TextureWatcher) Drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.changed) == 0 {
		return nil
	}
	out := w.changed
	w.changed = nil
	clear(w.seen)
	return out
}

// Close stops watching and waits for the goroutine to exit.
func (w *TextureWatcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
