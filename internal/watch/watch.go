// Package watch re-extracts scope indexes as matching files change,
// following the same fsnotify-plus-debouncer shape the teacher
// codebase uses for its own incremental reindexing: one watcher per
// run, file events coalesced by path over a debounce window before
// triggering work, adapted here to call back into the scope-name
// extraction path instead of the teacher's indexing pipeline.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/jsscopes/internal/config"
	"github.com/standardbeagle/jsscopes/internal/logging"
)

// EventType classifies a debounced file change.
type EventType int

const (
	EventWrite EventType = iota
	EventRemove
)

// Watcher monitors cfg.Project.Root for changes to files matching
// cfg's include/exclude patterns and invokes onChange once per path
// after the configured debounce window, coalescing rapid repeated
// writes (editors that save in multiple steps) into one call.
type Watcher struct {
	fsw       *fsnotify.Watcher
	cfg       *config.Config
	onChange  func(path string, event EventType)
	debounce  eventDebouncer
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New creates a Watcher rooted at cfg.Project.Root. Call Start to
// begin watching and Stop to release the underlying OS watch.
func New(cfg *config.Config, onChange func(path string, event EventType)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		fsw:      fsw,
		cfg:      cfg,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
	}
	w.debounce = newEventDebouncer(time.Duration(cfg.Extract.WatchDebounceMs)*time.Millisecond, onChange)
	return w, nil
}

// Start registers root and its subdirectories with the OS watch and
// begins processing events until Stop is called.
func (w *Watcher) Start(root string) error {
	if err := addTree(w.fsw, root); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop halts the watch and releases its OS resources.
func (w *Watcher) Stop() error {
	w.cancel()
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Errorf("watch: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.cfg.Project.Root, ev.Name)
	if err != nil {
		rel = ev.Name
	}
	rel = filepath.ToSlash(rel)
	if !matches(w.cfg, rel) {
		return
	}

	switch {
	case ev.Op&fsnotify.Remove != 0 || ev.Op&fsnotify.Rename != 0:
		w.debounce.addEvent(ev.Name, EventRemove)
	case ev.Op&fsnotify.Write != 0 || ev.Op&fsnotify.Create != 0:
		w.debounce.addEvent(ev.Name, EventWrite)
	}
}

func matches(cfg *config.Config, rel string) bool {
	for _, p := range cfg.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return false
		}
	}
	if len(cfg.Include) == 0 {
		return true
	}
	for _, p := range cfg.Include {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			_ = fsw.Add(path)
		}
		return nil
	})
}

// eventDebouncer batches file events per-path, flushing the latest
// event for each path once debounce has elapsed since its last
// update — the same coalescing strategy the teacher's indexing
// watcher uses to avoid reprocessing a file mid-save.
type eventDebouncer struct {
	mu       sync.Mutex
	pending  map[string]EventType
	timer    *time.Timer
	debounce time.Duration
	onChange func(path string, event EventType)
}

func newEventDebouncer(debounce time.Duration, onChange func(path string, event EventType)) eventDebouncer {
	return eventDebouncer{
		pending:  make(map[string]EventType),
		debounce: debounce,
		onChange: onChange,
	}
}

func (d *eventDebouncer) addEvent(path string, event EventType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[path] = event
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.flush)
}

func (d *eventDebouncer) flush() {
	d.mu.Lock()
	events := d.pending
	d.pending = make(map[string]EventType)
	d.mu.Unlock()

	for path, event := range events {
		d.onChange(path, event)
	}
}
