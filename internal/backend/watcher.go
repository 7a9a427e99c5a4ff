package backend

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/atomicstack/cmdpalette/internal/catalog"
	"github.com/fsnotify/fsnotify"
)

// LoadFunc reads a catalog file into entries.
type LoadFunc func(path string) ([]catalog.Entry, error)

// Event conveys a reloaded catalog or the error that prevented it.
type Event struct {
	Path    string
	Entries []catalog.Entry
	Err     error
}

// Watcher reloads a catalog file whenever it changes on disk and publishes
// the result. The containing directory is watched so editors that replace
// the file by renaming over it are still seen.
type Watcher struct {
	path string
	load LoadFunc

	fsw      *fsnotify.Watcher
	throttle *eventThrottle
	pending  chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup
}

// NewWatcher starts watching path. Bursts of changes within delay of each
// other produce a single reload.
func NewWatcher(path string, delay time.Duration, load LoadFunc) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:    abs,
		load:    load,
		fsw:     fsw,
		pending: make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		events:  make(chan Event, 4),
	}
	w.throttle = newEventThrottle(delay, func() {
		select {
		case w.pending <- struct{}{}:
		default:
		}
	})

	w.wg.Add(1)
	go w.run()

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w, nil
}

// Events returns a channel of reload events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher. Use Wait if a clean drain is required (e.g. in
// tests).
func (w *Watcher) Stop() {
	w.cancel()
}

// Wait blocks until the watcher has exited and the events channel is closed.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) run() {
	defer w.wg.Done()
	defer func() { _ = w.fsw.Close() }()
	defer w.throttle.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.emit(Event{Path: w.path, Err: err})
		case evt, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.relevant(evt) {
				w.throttle.Enqueue()
			}
		case <-w.pending:
			entries, err := w.load(w.path)
			w.emit(Event{Path: w.path, Entries: entries, Err: err})
		}
	}
}

// relevant reports whether evt touches the catalog file itself. Chmod-only
// notifications are ignored.
func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if filepath.Clean(evt.Name) != w.path {
		return false
	}
	return evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

func (w *Watcher) emit(evt Event) {
	select {
	case <-w.ctx.Done():
	case w.events <- evt:
	}
}
