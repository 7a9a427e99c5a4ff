package backend

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/atomicstack/cmdpalette/internal/catalog"
)

func newTestWatcher(t *testing.T, path string, load LoadFunc) *Watcher {
	t.Helper()
	w, err := NewWatcher(path, 50*time.Millisecond, load)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	t.Cleanup(func() {
		w.Stop()
		w.Wait()
	})
	return w
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func expectNoEvent(t *testing.T, w *Watcher, wait time.Duration) {
	t.Helper()
	select {
	case evt := <-w.Events():
		t.Fatalf("unexpected event %#v", evt)
	case <-time.After(wait):
	}
}

func TestWatcherReportsChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeFile(t, path, "a")
	loads := make(chan string, 4)
	w := newTestWatcher(t, path, func(p string) ([]catalog.Entry, error) {
		loads <- p
		return []catalog.Entry{&catalog.Action{ID: "x"}}, nil
	})

	expectNoEvent(t, w, 100*time.Millisecond)
	writeFile(t, path, "abc")

	select {
	case evt := <-w.Events():
		if evt.Err != nil || len(evt.Entries) != 1 || evt.Path != path {
			t.Fatalf("unexpected event %#v", evt)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for reload event")
	}
	if got := <-loads; got != path {
		t.Fatalf("expected load of %q, got %q", path, got)
	}
}

func TestWatcherCoalescesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeFile(t, path, "a")
	var loads int32
	w := newTestWatcher(t, path, func(string) ([]catalog.Entry, error) {
		atomic.AddInt32(&loads, 1)
		return nil, nil
	})

	for _, body := range []string{"b", "bc", "bcd", "bcde"} {
		writeFile(t, path, body)
	}
	select {
	case <-w.Events():
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for reload event")
	}
	expectNoEvent(t, w, 300*time.Millisecond)
	if n := atomic.LoadInt32(&loads); n != 1 {
		t.Fatalf("expected one reload for the burst, got %d", n)
	}
}

func TestWatcherSurvivesRenameOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	writeFile(t, path, "a")
	w := newTestWatcher(t, path, func(string) ([]catalog.Entry, error) {
		return []catalog.Entry{&catalog.Action{ID: "x"}}, nil
	})

	for i := 0; i < 2; i++ {
		tmp := filepath.Join(dir, ".catalog.yaml.swp")
		writeFile(t, tmp, "replacement")
		if err := os.Rename(tmp, path); err != nil {
			t.Fatalf("rename: %v", err)
		}
		select {
		case evt := <-w.Events():
			if evt.Err != nil {
				t.Fatalf("unexpected error event %#v", evt)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for reload %d", i+1)
		}
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	writeFile(t, path, "a")
	w := newTestWatcher(t, path, func(string) ([]catalog.Entry, error) {
		return nil, nil
	})
	writeFile(t, filepath.Join(dir, "notes.txt"), "unrelated")
	expectNoEvent(t, w, 300*time.Millisecond)
}

func TestWatcherReportsRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	writeFile(t, path, "a")
	w := newTestWatcher(t, path, func(p string) ([]catalog.Entry, error) {
		_, err := os.ReadFile(p)
		return nil, err
	})
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	select {
	case evt := <-w.Events():
		if !errors.Is(evt.Err, os.ErrNotExist) {
			t.Fatalf("expected not-exist error, got %#v", evt)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for error event")
	}
}

func TestNewWatcherRejectsMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "catalog.yaml")
	if _, err := NewWatcher(path, time.Millisecond, nil); err == nil {
		t.Fatalf("expected error for a directory that does not exist")
	}
}

func TestEventThrottleFoldsCalls(t *testing.T) {
	fired := make(chan struct{}, 4)
	th := newEventThrottle(20*time.Millisecond, func() { fired <- struct{}{} })
	th.Enqueue()
	th.Enqueue()
	th.Enqueue()
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatalf("expected a flush")
	}
	select {
	case <-fired:
		t.Fatalf("expected calls in one burst to flush once")
	case <-time.After(60 * time.Millisecond):
	}

	th.Enqueue()
	th.Stop()
	select {
	case <-fired:
		t.Fatalf("expected stop to drop the scheduled flush")
	case <-time.After(60 * time.Millisecond):
	}
}
