package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atomicstack/cmdpalette/internal/catalog"
	"github.com/atomicstack/cmdpalette/internal/keymap"
	"github.com/atomicstack/cmdpalette/internal/logging"
	"github.com/atomicstack/cmdpalette/internal/palette"
	"github.com/go-logr/logr"
)

func writeCatalog(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoadEntriesPrependsTmuxAction(t *testing.T) {
	path := writeCatalog(t, "catalog.yaml", "actions:\n  - id: a\n    title: Alpha\n")
	entries, err := LoadEntries(Config{CatalogPath: path, Tmux: true})
	if err != nil {
		t.Fatalf("load entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected tmux + file action, got %d", len(entries))
	}
	first, ok := entries[0].(*catalog.Action)
	if !ok || first.ID != "tmux" {
		t.Fatalf("expected tmux action first, got %#v", entries[0])
	}
}

func TestLoadCatalogReportsIntegrityProblems(t *testing.T) {
	path := writeCatalog(t, "catalog.yaml", "actions:\n  - id: a\n    title: A\n  - id: a\n    title: Again\n")
	_, err := LoadCatalog(Config{CatalogPath: path}, logr.Discard())
	var integrity *catalog.IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("expected integrity error, got %v", err)
	}
}

func TestLoadCatalogTracesOnce(t *testing.T) {
	path := writeCatalog(t, "catalog.yaml", "actions:\n  - id: a\n    title: Alpha\n")
	logPath := filepath.Join(t.TempDir(), "trace.log")
	logging.Configure(logPath)
	logging.SetTraceEnabled(true)
	t.Cleanup(func() {
		logging.SetTraceEnabled(false)
		logging.Configure("")
	})

	if _, err := LoadCatalog(Config{CatalogPath: path}, logr.Discard()); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	logging.Sync()
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	if n := strings.Count(string(data), `"event":"catalog.loaded"`); n != 1 {
		t.Fatalf("expected one catalog.loaded entry, got %d:\n%s", n, data)
	}
}

func TestNewControllerAppliesConfig(t *testing.T) {
	path := writeCatalog(t, "catalog.json", `{"actions": [{"id": "a", "title": "Alpha"}, {"id": "b", "title": "Beta"}]}`)
	cfg := Config{CatalogPath: path, NumRecent: 1, IgnorePrefixes: []string{">"}}
	cat, err := LoadCatalog(cfg, logr.Discard())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	ctrl := NewController(cfg, cat, logr.Discard())
	ctrl.Open(palette.OpenOptions{})
	if groups := ctrl.Visible().Groups; len(groups) != 2 {
		t.Fatalf("expected recent groups, got %#v", groups)
	}
	ctrl.SetQuery(">beta")
	if sel := ctrl.Selected(); sel == nil || sel.ID != "b" {
		t.Fatalf("expected prefix stripped before matching, got %#v", sel)
	}
	if _, err := ctrl.Select(context.Background(), ctrl.Selected()); err != nil {
		t.Fatalf("select: %v", err)
	}
}

func TestNewModelRejectsConflictingHotkeys(t *testing.T) {
	cat, err := catalog.New(nil)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	cfg := Config{Hotkeys: keymap.DefaultHotkeys()}
	cfg.Hotkeys.Down = "enter"
	if _, err := NewModel(context.Background(), cfg, NewController(cfg, cat, logr.Discard()), nil); err == nil {
		t.Fatalf("expected conflicting hotkeys to be rejected")
	}
}

func TestNewModelOpensPalette(t *testing.T) {
	cat, err := catalog.New([]catalog.Entry{&catalog.Action{ID: "a", Title: "Alpha"}})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	cfg := Config{Hotkeys: keymap.DefaultHotkeys(), Search: "alp"}
	model, err := NewModel(context.Background(), cfg, NewController(cfg, cat, logr.Discard()), nil)
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	st := model.Controller().State()
	if !st.Open || st.Query != "alp" || st.SelectedID != "a" {
		t.Fatalf("unexpected initial state %#v", st)
	}
}
