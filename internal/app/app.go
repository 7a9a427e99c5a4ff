package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/atomicstack/cmdpalette/internal/backend"
	"github.com/atomicstack/cmdpalette/internal/catalog"
	"github.com/atomicstack/cmdpalette/internal/keymap"
	"github.com/atomicstack/cmdpalette/internal/logging/events"
	"github.com/atomicstack/cmdpalette/internal/palette"
	"github.com/atomicstack/cmdpalette/internal/source"
	"github.com/atomicstack/cmdpalette/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"
)

// Config describes user-provided application options.
type Config struct {
	CatalogPath     string
	Root            string
	Search          string
	IgnorePrefixes  []string
	NumRecent       int
	Hotkeys         keymap.Hotkeys
	Breadcrumbs     palette.BreadcrumbMode
	Placeholder     string
	HideBreadcrumbs bool
	ExitOnClose     bool
	Watch           time.Duration
	Tmux            bool
	SocketPath      string
	Width           int
	Height          int
	ShowFooter      bool
	Print           bool
}

// SourceOptions returns the handler/loader settings for the catalog file.
func (c Config) SourceOptions() source.Options {
	return source.Options{TmuxSocket: c.SocketPath}
}

// LoadEntries reads the catalog file and prepends the tmux sessions action
// when enabled.
func LoadEntries(cfg Config) ([]catalog.Entry, error) {
	opts := cfg.SourceOptions()
	var entries []catalog.Entry
	if cfg.CatalogPath != "" {
		loaded, err := source.Load(cfg.CatalogPath, opts)
		if err != nil {
			return nil, err
		}
		entries = loaded
	}
	if cfg.Tmux {
		entries = append([]catalog.Entry{source.TmuxSessionsAction(opts)}, entries...)
	}
	return entries, nil
}

// LoadCatalog builds a validated catalog from the configured sources.
func LoadCatalog(cfg Config, log logr.Logger) (*catalog.Catalog, error) {
	entries, err := LoadEntries(cfg)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.New(entries, catalog.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", cfg.CatalogPath, err)
	}
	events.Catalog.Loaded(cfg.CatalogPath, cat.Len())
	return cat, nil
}

// NewController creates the palette controller with trace notifications.
func NewController(cfg Config, cat *catalog.Catalog, log logr.Logger) *palette.Controller {
	return palette.New(cat, palette.Config{
		IgnorePrefixes: cfg.IgnorePrefixes,
		NumRecent:      cfg.NumRecent,
		Breadcrumbs:    cfg.Breadcrumbs,
	},
		palette.WithLogger(log),
		palette.WithEvents(palette.Events{
			OnSelect: func(ev palette.SelectEvent) {
				id := ""
				if ev.Action != nil {
					id = ev.Action.ID
				}
				events.Action.Selected(id, ev.Query)
			},
			OnChange: func(ev palette.ChangeEvent) {
				events.UI.Change(ev.Query, len(ev.Actions))
			},
		}),
	)
}

// NewModel assembles the UI model for cfg.
func NewModel(ctx context.Context, cfg Config, ctrl *palette.Controller, watcher *backend.Watcher) (*ui.Model, error) {
	keys, err := keymap.New(cfg.Hotkeys)
	if err != nil {
		return nil, err
	}
	return ui.NewModel(ctrl, ui.Options{
		Context:         ctx,
		Keys:            keys,
		Open:            palette.OpenOptions{Root: cfg.Root, Search: cfg.Search},
		Width:           cfg.Width,
		Height:          cfg.Height,
		ShowFooter:      cfg.ShowFooter,
		HideBreadcrumbs: cfg.HideBreadcrumbs,
		ExitOnClose:     cfg.ExitOnClose,
		PickLeaves:      cfg.Print,
		Placeholder:     cfg.Placeholder,
		Watcher:         watcher,
	}), nil
}

// Run bootstraps and executes the Bubble Tea program. With cfg.Print the id
// of the last selected action is written to out.
func Run(ctx context.Context, cfg Config, log logr.Logger, out io.Writer) error {
	cat, err := LoadCatalog(cfg, log)
	if err != nil {
		return err
	}
	ctrl := NewController(cfg, cat, log)

	var watcher *backend.Watcher
	if cfg.Watch > 0 && cfg.CatalogPath != "" {
		watcher, err = backend.NewWatcher(cfg.CatalogPath, cfg.Watch, func(string) ([]catalog.Entry, error) {
			return LoadEntries(cfg)
		})
		if err != nil {
			return err
		}
		defer watcher.Stop()
	}

	model, err := NewModel(ctx, cfg, ctrl, watcher)
	if err != nil {
		return err
	}
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		err = nil
	}
	if err != nil {
		return err
	}
	if cfg.Print && out != nil {
		if id := model.LastSelected(); id != "" {
			fmt.Fprintln(out, id)
		}
	}
	return nil
}
