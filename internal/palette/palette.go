// Package palette implements the selection state machine: which root is
// being browsed, the current query, the highlighted action, and what happens
// when an action is chosen.
package palette

import (
	"context"
	"errors"
	"fmt"

	"github.com/atomicstack/cmdpalette/internal/catalog"
	"github.com/atomicstack/cmdpalette/internal/navigator"
	"github.com/go-logr/logr"
)

// BreadcrumbMode picks where the breadcrumb chain comes from.
type BreadcrumbMode int

const (
	// BreadcrumbsFromRoot derives the chain from the browsed root's ancestry.
	BreadcrumbsFromRoot BreadcrumbMode = iota
	// BreadcrumbsFromSelection walks the parents of the highlighted action.
	BreadcrumbsFromSelection
)

// ParseBreadcrumbMode accepts "root" or "selection".
func ParseBreadcrumbMode(s string) (BreadcrumbMode, error) {
	switch s {
	case "", "root":
		return BreadcrumbsFromRoot, nil
	case "selection":
		return BreadcrumbsFromSelection, nil
	}
	return BreadcrumbsFromRoot, fmt.Errorf("unknown breadcrumb mode %q (want root or selection)", s)
}

func (m BreadcrumbMode) String() string {
	if m == BreadcrumbsFromSelection {
		return "selection"
	}
	return "root"
}

// Config holds the navigation settings.
type Config struct {
	IgnorePrefixes []string
	NumRecent      int
	Breadcrumbs    BreadcrumbMode
}

// State is the observable controller state.
type State struct {
	Open       bool
	RootID     string
	Query      string
	SelectedID string
}

// OpenOptions seeds the state when the palette is opened.
type OpenOptions struct {
	Root   string
	Search string
}

// SelectEvent is emitted on every selection attempt, including ones with no
// action.
type SelectEvent struct {
	Query  string
	Action *catalog.Action
}

// ChangeEvent is emitted after the query changed and the visible set was
// recomputed.
type ChangeEvent struct {
	Query   string
	Actions []*catalog.Action
}

// Events receives notifications. Nil callbacks are skipped.
type Events struct {
	OnSelect func(SelectEvent)
	OnChange func(ChangeEvent)
}

// HandlerError wraps a failing action handler. The palette stays open.
type HandlerError struct {
	ActionID string
	Err      error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("action %s: %v", e.ActionID, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// SelectResult describes what a selection did.
type SelectResult struct {
	Entered bool
	Closed  bool
	Handled bool
}

// Controller owns the palette state. It is not safe for concurrent use; all
// calls are expected from one goroutine (the UI update loop).
type Controller struct {
	cat     *catalog.Catalog
	cfg     Config
	state   State
	visible navigator.Result
	loads   []*catalog.Load
	events  Events
	log     logr.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithEvents installs notification callbacks.
func WithEvents(ev Events) Option {
	return func(c *Controller) { c.events = ev }
}

// WithLogger routes diagnostics to log.
func WithLogger(log logr.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// New returns a closed controller over cat.
func New(cat *catalog.Catalog, cfg Config, opts ...Option) *Controller {
	c := &Controller{cat: cat, cfg: cfg, log: logr.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Catalog returns the catalog being navigated.
func (c *Controller) Catalog() *catalog.Catalog { return c.cat }

// State returns a copy of the current state.
func (c *Controller) State() State { return c.state }

// Visible returns the last computed visible set.
func (c *Controller) Visible() navigator.Result { return c.visible }

// Selected returns the highlighted action, if any.
func (c *Controller) Selected() *catalog.Action {
	idx := c.visible.IndexOf(c.state.SelectedID)
	if idx < 0 {
		return nil
	}
	return c.visible.Matches[idx].Action
}

// SelectedIndex returns the display position of the highlighted action, or -1.
func (c *Controller) SelectedIndex() int {
	return c.visible.IndexOf(c.state.SelectedID)
}

// TakeLoads returns and forgets the loads started since the last call.
func (c *Controller) TakeLoads() []*catalog.Load {
	loads := c.loads
	c.loads = nil
	return loads
}

// Open shows the palette at opts.Root with opts.Search as the query.
func (c *Controller) Open(opts OpenOptions) {
	c.state.Open = true
	c.state.RootID = opts.Root
	c.state.Query = opts.Search
	c.state.SelectedID = ""
	c.refresh()
}

// Close hides the palette. Root, query and selection are kept so a caller
// can resume where the user left off.
func (c *Controller) Close() {
	c.state.Open = false
}

// Toggle opens a closed palette at the top level and closes an open one.
func (c *Controller) Toggle() {
	if c.state.Open {
		c.Close()
		return
	}
	c.Open(OpenOptions{})
}

// SetParent browses to id (the top level when empty), clearing the query.
func (c *Controller) SetParent(id string) {
	c.state.RootID = id
	c.state.Query = ""
	c.state.SelectedID = ""
	c.refresh()
}

// SetQuery replaces the query, recomputes the visible set, moves the
// selection to the first entry and emits a change event.
func (c *Controller) SetQuery(q string) {
	c.state.Query = q
	c.state.SelectedID = ""
	c.refresh()
	if c.events.OnChange != nil {
		c.events.OnChange(ChangeEvent{Query: c.visible.Query, Actions: c.visible.Actions()})
	}
}

// NavigateDown moves the selection forward, wrapping to the first entry.
func (c *Controller) NavigateDown() bool {
	n := c.visible.Len()
	if n == 0 {
		return false
	}
	idx := c.visible.IndexOf(c.state.SelectedID)
	if idx < 0 || idx >= n-1 {
		idx = 0
	} else {
		idx++
	}
	c.state.SelectedID = c.visible.Matches[idx].Action.ID
	return true
}

// NavigateUp moves the selection back, wrapping to the last entry.
func (c *Controller) NavigateUp() bool {
	n := c.visible.Len()
	if n == 0 {
		return false
	}
	idx := c.visible.IndexOf(c.state.SelectedID)
	if idx <= 0 {
		idx = n - 1
	} else {
		idx--
	}
	c.state.SelectedID = c.visible.Matches[idx].Action.ID
	return true
}

// Focus highlights id if it is visible, as a pointer hover does.
func (c *Controller) Focus(id string) bool {
	if c.visible.IndexOf(id) < 0 {
		return false
	}
	c.state.SelectedID = id
	return true
}

// SelectCurrent selects the highlighted action.
func (c *Controller) SelectCurrent(ctx context.Context) (SelectResult, error) {
	return c.Select(ctx, c.Selected())
}

// Select chooses action. A select event is emitted first, even for a nil
// action. An action with children is entered. A handler, if present, runs
// next; the palette closes afterwards unless the handler asks to keep it
// open or fails.
func (c *Controller) Select(ctx context.Context, action *catalog.Action) (SelectResult, error) {
	if c.events.OnSelect != nil {
		c.events.OnSelect(SelectEvent{Query: c.state.Query, Action: action})
	}
	var res SelectResult
	if action == nil {
		return res, nil
	}
	if c.cat != nil && c.cat.HasChildren(action.ID) {
		c.state.RootID = action.ID
		res.Entered = true
	}
	c.state.Query = ""
	c.state.SelectedID = ""
	c.refresh()

	if action.Handler == nil {
		return res, nil
	}
	res.Handled = true
	outcome, err := action.Handler(ctx, action)
	if err != nil {
		c.log.Error(err, "action handler failed", "action", action.ID)
		return res, &HandlerError{ActionID: action.ID, Err: err}
	}
	if outcome == nil || !outcome.KeepOpen {
		c.Close()
		res.Closed = true
	}
	return res, nil
}

// Breadcrumbs returns the id chain shown above the list, outermost first.
func (c *Controller) Breadcrumbs() []string {
	if c.cat == nil {
		return nil
	}
	switch c.cfg.Breadcrumbs {
	case BreadcrumbsFromSelection:
		sel := c.Selected()
		if sel == nil {
			return nil
		}
		return c.cat.Ancestors(sel.ID)
	default:
		if c.state.RootID == "" {
			return nil
		}
		return append(c.cat.Ancestors(c.state.RootID), c.state.RootID)
	}
}

// GoBack browses to the parent of the current level. It is ignored while the
// query is non-empty.
func (c *Controller) GoBack() bool {
	if c.state.Query != "" {
		return false
	}
	crumbs := c.Breadcrumbs()
	if len(crumbs) >= 2 {
		c.SetParent(crumbs[len(crumbs)-2])
	} else {
		c.SetParent("")
	}
	return true
}

// Refresh recomputes the visible set, for example after a load resolved.
func (c *Controller) Refresh() {
	if c.state.Open {
		c.refresh()
	}
}

// Resolve applies a finished load and recomputes the visible set. Stale loads
// are dropped silently.
func (c *Controller) Resolve(l *catalog.Load, actions []*catalog.Action, loadErr error) error {
	if c.cat == nil {
		return nil
	}
	err := c.cat.Resolve(l, actions, loadErr)
	if errors.Is(err, catalog.ErrStaleLoad) {
		return nil
	}
	c.Refresh()
	return err
}

// ReplaceCatalog swaps the catalog contents. A root that no longer exists is
// reset to the top level.
func (c *Controller) ReplaceCatalog(entries []catalog.Entry) error {
	if c.cat == nil {
		cat, err := catalog.New(entries, catalog.WithLogger(c.log))
		if err != nil {
			return err
		}
		c.cat = cat
	} else if err := c.cat.Replace(entries); err != nil {
		return err
	}
	if c.state.RootID != "" {
		if _, ok := c.cat.Find(c.state.RootID); !ok {
			c.state.RootID = ""
			c.state.Query = ""
		}
	}
	c.Refresh()
	return nil
}

func (c *Controller) refresh() {
	c.visible = navigator.Visible(c.cat, navigator.Options{
		RootID:         c.state.RootID,
		Query:          c.state.Query,
		IgnorePrefixes: c.cfg.IgnorePrefixes,
		NumRecent:      c.cfg.NumRecent,
	})
	c.loads = append(c.loads, c.visible.Loads...)
	switch {
	case c.visible.Len() == 0:
		c.state.SelectedID = ""
	case c.visible.IndexOf(c.state.SelectedID) < 0:
		c.state.SelectedID = c.visible.Matches[0].Action.ID
	}
}
