package ui

import (
	"context"
	"reflect"
	"time"

	"github.com/atomicstack/cmdpalette/internal/backend"
	"github.com/atomicstack/cmdpalette/internal/data/dispatcher"
	"github.com/atomicstack/cmdpalette/internal/keymap"
	"github.com/atomicstack/cmdpalette/internal/logging/events"
	"github.com/atomicstack/cmdpalette/internal/palette"
	"github.com/atomicstack/cmdpalette/internal/theme"
	"github.com/atomicstack/cmdpalette/internal/ui/command"
	uistate "github.com/atomicstack/cmdpalette/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	breadcrumbSeparator = " → "
	defaultRootTitle    = "Commands"
	defaultPlaceholder  = "Type a command or search..."
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Options configures a Model.
type Options struct {
	Context         context.Context
	Keys            keymap.KeyMap
	Open            palette.OpenOptions
	Width           int
	Height          int
	ShowFooter      bool
	HideBreadcrumbs bool
	ExitOnClose     bool
	// PickLeaves closes the palette when an action without children or
	// handler is selected, so the choice can be reported by the caller.
	PickLeaves  bool
	Placeholder string
	Watcher     *backend.Watcher
}

// Model implements the Bubble Tea model for the command palette.
type Model struct {
	ctx  context.Context
	ctrl *palette.Controller
	keys keymap.KeyMap

	openOpts        palette.OpenOptions
	prompt          uistate.Prompt
	viewport        uistate.Viewport
	rowTargets      []string
	lastSelected    string
	errMsg          string
	infoMsg         string
	infoExpire      time.Time
	width           int
	height          int
	fixedWidth      bool
	fixedHeight     bool
	showFooter      bool
	hideBreadcrumbs bool
	exitOnClose     bool
	pickLeaves      bool
	placeholder     string

	filterCursor      cursor.Model
	filterCursorDirty bool

	handlers map[reflect.Type]msgHandler

	bus        *command.Bus
	watcher    *backend.Watcher
	dispatcher *dispatcher.Dispatcher
}

// NewModel opens ctrl with the configured root and search and wraps it in a
// Bubble Tea model.
func NewModel(ctrl *palette.Controller, opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	m := &Model{
		ctx:             ctx,
		ctrl:            ctrl,
		keys:            opts.Keys,
		openOpts:        opts.Open,
		showFooter:      opts.ShowFooter,
		hideBreadcrumbs: opts.HideBreadcrumbs,
		exitOnClose:     opts.ExitOnClose,
		pickLeaves:      opts.PickLeaves,
		placeholder:     opts.Placeholder,
		bus:             command.New(ctx),
		watcher:         opts.Watcher,
		dispatcher:      dispatcher.New(ctrl),
	}
	if m.placeholder == "" {
		m.placeholder = defaultPlaceholder
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = styles.Cursor.Copy()
	}
	if styles.Filter != nil {
		c.TextStyle = styles.Filter.Copy()
	}
	c.SetChar(" ")
	m.filterCursor = c
	if !ctrl.State().Open {
		m.openPalette()
	}
	m.syncPrompt()
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.watcher != nil {
		cmds = append(cmds, waitForBackendEvent(m.watcher))
	}
	if cmd := m.filterCursor.Focus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if cmd := m.pendingLoads(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if cmd := m.updateFilterCursorModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

// LastSelected returns the id of the most recently selected action.
func (m *Model) LastSelected() string {
	return m.lastSelected
}

// Controller exposes the palette controller driven by the model.
func (m *Model) Controller() *palette.Controller {
	return m.ctrl
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):         m.handleKeyMsg,
		reflect.TypeOf(tea.MouseMsg{}):       m.handleMouseMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}):  m.handleWindowSizeMsg,
		reflect.TypeOf(command.LoadResult{}): m.handleLoadResultMsg,
		reflect.TypeOf(backendEventMsg{}):    m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):     m.handleBackendDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if cmd := m.pendingLoads(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.filterCursorDirty {
		m.filterCursorDirty = false
		m.filterCursor.Blink = false
		if cmd := m.filterCursor.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// pendingLoads hands loads started by the last recomputation to the bus.
func (m *Model) pendingLoads() tea.Cmd {
	return m.bus.LoadAll(m.ctrl.TakeLoads())
}

func (m *Model) handleLoadResultMsg(msg tea.Msg) tea.Cmd {
	res, ok := msg.(command.LoadResult)
	if !ok || res.Load == nil {
		return nil
	}
	if cat := m.ctrl.Catalog(); cat != nil && cat.Generation() != res.Load.Generation() {
		events.Load.Stale(res.Load.RootID, res.Load.Index)
	}
	if err := m.ctrl.Resolve(res.Load, res.Actions, res.Err); err != nil {
		m.setError(err)
	}
	return nil
}
