package ui

import (
	"github.com/atomicstack/cmdpalette/internal/keymap"
	"github.com/atomicstack/cmdpalette/internal/logging"
	"github.com/atomicstack/cmdpalette/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if keyMsg.Type == tea.KeyCtrlC {
		m.ctrl.Close()
		events.UI.Close("interrupt")
		return tea.Quit
	}
	if !m.ctrl.State().Open {
		if intent, ok := m.keys.Match(keyMsg); ok && intent == keymap.Open {
			m.openPalette()
		}
		return nil
	}
	if intent, ok := m.keys.Match(keyMsg); ok {
		if handled, cmd := m.applyIntent(intent); handled {
			return cmd
		}
	}
	_, cmd := m.handleTextInput(keyMsg)
	return cmd
}

func (m *Model) applyIntent(intent keymap.Intent) (bool, tea.Cmd) {
	switch intent {
	case keymap.Close:
		return true, m.closePalette("close")
	case keymap.Open:
		return true, m.closePalette("toggle")
	case keymap.Select:
		return true, m.selectCurrent()
	case keymap.Up:
		m.moveCursor(-1)
		return true, nil
	case keymap.Down:
		m.moveCursor(1)
		return true, nil
	case keymap.Back:
		// with text in the prompt the key edits the query instead
		if m.prompt.Text != "" {
			return false, nil
		}
		m.goBack()
		return true, nil
	}
	return false, nil
}

func (m *Model) openPalette() {
	m.ctrl.Open(m.openOpts)
	m.viewport.Reset()
	m.errMsg = ""
	m.forceClearInfo()
	m.syncPrompt()
	events.UI.Open(m.openOpts.Root, m.openOpts.Search)
}

func (m *Model) closePalette(reason string) tea.Cmd {
	m.ctrl.Close()
	events.UI.Close(reason)
	if m.exitOnClose {
		return tea.Quit
	}
	return nil
}

func (m *Model) moveCursor(delta int) {
	var moved bool
	if delta < 0 {
		moved = m.ctrl.NavigateUp()
	} else {
		moved = m.ctrl.NavigateDown()
	}
	if !moved {
		return
	}
	m.traceCursor()
}

func (m *Model) focus(id string) {
	if m.ctrl.State().SelectedID == id {
		return
	}
	if m.ctrl.Focus(id) {
		m.traceCursor()
	}
}

func (m *Model) traceCursor() {
	st := m.ctrl.State()
	events.UI.Cursor(st.RootID, st.SelectedID, m.ctrl.SelectedIndex())
}

func (m *Model) goBack() {
	from := m.ctrl.State().RootID
	if !m.ctrl.GoBack() {
		return
	}
	m.viewport.Reset()
	m.errMsg = ""
	m.syncPrompt()
	events.UI.Back(from, m.ctrl.State().RootID)
}

func (m *Model) selectCurrent() tea.Cmd {
	selected := m.ctrl.Selected()
	res, err := m.ctrl.SelectCurrent(m.ctx)
	m.viewport.Reset()
	m.syncPrompt()
	if err != nil {
		m.setError(err)
		events.Action.Error(err)
		logging.Error(err)
		return nil
	}
	m.errMsg = ""
	if selected == nil {
		return nil
	}
	if res.Entered {
		events.UI.Root(m.ctrl.State().RootID, m.ctrl.Breadcrumbs())
	}
	if res.Handled {
		events.Action.Success(selected.ID)
	}
	if !res.Closed && m.pickLeaves && !res.Entered && !res.Handled {
		m.ctrl.Close()
		res.Closed = true
	}
	if res.Handled || (res.Closed && !res.Entered) {
		m.lastSelected = selected.ID
	}
	if res.Closed {
		events.UI.Close("select")
		if m.exitOnClose {
			return tea.Quit
		}
	}
	return nil
}
