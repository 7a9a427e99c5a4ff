package ui

import (
	"unicode"

	"github.com/atomicstack/cmdpalette/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const promptSymbol = "» "

func (m *Model) updateFilterCursorModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.filterCursor, cmd = m.filterCursor.Update(msg)
	return cmd
}

func (m *Model) noteFilterCursorChange(before int) {
	if before != m.prompt.Pos() {
		m.filterCursorDirty = true
	}
}

// syncPrompt pulls the controller's query into the prompt after operations
// that change it behind the prompt's back (select, go back, reload).
func (m *Model) syncPrompt() {
	q := m.ctrl.State().Query
	if q == m.prompt.Text {
		return
	}
	before := m.prompt.Pos()
	m.prompt.Set(q, len([]rune(q)))
	m.noteFilterCursorChange(before)
}

// applyQuery pushes the prompt text to the controller.
func (m *Model) applyQuery() {
	m.forceClearInfo()
	m.errMsg = ""
	m.viewport.Reset()
	m.ctrl.SetQuery(m.prompt.Text)
}

func (m *Model) handleTextInput(msg tea.KeyMsg) (bool, tea.Cmd) {
	root := m.ctrl.State().RootID
	before := m.prompt.Pos()
	switch msg.String() {
	case "ctrl+u":
		if !m.prompt.Clear() {
			return false, nil
		}
		m.noteFilterCursorChange(before)
		m.applyQuery()
		events.Filter.Cleared(root)
		return true, nil
	case "ctrl+w":
		if !m.prompt.DeleteWordBackward() {
			return false, nil
		}
		m.noteFilterCursorChange(before)
		m.applyQuery()
		events.Filter.WordBackspace(root, m.prompt.Text)
		return true, nil
	case "ctrl+a":
		if !m.prompt.MoveStart() {
			return false, nil
		}
		m.noteFilterCursorChange(before)
		events.Filter.Cursor(root, m.prompt.Cursor)
		return true, nil
	case "ctrl+e":
		if !m.prompt.MoveEnd() {
			return false, nil
		}
		m.noteFilterCursorChange(before)
		events.Filter.Cursor(root, m.prompt.Cursor)
		return true, nil
	case "alt+b":
		if !m.prompt.MoveWordBackward() {
			return false, nil
		}
		m.noteFilterCursorChange(before)
		events.Filter.CursorWord(root, m.prompt.Cursor)
		return true, nil
	case "alt+f":
		if !m.prompt.MoveWordForward() {
			return false, nil
		}
		m.noteFilterCursorChange(before)
		events.Filter.CursorWord(root, m.prompt.Cursor)
		return true, nil
	}
	switch msg.Type {
	case tea.KeyBackspace, tea.KeyCtrlH:
		return m.removeFilterRune(), nil
	case tea.KeyRunes:
		if msg.Alt || len(msg.Runes) == 0 {
			return false, nil
		}
		for _, r := range msg.Runes {
			if unicode.IsControl(r) {
				return false, nil
			}
		}
		return m.appendToFilter(string(msg.Runes)), nil
	case tea.KeySpace:
		return m.appendToFilter(" "), nil
	case tea.KeyLeft:
		if !m.prompt.MoveRuneBackward() {
			return false, nil
		}
		m.noteFilterCursorChange(before)
		events.Filter.Cursor(root, m.prompt.Cursor)
		return true, nil
	case tea.KeyRight:
		if !m.prompt.MoveRuneForward() {
			return false, nil
		}
		m.noteFilterCursorChange(before)
		events.Filter.Cursor(root, m.prompt.Cursor)
		return true, nil
	}
	return false, nil
}

func (m *Model) appendToFilter(text string) bool {
	before := m.prompt.Pos()
	if !m.prompt.Insert(text) {
		return false
	}
	m.noteFilterCursorChange(before)
	m.applyQuery()
	events.Filter.Append(m.ctrl.State().RootID, m.prompt.Text)
	return true
}

func (m *Model) removeFilterRune() bool {
	before := m.prompt.Pos()
	if !m.prompt.DeleteRuneBackward() {
		return false
	}
	m.noteFilterCursorChange(before)
	m.applyQuery()
	events.Filter.Backspace(m.ctrl.State().RootID, m.prompt.Text)
	return true
}

func (m *Model) filterPrompt() string {
	render := func(style *lipgloss.Style, value string) string {
		if style == nil || value == "" {
			return value
		}
		return style.Render(value)
	}
	if styles.Cursor != nil {
		m.filterCursor.Style = styles.Cursor.Copy()
	}
	if styles.Filter != nil {
		m.filterCursor.TextStyle = styles.Filter.Copy()
	} else {
		m.filterCursor.TextStyle = lipgloss.Style{}
	}
	prompt := render(styles.FilterPrompt, promptSymbol)
	text := m.prompt.Text
	if text == "" {
		runes := []rune(m.placeholder)
		var caretRune, rest string
		if len(runes) > 0 {
			caretRune = string(runes[0])
			rest = string(runes[1:])
		}
		if styles.FilterPlaceholder != nil {
			m.filterCursor.TextStyle = styles.FilterPlaceholder.Copy()
		}
		return prompt + m.renderFilterCursor(caretRune) + render(styles.FilterPlaceholder, rest)
	}
	runes := []rune(text)
	pos := m.prompt.Pos()
	before := render(styles.Filter, string(runes[:pos]))
	caretRune := " "
	after := ""
	if pos < len(runes) {
		caretRune = string(runes[pos])
		after = render(styles.Filter, string(runes[pos+1:]))
	}
	return prompt + before + m.renderFilterCursor(caretRune) + after
}

func (m *Model) renderFilterCursor(char string) string {
	if char == "" {
		char = " "
	}
	m.filterCursor.SetChar(char)

	base := m.filterCursor.TextStyle.Copy()
	base = base.Inline(true)

	if m.filterCursor.Blink {
		return base.Render(char)
	}

	if styles.Cursor != nil {
		cursorStyle := styles.Cursor.Copy().Inline(true)
		base = base.Inherit(cursorStyle).Blink(false)
		return base.Render(char)
	}

	return base.Reverse(true).Render(char)
}
