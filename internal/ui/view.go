package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atomicstack/cmdpalette/internal/navigator"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

const (
	itemIndicator   = "▌"
	loadingText     = "Loading…"
	minTitleColumns = 8
)

type listRow struct {
	text   string
	target string
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ctrl.State().Open {
		m.rowTargets = nil
		return m.closedView()
	}

	var lines, targets []string
	add := func(text, target string) {
		lines = append(lines, text)
		targets = append(targets, target)
	}

	if header := m.header(); header != "" {
		add(renderStyled(styles.Header, header), "")
	}

	visible := m.ctrl.Visible()
	rows, selRow, anchorRow := m.listRows(visible, m.width)
	if len(rows) == 0 {
		if !visible.Loading {
			msg := "(no actions)"
			if q := m.ctrl.State().Query; q != "" {
				msg = fmt.Sprintf("No matches for %q", q)
			}
			add(renderStyled(styles.Info, msg), "")
		}
	} else {
		if maxRows := m.maxVisibleRows(); maxRows > 0 {
			if selRow >= 0 {
				m.viewport.EnsureVisible(anchorRow, len(rows), maxRows)
				m.viewport.EnsureVisible(selRow, len(rows), maxRows)
			}
			start, end := m.viewport.Window(len(rows), maxRows)
			rows = rows[start:end]
		}
		for _, row := range rows {
			add(row.text, row.target)
		}
	}
	if visible.Loading {
		add(renderStyled(styles.Loading, loadingText), "")
	}
	if info := m.currentInfo(); info != "" {
		add("", "")
		add(renderStyled(styles.Info, info), "")
	}
	if m.showFooter {
		add("", "")
		add(renderStyled(styles.Footer, m.footerText()), "")
	}
	if m.height > 0 {
		lines, targets = limitHeight(lines, targets, m.height-2)
	}

	status := ""
	if m.errMsg != "" {
		status = renderStyled(styles.Error, fmt.Sprintf("Error: %s", m.errMsg))
	}
	add(status, "")
	add(m.filterPrompt(), "")

	m.rowTargets = targets
	return strings.Join(applyWidth(lines, m.width), "\n")
}

func (m *Model) closedView() string {
	if !m.keys.Open.Enabled() {
		return ""
	}
	hint := fmt.Sprintf("Press %s to open the command palette", m.keys.Open.Help().Key)
	return strings.Join(applyWidth([]string{renderStyled(styles.Info, hint)}, m.width), "\n")
}

// listRows renders the visible actions with their group and section titles.
// It returns the row index of the selected action and of the first title
// row directly above it, or -1 for both when nothing is selected.
func (m *Model) listRows(visible navigator.Result, width int) ([]listRow, int, int) {
	groupAt := spanStarts(visible.Groups)
	sectionAt := spanStarts(visible.Sections)
	selIdx := m.ctrl.SelectedIndex()
	selRow, anchorRow := -1, -1

	rows := make([]listRow, 0, visible.Len())
	for i, match := range visible.Matches {
		anchor := len(rows)
		if name, ok := groupAt[i]; ok && name != "" {
			rows = append(rows, listRow{text: renderStyled(styles.Group, name)})
		}
		if name, ok := sectionAt[i]; ok && name != "" {
			rows = append(rows, listRow{text: renderStyled(styles.Section, "  "+name)})
		}
		if i == selIdx {
			selRow, anchorRow = len(rows), anchor
		}
		rows = append(rows, listRow{
			text:   itemLine(match, i == selIdx, width),
			target: match.Action.ID,
		})
	}
	return rows, selRow, anchorRow
}

func spanStarts(spans []navigator.Span) map[int]string {
	out := make(map[int]string, len(spans))
	for _, s := range spans {
		if s.End > s.Start {
			out[s.Start] = s.Name
		}
	}
	return out
}

// itemLine renders one action: indicator, highlighted title, and the hotkey
// right-aligned when the width is known.
func itemLine(match navigator.Match, selected bool, width int) string {
	lineStyle := styles.Item
	matchStyle := styles.Match
	hotkeyStyle := styles.Hotkey
	indicatorStyle := styles.ItemIndicator
	if selected {
		lineStyle = styles.SelectedItem
		matchStyle = styles.SelectedMatch
		hotkeyStyle = styles.SelectedHotkey
		indicatorStyle = styles.SelectedItemIndicator
	}

	title := match.Action.Title
	if title == "" {
		title = match.Action.ID
	}
	hotkey := match.Action.Hotkey
	prefixWidth := runewidth.StringWidth(itemIndicator) + 1
	indices := match.Indices

	pad := 0
	if width > 0 {
		avail := width - prefixWidth
		if hotkey != "" {
			if avail-runewidth.StringWidth(hotkey)-2 < minTitleColumns {
				hotkey = ""
			} else {
				avail -= runewidth.StringWidth(hotkey) + 2
			}
		}
		if avail < 1 {
			avail = 1
		}
		if runewidth.StringWidth(title) > avail {
			title = runewidth.Truncate(title, avail, "…")
			indices = clipIndices(indices, len([]rune(title))-1)
		}
		pad = width - prefixWidth - runewidth.StringWidth(title) - runewidth.StringWidth(hotkey)
	} else if hotkey != "" {
		pad = 2
	}
	if pad < 0 {
		pad = 0
	}

	var b strings.Builder
	b.WriteString(renderStyled(indicatorStyle, itemIndicator))
	b.WriteString(renderStyled(lineStyle, " "))
	b.WriteString(highlightTitle(title, indices, lineStyle, matchStyle))
	if pad > 0 {
		b.WriteString(renderStyled(lineStyle, strings.Repeat(" ", pad)))
	}
	if hotkey != "" {
		b.WriteString(renderStyled(hotkeyStyle, hotkey))
	}
	return b.String()
}

func clipIndices(indices []int, limit int) []int {
	out := indices[:0:0]
	for _, idx := range indices {
		if idx < limit {
			out = append(out, idx)
		}
	}
	return out
}

// highlightTitle styles the matched runes of title with hi and the rest with
// base, grouping adjacent runes into one styled run.
func highlightTitle(title string, indices []int, base, hi *lipgloss.Style) string {
	runes := []rune(title)
	if len(runes) == 0 {
		return ""
	}
	marked := make([]bool, len(runes))
	for _, idx := range indices {
		if idx >= 0 && idx < len(runes) {
			marked[idx] = true
		}
	}
	var b strings.Builder
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i < len(runes) && marked[i] == marked[start] {
			continue
		}
		style := base
		if marked[start] {
			style = hi
		}
		b.WriteString(renderStyled(style, string(runes[start:i])))
		start = i
	}
	return b.String()
}

func (m *Model) header() string {
	if m.hideBreadcrumbs {
		return ""
	}
	return strings.Join(m.headerSegments(), breadcrumbSeparator)
}

func (m *Model) headerSegments() []string {
	segments := []string{defaultRootTitle}
	cat := m.ctrl.Catalog()
	for _, id := range m.ctrl.Breadcrumbs() {
		title := id
		if cat != nil {
			if action, ok := cat.Find(id); ok && strings.TrimSpace(action.Title) != "" {
				title = strings.TrimSpace(action.Title)
			}
		}
		segments = append(segments, title)
	}
	return segments
}

func (m *Model) footerText() string {
	parts := make([]string, 0, 6)
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	parts = append(parts, "ctrl+c quit")
	return strings.Join(parts, "  ")
}

func (m *Model) rowTarget(y int) string {
	if y < 0 || y >= len(m.rowTargets) {
		return ""
	}
	return m.rowTargets[y]
}

// handleMouseMsg scrolls with the wheel, highlights the hovered action and
// selects on left click.
func (m *Model) handleMouseMsg(msg tea.Msg) tea.Cmd {
	ev, ok := msg.(tea.MouseMsg)
	if !ok || !m.ctrl.State().Open {
		return nil
	}
	switch ev.Button {
	case tea.MouseButtonWheelUp:
		m.moveCursor(-1)
		return nil
	case tea.MouseButtonWheelDown:
		m.moveCursor(1)
		return nil
	}
	id := m.rowTarget(ev.Y)
	if id == "" {
		return nil
	}
	switch ev.Action {
	case tea.MouseActionMotion:
		m.focus(id)
	case tea.MouseActionPress:
		if ev.Button == tea.MouseButtonLeft {
			m.focus(id)
			return m.selectCurrent()
		}
	}
	return nil
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	return nil
}

func (m *Model) maxVisibleRows() int {
	if m.height <= 0 {
		return -1
	}
	used := 2 // status line + prompt
	if m.header() != "" {
		used++
	}
	if m.ctrl.Visible().Loading {
		used++
	}
	if m.currentInfo() != "" {
		used += 2
	}
	if m.showFooter {
		used += 2
	}
	remain := m.height - used
	if remain < 1 {
		return 1
	}
	return remain
}

func (m *Model) setError(err error) {
	if err == nil {
		m.errMsg = ""
		return
	}
	m.errMsg = err.Error()
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(5 * time.Second)
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.infoMsg = ""
		m.infoExpire = time.Time{}
	}
	return m.infoMsg
}

func limitHeight(lines, targets []string, height int) ([]string, []string) {
	if height <= 0 || len(lines) <= height {
		return lines, targets
	}
	if height == 1 {
		return []string{"…"}, []string{""}
	}
	return append(lines[:height-1:height-1], "…"), append(targets[:height-1:height-1], "")
}

func applyWidth(lines []string, width int) []string {
	if width <= 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		if lipgloss.Width(line) > width {
			line = ansi.Truncate(line, width, "…")
		}
		out[i] = line
	}
	return out
}

func renderStyled(style *lipgloss.Style, text string) string {
	if style == nil || text == "" {
		return text
	}
	return style.Render(text)
}
