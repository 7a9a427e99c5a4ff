// Package state holds the editable query line and list viewport used by the
// palette view.
package state

import "unicode"

// Prompt is the query being typed, with a rune cursor.
type Prompt struct {
	Text   string
	Cursor int
}

// Set replaces the text and clamps the cursor into range.
func (p *Prompt) Set(text string, cursor int) {
	p.Text = text
	n := len([]rune(text))
	if cursor < 0 {
		cursor = 0
	}
	if cursor > n {
		cursor = n
	}
	p.Cursor = cursor
}

// Clear empties the prompt. It reports whether anything changed.
func (p *Prompt) Clear() bool {
	if p.Text == "" && p.Cursor == 0 {
		return false
	}
	p.Set("", 0)
	return true
}

// Pos returns the clamped rune offset of the cursor.
func (p *Prompt) Pos() int {
	runes := []rune(p.Text)
	if p.Cursor < 0 {
		return 0
	}
	if p.Cursor > len(runes) {
		return len(runes)
	}
	return p.Cursor
}

// Insert adds text at the cursor.
func (p *Prompt) Insert(text string) bool {
	insert := []rune(text)
	if len(insert) == 0 {
		return false
	}
	runes := []rune(p.Text)
	pos := p.Pos()
	updated := make([]rune, 0, len(runes)+len(insert))
	updated = append(updated, runes[:pos]...)
	updated = append(updated, insert...)
	updated = append(updated, runes[pos:]...)
	p.Set(string(updated), pos+len(insert))
	return true
}

// DeleteRuneBackward deletes the rune before the cursor.
func (p *Prompt) DeleteRuneBackward() bool {
	runes := []rune(p.Text)
	pos := p.Pos()
	if pos == 0 || len(runes) == 0 {
		return false
	}
	updated := append(runes[:pos-1], runes[pos:]...)
	p.Set(string(updated), pos-1)
	return true
}

// DeleteWordBackward deletes the word preceding the cursor.
func (p *Prompt) DeleteWordBackward() bool {
	runes := []rune(p.Text)
	pos := p.Pos()
	if pos == 0 || len(runes) == 0 {
		return false
	}
	i := wordStartBefore(runes, pos)
	updated := append(runes[:i], runes[pos:]...)
	p.Set(string(updated), i)
	return true
}

// MoveStart moves the cursor to the start.
func (p *Prompt) MoveStart() bool {
	if p.Pos() == 0 {
		return false
	}
	p.Cursor = 0
	return true
}

// MoveEnd moves the cursor to the end.
func (p *Prompt) MoveEnd() bool {
	end := len([]rune(p.Text))
	if p.Pos() == end {
		return false
	}
	p.Cursor = end
	return true
}

// MoveWordBackward moves the cursor one word backward.
func (p *Prompt) MoveWordBackward() bool {
	runes := []rune(p.Text)
	pos := p.Pos()
	if pos == 0 || len(runes) == 0 {
		return false
	}
	i := wordStartBefore(runes, pos)
	if i == pos {
		return false
	}
	p.Cursor = i
	return true
}

// MoveWordForward moves the cursor one word forward.
func (p *Prompt) MoveWordForward() bool {
	runes := []rune(p.Text)
	pos := p.Pos()
	if pos >= len(runes) {
		return false
	}
	i := pos
	for i < len(runes) && !unicode.IsSpace(runes[i]) {
		i++
	}
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	if i == pos {
		return false
	}
	p.Cursor = i
	return true
}

// MoveRuneBackward moves the cursor one rune backward.
func (p *Prompt) MoveRuneBackward() bool {
	if p.Pos() == 0 {
		return false
	}
	p.Cursor = p.Pos() - 1
	return true
}

// MoveRuneForward moves the cursor one rune forward.
func (p *Prompt) MoveRuneForward() bool {
	pos := p.Pos()
	if pos >= len([]rune(p.Text)) {
		return false
	}
	p.Cursor = pos + 1
	return true
}

func wordStartBefore(runes []rune, pos int) int {
	i := pos
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	return i
}
