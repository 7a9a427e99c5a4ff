// Package keymap turns the configured hotkey strings into Bubble Tea key
// bindings for the six palette intents.
package keymap

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Intent names a palette command a key can trigger.
type Intent string

const (
	Open   Intent = "open"
	Close  Intent = "close"
	Select Intent = "select"
	Up     Intent = "up"
	Down   Intent = "down"
	Back   Intent = "back"
)

// Hotkeys holds the comma-separated combos per intent. An empty string
// disables the intent.
type Hotkeys struct {
	Open   string
	Close  string
	Select string
	Up     string
	Down   string
	Back   string
}

// DefaultHotkeys returns the stock bindings.
func DefaultHotkeys() Hotkeys {
	return Hotkeys{
		Open:   "ctrl+k",
		Close:  "esc",
		Select: "enter",
		Up:     "up,shift+tab",
		Down:   "down,tab",
		Back:   "backspace",
	}
}

// KeyMap is the resolved set of bindings.
type KeyMap struct {
	Open   key.Binding
	Close  key.Binding
	Select key.Binding
	Up     key.Binding
	Down   key.Binding
	Back   key.Binding
}

// New parses hotkeys. Combos bound to more than one intent are rejected.
func New(h Hotkeys) (KeyMap, error) {
	var km KeyMap
	specs := []struct {
		intent Intent
		raw    string
		help   string
		dst    *key.Binding
	}{
		{Open, h.Open, "open", &km.Open},
		{Close, h.Close, "close", &km.Close},
		{Select, h.Select, "select", &km.Select},
		{Up, h.Up, "up", &km.Up},
		{Down, h.Down, "down", &km.Down},
		{Back, h.Back, "back", &km.Back},
	}

	owners := make(map[string]Intent)
	var conflicts []string
	for _, spec := range specs {
		combos, err := ParseCombos(spec.raw)
		if err != nil {
			return KeyMap{}, fmt.Errorf("%s hotkey: %w", spec.intent, err)
		}
		if len(combos) == 0 {
			*spec.dst = key.NewBinding(key.WithDisabled())
			continue
		}
		for _, combo := range combos {
			if prev, ok := owners[combo]; ok && prev != spec.intent {
				conflicts = append(conflicts, fmt.Sprintf("%q bound to %s and %s", combo, prev, spec.intent))
				continue
			}
			owners[combo] = spec.intent
		}
		*spec.dst = key.NewBinding(key.WithKeys(combos...), key.WithHelp(display(combos[0]), spec.help))
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return KeyMap{}, fmt.Errorf("conflicting hotkeys: %s", strings.Join(conflicts, "; "))
	}
	return km, nil
}

// Match returns the intent msg triggers, if any.
func (k KeyMap) Match(msg tea.KeyMsg) (Intent, bool) {
	switch {
	case key.Matches(msg, k.Close):
		return Close, true
	case key.Matches(msg, k.Select):
		return Select, true
	case key.Matches(msg, k.Up):
		return Up, true
	case key.Matches(msg, k.Down):
		return Down, true
	case key.Matches(msg, k.Back):
		return Back, true
	case key.Matches(msg, k.Open):
		return Open, true
	}
	return "", false
}

// ShortHelp lists the enabled bindings for the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	var out []key.Binding
	for _, b := range []key.Binding{k.Up, k.Down, k.Select, k.Back, k.Close} {
		if b.Enabled() {
			out = append(out, b)
		}
	}
	return out
}

// ParseCombos splits a comma-separated hotkey list and normalises each combo.
func ParseCombos(csv string) ([]string, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, raw := range strings.Split(csv, ",") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		combo, err := Normalize(raw)
		if err != nil {
			return nil, err
		}
		if !seen[combo] {
			seen[combo] = true
			out = append(out, combo)
		}
	}
	return out, nil
}

var keyAliases = map[string]string{
	"escape":    "esc",
	"return":    "enter",
	"space":     " ",
	"arrowup":   "up",
	"arrowdown": "down",
	"del":       "delete",
	"bs":        "backspace",
}

// Normalize rewrites a combo into the form Bubble Tea reports for the key,
// e.g. "Control+K" becomes "ctrl+k" and "shift+k" becomes "K".
func Normalize(raw string) (string, error) {
	if raw == " " {
		return " ", nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty key combo")
	}
	if len([]rune(raw)) == 1 {
		return raw, nil
	}

	var keyPart string
	var alt, ctrl, shift, cmd bool
	for _, part := range strings.Split(raw, "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch lower := strings.ToLower(part); lower {
		case "ctrl", "control":
			ctrl = true
		case "alt", "option", "opt":
			alt = true
		case "shift":
			shift = true
		case "cmd", "command", "meta", "super":
			cmd = true
		default:
			if keyPart != "" {
				return "", fmt.Errorf("combo %q names more than one key", raw)
			}
			if alias, ok := keyAliases[lower]; ok {
				keyPart = alias
			} else if len([]rune(part)) == 1 {
				keyPart = part
			} else {
				keyPart = lower
			}
		}
	}
	if keyPart == "" {
		return "", fmt.Errorf("combo %q is missing a key", raw)
	}

	if r := []rune(keyPart); len(r) == 1 && unicode.IsLetter(r[0]) {
		if shift && !ctrl {
			keyPart = string(unicode.ToUpper(r[0]))
			shift = false
		} else {
			keyPart = string(unicode.ToLower(r[0]))
		}
	}

	var b strings.Builder
	if cmd {
		b.WriteString("cmd+")
	}
	if alt {
		b.WriteString("alt+")
	}
	if ctrl {
		b.WriteString("ctrl+")
	}
	if shift {
		b.WriteString("shift+")
	}
	b.WriteString(keyPart)
	return b.String(), nil
}

func display(combo string) string {
	switch combo {
	case " ":
		return "space"
	case "up":
		return "↑"
	case "down":
		return "↓"
	}
	return combo
}
