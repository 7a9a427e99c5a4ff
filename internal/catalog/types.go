package catalog

import "context"

// Entry is one element of a children list: an *Action, a Loader that has not
// run yet, or a *Pending marker for a load in flight.
type Entry interface {
	isEntry()
}

// Action is a named, selectable command. Parent links an action listed at
// the top level to its container; nested children get it filled in when the
// catalog is indexed.
type Action struct {
	ID       string
	Title    string
	Section  string
	Parent   string
	Hotkey   string
	Keywords string
	Children []Entry
	Handler  Handler
}

func (*Action) isEntry() {}

// Loader produces the actions that replace it in its parent's children.
type Loader func(ctx context.Context) ([]*Action, error)

func (Loader) isEntry() {}

// Pending stands in for a Loader whose load has been started. Markers are
// compared by identity.
type Pending struct {
	seq uint64
}

func (*Pending) isEntry() {}

// HandlerOutcome tells the palette what to do after a handler ran. A nil
// outcome is the same as KeepOpen false.
type HandlerOutcome struct {
	KeepOpen bool
}

// Handler runs when an action is selected.
type Handler func(ctx context.Context, action *Action) (*HandlerOutcome, error)

// KeepOpen is a convenience outcome for handlers that leave the palette up.
func KeepOpen() *HandlerOutcome { return &HandlerOutcome{KeepOpen: true} }
