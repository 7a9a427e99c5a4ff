// Package catalog holds the tree of palette actions, including subtrees that
// are only resolved when a user browses into them.
package catalog

import (
	"sync"

	"github.com/go-logr/logr"
)

// Catalog is a forest of actions. It may be supplied flat (top-level actions
// carrying a Parent) or nested (actions carrying Children), or as a mix of
// both. Lazy loads mutate it in place; Replace swaps the whole structure.
type Catalog struct {
	mu         sync.RWMutex
	top        []Entry
	idx        index
	generation uint64
	seq        uint64
	log        logr.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger routes load diagnostics to log.
func WithLogger(log logr.Logger) Option {
	return func(c *Catalog) { c.log = log }
}

type index struct {
	byID  map[string]*Action
	flat  map[string][]*Action
	order []*Action
}

// New validates entries and returns a catalog over them. Nested children
// without a Parent are assigned their container's id.
func New(entries []Entry, opts ...Option) (*Catalog, error) {
	c := &Catalog{log: logr.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	idx, problems := buildIndex(entries)
	if len(problems) > 0 {
		return nil, &IntegrityError{Problems: problems}
	}
	c.top = append([]Entry(nil), entries...)
	c.idx = idx
	return c, nil
}

// Validate reports integrity problems in entries without building a catalog.
func Validate(entries []Entry) error {
	if _, problems := buildIndex(entries); len(problems) > 0 {
		return &IntegrityError{Problems: problems}
	}
	return nil
}

// Replace swaps in a new structure. Loads triggered against the previous
// structure become stale.
func (c *Catalog) Replace(entries []Entry) error {
	idx, problems := buildIndex(entries)
	if len(problems) > 0 {
		return &IntegrityError{Problems: problems}
	}
	c.mu.Lock()
	c.top = append([]Entry(nil), entries...)
	c.idx = idx
	c.generation++
	gen := c.generation
	c.mu.Unlock()
	c.log.V(1).Info("catalog replaced", "generation", gen, "actions", len(idx.order))
	return nil
}

// Generation increases every time the structure is replaced.
func (c *Catalog) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Len returns the number of resolved actions.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.idx.order)
}

// Find looks up a resolved action by id.
func (c *Catalog) Find(id string) (*Action, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.idx.byID[id]
	return a, ok
}

// HasChildren reports whether browsing into id would show anything, counting
// unresolved loaders and flat children.
func (c *Catalog) HasChildren(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.idx.byID[id]
	if !ok {
		return false
	}
	return len(a.Children) > 0 || len(c.idx.flat[id]) > 0
}

// ChildrenOf returns the candidate entries under rootID. For a known root this
// is its nested children followed by flat actions naming it as Parent. With
// an empty rootID it is the top-level entries followed by every resolved
// nested action, so a search can span the whole tree. Unknown roots yield nil.
func (c *Catalog) ChildrenOf(rootID string) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if rootID == "" {
		out := make([]Entry, 0, len(c.idx.order))
		out = append(out, c.top...)
		for _, e := range c.top {
			if a, ok := e.(*Action); ok && a != nil {
				out = appendDescendants(out, a)
			}
		}
		return out
	}
	a, ok := c.idx.byID[rootID]
	if !ok {
		return nil
	}
	flat := c.idx.flat[rootID]
	out := make([]Entry, 0, len(a.Children)+len(flat))
	out = append(out, a.Children...)
	for _, f := range flat {
		out = append(out, f)
	}
	return out
}

func appendDescendants(out []Entry, a *Action) []Entry {
	for _, e := range a.Children {
		child, ok := e.(*Action)
		if !ok || child == nil {
			continue
		}
		out = append(out, child)
		out = appendDescendants(out, child)
	}
	return out
}

// Ancestors returns the ids above id, outermost first.
func (c *Catalog) Ancestors(id string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var chain []string
	seen := map[string]bool{id: true}
	a, ok := c.idx.byID[id]
	for ok && a.Parent != "" && !seen[a.Parent] {
		seen[a.Parent] = true
		chain = append(chain, a.Parent)
		a, ok = c.idx.byID[a.Parent]
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Actions returns every resolved action in pre-order.
func (c *Catalog) Actions() []*Action {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Action(nil), c.idx.order...)
}

func buildIndex(top []Entry) (index, []Problem) {
	idx := index{
		byID: make(map[string]*Action),
		flat: make(map[string][]*Action),
	}
	var problems []Problem
	var walk func(entries []Entry, container string)
	walk = func(entries []Entry, container string) {
		for _, e := range entries {
			a, ok := e.(*Action)
			if !ok || a == nil {
				continue
			}
			if a.ID == "" {
				problems = append(problems, Problem{Kind: EmptyID, Container: container})
				continue
			}
			if _, dup := idx.byID[a.ID]; dup {
				problems = append(problems, Problem{Kind: DuplicateID, ID: a.ID})
				continue
			}
			if container != "" {
				switch a.Parent {
				case "":
					a.Parent = container
				case container:
				default:
					problems = append(problems, Problem{Kind: ParentMismatch, ID: a.ID, Parent: a.Parent, Container: container})
				}
			}
			idx.byID[a.ID] = a
			idx.order = append(idx.order, a)
			walk(a.Children, a.ID)
		}
	}
	walk(top, "")

	for _, e := range top {
		a, ok := e.(*Action)
		if !ok || a == nil || a.ID == "" || a.Parent == "" {
			continue
		}
		if idx.byID[a.ID] != a {
			continue
		}
		if _, ok := idx.byID[a.Parent]; !ok {
			problems = append(problems, Problem{Kind: MissingParent, ID: a.ID, Parent: a.Parent})
			continue
		}
		idx.flat[a.Parent] = append(idx.flat[a.Parent], a)
	}

	for _, a := range idx.order {
		if onCycle(idx.byID, a) {
			problems = append(problems, Problem{Kind: ParentCycle, ID: a.ID})
		}
	}
	return idx, problems
}

func onCycle(byID map[string]*Action, a *Action) bool {
	seen := make(map[string]bool)
	for p := a.Parent; p != ""; {
		if p == a.ID {
			return true
		}
		if seen[p] {
			return false
		}
		seen[p] = true
		parent, ok := byID[p]
		if !ok {
			return false
		}
		p = parent.Parent
	}
	return false
}
