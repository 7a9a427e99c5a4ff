package catalog

import (
	"context"
	"errors"
)

// Load is a lazy load that has been started: its loader was swapped for a
// Pending marker. Run it, then hand the outcome to Resolve.
type Load struct {
	RootID     string
	Index      int
	marker     *Pending
	loader     Loader
	generation uint64
}

// Run invokes the loader. It does not touch the catalog and is safe to call
// from any goroutine.
func (l *Load) Run(ctx context.Context) ([]*Action, error) {
	if l.loader == nil {
		return nil, errors.New("catalog: nil loader")
	}
	return l.loader(ctx)
}

// Marker returns the Pending entry standing in for this load.
func (l *Load) Marker() *Pending { return l.marker }

// Generation returns the catalog generation the load was started in.
func (l *Load) Generation() uint64 { return l.generation }

// TriggerLoad starts the load for the entry at index under rootID (the top
// level when rootID is empty). The entry becomes a Pending marker before
// TriggerLoad returns, so a second call for the same slot reports false until
// the load is resolved or the catalog replaced.
func (c *Catalog) TriggerLoad(rootID string, index int) (*Load, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := c.listFor(rootID)
	if list == nil || index < 0 || index >= len(*list) {
		return nil, false
	}
	loader, ok := (*list)[index].(Loader)
	if !ok {
		return nil, false
	}
	c.seq++
	marker := &Pending{seq: c.seq}
	(*list)[index] = marker
	c.log.V(1).Info("load triggered", "root", rootID, "index", index, "generation", c.generation)
	return &Load{
		RootID:     rootID,
		Index:      index,
		marker:     marker,
		loader:     loader,
		generation: c.generation,
	}, true
}

// Resolve applies the outcome of a load. A loader error leaves the marker in
// place and is returned as a *LoaderError. If the catalog was replaced since
// the load was triggered nothing is spliced and ErrStaleLoad is returned.
// Otherwise the marker is replaced by actions, in order, at its current
// position; actions colliding with existing ids are rejected with an
// *IntegrityError and the marker stays.
func (c *Catalog) Resolve(l *Load, actions []*Action, loadErr error) error {
	if l == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if l.generation != c.generation {
		c.log.V(1).Info("dropping stale load", "root", l.RootID, "index", l.Index)
		return ErrStaleLoad
	}
	if loadErr != nil {
		c.log.Error(loadErr, "load failed", "root", l.RootID, "index", l.Index)
		return &LoaderError{RootID: l.RootID, Index: l.Index, Err: loadErr}
	}
	list := c.listFor(l.RootID)
	if list == nil {
		return ErrStaleLoad
	}
	pos := -1
	for i, e := range *list {
		if p, ok := e.(*Pending); ok && p == l.marker {
			pos = i
			break
		}
	}
	if pos < 0 {
		return ErrStaleLoad
	}

	resolved := make([]Entry, 0, len(actions))
	for _, a := range actions {
		if a == nil {
			continue
		}
		resolved = append(resolved, a)
	}
	old := *list
	spliced := make([]Entry, 0, len(old)-1+len(resolved))
	spliced = append(spliced, old[:pos]...)
	spliced = append(spliced, resolved...)
	spliced = append(spliced, old[pos+1:]...)
	*list = spliced

	idx, problems := buildIndex(c.top)
	if len(problems) > 0 {
		*list = old
		return &IntegrityError{Problems: problems}
	}
	c.idx = idx
	c.log.V(1).Info("load resolved", "root", l.RootID, "index", pos, "actions", len(resolved))
	return nil
}

// Load triggers, runs and resolves the load at index under rootID
// synchronously. It is a no-op when the entry is not an unstarted loader.
func (c *Catalog) Load(ctx context.Context, rootID string, index int) error {
	l, ok := c.TriggerLoad(rootID, index)
	if !ok {
		return nil
	}
	actions, err := l.Run(ctx)
	return c.Resolve(l, actions, err)
}

func (c *Catalog) listFor(rootID string) *[]Entry {
	if rootID == "" {
		return &c.top
	}
	a, ok := c.idx.byID[rootID]
	if !ok {
		return nil
	}
	return &a.Children
}
