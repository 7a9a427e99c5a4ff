package dispatcher

import (
	"github.com/atomicstack/cmdpalette/internal/backend"
	"github.com/atomicstack/cmdpalette/internal/catalog"
	"github.com/atomicstack/cmdpalette/internal/logging/events"
)

// Target receives replacement catalogs.
type Target interface {
	ReplaceCatalog(entries []catalog.Entry) error
}

type Result struct {
	CatalogReplaced bool
	Err             error
}

type Dispatcher struct {
	target Target
}

func New(t Target) *Dispatcher {
	return &Dispatcher{target: t}
}

func (d *Dispatcher) Handle(evt backend.Event) Result {
	if evt.Err != nil {
		events.Catalog.Reload(evt.Path, 0, evt.Err)
		return Result{Err: evt.Err}
	}
	if d.target == nil {
		return Result{}
	}
	if err := d.target.ReplaceCatalog(evt.Entries); err != nil {
		events.Catalog.Reload(evt.Path, len(evt.Entries), err)
		return Result{Err: err}
	}
	events.Catalog.Reload(evt.Path, len(evt.Entries), nil)
	return Result{CatalogReplaced: true}
}
