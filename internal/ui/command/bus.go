package command

import (
	"context"

	"github.com/atomicstack/cmdpalette/internal/catalog"
	"github.com/atomicstack/cmdpalette/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

// LoadResult carries a finished lazy load back to the update loop.
type LoadResult struct {
	Load    *catalog.Load
	Actions []*catalog.Action
	Err     error
}

// Bus runs lazy loaders off the update loop.
type Bus struct {
	ctx context.Context
}

// New initialises a bus whose loaders run under ctx.
func New(ctx context.Context) *Bus {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Bus{ctx: ctx}
}

// Load wraps a started load into a Bubble Tea command while emitting trace logs.
func (b *Bus) Load(l *catalog.Load) tea.Cmd {
	if l == nil {
		return nil
	}
	events.Load.Queue(l.RootID, l.Index)
	return func() tea.Msg {
		actions, err := l.Run(b.ctx)
		events.Load.Result(l.RootID, l.Index, len(actions), err)
		return LoadResult{Load: l, Actions: actions, Err: err}
	}
}

// LoadAll batches Load over loads.
func (b *Bus) LoadAll(loads []*catalog.Load) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(loads))
	for _, l := range loads {
		if cmd := b.Load(l); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	}
	return tea.Batch(cmds...)
}
