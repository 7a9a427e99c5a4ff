package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atomicstack/cmdpalette/internal/catalog"
	"github.com/atomicstack/cmdpalette/internal/logging/events"
)

const tmuxSessionFormat = "#{session_name}\t#{session_windows} windows#{?session_attached, (attached),}"

func tmuxArgs(socket string, extra ...string) []string {
	args := make([]string, 0, len(extra)+2)
	if trimmed := strings.TrimSpace(socket); trimmed != "" {
		args = append(args, "-S", trimmed)
	}
	args = append(args, extra...)
	return args
}

func tmuxEnv(socket string) []string {
	if dir := socketDir(socket); dir != "" {
		return []string{"TMUX_TMPDIR=" + dir}
	}
	return nil
}

func socketDir(socket string) string {
	trimmed := strings.TrimSpace(socket)
	if trimmed == "" {
		return ""
	}
	return filepath.Dir(trimmed)
}

func (o Options) tmux(ctx context.Context, extra ...string) ([]byte, error) {
	return o.Exec(ctx, "tmux", tmuxArgs(o.TmuxSocket, extra...), tmuxEnv(o.TmuxSocket))
}

// TmuxSessionsAction is a top-level action whose children are the running
// tmux sessions; selecting one switches the client to it.
func TmuxSessionsAction(opts Options) *catalog.Action {
	opts = opts.withDefaults()
	const id = "tmux"
	return &catalog.Action{
		ID:       id,
		Title:    "tmux sessions",
		Section:  "tmux",
		Children: []catalog.Entry{opts.tmuxSessionsLoader(id)},
	}
}

func (o Options) tmuxSessionsLoader(parentID string) catalog.Loader {
	return func(ctx context.Context) ([]*catalog.Action, error) {
		output, err := o.tmux(ctx, "list-sessions", "-F", tmuxSessionFormat)
		if err != nil {
			return nil, fmt.Errorf("tmux list-sessions failed: %w (output: %s)", err, strings.TrimSpace(string(output)))
		}
		var actions []*catalog.Action
		for _, line := range splitLines(string(output)) {
			name, detail, _ := strings.Cut(line, "\t")
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			title := name
			if detail = strings.TrimSpace(detail); detail != "" {
				title = name + ": " + detail
			}
			actions = append(actions, &catalog.Action{
				ID:      parentID + "/" + name,
				Title:   title,
				Parent:  parentID,
				Handler: o.tmuxSwitchHandler(name),
			})
		}
		return actions, nil
	}
}

func (o Options) tmuxSwitchHandler(target string) catalog.Handler {
	return func(ctx context.Context, _ *catalog.Action) (*catalog.HandlerOutcome, error) {
		if output, err := o.tmux(ctx, "switch-client", "-t", target); err != nil {
			return nil, fmt.Errorf("switch to %s: %w (output: %s)", target, err, strings.TrimSpace(string(output)))
		}
		events.Action.Success("switched to " + target)
		return nil, nil
	}
}
