package source

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/atomicstack/cmdpalette/internal/catalog"
	"github.com/atomicstack/cmdpalette/internal/logging/events"
)

// TmuxSessionsSource is the children_source value listing tmux sessions.
const TmuxSessionsSource = "tmux-sessions"

// Exec runs name with args and extra environment, returning combined output.
type Exec func(ctx context.Context, name string, args []string, env []string) ([]byte, error)

// Options supplies the side-effecting pieces handlers and loaders use.
type Options struct {
	Shell      string
	Exec       Exec
	Clipboard  func(string) error
	TmuxSocket string
}

func (o Options) withDefaults() Options {
	if o.Shell == "" {
		o.Shell = "sh"
	}
	if o.Exec == nil {
		o.Exec = execCommand
	}
	if o.Clipboard == nil {
		o.Clipboard = writeClipboard
	}
	return o
}

func execCommand(ctx context.Context, name string, args []string, env []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	return cmd.CombinedOutput()
}

// Build converts specs into catalog entries.
func Build(f File, opts Options) ([]catalog.Entry, error) {
	opts = opts.withDefaults()
	entries := make([]catalog.Entry, 0, len(f.Actions))
	for _, spec := range f.Actions {
		a, err := opts.action(spec)
		if err != nil {
			return nil, err
		}
		entries = append(entries, a)
	}
	return entries, nil
}

// Load reads the catalog file at path and builds its entries.
func Load(path string, opts Options) ([]catalog.Entry, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	entries, err := Build(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

func (o Options) action(spec ActionSpec) (*catalog.Action, error) {
	if spec.Run != "" && spec.Copy != "" {
		return nil, fmt.Errorf("action %q sets both run and copy", spec.ID)
	}
	title := spec.Title
	if title == "" {
		title = spec.ID
	}
	a := &catalog.Action{
		ID:       spec.ID,
		Title:    title,
		Section:  spec.Section,
		Parent:   spec.Parent,
		Hotkey:   spec.Hotkey,
		Keywords: spec.Keywords,
	}
	switch {
	case spec.Run != "":
		a.Handler = o.runHandler(spec.Run, spec.KeepOpen)
	case spec.Copy != "":
		a.Handler = o.copyHandler(spec.Copy, spec.KeepOpen)
	case spec.KeepOpen:
		a.Handler = func(context.Context, *catalog.Action) (*catalog.HandlerOutcome, error) {
			return catalog.KeepOpen(), nil
		}
	}
	for _, child := range spec.Children {
		c, err := o.action(child)
		if err != nil {
			return nil, err
		}
		a.Children = append(a.Children, c)
	}
	if spec.ChildrenCommand != "" {
		a.Children = append(a.Children, o.commandLoader(spec.ID, spec.ChildrenCommand, spec.ChildrenRun))
	}
	switch spec.ChildrenSource {
	case "":
	case TmuxSessionsSource:
		a.Children = append(a.Children, o.tmuxSessionsLoader(spec.ID))
	default:
		return nil, fmt.Errorf("action %q: unknown children_source %q", spec.ID, spec.ChildrenSource)
	}
	return a, nil
}

func actionEnv(a *catalog.Action) []string {
	if a == nil {
		return nil
	}
	return []string{
		"CMDPALETTE_ACTION_ID=" + a.ID,
		"CMDPALETTE_ACTION_TITLE=" + a.Title,
	}
}

func (o Options) runHandler(command string, keepOpen bool) catalog.Handler {
	return func(ctx context.Context, a *catalog.Action) (*catalog.HandlerOutcome, error) {
		output, err := o.Exec(ctx, o.Shell, []string{"-c", command}, actionEnv(a))
		if err != nil {
			return nil, fmt.Errorf("%s failed: %w (output: %s)", command, err, strings.TrimSpace(string(output)))
		}
		events.Action.Success(command)
		return &catalog.HandlerOutcome{KeepOpen: keepOpen}, nil
	}
}

// commandLoader runs command when its parent is browsed. Each non-empty
// output line becomes a child: "id<TAB>title", or a bare title used as both.
// childRun, if set, is the children's shell handler with {} replaced by the
// quoted line id.
func (o Options) commandLoader(parentID, command, childRun string) catalog.Loader {
	return func(ctx context.Context) ([]*catalog.Action, error) {
		output, err := o.Exec(ctx, o.Shell, []string{"-c", command}, []string{"CMDPALETTE_PARENT_ID=" + parentID})
		if err != nil {
			return nil, fmt.Errorf("%s failed: %w (output: %s)", command, err, strings.TrimSpace(string(output)))
		}
		var actions []*catalog.Action
		for _, line := range splitLines(string(output)) {
			if strings.TrimSpace(line) == "" {
				continue
			}
			id, title := line, line
			if before, after, ok := strings.Cut(line, "\t"); ok {
				id, title = strings.TrimSpace(before), strings.TrimSpace(after)
			}
			id = strings.TrimSpace(id)
			if title == "" {
				title = id
			}
			a := &catalog.Action{ID: parentID + "/" + id, Title: title, Parent: parentID}
			if childRun != "" {
				a.Handler = o.runHandler(strings.ReplaceAll(childRun, "{}", shellQuote(id)), false)
			}
			actions = append(actions, a)
		}
		return actions, nil
	}
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
