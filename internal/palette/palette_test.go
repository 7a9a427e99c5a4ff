package palette

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/atomicstack/cmdpalette/internal/catalog"
)

type recorder struct {
	selects []SelectEvent
	changes []ChangeEvent
}

func (r *recorder) events() Events {
	return Events{
		OnSelect: func(ev SelectEvent) { r.selects = append(r.selects, ev) },
		OnChange: func(ev ChangeEvent) { r.changes = append(r.changes, ev) },
	}
}

func newController(t *testing.T, cfg Config, entries ...catalog.Entry) (*Controller, *recorder) {
	t.Helper()
	cat, err := catalog.New(entries)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	rec := &recorder{}
	return New(cat, cfg, WithEvents(rec.events())), rec
}

func treeEntries(handlerCalls *int) []catalog.Entry {
	leaf := func(ctx context.Context, a *catalog.Action) (*catalog.HandlerOutcome, error) {
		*handlerCalls++
		return nil, nil
	}
	return []catalog.Entry{
		&catalog.Action{ID: "files", Title: "Files", Children: []catalog.Entry{
			&catalog.Action{ID: "open", Title: "Open", Handler: leaf},
			&catalog.Action{ID: "recent", Title: "Recent", Children: []catalog.Entry{
				&catalog.Action{ID: "r1", Title: "notes.txt", Handler: leaf},
			}},
		}},
		&catalog.Action{ID: "quit", Title: "Quit", Handler: leaf},
		&catalog.Action{ID: "stay", Title: "Stay", Handler: func(context.Context, *catalog.Action) (*catalog.HandlerOutcome, error) {
			return catalog.KeepOpen(), nil
		}},
	}
}

func TestOpenSelectsFirstEntry(t *testing.T) {
	var calls int
	c, _ := newController(t, Config{}, treeEntries(&calls)...)
	c.Open(OpenOptions{})
	st := c.State()
	if !st.Open || st.SelectedID != "files" {
		t.Fatalf("unexpected state %#v", st)
	}
	c.Open(OpenOptions{Root: "files", Search: "op"})
	if got := c.State(); got.RootID != "files" || got.Query != "op" || got.SelectedID != "open" {
		t.Fatalf("unexpected state after open with options %#v", got)
	}
}

func TestNavigationWrapsAround(t *testing.T) {
	var calls int
	c, _ := newController(t, Config{}, treeEntries(&calls)...)
	c.Open(OpenOptions{})
	if !c.NavigateUp() || c.State().SelectedID != "stay" {
		t.Fatalf("expected up from first to wrap to last, got %q", c.State().SelectedID)
	}
	if !c.NavigateDown() || c.State().SelectedID != "files" {
		t.Fatalf("expected down from last to wrap to first, got %q", c.State().SelectedID)
	}
	c.NavigateDown()
	if c.State().SelectedID != "quit" || c.SelectedIndex() != 1 {
		t.Fatalf("expected quit at 1, got %q", c.State().SelectedID)
	}
}

func TestNavigationOnEmptySetIsNoOp(t *testing.T) {
	var calls int
	c, _ := newController(t, Config{}, treeEntries(&calls)...)
	c.Open(OpenOptions{})
	c.SetQuery("zzzz")
	if c.State().SelectedID != "" {
		t.Fatalf("expected selection cleared on empty set")
	}
	if c.NavigateDown() || c.NavigateUp() {
		t.Fatalf("expected navigation to report no-op")
	}
	if c.State().SelectedID != "" {
		t.Fatalf("expected selection to stay empty")
	}
}

func TestSetQueryEmitsChangeAndResetsSelection(t *testing.T) {
	var calls int
	c, rec := newController(t, Config{}, treeEntries(&calls)...)
	c.Open(OpenOptions{})
	c.NavigateDown()
	c.SetQuery("notes")
	if len(rec.changes) != 1 {
		t.Fatalf("expected one change event, got %d", len(rec.changes))
	}
	ev := rec.changes[0]
	if ev.Query != "notes" || len(ev.Actions) != 1 || ev.Actions[0].ID != "r1" {
		t.Fatalf("unexpected change event %#v", ev)
	}
	if c.State().SelectedID != "r1" {
		t.Fatalf("expected first match selected, got %q", c.State().SelectedID)
	}
}

func TestSelectEntersActionWithChildren(t *testing.T) {
	var calls int
	c, rec := newController(t, Config{}, treeEntries(&calls)...)
	c.Open(OpenOptions{Search: "fil"})
	res, err := c.SelectCurrent(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Entered || res.Closed {
		t.Fatalf("unexpected result %#v", res)
	}
	st := c.State()
	if !st.Open || st.RootID != "files" || st.Query != "" || st.SelectedID != "open" {
		t.Fatalf("unexpected state %#v", st)
	}
	if len(rec.selects) != 1 || rec.selects[0].Query != "fil" || rec.selects[0].Action.ID != "files" {
		t.Fatalf("unexpected select events %#v", rec.selects)
	}
}

func TestSelectLeafRunsHandlerAndCloses(t *testing.T) {
	var calls int
	c, _ := newController(t, Config{}, treeEntries(&calls)...)
	c.Open(OpenOptions{})
	quit, _ := c.Catalog().Find("quit")
	res, err := c.Select(context.Background(), quit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Handled || !res.Closed {
		t.Fatalf("unexpected result %#v", res)
	}
	if calls != 1 {
		t.Fatalf("expected handler to run once, got %d", calls)
	}
	if c.State().Open {
		t.Fatalf("expected palette closed")
	}
}

func TestHandlerCloseKeepsRoot(t *testing.T) {
	var calls int
	c, _ := newController(t, Config{}, treeEntries(&calls)...)
	c.Open(OpenOptions{Root: "files"})
	res, err := c.SelectCurrent(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Closed || calls != 1 {
		t.Fatalf("expected handler to run and close, got %#v calls=%d", res, calls)
	}
	if st := c.State(); st.Open || st.RootID != "files" {
		t.Fatalf("expected closed palette to stay at root files, got %#v", st)
	}
}

func TestSelectKeepOpen(t *testing.T) {
	var calls int
	c, _ := newController(t, Config{}, treeEntries(&calls)...)
	c.Open(OpenOptions{})
	stay, _ := c.Catalog().Find("stay")
	res, err := c.Select(context.Background(), stay)
	if err != nil || res.Closed {
		t.Fatalf("expected palette to stay open, res=%#v err=%v", res, err)
	}
	if !c.State().Open {
		t.Fatalf("expected palette open")
	}
}

func TestSelectNilStillEmitsEvent(t *testing.T) {
	var calls int
	c, rec := newController(t, Config{}, treeEntries(&calls)...)
	c.Open(OpenOptions{})
	c.SetQuery("zzzz")
	res, err := c.SelectCurrent(context.Background())
	if err != nil || res != (SelectResult{}) {
		t.Fatalf("expected empty result, got %#v %v", res, err)
	}
	if len(rec.selects) != 1 || rec.selects[0].Action != nil || rec.selects[0].Query != "zzzz" {
		t.Fatalf("unexpected select events %#v", rec.selects)
	}
	if !c.State().Open {
		t.Fatalf("expected palette to stay open")
	}
}

func TestHandlerFailureKeepsPaletteOpen(t *testing.T) {
	boom := errors.New("boom")
	c, _ := newController(t, Config{}, &catalog.Action{ID: "bad", Title: "Bad", Handler: func(context.Context, *catalog.Action) (*catalog.HandlerOutcome, error) {
		return nil, boom
	}})
	c.Open(OpenOptions{})
	_, err := c.SelectCurrent(context.Background())
	var herr *HandlerError
	if !errors.As(err, &herr) || herr.ActionID != "bad" || !errors.Is(err, boom) {
		t.Fatalf("expected HandlerError wrapping boom, got %v", err)
	}
	if !c.State().Open {
		t.Fatalf("expected palette to stay open after failure")
	}
}

func TestGoBackIgnoredWithQuery(t *testing.T) {
	var calls int
	c, _ := newController(t, Config{}, treeEntries(&calls)...)
	c.Open(OpenOptions{Root: "recent"})
	c.SetQuery("n")
	if c.GoBack() {
		t.Fatalf("expected go back to be ignored")
	}
	if c.State().RootID != "recent" {
		t.Fatalf("expected root unchanged, got %q", c.State().RootID)
	}
	c.SetQuery("")
	if !c.GoBack() || c.State().RootID != "files" {
		t.Fatalf("expected to go back to files, got %q", c.State().RootID)
	}
	if !c.GoBack() || c.State().RootID != "" {
		t.Fatalf("expected to go back to top, got %q", c.State().RootID)
	}
	if !c.GoBack() || c.State().RootID != "" {
		t.Fatalf("expected go back at top to stay at top")
	}
}

func TestBreadcrumbsFromRoot(t *testing.T) {
	var calls int
	c, _ := newController(t, Config{}, treeEntries(&calls)...)
	c.Open(OpenOptions{Root: "recent"})
	if got := c.Breadcrumbs(); !reflect.DeepEqual(got, []string{"files", "recent"}) {
		t.Fatalf("expected [files recent], got %v", got)
	}
	c.SetParent("")
	if got := c.Breadcrumbs(); got != nil {
		t.Fatalf("expected no breadcrumbs at top, got %v", got)
	}
}

func TestBreadcrumbsFromSelection(t *testing.T) {
	var calls int
	c, _ := newController(t, Config{Breadcrumbs: BreadcrumbsFromSelection}, treeEntries(&calls)...)
	c.Open(OpenOptions{Search: "notes"})
	if got := c.Breadcrumbs(); !reflect.DeepEqual(got, []string{"files", "recent"}) {
		t.Fatalf("expected [files recent], got %v", got)
	}
}

func TestResolveRefreshesVisibleSet(t *testing.T) {
	cat, err := catalog.New([]catalog.Entry{&catalog.Action{ID: "remote", Title: "Remote", Children: []catalog.Entry{
		catalog.Loader(func(context.Context) ([]*catalog.Action, error) {
			return []*catalog.Action{{ID: "x", Title: "X"}}, nil
		}),
	}}})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	c := New(cat, Config{})
	c.Open(OpenOptions{Root: "remote"})
	if !c.Visible().Loading {
		t.Fatalf("expected loading")
	}
	loads := c.TakeLoads()
	if len(loads) != 1 {
		t.Fatalf("expected one load, got %d", len(loads))
	}
	if len(c.TakeLoads()) != 0 {
		t.Fatalf("expected loads to be drained")
	}
	actions, lerr := loads[0].Run(context.Background())
	if err := c.Resolve(loads[0], actions, lerr); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if c.Visible().Loading || c.State().SelectedID != "x" {
		t.Fatalf("expected resolved child selected, got %#v", c.State())
	}
}

func TestReplaceCatalogResetsMissingRoot(t *testing.T) {
	var calls int
	c, _ := newController(t, Config{}, treeEntries(&calls)...)
	c.Open(OpenOptions{Root: "recent"})
	if err := c.ReplaceCatalog([]catalog.Entry{&catalog.Action{ID: "new", Title: "New"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if st := c.State(); st.RootID != "" || st.SelectedID != "new" {
		t.Fatalf("unexpected state %#v", st)
	}
}

func TestToggleAndClose(t *testing.T) {
	var calls int
	c, _ := newController(t, Config{}, treeEntries(&calls)...)
	c.Toggle()
	if !c.State().Open {
		t.Fatalf("expected open")
	}
	c.SetQuery("q")
	c.Toggle()
	if st := c.State(); st.Open || st.Query != "q" {
		t.Fatalf("expected closed with query kept, got %#v", st)
	}
	c.Toggle()
	if st := c.State(); !st.Open || st.Query != "" || st.RootID != "" {
		t.Fatalf("expected toggle to reopen at the top level, got %#v", st)
	}
}

func TestCloseKeepsContext(t *testing.T) {
	var calls int
	c, _ := newController(t, Config{}, treeEntries(&calls)...)
	c.Open(OpenOptions{Root: "files"})
	c.SetQuery("op")
	before := c.State()
	if before.SelectedID != "open" {
		t.Fatalf("expected a selection before closing, got %#v", before)
	}
	c.Close()
	after := c.State()
	if after.Open {
		t.Fatalf("expected closed")
	}
	if after.RootID != before.RootID || after.Query != before.Query || after.SelectedID != before.SelectedID {
		t.Fatalf("expected context kept across close: before %#v after %#v", before, after)
	}
}

func TestParseBreadcrumbMode(t *testing.T) {
	if m, err := ParseBreadcrumbMode("selection"); err != nil || m != BreadcrumbsFromSelection {
		t.Fatalf("unexpected %v %v", m, err)
	}
	if m, err := ParseBreadcrumbMode(""); err != nil || m != BreadcrumbsFromRoot {
		t.Fatalf("unexpected %v %v", m, err)
	}
	if _, err := ParseBreadcrumbMode("nope"); err == nil {
		t.Fatalf("expected error")
	}
}
