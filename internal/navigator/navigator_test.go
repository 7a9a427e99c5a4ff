package navigator

import (
	"context"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/atomicstack/cmdpalette/internal/catalog"
)

func titles(r Result) []string {
	out := make([]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		out = append(out, m.Action.ID)
	}
	return out
}

func newCatalog(t *testing.T, entries ...catalog.Entry) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(entries)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

func alphaCatalog(t *testing.T) *catalog.Catalog {
	return newCatalog(t,
		&catalog.Action{ID: "A", Title: "Alpha", Children: []catalog.Entry{
			&catalog.Action{ID: "A1", Title: "One", Parent: "A"},
		}},
	)
}

func TestGlobalSearchAtTopLevel(t *testing.T) {
	res := Visible(alphaCatalog(t), Options{Query: "One"})
	if got := titles(res); !reflect.DeepEqual(got, []string{"A1"}) {
		t.Fatalf("expected [A1], got %v", got)
	}
	if len(res.Matches[0].Indices) != 3 {
		t.Fatalf("expected highlight indices, got %v", res.Matches[0].Indices)
	}
}

func TestTopLevelEmptyQueryShowsRootsOnly(t *testing.T) {
	res := Visible(alphaCatalog(t), Options{})
	if got := titles(res); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("expected [A], got %v", got)
	}
}

func TestBrowsingIntoRootShowsChildren(t *testing.T) {
	res := Visible(alphaCatalog(t), Options{RootID: "A"})
	if got := titles(res); !reflect.DeepEqual(got, []string{"A1"}) {
		t.Fatalf("expected [A1], got %v", got)
	}
	res = Visible(alphaCatalog(t), Options{RootID: "A", Query: "alp"})
	if len(res.Matches) != 0 {
		t.Fatalf("expected search below a root to stay below it, got %v", titles(res))
	}
}

func TestFlatCatalogBrowsing(t *testing.T) {
	c := newCatalog(t,
		&catalog.Action{ID: "theme", Title: "Change theme"},
		&catalog.Action{ID: "light", Title: "Light", Parent: "theme"},
		&catalog.Action{ID: "dark", Title: "Dark", Parent: "theme"},
	)
	if got := titles(Visible(c, Options{})); !reflect.DeepEqual(got, []string{"theme"}) {
		t.Fatalf("expected [theme], got %v", got)
	}
	if got := titles(Visible(c, Options{RootID: "theme"})); !reflect.DeepEqual(got, []string{"light", "dark"}) {
		t.Fatalf("expected [light dark], got %v", got)
	}
	if got := titles(Visible(c, Options{Query: "dark"})); !reflect.DeepEqual(got, []string{"dark"}) {
		t.Fatalf("expected global search to reach flat child, got %v", got)
	}
}

func TestSectionsGroupedByFirstAppearance(t *testing.T) {
	c := newCatalog(t,
		&catalog.Action{ID: "x", Title: "X", Section: "Files"},
		&catalog.Action{ID: "y", Title: "Y", Section: "Edit"},
		&catalog.Action{ID: "z", Title: "Z", Section: "Files"},
	)
	res := Visible(c, Options{})
	if got := titles(res); !reflect.DeepEqual(got, []string{"x", "z", "y"}) {
		t.Fatalf("expected [x z y], got %v", got)
	}
	want := []Span{{Name: "Files", Start: 0, End: 2}, {Name: "Edit", Start: 2, End: 3}}
	if !reflect.DeepEqual(res.Sections, want) {
		t.Fatalf("expected sections %v, got %v", want, res.Sections)
	}
}

func TestQuerySortsByRankThenTitle(t *testing.T) {
	c := newCatalog(t,
		&catalog.Action{ID: "b", Title: "beta"},
		&catalog.Action{ID: "a", Title: "Beta"},
		&catalog.Action{ID: "far", Title: "b_e_t_a_long"},
	)
	res := Visible(c, Options{Query: "bet"})
	got := titles(res)
	if want := []string{"a", "b", "far"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEmptyQueryKeepsCatalogOrder(t *testing.T) {
	c := newCatalog(t,
		&catalog.Action{ID: "z", Title: "Zed"},
		&catalog.Action{ID: "a", Title: "Ay"},
	)
	if got := titles(Visible(c, Options{})); !reflect.DeepEqual(got, []string{"z", "a"}) {
		t.Fatalf("expected catalog order, got %v", got)
	}
}

func TestIgnorePrefixesStripped(t *testing.T) {
	c := newCatalog(t, &catalog.Action{ID: "o", Title: "Open"}, &catalog.Action{ID: "c", Title: "Close"})
	res := Visible(c, Options{Query: ">  open ", IgnorePrefixes: []string{"?", ">"}})
	if res.Query != "open" {
		t.Fatalf("expected effective query %q, got %q", "open", res.Query)
	}
	if got := titles(res); !reflect.DeepEqual(got, []string{"o"}) {
		t.Fatalf("expected [o], got %v", got)
	}
	if got := EffectiveQuery(">>x", []string{">"}); got != ">x" {
		t.Fatalf("expected a single prefix to be stripped, got %q", got)
	}
}

func TestParsePrefixes(t *testing.T) {
	if got := ParsePrefixes(">,?,,"); !reflect.DeepEqual(got, []string{">", "?"}) {
		t.Fatalf("unexpected prefixes %v", got)
	}
	if got := ParsePrefixes("> , /"); !reflect.DeepEqual(got, []string{"> ", " /"}) {
		t.Fatalf("expected spaces kept as part of the prefix, got %q", got)
	}
	if got := EffectiveQuery("/open", ParsePrefixes(" /")); got != "/open" {
		t.Fatalf("expected literal prefix with a space not to match, got %q", got)
	}
	if got := ParsePrefixes(""); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestRecentGroups(t *testing.T) {
	c := newCatalog(t,
		&catalog.Action{ID: "1", Title: "One"},
		&catalog.Action{ID: "2", Title: "Two"},
		&catalog.Action{ID: "3", Title: "Three"},
	)
	res := Visible(c, Options{NumRecent: 2})
	want := []Span{{Name: RecentGroupTitle, Start: 0, End: 2}, {Name: OtherGroupTitle, Start: 2, End: 3}}
	if !reflect.DeepEqual(res.Groups, want) {
		t.Fatalf("expected %v, got %v", want, res.Groups)
	}
	if got := Visible(c, Options{NumRecent: 2, Query: "o"}); got.Groups != nil {
		t.Fatalf("expected no groups while searching, got %v", got.Groups)
	}
	res = Visible(c, Options{NumRecent: 5})
	if len(res.Groups) != 1 || res.Groups[0].End != 3 {
		t.Fatalf("expected a single recent group, got %v", res.Groups)
	}
}

func TestLoaderTriggeredOnceAcrossRecomputation(t *testing.T) {
	var calls int32
	loader := catalog.Loader(func(context.Context) ([]*catalog.Action, error) {
		atomic.AddInt32(&calls, 1)
		return []*catalog.Action{{ID: "r1", Title: "Remote"}}, nil
	})
	c := newCatalog(t, &catalog.Action{ID: "root", Title: "Root", Children: []catalog.Entry{
		&catalog.Action{ID: "local", Title: "Local"}, loader,
	}})

	first := Visible(c, Options{RootID: "root"})
	if !first.Loading || len(first.Loads) != 1 {
		t.Fatalf("expected one load to start, got loading=%v loads=%d", first.Loading, len(first.Loads))
	}
	if got := titles(first); !reflect.DeepEqual(got, []string{"local"}) {
		t.Fatalf("expected resolved siblings to stay visible, got %v", got)
	}
	second := Visible(c, Options{RootID: "root"})
	if !second.Loading || len(second.Loads) != 0 {
		t.Fatalf("expected pending marker without a new load, got loading=%v loads=%d", second.Loading, len(second.Loads))
	}

	l := first.Loads[0]
	actions, err := l.Run(context.Background())
	if err := c.Resolve(l, actions, err); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	third := Visible(c, Options{RootID: "root"})
	if third.Loading {
		t.Fatalf("expected loading to clear")
	}
	if got := titles(third); !reflect.DeepEqual(got, []string{"local", "r1"}) {
		t.Fatalf("expected [local r1], got %v", got)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected loader to run once, got %d", calls)
	}
}

func TestResultLookups(t *testing.T) {
	res := Visible(alphaCatalog(t), Options{RootID: "A"})
	if res.IndexOf("A1") != 0 || res.IndexOf("nope") != -1 || res.IndexOf("") != -1 {
		t.Fatalf("unexpected IndexOf results")
	}
	if res.Len() != 1 || res.Actions()[0].ID != "A1" {
		t.Fatalf("unexpected actions %v", res.Actions())
	}
}
