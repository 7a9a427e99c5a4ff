// Package navigator computes the ordered, sectioned list of actions visible
// for a root and query.
package navigator

import (
	"sort"
	"strings"

	"github.com/atomicstack/cmdpalette/internal/catalog"
	"github.com/atomicstack/cmdpalette/internal/match"
)

// Group titles used when recent actions are labelled.
const (
	RecentGroupTitle = "Recently Used"
	OtherGroupTitle  = "Other Commands"
)

// Options selects what to compute.
type Options struct {
	RootID         string
	Query          string
	IgnorePrefixes []string
	NumRecent      int
}

// Match is a visible action with its score.
type Match struct {
	Action  *catalog.Action
	Rank    float64
	Indices []int
}

// Span is a half-open range [Start, End) over Result.Matches.
type Span struct {
	Name  string
	Start int
	End   int
}

// Result is the visible set in display order.
type Result struct {
	Query    string
	Matches  []Match
	Sections []Span
	Groups   []Span
	Loading  bool
	Loads    []*catalog.Load
}

// Actions returns the visible actions in display order.
func (r Result) Actions() []*catalog.Action {
	out := make([]*catalog.Action, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Action
	}
	return out
}

// IndexOf returns the display position of id, or -1.
func (r Result) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, m := range r.Matches {
		if m.Action.ID == id {
			return i
		}
	}
	return -1
}

// Len returns the number of visible actions.
func (r Result) Len() int { return len(r.Matches) }

// ParsePrefixes splits a comma-separated prefix list. Prefixes are literal,
// surrounding spaces included; only empty entries are dropped.
func ParsePrefixes(csv string) []string {
	var out []string
	for _, p := range strings.Split(csv, ",") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// EffectiveQuery removes the first ignored prefix the query starts with and
// trims surrounding whitespace.
func EffectiveQuery(query string, prefixes []string) string {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(query, p) {
			query = query[len(p):]
			break
		}
	}
	return strings.TrimSpace(query)
}

// Visible computes the visible set. Unstarted loaders among the candidates
// are triggered and returned in Result.Loads for the caller to run.
func Visible(cat *catalog.Catalog, opts Options) Result {
	query := EffectiveQuery(opts.Query, opts.IgnorePrefixes)
	res := Result{Query: query}
	if cat == nil {
		return res
	}

	var matches []Match
	for i, entry := range cat.ChildrenOf(opts.RootID) {
		switch e := entry.(type) {
		case *catalog.Pending:
			res.Loading = true
			continue
		case catalog.Loader:
			if l, ok := cat.TriggerLoad(opts.RootID, i); ok {
				res.Loads = append(res.Loads, l)
			}
			res.Loading = true
			continue
		case *catalog.Action:
			if e == nil {
				continue
			}
			if (opts.RootID != "" || query == "") && e.Parent != opts.RootID {
				continue
			}
			scored := match.Score(e.Title, query)
			if query != "" && !scored.Matched() {
				continue
			}
			matches = append(matches, Match{Action: e, Rank: scored.Rank, Indices: scored.Indices})
		}
	}

	if query != "" {
		sort.SliceStable(matches, func(i, j int) bool {
			if matches[i].Rank != matches[j].Rank {
				return matches[i].Rank > matches[j].Rank
			}
			return titleLess(matches[i].Action.Title, matches[j].Action.Title)
		})
	}

	res.Matches, res.Sections = groupSections(matches)

	if opts.RootID == "" && query == "" && opts.NumRecent > 0 && len(res.Matches) > 0 {
		n := opts.NumRecent
		if n > len(res.Matches) {
			n = len(res.Matches)
		}
		res.Groups = append(res.Groups, Span{Name: RecentGroupTitle, Start: 0, End: n})
		if n < len(res.Matches) {
			res.Groups = append(res.Groups, Span{Name: OtherGroupTitle, Start: n, End: len(res.Matches)})
		}
	}
	return res
}

// groupSections keeps the sort order within each section and orders the
// sections by first appearance.
func groupSections(matches []Match) ([]Match, []Span) {
	if len(matches) == 0 {
		return nil, nil
	}
	var order []string
	buckets := make(map[string][]Match)
	for _, m := range matches {
		name := m.Action.Section
		if _, seen := buckets[name]; !seen {
			order = append(order, name)
		}
		buckets[name] = append(buckets[name], m)
	}
	out := make([]Match, 0, len(matches))
	spans := make([]Span, 0, len(order))
	for _, name := range order {
		start := len(out)
		out = append(out, buckets[name]...)
		spans = append(spans, Span{Name: name, Start: start, End: len(out)})
	}
	return out, spans
}

func titleLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
