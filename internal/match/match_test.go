package match

import (
	"reflect"
	"strings"
	"testing"
)

func TestScoreEmptyQueryIsNeutral(t *testing.T) {
	for _, candidate := range []string{"", "Open File", "zzz"} {
		res := Score(candidate, "")
		if res.Rank <= 0 {
			t.Fatalf("expected positive rank for %q, got %v", candidate, res.Rank)
		}
		if len(res.Indices) != 0 {
			t.Fatalf("expected no indices for %q, got %v", candidate, res.Indices)
		}
	}
}

func TestScoreNonSubsequenceIsZero(t *testing.T) {
	cases := []struct{ candidate, query string }{
		{"Alpha", "One"},
		{"abc", "abcd"},
		{"abc", "cba"},
		{"", "a"},
	}
	for _, tc := range cases {
		res := Score(tc.candidate, tc.query)
		if res.Rank != 0 {
			t.Fatalf("Score(%q, %q) rank = %v, want 0", tc.candidate, tc.query, res.Rank)
		}
		if res.Matched() {
			t.Fatalf("Score(%q, %q) should not match", tc.candidate, tc.query)
		}
	}
}

func TestScoreIsCaseInsensitive(t *testing.T) {
	res := Score("Open File", "OPEN")
	if !res.Matched() {
		t.Fatalf("expected match")
	}
	if want := []int{0, 1, 2, 3}; !reflect.DeepEqual(res.Indices, want) {
		t.Fatalf("expected indices %v, got %v", want, res.Indices)
	}
}

func TestScoreIgnoresDiacritics(t *testing.T) {
	cases := []struct {
		candidate, query string
		want             []int
	}{
		{"Café", "cafe", []int{0, 1, 2, 3}},
		{"Cafe", "CAFÉ", []int{0, 1, 2, 3}},
		{"Cafe\u0301 Menu", "cafe", []int{0, 1, 2, 3}},
		{"Crème brûlée", "brulee", []int{6, 7, 8, 9, 10, 11}},
	}
	for _, tc := range cases {
		res := Score(tc.candidate, tc.query)
		if !res.Matched() {
			t.Fatalf("expected %q to match %q", tc.query, tc.candidate)
		}
		if !reflect.DeepEqual(res.Indices, tc.want) {
			t.Fatalf("Score(%q, %q) indices = %v, want %v", tc.candidate, tc.query, res.Indices, tc.want)
		}
	}
	if Score("Cafe", "cafx").Matched() {
		t.Fatalf("expected folding not to loosen non-matches")
	}
}

func TestScoreIndicesAreIncreasingAndPointAtQueryRunes(t *testing.T) {
	candidate := "Toggle Dark Mode"
	query := "tdm"
	res := Score(candidate, query)
	if !res.Matched() {
		t.Fatalf("expected match")
	}
	if len(res.Indices) != len([]rune(query)) {
		t.Fatalf("expected %d indices, got %v", len(query), res.Indices)
	}
	runes := []rune(candidate)
	for i, idx := range res.Indices {
		if i > 0 && idx <= res.Indices[i-1] {
			t.Fatalf("indices not increasing: %v", res.Indices)
		}
		got := string(runes[idx])
		if got != string(query[i]) && got != string(query[i]-32) {
			t.Fatalf("index %d points at %q, want %q", idx, got, string(query[i]))
		}
	}
	if want := []int{0, 7, 12}; !reflect.DeepEqual(res.Indices, want) {
		t.Fatalf("expected word-start alignment %v, got %v", want, res.Indices)
	}
}

func TestContiguousBeatsScattered(t *testing.T) {
	cases := []struct{ contiguous, scattered, query string }{
		{"xxabc", "axbxc", "abc"},
		{"theme", "t-h-e", "the"},
		{"zzopen", "o p e n", "open"},
	}
	for _, tc := range cases {
		c := Score(tc.contiguous, tc.query)
		s := Score(tc.scattered, tc.query)
		if !c.Matched() || !s.Matched() {
			t.Fatalf("expected both %q and %q to match %q", tc.contiguous, tc.scattered, tc.query)
		}
		if c.Rank <= s.Rank {
			t.Fatalf("expected %q (%v) to outrank %q (%v)", tc.contiguous, c.Rank, tc.scattered, s.Rank)
		}
	}
}

func TestWordBoundaryBeatsMidWord(t *testing.T) {
	boundary := Score("foo bar", "bar")
	mid := Score("fooxbar", "bar")
	if boundary.Rank <= mid.Rank {
		t.Fatalf("expected boundary match %v to outrank mid-word %v", boundary.Rank, mid.Rank)
	}
	camel := Score("openFile", "f")
	plain := Score("openfile", "f")
	if camel.Rank <= plain.Rank {
		t.Fatalf("expected case transition %v to outrank plain %v", camel.Rank, plain.Rank)
	}
}

func TestShorterCandidateWins(t *testing.T) {
	short := Score("abc", "abc")
	long := Score("abcdef", "abc")
	if short.Rank <= long.Rank {
		t.Fatalf("expected shorter candidate %v to outrank longer %v", short.Rank, long.Rank)
	}
}

func TestTiesPreferLeftmostAlignment(t *testing.T) {
	res := Score("a a", "a")
	if want := []int{0}; !reflect.DeepEqual(res.Indices, want) {
		t.Fatalf("expected %v, got %v", want, res.Indices)
	}
	res = Score("ab-ab", "ab")
	if want := []int{0, 1}; !reflect.DeepEqual(res.Indices, want) {
		t.Fatalf("expected %v, got %v", want, res.Indices)
	}
}

func TestScoreLongGapsKeepPositiveRank(t *testing.T) {
	candidate := "a" + strings.Repeat(".", 200) + "b"
	res := Score(candidate, "ab")
	if res.Rank <= 0 {
		t.Fatalf("expected positive rank, got %v", res.Rank)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	a := Score("Settings: Open Keyboard Shortcuts", "sok")
	b := Score("Settings: Open Keyboard Shortcuts", "sok")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical results, got %#v and %#v", a, b)
	}
}
