// Package match scores how well a query fuzzily matches a candidate title.
package match

import (
	"unicode"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/unicode/norm"
)

// NeutralRank is reported for every candidate when the query is empty.
const NeutralRank = 1.0

// Scoring weights are integers so equal alignments compare exactly.
const (
	pointMatch    = 100
	bonusAdjacent = 300
	bonusBoundary = 100
	penaltyGap    = 5
	maxGapPenalty = 50
	scale         = 100.0
)

// Result is the outcome of scoring a candidate. Indices are rune offsets into
// the candidate, strictly increasing, one per query rune that is not a bare
// combining mark.
type Result struct {
	Rank    float64
	Indices []int
}

// Matched reports whether the candidate should be considered at all.
func (r Result) Matched() bool { return r.Rank > 0 }

type cell struct {
	ok    bool
	score int
	path  []int
}

// Score ranks candidate against query. An empty query yields NeutralRank with
// no indices. A query that is not a case-insensitive subsequence of the
// candidate yields a zero rank. Otherwise the best alignment is chosen, with
// contiguous runs, runs starting on word boundaries and shorter candidates
// scoring higher; equal alignments resolve to the left-most one.
func Score(candidate, query string) Result {
	if query == "" {
		return Result{Rank: NeutralRank}
	}
	if !fuzzy.MatchNormalizedFold(query, candidate) {
		return Result{}
	}
	hay := []rune(candidate)
	lowerHay := make([]rune, len(hay))
	for i, r := range hay {
		lowerHay[i] = fold(r)
	}
	lowerNeedle := make([]rune, 0, len(query))
	for _, r := range query {
		if f := fold(r); f >= 0 {
			lowerNeedle = append(lowerNeedle, f)
		}
	}
	if len(lowerNeedle) == 0 || len(lowerNeedle) > len(hay) {
		return Result{}
	}

	prev := make([]cell, len(hay))
	for j, r := range lowerHay {
		if r != lowerNeedle[0] {
			continue
		}
		prev[j] = cell{ok: true, score: pointMatch + boundaryBonus(hay, j), path: []int{j}}
	}

	for i := 1; i < len(lowerNeedle); i++ {
		cur := make([]cell, len(hay))
		for j := i; j < len(hay); j++ {
			if lowerHay[j] != lowerNeedle[i] {
				continue
			}
			best := -1
			bestScore := 0
			for k := i - 1; k < j; k++ {
				if !prev[k].ok {
					continue
				}
				s := prev[k].score + pointMatch
				if k == j-1 {
					s += bonusAdjacent
				} else {
					s += boundaryBonus(hay, j) - gapPenalty(j-k-1)
				}
				if best < 0 || s > bestScore || (s == bestScore && lexLess(prev[k].path, prev[best].path)) {
					best = k
					bestScore = s
				}
			}
			if best < 0 {
				continue
			}
			path := make([]int, 0, i+1)
			path = append(path, prev[best].path...)
			path = append(path, j)
			cur[j] = cell{ok: true, score: bestScore, path: path}
		}
		prev = cur
	}

	var winner *cell
	for j := range prev {
		c := &prev[j]
		if !c.ok {
			continue
		}
		if winner == nil || c.score > winner.score || (c.score == winner.score && lexLess(c.path, winner.path)) {
			winner = c
		}
	}
	if winner == nil {
		return Result{}
	}
	rank := float64(winner.score)/scale + 1/float64(1+len(hay))
	return Result{Rank: rank, Indices: winner.path}
}

// fold lowercases r and strips its combining marks, the same normalisation
// fuzzy.MatchNormalizedFold applies. A rune that is only a mark folds to -1.
func fold(r rune) rune {
	if r < utf8.RuneSelf {
		return unicode.ToLower(r)
	}
	for _, d := range norm.NFD.String(string(r)) {
		if !unicode.Is(unicode.Mn, d) {
			return unicode.ToLower(d)
		}
	}
	return -1
}

// boundaryBonus rewards a run that starts at a word boundary: the start of
// the string, after a separator, a lower-to-upper case change, or the first
// digit after a letter.
func boundaryBonus(hay []rune, j int) int {
	if j == 0 {
		return bonusBoundary
	}
	prev, cur := hay[j-1], hay[j]
	switch {
	case !unicode.IsLetter(prev) && !unicode.IsDigit(prev):
		return bonusBoundary
	case unicode.IsLower(prev) && unicode.IsUpper(cur):
		return bonusBoundary
	case unicode.IsLetter(prev) && unicode.IsDigit(cur):
		return bonusBoundary
	}
	return 0
}

func gapPenalty(gap int) int {
	p := gap * penaltyGap
	if p > maxGapPenalty {
		return maxGapPenalty
	}
	return p
}

func lexLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
