package search

import (
	"fmt"
	"testing"
)

func makeCandidates(lexical ...float64) []Candidate {
	out := make([]Candidate, 0, len(lexical))
	for i, l := range lexical {
		out = append(out, Candidate{OriginalIndex: i, ID: fmt.Sprintf("c%d", i), Lexical: l})
	}
	return out
}

func TestPrefilter_BelowLimitKeepsAll(t *testing.T) {
	cands := makeCandidates(0, 0, 0)
	if got := Prefilter(cands, 20); len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
}

func TestPrefilter_TopByLexicalTiesByOrder(t *testing.T) {
	lex := make([]float64, 25)
	for i := range lex {
		lex[i] = 0.5
	}
	lex[24] = 1
	lex[23] = 0.9

	got := Prefilter(makeCandidates(lex...), 20)
	if len(got) != 20 {
		t.Fatalf("expected 20 candidates, got %d", len(got))
	}

	ids := map[string]bool{}
	for i, c := range got {
		ids[c.ID] = true
		if i > 0 && got[i-1].OriginalIndex >= c.OriginalIndex {
			t.Fatalf("expected original order to be kept")
		}
	}
	if !ids["c24"] || !ids["c23"] {
		t.Fatalf("best lexical candidates must survive")
	}
	for i := 0; i < 18; i++ {
		if !ids[fmt.Sprintf("c%d", i)] {
			t.Fatalf("tie must favour earlier candidate c%d", i)
		}
	}
	if ids["c18"] || ids["c22"] {
		t.Fatalf("later tied candidates should be dropped")
	}
}

func TestFallbackScore(t *testing.T) {
	cases := map[float64]int{0: 20, 0.5: 55, 1: 90, 1.0 / 3: 43, -1: 20, 2: 90}
	for in, want := range cases {
		if got := FallbackScore(in); got != want {
			t.Fatalf("FallbackScore(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestMergeFilterSort(t *testing.T) {
	cands := makeCandidates(0, 1, 0.5, 0)
	external := map[string]ExternalScore{
		"c0": {MatchScore: 95, Explanation: "strong"},
		"c3": {MatchScore: 140, Explanation: "clamped"},
	}

	got := FilterAndSort(Merge(cands, external))
	want := []struct {
		id    string
		score int
		model bool
	}{
		{"c3", 100, true},
		{"c0", 95, true},
		{"c1", 90, false},
		{"c2", 55, false},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].ID != w.id || got[i].MatchScore != w.score || got[i].FromModel != w.model {
			t.Fatalf("position %d: got %+v, want %+v", i, got[i], w)
		}
	}
	if got[2].Explanation != FallbackExplanation {
		t.Fatalf("fallback explanation expected, got %q", got[2].Explanation)
	}
}

func TestFilterAndSort_DropsNoiseStable(t *testing.T) {
	in := []ScoredCandidate{
		{Candidate: Candidate{ID: "a"}, MatchScore: 20},
		{Candidate: Candidate{ID: "b"}, MatchScore: 50},
		{Candidate: Candidate{ID: "c"}, MatchScore: 21},
		{Candidate: Candidate{ID: "d"}, MatchScore: 50},
	}
	got := FilterAndSort(in)
	order := ""
	for _, s := range got {
		order += s.ID
	}
	if order != "bdc" {
		t.Fatalf("expected bdc, got %s", order)
	}
}
