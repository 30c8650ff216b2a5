package search

import (
	"math"
	"sort"
)

const (
	DefaultPrefilterLimit = 20
	NoiseThreshold        = 20

	fallbackBase = 20
	fallbackSpan = 70

	FallbackExplanation = "Matched by keyword overlap with the profile."
)

type Candidate struct {
	OriginalIndex int
	ID            string
	Text          string
	Lexical       float64
}

// ExternalScore is a ranking collaborator's verdict for one candidate.
type ExternalScore struct {
	MatchScore  int
	Explanation string
}

type ScoredCandidate struct {
	Candidate
	MatchScore  int
	Explanation string
	FromModel   bool
}

// ScoreCandidates fills in the lexical score of every candidate.
func ScoreCandidates(query string, cands []Candidate) {
	for i := range cands {
		cands[i].Lexical = Score(query, cands[i].Text)
	}
}

// Prefilter keeps at most limit candidates, choosing the best lexical scores
// with ties going to the earlier candidate. The kept candidates stay in their
// original order. At or below the limit nothing is dropped.
func Prefilter(cands []Candidate, limit int) []Candidate {
	if limit <= 0 {
		limit = DefaultPrefilterLimit
	}
	if len(cands) <= limit {
		return cands
	}

	ranked := make([]Candidate, len(cands))
	copy(ranked, cands)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Lexical > ranked[j].Lexical
	})

	kept := ranked[:limit]
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].OriginalIndex < kept[j].OriginalIndex
	})
	return kept
}

// FallbackScore maps a lexical score in [0,1] onto the 20-90 band used when
// the ranking collaborator has no verdict.
func FallbackScore(lexical float64) int {
	if math.IsNaN(lexical) || lexical < 0 {
		lexical = 0
	}
	if lexical > 1 {
		lexical = 1
	}
	return int(math.Round(lexical*fallbackSpan)) + fallbackBase
}

// Merge picks, per candidate, the collaborator's score when one exists and the
// lexical fallback otherwise. external may be nil.
func Merge(cands []Candidate, external map[string]ExternalScore) []ScoredCandidate {
	out := make([]ScoredCandidate, 0, len(cands))
	for _, c := range cands {
		if ext, ok := external[c.ID]; ok {
			out = append(out, ScoredCandidate{
				Candidate:   c,
				MatchScore:  clampScore(ext.MatchScore),
				Explanation: ext.Explanation,
				FromModel:   true,
			})
			continue
		}
		out = append(out, ScoredCandidate{
			Candidate:   c,
			MatchScore:  FallbackScore(c.Lexical),
			Explanation: FallbackExplanation,
		})
	}
	return out
}

// FilterAndSort drops noise-level scores and orders the rest by score,
// descending, keeping the incoming order on ties.
func FilterAndSort(scored []ScoredCandidate) []ScoredCandidate {
	out := make([]ScoredCandidate, 0, len(scored))
	for _, s := range scored {
		if s.MatchScore <= NoiseThreshold {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchScore > out[j].MatchScore
	})
	return out
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
