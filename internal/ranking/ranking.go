// Package ranking holds the contract with the external semantic ranking model
// and its LLM-backed implementations.
package ranking

import (
	"context"
	"errors"
	"strings"
)

// MaxProfileRunes bounds the profile text sent per candidate.
const MaxProfileRunes = 500

var (
	ErrMalformedResponse = errors.New("malformed ranking response")
	ErrEmptyResponse     = errors.New("empty ranking response")
)

type Candidate struct {
	ID         string `json:"id"`
	Profession string `json:"profession,omitempty"`
	Profile    string `json:"profile"`
}

type Request struct {
	Query      string      `json:"query"`
	Candidates []Candidate `json:"candidates"`
}

type Ranking struct {
	CandidateID      string `json:"candidateId"`
	MatchScore       int    `json:"matchScore"`
	MatchExplanation string `json:"matchExplanation"`
}

type Response struct {
	Rankings []Ranking `json:"rankings"`
}

// Ranker scores candidates against a query. Any error means the caller should
// fall back to its own scoring for the whole request.
type Ranker interface {
	Rank(ctx context.Context, req Request) (Response, error)
}

// TruncateProfile cuts profile text to MaxProfileRunes runes.
func TruncateProfile(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= MaxProfileRunes {
		return text
	}
	return string(runes[:MaxProfileRunes])
}
