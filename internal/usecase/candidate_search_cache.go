package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// SearchCache stores ranked search results and the per-query computation
// lock. Graph writes bump the search generation, which is part of every
// result key, and then drop the old entries through DeleteByPattern.
type SearchCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error

	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error

	Incr(ctx context.Context, key string) (int64, error)
	DeleteByPattern(ctx context.Context, pattern string) error
}

const (
	candidateSearchPrefix = "candidates:search:"
	candidateLockPrefix   = "candidates:lock:"

	// CandidateSearchGenerationKey counts graph writes. It sits outside the
	// result prefix so invalidation never deletes it.
	CandidateSearchGenerationKey = "candidates:generation"

	// CandidateSearchPattern matches every cached search result.
	CandidateSearchPattern = candidateSearchPrefix + "*"
)

// CandidateSearchCacheKey keys a search by generation and query. Scoring is
// case-insensitive substring matching on the query as typed, so only case and
// surrounding space are folded; "node.js" and "nodejs" stay distinct.
func CandidateSearchCacheKey(generation int64, query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return candidateSearchPrefix + strconv.FormatInt(generation, 10) + ":" + hex.EncodeToString(sum[:])
}

func CandidateSearchLockKey(searchKey string) string {
	searchKey = strings.TrimSpace(searchKey)
	if strings.HasPrefix(searchKey, candidateSearchPrefix) {
		return candidateLockPrefix + strings.TrimPrefix(searchKey, candidateSearchPrefix)
	}
	return candidateLockPrefix + searchKey
}
