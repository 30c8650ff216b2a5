package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"hire/internal/domain/profile"
	"hire/internal/domain/trait"
	"hire/internal/ranking"
	"hire/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twentyFiveCandidates() []profile.Profile {
	out := make([]profile.Profile, 0, 25)
	for i := 0; i < 25; i++ {
		switch i % 3 {
		case 0:
			out = append(out, candidate("full", "Engineer", "Golang", "Postgres"))
		case 1:
			out = append(out, candidate("half", "Engineer", "Golang", "Kafka"))
		default:
			out = append(out, candidate("none", "Designer", "Figma"))
		}
	}
	return out
}

func TestCandidateSearch_EmptyQuery(t *testing.T) {
	repo := newFakeProfileRepo(candidate("a", "Engineer", "Golang"))
	uc := NewCandidateSearchUsecase(repo, nil, nil, CandidateSearchConfig{}, nil)

	for _, q := range []string{"", "   ", " ?! -- "} {
		_, err := uc.Search(context.Background(), q)
		assert.ErrorIs(t, err, ErrEmptyQuery, "query %q", q)
	}
	assert.Equal(t, 0, repo.lists, "no graph work for an unusable query")
}

func TestCandidateSearch_NoSearchableCandidates(t *testing.T) {
	p := candidate("hidden", "Engineer", "Golang")
	p.IsSearchable = false
	uc := NewCandidateSearchUsecase(newFakeProfileRepo(p), nil, nil, CandidateSearchConfig{}, nil)

	res, err := uc.Search(context.Background(), "golang")
	require.NoError(t, err)
	assert.NotNil(t, res.Candidates)
	assert.Empty(t, res.Candidates)
	assert.Equal(t, MessageNoCandidates, res.Message)
}

func TestCandidateSearch_UnreachableRankerFallsBack(t *testing.T) {
	profiles := twentyFiveCandidates()
	ranker := &fakeRanker{err: errors.New("connection refused")}
	uc := NewCandidateSearchUsecase(newFakeProfileRepo(profiles...), ranker, nil, CandidateSearchConfig{}, nil)

	res, err := uc.Search(context.Background(), "golang postgres")
	require.NoError(t, err)

	require.Equal(t, 1, ranker.calls)
	assert.Len(t, ranker.last.Candidates, 20, "ranker sees at most the pre-filter limit")

	require.Len(t, res.Candidates, 17)
	for i, c := range res.Candidates {
		assert.Equal(t, search.FallbackExplanation, c.MatchExplanation)
		assert.Greater(t, c.MatchScore, search.NoiseThreshold)
		if i > 0 {
			assert.GreaterOrEqual(t, res.Candidates[i-1].MatchScore, c.MatchScore)
		}
	}

	// ties keep load order
	for i := 0; i < 9; i++ {
		assert.Equal(t, 90, res.Candidates[i].MatchScore)
		assert.Equal(t, profiles[i*3].ID, res.Candidates[i].ID)
	}
	for i := 9; i < 17; i++ {
		assert.Equal(t, 55, res.Candidates[i].MatchScore)
		assert.Equal(t, profiles[(i-9)*3+1].ID, res.Candidates[i].ID)
	}
}

func TestCandidateSearch_RankerTimeoutFallsBack(t *testing.T) {
	ranker := &fakeRanker{block: true}
	uc := NewCandidateSearchUsecase(
		newFakeProfileRepo(candidate("a", "Engineer", "Golang")),
		ranker, nil,
		CandidateSearchConfig{RankTimeout: 20 * time.Millisecond},
		nil,
	)

	start := time.Now()
	res, err := uc.Search(context.Background(), "golang")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	require.Len(t, res.Candidates, 1)
	assert.Equal(t, 90, res.Candidates[0].MatchScore)
	assert.Equal(t, search.FallbackExplanation, res.Candidates[0].MatchExplanation)
}

func TestCandidateSearch_MergesModelScores(t *testing.T) {
	c0 := candidate("c0", "Engineer", "Golang")
	c1 := candidate("c1", "Engineer", "Golang")
	c2 := candidate("c2", "Designer", "Figma")

	ranker := &fakeRanker{resp: ranking.Response{Rankings: []ranking.Ranking{
		{CandidateID: c2.ID.String(), MatchScore: 95, MatchExplanation: "Designs Go tooling"},
		{CandidateID: c0.ID.String(), MatchScore: 10, MatchExplanation: "Weak"},
		{CandidateID: "unknown", MatchScore: 99, MatchExplanation: "Invented"},
	}}}
	uc := NewCandidateSearchUsecase(newFakeProfileRepo(c0, c1, c2), ranker, nil, CandidateSearchConfig{}, nil)

	res, err := uc.Search(context.Background(), "golang")
	require.NoError(t, err)
	require.Len(t, res.Candidates, 2)

	assert.Equal(t, c2.ID, res.Candidates[0].ID)
	assert.Equal(t, 95, res.Candidates[0].MatchScore)
	assert.Equal(t, "Designs Go tooling", res.Candidates[0].MatchExplanation)
	assert.Equal(t, "Designer", res.Candidates[0].ProfessionName)

	assert.Equal(t, c1.ID, res.Candidates[1].ID)
	assert.Equal(t, 90, res.Candidates[1].MatchScore)
	assert.Equal(t, search.FallbackExplanation, res.Candidates[1].MatchExplanation)
	assert.Contains(t, res.Candidates[1].ProfileContent, "Skills: Golang")
	assert.Empty(t, res.Message)
}

func TestCandidateSearch_ShortTokensScoreNothing(t *testing.T) {
	ranker := &fakeRanker{err: errors.New("unavailable")}
	uc := NewCandidateSearchUsecase(newFakeProfileRepo(twentyFiveCandidates()...), ranker, nil, CandidateSearchConfig{}, nil)

	res, err := uc.Search(context.Background(), "a b c")
	require.NoError(t, err)
	assert.Empty(t, res.Candidates)
	assert.Equal(t, MessageNoMatches, res.Message)
}

func TestCandidateSearch_TruncatesProfilesForRanker(t *testing.T) {
	p := candidate("long", "Engineer", "Golang")
	require.NoError(t, p.Graph.Upsert(trait.Trait{ID: "essay", Label: "Essay", Description: strings.Repeat("word ", 200), Importance: 2}))

	ranker := &fakeRanker{}
	uc := NewCandidateSearchUsecase(newFakeProfileRepo(p), ranker, nil, CandidateSearchConfig{}, nil)

	_, err := uc.Search(context.Background(), "golang")
	require.NoError(t, err)
	require.Len(t, ranker.last.Candidates, 1)
	assert.LessOrEqual(t, len([]rune(ranker.last.Candidates[0].Profile)), ranking.MaxProfileRunes)
	assert.Equal(t, "Engineer", ranker.last.Candidates[0].Profession)
}

func TestCandidateSearch_CachesResults(t *testing.T) {
	repo := newFakeProfileRepo(candidate("a", "Engineer", "Golang"))
	cache := newFakeCache()
	uc := NewCandidateSearchUsecase(repo, &fakeRanker{}, cache, CandidateSearchConfig{}, nil)

	first, err := uc.Search(context.Background(), "Golang")
	require.NoError(t, err)
	second, err := uc.Search(context.Background(), "  golang ")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.lists, "second search is served from cache")
	assert.Equal(t, first.Candidates[0].ID, second.Candidates[0].ID)
	assert.Empty(t, cache.locks, "lock released after compute")
}

func TestCandidateSearch_DegradedResultsAreNotCached(t *testing.T) {
	repo := newFakeProfileRepo(candidate("a", "Engineer", "Golang"))
	ranker := &fakeRanker{err: errors.New("down")}
	uc := NewCandidateSearchUsecase(repo, ranker, newFakeCache(), CandidateSearchConfig{}, nil)

	for i := 0; i < 2; i++ {
		_, err := uc.Search(context.Background(), "golang")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, repo.lists)
	assert.Equal(t, 2, ranker.calls)
}

func TestCandidateSearch_RepositoryError(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.listErr = errors.New("db down")
	uc := NewCandidateSearchUsecase(repo, nil, nil, CandidateSearchConfig{}, nil)

	_, err := uc.Search(context.Background(), "golang")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestCandidateSearch_WithoutRankerIsNotCached(t *testing.T) {
	repo := newFakeProfileRepo(candidate("a", "Engineer", "Golang"))
	cache := newFakeCache()
	uc := NewCandidateSearchUsecase(repo, nil, cache, CandidateSearchConfig{}, nil)

	for i := 0; i < 2; i++ {
		res, err := uc.Search(context.Background(), "golang")
		require.NoError(t, err)
		require.Len(t, res.Candidates, 1)
	}
	assert.Equal(t, 2, repo.lists)
	assert.Empty(t, cache.data)
}

func TestCandidateSearch_PunctuationVariantsDoNotShareCache(t *testing.T) {
	repo := newFakeProfileRepo(candidate("a", "Engineer", "Node.js"))
	uc := NewCandidateSearchUsecase(repo, &fakeRanker{}, newFakeCache(), CandidateSearchConfig{}, nil)
	ctx := context.Background()

	miss, err := uc.Search(ctx, "nodejs")
	require.NoError(t, err)
	assert.Empty(t, miss.Candidates)
	assert.Equal(t, MessageNoMatches, miss.Message)

	hit, err := uc.Search(ctx, "node.js")
	require.NoError(t, err)
	require.Len(t, hit.Candidates, 1)
	assert.Equal(t, 2, repo.lists)
}

func TestCandidateSearch_GraphWriteDuringComputeIsNotServedLater(t *testing.T) {
	p := candidate("a", "Engineer", "Golang")
	repo := newFakeProfileRepo(p)
	cache := newFakeCache()
	graphs := NewProfileGraphUsecase(repo, nil, cache, nil, nil)
	ranker := &fakeRanker{}
	uc := NewCandidateSearchUsecase(repo, ranker, cache, CandidateSearchConfig{}, nil)
	ctx := context.Background()

	ranker.onRank = func() {
		require.NoError(t, graphs.SetSearchable(ctx, p.ID, false))
	}
	stale, err := uc.Search(ctx, "golang")
	require.NoError(t, err)
	require.Len(t, stale.Candidates, 1, "the in-flight search saw the old state")

	ranker.onRank = nil
	fresh, err := uc.Search(ctx, "golang")
	require.NoError(t, err)
	assert.Empty(t, fresh.Candidates)
	assert.Equal(t, MessageNoCandidates, fresh.Message)
	assert.Equal(t, 2, repo.lists)
}

func TestCandidateSearchCacheKey(t *testing.T) {
	k := CandidateSearchCacheKey(3, "golang developer")
	assert.True(t, strings.HasPrefix(k, "candidates:search:3:"))
	assert.Equal(t, k, CandidateSearchCacheKey(3, " Golang Developer "))
	assert.NotEqual(t, k, CandidateSearchCacheKey(3, "golang"))
	assert.NotEqual(t, k, CandidateSearchCacheKey(4, "golang developer"))
	assert.NotEqual(t, CandidateSearchCacheKey(0, "c++"), CandidateSearchCacheKey(0, "c#"))
	assert.NotEqual(t, CandidateSearchCacheKey(0, "go, rust"), CandidateSearchCacheKey(0, "go rust"))

	lock := CandidateSearchLockKey(k)
	assert.True(t, strings.HasPrefix(lock, "candidates:lock:"))
	assert.Equal(t, strings.TrimPrefix(k, "candidates:search:"), strings.TrimPrefix(lock, "candidates:lock:"))
	assert.False(t, strings.HasPrefix(CandidateSearchGenerationKey, "candidates:search:"))
}
