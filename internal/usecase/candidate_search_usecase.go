package usecase

import (
	"context"
	"strings"
	"time"

	"hire/internal/domain/profile"
	"hire/internal/logger"
	"hire/internal/ranking"
	"hire/internal/repository"
	"hire/internal/search"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	MessageNoCandidates = "No candidates are available for search yet."
	MessageNoMatches    = "No candidates match this query."

	defaultRankTimeout      = 20 * time.Second
	defaultSerializeWorkers = 8
	searchLockTTL           = 30 * time.Second
)

type CandidateMatch struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	ProfessionName   string    `json:"professionName"`
	Grade            string    `json:"grade"`
	MatchScore       int       `json:"matchScore"`
	MatchExplanation string    `json:"matchExplanation"`
	ProfileContent   string    `json:"profileContent"`
}

type CandidateSearchResult struct {
	Candidates []CandidateMatch `json:"candidates"`
	Message    string           `json:"message,omitempty"`
}

type CandidateSearchUsecase interface {
	Search(ctx context.Context, query string) (CandidateSearchResult, error)
}

type CandidateSearchConfig struct {
	PrefilterLimit   int
	SerializeWorkers int
	RankTimeout      time.Duration
	CacheTTL         time.Duration
}

// CandidateSearch ranks searchable candidates against a free-text query:
// lexical pre-filter, optional external re-rank, lexical fallback.
type CandidateSearch struct {
	profiles repository.ProfileRepository
	ranker   ranking.Ranker
	cache    SearchCache
	cfg      CandidateSearchConfig
	logger   *zap.Logger
}

// NewCandidateSearchUsecase builds the orchestrator. ranker and cache may be
// nil; without a ranker every candidate gets the lexical fallback score.
func NewCandidateSearchUsecase(profiles repository.ProfileRepository, ranker ranking.Ranker, cache SearchCache, cfg CandidateSearchConfig, log *zap.Logger) *CandidateSearch {
	if cfg.PrefilterLimit <= 0 {
		cfg.PrefilterLimit = search.DefaultPrefilterLimit
	}
	if cfg.SerializeWorkers <= 0 {
		cfg.SerializeWorkers = defaultSerializeWorkers
	}
	if cfg.RankTimeout <= 0 {
		cfg.RankTimeout = defaultRankTimeout
	}
	return &CandidateSearch{profiles: profiles, ranker: ranker, cache: cache, cfg: cfg, logger: logger.OrNop(log)}
}

func (u *CandidateSearch) Search(ctx context.Context, query string) (CandidateSearchResult, error) {
	query = strings.TrimSpace(query)
	if search.NormalizeQuery(query) == "" {
		return CandidateSearchResult{}, ErrEmptyQuery
	}

	if u.cache == nil {
		res, _, err := u.compute(ctx, query)
		return res, err
	}

	var generation int64
	if _, err := u.cache.GetJSON(ctx, CandidateSearchGenerationKey, &generation); err != nil {
		u.logger.Debug("search generation unavailable, skipping cache", zap.Error(err))
		res, _, err := u.compute(ctx, query)
		return res, err
	}

	cacheKey := CandidateSearchCacheKey(generation, query)
	lockKey := CandidateSearchLockKey(cacheKey)

	var cached CandidateSearchResult
	hit, err := u.cache.GetJSON(ctx, cacheKey, &cached)
	if err == nil && hit {
		u.logger.Debug("search cache hit", zap.String("key", cacheKey))
		return cached, nil
	}

	ok, err := u.cache.SetIfNotExists(ctx, lockKey, "1", searchLockTTL)
	switch {
	case err == nil && ok:
		defer func() {
			_ = u.cache.Delete(context.WithoutCancel(ctx), lockKey)
		}()
	case err == nil && !ok:
		jitter := time.Duration(time.Now().UnixNano()%201) * time.Millisecond
		select {
		case <-ctx.Done():
			return CandidateSearchResult{}, ctx.Err()
		case <-time.After(300*time.Millisecond + jitter):
		}
		hit, err := u.cache.GetJSON(ctx, cacheKey, &cached)
		if err == nil && hit {
			return cached, nil
		}
		u.logger.Debug("search lock wait fallback", zap.String("key", lockKey))
	}

	res, degraded, err := u.compute(ctx, query)
	if err != nil {
		return CandidateSearchResult{}, err
	}

	// a fallback answer is not cached so the next search retries the ranker
	if !degraded {
		if err := u.cache.SetJSON(ctx, cacheKey, res, u.cfg.CacheTTL); err != nil {
			u.logger.Debug("search cache store failed", zap.Error(err))
		}
	}
	return res, nil
}

func (u *CandidateSearch) compute(ctx context.Context, query string) (CandidateSearchResult, bool, error) {
	profiles, err := u.profiles.ListSearchable(ctx)
	if err != nil {
		u.logger.Error("list searchable profiles", zap.Error(err))
		return CandidateSearchResult{}, false, ErrInternal
	}
	if len(profiles) == 0 {
		return CandidateSearchResult{Candidates: []CandidateMatch{}, Message: MessageNoCandidates}, false, nil
	}

	texts, err := u.serialize(ctx, profiles)
	if err != nil {
		return CandidateSearchResult{}, false, err
	}

	cands := make([]search.Candidate, len(profiles))
	byID := make(map[string]int, len(profiles))
	for i, p := range profiles {
		cands[i] = search.Candidate{OriginalIndex: i, ID: p.ID.String(), Text: texts[i]}
		byID[cands[i].ID] = i
	}
	search.ScoreCandidates(query, cands)

	kept := search.Prefilter(cands, u.cfg.PrefilterLimit)
	external, degraded := u.rank(ctx, query, kept, profiles)
	scored := search.FilterAndSort(search.Merge(kept, external))

	out := CandidateSearchResult{Candidates: make([]CandidateMatch, 0, len(scored))}
	for _, s := range scored {
		p := profiles[byID[s.ID]]
		out.Candidates = append(out.Candidates, CandidateMatch{
			ID:               p.ID,
			Name:             p.Name,
			ProfessionName:   p.ProfessionName,
			Grade:            p.Grade,
			MatchScore:       s.MatchScore,
			MatchExplanation: s.Explanation,
			ProfileContent:   s.Text,
		})
	}
	if len(out.Candidates) == 0 {
		out.Message = MessageNoMatches
	}

	u.logger.Info("candidate search",
		zap.Int("searchable", len(profiles)),
		zap.Int("prefiltered", len(kept)),
		zap.Int("ranked_by_model", len(external)),
		zap.Int("results", len(out.Candidates)),
		zap.Bool("degraded", degraded),
	)
	return out, degraded, nil
}

// serialize renders every profile to text in parallel. Order of the returned
// slice matches profiles.
func (u *CandidateSearch) serialize(ctx context.Context, profiles []profile.Profile) ([]string, error) {
	texts := make([]string, len(profiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.cfg.SerializeWorkers)
	for i := range profiles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			texts[i] = profiles[i].Text()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return texts, nil
}

// rank asks the external ranker once, bounded by the configured timeout. A nil
// map means every candidate falls back to its lexical score; degraded reports
// that the fallback was used because the ranker is missing or failed.
func (u *CandidateSearch) rank(ctx context.Context, query string, kept []search.Candidate, profiles []profile.Profile) (map[string]search.ExternalScore, bool) {
	if len(kept) == 0 {
		return nil, false
	}
	if u.ranker == nil {
		return nil, true
	}

	req := ranking.Request{Query: query, Candidates: make([]ranking.Candidate, 0, len(kept))}
	for _, c := range kept {
		req.Candidates = append(req.Candidates, ranking.Candidate{
			ID:         c.ID,
			Profession: profiles[c.OriginalIndex].ProfessionName,
			Profile:    ranking.TruncateProfile(c.Text),
		})
	}

	rctx, cancel := context.WithTimeout(ctx, u.cfg.RankTimeout)
	defer cancel()

	start := time.Now()
	resp, err := u.ranker.Rank(rctx, req)
	if err != nil {
		u.logger.Warn("ranking unavailable, using lexical fallback",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, true
	}

	wanted := make(map[string]struct{}, len(kept))
	for _, c := range kept {
		wanted[c.ID] = struct{}{}
	}

	out := make(map[string]search.ExternalScore, len(resp.Rankings))
	for _, r := range resp.Rankings {
		if _, ok := wanted[r.CandidateID]; !ok {
			continue
		}
		if _, dup := out[r.CandidateID]; dup {
			continue
		}
		out[r.CandidateID] = search.ExternalScore{MatchScore: r.MatchScore, Explanation: r.MatchExplanation}
	}
	return out, false
}
