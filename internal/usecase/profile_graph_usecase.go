package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"hire/internal/domain/action"
	"hire/internal/domain/profile"
	"hire/internal/domain/trait"
	"hire/internal/repository"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// GraphNotifier pushes graph changes to live subscribers of a profile.
type GraphNotifier interface {
	NotifyGraphUpdated(profileID uuid.UUID, payload any)
}

// ApplyActionsInput carries either a structured action list or raw model
// output. Actions wins when both are set.
type ApplyActionsInput struct {
	Actions json.RawMessage
	Raw     string
}

type ApplyActionsResult struct {
	BatchID          string
	Results          []action.Result
	Applied          int
	Skipped          int
	DroppedRelations int
	TraitCount       int
}

// GraphUpdatedEvent is what live subscribers receive after a batch.
type GraphUpdatedEvent struct {
	Type       string       `json:"type"`
	BatchID    string       `json:"batchId"`
	Applied    int          `json:"applied"`
	Skipped    int          `json:"skipped"`
	TraitCount int          `json:"traitCount"`
	Graph      *trait.Graph `json:"graph"`
}

const EventGraphUpdated = "graph_updated"

type ProfileGraphUsecase interface {
	ApplyActions(ctx context.Context, profileID uuid.UUID, in ApplyActionsInput) (ApplyActionsResult, error)
	GetGraph(ctx context.Context, profileID uuid.UUID) (profile.Profile, error)
	GetText(ctx context.Context, profileID uuid.UUID) (string, error)
	SetSearchable(ctx context.Context, profileID uuid.UUID, searchable bool) error
}

type ProfileGraph struct {
	profiles repository.ProfileRepository
	applier  *action.Applier
	cache    SearchCache
	notifier GraphNotifier
	logger   *zap.Logger
}

func NewProfileGraphUsecase(profiles repository.ProfileRepository, applier *action.Applier, cache SearchCache, notifier GraphNotifier, logger *zap.Logger) *ProfileGraph {
	if logger == nil {
		logger = zap.NewNop()
	}
	if applier == nil {
		applier = action.NewApplier(logger)
	}
	return &ProfileGraph{profiles: profiles, applier: applier, cache: cache, notifier: notifier, logger: logger}
}

func (u *ProfileGraph) ApplyActions(ctx context.Context, profileID uuid.UUID, in ApplyActionsInput) (ApplyActionsResult, error) {
	var payload []byte
	switch {
	case len(in.Actions) > 0 && string(in.Actions) != "null":
		payload = in.Actions
	case strings.TrimSpace(in.Raw) != "":
		payload = []byte(in.Raw)
	default:
		return ApplyActionsResult{}, ErrInvalidInput
	}

	actions, err := action.Parse(payload)
	if err != nil {
		return ApplyActionsResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	batchID, err := gonanoid.New()
	if err != nil {
		u.logger.Error("generate batch id", zap.Error(err))
		return ApplyActionsResult{}, ErrInternal
	}

	log := u.logger.With(zap.String("profile_id", profileID.String()), zap.String("batch_id", batchID))

	var report action.Report
	p, err := u.profiles.UpdateGraph(ctx, profileID, func(p *profile.Profile) error {
		report = u.applier.Apply(p.Graph, actions)
		if report.Applied == 0 && report.DroppedRelations == 0 {
			return repository.ErrGraphUnchanged
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProfileNotFound):
			return ApplyActionsResult{}, ErrProfileNotFound
		case errors.Is(err, repository.ErrProfileBusy):
			log.Info("graph busy, batch rejected")
			return ApplyActionsResult{}, ErrProfileBusy
		default:
			log.Error("apply graph batch", zap.Error(err))
			return ApplyActionsResult{}, ErrInternal
		}
	}

	log.Info("graph batch applied",
		zap.Int("actions", len(actions)),
		zap.Int("applied", report.Applied),
		zap.Int("skipped", report.Skipped),
		zap.Int("dropped_relations", report.DroppedRelations),
	)

	res := ApplyActionsResult{
		BatchID:          batchID,
		Results:          report.Results,
		Applied:          report.Applied,
		Skipped:          report.Skipped,
		DroppedRelations: report.DroppedRelations,
		TraitCount:       p.Graph.Len(),
	}

	if report.Applied > 0 || report.DroppedRelations > 0 {
		u.invalidateSearch(ctx)
		if u.notifier != nil {
			u.notifier.NotifyGraphUpdated(profileID, GraphUpdatedEvent{
				Type:       EventGraphUpdated,
				BatchID:    batchID,
				Applied:    report.Applied,
				Skipped:    report.Skipped,
				TraitCount: res.TraitCount,
				Graph:      p.Graph,
			})
		}
	}

	return res, nil
}

func (u *ProfileGraph) GetGraph(ctx context.Context, profileID uuid.UUID) (profile.Profile, error) {
	p, err := u.profiles.FindByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return profile.Profile{}, ErrProfileNotFound
		}
		u.logger.Error("load profile", zap.String("profile_id", profileID.String()), zap.Error(err))
		return profile.Profile{}, ErrInternal
	}
	return p, nil
}

func (u *ProfileGraph) GetText(ctx context.Context, profileID uuid.UUID) (string, error) {
	p, err := u.GetGraph(ctx, profileID)
	if err != nil {
		return "", err
	}
	return p.Text(), nil
}

func (u *ProfileGraph) SetSearchable(ctx context.Context, profileID uuid.UUID, searchable bool) error {
	if err := u.profiles.SetSearchable(ctx, profileID, searchable); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return ErrProfileNotFound
		}
		u.logger.Error("set searchable", zap.String("profile_id", profileID.String()), zap.Error(err))
		return ErrInternal
	}
	u.invalidateSearch(ctx)
	return nil
}

func (u *ProfileGraph) invalidateSearch(ctx context.Context) {
	if u.cache == nil {
		return
	}
	// a search still computing against the old graph writes under the old
	// generation, where no later lookup reads it
	if _, err := u.cache.Incr(ctx, CandidateSearchGenerationKey); err != nil {
		u.logger.Warn("bump search generation", zap.Error(err))
	}
	if err := u.cache.DeleteByPattern(ctx, CandidateSearchPattern); err != nil {
		u.logger.Warn("invalidate search cache", zap.Error(err))
	}
}
