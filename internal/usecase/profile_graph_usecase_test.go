package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"hire/internal/domain/action"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileGraph_ApplyActions(t *testing.T) {
	p := candidate("ann", "Engineer", "Golang")
	repo := newFakeProfileRepo(p)
	cache := newFakeCache()
	require.NoError(t, cache.SetJSON(context.Background(), CandidateSearchCacheKey(0, "golang"), CandidateSearchResult{}, 0))
	notifier := &fakeNotifier{}
	uc := NewProfileGraphUsecase(repo, nil, cache, notifier, nil)

	payload := json.RawMessage(`[
		{"type":"create","data":{"id":"k8s","label":"Kubernetes","category":"tools","importance":7,"relations":[{"targetId":"golang","type":"uses"},{"targetId":"later","type":"related"}]}},
		{"type":"update","id":"missing","updates":{"label":"x"}},
		{"type":"create","data":{"id":"later","label":"Helm"}},
		{"type":"delete","id":"ghost"},
		{"type":"explode"}
	]`)

	res, err := uc.ApplyActions(context.Background(), p.ID, ApplyActionsInput{Actions: payload})
	require.NoError(t, err)

	assert.NotEmpty(t, res.BatchID)
	assert.Equal(t, 2, res.Applied)
	assert.Equal(t, 3, res.Skipped)
	assert.Equal(t, 3, res.TraitCount)
	require.Len(t, res.Results, 5)
	assert.Equal(t, action.OutcomeApplied, res.Results[0].Outcome)
	assert.Equal(t, action.OutcomeSkipped, res.Results[1].Outcome)
	assert.Equal(t, action.OutcomeSkipped, res.Results[4].Outcome)

	stored := repo.profiles[p.ID].Graph
	k8s, ok := stored.Get("k8s")
	require.True(t, ok)
	assert.Equal(t, 5.0, k8s.Importance)
	assert.Len(t, k8s.Relations, 2, "forward reference inside the batch survives")

	assert.Equal(t, []string{CandidateSearchPattern}, cache.deleted)
	assert.Empty(t, cache.data, "search results are invalidated")
	assert.EqualValues(t, 1, cache.counters[CandidateSearchGenerationKey])

	require.Len(t, notifier.events, 1)
	ev, ok := notifier.events[0].payload.(GraphUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, EventGraphUpdated, ev.Type)
	assert.Equal(t, res.BatchID, ev.BatchID)
	assert.Equal(t, p.ID, notifier.events[0].profileID)
}

func TestProfileGraph_ApplyActions_RawModelOutput(t *testing.T) {
	p := candidate("ann", "Engineer")
	repo := newFakeProfileRepo(p)
	uc := NewProfileGraphUsecase(repo, nil, nil, nil, nil)

	raw := "Sure! Here are the changes:\n```json\n{\"actions\":[{\"type\":\"create\",\"data\":{\"id\":\"sql\",\"label\":\"SQL\",},}]}\n```"
	res, err := uc.ApplyActions(context.Background(), p.ID, ApplyActionsInput{Raw: raw})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.True(t, repo.profiles[p.ID].Graph.Has("sql"))
}

func TestProfileGraph_ApplyActions_NothingAppliedSkipsSideEffects(t *testing.T) {
	p := candidate("ann", "Engineer", "Golang")
	repo := newFakeProfileRepo(p)
	cache := newFakeCache()
	notifier := &fakeNotifier{}
	uc := NewProfileGraphUsecase(repo, nil, cache, notifier, nil)

	res, err := uc.ApplyActions(context.Background(), p.ID, ApplyActionsInput{Actions: json.RawMessage(`[{"type":"delete","id":"nope"}]`)})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Applied)
	assert.Equal(t, 1, res.TraitCount)
	assert.Equal(t, 0, repo.writes, "an all-skipped batch does not rewrite the row")
	assert.Empty(t, cache.deleted)
	assert.Empty(t, notifier.events)
}

func TestProfileGraph_ApplyActions_Errors(t *testing.T) {
	p := candidate("ann", "Engineer")
	repo := newFakeProfileRepo(p)
	uc := NewProfileGraphUsecase(repo, nil, nil, nil, nil)
	ctx := context.Background()

	_, err := uc.ApplyActions(ctx, p.ID, ApplyActionsInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.ApplyActions(ctx, p.ID, ApplyActionsInput{Raw: "I could not find any facts."})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.ApplyActions(ctx, uuid.New(), ApplyActionsInput{Actions: json.RawMessage(`[]`)})
	assert.ErrorIs(t, err, ErrProfileNotFound)

	repo.busy = true
	_, err = uc.ApplyActions(ctx, p.ID, ApplyActionsInput{Actions: json.RawMessage(`[{"type":"delete","id":"x"}]`)})
	assert.ErrorIs(t, err, ErrProfileBusy)
	assert.Equal(t, 0, repo.writes)
}

func TestProfileGraph_GetTextAndSearchable(t *testing.T) {
	p := candidate("ann", "Engineer", "Golang")
	p.Grade = "Senior"
	repo := newFakeProfileRepo(p)
	cache := newFakeCache()
	uc := NewProfileGraphUsecase(repo, nil, cache, nil, nil)
	ctx := context.Background()

	text, err := uc.GetText(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Profession: Engineer, Grade: Senior\n\nSkills: Golang", text)

	require.NoError(t, uc.SetSearchable(ctx, p.ID, false))
	assert.False(t, repo.profiles[p.ID].IsSearchable)
	assert.Equal(t, []string{CandidateSearchPattern}, cache.deleted)

	assert.ErrorIs(t, uc.SetSearchable(ctx, uuid.New(), true), ErrProfileNotFound)

	_, err = uc.GetGraph(ctx, uuid.New())
	assert.True(t, errors.Is(err, ErrProfileNotFound))
}
