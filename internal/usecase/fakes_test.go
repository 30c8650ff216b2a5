package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"hire/internal/domain/profile"
	"hire/internal/domain/trait"
	"hire/internal/ranking"
	"hire/internal/repository"

	"github.com/google/uuid"
)

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]profile.Profile
	order    []uuid.UUID
	busy     bool
	listErr  error
	lists    int
	writes   int
}

func newFakeProfileRepo(ps ...profile.Profile) *fakeProfileRepo {
	r := &fakeProfileRepo{profiles: map[uuid.UUID]profile.Profile{}}
	for _, p := range ps {
		r.profiles[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	return r
}

func (r *fakeProfileRepo) FindByID(_ context.Context, id uuid.UUID) (profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return profile.Profile{}, repository.ErrProfileNotFound
	}
	p.Graph = p.Graph.Clone()
	return p, nil
}

func (r *fakeProfileRepo) ListSearchable(_ context.Context) ([]profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]profile.Profile, 0, len(r.order))
	for _, id := range r.order {
		p := r.profiles[id]
		if !p.IsSearchable {
			continue
		}
		p.Graph = p.Graph.Clone()
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProfileRepo) SetSearchable(_ context.Context, id uuid.UUID, searchable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.IsSearchable = searchable
	r.profiles[id] = p
	return nil
}

func (r *fakeProfileRepo) UpdateGraph(_ context.Context, id uuid.UUID, fn func(p *profile.Profile) error) (profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy {
		return profile.Profile{}, repository.ErrProfileBusy
	}
	p, ok := r.profiles[id]
	if !ok {
		return profile.Profile{}, repository.ErrProfileNotFound
	}
	p.Graph = p.Graph.Clone()
	if err := fn(&p); err != nil {
		if errors.Is(err, repository.ErrGraphUnchanged) {
			return p, nil
		}
		return profile.Profile{}, err
	}
	r.writes++
	r.profiles[id] = p
	return p, nil
}

type fakeCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	counters map[string]int64
	locks    map[string]bool
	deleted  []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}, counters: map[string]int64{}, locks: map[string]bool{}}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.counters[key]; ok {
		b, _ := json.Marshal(n)
		return true, json.Unmarshal(b, out)
	}
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[key]++
	return c.counters[key], nil
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	delete(c.locks, key)
	return nil
}

func (c *fakeCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *fakeCache) SetIfNotExists(_ context.Context, key string, _ string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locks[key] {
		return false, nil
	}
	c.locks[key] = true
	return true, nil
}

type fakeRanker struct {
	mu     sync.Mutex
	resp   ranking.Response
	err    error
	block  bool
	calls  int
	last   ranking.Request
	onRank func()
}

func (r *fakeRanker) Rank(ctx context.Context, req ranking.Request) (ranking.Response, error) {
	r.mu.Lock()
	r.calls++
	r.last = req
	hook := r.onRank
	r.mu.Unlock()
	if hook != nil {
		hook()
	}
	if r.block {
		<-ctx.Done()
		return ranking.Response{}, ctx.Err()
	}
	return r.resp, r.err
}

type notification struct {
	profileID uuid.UUID
	payload   any
}

type fakeNotifier struct {
	events []notification
}

func (n *fakeNotifier) NotifyGraphUpdated(profileID uuid.UUID, payload any) {
	n.events = append(n.events, notification{profileID: profileID, payload: payload})
}

func candidate(name, profession string, labels ...string) profile.Profile {
	g := trait.NewGraph()
	for i, l := range labels {
		_ = g.Upsert(trait.Trait{ID: strings.ToLower(l), Label: l, Category: trait.CategorySkill, Importance: float64(5 - i%5)})
	}
	return profile.Profile{
		ID:             uuid.New(),
		Name:           name,
		ProfessionName: profession,
		IsSearchable:   true,
		Graph:          g,
	}
}
