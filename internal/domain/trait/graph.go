package trait

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strings"
)

var (
	ErrTraitNotFound = errors.New("trait not found")
	ErrEmptyTraitID  = errors.New("empty trait id")
)

// Graph holds the traits of one candidate profile keyed by id. Insertion order
// is kept only for stable rendering.
//
// A Graph is not safe for concurrent mutation; callers serialize writes per
// profile.
type Graph struct {
	order []string
	nodes map[string]*Trait
}

func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]*Trait)}
}

func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

func (g *Graph) Has(id string) bool {
	if g == nil {
		return false
	}
	_, ok := g.nodes[strings.TrimSpace(id)]
	return ok
}

func (g *Graph) Get(id string) (Trait, bool) {
	if g == nil {
		return Trait{}, false
	}
	t, ok := g.nodes[strings.TrimSpace(id)]
	if !ok {
		return Trait{}, false
	}
	return t.clone(), true
}

// Upsert inserts t or fully replaces the trait with the same id. Importance is
// clamped and the category migrated; relation targets are not checked here.
func (g *Graph) Upsert(t Trait) error {
	t.ID = strings.TrimSpace(t.ID)
	if t.ID == "" {
		return ErrEmptyTraitID
	}
	g.ensure()

	t.Label = strings.TrimSpace(t.Label)
	t.Description = strings.TrimSpace(t.Description)
	t.Category = MigrateCategory(string(t.Category))
	t.Importance = ClampImportance(t.Importance)
	t.Relations = normalizeRelations(t.Relations)

	if _, ok := g.nodes[t.ID]; !ok {
		g.order = append(g.order, t.ID)
	}
	g.nodes[t.ID] = &t
	return nil
}

// Merge applies the supplied fields of p to an existing trait.
func (g *Graph) Merge(id string, p Patch) (Trait, error) {
	if g == nil {
		return Trait{}, ErrTraitNotFound
	}
	t, ok := g.nodes[strings.TrimSpace(id)]
	if !ok {
		return Trait{}, ErrTraitNotFound
	}

	if p.Label != nil {
		t.Label = strings.TrimSpace(*p.Label)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Category != nil {
		t.Category = MigrateCategory(*p.Category)
	}
	if p.Importance != nil {
		t.Importance = ClampImportance(*p.Importance)
	}
	if p.Relations != nil {
		t.Relations = normalizeRelations(*p.Relations)
	}
	return t.clone(), nil
}

// Remove deletes the trait and every relation pointing at it. It reports
// whether the trait existed.
func (g *Graph) Remove(id string) bool {
	if g == nil {
		return false
	}
	id = strings.TrimSpace(id)
	if _, ok := g.nodes[id]; !ok {
		return false
	}
	delete(g.nodes, id)
	for i, existing := range g.order {
		if existing == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	for _, t := range g.nodes {
		t.Relations = filterRelations(t.Relations, func(r Relation) bool {
			return r.TargetID != id
		})
	}
	return true
}

// ReconcileDanglingRelations drops relations whose target is not in the graph
// and returns how many were dropped.
func (g *Graph) ReconcileDanglingRelations() int {
	if g == nil {
		return 0
	}
	dropped := 0
	for _, id := range g.order {
		t := g.nodes[id]
		before := len(t.Relations)
		t.Relations = filterRelations(t.Relations, func(r Relation) bool {
			_, ok := g.nodes[r.TargetID]
			return ok
		})
		dropped += before - len(t.Relations)
	}
	return dropped
}

// Traits returns copies of all traits in insertion order.
func (g *Graph) Traits() []Trait {
	if g == nil {
		return []Trait{}
	}
	out := make([]Trait, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id].clone())
	}
	return out
}

func (g *Graph) Clone() *Graph {
	out := NewGraph()
	if g == nil {
		return out
	}
	for _, id := range g.order {
		t := g.nodes[id].clone()
		out.order = append(out.order, id)
		out.nodes[id] = &t
	}
	return out
}

type graphDocument struct {
	Traits []Trait `json:"traits"`
}

func (g *Graph) MarshalJSON() ([]byte, error) {
	doc := graphDocument{Traits: g.Traits()}
	for i := range doc.Traits {
		if doc.Traits[i].Relations == nil {
			doc.Traits[i].Relations = []Relation{}
		}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON reads the {"traits": [...]} document, a bare trait array and
// the older id-keyed object. A "traits" key that is null or not an array is an
// empty document. Categories are migrated on the way in and dangling relations
// reconciled, so stored data of any vintage loads consistently.
func (g *Graph) UnmarshalJSON(b []byte) error {
	g.order = nil
	g.nodes = make(map[string]*Trait)

	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	var traits []Trait
	if isJSONArray(b) {
		if err := json.Unmarshal(b, &traits); err != nil {
			return err
		}
	} else {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(b, &probe); err != nil {
			return err
		}
		var err error
		if raw, ok := probe["traits"]; ok {
			traits, err = documentTraits(raw)
		} else {
			traits, err = legacyTraits(probe)
		}
		if err != nil {
			return err
		}
	}

	for _, t := range traits {
		// rows without an id cannot be addressed by any action; skip them
		_ = g.Upsert(t)
	}
	g.ReconcileDanglingRelations()
	return nil
}

func documentTraits(raw json.RawMessage) ([]Trait, error) {
	if !isJSONArray(raw) {
		return nil, nil
	}
	var traits []Trait
	if err := json.Unmarshal(raw, &traits); err != nil {
		return nil, err
	}
	return traits, nil
}

func legacyTraits(byID map[string]json.RawMessage) ([]Trait, error) {
	keys := make([]string, 0, len(byID))
	for k := range byID {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	traits := make([]Trait, 0, len(keys))
	for _, k := range keys {
		var t Trait
		if err := json.Unmarshal(byID[k], &t); err != nil {
			return nil, err
		}
		if strings.TrimSpace(t.ID) == "" {
			t.ID = k
		}
		traits = append(traits, t)
	}
	return traits, nil
}

func (g *Graph) ensure() {
	if g.nodes == nil {
		g.nodes = make(map[string]*Trait)
	}
}

func normalizeRelations(in []Relation) []Relation {
	out := make([]Relation, 0, len(in))
	seen := make(map[Relation]struct{}, len(in))
	for _, r := range in {
		r.TargetID = strings.TrimSpace(r.TargetID)
		if r.TargetID == "" {
			continue
		}
		r.Type = MigrateRelationType(string(r.Type))
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

func filterRelations(in []Relation, keep func(Relation) bool) []Relation {
	out := in[:0]
	for _, r := range in {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func isJSONArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
