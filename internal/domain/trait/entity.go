package trait

import "math"

type Category string

const (
	CategorySkill      Category = "skill"
	CategoryTool       Category = "tool"
	CategoryRole       Category = "role"
	CategoryDomain     Category = "domain"
	CategoryIndustry   Category = "industry"
	CategoryChallenge  Category = "challenge"
	CategoryAction     Category = "action"
	CategoryMetric     Category = "metric"
	CategoryResult     Category = "result"
	CategoryArtifact   Category = "artifact"
	CategoryProject    Category = "project"
	CategoryAttribute  Category = "attribute"
	CategoryMotivation Category = "motivation"
	CategoryOther      Category = "other"
)

type RelationType string

const (
	RelationUses    RelationType = "uses"
	RelationEnables RelationType = "enables"
	RelationPartOf  RelationType = "part_of"
	RelationRelated RelationType = "related"
)

const (
	MinImportance     = 1.0
	MaxImportance     = 5.0
	DefaultImportance = 3.0
)

// Relation is a directed edge owned by the source trait.
type Relation struct {
	TargetID string       `json:"targetId"`
	Type     RelationType `json:"type"`
}

type Trait struct {
	ID          string     `json:"id"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	Importance  float64    `json:"importance"`
	Relations   []Relation `json:"relations"`
}

// Patch carries the fields of a partial update. A nil field is left untouched;
// a non-nil Relations replaces the whole relation list.
type Patch struct {
	Label       *string
	Description *string
	Category    *string
	Importance  *float64
	Relations   *[]Relation
}

func (p Patch) IsEmpty() bool {
	return p.Label == nil && p.Description == nil && p.Category == nil && p.Importance == nil && p.Relations == nil
}

func ClampImportance(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return DefaultImportance
	}
	if v < MinImportance {
		return MinImportance
	}
	if v > MaxImportance {
		return MaxImportance
	}
	return v
}

func (t Trait) clone() Trait {
	out := t
	if t.Relations != nil {
		out.Relations = make([]Relation, len(t.Relations))
		copy(out.Relations, t.Relations)
	}
	return out
}
