package action

import "hire/internal/domain/trait"

type Type string

const (
	TypeCreate  Type = "create"
	TypeUpdate  Type = "update"
	TypeDelete  Type = "delete"
	TypeInvalid Type = "invalid"
)

// Action is one proposed graph edit. Which fields are meaningful depends on
// Type: Trait for create, ID and Patch for update, ID for delete, Reason for
// invalid.
type Action struct {
	Type   Type
	ID     string
	Trait  trait.Trait
	Patch  trait.Patch
	Reason string
}

func Create(t trait.Trait) Action {
	return Action{Type: TypeCreate, ID: t.ID, Trait: t}
}

func Update(id string, p trait.Patch) Action {
	return Action{Type: TypeUpdate, ID: id, Patch: p}
}

func Delete(id string) Action {
	return Action{Type: TypeDelete, ID: id}
}

func Invalid(reason string) Action {
	return Action{Type: TypeInvalid, Reason: reason}
}

type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skipped"
)

type Result struct {
	Index   int     `json:"index"`
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason,omitempty"`
}

// Report summarizes one applied batch.
type Report struct {
	Results          []Result
	Applied          int
	Skipped          int
	DroppedRelations int
}
