package action

import (
	"errors"
	"strings"

	"hire/internal/domain/trait"

	"go.uber.org/zap"
)

const (
	ReasonMalformed     = "malformed"
	ReasonMissingID     = "missing id"
	ReasonMissingLabel  = "missing label"
	ReasonEmptyUpdate   = "no fields to update"
	ReasonTraitNotFound = "trait not found"
)

type Applier struct {
	logger *zap.Logger
}

func NewApplier(logger *zap.Logger) *Applier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Applier{logger: logger}
}

// Apply runs the batch against g strictly in order. A failing action is
// recorded as skipped and never stops the batch. Dangling relations are
// reconciled once, after the last action, so forward references inside the
// batch resolve.
func (a *Applier) Apply(g *trait.Graph, actions []Action) Report {
	rep := Report{Results: make([]Result, 0, len(actions))}

	for i, act := range actions {
		res := Result{Index: i, Outcome: OutcomeApplied}
		if reason := a.applyOne(g, act); reason != "" {
			res.Outcome = OutcomeSkipped
			res.Reason = reason
			rep.Skipped++
			a.logger.Debug("action skipped",
				zap.Int("index", i),
				zap.String("type", string(act.Type)),
				zap.String("id", act.ID),
				zap.String("reason", reason),
			)
		} else {
			rep.Applied++
		}
		rep.Results = append(rep.Results, res)
	}

	rep.DroppedRelations = g.ReconcileDanglingRelations()
	return rep
}

func (a *Applier) applyOne(g *trait.Graph, act Action) string {
	switch act.Type {
	case TypeCreate:
		t := act.Trait
		if strings.TrimSpace(t.ID) == "" {
			t.ID = act.ID
		}
		if strings.TrimSpace(t.ID) == "" {
			return ReasonMissingID
		}
		if strings.TrimSpace(t.Label) == "" {
			return ReasonMissingLabel
		}
		if err := g.Upsert(t); err != nil {
			return ReasonMissingID
		}
		return ""

	case TypeUpdate:
		if strings.TrimSpace(act.ID) == "" {
			return ReasonMissingID
		}
		if act.Patch.IsEmpty() {
			return ReasonEmptyUpdate
		}
		if _, err := g.Merge(act.ID, act.Patch); err != nil {
			if errors.Is(err, trait.ErrTraitNotFound) {
				return ReasonTraitNotFound
			}
			return err.Error()
		}
		return ""

	case TypeDelete:
		if strings.TrimSpace(act.ID) == "" {
			return ReasonMissingID
		}
		if !g.Remove(act.ID) {
			return ReasonTraitNotFound
		}
		return ""

	case TypeInvalid:
		if act.Reason == "" {
			return ReasonMalformed
		}
		return ReasonMalformed + ": " + act.Reason

	default:
		return ReasonMalformed + ": unknown action type " + string(act.Type)
	}
}
