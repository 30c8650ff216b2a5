package dto

import (
	"encoding/json"
	"time"

	"hire/internal/domain/action"
	"hire/internal/domain/trait"

	"github.com/google/uuid"
)

type ProfileGraphResponse struct {
	ID             uuid.UUID    `json:"id"`
	Name           string       `json:"name"`
	ProfessionName string       `json:"professionName"`
	Grade          string       `json:"grade"`
	IsSearchable   bool         `json:"isSearchable"`
	TraitCount     int          `json:"traitCount"`
	Graph          *trait.Graph `json:"graph"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// ApplyActionsRequest accepts either a structured list or raw model output.
type ApplyActionsRequest struct {
	Actions json.RawMessage `json:"actions"`
	Raw     string          `json:"raw" validate:"max=200000"`
}

type ApplyActionsResponse struct {
	BatchID          string          `json:"batchId"`
	Results          []action.Result `json:"results"`
	Applied          int             `json:"applied"`
	Skipped          int             `json:"skipped"`
	DroppedRelations int             `json:"droppedRelations"`
	TraitCount       int             `json:"traitCount"`
}

type ProfileTextResponse struct {
	Text string `json:"text"`
}

type SetSearchableRequest struct {
	Searchable *bool `json:"searchable" validate:"required"`
}

type SetSearchableResponse struct {
	Searchable bool `json:"searchable"`
}
