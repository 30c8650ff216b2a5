package profile

import (
	"time"

	"hire/internal/domain/trait"

	"github.com/google/uuid"
)

// Profile is a candidate profile together with its trait graph.
type Profile struct {
	ID             uuid.UUID
	Name           string
	ProfessionName string
	Grade          string
	IsSearchable   bool
	Graph          *trait.Graph
	UpdatedAt      time.Time
}

// Text renders the profile for ranking and résumé generation.
func (p Profile) Text() string {
	return trait.ToText(p.Graph, p.ProfessionName, p.Grade)
}
