package dto

type CandidateSearchRequest struct {
	Query string `json:"query" validate:"required,max=2000"`
}
