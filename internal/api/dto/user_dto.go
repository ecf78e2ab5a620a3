package dto

import (
	"time"

	"github.com/civicvoice/complaint-service/internal/domain"
)

// ActorResponse is the authenticated actor with the ledger fields the engine maintains.
type ActorResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Email         string            `json:"email,omitempty"`
	Role          domain.Role       `json:"role"`
	Department    domain.Department `json:"department,omitempty"`
	City          string            `json:"city,omitempty"`
	CivicPoints   int               `json:"civic_points"`
	AverageRating float64           `json:"average_rating"`
	TotalRatings  int               `json:"total_ratings"`
	CreatedAt     time.Time         `json:"created_at"`
}

// AuthResponse standard response for token issuance.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewActorResponse maps a domain actor.
func NewActorResponse(a *domain.Actor) ActorResponse {
	return ActorResponse{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		Role:          a.Role,
		Department:    a.Department,
		City:          a.City,
		CivicPoints:   a.CivicPoints,
		AverageRating: a.AverageRating,
		TotalRatings:  a.TotalRatings,
		CreatedAt:     a.CreatedAt,
	}
}

// OfficerResponse is a department actor as listed to citizens.
type OfficerResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Role          domain.Role       `json:"role"`
	Department    domain.Department `json:"department"`
	City          string            `json:"city,omitempty"`
	AverageRating float64           `json:"average_rating"`
	TotalRatings  int               `json:"total_ratings"`
}

// NewOfficerResponses maps the department directory.
func NewOfficerResponses(actors []domain.Actor) []OfficerResponse {
	out := make([]OfficerResponse, 0, len(actors))
	for _, a := range actors {
		out = append(out, OfficerResponse{
			ID:            a.ID,
			Name:          a.Name,
			Role:          a.Role,
			Department:    a.Department,
			City:          a.City,
			AverageRating: a.AverageRating,
			TotalRatings:  a.TotalRatings,
		})
	}
	return out
}
