package usecase

import (
	"context"

	"attribution/internal/domain/entity"
)

// MatchQuery describes where and what a booking needs.
type MatchQuery struct {
	ServiceLocation entity.Coordinates `json:"service_location"`
	ServiceType     string             `json:"service_type"`
	MaxRadiusKm     float64            `json:"max_radius_km"`
	Limit           int                `json:"limit"` // 0 falls back to the configured cap
}

// GeoMatcher selects candidate professionals for a service location.
type GeoMatcher interface {
	// FindCandidates returns verified, available, capable professionals within the radius,
	// ordered by distance then professional ID. No match is an empty slice, not an error.
	FindCandidates(ctx context.Context, query MatchQuery) ([]entity.Candidate, error)
}
