package entity

import (
	"time"

	"github.com/google/uuid"
)

// Eligibility is a professional's candidacy record for one attribution.
// Exactly one row exists per (attribution, professional) pair.
type Eligibility struct {
	ID             uuid.UUID  `json:"id"`
	AttributionID  uuid.UUID  `json:"attribution_id"`
	ProfessionalID uuid.UUID  `json:"professional_id"`
	IsEligible     bool       `json:"is_eligible"`
	DistanceKm     float64    `json:"distance_km"`
	Notified       bool       `json:"notified"`
	NotifiedAt     *time.Time `json:"notified_at,omitempty"`
	Responded      bool       `json:"responded"`
	RespondedAt    *time.Time `json:"responded_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ResponseDecision is a professional's answer to a broadcast.
type ResponseDecision string

const (
	ResponseDecisionAccept  ResponseDecision = "ACCEPT"
	ResponseDecisionDecline ResponseDecision = "DECLINE"
)

// DecisionFor maps the accepted flag to a decision.
func DecisionFor(accepted bool) ResponseDecision {
	if accepted {
		return ResponseDecisionAccept
	}

	return ResponseDecisionDecline
}

// ProfessionalResponse is the single response row per professional per attribution.
// A later answer from the same professional replaces the decision.
type ProfessionalResponse struct {
	ID             uuid.UUID        `json:"id"`
	AttributionID  uuid.UUID        `json:"attribution_id"`
	ProfessionalID uuid.UUID        `json:"professional_id"`
	Decision       ResponseDecision `json:"decision"`
	RespondedAt    time.Time        `json:"responded_at"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Accepted reports whether the professional took the job.
func (r *ProfessionalResponse) Accepted() bool {
	return r.Decision == ResponseDecisionAccept
}
